package xmltitles

// Token represents an XML Token:
//
// * StartTag: <book> or <book />
// * CloseTag: </book> implicitly </book> too
// * Comment: <-- foo -->
// * ProcInst: <? foo ?>
// * Directive: <! foo >
// * CharData: Any string outside of angle brackets <>
type Token interface {
	token()

	// Copy the token into a new instance.
	//
	// Tokens instances are constantly modified by the decoding process, this function makes a copy
	// for the unlikely case when the token value must be stored, and for testing!
	Copy() Token
}

// StartTag is an opening XML tag <tag>
type StartTag struct {
	Name *Name
	Attr []*Attr
}

func (*StartTag) token() {}

func (s *StartTag) Copy() Token {
	c := StartTag{Name: s.Name}
	if s.Attr != nil {
		c.Attr = make([]*Attr, len(s.Attr))
		copy(c.Attr, s.Attr)
	}
	return &c
}

// AttrMap returns the attributes keyed by their local name. When an attribute repeats the last
// value wins. The map is freshly allocated and safe to keep.
func (s *StartTag) AttrMap() map[string]string {
	attrs := make(map[string]string, len(s.Attr))
	for _, a := range s.Attr {
		attrs[a.Name.Local()] = a.Value
	}
	return attrs
}

// CloseTag is a closing XML tag </tag>
type CloseTag struct {
	Name *Name
}

func (*CloseTag) token() {}

func (t *CloseTag) Copy() Token {
	return &CloseTag{t.Name}
}

// CharData contains a text node
type CharData struct {
	Data []byte
}

func (*CharData) token() {}

func (t *CharData) Copy() Token {
	data := make([]byte, len(t.Data))
	copy(data, t.Data)
	return &CharData{data}
}

// Comment has the format <-- -->
//
// It can have two or more `-` at the beginning, but it must have two `-` at the end.
// Data is only populated when Decoder.ReadComment is set.
type Comment struct {
	Data []byte
}

func (*Comment) token() {}

func (t *Comment) Copy() Token {
	return &Comment{Data: append([]byte(nil), t.Data...)}
}

// ProcInst has the format <? ... ?>
type ProcInst struct{}

func (*ProcInst) token() {}

func (t *ProcInst) Copy() Token {
	c := *t
	return &c
}

// Directive has the format <! ... >
//
// Data is only populated when Decoder.ReadDirective is set.
type Directive struct {
	Data []byte
}

func (*Directive) token() {}

func (t *Directive) Copy() Token {
	return &Directive{Data: append([]byte(nil), t.Data...)}
}

// Attr is a tag attribute like <book category="fiction">.
// This will store an Attr with name "category" and value "fiction"
type Attr struct {
	Name  *Name
	Value string
}

// Name stores an identifier name from either a tag or an attribute like <title lang="en">
// This will generate the names "title" for the tag, and "lang" for the attribute.
//
// Prefixes are kept as written, they are never resolved against a namespace declaration.
type Name struct {
	local string
	space string
}

// Local returns the identifier name without XML namespace.
//
// For example <a:b> generates the local name "b" with namespace "a"
// This method will return "b".
func (n *Name) Local() string {
	if n == nil {
		return ""
	}
	return n.local
}

// Space returns the namespace prefix, empty when the name has none.
func (n *Name) Space() string {
	if n == nil {
		return ""
	}
	return n.space
}

func (n *Name) String() string {
	if n == nil {
		return ""
	}
	if n.space == "" {
		return n.local
	}
	return n.space + ":" + n.local
}
