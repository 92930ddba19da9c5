// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xmltitles

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"unicode"

	"github.com/Goodwine/triemap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Goodwine/xmltitles/internal/stack"
)

type decodeError string

// Error implements error interface, returns itself since it's already a string.
func (err decodeError) Error() string {
	return string(err)
}

const (
	// UnexpectedChar is thrown when an unexpected rune or characters appears outside of an attribute
	// value or CharData token.
	UnexpectedChar decodeError = "unexpected char"

	// The following are only reported by a Strict decoder.

	// UnclosedTag is thrown when the input ends while elements are still open.
	UnclosedTag     decodeError = "unclosed tag"
	// MismatchedTag is thrown when a CloseTag doesn't match the innermost open element.
	MismatchedTag   decodeError = "mismatched close tag"
	// TextOutsideRoot is thrown for non-whitespace text before or after the root element.
	TextOutsideRoot decodeError = "text data outside of root node"
	// DuplicateAttr is thrown when the same attribute appears twice on one tag.
	DuplicateAttr   decodeError = "duplicate attribute"
	// MissingValue is thrown for an attribute without value like <book hidden>.
	MissingValue    decodeError = "attribute without value"
	// InvalidEntity is thrown for references other than the predefined entities and character
	// references, like &nbsp; or a lone &.
	InvalidEntity   decodeError = "invalid entity"
	// CDataEnd is thrown when text contains the reserved sequence ]]>.
	CDataEnd        decodeError = "']]>' not allowed in text"
)

// Decoder processes an XML input and generates tokens.
type Decoder struct {
	// ReadComment enables reading and returning back the comment contents. Otherwise returns an empty
	// node. Disabled by default.
	ReadComment bool

	// ReadDirective enables reading and returning back the directive contents. Otherwise returns an
	// empty node. Disabled by default.
	//
	// Note that we DO NOT process directives, we simply return back the string within `<! ... >`.
	// CDATA sections are directives too.
	ReadDirective bool

	// Lowercase normalizes tag and attribute names to lower case.
	Lowercase bool

	// Trim removes surrounding whitespace from CharData and skips CharData tokens that end up empty.
	Trim bool

	// KeepSpace disables collapsing whitespace runs in CharData into a single space.
	KeepSpace bool

	// Strict verifies that CloseTag tokens match their StartTag 1:1, that every tag is closed before
	// EOF and that no text appears outside the root element. Attributes must have a value and
	// appear once per tag, and only the predefined XML entities and character references are
	// decoded.
	Strict bool

	r   io.RuneReader
	row int
	col int

	// startedTag indicates whether the current last token consumed an open angle bracket (<)
	startedTag bool

	// selfClosingTag indicates that the last StartTag token self closed, and a CloseTag token should
	// be emitted instead of consuming more characters.
	selfClosingTag *Name

	// Buffers for input read so far for the _current token_. This buffer is cleared on every new
	// token, identifier like tag names or attributes, and string values.
	buf   *bytes.Buffer
	attrs *attrBuffer
	names triemap.RuneSliceMap
	lower cases.Caser

	// open holds the currently open elements when Strict is set.
	open *stack.Stack[*Name]

	// The following are object buffers to save on allocations by reusing the same instance every
	// time the Decoder.Token function is called.
	startTagBuf  StartTag
	closeTagBuf  CloseTag
	charDataBuf  CharData
	commentBuf   Comment
	procInstBuf  ProcInst
	directiveBuf Directive
}

// NewDecoder instantiates a Decoder to process a Reader input.
func NewDecoder(r io.Reader) *Decoder {
	var buf bytes.Buffer
	buf.Grow(1000)
	return &Decoder{
		r:     bufio.NewReader(r),
		buf:   &buf,
		attrs: newAttrBuffer(30),
		lower: cases.Lower(language.Und),
		open:  stack.New[*Name](16),
	}
}

// Token will decode the next token from the current XML position.
//
// The token is meant to be processed BEFORE the next token is called.
// Contents of previous tokens can be modified at any time during tokenization.
//
// io.EOF is returned once the input is exhausted.
func (d *Decoder) Token() (Token, error) {
	for {
		t, err := d.token()
		if errors.Is(err, io.EOF) {
			if err := d.checkEOF(); err != nil {
				return nil, d.wrapPos(err)
			}
			return nil, err
		}
		if err != nil {
			return nil, d.wrapPos(err)
		}

		if cd, ok := t.(*CharData); ok && d.Trim {
			cd.Data = bytes.TrimSpace(cd.Data)
			if len(cd.Data) == 0 {
				continue
			}
		}
		if d.Strict {
			if err := d.balance(t); err != nil {
				return nil, d.wrapPos(err)
			}
		}
		return t, nil
	}
}

func (d *Decoder) wrapPos(err error) error {
	return fmt.Errorf("%w at row: %d col: %d", err, d.row+1, d.col)
}

// balance keeps track of the open elements for Strict decoding.
func (d *Decoder) balance(t Token) error {
	switch t := t.(type) {
	case *StartTag:
		d.open.Push(t.Name)
	case *CloseTag:
		top, ok := d.open.Pop()
		if !ok {
			return fmt.Errorf("%w </%s> without open tag", MismatchedTag, t.Name)
		}
		if top.String() != t.Name.String() {
			return fmt.Errorf("%w </%s>, expected </%s>", MismatchedTag, t.Name, top)
		}
	case *CharData:
		if d.open.IsEmpty() && len(bytes.TrimSpace(t.Data)) > 0 {
			return TextOutsideRoot
		}
	}
	return nil
}

// checkEOF reports the innermost element left open, only for Strict decoding.
func (d *Decoder) checkEOF() error {
	if !d.Strict {
		return nil
	}
	if top, ok := d.open.Peek(); ok {
		return fmt.Errorf("%w <%s>", UnclosedTag, top)
	}
	return nil
}

func (d *Decoder) token() (Token, error) {
	if d.startedTag {
		d.startedTag = false
		return d.angleStart()
	}
	if d.selfClosingTag != nil {
		d.closeTagBuf.Name = d.selfClosingTag
		d.selfClosingTag = nil
		return &d.closeTagBuf, nil
	}
	r, err := d.next()
	if err != nil {
		return nil, err
	}
	switch {
	case r == '<':
		// StartTag
		// CloseTag
		// Comment
		// ProcInst
		// Directive
		return d.angleStart()
	}
	//CharData
	return d.charData(r)
}

// unexpectedChar is a utility function to attach the rune to the UnexpectedChar error.
func unexpectedChar(r rune) error {
	return fmt.Errorf("%w %q", UnexpectedChar, r)
}

// next reads the next rune and updates col/row positions for better error messaging.
func (d *Decoder) next() (rune, error) {
	r, _, err := d.r.ReadRune()
	if err != nil {
		return r, err
	}
	if r == '\n' {
		d.col = 0
		d.row++
	} else {
		d.col++
	}
	return r, err
}

// checkUnexpectedEOF is a helper function to catch an EOF and transform it to UnexpectedEOF
// when it happens mid-way during parsing.
func checkUnexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// unescape decodes the predefined entities and character references like &amp; or &#1042;
//
// A non Strict decoder leniently decodes HTML named entities like &nbsp; too.
func (d *Decoder) unescape(b []byte) ([]byte, error) {
	if bytes.IndexByte(b, '&') < 0 {
		return b, nil
	}
	if d.Strict {
		if err := checkEntities(b); err != nil {
			return nil, err
		}
	}
	return []byte(html.UnescapeString(string(b))), nil
}

// checkEntities verifies every & starts one of the references XML defines without a DTD.
func checkEntities(b []byte) error {
	for {
		i := bytes.IndexByte(b, '&')
		if i < 0 {
			return nil
		}
		b = b[i+1:]
		end := bytes.IndexByte(b, ';')
		if end < 0 {
			return fmt.Errorf("%w, missing ';' after '&'", InvalidEntity)
		}
		if !isXMLReference(string(b[:end])) {
			return fmt.Errorf("%w &%s;", InvalidEntity, b[:end])
		}
		b = b[end+1:]
	}
}

func isXMLReference(name string) bool {
	switch name {
	case "lt", "gt", "amp", "quot", "apos":
		return true
	}
	if hex, ok := strings.CutPrefix(name, "#x"); ok {
		return hex != "" && strings.Trim(hex, "0123456789abcdefABCDEF") == ""
	}
	if dec, ok := strings.CutPrefix(name, "#"); ok {
		return dec != "" && strings.Trim(dec, "0123456789") == ""
	}
	return false
}

// endCharData finishes the current CharData token.
func (d *Decoder) endCharData() (Token, error) {
	data, err := d.unescape(d.buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w on chardata", err)
	}
	d.charDataBuf.Data = data
	return &d.charDataBuf, nil
}

func (d *Decoder) charData(start rune) (Token, error) {
	d.buf.Reset()
	space := unicode.IsSpace(start)
	if space && !d.KeepSpace {
		start = ' '
	}
	d.buf.WriteRune(start)
	// brackets counts the consecutive ']' preceding r, to spot ]]>
	var brackets int
	if start == ']' {
		brackets = 1
	}
	for {
		r, err := d.next()
		if err != nil {
			return d.endCharData()
		}
		if r == '<' {
			d.startedTag = true
			return d.endCharData()
		}
		if r == '>' && brackets >= 2 && d.Strict {
			return nil, CDataEnd
		}
		if r == ']' {
			brackets++
		} else {
			brackets = 0
		}
		if !d.KeepSpace {
			// Normalize whitespace
			if unicode.IsSpace(r) {
				if space {
					continue
				}
				space = true
				r = ' '
			} else {
				space = false
			}
		}
		d.buf.WriteRune(r)
	}
}

// angleStart will return the token corresponding to the previous `<` character
//
// At this point it could be StartTag, Comment, CloseTag, Directive, or ProcInst
func (d *Decoder) angleStart() (Token, error) {
	r, err := d.next()
	if err != nil {
		return nil, checkUnexpectedEOF(err)
	}
	switch {
	case isNameStart(r):
		return d.startTag(r)
	case r == '/':
		return d.closeTag()
	case r == '!':
		// Comment
		// Directive
		d.buf.Reset()

		r, err := d.next()
		if err != nil {
			return nil, checkUnexpectedEOF(err)
		}
		if r != '-' {
			return d.directive(r)
		}

		r, err = d.next()
		if err != nil {
			return nil, checkUnexpectedEOF(err)
		}
		if r != '-' {
			return nil, fmt.Errorf("%w, expected '<--'", unexpectedChar(r))
		}

		return d.comment()
	case r == '?':
		return d.procInst()
	}
	return nil, unexpectedChar(r)
}

// startTag processes a token like: <book> or <book category="fiction" lang='en' hidden> or <br/>
func (d *Decoder) startTag(first rune) (Token, error) {
	name, last, err := d.readIdentifier(first, false)
	if err != nil {
		return nil, fmt.Errorf("%w, expected tag identifier", err)
	}

	d.startTagBuf.Name = name
	d.startTagBuf.Attr = nil
	d.attrs.reset()
	for {
		if unicode.IsSpace(last) {
			last, err = d.consumeSpace()
			if err != nil {
				return nil, fmt.Errorf("%w, expected attribute identifier", err)
			}
		}

		if last == '/' {
			last, err = d.next()
			if err != nil {
				return nil, fmt.Errorf("%w, expected '>' for self-close tag", checkUnexpectedEOF(err))
			}
			if last != '>' {
				return nil, fmt.Errorf("%w, expected '>' for self-close tag", unexpectedChar(last))
			}
			d.selfClosingTag = name
		}

		// See if there are no more attributes
		switch {
		case last == '>':
			d.startTagBuf.Attr = d.attrs.get()
			return &d.startTagBuf, nil
		case !isNameStart(last):
			return nil, fmt.Errorf("%w on tag <%s>", unexpectedChar(last), name)
		}

		// Find the attribute name
		attrName, next, err := d.readIdentifier(last, true)
		if err != nil {
			return nil, fmt.Errorf("%w for attribute on tag <%s>", err, name)
		}
		last = next
		if unicode.IsSpace(last) {
			last, err = d.consumeSpace()
			if err != nil {
				return nil, fmt.Errorf("%w for attribute %s on tag <%s>", err, attrName, name)
			}
		}
		if d.Strict && d.attrs.has(attrName) {
			return nil, fmt.Errorf("%w %s on tag <%s>", DuplicateAttr, attrName, name)
		}

		// attribute without value looks like <book hidden> or <book hidden category="fiction">
		attr := &Attr{Name: attrName}
		if last != '=' && last != '>' && last != '/' && !isNameStart(last) {
			return nil, fmt.Errorf("%w for attribute %s on tag <%s>", unexpectedChar(last), attrName, name)
		}
		if last != '=' && d.Strict {
			return nil, fmt.Errorf("%w %s on tag <%s>", MissingValue, attrName, name)
		}
		d.attrs.add(attr)
		if last != '=' {
			continue
		}

		// Find attribute value, they are surrounded by quotes
		last, err = d.consumeSpace()
		if err != nil {
			return nil, fmt.Errorf("%w after attribute %s on tag <%s>", err, attrName, name)
		}
		// TODO: support naked attribute values, i.e. without quotes
		if last != '"' && last != '\'' {
			return nil, fmt.Errorf("%w, expected value for attribute %s on tag <%s>", unexpectedChar(last), attrName, name)
		}
		d.buf.Reset()
		attr.Value, err = d.readString(last)
		if err != nil {
			return nil, fmt.Errorf("%w reading attribute %s value on tag <%s>", err, attrName, name)
		}
		last, err = d.next()
		if err != nil {
			return nil, fmt.Errorf("%w on tag <%s>", checkUnexpectedEOF(err), name)
		}
	}
}

// readString reads a string ending in a given quote rune, assumes initial quote has
// already been consumed.
//
// Entities like &quot; are decoded, backslash escapes are not supported.
func (d *Decoder) readString(quote rune) (string, error) {
	for {
		r, err := d.next()
		if err != nil {
			return "", checkUnexpectedEOF(err)
		}
		if r == quote {
			value, err := d.unescape(d.buf.Bytes())
			if err != nil {
				return "", err
			}
			return string(value), nil
		}
		d.buf.WriteRune(r)
	}
}

// closeTag processes a token like: </book>
func (d *Decoder) closeTag() (Token, error) {
	last, err := d.consumeSpace()
	if err != nil {
		return nil, fmt.Errorf("%w, expected closing tag", err)
	}
	if !isNameStart(last) {
		return nil, fmt.Errorf("%w, expected closing tag", unexpectedChar(last))
	}
	name, last, err := d.readIdentifier(last, false)
	if err != nil {
		return nil, fmt.Errorf("%w, expected closing tag", err)
	}
	if unicode.IsSpace(last) {
		last, err = d.consumeSpace()
		if err != nil {
			return nil, fmt.Errorf("%w on closing tag </%v>", err, name)
		}
	}
	if last != '>' {
		return nil, fmt.Errorf("%w, expected '>' for closing tag </%s>", unexpectedChar(last), name)
	}
	d.closeTagBuf.Name = name
	return &d.closeTagBuf, nil
}

// comment processes a token like: <-- -->
func (d *Decoder) comment() (Token, error) {
	var dashes int
	for {
		r, err := d.next()
		if err != nil {
			return nil, checkUnexpectedEOF(err)
		}
		if r == '>' {
			if dashes >= 2 {
				d.commentBuf.Data = nil
				if d.ReadComment {
					data := d.buf.Bytes()
					d.commentBuf.Data = data[:len(data)-2]
				}
				return &d.commentBuf, nil
			}
			return nil, errors.New("comment closed too early, must end in '-->'")
		}
		if r == '-' {
			dashes++
		} else {
			dashes = 0
		}
		if d.ReadComment {
			d.buf.WriteRune(r)
		}
	}
}

// procInst processes a token like: <?  ?>
func (d *Decoder) procInst() (Token, error) {
	var questionMark bool
	for {
		r, err := d.next()
		if err != nil {
			return nil, checkUnexpectedEOF(err)
		}
		if r == '>' {
			if questionMark {
				return &d.procInstBuf, nil
			}
			return nil, errors.New("proc inst closed too early, must end in '?>'")
		}
		questionMark = r == '?'
	}
}

// directive processes a token like: <!  > or <! [] > or <! {} > or <![CDATA[ ]]>
func (d *Decoder) directive(r rune) (Token, error) {
	d.directiveBuf.Data = nil
	for {
		// looping because []{}[]{}
		for r == '[' || r == '{' {
			if d.ReadDirective {
				d.buf.WriteRune(r)
			}

			target := ']'
			if r == '{' {
				target = '}'
			}
			isCloseBracket := func(r rune) bool { return r != target }
			var err error
			r, err = d.consume(isCloseBracket, d.ReadDirective)
			if err != nil {
				return nil, fmt.Errorf("%w, expected %q", err, target)
			}
		}
		if r == '>' {
			if d.ReadDirective {
				d.directiveBuf.Data = d.buf.Bytes()
			}
			return &d.directiveBuf, nil
		}
		if d.ReadDirective {
			d.buf.WriteRune(r)
		}
		var err error
		r, err = d.next()
		if err != nil {
			return nil, checkUnexpectedEOF(err)
		}
	}
}

// consume reads out all runes matching the function and return the first non-matching rune
func (d *Decoder) consume(match func(rune) bool, read bool) (rune, error) {
	for {
		r, err := d.next()
		if err != nil {
			return 0, checkUnexpectedEOF(err)
		}
		if !match(r) {
			return r, nil
		}
		if read {
			d.buf.WriteRune(r)
		}
	}
}

// consumeSpace reads out all spaces and return the last non-space rune
func (d *Decoder) consumeSpace() (rune, error) {
	return d.consume(unicode.IsSpace, false)
}

// readIdentifier reads the next Name for attribute or tag names, first is the already consumed
// leading letter.
//
// the distinction between attribute and tag name is important because attributes can be
// followed up by an equals sign (=) character.
func (d *Decoder) readIdentifier(first rune, isAttribute bool) (*Name, rune, error) {
	d.buf.Reset()
	d.buf.WriteRune(first)
	prev := first
	var r rune
	var err error
	var foundNS bool
loop:
	for {
		r, err = d.next()
		if err != nil {
			return nil, 0, checkUnexpectedEOF(err)
		}
		switch {
		case r == ':' && !foundNS:
			foundNS = true
			d.buf.WriteRune(r)
		case isIdentifierChar(r):
			d.buf.WriteRune(r)
		case unicode.IsSpace(r), r == '/', (r == '=' && isAttribute):
			if prev == ':' {
				return nil, 0, fmt.Errorf("%w reading identifier", unexpectedChar(prev))
			}
			break loop
		case r == '>':
			break loop
		default:
			return nil, 0, fmt.Errorf("%w reading identifier", unexpectedChar(r))
		}
		prev = r
	}

	ident := d.buf.String()
	if d.Lowercase {
		ident = d.lower.String(ident)
	}
	// Somehow implementing a []rune buffer is worse performing than casting buf.String()
	runes := []rune(ident)
	if name, ok := d.names.Get(runes); ok {
		return name.(*Name), r, nil
	}

	var name *Name
	if foundNS {
		parts := strings.SplitN(ident, ":", 2)
		if len(parts[1]) == 0 {
			// We only validate the second part because the first part can't be empty for the code
			// to enter this function.
			return nil, 0, fmt.Errorf("%w reading identifier", unexpectedChar(':'))
		}
		name = &Name{space: parts[0], local: parts[1]}
	} else {
		name = &Name{local: ident}
	}
	d.names.Put(runes, name)
	return name, r, nil
}

// isNameStart reports whether r can start a tag or attribute name, like the Cyrillic a in <автор>
func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierChar(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}
