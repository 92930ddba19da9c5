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
	"errors"
	"log/slog"
	"strings"

	"github.com/Goodwine/xmltitles/internal/stack"
)

// DefaultCategory is the book category selected when no WithCategory option is given.
const DefaultCategory = "fiction"

const (
	bookTag  = "book"
	titleTag = "title"

	categoryAttr = "category"
	langAttr     = "lang"
)

// TitleResult is a committed title of a qualifying book.
type TitleResult struct {
	Text     string `json:"text" yaml:"text"`
	Lang     string `json:"lang" yaml:"lang"`
	Category string `json:"category" yaml:"category"`
}

// pendingTitle is the title being read, only meaningful while inside a qualifying <title>.
type pendingTitle struct {
	active bool
	text   string
	lang   string
}

// Option configures a TitleExtractor.
type Option func(*TitleExtractor)

// WithCategory selects books whose category attribute equals category.
func WithCategory(category string) Option {
	return func(x *TitleExtractor) {
		x.category = category
	}
}

// WithLogger sets the logger for parse diagnostics. Nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(x *TitleExtractor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// TitleExtractor collects the titles of the books in a given category from a stream of markup
// events.
//
// An extractor serves exactly one parse and must not be fed from more than one goroutine. Books
// are expected to be flat: a <book> nested in another one replaces the outer category match and
// the outer match is not restored when the inner book closes.
type TitleExtractor struct {
	category string
	logger   *slog.Logger

	path    *stack.Stack[string]
	inBook  bool
	pending pendingTitle
	results []TitleResult

	future *Future
}

var _ Handler = (*TitleExtractor)(nil)

// NewTitleExtractor returns an extractor ready for a single parse.
func NewTitleExtractor(opts ...Option) *TitleExtractor {
	x := &TitleExtractor{
		category: DefaultCategory,
		logger:   slog.New(slog.DiscardHandler),
		path:     stack.New[string](8),
		future:   newFuture(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Future returns the completion signal of this extractor's parse.
func (x *TitleExtractor) Future() *Future {
	return x.future
}

// Feed processes one event. Events arriving after the future resolved are ignored.
func (x *TitleExtractor) Feed(ev Event) {
	if x.future.Resolved() {
		return
	}
	switch ev := ev.(type) {
	case OpenEvent:
		x.openTag(ev.Name, ev.Attrs)
	case TextEvent:
		x.text(ev.Content)
	case CloseEvent:
		x.closeTag(ev.Name)
	case ErrorEvent:
		x.fail(ev.Err)
	case EndEvent:
		x.end()
	}
}

func (x *TitleExtractor) OnOpenTag(name string, attrs map[string]string) {
	x.Feed(OpenEvent{Name: name, Attrs: attrs})
}

func (x *TitleExtractor) OnText(text string) {
	x.Feed(TextEvent{Content: text})
}

func (x *TitleExtractor) OnCloseTag(name string) {
	x.Feed(CloseEvent{Name: name})
}

func (x *TitleExtractor) OnError(err error) {
	x.Feed(ErrorEvent{Err: err})
}

func (x *TitleExtractor) OnEnd() {
	x.Feed(EndEvent{})
}

func (x *TitleExtractor) openTag(name string, attrs map[string]string) {
	x.path.Push(name)
	switch {
	case name == bookTag:
		x.inBook = attrs[categoryAttr] == x.category
	case name == titleTag && x.inBook:
		x.pending = pendingTitle{active: true, lang: attrs[langAttr]}
	}
}

func (x *TitleExtractor) text(content string) {
	top, _ := x.path.Peek()
	if top != titleTag || !x.inBook {
		return
	}
	// Latest non-empty text wins, text nodes are not concatenated.
	if trimmed := strings.TrimSpace(content); trimmed != "" {
		x.pending.active = true
		x.pending.text = trimmed
	}
}

func (x *TitleExtractor) closeTag(name string) {
	// The decoder guarantees balanced tags, a mismatched name is not checked here.
	x.path.Pop()
	switch name {
	case bookTag:
		x.inBook = false
	case titleTag:
		if x.inBook && x.pending.active && x.pending.text != "" {
			title := TitleResult{Text: x.pending.text, Lang: x.pending.lang, Category: x.category}
			x.results = append(x.results, title)
			x.logger.Debug("title matched", "text", title.Text, "lang", title.Lang)
		}
		x.pending = pendingTitle{}
	}
}

func (x *TitleExtractor) fail(err error) {
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		malformed = &MalformedInputError{Err: err}
	}
	x.results = nil
	if x.future.resolve(nil, malformed) {
		x.logger.Debug("parsing failed", "err", malformed)
	}
}

func (x *TitleExtractor) end() {
	results := make([]TitleResult, len(x.results))
	copy(results, x.results)
	if x.future.resolve(results, nil) {
		x.logger.Debug("parsing completed", "titles", len(results))
	}
}
