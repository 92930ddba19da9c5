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

import "strings"

// Event is a low-level markup notification:
//
// * OpenEvent: an element was opened, <book category="fiction">
// * TextEvent: text content between tags
// * CloseEvent: an element was closed, </book>
// * ErrorEvent: the source failed, no more events follow
// * EndEvent: the source is exhausted, no more events follow
type Event interface {
	event()
}

// OpenEvent is emitted for every StartTag, including self-closing ones.
type OpenEvent struct {
	Name  string
	Attrs map[string]string
}

// TextEvent carries text content, possibly untrimmed depending on the source.
type TextEvent struct {
	Content string
}

// CloseEvent is emitted for every CloseTag.
type CloseEvent struct {
	Name string
}

// ErrorEvent carries the error reported by the source.
type ErrorEvent struct {
	Err error
}

// EndEvent marks the end of the input.
type EndEvent struct{}

func (OpenEvent) event() {}
func (TextEvent) event() {}
func (CloseEvent) event() {}
func (ErrorEvent) event() {}
func (EndEvent) event() {}

// Handler receives markup notifications one at a time, in document order.
//
// A source calls exactly one of OnError or OnEnd, once, and nothing after it.
type Handler interface {
	OnOpenTag(name string, attrs map[string]string)
	OnText(text string)
	OnCloseTag(name string)
	OnError(err error)
	OnEnd()
}

// Dispatch routes an Event to the matching Handler method.
func Dispatch(h Handler, ev Event) {
	switch ev := ev.(type) {
	case OpenEvent:
		h.OnOpenTag(ev.Name, ev.Attrs)
	case TextEvent:
		h.OnText(ev.Content)
	case CloseEvent:
		h.OnCloseTag(ev.Name)
	case ErrorEvent:
		h.OnError(ev.Err)
	case EndEvent:
		h.OnEnd()
	}
}

// Recorder is a Handler that keeps every notification as an Event. Handy to inspect what a
// source emits.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnOpenTag(name string, attrs map[string]string) {
	r.Events = append(r.Events, OpenEvent{Name: name, Attrs: attrs})
}

func (r *Recorder) OnText(text string) {
	r.Events = append(r.Events, TextEvent{Content: text})
}

func (r *Recorder) OnCloseTag(name string) {
	r.Events = append(r.Events, CloseEvent{Name: name})
}

func (r *Recorder) OnError(err error) {
	r.Events = append(r.Events, ErrorEvent{Err: err})
}

func (r *Recorder) OnEnd() {
	r.Events = append(r.Events, EndEvent{})
}

// Stream drives h with the tokens of d until EOF or the first error.
//
// Comments, processing instructions and directives are dropped. Whitespace-only text is dropped
// too so handlers see the same events whether or not d trims.
func Stream(d *Decoder, h Handler) {
	for {
		tok, err := d.Token()
		if err != nil {
			if isEOF(err) {
				h.OnEnd()
				return
			}
			h.OnError(err)
			return
		}

		switch tok := tok.(type) {
		case *StartTag:
			h.OnOpenTag(tok.Name.String(), tok.AttrMap())
		case *CloseTag:
			h.OnCloseTag(tok.Name.String())
		case *CharData:
			text := string(tok.Data)
			if strings.TrimSpace(text) == "" {
				continue
			}
			h.OnText(text)
		}
	}
}
