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
	"context"
	"io"
	"strings"
)

// newParserDecoder returns a Decoder set up the way the title extractor expects: balanced tags,
// lower case names and text trimmed at both ends but otherwise kept as written.
func newParserDecoder(r io.Reader) *Decoder {
	d := NewDecoder(r)
	d.Strict = true
	d.Lowercase = true
	d.Trim = true
	d.KeepSpace = true
	return d
}

// Run feeds the extractor with the whole input of r and resolves its future. It returns once the
// input is exhausted or decoding fails.
func (x *TitleExtractor) Run(r io.Reader) {
	Stream(newParserDecoder(r), x)
}

// ParseAsync extracts titles from xml on a new goroutine with a fresh extractor. The returned
// future resolves once the whole input was processed.
func ParseAsync(xml string, opts ...Option) *Future {
	x := NewTitleExtractor(opts...)
	go x.Run(strings.NewReader(xml))
	return x.Future()
}

// Parse extracts the titles of the matching books from xml.
//
// An empty input yields no titles and no error. Any decoding problem is reported as a
// *MalformedInputError and no titles are returned.
func Parse(xml string, opts ...Option) ([]TitleResult, error) {
	return ParseReader(strings.NewReader(xml), opts...)
}

// ParseReader is like Parse but streams the input from r.
func ParseReader(r io.Reader, opts ...Option) ([]TitleResult, error) {
	x := NewTitleExtractor(opts...)
	x.Run(r)
	return x.Future().Wait(context.Background())
}
