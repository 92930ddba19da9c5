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

// attrBuffer is a helper buffer for Attr pointers of the StartTag being decoded.
//
// The backing array is reused between tags, get hands out a slice that is only valid until the
// next StartTag is decoded.
type attrBuffer struct {
	buf []*Attr
}

func newAttrBuffer(capacity int) *attrBuffer {
	return &attrBuffer{buf: make([]*Attr, 0, capacity)}
}

func (b *attrBuffer) reset() {
	clear(b.buf)
	b.buf = b.buf[:0]
}

func (b *attrBuffer) add(attr *Attr) {
	b.buf = append(b.buf, attr)
}

// has reports whether an attribute with the same name was already added to the current tag.
func (b *attrBuffer) has(name *Name) bool {
	for _, a := range b.buf {
		// Names are interned by the decoder so pointer equality is enough.
		if a.Name == name {
			return true
		}
	}
	return false
}

func (b *attrBuffer) get() []*Attr {
	if len(b.buf) == 0 {
		return nil
	}
	return b.buf
}
