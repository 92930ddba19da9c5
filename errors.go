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
	"io"
)

// MalformedInputError is the only error a parse resolves with. It wraps the error reported by the
// Decoder, which carries the row and column where decoding failed.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	if e.Err == nil {
		return "malformed input"
	}
	return "malformed input: " + e.Err.Error()
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
