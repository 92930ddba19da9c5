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
	"slices"
	"sync"
)

// Future is the one-shot completion signal of a parse. It resolves exactly once, either with the
// extracted titles or with a *MalformedInputError, whichever comes first.
type Future struct {
	once    sync.Once
	done    chan struct{}
	results []TitleResult
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve reports false if the future was already resolved, in which case nothing changes.
func (f *Future) resolve(results []TitleResult, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.results = results
		f.err = err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether Wait would return without blocking.
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome without blocking. ok is false while the parse is still running.
func (f *Future) Result() (titles []TitleResult, ok bool, err error) {
	if !f.Resolved() {
		return nil, false, nil
	}
	if f.err != nil {
		return nil, true, f.err
	}
	return slices.Clone(f.results), true, nil
}

// Wait blocks until the future resolves or ctx is done. Cancelling ctx only stops the wait, the
// parse itself keeps running until its input is exhausted.
//
// Every caller gets its own copy of the titles.
func (f *Future) Wait(ctx context.Context) ([]TitleResult, error) {
	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return slices.Clone(f.results), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
