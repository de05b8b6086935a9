// Copyright 2020-2025 Buf Technologies, Inc.
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

package token

import (
	"fmt"
	"iter"

	"github.com/bufbuild/speclex/internal/interval"
)

// Index maps offsets to the tokens covering them.
//
// A zero Index is ready to use.
type Index struct {
	spans interval.Map[int, Token]
	empty int
}

// Insert adds tok to the index. Tokens may be inserted in any order, but may
// not overlap. Empty tokens cover no offsets and are only counted.
func (x *Index) Insert(tok Token) error {
	if tok.Len() == 0 {
		x.empty++
		return nil
	}

	if overlap, ok := x.spans.Insert(tok.Start(), tok.End(), tok); !ok {
		return fmt.Errorf("speclex/token: %v at %d overlaps %v at %d", tok, tok.Start(), overlap.Value, overlap.Start)
	}
	return nil
}

// At returns the token covering offset.
func (x *Index) At(offset int) (Token, bool) {
	found, ok := x.spans.Get(offset)
	return found.Value, ok
}

// Len returns the number of tokens in the index.
func (x *Index) Len() int {
	return x.spans.Len() + x.empty
}

// All returns an iterator over the non-empty tokens in the index, in offset
// order.
func (x *Index) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for span := range x.spans.All() {
			if !yield(span.Value) {
				return
			}
		}
	}
}
