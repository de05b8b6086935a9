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

package lexer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bufbuild/speclex/internal/rematch"
	"github.com/bufbuild/speclex/source"
	"github.com/bufbuild/speclex/token"
)

// ErrNoRules is returned by [NewTokenizer] when given no rules.
var ErrNoRules = errors.New("speclex/lexer: no rules")

// Tokenizer turns input into tokens according to an ordered list of rules.
//
// A Tokenizer is immutable once built and may be run over any number of
// inputs concurrently.
type Tokenizer struct {
	// The number of units to request from the input on each refill. Zero
	// means [source.DefaultChunkSize].
	ChunkSize int

	specs    []*Spec
	matchers []*rematch.Matcher
}

// NewTokenizer builds a tokenizer from the given rules, in priority order.
//
// Every pattern is compiled up front, so that a bad pattern is reported here
// rather than partway through some input.
func NewTokenizer(specs ...*Spec) (*Tokenizer, error) {
	if len(specs) == 0 {
		return nil, ErrNoRules
	}

	t := &Tokenizer{
		specs:    slices.Clone(specs),
		matchers: make([]*rematch.Matcher, len(specs)),
	}
	for i, spec := range specs {
		if spec == nil {
			return nil, fmt.Errorf("speclex/lexer: rule %d is nil", i)
		}
		m, err := spec.compiled()
		if err != nil {
			return nil, fmt.Errorf("speclex/lexer: compiling %q: %w", spec.Type, err)
		}
		t.matchers[i] = m
	}
	return t, nil
}

// MustTokenizer is like [NewTokenizer], but panics on error.
func MustTokenizer(specs ...*Spec) *Tokenizer {
	t, err := NewTokenizer(specs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Specs returns this tokenizer's rules, in priority order.
func (t *Tokenizer) Specs() []*Spec {
	return slices.Clone(t.specs)
}

// Run starts tokenizing the input supplied by s.
//
// The returned stream is lazy: input is read only as tokens are requested.
func (t *Tokenizer) Run(s *source.Supplier) *Stream {
	chunk := t.ChunkSize
	if chunk <= 0 {
		chunk = source.DefaultChunkSize
	}

	return &Stream{
		tok:   t,
		input: s,
		index: source.NewLineIndex(s.Mode().Unit()),
		unit:  s.Mode().Unit(),
		chunk: chunk,
		prev:  -1,
		more:  true,
	}
}

// Tokenize is a convenience for tokenizing a complete text in one call.
func (t *Tokenizer) Tokenize(text string, mode source.Mode) ([]token.Token, error) {
	return t.Run(source.FromText(text, mode)).Collect()
}
