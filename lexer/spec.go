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

// Package lexer implements a streaming tokenizer driven by an ordered list of
// regular-expression rules.
//
// A [Tokenizer] is built from [Spec]s and run over a [source.Supplier],
// producing a [Stream] of [token.Token]s. At every position the longest match
// among all rules wins, with ties going to the rule declared first. Input is
// consumed in chunks, and a match is only committed once no further input
// could make a different rule win, so the token sequence does not depend on
// the chunk size.
package lexer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bufbuild/speclex/internal/rematch"
)

// Spec is a single tokenization rule: a token type and the pattern that
// recognizes it.
//
// Patterns use RE2 syntax. Matches are anchored at the current position.
//
// A Spec must not be copied after first use.
type Spec struct {
	// The type given to tokens this rule produces. Several rules may share a
	// type.
	Type string `yaml:"type"`
	// The pattern tokens of this type match.
	Pattern string `yaml:"pattern"`

	// Match letters case-insensitively. Tokens produced by such a rule also
	// compare case-insensitively; see [token.Token.Equal].
	IgnoreCase bool `yaml:"ignore_case"`
	// Let ^ and $ match at line boundaries.
	Multiline bool `yaml:"multiline"`
	// Prefer the longest alternative within the pattern, rather than the
	// first one that matches.
	Longest bool `yaml:"longest"`

	once    sync.Once
	matcher *rematch.Matcher
	err     error
}

// NewSpec returns a case-sensitive rule producing tokens of type typ.
func NewSpec(typ, pattern string) *Spec {
	return &Spec{Type: typ, Pattern: pattern}
}

// CaseSensitive returns whether tokens produced by this rule compare
// case-sensitively.
func (s *Spec) CaseSensitive() bool {
	return !s.IgnoreCase
}

// Compile compiles this rule's pattern.
//
// The pattern is compiled on the first call; later calls return the same
// result. Changing the rule's fields after the first call has no effect.
func (s *Spec) Compile() error {
	_, err := s.compiled()
	return err
}

func (s *Spec) compiled() (*rematch.Matcher, error) {
	s.once.Do(func() {
		s.matcher, s.err = rematch.Compile(s.Pattern, rematch.Flags{
			IgnoreCase: s.IgnoreCase,
			Multiline:  s.Multiline,
			Longest:    s.Longest,
		})
	})
	return s.matcher, s.err
}

// String implements [fmt.Stringer].
func (s *Spec) String() string {
	var flags []string
	if s.IgnoreCase {
		flags = append(flags, "ignore_case")
	}
	if s.Multiline {
		flags = append(flags, "multiline")
	}
	if s.Longest {
		flags = append(flags, "longest")
	}
	if len(flags) == 0 {
		return fmt.Sprintf("Spec(%q, %q)", s.Type, s.Pattern)
	}
	return fmt.Sprintf("Spec(%q, %q, %s)", s.Type, s.Pattern, strings.Join(flags, "|"))
}
