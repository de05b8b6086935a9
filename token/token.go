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

// Package token defines the tokens produced by the lexer.
//
// A [Token] is an immutable value carrying its type, its text and its start
// offset. Line and column information is not computed when the token is
// produced; instead each token holds a shared reference to the
// [source.LineIndex] of the stream it came from, and [Token.Span] consults it
// on demand.
package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bufbuild/speclex/source"
	"github.com/bufbuild/speclex/source/length"
)

// ErrNoIndex is returned by [Token.Span] for tokens that were not produced
// against a line index, such as wildcards.
var ErrNoIndex = errors.New("speclex/token: token has no line index")

// Token is a typed, positioned piece of matched input.
//
// The zero Token is a valueless token with the empty type.
type Token struct {
	typ  string
	text string
	// Whether text is meaningful; false for wildcards.
	valued bool
	fold   bool

	start, length int

	// Shared with every other token from the same stream. Never mutated
	// through a token.
	index *source.LineIndex
}

// New constructs a token of type typ with the given text, starting at the
// given offset.
//
// If caseSensitive is false, the token's value compares case-insensitively.
// index is the line index offsets refer to; it may be nil, in which case
// offsets are assumed to be in runes and [Token.Span] is unavailable.
func New(typ, text string, start int, caseSensitive bool, index *source.LineIndex) Token {
	unit := length.Runes
	if index != nil {
		unit = index.Unit()
	}

	return Token{
		typ:    typ,
		text:   text,
		valued: true,
		fold:   !caseSensitive,
		start:  start,
		length: unit.Len(text),
		index:  index,
	}
}

// Wildcard returns a token of type typ that has no value. Used as a pattern
// with [Token.Matches], it matches every token of that type.
func Wildcard(typ string) Token {
	return Token{typ: typ}
}

// IsZero returns whether this is the zero token.
func (t Token) IsZero() bool {
	return t == Token{}
}

// Type returns this token's type tag.
func (t Token) Type() string {
	return t.typ
}

// Text returns the raw matched text. In binary mode this may not be valid
// UTF-8.
func (t Token) Text() string {
	return t.text
}

// Bytes returns the raw matched text as bytes.
func (t Token) Bytes() []byte {
	return []byte(t.text)
}

// HasValue returns false for wildcard tokens.
func (t Token) HasValue() bool {
	return t.valued
}

// CaseSensitive returns whether this token's value compares case-sensitively.
func (t Token) CaseSensitive() bool {
	return !t.fold
}

// Value returns the value used for comparisons: the text, lowercased if the
// token is case-insensitive.
func (t Token) Value() string {
	if t.fold {
		return strings.ToLower(t.text)
	}
	return t.text
}

// Start returns the offset of the first unit of this token.
func (t Token) Start() int {
	return t.start
}

// End returns the offset just past the last unit of this token.
func (t Token) End() int {
	return t.start + t.length
}

// Len returns the length of this token's text in its stream's units.
func (t Token) Len() int {
	return t.length
}

// Index returns the line index this token's offsets refer to, if any.
func (t Token) Index() *source.LineIndex {
	return t.index
}

// Equal returns whether two tokens have the same type and value.
//
// Tokens without a value never compare equal, not even to themselves.
func (t Token) Equal(that Token) bool {
	return t.typ == that.typ &&
		t.valued && that.valued &&
		t.Value() == that.Value()
}

// Matches is like [Token.Equal], except that a token without a value matches
// any token of the same type.
func (t Token) Matches(pattern Token) bool {
	if t.typ != pattern.typ {
		return false
	}
	return !t.valued || !pattern.valued || t.Value() == pattern.Value()
}

// Span computes the line and column range of this token.
//
// The end of the span is attributed to the line holding the token's last
// unit, so a token ending in a newline ends on the line it started on rather
// than at column 0 of the next one.
func (t Token) Span() (source.Span, error) {
	if t.index == nil {
		return source.Span{}, ErrNoIndex
	}

	line, next, err := t.index.Find(t.start)
	if err != nil {
		return source.Span{}, err
	}
	start := source.Location{
		Offset: t.start,
		Line:   line + 1,
		Column: t.start - t.index.LineStart(line),
	}

	end := t.End()
	if t.length == 0 || next == source.NoOffset || end < next {
		return source.Span{
			Start: start,
			End: source.Location{
				Offset: end,
				Line:   start.Line,
				Column: start.Column + t.length,
			},
		}, nil
	}

	last, err := t.index.Location(end - 1)
	if err != nil {
		return source.Span{}, err
	}
	return source.Span{
		Start: start,
		End: source.Location{
			Offset: end,
			Line:   last.Line,
			Column: last.Column + 1,
		},
	}, nil
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	if !t.valued {
		return fmt.Sprintf("Token(%s)", t.typ)
	}
	return fmt.Sprintf("Token(%s, %q)", t.typ, t.text)
}

// EBNF renders this token as an EBNF terminal: its quoted value, or a special
// sequence naming its type if it has no value.
func (t Token) EBNF() string {
	if !t.valued {
		return fmt.Sprintf("? %s ?", t.typ)
	}
	return fmt.Sprintf("'%s'", t.text)
}
