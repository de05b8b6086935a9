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

// Package reporter contains the types used to report errors found while
// tokenizing, along with a few helpers for rendering positions and trees.
package reporter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/speclex/source"
)

// ErrInvalidSource is a sentinel error returned by [Handler.Error] when errors
// were reported but the configured [ErrorReporter] always returned nil.
var ErrInvalidSource = errors.New("speclex/reporter: invalid source")

// Position is a location in a named input.
//
// A Column of -1 means the column is not known.
type Position struct {
	Path   string
	Line   int
	Column int
	Offset int
}

// PositionOf returns the position of loc within the input named path.
func PositionOf(path string, loc source.Location) Position {
	return Position{Path: path, Line: loc.Line, Column: loc.Column, Offset: loc.Offset}
}

// String implements [fmt.Stringer].
//
// The format is "path:line:column"; the path is omitted when empty and the
// column when unknown.
func (p Position) String() string {
	var b strings.Builder
	if p.Path != "" {
		b.WriteString(p.Path)
		b.WriteByte(':')
	}
	b.WriteString(strconv.Itoa(p.Line))
	if p.Column >= 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(p.Column))
	}
	return b.String()
}

// ErrorWithPos is an error about an input that includes information about the
// location in the input that caused the error.
//
// The value of Error() will contain both the position and the underlying
// error. The value of Unwrap() will only be the underlying error.
type ErrorWithPos interface {
	error
	GetPosition() Position
	Unwrap() error
}

// Error wraps err with a position.
func Error(pos Position, err error) ErrorWithPos {
	return errorWithPos{pos: pos, underlying: err}
}

// Errorf creates a new error with a position.
func Errorf(pos Position, format string, args ...any) ErrorWithPos {
	return errorWithPos{pos: pos, underlying: fmt.Errorf(format, args...)}
}

type errorWithPos struct {
	underlying error
	pos        Position
}

func (e errorWithPos) Error() string {
	return fmt.Sprintf("%s: %v", e.pos, e.underlying)
}

// GetPosition implements [ErrorWithPos].
func (e errorWithPos) GetPosition() Position {
	return e.pos
}

// Unwrap implements [ErrorWithPos]. The returned error does not include
// location information.
func (e errorWithPos) Unwrap() error {
	return e.underlying
}

var _ ErrorWithPos = errorWithPos{}

// SyntaxError is an error raised by a parser consuming tokens. Pos is nil when
// the error has no known region.
type SyntaxError struct {
	Msg string
	Pos *source.Span
}

// Error implements [error].
//
// When Pos is set, the message is prefixed with the span formatted by
// [FormatSpan].
func (e *SyntaxError) Error() string {
	if e.Pos == nil {
		return e.Msg
	}
	return FormatSpan(*e.Pos) + ": " + e.Msg
}

// FormatSpan formats a span as "startLine,startColumn-endLine,endColumn".
func FormatSpan(span source.Span) string {
	return span.String()
}
