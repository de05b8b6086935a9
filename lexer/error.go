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

	"github.com/bufbuild/speclex/reporter"
)

// ErrNoMatch is the error every [*Error] unwraps to.
var ErrNoMatch = errors.New("speclex/lexer: no pattern matches input")

// The number of units of unmatched input quoted in an [Error].
const excerptLen = 10

// Error is returned when input remains that no rule matches.
type Error struct {
	// A description of the error, quoting the start of the unmatched input.
	Message string

	// The name of the input, or empty if it has none.
	Path string
	// The position of the unmatched input. Line is 1-indexed; Column is
	// 0-indexed, or -1 if not known.
	Line, Column int
	// The offset of the unmatched input from the start of the input.
	Offset int

	// The start of the unmatched input.
	Excerpt string
}

var _ reporter.ErrorWithPos = (*Error)(nil)

// Error implements [error].
func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.GetPosition(), e.Message)
}

// GetPosition implements [reporter.ErrorWithPos].
func (e *Error) GetPosition() reporter.Position {
	return reporter.Position{
		Path:   e.Path,
		Line:   e.Line,
		Column: e.Column,
		Offset: e.Offset,
	}
}

// Unwrap implements [reporter.ErrorWithPos]. It always returns [ErrNoMatch].
func (e *Error) Unwrap() error {
	return ErrNoMatch
}
