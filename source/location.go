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

package source

import "fmt"

// Location is a position in a source, in the units of the [LineIndex] that
// produced it.
type Location struct {
	// The offset of this location from the start of the source.
	Offset int

	// The line this location is on. 1-indexed.
	Line int

	// The column of this location within its line. 0-indexed.
	Column int
}

// String implements [fmt.Stringer].
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span is a half-open region between two locations.
type Span struct {
	Start, End Location
}

// IsZero returns whether this is the zero span.
func (s Span) IsZero() bool {
	return s == Span{}
}

// String implements [fmt.Stringer].
//
// The format is "startLine,startColumn-endLine,endColumn".
func (s Span) String() string {
	return fmt.Sprintf("%d,%d-%d,%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
