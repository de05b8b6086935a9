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

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bufbuild/speclex/source/length"
)

// NoOffset is returned by [LineIndex] lookups in place of a line boundary that
// has not been observed.
const NoOffset = -1

// LineIndex records where lines begin in a stream of text that is handed to
// it incrementally.
//
// Offsets are measured in the index's [length.Unit]. The index covers exactly
// the prefix of the stream passed to [LineIndex.Track] so far.
//
// A LineIndex is not safe for concurrent use; it may, however, be queried
// between calls to Track for offsets it has not reached yet.
type LineIndex struct {
	unit length.Unit

	// The offset immediately after each line terminator seen so far. Strictly
	// increasing. lines[i] is the offset at which line i+1 (zero-based) begins.
	lines []int
	// Total length ingested.
	pos int
}

// NewLineIndex returns an empty index measuring offsets in unit.
func NewLineIndex(unit length.Unit) *LineIndex {
	return &LineIndex{unit: unit}
}

// Unit returns the unit this index measures offsets in.
func (x *LineIndex) Unit() length.Unit {
	return x.unit
}

// Len returns the total length of text ingested so far.
func (x *LineIndex) Len() int {
	return x.pos
}

// Lines returns the number of line terminators seen so far.
func (x *LineIndex) Lines() int {
	return len(x.lines)
}

// Track ingests the next chunk of text. It must be called exactly once per
// chunk, in order, before any offset inside the chunk is queried.
//
// Both \r\n and \n count as a single terminator. Returns the new number of
// terminators seen, the offset at which the chunk starts, and the end offsets
// of the terminators within the chunk, relative to the chunk.
func (x *LineIndex) Track(text string) (lines, start int, ends []int) {
	start = x.pos

	var units int
	for rest := text; ; {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			break
		}

		units += x.unit.Len(rest[:nl+1])
		ends = append(ends, units)
		x.lines = append(x.lines, start+units)
		rest = rest[nl+1:]
	}

	x.pos += x.unit.Len(text)
	return len(x.lines), start, ends
}

// Find returns the zero-based line containing offset, and the offset at which
// the following line begins.
//
// next is [NoOffset] if no terminator has been seen after offset; in
// particular, an offset past everything ingested resolves to the line count.
// offset is assumed to lie within tracked text.
//
// This operation is O(log n).
func (x *LineIndex) Find(offset int) (line, next int, err error) {
	if offset < 0 {
		return 0, NoOffset, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}

	// The number of line starts at or before offset is the index of the first
	// one after it.
	line, _ = slices.BinarySearch(x.lines, offset+1)
	if line == len(x.lines) {
		return line, NoOffset, nil
	}
	return line, x.lines[line], nil
}

// FindLast is like [LineIndex.Find], but tolerates offsets the index has not
// caught up with yet. It returns the line containing offset and the offset at
// which that line ends.
//
// An offset at or past [LineIndex.Len] resolves to ([LineIndex.Lines],
// [NoOffset]). Otherwise the lines are scanned backwards from the most
// recent one, which is cheap for offsets near the end of the index.
func (x *LineIndex) FindLast(offset int) (line, end int, err error) {
	if offset < 0 {
		return 0, NoOffset, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}

	n := len(x.lines)
	if offset >= x.pos {
		return n, NoOffset, nil
	}

	for c := n; c > 0; c-- {
		if offset >= x.lines[c-1] {
			if c < n {
				return c, x.lines[c], nil
			}
			return c, NoOffset, nil
		}
	}
	if n == 0 {
		return 0, NoOffset, nil
	}
	return 0, x.lines[0], nil
}

// LineStart returns the offset at which the given zero-based line begins, or
// [NoOffset] if that line has not been seen.
func (x *LineIndex) LineStart(line int) int {
	switch {
	case line == 0:
		return 0
	case line < 0 || line > len(x.lines):
		return NoOffset
	default:
		return x.lines[line-1]
	}
}

// Location returns the location of offset.
func (x *LineIndex) Location(offset int) (Location, error) {
	line, _, err := x.Find(offset)
	if err != nil {
		return Location{}, err
	}
	return Location{
		Offset: offset,
		Line:   line + 1,
		Column: offset - x.LineStart(line),
	}, nil
}
