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

// Package length defines the units in which offsets and columns are
// measured.
package length

import (
	"fmt"
	"unicode/utf8"
)

// Unit is a unit of length for text.
type Unit int

const (
	// Bytes measures length in bytes. Used for binary sources.
	Bytes Unit = iota
	// Runes measures length in Unicode code points. Used for text sources.
	Runes
)

// Len returns the length of text in this unit.
func (u Unit) Len(text string) int {
	switch u {
	case Bytes:
		return len(text)
	case Runes:
		return utf8.RuneCountInString(text)
	default:
		panic(fmt.Sprintf("speclex/length: unknown unit %d", int(u)))
	}
}

// Prefix returns the byte length of the first n units of text, and the number
// of units actually present in that prefix. If text holds fewer than n units,
// the whole of text is returned.
func (u Unit) Prefix(text string, n int) (bytes, units int) {
	switch u {
	case Bytes:
		n = min(n, len(text))
		return n, n
	case Runes:
		for i := range text {
			if units == n {
				return i, units
			}
			units++
		}
		return len(text), units
	default:
		panic(fmt.Sprintf("speclex/length: unknown unit %d", int(u)))
	}
}

// String implements [fmt.Stringer].
func (u Unit) String() string {
	switch u {
	case Bytes:
		return "bytes"
	case Runes:
		return "runes"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// GoString implements [fmt.GoStringer].
func (u Unit) GoString() string {
	switch u {
	case Bytes:
		return "length.Bytes"
	case Runes:
		return "length.Runes"
	default:
		return fmt.Sprintf("length.Unit(%d)", int(u))
	}
}
