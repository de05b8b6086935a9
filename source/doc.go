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

// Package source provides the input side of the tokenizer: suppliers that
// deliver text in chunks from memory or from streams, and the line index
// used to turn offsets into line and column pairs.
//
// [Supplier] abstracts over in-memory text, in-memory bytes and open
// [io.Reader]s. [LineIndex] ingests the same chunks the tokenizer consumes
// and answers offset lookups. [Opener] is a common interface for opening
// named inputs as suppliers.
package source

import (
	"errors"

	"github.com/bufbuild/speclex/source/length"
)

var (
	// ErrExhausted is returned by [Supplier.Next] once every unit of input has
	// been delivered. Callers should treat it as end of input.
	ErrExhausted = errors.New("speclex/source: input exhausted")

	// ErrUnsupportedSource is returned by [New] when given something that is
	// neither text, bytes nor a stream.
	ErrUnsupportedSource = errors.New("speclex/source: unsupported source")

	// ErrInvalidOffset is returned by [LineIndex] lookups given a negative
	// offset.
	ErrInvalidOffset = errors.New("speclex/source: invalid offset")
)

// Mode is the mode a [Supplier] operates in. It is fixed at construction and
// applied to all transcoding.
type Mode int

const (
	// Text mode delivers valid UTF-8 and measures positions in runes.
	Text Mode = iota
	// Binary mode delivers raw bytes and measures positions in bytes.
	Binary
)

// Unit returns the unit positions are measured in for this mode.
func (m Mode) Unit() length.Unit {
	if m == Binary {
		return length.Bytes
	}
	return length.Runes
}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	if m == Binary {
		return "binary"
	}
	return "text"
}
