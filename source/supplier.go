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
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bufbuild/speclex/source/length"
)

// DefaultChunkSize is the number of bytes a stream-backed [Supplier] reads
// per refill when ChunkSize is not set.
const DefaultChunkSize = 4096

// Supplier delivers input in chunks, tracking a monotonic position.
//
// A Supplier is backed either by a fixed in-memory buffer or by a stream; the
// variant is chosen once by the constructor. Content that has been delivered
// is discarded, so a stream-backed Supplier only ever holds the part of the
// stream that has been read but not yet handed out.
//
// A Supplier is not safe for concurrent use.
type Supplier struct {
	// The number of bytes read from the stream per refill, and the number of
	// units returned by Next when passed a non-positive count. Zero means
	// DefaultChunkSize.
	ChunkSize int

	mode Mode
	unit length.Unit
	name string

	// Non-nil for stream-backed suppliers.
	stream io.Reader
	eof    bool

	// buf[start:] is content that has been buffered but not yet delivered.
	buf   string
	start int
	// A trailing incomplete UTF-8 sequence held back from the last read, so
	// that text mode never splits a rune.
	pending []byte

	pos int
}

// New constructs a new Supplier from src, which must be a string, a []byte or
// an [io.Reader]. Any other type results in [ErrUnsupportedSource].
func New(src any, mode Mode) (*Supplier, error) {
	switch src := src.(type) {
	case string:
		return FromText(src, mode), nil
	case []byte:
		return FromBytes(src, mode), nil
	case io.Reader:
		return FromReader(src, mode), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}

// FromText constructs a Supplier over in-memory text.
func FromText(text string, mode Mode) *Supplier {
	return &Supplier{
		mode: mode,
		unit: mode.Unit(),
		buf:  mode.transcode(text),
	}
}

// FromBytes constructs a Supplier over an in-memory byte slice. The slice is
// copied.
func FromBytes(data []byte, mode Mode) *Supplier {
	return FromText(string(data), mode)
}

// FromReader constructs a Supplier that reads from r on demand.
//
// If r has a Name method, as [os.File] does, the supplier's name is the
// absolute form of that name.
func FromReader(r io.Reader, mode Mode) *Supplier {
	s := &Supplier{
		mode:   mode,
		unit:   mode.Unit(),
		stream: r,
	}
	if named, ok := r.(interface{ Name() string }); ok {
		s.name = resolve(named.Name())
	}
	return s
}

// WithName overrides the name this supplier reports for diagnostics, and
// returns s.
func (s *Supplier) WithName(name string) *Supplier {
	s.name = name
	return s
}

// Name returns the source identifier for diagnostics. It is empty for
// in-memory sources, unless set with [Supplier.WithName].
func (s *Supplier) Name() string {
	return s.name
}

// Mode returns the mode this supplier was constructed with.
func (s *Supplier) Mode() Mode {
	return s.mode
}

// Pos returns the total number of units delivered so far.
func (s *Supplier) Pos() int {
	return s.pos
}

// Next returns the next n units of input, advancing the position by the
// number of units returned. If n is not positive, ChunkSize units are
// requested.
//
// If fewer than n units remain, whatever remains is returned. Once nothing
// remains, Next returns [ErrExhausted].
func (s *Supplier) Next(n int) (string, error) {
	if n <= 0 {
		n = s.chunkSize()
	}

	for s.stream != nil && !s.eof {
		if _, units := s.unit.Prefix(s.buf[s.start:], n); units >= n {
			break
		}
		if err := s.fill(); err != nil {
			return "", err
		}
	}

	size, units := s.unit.Prefix(s.buf[s.start:], n)
	if units == 0 {
		return "", ErrExhausted
	}

	chunk := s.buf[s.start : s.start+size]
	s.start += size
	s.pos += units
	return chunk, nil
}

// Close closes the underlying stream, if it is an [io.Closer].
func (s *Supplier) Close() error {
	if c, ok := s.stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Supplier) chunkSize() int {
	if s.ChunkSize > 0 {
		return s.ChunkSize
	}
	return DefaultChunkSize
}

// fill reads one chunk from the stream and appends it to the buffer,
// discarding everything that has already been delivered.
func (s *Supplier) fill() error {
	raw := make([]byte, len(s.pending)+s.chunkSize())
	copy(raw, s.pending)

	var n int
	for n == 0 && !s.eof {
		var err error
		n, err = s.stream.Read(raw[len(s.pending):])
		if errors.Is(err, io.EOF) {
			s.eof = true
		} else if err != nil {
			return fmt.Errorf("speclex/source: reading %q: %w", s.name, err)
		}
	}

	data := raw[:len(s.pending)+n]
	cut := len(data)
	if s.mode == Text && !s.eof {
		cut = incompleteSuffix(data)
	}
	s.pending = bytes.Clone(data[cut:])

	s.buf = s.buf[s.start:] + s.mode.transcode(string(data[:cut]))
	s.start = 0
	return nil
}

// transcode converts text into the representation this mode delivers.
//
// In text mode every invalid byte becomes its own U+FFFD, so that the result
// does not depend on where the input was split into reads.
func (m Mode) transcode(text string) string {
	if m != Text || utf8.ValidString(text) {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))
	for text != "" {
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			out.WriteRune(utf8.RuneError)
		} else {
			out.WriteString(text[:size])
		}
		text = text[size:]
	}
	return out.String()
}

// incompleteSuffix returns the offset of a trailing UTF-8 sequence in data that
// is a valid prefix of a longer rune, or len(data) if there is none.
func incompleteSuffix(data []byte) int {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			return i
		}
		break
	}
	return len(data)
}

func resolve(name string) string {
	abs, err := filepath.Abs(name)
	if err != nil {
		return filepath.Clean(name)
	}
	return abs
}
