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
	"iter"
	"unicode/utf8"

	"github.com/bufbuild/speclex/internal/ext/unicodex"
	"github.com/bufbuild/speclex/source"
	"github.com/bufbuild/speclex/source/length"
	"github.com/bufbuild/speclex/token"
)

// Stream is a lazy sequence of tokens produced by [Tokenizer.Run].
//
// A Stream is used like a [bufio.Scanner]:
//
//	for stream.Next() {
//		tok := stream.Token()
//		// ...
//	}
//	if err := stream.Err(); err != nil {
//		// ...
//	}
//
// A Stream cannot be restarted, and is not safe for concurrent use.
type Stream struct {
	tok   *Tokenizer
	input *source.Supplier
	index *source.LineIndex
	unit  length.Unit
	chunk int

	buf  string // Buffered input; buf[pos:] is not yet tokenized.
	pos  int
	tail int // Units in buf[pos:].
	gpos int // Units consumed since the start of the input.
	prev rune

	more   bool // Whether the input may have more to give.
	refill bool // Whether the next step must refill before matching.

	cur  token.Token
	err  error
	done bool
}

// Next advances to the next token, returning false at the end of the input or
// on error.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}

	for {
		if s.more && (s.refill || s.tail == 0 || s.tail < s.chunk/2) {
			s.refill = false
			if err := s.fill(); err != nil {
				return s.stop(err)
			}
		}

		if s.tail == 0 {
			if s.more {
				continue
			}
			return s.stop(nil)
		}

		best, end, ambiguous := s.match()
		switch {
		case ambiguous:
			s.refill = true
		case best >= 0:
			s.emit(best, end)
			return true
		case s.more:
			s.refill = true
		default:
			return s.stop(s.noMatch())
		}
	}
}

// Token returns the token most recently produced by [Stream.Next].
func (s *Stream) Token() token.Token {
	return s.cur
}

// Err returns the error that ended the stream, if any.
//
// Errors from the input are returned as is; input that no rule matches
// produces an [*Error].
func (s *Stream) Err() error {
	return s.err
}

// Index returns the line index that this stream's tokens compute their spans
// with. It only covers input read so far.
func (s *Stream) Index() *source.LineIndex {
	return s.index
}

// All returns an iterator over the remaining tokens. Check [Stream.Err] once
// it is exhausted.
func (s *Stream) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for s.Next() {
			if !yield(s.cur) {
				return
			}
		}
	}
}

// Collect drains the stream, returning every remaining token. On error, the
// tokens produced before the error are returned along with it.
func (s *Stream) Collect() ([]token.Token, error) {
	var out []token.Token
	for tok := range s.All() {
		out = append(out, tok)
	}
	return out, s.err
}

// fill reads the next chunk, feeding it to the line index. Exhaustion is not
// an error; it clears s.more.
func (s *Stream) fill() error {
	text, err := s.input.Next(s.chunk)
	if errors.Is(err, source.ErrExhausted) {
		s.more = false
		return nil
	} else if err != nil {
		return err
	}

	s.index.Track(text)
	s.buf = s.buf[s.pos:] + text
	s.pos = 0
	s.tail += s.unit.Len(text)
	return nil
}

// match runs every rule at the current position. It returns the index of the
// winning rule and the byte length of its match, or -1 if none matched.
//
// The result is ambiguous if more input could change it, in which case the
// caller must refill and try again.
func (s *Stream) match() (best, end int, ambiguous bool) {
	input := s.buf[s.pos:]
	final := !s.more
	if !final {
		// In binary mode a chunk may end partway through a rune, which
		// must not be decoded until the rest of it arrives.
		input = input[:completePrefix(input)]
		if input == "" {
			return -1, 0, true
		}
	}

	best = -1
	for i, m := range s.tok.matchers {
		res := m.Match(input, s.prev, final)
		if !final && (res.HitEnd || res.End == len(input)) {
			return -1, 0, true
		}
		// Empty matches never make progress.
		if res.End > end {
			best, end = i, res.End
		}
	}
	return best, end, false
}

func (s *Stream) emit(rule, end int) {
	spec := s.tok.specs[rule]
	text := s.buf[s.pos : s.pos+end]

	s.cur = token.New(spec.Type, text, s.gpos, spec.CaseSensitive(), s.index)
	s.pos += end
	s.gpos += s.cur.Len()
	s.tail -= s.cur.Len()
	s.prev, _ = utf8.DecodeLastRuneInString(text)
}

func (s *Stream) stop(err error) bool {
	s.done = true
	s.err = err
	s.cur = token.Token{}
	s.buf = ""
	return false
}

// noMatch builds the error for input that no rule matches.
func (s *Stream) noMatch() *Error {
	line, _, _ := s.index.FindLast(s.gpos)
	column := s.gpos - s.index.LineStart(line)

	excerpt, _ := s.unit.Prefix(s.buf[s.pos:], excerptLen)
	text := s.buf[s.pos : s.pos+excerpt]
	return &Error{
		Message: "no pattern matches input @<" + unicodex.Escape(text, 0) + ">",
		Path:    s.input.Name(),
		Line:    line + 1,
		Column:  column,
		Offset:  s.gpos,
		Excerpt: text,
	}
}

// completePrefix returns the length of the longest prefix of text that does
// not end partway through a rune.
func completePrefix(text string) int {
	for i := len(text) - 1; i >= 0 && i >= len(text)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(text[i]) {
			continue
		}
		if !utf8.FullRuneInString(text[i:]) {
			return i
		}
		break
	}
	return len(text)
}
