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

package lexer_test

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/speclex/lexer"
	"github.com/bufbuild/speclex/reporter"
	"github.com/bufbuild/speclex/source"
	"github.com/bufbuild/speclex/token"
)

// tok is a comparable projection of a token.
type tok struct {
	Type, Text string
	Start      int
}

func project(toks []token.Token) []tok {
	out := make([]tok, len(toks))
	for i, t := range toks {
		out[i] = tok{t.Type(), t.Text(), t.Start()}
	}
	return out
}

func run(t *testing.T, tz *lexer.Tokenizer, text string, chunk int) ([]tok, error) {
	t.Helper()
	tz.ChunkSize = chunk
	toks, err := tz.Run(source.FromText(text, source.Text)).Collect()
	return project(toks), err
}

func calc() *lexer.Tokenizer {
	return lexer.MustTokenizer(
		lexer.NewSpec("int", `[0-9]+`),
		lexer.NewSpec("op", `\+`),
	)
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	toks, err := calc().Tokenize("12+34", source.Text)
	require.NoError(t, err)
	assert.Equal(t, []tok{
		{"int", "12", 0},
		{"op", "+", 2},
		{"int", "34", 3},
	}, project(toks))

	assert.True(t, toks[0].Equal(token.New("int", "12", 0, true, nil)))
	assert.True(t, toks[1].Matches(token.Wildcard("op")))
	assert.Equal(t, 5, toks[2].End())
}

func TestNoMatch(t *testing.T) {
	t.Parallel()

	toks, err := calc().Tokenize("12?", source.Text)
	assert.Equal(t, []tok{{"int", "12", 0}}, project(toks))

	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	require.ErrorIs(t, err, lexer.ErrNoMatch)
	assert.Equal(t, 1, lexErr.Line)
	assert.Equal(t, 2, lexErr.Column)
	assert.Equal(t, 2, lexErr.Offset)
	assert.Equal(t, "?", lexErr.Excerpt)
	assert.Empty(t, lexErr.Path)
	assert.Equal(t, "1:2: no pattern matches input @<?>", err.Error())

	var ewp reporter.ErrorWithPos
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, reporter.Position{Line: 1, Column: 2, Offset: 2}, ewp.GetPosition())
}

func TestNoMatchPosition(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		lexer.NewSpec("int", `[0-9]+`),
		lexer.NewSpec("nl", `\r?\n`),
	)

	for _, chunk := range []int{1, 2, 3, 4096} {
		tz.ChunkSize = chunk
		s := source.FromText("12\r\n3\n45?6789abcdefgh", source.Text).WithName("calc.txt")
		_, err := tz.Run(s).Collect()

		var lexErr *lexer.Error
		require.ErrorAs(t, err, &lexErr, "chunk %d", chunk)
		assert.Equal(t, 3, lexErr.Line, "chunk %d", chunk)
		assert.Equal(t, 2, lexErr.Column, "chunk %d", chunk)
		assert.Equal(t, 8, lexErr.Offset, "chunk %d", chunk)
		assert.Equal(t, "calc.txt", lexErr.Path, "chunk %d", chunk)
		if chunk == 4096 {
			assert.Equal(t, "?6789abcde", lexErr.Excerpt)
			assert.Equal(t, "calc.txt:3:2: no pattern matches input @<?6789abcde>", err.Error())
		}
	}
}

func TestLongestMatch(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		lexer.NewSpec("kw", `if|else`),
		lexer.NewSpec("name", `[a-z]+`),
		lexer.NewSpec("sp", ` +`),
		lexer.NewSpec("if", `if`),
	)

	toks, err := run(t, tz, "if iffy else", 0)
	require.NoError(t, err)
	assert.Equal(t, []tok{
		{"kw", "if", 0},
		{"sp", " ", 2},
		{"name", "iffy", 3},
		{"sp", " ", 7},
		{"kw", "else", 8},
	}, toks)
}

func TestZeroLengthIgnored(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		lexer.NewSpec("empty", `a*`),
		lexer.NewSpec("b", `b`),
	)
	toks, err := run(t, tz, "aab", 0)
	require.NoError(t, err)
	assert.Equal(t, []tok{{"empty", "aa", 0}, {"b", "b", 2}}, toks)

	_, err = run(t, tz, "c", 0)
	require.ErrorIs(t, err, lexer.ErrNoMatch)
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()

	toks, err := calc().Tokenize("", source.Text)
	require.NoError(t, err)
	assert.Empty(t, toks)
}

func TestChunkIndependence(t *testing.T) {
	t.Parallel()

	tz := func() *lexer.Tokenizer {
		return lexer.MustTokenizer(
			lexer.NewSpec("comment", `/\*(?:.|[\r\n])*?\*/`),
			lexer.NewSpec("comment", `//.*`),
			lexer.NewSpec("nl", `[\r\n]+`),
			lexer.NewSpec("space", `[ \t]+`),
			lexer.NewSpec("name", `[A-Za-z_][A-Za-z_0-9]*`),
			lexer.NewSpec("real", `[0-9]+\.[0-9]*(?:[Ee][+\-]?[0-9]+)?`),
			lexer.NewSpec("int", `[0-9]+`),
			lexer.NewSpec("op", `\.\.|<>|<=|>=|:=|[;,=():\[\].+\-<>*/@^]`),
			lexer.NewSpec("string", `'(?:[^']|'')*'`),
			lexer.NewSpec("alt", `#abc|#a`),
			lexer.NewSpec("word", `\bword\b`),
		)
	}

	inputs := []string{
		"x := 1.5e10 + y; // done\n",
		"begin\r\n  a[1..10] := 'it''s';\r\nend.",
		"/* multi\nline */ 42 <> 43",
		"#abc #a #ab",
		"word words sword word",
		"héllo wörld",
		"",
	}
	for _, input := range inputs {
		want, wantErr := run(t, tz(), input, 4096)
		for _, chunk := range []int{1, 2, 3, 7} {
			got, err := run(t, tz(), input, chunk)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("chunk %d, input %q: tokens mismatch (-want +got):\n%s", chunk, input, diff)
			}
			assert.Equal(t, fmt.Sprint(wantErr), fmt.Sprint(err), "chunk %d, input %q", chunk, input)
		}
	}
}

func TestHitEnd(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		lexer.NewSpec("kw", `abc`),
		lexer.NewSpec("a", `a`),
		lexer.NewSpec("b", `bc|b`),
	)
	for _, chunk := range []int{1, 2, 3, 4096} {
		toks, err := run(t, tz, "abcab", chunk)
		require.NoError(t, err)
		assert.Equal(t, []tok{
			{"kw", "abc", 0},
			{"a", "a", 3},
			{"b", "b", 4},
		}, toks, "chunk %d", chunk)
	}
}

func TestAssertionContext(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		&lexer.Spec{Type: "directive", Pattern: `^#[a-z]+`, Multiline: true},
		lexer.NewSpec("hash", `#`),
		lexer.NewSpec("word", `\b[a-z]+`),
		lexer.NewSpec("sp", ` `),
		lexer.NewSpec("nl", `\n`),
	)
	for _, chunk := range []int{1, 2, 5, 4096} {
		toks, err := run(t, tz, "#if a#b\n#end", chunk)
		require.NoError(t, err)
		assert.Equal(t, []tok{
			{"directive", "#if", 0},
			{"sp", " ", 3},
			{"word", "a", 4},
			{"hash", "#", 5},
			{"word", "b", 6},
			{"nl", "\n", 7},
			{"directive", "#end", 8},
		}, toks, "chunk %d", chunk)
	}
}

func TestStream(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		lexer.NewSpec("word", `\pL+`),
		lexer.NewSpec("sp", ` +`),
	)
	tz.ChunkSize = 3

	text := "héllo wörld"
	s := tz.Run(source.FromReader(iotest.OneByteReader(strings.NewReader(text)), source.Text))
	var got []tok
	for s.Next() {
		got = append(got, tok{s.Token().Type(), s.Token().Text(), s.Token().Start()})
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []tok{{"word", "héllo", 0}, {"sp", " ", 5}, {"word", "wörld", 6}}, got)
	assert.False(t, s.Next())
	assert.True(t, s.Token().IsZero())

	s = tz.Run(source.FromReader(iotest.HalfReader(strings.NewReader(text)), source.Binary))
	toks, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, []tok{{"word", "héllo", 0}, {"sp", " ", 6}, {"word", "wörld", 7}}, project(toks))
	assert.Equal(t, 13, toks[2].End())
}

func TestStreamSpans(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		lexer.NewSpec("w", `[a-z]+`),
		lexer.NewSpec("nl", `\n`),
	)
	tz.ChunkSize = 1

	var spans []string
	s := tz.Run(source.FromText("ab\ncd", source.Text))
	for tok := range s.All() {
		span, err := tok.Span()
		require.NoError(t, err)
		spans = append(spans, span.String())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []string{"1,0-1,2", "1,2-1,3", "2,0-2,2"}, spans)
	assert.Equal(t, 1, s.Index().Lines())
	assert.Equal(t, 5, s.Index().Len())
}

func TestStopEarly(t *testing.T) {
	t.Parallel()

	s := calc().Run(source.FromText("1+2+3", source.Text))
	var n int
	for range s.All() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
	require.True(t, s.Next())
	assert.Equal(t, "2", s.Token().Text())
}

func TestReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("12+"), iotest.ErrReader(boom))
	_, err := calc().Run(source.FromReader(r, source.Text)).Collect()
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, lexer.ErrNoMatch)
}

func TestCaseInsensitive(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(
		&lexer.Spec{Type: "kw", Pattern: `select|from`, IgnoreCase: true},
		lexer.NewSpec("sp", `\s+`),
	)
	toks, err := tz.Tokenize("SELECT From", source.Text)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "select", toks[0].Value())
	assert.Equal(t, "SELECT", toks[0].Text())
	assert.False(t, toks[0].CaseSensitive())
	assert.True(t, toks[0].Equal(token.New("kw", "select", 0, false, nil)))
	assert.True(t, toks[1].CaseSensitive())
}

func TestNewTokenizer(t *testing.T) {
	t.Parallel()

	_, err := lexer.NewTokenizer()
	require.ErrorIs(t, err, lexer.ErrNoRules)

	_, err = lexer.NewTokenizer(lexer.NewSpec("bad", `(`))
	require.ErrorContains(t, err, `compiling "bad"`)

	_, err = lexer.NewTokenizer(nil)
	require.Error(t, err)

	assert.Panics(t, func() { lexer.MustTokenizer(lexer.NewSpec("bad", `[`)) })

	specs := []*lexer.Spec{lexer.NewSpec("a", `a`), lexer.NewSpec("b", `b`)}
	tz := lexer.MustTokenizer(specs...)
	got := tz.Specs()
	got[0] = nil
	assert.Equal(t, specs, tz.Specs())
}

func TestSpec(t *testing.T) {
	t.Parallel()

	spec := lexer.NewSpec("int", `[0-9]+`)
	assert.True(t, spec.CaseSensitive())
	require.NoError(t, spec.Compile())
	assert.Equal(t, `Spec("int", "[0-9]+")`, spec.String())

	bad := lexer.NewSpec("bad", `a{2,1}`)
	err := bad.Compile()
	require.Error(t, err)
	assert.Equal(t, err, bad.Compile())

	spec = &lexer.Spec{Type: "kw", Pattern: "if", IgnoreCase: true, Multiline: true}
	assert.False(t, spec.CaseSensitive())
	assert.Equal(t, `Spec("kw", "if", ignore_case|multiline)`, spec.String())
}

func TestInvalidUTF8Stream(t *testing.T) {
	t.Parallel()

	tz := lexer.MustTokenizer(lexer.NewSpec("x", `(?s).`))
	text := "a\xff\xfeb"

	want, err := tz.Tokenize(text, source.Text)
	require.NoError(t, err)
	assert.Equal(t, []tok{{"x", "a", 0}, {"x", "�", 1}, {"x", "�", 2}, {"x", "b", 3}}, project(want))

	for _, chunk := range []int{1, 2, 4096} {
		tz := lexer.MustTokenizer(lexer.NewSpec("x", `(?s).`))
		tz.ChunkSize = chunk
		s := source.FromReader(iotest.OneByteReader(strings.NewReader(text)), source.Text)
		s.ChunkSize = 1
		got, err := tz.Run(s).Collect()
		require.NoError(t, err)
		if diff := cmp.Diff(project(want), project(got)); diff != "" {
			t.Errorf("chunk %d: tokens mismatch (-want +got):\n%s", chunk, diff)
		}
	}
}
