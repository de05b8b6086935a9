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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/speclex/internal/corpora"
	"github.com/bufbuild/speclex/lexer"
	"github.com/bufbuild/speclex/source"
)

// The chunk sizes every case is run with. All of them must produce the same
// output.
var chunkSizes = []int{4096, 1, 2, 3, 7}

func TestCorpus(t *testing.T) {
	t.Parallel()

	corpus := corpora.Corpus{
		Root:       "testdata",
		Refresh:    "SPECLEX_REFRESH",
		Extensions: []string{"lex"},
		Outputs: []corpora.Output{
			{Extension: "tokens.tsv"},
			{Extension: "stderr.txt"},
		},
	}

	corpus.Run(t, func(t *testing.T, path, text string, outputs []string) {
		var header, body strings.Builder
		for line := range strings.Lines(text) {
			if line, ok := strings.CutPrefix(line, "#% "); ok {
				header.WriteString(line)
			} else {
				body.WriteString(line)
			}
		}

		config, err := lexer.LoadConfig(strings.NewReader(header.String()))
		require.NoError(t, err)

		for i, chunk := range chunkSizes {
			tz, err := config.Tokenizer()
			require.NoError(t, err)
			tz.ChunkSize = chunk

			tsv, stderr := tokenize(t, tz, source.FromText(body.String(), config.Mode()).WithName(path))
			if i == 0 {
				outputs[0], outputs[1] = tsv, stderr
				continue
			}
			assert.Equal(t, outputs[0], tsv, "tokens differ at chunk size %d", chunk)
			assert.Equal(t, outputs[1], stderr, "errors differ at chunk size %d", chunk)
		}
	})
}

func tokenize(t *testing.T, tz *lexer.Tokenizer, s *source.Supplier) (tsv, stderr string) {
	t.Helper()

	var out strings.Builder
	out.WriteString("#\ttype\toffsets\tspan\ttext\n")

	stream := tz.Run(s)
	var n int
	for tok := range stream.All() {
		span, err := tok.Span()
		require.NoError(t, err)
		fmt.Fprintf(&out, "%d\t%s\t%d:%d\t%v\t%q\n", n, tok.Type(), tok.Start(), tok.End(), span, tok.Text())
		n++
	}
	if err := stream.Err(); err != nil {
		stderr = err.Error() + "\n"
	}
	return out.String(), stderr
}
