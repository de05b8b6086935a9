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

package unicodex_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/speclex/internal/ext/unicodex"
)

func TestWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		escape bool
		out    string
		column int
	}{
		{text: "abc", out: "abc", column: 3},
		{text: "a\tb", out: "a   b", column: 5},
		{text: "猫", out: "猫", column: 2},
		{text: "a\nb", escape: true, out: `a\nb`, column: 4},
		{text: "\x00", escape: true, out: "<U+0000>", column: 8},
		{text: "\xff", escape: true, out: "<FF>", column: 4},
		{text: "\xff", out: "�", column: 1},
	}

	for _, test := range tests {
		var out strings.Builder
		w := &unicodex.Width{EscapeNonPrint: test.escape, Out: &out}
		_, err := w.WriteString(test.text)
		assert.NoError(t, err)
		assert.Equal(t, test.out, out.String(), "%q", test.text)
		assert.Equal(t, test.column, w.Column, "%q", test.text)
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `?\n`, unicodex.Escape("?\n", 0))
	assert.Equal(t, "abcde…", unicodex.Escape("abcdefgh", 5))
	assert.Equal(t, "abcdefgh", unicodex.Escape("abcdefgh", 8))
	assert.Equal(t, "猫猫…", unicodex.Escape("猫猫猫", 5))
	assert.Equal(t, "héllo", unicodex.Escape("héllo", 0))
}
