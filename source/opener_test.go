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

package source_test

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/speclex/source"
)

func TestOpeners(t *testing.T) {
	t.Parallel()

	mem := source.Map{"a.txt": "from map"}
	disk := &source.FS{
		FS: fstest.MapFS{
			"a.txt": {Data: []byte("from fs a")},
			"b.txt": {Data: []byte("from fs b")},
		},
		PathMapper: func(path string) string { return strings.TrimPrefix(path, "/") },
	}
	openers := source.Openers{mem, disk}

	read := func(path string) string {
		s, err := openers.Open(path, source.Text)
		require.NoError(t, err)
		defer s.Close()

		text, err := s.Next(0)
		require.NoError(t, err)
		return text
	}

	assert.Equal(t, "from map", read("a.txt"))
	assert.Equal(t, "from fs b", read("/b.txt"))

	_, err := openers.Open("c.txt", source.Text)
	require.ErrorIs(t, err, fs.ErrNotExist)

	s, err := disk.Open("/a.txt", source.Binary)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", s.Name())
	assert.Equal(t, source.Binary, s.Mode())
}
