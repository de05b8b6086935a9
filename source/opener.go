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
	"errors"
	"io/fs"
	"os"
)

// Opener is a mechanism for opening named inputs as suppliers.
type Opener interface {
	// Open opens path as a supplier in the given mode.
	//
	// A return value of [fs.ErrNotExist] is given special treatment by some
	// Opener adapters, such as the [Openers] type.
	Open(path string, mode Mode) (*Supplier, error)
}

// Map implements [Opener] via lookup of in-memory texts.
//
// Missing entries result in [fs.ErrNotExist].
type Map map[string]string

// Open implements [Opener].
func (m Map) Open(path string, mode Mode) (*Supplier, error) {
	text, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return FromText(text, mode).WithName(path), nil
}

// FS wraps an [fs.FS] to give it an [Opener] interface. Files are streamed,
// not read up front; callers should [Supplier.Close] the result.
type FS struct {
	fs.FS

	// If not nil, paths are passed to this function before being forwarded
	// to fs.
	PathMapper func(string) string
}

// Open implements [Opener].
func (f *FS) Open(path string, mode Mode) (*Supplier, error) {
	if f.PathMapper != nil {
		path = f.PathMapper(path)
	}

	file, err := f.FS.Open(path)
	if err != nil {
		return nil, err
	}
	return FromReader(file, mode).WithName(path), nil
}

// OS implements [Opener] over the host file system. The supplier's name is
// the absolute path of the file.
type OS struct{}

// Open implements [Opener].
func (OS) Open(path string, mode Mode) (*Supplier, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return FromReader(file, mode), nil
}

// Openers wraps a sequence of [Opener]s.
//
// When calling Open, it calls each Opener in sequence until one does not return
// [fs.ErrNotExist].
type Openers []Opener

// Open implements [Opener].
func (o Openers) Open(path string, mode Mode) (*Supplier, error) {
	for _, opener := range o {
		s, err := opener.Open(path, mode)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return s, err
	}
	return nil, fs.ErrNotExist
}
