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
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/speclex/source"
)

// Config is a tokenizer described in YAML:
//
//	chunk_size: 4096
//	binary: false
//	rules:
//	  - {type: space, pattern: '\s+'}
//	  - {type: name, pattern: '[a-z]+', ignore_case: true}
type Config struct {
	Rules     []*Spec `yaml:"rules"`
	ChunkSize int     `yaml:"chunk_size"`
	Binary    bool    `yaml:"binary"`
}

// LoadConfig reads a [Config] from r. Unknown fields are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	c := new(Config)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("speclex/lexer: empty config: %w", ErrNoRules)
		}
		return nil, fmt.Errorf("speclex/lexer: decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that c describes a usable tokenizer.
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return ErrNoRules
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("speclex/lexer: negative chunk size %d", c.ChunkSize)
	}
	for i, rule := range c.Rules {
		switch {
		case rule == nil:
			return fmt.Errorf("speclex/lexer: rule %d is empty", i)
		case rule.Type == "":
			return fmt.Errorf("speclex/lexer: rule %d has no type", i)
		case rule.Pattern == "":
			return fmt.Errorf("speclex/lexer: rule %d (%s) has no pattern", i, rule.Type)
		}
	}
	return nil
}

// Mode returns the mode inputs should be read in.
func (c *Config) Mode() source.Mode {
	if c.Binary {
		return source.Binary
	}
	return source.Text
}

// Tokenizer builds the tokenizer c describes.
func (c *Config) Tokenizer() (*Tokenizer, error) {
	t, err := NewTokenizer(c.Rules...)
	if err != nil {
		return nil, err
	}
	t.ChunkSize = c.ChunkSize
	return t, nil
}
