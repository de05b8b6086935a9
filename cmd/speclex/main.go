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

// Command speclex tokenizes files according to a YAML rule file.
//
// Usage:
//
//	speclex -rules rules.yaml [flags] file...
//
// Tokens are printed one per line as tab-separated values: the file, the
// token type, its offsets, its line and column span, and its quoted text. A
// file named "-" is read from standard input.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/bufbuild/speclex/lexer"
	"github.com/bufbuild/speclex/reporter"
	"github.com/bufbuild/speclex/source"
	"github.com/bufbuild/speclex/token"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	rules    string
	chunk    int
	binary   bool
	format   string
	typeList string
	at       int
	jobs     int
	verbose  bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	flags := flag.NewFlagSet("speclex", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.rules, "rules", "", "YAML `file` with the tokenizer rules (required)")
	flags.IntVar(&opts.chunk, "chunk", 0, "units to read per refill; overrides the rule file")
	flags.BoolVar(&opts.binary, "binary", false, "read input as bytes rather than text")
	flags.StringVar(&opts.format, "format", "tsv", "output format: tsv or debug")
	flags.StringVar(&opts.typeList, "types", "", "comma-separated token types to print; all if empty")
	flags.IntVar(&opts.at, "at", -1, "only print the token covering this `offset`")
	flags.IntVar(&opts.jobs, "j", 4, "number of files to tokenize at once")
	flags.BoolVar(&opts.verbose, "v", false, "log progress")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.rules == "" || flags.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: speclex -rules rules.yaml [flags] file...")
		flags.PrintDefaults()
		return 2
	}
	if opts.format != "tsv" && opts.format != "debug" {
		logger.Error("unknown output format", slog.String("format", opts.format))
		return 2
	}

	c, err := newCLI(opts, logger, stdin)
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		return 2
	}

	outputs := make([]bytes.Buffer, flags.NArg())
	var group errgroup.Group
	group.SetLimit(max(opts.jobs, 1))
	for i, path := range flags.Args() {
		group.Go(func() error {
			return c.handler.HandleError(c.tokenize(path, &outputs[i]))
		})
	}
	waitErr := group.Wait()

	for i := range outputs {
		_, _ = outputs[i].WriteTo(stdout)
	}
	if waitErr != nil {
		logger.Error("tokenizing failed", slog.Any("error", waitErr))
		return 1
	}
	if c.handler.Error() != nil {
		return 1
	}
	return 0
}

type cli struct {
	options
	logger  *slog.Logger
	stdin   io.Reader
	config  *lexer.Config
	tz      *lexer.Tokenizer
	types   map[string]bool
	handler *reporter.Handler
	opener  source.Opener
}

func newCLI(opts options, logger *slog.Logger, stdin io.Reader) (*cli, error) {
	f, err := os.Open(opts.rules)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config, err := lexer.LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.rules, err)
	}
	if opts.binary {
		config.Binary = true
	}
	if opts.chunk > 0 {
		config.ChunkSize = opts.chunk
	}
	tz, err := config.Tokenizer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.rules, err)
	}

	types, err := parseTypes(opts.typeList, config.Rules)
	if err != nil {
		return nil, err
	}

	c := &cli{
		options: opts,
		logger:  logger,
		stdin:   stdin,
		config:  config,
		tz:      tz,
		types:   types,
		opener:  source.OS{},
	}
	c.handler = reporter.NewHandler(reporter.NewReporter(
		func(err reporter.ErrorWithPos) error {
			// Keep going so that every file gets reported on.
			logger.Error(err.Error())
			return nil
		},
		func(err reporter.ErrorWithPos) {
			logger.Warn(err.Error())
		},
	))
	return c, nil
}

// parseTypes parses the -types flag, rejecting types no rule produces.
func parseTypes(list string, rules []*lexer.Spec) (map[string]bool, error) {
	if list == "" {
		return nil, nil
	}

	var known []string
	for _, rule := range rules {
		if !slices.Contains(known, rule.Type) {
			known = append(known, rule.Type)
		}
	}

	types := make(map[string]bool)
	for _, typ := range strings.Split(list, ",") {
		typ = strings.TrimSpace(typ)
		if !slices.Contains(known, typ) {
			if guess := suggest(typ, known); guess != "" {
				return nil, fmt.Errorf("unknown token type %q; did you mean %q?", typ, guess)
			}
			return nil, fmt.Errorf("unknown token type %q", typ)
		}
		types[typ] = true
	}
	return types, nil
}

// suggest returns the known type closest to typ, or "" if none is close.
func suggest(typ string, known []string) string {
	if ranks := fuzzy.RankFindNormalizedFold(typ, known); len(ranks) > 0 {
		slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
			return a.Distance - b.Distance
		})
		return ranks[0].Target
	}

	best, dist := "", 3
	for _, k := range known {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(typ), strings.ToLower(k)); d < dist {
			best, dist = k, d
		}
	}
	return best
}

// tokenize tokenizes one file, writing its tokens to out.
func (c *cli) tokenize(path string, out *bytes.Buffer) error {
	mode := c.config.Mode()

	var s *source.Supplier
	if path == "-" {
		s = source.FromReader(c.stdin, mode).WithName("<stdin>")
	} else {
		var err error
		s, err = c.opener.Open(path, mode)
		if err != nil {
			return err
		}
		defer s.Close()
	}

	var index token.Index
	stream := c.tz.Run(s)
	var n int
	for tok := range stream.All() {
		n++
		if c.types != nil && !c.types[tok.Type()] {
			continue
		}
		if c.at >= 0 {
			if err := index.Insert(tok); err != nil {
				return err
			}
			continue
		}
		if err := c.print(out, s.Name(), tok); err != nil {
			return err
		}
	}
	c.logger.Debug("tokenized", slog.String("path", s.Name()), slog.Int("tokens", n))

	if c.at >= 0 {
		if tok, ok := index.At(c.at); ok {
			if err := c.print(out, s.Name(), tok); err != nil {
				return err
			}
		} else if stream.Err() == nil {
			loc, err := stream.Index().Location(c.at)
			if err != nil {
				return err
			}
			c.handler.HandleWarning(
				reporter.PositionOf(s.Name(), loc),
				fmt.Errorf("no token at offset %d", c.at),
			)
		}
	}

	// Lexer errors carry a position, so the handler reports them and moves
	// on to the next file.
	return stream.Err()
}

// debugToken is the shape of a token in -format=debug output.
type debugToken struct {
	Path       string
	Type       string
	Text       string
	Value      string
	Start, End int
	Span       source.Span
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (c *cli) print(out *bytes.Buffer, path string, tok token.Token) error {
	span, err := tok.Span()
	if err != nil {
		return err
	}

	if c.format == "debug" {
		dumper.Fdump(out, debugToken{
			Path:  path,
			Type:  tok.Type(),
			Text:  tok.Text(),
			Value: tok.Value(),
			Start: tok.Start(),
			End:   tok.End(),
			Span:  span,
		})
		return nil
	}

	_, err = fmt.Fprintf(out, "%s\t%s\t%d:%d\t%v\t%q\n", path, tok.Type(), tok.Start(), tok.End(), span, tok.Text())
	return err
}
