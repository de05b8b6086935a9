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

// Package unicodex contains helpers for measuring and escaping text for
// display in a terminal.
package unicodex

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the size we render all tabstops as.
const TabstopWidth int = 4

// NonPrint defines whether or not a rune is considered "unprintable for the
// purposes of diagnostics", that is, whether it is a rune that is replaced
// with <U+NNNN> when printing.
func NonPrint(r rune) bool {
	return !strings.ContainsRune(" \r\t\n", r) && !unicode.IsPrint(r)
}

// Width is used for calculating the approximate width of a string in terminal
// columns.
type Width struct {
	// The column at which the text is being rendered. This is necessary for
	// tabstop calculations.
	Column int

	// The width of a tabstop in columns. If set to zero, a default value will
	// be selected.
	Tabstop int

	// If set, non-printable characters are escaped in the format <U+NNNN>,
	// invalid bytes as <NN>, and line breaks as \n and \r.
	EscapeNonPrint bool

	// If non-nil, text will be output to this writer, converting tabs to
	// spaces and escaping unprintables as requested.
	Out io.StringWriter
}

// WriteString writes the given text, advancing w.Column and writing to w.Out.
func (w *Width) WriteString(text string) (int, error) {
	var n int
	write := func(s string, width int) error {
		w.Column += width
		if w.Out == nil {
			return nil
		}
		m, err := w.Out.WriteString(s)
		n += m
		return err
	}

	tabstop := w.Tabstop
	if tabstop <= 0 {
		tabstop = TabstopWidth
	}

	for text != "" {
		// Find the next rune that needs special treatment; everything before
		// it is measured as a whole, so grapheme clusters keep their width.
		end := strings.IndexFunc(text, func(r rune) bool {
			return r == '\t' || r == utf8.RuneError || (w.EscapeNonPrint && (r == '\n' || r == '\r' || NonPrint(r)))
		})
		if end == -1 {
			end = len(text)
		}
		if end > 0 {
			if err := write(text[:end], uniseg.StringWidth(text[:end])); err != nil {
				return n, err
			}
			text = text[end:]
			continue
		}

		r, size := utf8.DecodeRuneInString(text)
		var escape string
		switch {
		case r == '\t':
			tab := tabstop - (w.Column % tabstop)
			escape = strings.Repeat(" ", tab)
		case r == utf8.RuneError && size == 1:
			if !w.EscapeNonPrint {
				escape = string(utf8.RuneError)
				break
			}
			escape = fmt.Sprintf("<%02X>", text[0])
		case r == '\n':
			escape = `\n`
		case r == '\r':
			escape = `\r`
		case NonPrint(r):
			escape = fmt.Sprintf("<U+%04X>", r)
		default:
			escape = text[:size]
		}
		if err := write(escape, uniseg.StringWidth(escape)); err != nil {
			return n, err
		}
		text = text[size:]
	}

	return n, nil
}

// Escape renders text on a single line, escaping unprintable runes. If the
// result would be wider than maxWidth columns, it is cut short and an
// ellipsis appended. A maxWidth of zero means no limit.
func Escape(text string, maxWidth int) string {
	var out strings.Builder
	w := &Width{EscapeNonPrint: true, Out: &out}

	for _, cluster := range graphemes(text) {
		mark := out.Len()
		_, _ = w.WriteString(cluster)
		if maxWidth > 0 && w.Column > maxWidth {
			return out.String()[:mark] + "…"
		}
	}
	return out.String()
}

func graphemes(text string) []string {
	var out []string
	state := -1
	for text != "" {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		out = append(out, cluster)
	}
	return out
}
