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

// Package rematch implements an anchored regular expression matcher for
// incremental input.
//
// The standard library's regexp package cannot tell a caller whether a match
// would have come out differently had the input been longer. A tokenizer
// scanning a window of a larger stream needs exactly that, so Matcher runs a
// Pike VM over the program compiled by [regexp/syntax] and reports, alongside
// the match, whether any thread that outranks the chosen match was still
// alive when the input ran out.
package rematch

import (
	"fmt"
	"regexp/syntax"
	"sync"
	"unicode/utf8"
)

// Flags controls how a pattern is compiled.
type Flags struct {
	// Match letters case-insensitively.
	IgnoreCase bool
	// Let ^ and $ match at line boundaries, not just at the ends of the
	// text.
	Multiline bool
	// Prefer the longest match over the leftmost-first one, as POSIX does.
	Longest bool
}

// Matcher is a compiled pattern. It is safe for concurrent use.
type Matcher struct {
	expr  string
	flags Flags
	prog  *syntax.Prog

	machines sync.Pool // *machine
}

// Result is the outcome of [Matcher.Match].
type Result struct {
	// The byte length of the match, or -1 if there is no match.
	End int

	// Whether more input could change this result. Always false when the
	// input was final.
	HitEnd bool
}

// Matched returns whether this result is a match.
func (r Result) Matched() bool {
	return r.End >= 0
}

// Compile parses and compiles expr.
func Compile(expr string, flags Flags) (*Matcher, error) {
	parse := syntax.Perl
	if flags.IgnoreCase {
		parse |= syntax.FoldCase
	}
	if flags.Multiline {
		parse &^= syntax.OneLine
	}

	re, err := syntax.Parse(expr, parse)
	if err != nil {
		return nil, fmt.Errorf("speclex/rematch: %w", err)
	}
	prog, err := syntax.Compile(re.Simplify())
	if err != nil {
		return nil, fmt.Errorf("speclex/rematch: %w", err)
	}

	m := &Matcher{expr: expr, flags: flags, prog: prog}
	m.machines.New = func() any { return newMachine(len(prog.Inst)) }
	return m, nil
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(expr string, flags Flags) *Matcher {
	m, err := Compile(expr, flags)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the source text of the pattern.
func (m *Matcher) String() string {
	return m.expr
}

// Flags returns the flags m was compiled with.
func (m *Matcher) Flags() Flags {
	return m.flags
}

// Match matches the pattern against a prefix of input.
//
// prev is the rune immediately before input, or -1 if input starts the text;
// it is used to evaluate ^ and \b at the start. final reports whether input
// runs to the end of the text. If it does not, assertions that need to see
// past the end of input are left undecided and reported through
// [Result.HitEnd].
func (m *Matcher) Match(input string, prev rune, final bool) Result {
	vm := m.machines.Get().(*machine)
	defer m.machines.Put(vm)

	vm.init(m.prog, input, final, m.flags.Longest)
	res := vm.run(prev)
	vm.input = ""
	return res
}

// needsNext are the assertions that depend on the rune after the current
// position.
const needsNext = syntax.EmptyEndLine | syntax.EmptyEndText |
	syntax.EmptyWordBoundary | syntax.EmptyNoWordBoundary

type machine struct {
	prog    *syntax.Prog
	input   string
	final   bool
	longest bool

	clist, nlist queue
}

func newMachine(n int) *machine {
	return &machine{clist: newQueue(n), nlist: newQueue(n)}
}

func (vm *machine) init(prog *syntax.Prog, input string, final, longest bool) {
	if len(vm.clist.sparse) < len(prog.Inst) {
		vm.clist, vm.nlist = newQueue(len(prog.Inst)), newQueue(len(prog.Inst))
	}
	vm.prog = prog
	vm.input = input
	vm.final = final
	vm.longest = longest
	vm.clist.clear()
	vm.nlist.clear()
}

func (vm *machine) run(prev rune) Result {
	res := Result{End: -1}

	vm.add(&vm.clist, uint32(vm.prog.Start), 0, prev)
	for pos := 0; len(vm.clist.dense) > 0; {
		if pos == len(vm.input) {
			vm.finish(&res, pos)
			break
		}

		r, width := utf8.DecodeRuneInString(vm.input[pos:])
	step:
		for _, pc := range vm.clist.dense {
			inst := &vm.prog.Inst[pc]
			switch inst.Op {
			case syntax.InstMatch:
				if vm.longest {
					res.End = max(res.End, pos)
					continue
				}
				// Every thread after this one has lower priority.
				res.End = pos
				break step
			case syntax.InstRune, syntax.InstRune1, syntax.InstRuneAny, syntax.InstRuneAnyNotNL:
				if matchRune(inst, r) {
					vm.add(&vm.nlist, inst.Out, pos+width, r)
				}
			}
		}

		pos += width
		vm.clist, vm.nlist = vm.nlist, vm.clist
		vm.nlist.clear()
	}

	return res
}

// finish processes the threads still alive once all of the input has been
// consumed.
func (vm *machine) finish(res *Result, pos int) {
	for _, pc := range vm.clist.dense {
		inst := &vm.prog.Inst[pc]
		switch inst.Op {
		case syntax.InstMatch:
			if vm.longest {
				res.End = max(res.End, pos)
				continue
			}
			res.End = pos
			return
		case syntax.InstRune, syntax.InstRune1, syntax.InstRuneAny, syntax.InstRuneAnyNotNL:
			// This thread wants another rune.
			res.HitEnd = res.HitEnd || !vm.final
		case syntax.InstEmptyWidth:
			// add never follows these at the end of partial input.
			if !vm.final && syntax.EmptyOp(inst.Arg)&needsNext != 0 {
				res.HitEnd = true
			}
		}
	}
}

// add adds pc and everything reachable from it without consuming input to q.
// pos is the position the thread is at, and prev the rune before it.
func (vm *machine) add(q *queue, pc uint32, pos int, prev rune) {
	if q.contains(pc) {
		return
	}
	q.insert(pc)

	inst := &vm.prog.Inst[pc]
	switch inst.Op {
	case syntax.InstAlt, syntax.InstAltMatch:
		vm.add(q, inst.Out, pos, prev)
		vm.add(q, inst.Arg, pos, prev)
	case syntax.InstNop, syntax.InstCapture:
		vm.add(q, inst.Out, pos, prev)
	case syntax.InstEmptyWidth:
		op := syntax.EmptyOp(inst.Arg)
		next := rune(-1)
		if pos < len(vm.input) {
			next, _ = utf8.DecodeRuneInString(vm.input[pos:])
		} else if !vm.final && op&needsNext != 0 {
			return
		}
		if op&^syntax.EmptyOpContext(prev, next) == 0 {
			vm.add(q, inst.Out, pos, prev)
		}
	}
}

func matchRune(inst *syntax.Inst, r rune) bool {
	switch inst.Op {
	case syntax.InstRune:
		return inst.MatchRune(r)
	case syntax.InstRune1:
		return r == inst.Rune[0]
	case syntax.InstRuneAny:
		return true
	case syntax.InstRuneAnyNotNL:
		return r != '\n'
	default:
		return false
	}
}

// queue is a sparse set of program counters that remembers insertion order,
// which is thread priority.
type queue struct {
	sparse []uint32
	dense  []uint32
}

func newQueue(n int) queue {
	return queue{sparse: make([]uint32, n), dense: make([]uint32, 0, n)}
}

func (q *queue) contains(pc uint32) bool {
	i := q.sparse[pc]
	return int(i) < len(q.dense) && q.dense[i] == pc
}

func (q *queue) insert(pc uint32) {
	q.sparse[pc] = uint32(len(q.dense))
	q.dense = append(q.dense, pc)
}

func (q *queue) clear() {
	q.dense = q.dense[:0]
}
