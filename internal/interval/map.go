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

// Package interval provides an ordered map of disjoint half-open intervals.
package interval

import (
	"fmt"
	"iter"

	"github.com/tidwall/btree"
	"golang.org/x/exp/constraints" //nolint:exptostd // Integer has no cmp equivalent.
)

// Endpoint is a type that may be used as an interval endpoint.
type Endpoint = constraints.Integer

// Map maps disjoint half-open intervals [Start, End) to values.
//
// A zero value is ready to use.
type Map[K Endpoint, V any] struct {
	// Keys are the starts of intervals.
	tree btree.Map[K, entry[K, V]]
}

// Interval is an entry in a [Map].
type Interval[K Endpoint, V any] struct {
	Start, End K
	Value      V
}

// Contains returns whether point lies in this interval.
func (i Interval[K, V]) Contains(point K) bool {
	return i.Start <= point && point < i.End
}

type entry[K Endpoint, V any] struct {
	end   K
	value V
}

// Len returns the number of intervals in the map.
func (m *Map[K, V]) Len() int {
	return m.tree.Len()
}

// Get looks up the interval containing point.
func (m *Map[K, V]) Get(point K) (Interval[K, V], bool) {
	found, ok := m.floor(point)
	if !ok || !found.Contains(point) {
		return Interval[K, V]{}, false
	}
	return found, true
}

// Insert adds [start, end) to the map.
//
// If the new interval overlaps one already present, the map is left
// unchanged and an interval it overlaps is returned with ok set to false.
//
// Panics if the interval is empty.
func (m *Map[K, V]) Insert(start, end K, value V) (overlap Interval[K, V], ok bool) {
	if start >= end {
		panic(fmt.Sprintf("speclex/interval: start (%#v) >= end (%#v)", start, end))
	}

	// Only the last interval starting before end can overlap, since the
	// intervals are disjoint and sorted by start.
	if prev, found := m.floor(end - 1); found && prev.End > start {
		return prev, false
	}

	m.tree.Set(start, entry[K, V]{end: end, value: value})
	return Interval[K, V]{}, true
}

// All returns an iterator over the intervals in ascending order.
func (m *Map[K, V]) All() iter.Seq[Interval[K, V]] {
	return func(yield func(Interval[K, V]) bool) {
		m.tree.Scan(func(start K, e entry[K, V]) bool {
			return yield(Interval[K, V]{Start: start, End: e.end, Value: e.value})
		})
	}
}

// Format implements [fmt.Formatter].
func (m *Map[K, V]) Format(s fmt.State, v rune) {
	fmt.Fprint(s, "{")
	first := true
	for i := range m.All() {
		if !first {
			fmt.Fprint(s, ", ")
		}
		first = false
		fmt.Fprintf(s, "[%#v, %#v): ", i.Start, i.End)
		fmt.Fprintf(s, fmt.FormatString(s, v), i.Value)
	}
	fmt.Fprint(s, "}")
}

// floor returns the interval with the greatest start <= point.
func (m *Map[K, V]) floor(point K) (found Interval[K, V], ok bool) {
	m.tree.Descend(point, func(start K, e entry[K, V]) bool {
		found = Interval[K, V]{Start: start, End: e.end, Value: e.value}
		ok = true
		return false
	})
	return found, ok
}
