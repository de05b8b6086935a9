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

package reporter

import "strings"

// Tree renders the tree rooted at root using pseudographic connectors, one
// node per line:
//
//	root
//	|-- a
//	|   `-- b
//	`-- c
//
// kids returns the children of a node and show its label. The result ends
// with a newline.
func Tree[T any](root T, kids func(T) []T, show func(T) string) string {
	var b strings.Builder
	writeTree(&b, root, kids, show, "", "")
	return b.String()
}

func writeTree[T any](b *strings.Builder, node T, kids func(T) []T, show func(T) string, first, rest string) {
	b.WriteString(first)
	b.WriteString(show(node))
	b.WriteByte('\n')

	children := kids(node)
	for i, child := range children {
		if i == len(children)-1 {
			writeTree(b, child, kids, show, rest+"`-- ", rest+"    ")
		} else {
			writeTree(b, child, kids, show, rest+"|-- ", rest+"|   ")
		}
	}
}
