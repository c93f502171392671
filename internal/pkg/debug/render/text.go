// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package render produces textual and DOT representations of syntax trees.
package render

import (
	"fmt"
	"strings"

	"github.com/google/netlevee/internal/pkg/debug/graph"
	"github.com/google/netlevee/internal/pkg/debug/node"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Text renders the named nodes of a tree, one per line, indented by depth.
// Each line shows the field the node is recorded under, its kind and class,
// its byte span and, for leaves, its text.
func Text(t *syntax.Tree, h syntax.Helper) string {
	g := graph.New(t.Root, false)
	var b strings.Builder
	for id, n := range g.Nodes {
		b.WriteString(strings.Repeat("  ", g.Depth[id]))
		if e, ok := g.Parent(id); ok && e.Field != "" {
			b.WriteString(e.Field)
			b.WriteString(": ")
		}
		b.WriteString(node.CanonicalName(h, n))
		b.WriteString(fmt.Sprintf(" [%d, %d)", n.StartByte, n.EndByte))
		if text, ok := node.LeafText(n); ok {
			b.WriteByte(' ')
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}
	for _, e := range t.Errors {
		b.WriteString(fmt.Sprintf("error: %s: %s\n", t.File.Position(e.Pos), e.Msg))
	}
	return b.String()
}
