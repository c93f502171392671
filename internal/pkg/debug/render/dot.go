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

package render

import (
	"fmt"
	"strings"

	"github.com/google/netlevee/internal/pkg/debug/graph"
	"github.com/google/netlevee/internal/pkg/debug/node"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// DOT produces DOT source code representing the named nodes of a tree.
func DOT(t *syntax.Tree, h syntax.Helper) string {
	return renderDOT(graph.New(t.Root, false), h)
}

func renderDOT(g *graph.TreeGraph, h syntax.Helper) string {
	return (&renderer{strings.Builder{}, g, h}).Render()
}

type renderer struct {
	strings.Builder
	*graph.TreeGraph
	h syntax.Helper
}

func (r *renderer) Render() string {
	r.init()
	r.writeNodes()
	r.writeEdges()
	r.finish()
	return r.String()
}

func (r *renderer) init() {
	_, _ = r.WriteString("digraph {\n")
}

func (r *renderer) writeNodes() {
	for id, n := range r.Nodes {
		_, _ = r.WriteString(fmt.Sprintf("\tn%d [label=%q shape=%s];\n", id, r.label(n), nodeShape(r.h, n)))
	}
}

func (r *renderer) writeEdges() {
	for _, e := range r.Edges {
		if e.Field != "" {
			_, _ = r.WriteString(fmt.Sprintf("\tn%d -> n%d [label=%q];\n", e.From, e.To, e.Field))
			continue
		}
		_, _ = r.WriteString(fmt.Sprintf("\tn%d -> n%d;\n", e.From, e.To))
	}
}

func (r *renderer) label(n *syntax.Node) string {
	name := node.CanonicalName(r.h, n)
	if text, ok := node.LeafText(n); ok {
		return name + "\n" + text
	}
	return name
}

func (r *renderer) finish() {
	_, _ = r.WriteString("}\n")
}

// nodeShape distinguishes the nodes the analyzers react to.
func nodeShape(h syntax.Helper, n *syntax.Node) string {
	switch h.Classify(n) {
	case syntax.Routine, syntax.Lambda:
		return "box"
	case syntax.Other:
		return "ellipse"
	default:
		return "diamond"
	}
}
