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

// Package graph flattens a syntax tree into numbered vertices and labelled
// edges, which facilitates rendering.
package graph

import (
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Edge links a parent vertex to a child vertex.
type Edge struct {
	From, To int
	// Field is the name under which the parent records the child, if any.
	Field string
}

// TreeGraph is a syntax tree in preorder.
type TreeGraph struct {
	// Nodes holds the vertices; a vertex's index is its identifier.
	Nodes []*syntax.Node
	Edges []Edge
	// Depth is the depth of each vertex below the root.
	Depth []int
}

// New returns the graph of the tree rooted at root. Unless all is set,
// anonymous nodes such as punctuation are left out.
func New(root *syntax.Node, all bool) *TreeGraph {
	g := &TreeGraph{}
	g.visit(root, -1, 0, all)
	return g
}

func (g *TreeGraph) visit(n *syntax.Node, parent, depth int, all bool) {
	if n == nil || !all && !n.Named && parent >= 0 {
		return
	}
	id := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.Depth = append(g.Depth, depth)
	if parent >= 0 {
		g.Edges = append(g.Edges, Edge{From: parent, To: id, Field: g.Nodes[parent].FieldOf(n)})
	}
	for _, c := range n.Children {
		g.visit(c, id, depth+1, all)
	}
}

// Parent returns the edge into vertex id, if it has a parent.
func (g *TreeGraph) Parent(id int) (Edge, bool) {
	for _, e := range g.Edges {
		if e.To == id {
			return e, true
		}
	}
	return Edge{}, false
}
