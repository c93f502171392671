// Copyright 2021 Google LLC
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

// Package syntax defines the grammar-neutral tree shared by the C# and
// Visual Basic front ends, and the query contract rule analyzers use to
// inspect it.
package syntax

import (
	"go/token"
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies the concrete grammar a tree was parsed from.
type Language int

const (
	Unknown Language = iota
	CSharp
	VisualBasic
)

func (l Language) String() string {
	switch l {
	case CSharp:
		return "C#"
	case VisualBasic:
		return "Visual Basic"
	default:
		return "unknown"
	}
}

// CaseInsensitive reports whether identifiers of the language compare
// without regard to case.
func (l Language) CaseInsensitive() bool {
	return l == VisualBasic
}

// LanguageOf returns the language of a source file, judged by its extension.
func LanguageOf(filename string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cs":
		return CSharp, true
	case ".vb":
		return VisualBasic, true
	}
	return Unknown, false
}

// Node is a node of a concrete syntax tree.
// Kind carries the grammar's own name for the node; the adapters in the
// front ends translate kinds into the abstract vocabulary of Helper.
//
// Nodes are immutable once their Tree is built. All methods accept a nil
// receiver and return zero values, so chained queries on absent operands
// stay absent.
type Node struct {
	Kind      string
	Named     bool
	StartByte int
	EndByte   int
	Children  []*Node
	Parent    *Node

	fields map[string]*Node
	tree   *Tree
}

// NewNode returns a node spanning [start, end) of its tree's source.
func NewNode(kind string, named bool, start, end int) *Node {
	return &Node{Kind: kind, Named: named, StartByte: start, EndByte: end}
}

// Append adds c as the last child of n. If field is not empty, c is also
// recorded as the child named field.
func (n *Node) Append(field string, c *Node) {
	if c == nil {
		return
	}
	n.Children = append(n.Children, c)
	if field != "" {
		if n.fields == nil {
			n.fields = map[string]*Node{}
		}
		if _, ok := n.fields[field]; !ok {
			n.fields[field] = c
		}
	}
}

// SetField records c, which belongs to another parent, as the node n
// exposes under field.
func (n *Node) SetField(field string, c *Node) {
	if c == nil {
		return
	}
	if n.fields == nil {
		n.fields = map[string]*Node{}
	}
	n.fields[field] = c
}

// Field returns the child recorded under the given field name.
func (n *Node) Field(name string) *Node {
	if n == nil {
		return nil
	}
	return n.fields[name]
}

// FieldOf returns the name under which n records c, or the empty string.
func (n *Node) FieldOf(c *Node) string {
	if n == nil || c == nil {
		return ""
	}
	var names []string
	for name, f := range n.fields {
		if f == c {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}

// Tree returns the tree n belongs to.
func (n *Node) Tree() *Tree {
	if n == nil {
		return nil
	}
	return n.tree
}

// Text returns the source text spanned by n.
func (n *Node) Text() string {
	if n == nil || n.tree == nil {
		return ""
	}
	return string(n.tree.Src[n.StartByte:n.EndByte])
}

// Pos returns the position of the first byte of n.
func (n *Node) Pos() token.Pos {
	if n == nil || n.tree == nil || n.tree.File == nil {
		return token.NoPos
	}
	return n.tree.File.Pos(n.StartByte)
}

// End returns the position immediately after n.
func (n *Node) End() token.Pos {
	if n == nil || n.tree == nil || n.tree.File == nil {
		return token.NoPos
	}
	return n.tree.File.Pos(n.EndByte)
}

// Is reports whether n has one of the given kinds.
func (n *Node) Is(kinds ...string) bool {
	if n == nil {
		return false
	}
	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}
	return false
}

// NamedChildren returns the named children of n, in order.
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first child of n with one of the given kinds.
func (n *Node) ChildOfKind(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Is(kinds...) {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every child of n with one of the given kinds.
func (n *Node) ChildrenOfKind(kinds ...string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Is(kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// Token returns the first unnamed child of n whose text is one of toks.
func (n *Node) Token(toks ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Named {
			continue
		}
		t := c.Text()
		for _, tok := range toks {
			if t == tok {
				return c
			}
		}
	}
	return nil
}

// Ancestor returns the closest proper ancestor of n with one of the given kinds.
func (n *Node) Ancestor(kinds ...string) *Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Is(kinds...) {
			return p
		}
	}
	return nil
}

// Contains reports whether m lies within the span of n.
func (n *Node) Contains(m *Node) bool {
	if n == nil || m == nil {
		return false
	}
	return n.StartByte <= m.StartByte && m.EndByte <= n.EndByte
}

// Inspect traverses the tree rooted at n in depth-first order.
// Children of a node are visited only if f returns true for it.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children {
		Inspect(c, f)
	}
}
