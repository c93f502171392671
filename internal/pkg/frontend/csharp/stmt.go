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

package csharp

import (
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// containers hold statements without being statements themselves.
var containers = map[string]bool{
	"block":            true,
	"else_clause":      true,
	"switch_body":      true,
	"switch_block":     true,
	"switch_section":   true,
	"catch_clause":     true,
	"finally_clause":   true,
	"checked_block":    true,
	"unsafe_block":     true,
	"lock_body":        true,
	"labeled_body":     true,
	"global_statement": true,
}

func isStatement(n *syntax.Node) bool {
	return n != nil && strings.HasSuffix(n.Kind, "_statement") && n.Kind != "local_function_statement"
}

func (h helper) Statements(body *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	var flatten func(n *syntax.Node)
	flatten = func(n *syntax.Node) {
		switch {
		case n == nil:
		case containers[n.Kind]:
			for _, c := range n.NamedChildren() {
				flatten(c)
			}
		case isStatement(n):
			out = append(out, n)
			for _, c := range n.NamedChildren() {
				if containers[c.Kind] || isStatement(c) {
					flatten(c)
				}
			}
		}
	}
	flatten(body)
	return out
}

func (h helper) Declarators(stmt *syntax.Node) []syntax.Declarator {
	switch {
	case stmt.Is("local_declaration_statement", "using_statement", "for_statement", "fixed_statement"):
		return variableDeclarators(stmt.ChildOfKind("variable_declaration"))
	case stmt.Is("foreach_statement"):
		d := syntax.Declarator{Type: stmt.Field("type"), Name: stmt.Field("left"), Value: stmt.Field("right")}
		if d.Name == nil || d.Value == nil {
			in := stmt.Token("in")
			d.Name = namedBefore(stmt, in)
			d.Value = namedAfter(stmt, in)
		}
		return []syntax.Declarator{d}
	}
	return nil
}

func (helper) IsReturn(stmt *syntax.Node) bool {
	return stmt.Is("return_statement")
}

func (h helper) ReturnValue(stmt *syntax.Node) *syntax.Node {
	if !h.IsReturn(stmt) {
		return nil
	}
	return first(stmt, "expression")
}

func (h helper) Expressions(stmt *syntax.Node) []*syntax.Node {
	if !isStatement(stmt) {
		return nil
	}
	var out []*syntax.Node
	for _, d := range h.Declarators(stmt) {
		if d.Value != nil {
			out = append(out, d.Value)
		}
	}
	if stmt.Is("foreach_statement") {
		return out
	}
	for _, c := range stmt.NamedChildren() {
		switch {
		case containers[c.Kind], isStatement(c), c.Is("variable_declaration", "local_function_statement", "modifier"):
		default:
			out = append(out, c)
		}
	}
	return out
}
