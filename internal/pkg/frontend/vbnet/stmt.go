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

package vbnet

import (
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// blockStatements are the multi-line statements.
var blockStatements = map[string]bool{
	"DoLoopBlock":      true,
	"ForBlock":         true,
	"ForEachBlock":     true,
	"MultiLineIfBlock": true,
	"SelectBlock":      true,
	"SyncLockBlock":    true,
	"TryBlock":         true,
	"UsingBlock":       true,
	"WhileBlock":       true,
	"WithBlock":        true,
}

// containers hold statements without being statements themselves.
var containers = map[string]bool{
	"CaseBlock":            true,
	"CaseElseBlock":        true,
	"CatchBlock":           true,
	"ElseBlock":            true,
	"ElseIfBlock":          true,
	"FinallyBlock":         true,
	"SingleLineElseClause": true,
}

func isStatement(n *syntax.Node) bool {
	return n != nil && (blockStatements[n.Kind] || strings.HasSuffix(n.Kind, "Statement") && n.Named)
}

func (h helper) Statements(body *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	var flatten func(n *syntax.Node)
	flatten = func(n *syntax.Node) {
		switch {
		case containers[n.Kind]:
			for _, c := range n.Children {
				flatten(c)
			}
		case isStatement(n):
			out = append(out, n)
			for _, c := range n.Children {
				if containers[c.Kind] || isStatement(c) {
					flatten(c)
				}
			}
		}
	}
	if body == nil {
		return nil
	}
	for _, c := range body.Children {
		flatten(c)
	}
	return out
}

func (h helper) Declarators(stmt *syntax.Node) []syntax.Declarator {
	switch {
	case stmt.Is("LocalDeclarationStatement", "UsingBlock"):
		return variableDeclarators(stmt)
	case stmt.Is("ForBlock", "ForEachBlock"):
		v := stmt.Field("variable")
		if !v.Is("ModifiedIdentifier") {
			return nil
		}
		d := syntax.Declarator{Name: declaredName(v), Type: stmt.Field("type"), Value: stmt.Field("value")}
		if stmt.Is("ForBlock") {
			d.Value = stmt.Field("from")
		}
		return []syntax.Declarator{d}
	}
	return nil
}

func (helper) IsReturn(stmt *syntax.Node) bool {
	return stmt.Is("ReturnStatement")
}

func (h helper) ReturnValue(stmt *syntax.Node) *syntax.Node {
	if !h.IsReturn(stmt) {
		return nil
	}
	return stmt.Field("value")
}

// Expressions treats an assignment statement as its own expression, so
// callers see assignments the same way in both languages.
func (h helper) Expressions(stmt *syntax.Node) []*syntax.Node {
	if !isStatement(stmt) {
		return nil
	}
	if h.IsAssignment(stmt) {
		return []*syntax.Node{stmt}
	}
	var out []*syntax.Node
	decls := h.Declarators(stmt)
	for _, d := range decls {
		if d.Value != nil {
			out = append(out, d.Value)
		}
	}
	typ := stmt.Field("type")
	for _, c := range stmt.NamedChildren() {
		switch {
		case c == typ, containers[c.Kind], isStatement(c):
		case c.Is("VariableDeclarator", "ModifiedIdentifier", "Modifier", "SkippedTokens"):
		case len(decls) > 0 && stmt.Is("ForBlock", "ForEachBlock") && (c == stmt.Field("value") || c == stmt.Field("from")):
		default:
			out = append(out, c)
		}
	}
	return out
}
