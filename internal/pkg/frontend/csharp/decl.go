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

func (h helper) Imports(root *syntax.Node) []syntax.Import {
	var out []syntax.Import
	syntax.Inspect(root, func(n *syntax.Node) bool {
		switch n.Kind {
		case "compilation_unit", "namespace_declaration", "file_scoped_namespace_declaration", "declaration_list":
			return true
		case "using_directive":
			if imp, ok := h.usingDirective(n); ok {
				out = append(out, imp)
			}
		}
		return false
	})
	return out
}

func (h helper) usingDirective(n *syntax.Node) (syntax.Import, bool) {
	imp := syntax.Import{Static: n.Token("static") != nil}
	kids := n.NamedChildren()
	if len(kids) == 0 {
		return imp, false
	}
	imp.Name = kids[len(kids)-1]
	switch {
	case n.ChildOfKind("name_equals") != nil:
		imp.Alias, _ = h.Identifier(first(n.ChildOfKind("name_equals"), "name", "identifier"))
	case n.Field("alias") != nil:
		imp.Alias, _ = h.Identifier(n.Field("alias"))
	case n.Token("=") != nil:
		imp.Alias, _ = h.Identifier(namedBefore(n, n.Token("=")))
	}
	return imp, true
}

func (helper) IsNamespace(n *syntax.Node) bool {
	return n.Is("namespace_declaration", "file_scoped_namespace_declaration")
}

func (h helper) NamespaceName(n *syntax.Node) *syntax.Node {
	if !h.IsNamespace(n) {
		return nil
	}
	return first(n, "name", "qualified_name", "identifier")
}

var typeKinds = map[string]syntax.TypeKind{
	"class_declaration":         syntax.ClassKind,
	"record_declaration":        syntax.ClassKind,
	"struct_declaration":        syntax.StructKind,
	"record_struct_declaration": syntax.StructKind,
	"interface_declaration":     syntax.InterfaceKind,
	"enum_declaration":          syntax.EnumKind,
	"delegate_declaration":      syntax.DelegateKind,
}

func (helper) IsTypeDeclaration(n *syntax.Node) bool {
	return n != nil && typeKinds[n.Kind] != syntax.NotAType
}

func (h helper) TypeDeclaration(n *syntax.Node) syntax.TypeDecl {
	if !h.IsTypeDeclaration(n) {
		return syntax.TypeDecl{}
	}
	d := syntax.TypeDecl{Name: first(n, "name", "identifier"), Kind: typeKinds[n.Kind]}
	if d.Kind == syntax.EnumKind {
		return d
	}
	bases := first(n, "bases", "base_list")
	for _, b := range bases.NamedChildren() {
		if b.Is("primary_constructor_base_type") {
			b = first(b, "type")
		}
		if b.Is("argument_list") {
			continue
		}
		d.Bases = append(d.Bases, b)
	}
	return d
}

func (h helper) EnumMembers(n *syntax.Node) []syntax.Declarator {
	if !n.Is("enum_declaration") {
		return nil
	}
	var out []syntax.Declarator
	for _, m := range first(n, "body", "enum_member_declaration_list").ChildrenOfKind("enum_member_declaration") {
		d := syntax.Declarator{Name: first(m, "name", "identifier"), Value: m.Field("value")}
		if d.Value == nil {
			if eq := m.ChildOfKind("equals_value_clause"); eq != nil {
				d.Value = first(eq, "value")
			} else if tok := m.Token("="); tok != nil {
				d.Value = namedAfter(m, tok)
			}
		}
		out = append(out, d)
	}
	return out
}

func (helper) IsRoutine(n *syntax.Node) bool {
	return n.Is("method_declaration", "constructor_declaration")
}

func (h helper) Routine(n *syntax.Node) syntax.RoutineDecl {
	if !h.IsRoutine(n) {
		return syntax.RoutineDecl{}
	}
	d := syntax.RoutineDecl{
		Name:        n.Field("name"),
		Constructor: n.Kind == "constructor_declaration",
	}
	// The body field holds the arrow clause of an expression-bodied member.
	if b := first(n, "body", "block"); b.Is("block") {
		d.Body = b
	}
	if d.Name == nil {
		d.Name = n.ChildOfKind("identifier")
	}
	if !d.Constructor {
		d.Returns = n.Field("returns")
		if d.Returns == nil {
			d.Returns = n.Field("type")
		}
		d.Void = d.Returns.Is("predefined_type") && d.Returns.Text() == "void"
	}
	d.Params = first(n, "parameters", "parameter_list").ChildrenOfKind("parameter")
	if arrow := n.ChildOfKind("arrow_expression_clause"); arrow != nil {
		d.Expr = first(arrow, "expression")
	}
	return d
}

func (h helper) Parameter(n *syntax.Node) syntax.Declarator {
	if !n.Is("parameter") {
		return syntax.Declarator{}
	}
	d := syntax.Declarator{Name: n.Field("name"), Type: n.Field("type")}
	if d.Name == nil {
		ids := n.ChildrenOfKind("identifier")
		if len(ids) > 0 {
			d.Name = ids[len(ids)-1]
		}
	}
	if eq := n.ChildOfKind("equals_value_clause"); eq != nil {
		d.Value = first(eq, "value")
	}
	return d
}

func (h helper) MemberDeclarators(n *syntax.Node) []syntax.Declarator {
	switch {
	case n.Is("field_declaration", "event_field_declaration"):
		return variableDeclarators(n.ChildOfKind("variable_declaration"))
	case n.Is("property_declaration"):
		d := syntax.Declarator{Name: first(n, "name", "identifier"), Type: n.Field("type"), Value: n.Field("value")}
		if d.Value == nil {
			if tok := n.Token("="); tok != nil {
				d.Value = namedAfter(n, tok)
			}
		}
		return []syntax.Declarator{d}
	}
	return nil
}

func variableDeclarators(decl *syntax.Node) []syntax.Declarator {
	if decl == nil {
		return nil
	}
	typ := first(decl, "type")
	var out []syntax.Declarator
	for _, v := range decl.ChildrenOfKind("variable_declarator") {
		d := syntax.Declarator{Name: first(v, "name", "identifier"), Type: typ}
		if eq := v.ChildOfKind("equals_value_clause"); eq != nil {
			d.Value = first(eq, "value")
		} else if tok := v.Token("="); tok != nil {
			d.Value = namedAfter(v, tok)
		}
		out = append(out, d)
	}
	return out
}

func (helper) IsProperty(n *syntax.Node) bool {
	return n.Is("property_declaration")
}

func (h helper) IsConstant(n *syntax.Node) bool {
	for _, m := range h.Modifiers(n) {
		if m == "const" {
			return true
		}
	}
	return false
}

func (helper) Attributes(n *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, l := range n.ChildrenOfKind("attribute_list") {
		if l.ChildOfKind("attribute_target_specifier") != nil {
			continue
		}
		out = append(out, l.ChildrenOfKind("attribute")...)
	}
	return out
}

func (helper) AttributeName(n *syntax.Node) *syntax.Node {
	if !n.Is("attribute") {
		return nil
	}
	return first(n, "name")
}

func (helper) AttributeArguments(n *syntax.Node) []*syntax.Node {
	if !n.Is("attribute") {
		return nil
	}
	return n.ChildOfKind("attribute_argument_list").ChildrenOfKind("attribute_argument")
}

var modifierWords = map[string]bool{
	"abstract": true, "async": true, "const": true, "extern": true, "file": true,
	"internal": true, "new": true, "override": true, "partial": true, "private": true,
	"protected": true, "public": true, "readonly": true, "required": true, "sealed": true,
	"static": true, "unsafe": true, "virtual": true, "volatile": true,
}

func (helper) Modifiers(n *syntax.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for _, c := range n.Children {
		switch {
		case c.Kind == "modifier":
			out = append(out, strings.ToLower(c.Text()))
		case !c.Named && modifierWords[c.Text()]:
			out = append(out, c.Text())
		}
	}
	return out
}

func (h helper) Accessibility(n *syntax.Node) syntax.Accessibility {
	if n == nil {
		return syntax.NotApplicable
	}
	mods := map[string]bool{}
	for _, m := range h.Modifiers(n) {
		mods[m] = true
	}
	switch {
	case mods["public"]:
		return syntax.Public
	case mods["private"] && mods["protected"]:
		return syntax.ProtectedAndInternal
	case mods["protected"] && mods["internal"]:
		return syntax.ProtectedOrInternal
	case mods["private"]:
		return syntax.Private
	case mods["protected"]:
		return syntax.Protected
	case mods["internal"]:
		return syntax.Internal
	}
	container := n.Ancestor("class_declaration", "struct_declaration", "interface_declaration",
		"record_declaration", "record_struct_declaration", "namespace_declaration", "compilation_unit")
	switch {
	case n.Is("enum_member_declaration"), container.Is("interface_declaration"):
		return syntax.Public
	case h.IsTypeDeclaration(n) && (container == nil || container.Is("namespace_declaration", "compilation_unit")):
		return syntax.Internal
	}
	return syntax.Private
}

func (h helper) IsStatic(n *syntax.Node) bool {
	for _, m := range h.Modifiers(n) {
		if m == "static" || m == "const" {
			return true
		}
	}
	return false
}
