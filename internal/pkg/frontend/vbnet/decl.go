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

func (h helper) Imports(root *syntax.Node) []syntax.Import {
	var out []syntax.Import
	for _, stmt := range root.ChildrenOfKind("ImportsStatement") {
		for _, c := range stmt.ChildrenOfKind("SimpleImportsClause") {
			imp := syntax.Import{Name: c.Field("name")}
			if a := c.Field("alias"); a != nil {
				imp.Alias, _ = h.Identifier(a)
			}
			if imp.Name != nil {
				out = append(out, imp)
			}
		}
	}
	return out
}

func (helper) IsNamespace(n *syntax.Node) bool {
	return n.Is("NamespaceBlock")
}

func (h helper) NamespaceName(n *syntax.Node) *syntax.Node {
	if !h.IsNamespace(n) {
		return nil
	}
	return n.Field("name")
}

var typeKinds = map[string]syntax.TypeKind{
	"ClassBlock":     syntax.ClassKind,
	"EnumBlock":      syntax.EnumKind,
	"InterfaceBlock": syntax.InterfaceKind,
	"ModuleBlock":    syntax.ModuleKind,
	"StructureBlock": syntax.StructKind,
}

func (helper) IsTypeDeclaration(n *syntax.Node) bool {
	return n != nil && typeKinds[n.Kind] != syntax.NotAType
}

func (h helper) TypeDeclaration(n *syntax.Node) syntax.TypeDecl {
	if !h.IsTypeDeclaration(n) {
		return syntax.TypeDecl{}
	}
	d := syntax.TypeDecl{Name: n.Field("name"), Kind: typeKinds[n.Kind]}
	for _, s := range n.ChildrenOfKind("InheritsStatement", "ImplementsStatement") {
		d.Bases = append(d.Bases, s.NamedChildren()...)
	}
	return d
}

func (helper) EnumMembers(n *syntax.Node) []syntax.Declarator {
	if !n.Is("EnumBlock") {
		return nil
	}
	var out []syntax.Declarator
	for _, m := range n.ChildrenOfKind("EnumMemberDeclaration") {
		out = append(out, syntax.Declarator{Name: m.Field("name"), Value: m.Field("value")})
	}
	return out
}

func (helper) IsRoutine(n *syntax.Node) bool {
	return n.Is(routineKinds...)
}

func (h helper) Routine(n *syntax.Node) syntax.RoutineDecl {
	if !h.IsRoutine(n) {
		return syntax.RoutineDecl{}
	}
	d := syntax.RoutineDecl{
		Name:        n.Field("name"),
		Returns:     n.Field("returns"),
		Void:        n.Is("SubBlock", "SubStatement"),
		Constructor: n.Is("ConstructorBlock"),
		Params:      n.Field("parameters").ChildrenOfKind("Parameter"),
	}
	if strings.HasSuffix(n.Kind, "Block") {
		d.Body = n
	}
	return d
}

// declaredName returns the identifier of a declared name.
func declaredName(n *syntax.Node) *syntax.Node {
	if n.Is("ModifiedIdentifier") {
		return n.Field("identifier")
	}
	return n
}

func (helper) Parameter(n *syntax.Node) syntax.Declarator {
	if !n.Is("Parameter") {
		return syntax.Declarator{}
	}
	return syntax.Declarator{Name: declaredName(n.Field("name")), Type: n.Field("type"), Value: n.Field("value")}
}

func (helper) MemberDeclarators(n *syntax.Node) []syntax.Declarator {
	switch {
	case n.Is("FieldDeclaration"):
		return variableDeclarators(n)
	case n.Is("PropertyStatement", "PropertyBlock"):
		return []syntax.Declarator{{Name: n.Field("name"), Type: n.Field("type"), Value: n.Field("value")}}
	}
	return nil
}

// variableDeclarators returns a declarator per name of the
// VariableDeclarator children of n. Only a declarator introducing a single
// name can carry an initializer.
func variableDeclarators(n *syntax.Node) []syntax.Declarator {
	var out []syntax.Declarator
	for _, v := range n.ChildrenOfKind("VariableDeclarator") {
		names := v.ChildrenOfKind("ModifiedIdentifier")
		for _, name := range names {
			d := syntax.Declarator{Name: declaredName(name), Type: v.Field("type")}
			if len(names) == 1 {
				d.Value = v.Field("value")
			}
			out = append(out, d)
		}
	}
	return out
}

func (helper) IsProperty(n *syntax.Node) bool {
	return n.Is("PropertyStatement", "PropertyBlock")
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
	for _, l := range n.ChildrenOfKind("AttributeList") {
		for _, a := range l.ChildrenOfKind("Attribute") {
			if a.Field("target") == nil {
				out = append(out, a)
			}
		}
	}
	return out
}

func (helper) AttributeName(n *syntax.Node) *syntax.Node {
	if !n.Is("Attribute") {
		return nil
	}
	return n.Field("name")
}

func (helper) AttributeArguments(n *syntax.Node) []*syntax.Node {
	if !n.Is("Attribute") {
		return nil
	}
	return n.Field("arguments").ChildrenOfKind("SimpleArgument")
}

func (helper) Modifiers(n *syntax.Node) []string {
	var out []string
	for _, m := range n.ChildrenOfKind("Modifier") {
		out = append(out, strings.ToLower(m.Text()))
	}
	return out
}

var containerKinds = []string{"ClassBlock", "StructureBlock", "InterfaceBlock", "ModuleBlock", "EnumBlock", "NamespaceBlock", "CompilationUnit"}

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
	case mods["protected"] && mods["friend"]:
		return syntax.ProtectedOrInternal
	case mods["private"]:
		return syntax.Private
	case mods["protected"]:
		return syntax.Protected
	case mods["friend"]:
		return syntax.Internal
	}
	container := n.Ancestor(containerKinds...)
	switch {
	case n.Is("EnumMemberDeclaration"), container.Is("InterfaceBlock"):
		return syntax.Public
	case h.IsTypeDeclaration(n):
		if container == nil || container.Is("NamespaceBlock", "CompilationUnit") {
			return syntax.Internal
		}
		return syntax.Public
	case n.Is("FieldDeclaration"):
		if container.Is("StructureBlock") {
			return syntax.Public
		}
		return syntax.Private
	case h.IsRoutine(n), h.IsProperty(n), n.Is("EventStatement", "EventBlock", "OperatorBlock"):
		return syntax.Public
	}
	return syntax.Private
}

func (h helper) IsStatic(n *syntax.Node) bool {
	for _, m := range h.Modifiers(n) {
		if m == "shared" || m == "const" {
			return true
		}
	}
	return !h.IsTypeDeclaration(n) && n.Ancestor(containerKinds...).Is("ModuleBlock")
}
