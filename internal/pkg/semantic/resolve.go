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

package semantic

import (
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// maxDepth bounds the recursion of resolution through initializers and
// member chains.
const maxDepth = 32

// csharpKeywords are the C# keywords that name library types.
var csharpKeywords = map[string]string{
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"char":    "System.Char",
	"decimal": "System.Decimal",
	"double":  "System.Double",
	"dynamic": "System.Object",
	"float":   "System.Single",
	"int":     "System.Int32",
	"long":    "System.Int64",
	"object":  "System.Object",
	"sbyte":   "System.SByte",
	"short":   "System.Int16",
	"string":  "System.String",
	"uint":    "System.UInt32",
	"ulong":   "System.UInt64",
	"ushort":  "System.UInt16",
	"void":    "System.Void",
}

type filter func(*Symbol) bool

func anyMember(s *Symbol) bool { return s.Kind != Constructor }

func typeOrNamespace(s *Symbol) bool { return s.Kind == Type || s.Kind == Namespace }

func first(syms []*Symbol) *Symbol {
	if len(syms) == 0 {
		return nil
	}
	return syms[0]
}

// ResolveType returns the type named by the type syntax n.
func (m *Model) ResolveType(n *syntax.Node) *Symbol {
	return m.resolveTypeAt(n, n, false)
}

// ResolveAttribute returns the type of an attribute. The name X of an
// attribute refers to the type X or, failing that, XAttribute.
func (m *Model) ResolveAttribute(attr *syntax.Node) *Symbol {
	return m.resolveTypeAt(attr, m.h.AttributeName(attr), true)
}

// AttributeTypes returns the resolved types of the attributes of a
// declaration, skipping those that cannot be resolved.
func (m *Model) AttributeTypes(decl *syntax.Node) []*Symbol {
	var out []*Symbol
	for _, a := range m.h.Attributes(decl) {
		if t := m.ResolveAttribute(a); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// resolveTypeAt resolves the type syntax n in the scope of the node at.
func (m *Model) resolveTypeAt(at, n *syntax.Node, attr bool) *Symbol {
	tn, ok := m.h.TypeName(n)
	if !ok || tn.Name == "" {
		return nil
	}
	if tn.Array {
		return m.u.LookupType("System.Array")
	}
	if m.lang == syntax.CSharp {
		if tn.Name == "var" {
			return nil
		}
		if full, ok := csharpKeywords[tn.Name]; ok {
			return m.u.LookupType(full)
		}
	}
	if !attr {
		return m.lookupTypeName(at, tn.Name)
	}
	if t := m.lookupTypeName(at, tn.Name); t != nil && t.DerivesFrom("System.Attribute") {
		return t
	}
	return m.lookupTypeName(at, tn.Name+"Attribute")
}

// lookupTypeName resolves a dotted type name in the scope of at.
func (m *Model) lookupTypeName(at *syntax.Node, dotted string) *Symbol {
	parts := strings.Split(dotted, ".")
	sym := first(m.lookupName(at, parts[0], typeOrNamespace))
	for _, part := range parts[1:] {
		if sym == nil {
			return nil
		}
		sym = first(m.memberOf(sym, part, typeOrNamespace))
	}
	if sym == nil || sym.Kind != Type {
		return nil
	}
	return sym
}

// resolveQualified resolves a dotted namespace or type name from the
// global namespace, as the targets of imports are.
func (m *Model) resolveQualified(dotted string) *Symbol {
	sym := m.global
	for _, part := range strings.Split(dotted, ".") {
		sym = first(m.memberOf(sym, part, typeOrNamespace))
		if sym == nil {
			return nil
		}
	}
	return sym
}

// memberOf looks name up in a namespace or a type.
func (m *Model) memberOf(container *Symbol, name string, f filter) []*Symbol {
	if container.Kind == Namespace {
		return m.namespaceMembers(container.FullName(), name, f)
	}
	return m.lookupMember(container, name, f)
}

// namespaceMembers looks name up in the namespace full, among both source
// and library declarations.
func (m *Model) namespaceMembers(full, name string, f filter) []*Symbol {
	key := strings.ToLower(full)
	var out []*Symbol
	for _, ns := range []*Symbol{m.namespaces[key], m.u.namespaces[key]} {
		for _, s := range ns.Members(name) {
			if m.sameName(s.Name, name) && f(s) {
				out = append(out, s)
			}
		}
	}
	return out
}

// lookupMember looks name up in the type t and its bases. Members
// declared closer to t hide those of its bases. Every type has the
// members of System.Object.
func (m *Model) lookupMember(t *Symbol, name string, f filter) []*Symbol {
	if t == nil {
		return nil
	}
	seen := map[*Symbol]bool{}
	var walk func(t *Symbol) []*Symbol
	walk = func(t *Symbol) []*Symbol {
		if t == nil || seen[t] {
			return nil
		}
		seen[t] = true
		var out []*Symbol
		for _, s := range t.Members(name) {
			if m.sameName(s.Name, name) && f(s) {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
		for _, b := range t.Bases {
			if found := walk(b); len(found) > 0 {
				return found
			}
		}
		return nil
	}
	if found := walk(t); len(found) > 0 {
		return found
	}
	return walk(m.u.LookupType("System.Object"))
}

// lookupName looks a simple name up in the scope of at: the locals and
// parameters of the enclosing routine, the members of the enclosing
// types, the enclosing namespaces from the innermost outwards, the
// import aliases and finally the imported namespaces.
func (m *Model) lookupName(at *syntax.Node, name string, f filter) []*Symbol {
	if r := m.enclosingRoutine(at); r != nil {
		var found *Symbol
		for _, s := range m.locals[r][m.fold(name)] {
			if s.Decl.StartByte <= at.StartByte && m.sameName(s.Name, name) && f(s) {
				found = s
			}
		}
		if found != nil {
			return []*Symbol{found}
		}
	}

	for t := m.enclosingType(at); t != nil && t.Kind == Type; t = t.Container {
		if out := m.lookupMember(t, name, f); len(out) > 0 {
			return out
		}
	}

	ns := m.namespaceOf(at)
	for {
		if out := m.namespaceMembers(ns, name, f); len(out) > 0 {
			return out
		}
		if ns == "" {
			break
		}
		if i := strings.LastIndexByte(ns, '.'); i >= 0 {
			ns = ns[:i]
		} else {
			ns = ""
		}
	}

	imports := m.imports[at.Tree()]
	for _, imp := range imports {
		if imp.alias != "" && m.sameName(imp.alias, name) {
			if s := m.resolveQualified(imp.name); s != nil && f(s) {
				return []*Symbol{s}
			}
		}
	}
	for _, imp := range imports {
		if imp.alias != "" {
			continue
		}
		target := m.resolveQualified(imp.name)
		switch {
		case target == nil:
		case target.Kind == Namespace:
			for _, s := range m.namespaceMembers(target.FullName(), name, f) {
				if s.Kind == Type {
					return []*Symbol{s}
				}
			}
		case target.Kind == Type:
			if out := m.lookupMember(target, name, f); len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// ResolveSymbol returns the symbol n refers to: the declared symbol of a
// declaration, the target of a name or member access, the method of an
// invocation or the constructor of an object creation.
func (m *Model) ResolveSymbol(n *syntax.Node) *Symbol {
	return m.resolve(n, 0)
}

func (m *Model) resolve(n *syntax.Node, depth int) *Symbol {
	if n == nil || depth > maxDepth {
		return nil
	}
	if s := m.declared[n]; s != nil {
		return s
	}
	h := m.h
	if p := n.Parent; p != nil && h.AttributeName(p) == n {
		return m.ResolveAttribute(p)
	}
	if inner := h.Paren(n); inner != nil {
		return m.resolve(inner, depth+1)
	}
	switch h.Classify(n) {
	case syntax.Invocation:
		return m.resolve(h.InvocationTarget(n), depth+1)
	case syntax.ObjectCreation:
		return first(m.createdType(n).Members(ctorKey))
	case syntax.MemberAccess:
		return m.resolveMemberAccess(n, depth)
	}
	if name, ok := h.Identifier(n); ok {
		return m.resolveName(n, name, depth)
	}
	if h.IsSelf(n) || h.IsBase(n) {
		return nil
	}
	return m.resolveTypeAt(n, n, false)
}

func (m *Model) createdType(n *syntax.Node) *Symbol {
	return m.resolveTypeAt(n, m.h.ObjectCreationType(n), false)
}

func (m *Model) resolveName(n *syntax.Node, name string, depth int) *Symbol {
	h := m.h
	p := n.Parent
	switch {
	case h.Classify(p) == syntax.MemberAccess && h.MemberAccessName(p) == n:
		return m.resolve(p, depth+1)
	case p != nil && !h.IsAssignment(p) && !h.IsAttributeArgument(p):
		// The identifier of a generic name.
		if pn, ok := h.Identifier(p); ok && pn == name {
			return m.resolve(p, depth+1)
		}
	}
	if attr := m.attributeOfArgumentName(n); attr != nil {
		return first(m.lookupMember(m.ResolveAttribute(attr), name, anyMember))
	}
	if t := m.initializedType(n); t != nil {
		return first(m.lookupMember(t, name, anyMember))
	}
	return first(m.lookupName(n, name, anyMember))
}

// attributeOfArgumentName returns the attribute whose named argument n
// names.
func (m *Model) attributeOfArgumentName(n *syntax.Node) *syntax.Node {
	h := m.h
	arg := n.Parent
	if !h.IsAttributeArgument(arg) {
		arg = arg.Parent
	}
	if !h.IsAttributeArgument(arg) || h.AttributeArgumentName(arg) != n {
		return nil
	}
	for p := arg.Parent; p != nil; p = p.Parent {
		if h.AttributeName(p) != nil {
			return p
		}
	}
	return nil
}

// initializedType returns the type created by the object creation whose
// initializer assigns to n.
func (m *Model) initializedType(n *syntax.Node) *Symbol {
	h := m.h
	assign := n.Parent
	if !h.IsAssignment(assign) || h.AssignmentTarget(assign) != n {
		return nil
	}
	c := assign.Parent
	for i := 0; c != nil && i < 2; i++ {
		if h.IsObjectCreation(c) {
			for _, a := range h.ObjectCreationInitializers(c) {
				if a == assign {
					return m.createdType(c)
				}
			}
			return nil
		}
		c = c.Parent
	}
	return nil
}

func (m *Model) resolveMemberAccess(n *syntax.Node, depth int) *Symbol {
	h := m.h
	name, ok := h.Identifier(h.MemberAccessName(n))
	if !ok {
		return nil
	}
	left := h.MemberAccessExpression(n)
	switch {
	case left == nil:
		return first(m.lookupMember(m.typeOf(h.ImplicitReceiver(n), depth+1), name, anyMember))
	case h.IsSelf(left):
		return first(m.lookupMember(m.enclosingType(n), name, anyMember))
	case h.IsBase(left):
		if t := m.enclosingType(n); t != nil {
			for _, b := range t.Bases {
				if s := first(m.lookupMember(b, name, anyMember)); s != nil {
					return s
				}
			}
		}
		return nil
	}

	if ls := m.resolve(left, depth+1); ls != nil {
		switch ls.Kind {
		case Namespace:
			return first(m.namespaceMembers(ls.FullName(), name, anyMember))
		case Type:
			return first(m.lookupMember(ls, name, anyMember))
		}
	}
	t := m.typeOf(left, depth+1)
	if t == nil {
		return nil
	}
	if s := first(m.lookupMember(t, name, anyMember)); s != nil {
		return s
	}
	return m.extension(t, name)
}

// extension returns the extension method name applicable to a receiver of
// type t.
func (m *Model) extension(t *Symbol, name string) *Symbol {
	for _, e := range m.u.extensions[strings.ToLower(name)] {
		if m.sameName(e.Name, name) && t.DerivesFrom(e.Extends.FullName()) {
			return e
		}
	}
	return nil
}
