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
	"go/constant"
	"go/token"
	"sort"
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Model binds the syntax of one compilation.
type Model struct {
	u    *Universe
	h    syntax.Helper
	lang syntax.Language

	global     *Symbol
	namespaces map[string]*Symbol
	// declared maps declaration nodes, and their name nodes, to symbols.
	declared map[*syntax.Node]*Symbol
	// locals maps a routine node to its parameters and locals by folded name.
	locals  map[*syntax.Node]map[string][]*Symbol
	imports map[*syntax.Tree][]imported
	types   []*syntax.Node
	consts  []pendingConst
}

// pendingConst is a constant whose value is folded once every declaration
// is known. prev is the enum member declared before an enum member.
type pendingConst struct {
	sym  *Symbol
	prev *Symbol
	enum bool
}

type imported struct {
	alias string
	name  string
}

// NewModel collects the declarations of trees, which must all have been
// parsed by the grammar h answers for.
func NewModel(u *Universe, h syntax.Helper, trees ...*syntax.Tree) *Model {
	m := &Model{
		u:          u,
		h:          h,
		lang:       h.Language(),
		global:     &Symbol{Kind: Namespace},
		namespaces: map[string]*Symbol{},
		declared:   map[*syntax.Node]*Symbol{},
		locals:     map[*syntax.Node]map[string][]*Symbol{},
		imports:    map[*syntax.Tree][]imported{},
	}
	m.namespaces[""] = m.global

	for _, t := range trees {
		m.imports[t] = m.collectImports(t.Root)
		m.declareTypes(t.Root)
	}
	for _, n := range m.types {
		m.resolveBases(n)
	}
	var routines []*syntax.Node
	for _, n := range m.types {
		routines = append(routines, m.declareMembers(n)...)
	}
	for _, r := range routines {
		m.declareLocals(r)
	}
	m.foldConstants()
	return m
}

// Helper returns the grammar helper the model was built with.
func (m *Model) Helper() syntax.Helper { return m.h }

// Universe returns the library symbols the model resolves against.
func (m *Model) Universe() *Universe { return m.u }

func (m *Model) fold(name string) string {
	if m.lang.CaseInsensitive() {
		return strings.ToLower(name)
	}
	return name
}

func (m *Model) sameName(a, b string) bool {
	if m.lang.CaseInsensitive() {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

func (m *Model) collectImports(root *syntax.Node) []imported {
	var out []imported
	for _, imp := range m.h.Imports(root) {
		tn, ok := m.h.TypeName(imp.Name)
		if !ok {
			continue
		}
		out = append(out, imported{alias: imp.Alias, name: tn.Name})
	}
	return out
}

// namespace returns the source namespace named full, creating it and its
// parents as needed.
func (m *Model) namespace(full string) *Symbol {
	key := strings.ToLower(full)
	if ns, ok := m.namespaces[key]; ok {
		return ns
	}
	parent, name := m.global, full
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		parent, name = m.namespace(full[:i]), full[i+1:]
	}
	ns := &Symbol{Kind: Namespace, Name: name, Container: parent}
	parent.add(ns)
	m.namespaces[key] = ns
	return ns
}

// namespaceOf returns the full name of the namespace n is declared in.
func (m *Model) namespaceOf(n *syntax.Node) string {
	var parts []string
	for p := n.Parent; p != nil; p = p.Parent {
		if !m.h.IsNamespace(p) {
			continue
		}
		if tn, ok := m.h.TypeName(m.h.NamespaceName(p)); ok {
			parts = append([]string{tn.Name}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

// enclosingType returns the symbol of the innermost type declaration
// strictly containing n.
func (m *Model) enclosingType(n *syntax.Node) *Symbol {
	for p := n.Parent; p != nil; p = p.Parent {
		if m.h.IsTypeDeclaration(p) {
			return m.declared[p]
		}
	}
	return nil
}

// enclosingRoutine returns the innermost routine declaration containing n.
func (m *Model) enclosingRoutine(n *syntax.Node) *syntax.Node {
	for p := n; p != nil; p = p.Parent {
		if m.h.IsRoutine(p) {
			return p
		}
	}
	return nil
}

func (m *Model) declare(sym *Symbol, nodes ...*syntax.Node) {
	for _, n := range nodes {
		if n != nil {
			m.declared[n] = sym
		}
	}
}

func (m *Model) declareTypes(root *syntax.Node) {
	syntax.Inspect(root, func(n *syntax.Node) bool {
		switch {
		case m.h.IsRoutine(n):
			return false
		case m.h.IsNamespace(n):
			if tn, ok := m.h.TypeName(m.h.NamespaceName(n)); ok {
				m.namespace(qualify(m.namespaceOf(n), tn.Name))
			}
		case m.h.IsTypeDeclaration(n):
			d := m.h.TypeDeclaration(n)
			name, ok := m.h.Identifier(d.Name)
			if !ok {
				return true
			}
			container := m.enclosingType(n)
			if container == nil {
				container = m.namespace(m.namespaceOf(n))
			}
			sym := m.findPartial(container, name)
			if sym == nil {
				sym = &Symbol{
					Kind:      Type,
					Name:      name,
					Container: container,
					TypeKind:  d.Kind,
					Access:    m.h.Accessibility(n),
					Static:    m.h.IsStatic(n),
					Decl:      d.Name,
				}
				container.add(sym)
			}
			m.declare(sym, n, d.Name)
			m.types = append(m.types, n)
		}
		return true
	})
}

// findPartial returns a type already declared in container under name, so
// that the parts of a partial type share one symbol.
func (m *Model) findPartial(container *Symbol, name string) *Symbol {
	for _, s := range container.Members(name) {
		if s.Kind == Type && m.sameName(s.Name, name) {
			return s
		}
	}
	return nil
}

func (m *Model) resolveBases(n *syntax.Node) {
	sym := m.declared[n]
	for _, b := range m.h.TypeDeclaration(n).Bases {
		if base := m.resolveTypeAt(n, b, false); base != nil && base != sym {
			sym.Bases = append(sym.Bases, base)
		}
	}
}

// declareMembers declares the members of the type declared by n and
// returns its routines.
func (m *Model) declareMembers(n *syntax.Node) []*syntax.Node {
	typ := m.declared[n]
	var routines []*syntax.Node
	hasCtor := false

	if typ.TypeKind == syntax.EnumKind {
		var prev *Symbol
		for _, d := range m.h.EnumMembers(n) {
			name, ok := m.h.Identifier(d.Name)
			if !ok {
				continue
			}
			sym := &Symbol{Kind: Field, Name: name, Container: typ, Type: typ, Static: true, Access: syntax.Public, Decl: d.Name, valueNode: d.Value}
			typ.add(sym)
			m.declare(sym, d.Name)
			m.consts = append(m.consts, pendingConst{sym: sym, prev: prev, enum: true})
			prev = sym
		}
		return nil
	}

	for _, c := range n.Children {
		syntax.Inspect(c, func(x *syntax.Node) bool {
			switch {
			case m.h.IsTypeDeclaration(x):
				return false
			case m.h.IsRoutine(x):
				r := m.h.Routine(x)
				sym := &Symbol{Kind: Method, Container: typ, Static: m.h.IsStatic(x), Access: m.h.Accessibility(x), Decl: r.Name}
				if r.Constructor {
					sym.Kind = Constructor
					hasCtor = true
				}
				sym.Name, _ = m.h.Identifier(r.Name)
				if r.Name != nil && sym.Name == "" {
					sym.Name = r.Name.Text()
				}
				switch {
				case r.Void:
					sym.Type = m.u.LookupType("System.Void")
				case r.Returns != nil:
					sym.Type = m.resolveTypeAt(x, r.Returns, false)
				}
				typ.add(sym)
				m.declare(sym, x, r.Name)
				routines = append(routines, x)
				return false
			default:
				decls := m.h.MemberDeclarators(x)
				if len(decls) == 0 {
					return true
				}
				kind := Field
				if m.h.IsProperty(x) {
					kind = Property
				}
				isConst := m.h.IsConstant(x)
				for _, d := range decls {
					name, ok := m.h.Identifier(d.Name)
					if !ok {
						continue
					}
					sym := &Symbol{
						Kind:      kind,
						Name:      name,
						Container: typ,
						Static:    m.h.IsStatic(x),
						Access:    m.h.Accessibility(x),
						Decl:      d.Name,
						typeNode:  d.Type,
					}
					if d.Type != nil {
						sym.Type = m.resolveTypeAt(x, d.Type, false)
					}
					if sym.Type == nil || isConst {
						sym.valueNode = d.Value
					}
					typ.add(sym)
					m.declare(sym, d.Name)
					if isConst && d.Value != nil {
						m.consts = append(m.consts, pendingConst{sym: sym})
					}
				}
				return false
			}
		})
	}
	if !hasCtor && typ.TypeKind != syntax.InterfaceKind && len(typ.Members(ctorKey)) == 0 {
		typ.add(&Symbol{Kind: Constructor, Name: typ.Name, Container: typ, Access: syntax.Public})
	}
	return routines
}

// declareLocals collects the parameters and locals of routine r.
func (m *Model) declareLocals(r *syntax.Node) {
	owner := m.declared[r]
	d := m.h.Routine(r)
	scope := map[string][]*Symbol{}
	add := func(kind Kind, decl syntax.Declarator, at *syntax.Node) {
		name, ok := m.h.Identifier(decl.Name)
		if !ok {
			return
		}
		sym := &Symbol{Kind: kind, Name: name, Container: owner, Decl: decl.Name, typeNode: decl.Type, valueNode: decl.Value}
		if decl.Type != nil {
			sym.Type = m.resolveTypeAt(at, decl.Type, false)
		}
		key := m.fold(name)
		scope[key] = append(scope[key], sym)
		m.declare(sym, decl.Name)
	}
	for _, p := range d.Params {
		add(Parameter, m.h.Parameter(p), p)
	}
	for _, stmt := range m.h.Statements(d.Body) {
		for _, decl := range m.h.Declarators(stmt) {
			add(Local, decl, stmt)
		}
	}
	for _, syms := range scope {
		sort.SliceStable(syms, func(i, j int) bool { return syms[i].Decl.StartByte < syms[j].Decl.StartByte })
	}
	m.locals[r] = scope
}

// foldConstants computes the values of constant fields and enum members.
// Constants may refer to each other in any order, so the computation
// repeats until no more values can be folded.
func (m *Model) foldConstants() {
	for progress := true; progress; {
		progress = false
		for _, c := range m.consts {
			if c.sym.Constant != nil {
				continue
			}
			if v := m.constantOf(c); v != nil {
				c.sym.Constant = v
				progress = true
			}
		}
	}
}

// constantOf folds the value of a constant field or enum member.
// An enum member without a value is one more than the member before it.
func (m *Model) constantOf(c pendingConst) constant.Value {
	if c.sym.valueNode != nil {
		v := m.ConstantValue(c.sym.valueNode)
		if c.enum && v != nil && v.Kind() != constant.Int {
			return nil
		}
		return v
	}
	switch {
	case !c.enum:
		return nil
	case c.prev == nil:
		return constant.MakeInt64(0)
	case c.prev.Constant == nil:
		return nil
	}
	return constant.BinaryOp(c.prev.Constant, token.ADD, constant.MakeInt64(1))
}

// DeclaredSymbol returns the symbol declared by n, which may be a
// declaration or the name node of one.
func (m *Model) DeclaredSymbol(n *syntax.Node) *Symbol {
	if n == nil {
		return nil
	}
	return m.declared[n]
}
