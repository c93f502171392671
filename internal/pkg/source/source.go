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

// Package source identifies the routines whose parameters carry request data.
package source

import (
	"fmt"

	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/syntax"
)

type classifier interface {
	IsSourceType(namespace, typeName string) bool
	TaintEntryPoints() bool
}

// Kind is how far the parameters of a routine are followed.
type Kind int

const (
	NotSource Kind = iota
	// EntryPoint parameters are followed to direct-output sinks.
	EntryPoint
	// Action parameters are also followed to the returned value.
	Action
)

func (k Kind) String() string {
	switch k {
	case EntryPoint:
		return "entry point"
	case Action:
		return "action"
	}
	return "not a source"
}

// Source is a routine whose parameters are treated as attacker-influenced.
type Source struct {
	Kind    Kind
	Routine *syntax.Node
	Decl    syntax.RoutineDecl
	// Params are the declared names of the parameters.
	Params []*syntax.Node
	// Returns is the resolved return type of an action, or the result type
	// T of an action returning Task<T> or ValueTask<T>.
	Returns *semantic.Symbol
}

func (s *Source) String() string {
	return fmt.Sprintf("%s %s", s.Kind, s.Decl.Name.Text())
}

// ReturnsText reports whether the routine returns a string.
func (s *Source) ReturnsText() bool {
	return s.Returns != nil && s.Returns.FullName() == "System.String"
}

var controllerBases = []string{
	"Microsoft.AspNetCore.Mvc.ControllerBase",
	"System.Web.Mvc.ControllerBase",
	"System.Web.Http.ApiController",
}

var controllerAttributes = []string{
	"Microsoft.AspNetCore.Mvc.ApiControllerAttribute",
	"Microsoft.AspNetCore.Mvc.ControllerAttribute",
}

var nonActionAttributes = []string{
	"Microsoft.AspNetCore.Mvc.NonActionAttribute",
	"System.Web.Mvc.NonActionAttribute",
}

const nonControllerAttribute = "Microsoft.AspNetCore.Mvc.NonControllerAttribute"

var asyncTypes = []string{
	"System.Threading.Tasks.Task",
	"System.Threading.Tasks.ValueTask",
}

// Identify classifies routine. It returns nil for routines that are not
// sources.
//
// Public methods of controllers are actions, provided they are instance
// methods, are not marked [NonAction] and return a type that resolves to
// something other than void. Other public methods of controllers are never
// sources. A controller is only routed when it and every type enclosing it
// are public. Public methods of any other type, whatever its own
// accessibility, are entry points, unless conf disables them.
func Identify(m *semantic.Model, conf classifier, routine *syntax.Node) *Source {
	h := m.Helper()
	if !h.IsRoutine(routine) {
		return nil
	}
	d := h.Routine(routine)
	if d.Constructor || d.Body == nil && d.Expr == nil || h.Accessibility(routine) != syntax.Public {
		return nil
	}
	s := &Source{Routine: routine, Decl: d}
	for _, p := range d.Params {
		if name := h.Parameter(p).Name; name != nil {
			s.Params = append(s.Params, name)
		}
	}

	decl := enclosingType(h, routine)
	if decl != nil && isController(m, conf, decl) {
		if h.IsStatic(routine) || d.Void || d.Returns == nil || hasAttribute(m, routine, nonActionAttributes...) {
			return nil
		}
		if s.Returns = m.ResolveType(d.Returns); s.Returns == nil || s.Returns.FullName() == "System.Void" {
			return nil
		}
		s.Returns = awaited(m, d.Returns, s.Returns)
		s.Kind = Action
		return s
	}
	if !conf.TaintEntryPoints() {
		return nil
	}
	s.Kind = EntryPoint
	return s
}

// awaited returns the resolved T of a Task<T> or ValueTask<T> return type
// spelled by typ, and t itself otherwise.
func awaited(m *semantic.Model, typ *syntax.Node, t *semantic.Symbol) *semantic.Symbol {
	args := m.Helper().TypeArguments(typ)
	if len(args) != 1 {
		return t
	}
	for _, name := range asyncTypes {
		if t.FullName() != name {
			continue
		}
		if r := m.ResolveType(args[0]); r != nil {
			return r
		}
	}
	return t
}

func enclosingType(h syntax.Helper, n *syntax.Node) *syntax.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if h.IsTypeDeclaration(p) {
			return p
		}
	}
	return nil
}

// isController reports whether the type declared by decl is a routable
// controller: it is public, and it derives from a framework controller, is
// marked as one, or derives from a type configured as a source.
func isController(m *semantic.Model, conf classifier, decl *syntax.Node) bool {
	h := m.Helper()
	for p := decl; p != nil; p = enclosingType(h, p) {
		if h.Accessibility(p) != syntax.Public {
			return false
		}
	}
	t := m.DeclaredSymbol(h.TypeDeclaration(decl).Name)
	if t == nil || hasAttribute(m, decl, nonControllerAttribute) {
		return false
	}
	for _, base := range controllerBases {
		if t.DerivesFrom(base) {
			return true
		}
	}
	if hasAttribute(m, decl, controllerAttributes...) {
		return true
	}
	return derivesFromSource(conf, t, map[*semantic.Symbol]bool{})
}

func derivesFromSource(conf classifier, t *semantic.Symbol, seen map[*semantic.Symbol]bool) bool {
	if t == nil || seen[t] {
		return false
	}
	seen[t] = true
	if t.Container != nil && conf.IsSourceType(t.Container.FullName(), t.Name) {
		return true
	}
	for _, b := range t.Bases {
		if derivesFromSource(conf, b, seen) {
			return true
		}
	}
	return false
}

func hasAttribute(m *semantic.Model, decl *syntax.Node, names ...string) bool {
	for _, a := range m.AttributeTypes(decl) {
		for _, name := range names {
			if a.FullName() == name {
				return true
			}
		}
	}
	return false
}
