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

// Package semantic binds syntax to the declarations it refers to.
//
// A Model covers the source files of one compilation, in one language,
// together with a Universe of library types described by metadata
// catalogs. Every declaration is collected when the Model is built; the
// queries afterwards only read, so one Model can serve concurrent
// analyzers.
//
// Resolution is best-effort. A query that cannot bind a reference answers
// nil, and callers must treat that as "unknown" rather than as a negative
// answer.
package semantic

import (
	"go/constant"
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Kind is the kind of a symbol.
type Kind int

const (
	NoKind Kind = iota
	Namespace
	Type
	Method
	Constructor
	Property
	Field
	Event
	Parameter
	Local
)

var kindNames = [...]string{
	NoKind:      "unknown",
	Namespace:   "namespace",
	Type:        "type",
	Method:      "method",
	Constructor: "constructor",
	Property:    "property",
	Field:       "field",
	Event:       "event",
	Parameter:   "parameter",
	Local:       "local",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsValue reports whether a symbol of kind k denotes a storage location.
func (k Kind) IsValue() bool {
	switch k {
	case Property, Field, Event, Parameter, Local:
		return true
	}
	return false
}

// Symbol is a declared entity: a namespace, a type, a member of a type,
// a parameter or a local variable.
type Symbol struct {
	Kind Kind
	Name string
	// Container is the enclosing namespace or type. Parameters and locals
	// have the routine that declares them.
	Container *Symbol
	// Type is the value type of a variable, field, property or event and
	// the return type of a method. It is nil when unknown, and for locals
	// whose type is inferred from their initializer.
	Type *Symbol

	// Set for types.
	TypeKind syntax.TypeKind
	Bases    []*Symbol

	Static   bool
	Access   syntax.Accessibility
	Constant constant.Value
	// Extends is the receiver type of an extension method.
	Extends *Symbol
	// Decl is the name node of a source declaration; nil for library symbols.
	Decl *syntax.Node

	members   map[string][]*Symbol
	typeNode  *syntax.Node
	valueNode *syntax.Node
}

// FullName returns the dotted name of s, qualified by its containers.
// Nested types are separated from their containing type by a dot.
func (s *Symbol) FullName() string {
	if s == nil {
		return ""
	}
	if s.Container == nil || s.Container.Name == "" || s.Kind == Parameter || s.Kind == Local {
		return s.Name
	}
	return s.Container.FullName() + "." + s.Name
}

func (s *Symbol) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.Kind.String() + " " + s.FullName()
}

// DerivesFrom reports whether the type s is the type named fullName or
// inherits from or implements it.
func (s *Symbol) DerivesFrom(fullName string) bool {
	seen := map[*Symbol]bool{}
	var walk func(t *Symbol) bool
	walk = func(t *Symbol) bool {
		if t == nil || seen[t] {
			return false
		}
		seen[t] = true
		if t.FullName() == fullName {
			return true
		}
		for _, b := range t.Bases {
			if walk(b) {
				return true
			}
		}
		return false
	}
	return s != nil && s.Kind == Type && walk(s)
}

// Members returns the members of a namespace or type named name, as
// declared directly on it. The comparison ignores case; callers in
// case-sensitive languages filter the result.
func (s *Symbol) Members(name string) []*Symbol {
	if s == nil {
		return nil
	}
	return s.members[strings.ToLower(name)]
}

func (s *Symbol) add(m *Symbol) {
	if s.members == nil {
		s.members = map[string][]*Symbol{}
	}
	key := strings.ToLower(m.Name)
	if m.Kind == Constructor {
		key = ctorKey
	}
	s.members[key] = append(s.members[key], m)
}

// ctorKey files constructors apart from the type's own name, which in C#
// they share.
const ctorKey = ".ctor"

// ContainingType returns the full name of the type that declares sym, or
// the empty string if sym is not a member of a type.
func ContainingType(sym *Symbol) string {
	if sym == nil || sym.Container == nil || sym.Container.Kind != Type {
		return ""
	}
	return sym.Container.FullName()
}

// MatchMember reports whether sym is the member named member of the type
// typeName. A typeName without a dot matches the simple name of the
// containing type, otherwise its full name.
func MatchMember(sym *Symbol, typeName, member string) bool {
	if sym == nil || sym.Name != member {
		return false
	}
	container := ContainingType(sym)
	if container == "" {
		return false
	}
	if !strings.Contains(typeName, ".") {
		return sym.Container.Name == typeName
	}
	return container == typeName
}

// Bridge is the part of a Model rule analyzers consult to confirm that a
// piece of syntax denotes a particular library member or constant.
type Bridge interface {
	ResolveSymbol(n *syntax.Node) *Symbol
	ConstantValue(n *syntax.Node) constant.Value
}

var _ Bridge = (*Model)(nil)
