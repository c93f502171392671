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
	"fmt"
	"go/constant"
	"strings"
	"sync"

	"github.com/google/netlevee/internal/pkg/metadata"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Universe holds the library symbols described by metadata catalogs.
// It is immutable once built.
type Universe struct {
	global     *Symbol
	namespaces map[string]*Symbol
	types      map[string]*Symbol
	extensions map[string][]*Symbol
}

var catalogKinds = map[string]syntax.TypeKind{
	metadata.Class:     syntax.ClassKind,
	metadata.Struct:    syntax.StructKind,
	metadata.Interface: syntax.InterfaceKind,
	metadata.Enum:      syntax.EnumKind,
	metadata.Delegate:  syntax.DelegateKind,
}

var memberKinds = map[string]Kind{
	metadata.Method:      Method,
	metadata.Constructor: Constructor,
	metadata.Property:    Property,
	metadata.Field:       Field,
	metadata.Event:       Event,
}

// NewUniverse builds the symbols of the given catalogs. Types may refer to
// types of any of the catalogs; a reference to a type none declares is an
// error.
func NewUniverse(cats ...*metadata.Catalog) (*Universe, error) {
	u := &Universe{
		global:     &Symbol{Kind: Namespace},
		namespaces: map[string]*Symbol{},
		types:      map[string]*Symbol{},
		extensions: map[string][]*Symbol{},
	}
	u.namespaces[""] = u.global

	var decls []*metadata.Type
	for _, c := range cats {
		for _, t := range c.Types {
			key := strings.ToLower(t.Name)
			if _, ok := u.types[key]; ok {
				return nil, fmt.Errorf("type %s declared twice", t.Name)
			}
			ns := u.namespace(t.Namespace())
			sym := &Symbol{Kind: Type, Name: t.SimpleName(), Container: ns, TypeKind: catalogKinds[t.Kind], Access: syntax.Public}
			ns.add(sym)
			u.types[key] = sym
			decls = append(decls, t)
		}
	}

	lookup := func(owner, name string) (*Symbol, error) {
		if name == "" {
			return nil, nil
		}
		if t := u.types[strings.ToLower(name)]; t != nil {
			return t, nil
		}
		return nil, fmt.Errorf("%s: unknown type %s", owner, name)
	}
	object := u.types["system.object"]

	for _, t := range decls {
		sym := u.types[strings.ToLower(t.Name)]
		for _, b := range append([]string{t.Base}, t.Interfaces...) {
			base, err := lookup(t.Name, b)
			if err != nil {
				return nil, err
			}
			if base != nil {
				sym.Bases = append(sym.Bases, base)
			}
		}
		if t.Base == "" && t.Kind == metadata.Class && object != nil && sym != object {
			sym.Bases = append(sym.Bases, object)
		}
		hasCtor := false
		for _, m := range t.Members {
			ms := &Symbol{Kind: memberKinds[m.Kind], Name: m.Name, Container: sym, Static: m.Static, Access: syntax.Public}
			typ, err := lookup(t.Name+"."+m.Name, m.Type)
			if err != nil {
				return nil, err
			}
			ms.Type = typ
			if ms.Extends, err = lookup(t.Name+"."+m.Name, m.Extends); err != nil {
				return nil, err
			}
			if t.Kind == metadata.Enum {
				ms.Type, ms.Static = sym, true
			}
			if m.Value != nil {
				ms.Constant = constant.MakeInt64(*m.Value)
			}
			if ms.Kind == Constructor {
				hasCtor = true
			}
			sym.add(ms)
			if ms.Extends != nil {
				key := strings.ToLower(m.Name)
				u.extensions[key] = append(u.extensions[key], ms)
			}
		}
		if !hasCtor && t.Kind != metadata.Interface && t.Kind != metadata.Enum {
			sym.add(&Symbol{Kind: Constructor, Name: sym.Name, Container: sym, Access: syntax.Public})
		}
	}
	return u, nil
}

// namespace returns the namespace named full, creating it and its
// parents as needed.
func (u *Universe) namespace(full string) *Symbol {
	key := strings.ToLower(full)
	if ns, ok := u.namespaces[key]; ok {
		return ns
	}
	parent, name := u.global, full
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		parent, name = u.namespace(full[:i]), full[i+1:]
	}
	ns := &Symbol{Kind: Namespace, Name: name, Container: parent}
	parent.add(ns)
	u.namespaces[key] = ns
	return ns
}

// LookupType returns the library type with the given full name.
func (u *Universe) LookupType(fullName string) *Symbol {
	return u.types[strings.ToLower(fullName)]
}

// LookupNamespace returns the library namespace with the given full name.
func (u *Universe) LookupNamespace(fullName string) *Symbol {
	return u.namespaces[strings.ToLower(fullName)]
}

var (
	defaultOnce     sync.Once
	defaultUniverse *Universe
	defaultErr      error
)

// DefaultUniverse returns the universe of the built-in catalog.
func DefaultUniverse() (*Universe, error) {
	defaultOnce.Do(func() {
		c, err := metadata.Builtin()
		if err != nil {
			defaultErr = err
			return
		}
		defaultUniverse, defaultErr = NewUniverse(c)
	})
	return defaultUniverse, defaultErr
}

// UniverseWith returns the universe of the built-in catalog extended with
// the catalogs read from paths.
func UniverseWith(paths ...string) (*Universe, error) {
	if len(paths) == 0 {
		return DefaultUniverse()
	}
	c, err := metadata.Builtin()
	if err != nil {
		return nil, err
	}
	cats := []*metadata.Catalog{c}
	for _, p := range paths {
		extra, err := metadata.Load(p)
		if err != nil {
			return nil, err
		}
		cats = append(cats, extra)
	}
	return NewUniverse(cats...)
}
