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

// Package metadata describes the library types analyzed code refers to.
//
// The analyzers resolve references against declarations rather than
// spelling, so every library type a rule depends on, and every type on
// the way to it, is listed in a catalog. A built-in catalog is embedded;
// further catalogs can be read from YAML files.
package metadata

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"
)

//go:embed catalog.yaml
var builtin []byte

// Catalog is a set of type descriptions.
type Catalog struct {
	Types []*Type `json:"types"`
}

// Kinds of types.
const (
	Class     = "class"
	Struct    = "struct"
	Interface = "interface"
	Enum      = "enum"
	Delegate  = "delegate"
)

// Kinds of members.
const (
	Method      = "method"
	Constructor = "constructor"
	Property    = "property"
	Field       = "field"
	Event       = "event"
)

// Type describes a library type.
type Type struct {
	// Name is the namespace-qualified name, e.g. System.Net.ServicePointManager.
	Name string `json:"name"`
	Kind string `json:"kind"`
	// Base is the base class or, for interfaces and classes that only
	// implement one, the interface. Classes default to System.Object.
	Base       string   `json:"base,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Members    []Member `json:"members,omitempty"`
}

// Member describes a member of a library type.
type Member struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	// Type is the value type of a field, property or event, or the return
	// type of a method. Enum members take the enum type.
	Type   string `json:"type,omitempty"`
	Static bool   `json:"static,omitempty"`
	// Value is the value of a constant or enum member.
	Value *int64 `json:"value,omitempty"`
	// Extends names the receiver type of an extension method.
	Extends string `json:"extends,omitempty"`
}

// Namespace returns the namespace part of the type's name.
func (t *Type) Namespace() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[:i]
	}
	return ""
}

// SimpleName returns the type's name without its namespace.
func (t *Type) SimpleName() string {
	return t.Name[strings.LastIndexByte(t.Name, '.')+1:]
}

var typeKinds = map[string]bool{Class: true, Struct: true, Interface: true, Enum: true, Delegate: true}

var memberKinds = map[string]bool{Method: true, Constructor: true, Property: true, Field: true, Event: true}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*Catalog, error) {
	c := new(Catalog)
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	for i, t := range c.Types {
		switch {
		case t == nil || t.Name == "":
			return fmt.Errorf("type %d: missing name", i)
		case !typeKinds[t.Kind]:
			return fmt.Errorf("type %s: unknown kind %q", t.Name, t.Kind)
		case seen[t.Name]:
			return fmt.Errorf("type %s: declared twice", t.Name)
		}
		seen[t.Name] = true
		for _, m := range t.Members {
			if m.Name == "" {
				return fmt.Errorf("type %s: member without a name", t.Name)
			}
			if !memberKinds[m.Kind] {
				return fmt.Errorf("member %s.%s: unknown kind %q", t.Name, m.Name, m.Kind)
			}
			if t.Kind == Enum && m.Value == nil {
				return fmt.Errorf("member %s.%s: enum member without a value", t.Name, m.Name)
			}
		}
	}
	return nil
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var (
	builtinOnce sync.Once
	builtinCat  *Catalog
	builtinErr  error
)

// Builtin returns the embedded catalog. It is decoded once and must not be
// modified.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtinCat, builtinErr = Parse(builtin)
	})
	return builtinCat, builtinErr
}
