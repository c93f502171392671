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

package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuiltinReferencesAreDeclared(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() returned an error: %v", err)
	}
	declared := map[string]bool{}
	for _, typ := range c.Types {
		declared[typ.Name] = true
	}
	for _, typ := range c.Types {
		refs := append([]string{typ.Base}, typ.Interfaces...)
		for _, m := range typ.Members {
			refs = append(refs, m.Type, m.Extends)
		}
		for _, r := range refs {
			if r != "" && !declared[r] {
				t.Errorf("%s refers to undeclared type %s", typ.Name, r)
			}
		}
	}
}

func TestBuiltinRuleTypes(t *testing.T) {
	c, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin() returned an error: %v", err)
	}
	byName := map[string]*Type{}
	for _, typ := range c.Types {
		byName[typ.Name] = typ
	}

	handling := byName["Newtonsoft.Json.TypeNameHandling"]
	if handling == nil {
		t.Fatal("Newtonsoft.Json.TypeNameHandling is missing")
	}
	got := map[string]int64{}
	for _, m := range handling.Members {
		got[m.Name] = *m.Value
	}
	want := map[string]int64{"None": 0, "Objects": 1, "Arrays": 2, "All": 3, "Auto": 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TypeNameHandling values diff (-want +got):\n%s", diff)
	}

	for _, name := range []string{
		"System.Net.ServicePointManager",
		"System.Net.HttpWebRequest",
		"System.Net.Http.HttpClientHandler",
		"System.Web.Script.Serialization.JavaScriptSerializer",
		"Newtonsoft.Json.JsonPropertyAttribute",
		"Newtonsoft.Json.JsonSerializerSettings",
		"Microsoft.AspNetCore.Mvc.Controller",
		"System.Web.Mvc.Controller",
	} {
		if byName[name] == nil {
			t.Errorf("%s is missing", name)
		}
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		desc    string
		in      string
		want    *Catalog
		wantErr bool
	}{
		{
			desc: "type with members",
			in: `
types:
- name: Acme.Widget
  kind: class
  members:
  - {name: Render, kind: method, type: System.String, static: true}
`,
			want: &Catalog{Types: []*Type{{
				Name:    "Acme.Widget",
				Kind:    Class,
				Members: []Member{{Name: "Render", Kind: Method, Type: "System.String", Static: true}},
			}}},
		},
		{
			desc:    "unknown key",
			in:      "types:\n- name: Acme.Widget\n  kind: class\n  color: red\n",
			wantErr: true,
		},
		{
			desc:    "unknown type kind",
			in:      "types:\n- name: Acme.Widget\n  kind: record\n",
			wantErr: true,
		},
		{
			desc:    "duplicate type",
			in:      "types:\n- {name: Acme.Widget, kind: class}\n- {name: Acme.Widget, kind: class}\n",
			wantErr: true,
		},
		{
			desc:    "enum member without value",
			in:      "types:\n- name: Acme.Color\n  kind: enum\n  members:\n  - {name: Red, kind: field}\n",
			wantErr: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(path, []byte("types:\n- {name: Acme.Widget, kind: class, base: System.Object}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if len(c.Types) != 1 || c.Types[0].Namespace() != "Acme" || c.Types[0].SimpleName() != "Widget" {
		t.Errorf("Load() = %+v, want a single Acme.Widget", c.Types)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
