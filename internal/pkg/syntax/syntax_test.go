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

package syntax

import (
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// build returns the tree for "x = Foo(1)\ny" with a hand-made shape:
//
//	Root
//	  Assign (left: X, right: Call)
//	    X
//	    "="
//	    Call (callee: Foo)
//	      Foo
//	      Arg
//	  Y
func build() (*Tree, map[string]*Node) {
	src := []byte("x = Foo(1)\ny")
	tree := NewTree(token.NewFileSet(), "t.vb", VisualBasic, src)
	n := map[string]*Node{
		"root":   NewNode("Root", true, 0, len(src)),
		"assign": NewNode("Assign", true, 0, 10),
		"x":      NewNode("X", true, 0, 1),
		"eq":     NewNode("=", false, 2, 3),
		"call":   NewNode("Call", true, 4, 10),
		"foo":    NewNode("Foo", true, 4, 7),
		"arg":    NewNode("Arg", true, 8, 9),
		"y":      NewNode("Y", true, 11, 12),
	}
	n["call"].Append("callee", n["foo"])
	n["call"].Append("", n["arg"])
	n["assign"].Append("left", n["x"])
	n["assign"].Append("", n["eq"])
	n["assign"].Append("right", n["call"])
	n["root"].Append("", n["assign"])
	n["root"].Append("", n["y"])
	tree.Adopt(n["root"])
	return tree, n
}

func TestNode(t *testing.T) {
	tree, n := build()

	if got := n["call"].Text(); got != "Foo(1)" {
		t.Errorf("Text() = %q", got)
	}
	if n["arg"].Tree() != tree {
		t.Error("Adopt did not link nodes to the tree")
	}
	if n["foo"].Parent != n["call"] || n["root"].Parent != nil {
		t.Error("Adopt did not link parents")
	}
	if got := n["assign"].Field("right"); got != n["call"] {
		t.Errorf("Field(right) = %v", got)
	}
	if got := n["assign"].FieldOf(n["x"]); got != "left" {
		t.Errorf("FieldOf(x) = %q", got)
	}
	if got := n["assign"].Token("="); got != n["eq"] {
		t.Errorf("Token(=) = %v", got)
	}
	if got := len(n["assign"].NamedChildren()); got != 2 {
		t.Errorf("%d named children, want 2", got)
	}
	if got := n["arg"].Ancestor("Assign", "Root"); got != n["assign"] {
		t.Errorf("Ancestor() = %v", got)
	}
	if !n["assign"].Contains(n["arg"]) || n["assign"].Contains(n["y"]) {
		t.Error("Contains() gave the wrong answer")
	}
	if got := tree.File.Position(n["y"].Pos()); got.Line != 2 || got.Column != 1 {
		t.Errorf("position of y = %v", got)
	}
}

func TestNilNode(t *testing.T) {
	var n *Node
	if n.Text() != "" || n.Field("a") != nil || n.Is("A") || n.ChildOfKind("A") != nil ||
		n.Ancestor("A") != nil || n.Pos() != token.NoPos || n.Tree() != nil {
		t.Error("queries on a nil node returned values")
	}
}

func TestSetField(t *testing.T) {
	_, n := build()
	n["y"].SetField("alias", n["foo"])
	if got := n["y"].Field("alias"); got != n["foo"] {
		t.Errorf("Field(alias) = %v", got)
	}
	if len(n["y"].Children) != 0 {
		t.Error("SetField added a child")
	}
}

func TestInspect(t *testing.T) {
	_, n := build()
	var got []string
	Inspect(n["root"], func(c *Node) bool {
		got = append(got, c.Kind)
		return c.Kind != "Call"
	})
	want := []string{"Root", "Assign", "X", "=", "Call", "Y"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Inspect() diff (-want +got):\n%s", diff)
	}
}

func TestTree(t *testing.T) {
	tree, _ := build()
	tree.AddComment(4, 7)
	tree.Errorf(11, "bad %s", "y")

	if diff := cmp.Diff([]Comment{{StartByte: 4, EndByte: 7, Text: "Foo"}}, tree.Comments); diff != "" {
		t.Errorf("comments diff (-want +got):\n%s", diff)
	}
	if len(tree.Errors) != 1 || tree.Errors[0].Error() != "bad y" || tree.File.Line(tree.Errors[0].Pos) != 2 {
		t.Errorf("errors = %v", tree.Errors)
	}
	for _, tt := range []struct {
		offset, want int
	}{
		{0, 1}, {10, 1}, {11, 2}, {100, 2},
	} {
		if got := tree.Line(tt.offset); got != tt.want {
			t.Errorf("Line(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
	if got := tree.LineText(1); got != "x = Foo(1)" {
		t.Errorf("LineText(1) = %q", got)
	}
	if got := tree.LineText(3); got != "" {
		t.Errorf("LineText(3) = %q", got)
	}
	if got := tree.Fold("Response"); got != "response" {
		t.Errorf("Fold() = %q", got)
	}
}

func TestLanguageOf(t *testing.T) {
	for _, tt := range []struct {
		name   string
		want   Language
		wantOK bool
	}{
		{"a/Home.cs", CSharp, true},
		{"Module.VB", VisualBasic, true},
		{"readme.md", Unknown, false},
	} {
		got, ok := LanguageOf(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("LanguageOf(%q) = %v, %v, want %v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
	if CSharp.CaseInsensitive() || !VisualBasic.CaseInsensitive() {
		t.Error("CaseInsensitive() gave the wrong answer")
	}
}
