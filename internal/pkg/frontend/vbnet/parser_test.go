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
	"context"
	"go/constant"
	"go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/google/netlevee/internal/pkg/syntax"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree, err := Parse(context.Background(), token.NewFileSet(), "test.vb", []byte(src))
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	return tree
}

// inSub wraps statements in a class with a single Sub.
func inSub(body string) string {
	return "Class C\n    Sub M()\n" + body + "\n    End Sub\nEnd Class\n"
}

// first returns the first node of class c in preorder.
func first(root *syntax.Node, c syntax.Class) *syntax.Node {
	var found *syntax.Node
	syntax.Inspect(root, func(n *syntax.Node) bool {
		if found == nil && Helper.Classify(n) == c {
			found = n
		}
		return found == nil
	})
	return found
}

func TestLex(t *testing.T) {
	for _, tt := range []struct {
		desc string
		src  string
		want []string
	}{
		{desc: "explicit continuation", src: "x = _\n    1", want: []string{"x", "=", "1"}},
		{desc: "comment", src: "x ' note", want: []string{"x"}},
		{desc: "rem comment", src: "x = 1 REM note\ny", want: []string{"x", "=", "1", "\n", "y"}},
		{desc: "escaped identifier", src: "[Class].x", want: []string{"[Class]", ".", "x"}},
		{desc: "type character", src: "s$ = 1", want: []string{"s$", "=", "1"}},
		{desc: "doubled quotes", src: `x = "a""b"`, want: []string{"x", "=", `"a""b"`}},
		{desc: "colon separates statements", src: "a = 1 : b := 2", want: []string{"a", "=", "1", ":", "b", ":=", "2"}},
		{desc: "compound assignment", src: "x &= y", want: []string{"x", "&=", "y"}},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			tree := syntax.NewTree(token.NewFileSet(), "test.vb", syntax.VisualBasic, []byte(tt.src))
			var got []string
			for _, tok := range lex(tree) {
				if tok.kind != tEOF {
					got = append(got, tok.text)
				}
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lex(%q) diff (-want +got):\n%s", tt.src, diff)
			}
		})
	}
}

func TestComments(t *testing.T) {
	tree := parse(t, "' first\nClass C ' second\nEnd Class\n")
	var got []string
	for _, c := range tree.Comments {
		got = append(got, c.Text)
	}
	if diff := cmp.Diff([]string{"' first", "' second"}, got); diff != "" {
		t.Errorf("comments diff (-want +got):\n%s", diff)
	}
}

func TestStatements(t *testing.T) {
	tree := parse(t, inSub(`        Dim a As String = "x"
        a &= "y"
        If a = "" Then
            Return
        Else
            a = "z"
        End If
        For Each c In a
            Console.Write(c)
        Next`))
	if len(tree.Errors) > 0 {
		t.Fatalf("unexpected syntax errors: %v", tree.Errors)
	}
	routine := first(tree.Root, syntax.Routine)
	if routine == nil {
		t.Fatal("no routine found")
	}
	var got []string
	for _, s := range Helper.Statements(Helper.Routine(routine).Body) {
		got = append(got, s.Kind)
	}
	want := []string{
		"LocalDeclarationStatement",
		"ConcatenateAssignmentStatement",
		"MultiLineIfBlock",
		"ReturnStatement",
		"SimpleAssignmentStatement",
		"ForEachBlock",
		"ExpressionStatement",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Statements() diff (-want +got):\n%s", diff)
	}
}

func TestRoutine(t *testing.T) {
	tree := parse(t, `Public Class C
    Public Function F(a As String, Optional b As Integer = 1) As String
        Return a
    End Function

    Private Shared Sub S()
    End Sub

    Public Sub New()
    End Sub
End Class
`)
	var got []string
	syntax.Inspect(tree.Root, func(n *syntax.Node) bool {
		if !Helper.IsRoutine(n) {
			return true
		}
		d := Helper.Routine(n)
		var params []string
		for _, p := range d.Params {
			name, _ := Helper.Identifier(Helper.Parameter(p).Name)
			params = append(params, name)
		}
		got = append(got, strings.Join([]string{
			Helper.Accessibility(n).String(),
			map[bool]string{true: "static", false: "instance"}[Helper.IsStatic(n)],
			map[bool]string{true: "void", false: "value"}[d.Void],
			map[bool]string{true: "ctor", false: "method"}[d.Constructor],
			"(" + strings.Join(params, ",") + ")",
		}, " "))
		return false
	})
	want := []string{
		"public instance value method (a,b)",
		"private static void method ()",
		"public instance value ctor ()",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("routines diff (-want +got):\n%s", diff)
	}
}

func TestTypeArguments(t *testing.T) {
	for _, tt := range []struct {
		desc string
		typ  string
		want []string
	}{
		{desc: "generic", typ: "Task(Of String)", want: []string{"String"}},
		{desc: "qualified generic", typ: "System.Threading.Tasks.ValueTask(Of IActionResult)", want: []string{"IActionResult"}},
		{desc: "two arguments", typ: "Dictionary(Of String, Integer)", want: []string{"String", "Integer"}},
		{desc: "not generic", typ: "String"},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			tree := parse(t, "Class C\n    Function F() As "+tt.typ+"\n    End Function\nEnd Class\n")
			d := Helper.Routine(first(tree.Root, syntax.Routine))
			var got []string
			for _, a := range Helper.TypeArguments(d.Returns) {
				got = append(got, a.Text())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TypeArguments(%s) diff (-want +got):\n%s", tt.typ, diff)
			}
		})
	}
}

func TestObjectCreation(t *testing.T) {
	for _, tt := range []struct {
		desc         string
		body         string
		wantType     string
		wantArgs     int
		wantInitName []string
	}{
		{
			desc:     "as new",
			body:     "Dim s As New Settings(1, 2)",
			wantType: "Settings",
			wantArgs: 2,
		},
		{
			desc:         "with initializer",
			body:         "Dim s = New Settings With {.TypeNameHandling = 1, .Other = 2}",
			wantType:     "Settings",
			wantInitName: []string{"TypeNameHandling", "Other"},
		},
		{
			desc:     "qualified type",
			body:     "Dim s = New Web.Script.Serialization.JavaScriptSerializer(resolver)",
			wantType: "Web.Script.Serialization.JavaScriptSerializer",
			wantArgs: 1,
		},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			tree := parse(t, inSub(tt.body))
			n := first(tree.Root, syntax.ObjectCreation)
			if n == nil {
				t.Fatal("no object creation found")
			}
			if got := Helper.ObjectCreationType(n).Text(); got != tt.wantType {
				t.Errorf("type = %q, want %q", got, tt.wantType)
			}
			if got := len(Helper.ObjectCreationArguments(n)); got != tt.wantArgs {
				t.Errorf("%d arguments, want %d", got, tt.wantArgs)
			}
			var names []string
			for _, init := range Helper.ObjectCreationInitializers(n) {
				if Helper.Classify(init) != syntax.Assignment || Helper.AssignmentOperator(init) != syntax.SimpleAssign {
					t.Errorf("initializer %q is not a simple assignment", init.Text())
				}
				names = append(names, Helper.AssignmentTarget(init).Text())
			}
			if diff := cmp.Diff(tt.wantInitName, names); diff != "" {
				t.Errorf("initializers diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssignmentOperator(t *testing.T) {
	for _, tt := range []struct {
		body string
		want syntax.AssignOp
	}{
		{body: "x = 1", want: syntax.SimpleAssign},
		{body: "x += 1", want: syntax.AddAssign},
		{body: "x -= 1", want: syntax.OtherAssign},
		{body: "x &= \"a\"", want: syntax.OtherAssign},
	} {
		tree := parse(t, inSub(tt.body))
		n := first(tree.Root, syntax.Assignment)
		if n == nil {
			t.Errorf("%q: no assignment found", tt.body)
			continue
		}
		if got := Helper.AssignmentOperator(n); got != tt.want {
			t.Errorf("%q: AssignmentOperator() = %v, want %v", tt.body, got, tt.want)
		}
		if got := Helper.AssignmentTarget(n).Text(); got != "x" {
			t.Errorf("%q: AssignmentTarget() = %q, want x", tt.body, got)
		}
	}
}

func TestAttributeArguments(t *testing.T) {
	tree := parse(t, `Class C
    <JsonProperty(TypeNameHandling:=TypeNameHandling.All)>
    Public Property P As Object
End Class
`)
	n := first(tree.Root, syntax.AttributeArgument)
	if n == nil {
		t.Fatal("no attribute argument found")
	}
	if got := Helper.AttributeArgumentName(n).Text(); got != "TypeNameHandling" {
		t.Errorf("name = %q", got)
	}
	if got := Helper.AttributeArgumentValue(n).Text(); got != "TypeNameHandling.All" {
		t.Errorf("value = %q", got)
	}
}

func TestImports(t *testing.T) {
	tree := parse(t, "Imports System.Web\nImports Json = Newtonsoft.Json\n\nClass C\nEnd Class\n")
	var got []string
	for _, imp := range Helper.Imports(tree.Root) {
		got = append(got, imp.Alias+"="+imp.Name.Text())
	}
	if diff := cmp.Diff([]string{"=System.Web", "Json=Newtonsoft.Json"}, got); diff != "" {
		t.Errorf("Imports() diff (-want +got):\n%s", diff)
	}
}

func TestLiteral(t *testing.T) {
	for _, tt := range []struct {
		src  string
		want constant.Value
	}{
		{src: "&HFF", want: constant.MakeInt64(255)},
		{src: "1_000", want: constant.MakeInt64(1000)},
		{src: "10L", want: constant.MakeInt64(10)},
		{src: `"a""b"`, want: constant.MakeString(`a"b`)},
		{src: `"x"c`, want: constant.MakeString("x")},
		{src: "True", want: constant.MakeBool(true)},
		{src: "Nothing"},
	} {
		tree := parse(t, inSub("x = "+tt.src))
		v := Helper.AssignmentValue(first(tree.Root, syntax.Assignment))
		got, ok := Helper.Literal(v)
		if tt.want == nil {
			if ok {
				t.Errorf("Literal(%s) = %v, want no value", tt.src, got)
			}
			continue
		}
		if !ok || !constant.Compare(got, token.EQL, tt.want) {
			t.Errorf("Literal(%s) = %v, %v, want %v", tt.src, got, ok, tt.want)
		}
	}
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	tree := parse(t, "CLASS C\n    sub m()\n        DIM x as string = \"a\"\n    END SUB\nend class\n")
	if len(tree.Errors) > 0 {
		t.Errorf("unexpected syntax errors: %v", tree.Errors)
	}
	if first(tree.Root, syntax.Routine) == nil {
		t.Error("no routine found")
	}
}

func TestErrorsDoNotStopParsing(t *testing.T) {
	for _, src := range []string{
		"Class C\n    Sub M(\n",
		"Class\n",
		"Sub M()\n    x = = 1\nEnd Sub\n",
		"Class C\n    Function F() As String\n        Return New With {\n",
		"<Attr(\nClass C\nEnd Class\n",
		"Imports\n",
		"[",
		"\"unterminated",
	} {
		tree := parse(t, src)
		if tree.Root == nil {
			t.Errorf("Parse(%q) returned no root", src)
		}
	}

	tree := parse(t, "Class C\n    Sub M()\n        x = = 1\n        y = 2\n    End Sub\nEnd Class\n")
	if len(tree.Errors) == 0 {
		t.Error("expected a syntax error")
	}
	if n := first(tree.Root, syntax.Assignment); n == nil {
		t.Error("statements after the error were dropped")
	}
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Parse(ctx, token.NewFileSet(), "test.vb", []byte("Class C\nEnd Class\n")); err == nil {
		t.Error("Parse() with a cancelled context succeeded")
	}
}
