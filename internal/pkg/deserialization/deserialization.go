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

// Package deserialization reports deserializer configurations that let the
// payload choose which types are instantiated.
package deserialization

import (
	"go/constant"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/suppression"
	"github.com/google/netlevee/internal/pkg/syntax"
)

var Analyzer = &analysis.Analyzer{
	Name:     "deserialization",
	Doc:      "reports Json.NET TypeNameHandling settings and JavaScriptSerializer type resolvers (" + diagnostic.UnsafeDeserialization.ID + ")",
	Flags:    config.FlagSet,
	Run:      run,
	Requires: []*analysis.Analyzer{compilation.Analyzer, suppression.Analyzer},
}

const typeNameHandling = "TypeNameHandling"

// Types whose TypeNameHandling members are checked when assigned and when
// passed as attribute arguments.
var (
	settingsTypes  = []string{"Newtonsoft.Json.JsonSerializerSettings", "Newtonsoft.Json.JsonSerializer"}
	attributeTypes = []string{"Newtonsoft.Json.JsonPropertyAttribute"}
)

// resolvingSerializer takes a type resolver as the first argument of one
// of its constructors.
const resolvingSerializer = "System.Web.Script.Serialization.JavaScriptSerializer"

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	suppressed := pass.ResultOf[suppression.Analyzer].(suppression.ResultType)
	emitter := diagnostic.NewEmitter(pass, comp.Config, suppressed)
	if !emitter.Enabled(diagnostic.UnsafeDeserialization) {
		return nil, nil
	}

	classes := []syntax.Class{syntax.AttributeArgument, syntax.Assignment, syntax.ObjectCreation}
	err := comp.Preorder(classes, func(u *compilation.Unit, n *syntax.Node) {
		var report *syntax.Node
		switch u.Helper.Classify(n) {
		case syntax.AttributeArgument:
			report = attributeArgument(u, n)
		case syntax.Assignment:
			report = assignment(u, n)
		case syntax.ObjectCreation:
			report = objectCreation(u, n)
		}
		if report != nil {
			emitter.Report(diagnostic.Finding{Rule: diagnostic.UnsafeDeserialization, Node: report})
		}
	})
	return nil, err
}

// attributeArgument checks [JsonProperty(TypeNameHandling = ...)].
func attributeArgument(u *compilation.Unit, arg *syntax.Node) *syntax.Node {
	h := u.Helper
	name := h.AttributeArgumentName(arg)
	if !namesTypeNameHandling(h, name) || !memberOf(u.Model.ResolveSymbol(name), attributeTypes) {
		return nil
	}
	return unlessNone(u.Model, h.AttributeArgumentValue(arg))
}

// assignment checks settings.TypeNameHandling = ..., including object
// initializers.
func assignment(u *compilation.Unit, a *syntax.Node) *syntax.Node {
	h := u.Helper
	if h.AssignmentOperator(a) != syntax.SimpleAssign {
		return nil
	}
	target := h.AssignmentTarget(a)
	if !namesTypeNameHandling(h, target) || !memberOf(u.Model.ResolveSymbol(target), settingsTypes) {
		return nil
	}
	return unlessNone(u.Model, h.AssignmentValue(a))
}

// objectCreation checks new JavaScriptSerializer(resolver).
func objectCreation(u *compilation.Unit, n *syntax.Node) *syntax.Node {
	ctor := u.Model.ResolveSymbol(n)
	if semantic.ContainingType(ctor) != resolvingSerializer {
		return nil
	}
	args := u.Helper.ObjectCreationArguments(n)
	if len(args) == 0 || u.Model.ResolveSymbol(args[0]) == nil {
		return nil
	}
	return n
}

// namesTypeNameHandling reports whether the spelling of n, the name of an
// attribute argument or the target of an assignment, ends in
// TypeNameHandling, ignoring case in Visual Basic. This also admits
// ItemTypeNameHandling.
func namesTypeNameHandling(h syntax.Helper, n *syntax.Node) bool {
	if n == nil {
		return false
	}
	if h.IsSimpleMemberAccess(n) {
		n = h.MemberAccessName(n)
	}
	name, ok := h.Identifier(n)
	if !ok {
		name = n.Text()
	}
	t := n.Tree()
	return strings.HasSuffix(t.Fold(name), t.Fold(typeNameHandling))
}

func memberOf(sym *semantic.Symbol, types []string) bool {
	container := semantic.ContainingType(sym)
	for _, t := range types {
		if container == t {
			return true
		}
	}
	return false
}

// unlessNone returns v if it folds to an integer other than
// TypeNameHandling.None. Strings, which Visual Basic converts to enum
// values at run time, are ignored.
func unlessNone(m *semantic.Model, v *syntax.Node) *syntax.Node {
	if v == nil {
		return nil
	}
	c := m.ConstantValue(v)
	if c == nil || c.Kind() != constant.Int || constant.Sign(c) == 0 {
		return nil
	}
	return v
}
