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

// Package certvalidation reports code that replaces the validation of
// server certificates.
package certvalidation

import (
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/suppression"
	"github.com/google/netlevee/internal/pkg/syntax"
)

var Analyzer = &analysis.Analyzer{
	Name:     "certvalidation",
	Doc:      "reports assignments that override server certificate validation (" + diagnostic.WeakCertificateValidation.ID + ")",
	Flags:    config.FlagSet,
	Run:      run,
	Requires: []*analysis.Analyzer{compilation.Analyzer, suppression.Analyzer},
}

type member struct {
	typ, name string
}

// overrides are the members through which validation is replaced.
// Types are matched by simple name.
var overrides = []member{
	{"ServicePointManager", "ServerCertificateValidationCallback"},
	{"HttpWebRequest", "ServerCertificateValidationCallback"},
	{"ServicePointManager", "CertificatePolicy"},
	{"HttpClientHandler", "ServerCertificateCustomValidationCallback"},
}

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	suppressed := pass.ResultOf[suppression.Analyzer].(suppression.ResultType)
	emitter := diagnostic.NewEmitter(pass, comp.Config, suppressed)
	if !emitter.Enabled(diagnostic.WeakCertificateValidation) {
		return nil, nil
	}

	err := comp.Preorder([]syntax.Class{syntax.Assignment}, func(u *compilation.Unit, n *syntax.Node) {
		if sym := overridden(u, n); sym != nil {
			emitter.Report(diagnostic.Finding{
				Rule: diagnostic.WeakCertificateValidation,
				Node: n,
				Args: []string{sym.Container.Name + "." + sym.Name},
			})
		}
	})
	return nil, err
}

// overridden returns the validation member the assignment a sets or adds
// a handler to, if any.
func overridden(u *compilation.Unit, a *syntax.Node) *semantic.Symbol {
	h := u.Helper
	switch h.AssignmentOperator(a) {
	case syntax.SimpleAssign, syntax.AddAssign:
	default:
		return nil
	}
	target := h.AssignmentTarget(a)
	if target == nil || h.Classify(target) != syntax.MemberAccess && !initializes(h, a) {
		return nil
	}
	sym := u.Model.ResolveSymbol(target)
	for _, o := range overrides {
		if semantic.MatchMember(sym, o.typ, o.name) {
			return sym
		}
	}
	return nil
}

// initializes reports whether a sets a member in an object initializer.
func initializes(h syntax.Helper, a *syntax.Node) bool {
	for p, i := a.Parent, 0; p != nil && i < 2; p, i = p.Parent, i+1 {
		if h.IsObjectCreation(p) {
			for _, init := range h.ObjectCreationInitializers(p) {
				if init == a {
					return true
				}
			}
			return false
		}
	}
	return false
}
