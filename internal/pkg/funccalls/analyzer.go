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

// Package funccalls contains an analyzer that performs identification of
// sink and sanitizer method calls.
package funccalls

import (
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/syntax"
	"github.com/google/netlevee/internal/pkg/xss"
)

var Analyzer = &analysis.Analyzer{
	Name:     "funccalls",
	Run:      run,
	Flags:    config.FlagSet,
	Doc:      `The funccalls analyzer finds calls to sink and sanitizer methods.`,
	Requires: []*analysis.Analyzer{compilation.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	conf := comp.Config

	err := comp.Preorder([]syntax.Class{syntax.Invocation}, func(u *compilation.Unit, n *syntax.Node) {
		callee := u.Model.ResolveSymbol(n)
		switch {
		case xss.IsSink(conf, callee):
			reportCall(pass, n, callee, "sink")
		case xss.IsSanitizer(conf, callee):
			reportCall(pass, n, callee, "sanitizer")
		}
	})
	return nil, err
}

func reportCall(pass *analysis.Pass, n *syntax.Node, m *semantic.Symbol, kind string) {
	pass.Reportf(n.Pos(), "call to %s method %s", kind, m.FullName())
}
