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

// Package funcdefs identifies routine definitions that receive request data,
// or that define sinks or sanitizers.
package funcdefs

import (
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/source"
	"github.com/google/netlevee/internal/pkg/syntax"
	"github.com/google/netlevee/internal/pkg/xss"
)

var Analyzer = &analysis.Analyzer{
	Name:     "funcdefs",
	Doc:      `The funcdefs analyzer identifies actions, entry points, sinks and sanitizers among the routines of a compilation.`,
	Flags:    config.FlagSet,
	Run:      run,
	Requires: []*analysis.Analyzer{compilation.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	conf := comp.Config

	err := comp.Routines(func(u *compilation.Unit, r *syntax.Node) {
		name := u.Helper.Routine(r).Name
		if name == nil {
			return
		}
		sym := u.Model.DeclaredSymbol(r)
		switch {
		case xss.IsSink(conf, sym):
			pass.Reportf(name.Pos(), "%s is a sink", name.Text())
		case xss.IsSanitizer(conf, sym):
			pass.Reportf(name.Pos(), "%s is a sanitizer", name.Text())
		}
		if s := source.Identify(u.Model, conf, r); s != nil {
			pass.Reportf(name.Pos(), "%s is an %s", name.Text(), s.Kind)
		}
	})
	return nil, err
}
