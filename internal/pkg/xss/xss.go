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

// Package xss reports request data that reaches an HTTP response without
// being encoded.
//
// The parameters of controller actions, and of public methods when
// entry points are enabled, are tainted on entry. A finding is reported
// when a tainted value is passed to a method that writes the response
// body, or is returned by an action whose return type is string.
package xss

import (
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/diagnostic"
	"github.com/google/netlevee/internal/pkg/propagation"
	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/source"
	"github.com/google/netlevee/internal/pkg/suppression"
	"github.com/google/netlevee/internal/pkg/syntax"
)

var Analyzer = &analysis.Analyzer{
	Name:     "xss",
	Doc:      "reports request data written to an HTTP response without encoding (" + diagnostic.XSS.ID + ")",
	Flags:    config.FlagSet,
	Run:      run,
	Requires: []*analysis.Analyzer{compilation.Analyzer, suppression.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	suppressed := pass.ResultOf[suppression.Analyzer].(suppression.ResultType)
	conf := comp.Config
	emitter := diagnostic.NewEmitter(pass, conf, suppressed)
	if !emitter.Enabled(diagnostic.XSS) {
		return nil, nil
	}

	engines := map[*semantic.Model]*propagation.Engine{}
	var runErr error
	err := comp.Routines(func(u *compilation.Unit, routine *syntax.Node) {
		if runErr != nil {
			return
		}
		s := source.Identify(u.Model, conf, routine)
		if s == nil {
			return
		}
		e, ok := engines[u.Model]
		if !ok {
			e = &propagation.Engine{
				Model:       u.Model,
				IsSanitizer: func(sym *semantic.Symbol) bool { return IsSanitizer(conf, sym) },
			}
			engines[u.Model] = e
		}
		c := &checker{conf: conf, engine: e, emitter: emitter, source: s}
		runErr = c.check(comp)
	})
	if err != nil {
		return nil, err
	}
	return nil, runErr
}

type checker struct {
	conf    *config.Config
	engine  *propagation.Engine
	emitter *diagnostic.Emitter
	source  *source.Source
}

func (c *checker) check(comp *compilation.Result) error {
	st := propagation.NewState()
	for _, p := range c.source.Params {
		c.engine.Seed(st, p)
	}
	d := c.source.Decl
	if d.Body == nil {
		// Expression-bodied routine.
		c.sinks(st, d.Expr)
		c.returned(st, d.Expr)
		return nil
	}
	h := c.engine.Model.Helper()
	return c.engine.Run(comp.Context(), st, d.Body, func(stmt *syntax.Node) {
		for _, x := range h.Expressions(stmt) {
			c.sinks(st, x)
		}
		if h.IsReturn(stmt) {
			c.returned(st, h.ReturnValue(stmt))
		}
	})
}

// sinks reports the calls to response writers under root whose arguments
// are tainted.
func (c *checker) sinks(st *propagation.State, root *syntax.Node) {
	if root == nil {
		return
	}
	h := c.engine.Model.Helper()
	syntax.Inspect(root, func(n *syntax.Node) bool {
		switch h.Classify(n) {
		case syntax.Lambda:
			return false
		case syntax.Invocation:
			if !IsSink(c.conf, c.engine.Model.ResolveSymbol(n)) {
				return true
			}
			for _, arg := range h.InvocationArguments(n) {
				if f := c.engine.Evaluate(st, arg); f.Tainted {
					c.emitter.Report(diagnostic.Finding{Rule: diagnostic.XSS, Node: n, Related: f.Origin})
					break
				}
			}
		}
		return true
	})
}

// returned reports a tainted value returned by an action producing text.
func (c *checker) returned(st *propagation.State, v *syntax.Node) {
	if v == nil || c.source.Kind != source.Action || !c.source.ReturnsText() {
		return
	}
	if f := c.engine.Evaluate(st, v); f.Tainted {
		c.emitter.Report(diagnostic.Finding{Rule: diagnostic.XSS, Node: v, Related: f.Origin})
	}
}
