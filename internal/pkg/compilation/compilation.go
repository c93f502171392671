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

// Package compilation parses the C# and Visual Basic sources of a pass
// and binds them into one semantic model per language.
package compilation

import (
	"context"
	"fmt"
	"go/token"
	"os"
	"reflect"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/frontend/csharp"
	"github.com/google/netlevee/internal/pkg/frontend/vbnet"
	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Unit is one parsed source file.
type Unit struct {
	Tree   *syntax.Tree
	Helper syntax.Helper
	Model  *semantic.Model
}

// File is a source file to compile.
type File struct {
	Name string
	Src  []byte
}

// Result is the outcome of compiling the sources of a pass.
type Result struct {
	ctx    context.Context
	Units  []*Unit
	Config *config.Config
	// Errors holds the files that could not be parsed. They do not
	// prevent the remaining files from being analyzed.
	Errors []error
}

var Analyzer = &analysis.Analyzer{
	Name:       "compilation",
	Doc:        "parses the C# and Visual Basic files of a package and binds their symbols",
	Flags:      config.FlagSet,
	Run:        run,
	ResultType: reflect.TypeOf(new(Result)),
}

func run(pass *analysis.Pass) (interface{}, error) {
	conf, err := config.ReadConfig()
	if err != nil {
		return nil, err
	}
	readFile := pass.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	var files []File
	for _, name := range pass.OtherFiles {
		if _, ok := syntax.LanguageOf(name); !ok || conf.IsExcluded(name) {
			continue
		}
		src, err := readFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		files = append(files, File{Name: name, Src: src})
	}
	return Build(context.Background(), pass.Fset, conf, files)
}

// Build parses files and binds each language's trees together.
// Files in a language other than C# or Visual Basic are ignored.
func Build(ctx context.Context, fset *token.FileSet, conf *config.Config, files []File) (*Result, error) {
	u, err := semantic.UniverseWith(conf.References...)
	if err != nil {
		return nil, fmt.Errorf("loading references: %w", err)
	}
	r := &Result{ctx: ctx, Config: conf}
	byLang := map[syntax.Language][]*syntax.Tree{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lang, ok := syntax.LanguageOf(f.Name)
		if !ok {
			continue
		}
		t, err := Parse(ctx, fset, lang, f.Name, f.Src)
		if err != nil {
			r.Errors = append(r.Errors, err)
			continue
		}
		byLang[lang] = append(byLang[lang], t)
	}
	for _, lang := range []syntax.Language{syntax.CSharp, syntax.VisualBasic} {
		trees := byLang[lang]
		if len(trees) == 0 {
			continue
		}
		h := HelperFor(lang)
		m := semantic.NewModel(u, h, trees...)
		for _, t := range trees {
			r.Units = append(r.Units, &Unit{Tree: t, Helper: h, Model: m})
		}
	}
	return r, nil
}

// Parse parses src with the front end of lang.
func Parse(ctx context.Context, fset *token.FileSet, lang syntax.Language, name string, src []byte) (*syntax.Tree, error) {
	switch lang {
	case syntax.CSharp:
		return csharp.Parse(ctx, fset, name, src)
	case syntax.VisualBasic:
		return vbnet.Parse(ctx, fset, name, src)
	}
	return nil, fmt.Errorf("%s: unsupported language", name)
}

// HelperFor returns the syntax helper of lang.
func HelperFor(lang syntax.Language) syntax.Helper {
	if lang == syntax.VisualBasic {
		return vbnet.Helper
	}
	return csharp.Helper
}

// Context returns the context the compilation was built under.
func (r *Result) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Err reports whether the analysis has been cancelled.
func (r *Result) Err() error {
	if r.ctx == nil {
		return nil
	}
	return r.ctx.Err()
}

// checkEvery is the number of nodes visited between cancellation checks.
const checkEvery = 256

// Preorder calls fn for every node, of every unit, whose class is one of
// classes, in depth-first order. It stops early and returns the
// context's error if the analysis is cancelled.
func (r *Result) Preorder(classes []syntax.Class, fn func(u *Unit, n *syntax.Node)) error {
	var want [syntax.Lambda + 1]bool
	for _, c := range classes {
		want[c] = true
	}
	visited := 0
	for _, u := range r.Units {
		if err := r.Err(); err != nil {
			return err
		}
		var err error
		syntax.Inspect(u.Tree.Root, func(n *syntax.Node) bool {
			if err != nil {
				return false
			}
			if visited++; visited%checkEvery == 0 {
				if err = r.Err(); err != nil {
					return false
				}
			}
			if want[u.Helper.Classify(n)] {
				fn(u, n)
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Routines calls fn for every routine with a body, in every unit.
func (r *Result) Routines(fn func(u *Unit, routine *syntax.Node)) error {
	return r.Preorder([]syntax.Class{syntax.Routine}, func(u *Unit, n *syntax.Node) {
		if d := u.Helper.Routine(n); d.Body != nil || d.Expr != nil {
			fn(u, n)
		}
	})
}

// Unit returns the unit a node belongs to.
func (r *Result) Unit(n *syntax.Node) *Unit {
	t := n.Tree()
	for _, u := range r.Units {
		if u.Tree == t {
			return u
		}
	}
	return nil
}
