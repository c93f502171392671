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

// Package driver runs the analyzer suite over C# and Visual Basic sources
// outside of the Go build system.
//
// Files are grouped into compilations by project: a file belongs to the
// nearest enclosing directory holding a .csproj or .vbproj file, or to the
// scanned root when there is none. Each compilation is analyzed
// independently, and compilations are analyzed concurrently.
package driver

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
	"github.com/google/netlevee/internal/pkg/observability"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Options controls a run.
type Options struct {
	// Concurrency bounds the number of compilations analyzed at once.
	// Zero means GOMAXPROCS.
	Concurrency int
	Logger      *zap.Logger
	// Config is the analysis configuration. When nil, the configuration
	// named by the -config flag is used.
	Config *config.Config
}

// A Diagnostic is a finding together with the analyzer that produced it.
type Diagnostic struct {
	analysis.Diagnostic
	Analyzer *analysis.Analyzer
	Position token.Position
}

// Result is the outcome of a run.
type Result struct {
	Fset        *token.FileSet
	Diagnostics []Diagnostic
	// Files lists the analyzed files.
	Files []string
	// Errors holds the failures that were confined to a file or to a
	// compilation. They did not stop the rest of the run.
	Errors []error
}

// Run analyzes the C# and Visual Basic files found under paths.
// It fails as a whole only on an invalid analyzer graph, an unreadable
// configuration or cancellation.
func Run(ctx context.Context, paths []string, analyzers []*analysis.Analyzer, opts Options) (*Result, error) {
	if err := analysis.Validate(analyzers); err != nil {
		return nil, err
	}
	conf := opts.Config
	if conf == nil {
		var err error
		if conf, err = config.ReadConfig(); err != nil {
			return nil, err
		}
	}
	logger := observability.Nop(opts.Logger)

	projects, errs := discover(paths, conf)
	for _, err := range errs {
		logger.Warn("skipping path", zap.Error(err))
	}
	res := &Result{Fset: token.NewFileSet(), Errors: errs}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var mu sync.Mutex
	for _, p := range projects {
		p := p
		g.Go(func() error {
			files, errs := read(p.files, logger)
			r, err := Analyze(gctx, res.Fset, files, analyzers, Options{Config: conf, Logger: logger.With(zap.String("project", p.root))})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			res.Diagnostics = append(res.Diagnostics, r.Diagnostics...)
			res.Files = append(res.Files, r.Files...)
			res.Errors = append(res.Errors, errs...)
			res.Errors = append(res.Errors, r.Errors...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(res.Files)
	sortDiagnostics(res.Diagnostics)
	logger.Info("analysis complete",
		zap.Int("files", len(res.Files)),
		zap.Int("projects", len(projects)),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Int("errors", len(res.Errors)))
	return res, nil
}

// Analyze runs analyzers over one compilation made of files.
// Analyzer failures, including panics, are returned in Result.Errors;
// the analyzers that do not depend on a failed one still run.
func Analyze(ctx context.Context, fset *token.FileSet, files []compilation.File, analyzers []*analysis.Analyzer, opts Options) (*Result, error) {
	conf := opts.Config
	if conf == nil {
		var err error
		if conf, err = config.ReadConfig(); err != nil {
			return nil, err
		}
	}
	logger := observability.Nop(opts.Logger)

	start := time.Now()
	comp, err := compilation.Build(ctx, fset, conf, files)
	if err != nil {
		return nil, err
	}
	res := &Result{Fset: fset, Errors: comp.Errors}
	for _, err := range comp.Errors {
		logger.Warn("parse failed", zap.Error(err))
	}
	for _, u := range comp.Units {
		res.Files = append(res.Files, u.Tree.Name)
		for _, e := range u.Tree.Errors {
			logger.Warn("syntax error", zap.String("file", u.Tree.Name), zap.String("position", fset.Position(e.Pos).String()), zap.String("error", e.Msg))
		}
		logger.Debug("parsed", zap.String("file", u.Tree.Name), zap.Stringer("language", u.Tree.Lang))
	}

	c := &checker{
		ctx:     ctx,
		fset:    fset,
		files:   res.Files,
		results: map[*analysis.Analyzer]*outcome{compilation.Analyzer: {result: comp}},
	}
	for _, a := range analyzers {
		c.run(a)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range analyzers {
		o := c.results[a]
		if o.err != nil && !errors.Is(o.err, errDependency) {
			logger.Warn("analyzer failed", zap.String("analyzer", a.Name), zap.Error(o.err))
			res.Errors = append(res.Errors, o.err)
		}
	}
	res.Diagnostics = c.diagnostics
	sortDiagnostics(res.Diagnostics)
	logger.Debug("analyzed", zap.Int("files", len(res.Files)), zap.Duration("duration", time.Since(start)))
	return res, nil
}

var errDependency = errors.New("a required analyzer failed")

type outcome struct {
	result interface{}
	err    error
}

// checker runs an analyzer graph over a single compilation.
type checker struct {
	ctx         context.Context
	fset        *token.FileSet
	files       []string
	results     map[*analysis.Analyzer]*outcome
	diagnostics []Diagnostic
}

func (c *checker) run(a *analysis.Analyzer) *outcome {
	if o, ok := c.results[a]; ok {
		return o
	}
	o := &outcome{}
	c.results[a] = o

	resultOf := map[*analysis.Analyzer]interface{}{}
	for _, req := range a.Requires {
		ro := c.run(req)
		if ro.err != nil {
			o.err = fmt.Errorf("%s: %w", a.Name, errDependency)
			if !errors.Is(ro.err, errDependency) {
				o.err = fmt.Errorf("%s: requires %s: %w", a.Name, req.Name, errDependency)
			}
			return o
		}
		resultOf[req] = ro.result
	}
	if err := c.ctx.Err(); err != nil {
		o.err = err
		return o
	}

	pass := &analysis.Pass{
		Analyzer:   a,
		Fset:       c.fset,
		OtherFiles: c.files,
		ResultOf:   resultOf,
		ReadFile:   os.ReadFile,
		Report: func(d analysis.Diagnostic) {
			c.diagnostics = append(c.diagnostics, Diagnostic{
				Diagnostic: d,
				Analyzer:   a,
				Position:   c.fset.Position(d.Pos),
			})
		},
	}
	o.result, o.err = safeRun(a, pass)
	return o
}

func safeRun(a *analysis.Analyzer, pass *analysis.Pass) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer %s panicked: %v", a.Name, r)
		}
	}()
	result, err = a.Run(pass)
	if err != nil {
		err = fmt.Errorf("analyzer %s: %w", a.Name, err)
	}
	return result, err
}

func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		pi, pj := ds[i].Position, ds[j].Position
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Offset != pj.Offset {
			return pi.Offset < pj.Offset
		}
		return ds[i].Category < ds[j].Category
	})
}

// project is a set of files analyzed as one compilation.
type project struct {
	root  string
	files []string
}

// skippedDirs are build output and tool directories.
var skippedDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	"node_modules": true,
}

// discover finds the source files under paths and groups them by project.
func discover(paths []string, conf *config.Config) ([]*project, []error) {
	var errs []error
	byRoot := map[string]*project{}
	seen := map[string]bool{}
	finder := &projectFinder{known: map[string]bool{}}

	add := func(file, scanRoot string) {
		if seen[file] {
			return
		}
		seen[file] = true
		root := finder.root(filepath.Dir(file), scanRoot)
		p, ok := byRoot[root]
		if !ok {
			p = &project{root: root}
			byRoot[root] = p
		}
		p.files = append(p.files, file)
	}

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.IsDir() {
			if isSource(abs) && !conf.IsExcluded(filepath.ToSlash(abs)) {
				add(abs, filepath.Dir(abs))
			}
			continue
		}
		err = filepath.WalkDir(abs, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if p != abs && (skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if isSource(p) && !conf.IsExcluded(filepath.ToSlash(p)) {
				add(p, abs)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	projects := make([]*project, 0, len(byRoot))
	for _, p := range byRoot {
		sort.Strings(p.files)
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].root < projects[j].root })
	return projects, errs
}

func isSource(path string) bool {
	_, ok := syntax.LanguageOf(path)
	return ok
}

type projectFinder struct {
	known map[string]bool
}

// root returns the nearest directory from dir up to stop that holds a
// project file, or stop.
func (f *projectFinder) root(dir, stop string) string {
	for d := dir; ; d = filepath.Dir(d) {
		if f.isProject(d) {
			return d
		}
		if d == stop || !strings.HasPrefix(d, stop) || filepath.Dir(d) == d {
			return stop
		}
	}
}

func (f *projectFinder) isProject(dir string) bool {
	if is, ok := f.known[dir]; ok {
		return is
	}
	is := false
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".csproj", ".vbproj":
				is = !e.IsDir()
			}
			if is {
				break
			}
		}
	}
	f.known[dir] = is
	return is
}

// read loads files, logging and collecting those that cannot be read.
func read(paths []string, logger *zap.Logger) ([]compilation.File, []error) {
	var files []compilation.File
	var errs []error
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("unreadable file", zap.String("file", p), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		files = append(files, compilation.File{Name: p, Src: src})
	}
	return files, errs
}
