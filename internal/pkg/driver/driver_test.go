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

package driver

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// unitsAnalyzer reports once per file, naming the other files of its
// compilation.
var unitsAnalyzer = &analysis.Analyzer{
	Name:     "units",
	Doc:      "reports every compiled file",
	Requires: []*analysis.Analyzer{compilation.Analyzer},
	Run: func(pass *analysis.Pass) (interface{}, error) {
		comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
		var names []string
		for _, u := range comp.Units {
			names = append(names, filepath.Base(u.Tree.Name))
		}
		sort.Strings(names)
		for _, u := range comp.Units {
			pass.Reportf(u.Tree.Root.Pos(), "%v", names)
		}
		return nil, nil
	},
}

var panicky = &analysis.Analyzer{
	Name: "panicky",
	Doc:  "always panics",
	Run: func(*analysis.Pass) (interface{}, error) {
		panic("boom")
	},
}

var dependent = &analysis.Analyzer{
	Name:     "dependent",
	Doc:      "requires panicky",
	Requires: []*analysis.Analyzer{panicky},
	Run: func(pass *analysis.Pass) (interface{}, error) {
		return nil, errors.New("unreachable")
	},
}

// tree writes files below a new temporary directory and returns it.
func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func messages(res *Result) map[string]string {
	out := map[string]string{}
	for _, d := range res.Diagnostics {
		out[filepath.Base(d.Position.Filename)] = d.Message
	}
	return out
}

func TestRunGroupsFilesByProject(t *testing.T) {
	dir := tree(t, map[string]string{
		"Web/Web.csproj":             "<Project />",
		"Web/Controllers/Home.cs":    "class Home {}",
		"Web/Models/Item.cs":         "class Item {}",
		"Legacy/Legacy.vbproj":       "<Project />",
		"Legacy/Page.vb":             "Class Page\nEnd Class\n",
		"Scripts/Tool.cs":            "class Tool {}",
		"Web/obj/Debug/Generated.cs": "class Generated {}",
		"Web/.vs/Cache.cs":           "class Cache {}",
		"Web/Controllers/README.md":  "# docs",
		"Web/bin/Release/Publish.vb": "Class Publish\nEnd Class\n",
	})

	res, err := Run(context.Background(), []string{dir}, []*analysis.Analyzer{unitsAnalyzer}, Options{Concurrency: 2, Config: &config.Config{}})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)

	var files []string
	for _, f := range res.Files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		files = append(files, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{
		"Legacy/Page.vb",
		"Scripts/Tool.cs",
		"Web/Controllers/Home.cs",
		"Web/Models/Item.cs",
	}, files)

	assert.Equal(t, map[string]string{
		"Home.cs": "[Home.cs Item.cs]",
		"Item.cs": "[Home.cs Item.cs]",
		"Page.vb": "[Page.vb]",
		"Tool.cs": "[Tool.cs]",
	}, messages(res))
}

func TestRunHonoursExclude(t *testing.T) {
	dir := tree(t, map[string]string{
		"App.cs":               "class App {}",
		"Generated/Service.cs": "class Service {}",
	})
	conf, err := config.Parse([]byte("Exclude:\n- \"**/Generated/**\"\n"))
	require.NoError(t, err)

	res, err := Run(context.Background(), []string{dir}, []*analysis.Analyzer{unitsAnalyzer}, Options{Config: conf})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"App.cs": "[App.cs]"}, messages(res))
}

func TestRunSingleFile(t *testing.T) {
	dir := tree(t, map[string]string{
		"A.cs": "class A {}",
		"B.cs": "class B {}",
	})
	res, err := Run(context.Background(), []string{filepath.Join(dir, "A.cs")}, []*analysis.Analyzer{unitsAnalyzer}, Options{Config: &config.Config{}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A.cs": "[A.cs]"}, messages(res))
}

func TestRunMissingPath(t *testing.T) {
	dir := tree(t, map[string]string{"A.cs": "class A {}"})
	res, err := Run(context.Background(), []string{filepath.Join(dir, "missing"), dir}, []*analysis.Analyzer{unitsAnalyzer}, Options{Config: &config.Config{}})
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.Is(res.Errors[0], os.ErrNotExist))
	assert.Len(t, res.Diagnostics, 1)
}

func TestRunCancelled(t *testing.T) {
	dir := tree(t, map[string]string{"A.cs": "class A {}"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []string{dir}, []*analysis.Analyzer{unitsAnalyzer}, Options{Config: &config.Config{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsInvalidAnalyzers(t *testing.T) {
	undocumented := &analysis.Analyzer{Name: "undocumented", Run: unitsAnalyzer.Run}
	_, err := Run(context.Background(), nil, []*analysis.Analyzer{undocumented}, Options{Config: &config.Config{}})
	assert.Error(t, err)
}

func TestAnalyzeRecoversPanics(t *testing.T) {
	files := []compilation.File{{Name: "A.cs", Src: []byte("class A {}")}}
	res, err := Analyze(context.Background(), token.NewFileSet(), files, []*analysis.Analyzer{panicky, dependent, unitsAnalyzer}, Options{Config: &config.Config{}})
	require.NoError(t, err)

	require.Len(t, res.Errors, 1, "only the panicking analyzer should fail: %v", res.Errors)
	assert.Contains(t, res.Errors[0].Error(), "panicky panicked: boom")
	assert.Equal(t, map[string]string{"A.cs": "[A.cs]"}, messages(res))
}

func TestSortDiagnostics(t *testing.T) {
	fset := token.NewFileSet()
	a := fset.AddFile("a.cs", -1, 10)
	b := fset.AddFile("b.cs", -1, 10)
	ds := []Diagnostic{
		{Diagnostic: analysis.Diagnostic{Category: "SCS0029"}, Position: fset.Position(b.Pos(1))},
		{Diagnostic: analysis.Diagnostic{Category: "SCS0029"}, Position: fset.Position(a.Pos(5))},
		{Diagnostic: analysis.Diagnostic{Category: "SCS0028"}, Position: fset.Position(a.Pos(5))},
		{Diagnostic: analysis.Diagnostic{Category: "SCS0004"}, Position: fset.Position(a.Pos(2))},
	}
	sortDiagnostics(ds)
	var got []string
	for _, d := range ds {
		got = append(got, fmt.Sprintf("%s:%d:%s", d.Position.Filename, d.Position.Offset, d.Category))
	}
	assert.Equal(t, []string{"a.cs:2:SCS0004", "a.cs:5:SCS0028", "a.cs:5:SCS0029", "b.cs:1:SCS0029"}, got)
}
