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

package source

import (
	"regexp"
	"testing"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/analysistest"
	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/syntax"
)

type testConfig struct {
	sourcePattern string
	entryPoints   bool
}

func (c *testConfig) IsSourceType(namespace, typeName string) bool {
	if c.sourcePattern == "" {
		return false
	}
	match, _ := regexp.MatchString(c.sourcePattern, typeName)
	return match
}

func (c *testConfig) TaintEntryPoints() bool {
	return c.entryPoints
}

var config = &testConfig{}

var testAnalyzer = &analysis.Analyzer{
	Name:     "source",
	Run:      runTest,
	Doc:      "test harness for the logic related to sources",
	Requires: []*analysis.Analyzer{compilation.Analyzer},
}

func runTest(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	err := comp.Routines(func(u *compilation.Unit, routine *syntax.Node) {
		s := Identify(u.Model, config, routine)
		switch {
		case s == nil:
		case s.ReturnsText():
			pass.Reportf(s.Decl.Name.Pos(), "%s returning text", s)
		default:
			pass.Reportf(s.Decl.Name.Pos(), "%s", s)
		}
	})
	return nil, err
}

func TestSource(t *testing.T) {
	dir := analysistest.TestData()
	testCases := []struct {
		pattern string
		config  testConfig
	}{
		{
			pattern: "aspnetcore",
		},
		{
			pattern: "mvc",
		},
		{
			pattern: "attributes",
		},
		{
			pattern: "notactions",
		},
		{
			pattern: "entrypoints",
			config:  testConfig{entryPoints: true},
		},
		{
			pattern: "configured",
			config:  testConfig{sourcePattern: "^Endpoint$"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.pattern, func(t *testing.T) {
			*config = tt.config
			analysistest.Run(t, dir, testAnalyzer, tt.pattern)
		})
	}
}

func TestReturnsText(t *testing.T) {
	if (&Source{}).ReturnsText() {
		t.Error("a source without a resolved return type returns text")
	}
}
