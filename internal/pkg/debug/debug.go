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

// Package debug provides an analyzer that writes the syntax trees of a
// compilation to disk, for inspection while developing the rules.
package debug

import (
	"flag"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/debug/dump"
)

var (
	flags  flag.FlagSet
	outDir = flags.String("out", "out", "directory the trees are written to")
	format = flags.String("format", "text", "format of the trees: text, dot or statements")
)

var Analyzer = &analysis.Analyzer{
	Name:     "debug",
	Doc:      "writes the syntax tree of every analyzed file to a directory",
	Flags:    flags,
	Run:      run,
	Requires: []*analysis.Analyzer{compilation.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	for _, u := range comp.Units {
		if _, err := dump.Save(*outDir, *format, u.Tree, u.Helper); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
