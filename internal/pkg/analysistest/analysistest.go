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

// Package analysistest runs an analyzer over C# and Visual Basic test
// files and checks its diagnostics against expectations written in the
// files themselves.
//
// An expectation is a comment of the form
//
//	// want "regexp" "regexp"...
//	' want "regexp"
//
// Each regular expression must match the message of exactly one diagnostic
// reported on the comment's line.
package analysistest

import (
	"context"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/scanner"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/driver"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Testing is the subset of testing.TB the harness needs.
type Testing interface {
	Errorf(format string, args ...interface{})
}

// TestData returns the absolute path of the testdata directory of the
// package under test.
func TestData() string {
	dir, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	return dir
}

// Run analyzes each directory dir/src/<pattern> as one compilation and
// checks the expectations of its files. A pattern ending in "/..." also
// includes the subdirectories.
func Run(t Testing, dir string, a *analysis.Analyzer, patterns ...string) []*driver.Result {
	var results []*driver.Result
	for _, pattern := range patterns {
		files, err := load(filepath.Join(dir, "src"), pattern)
		if err != nil {
			t.Errorf("loading %s: %v", pattern, err)
			continue
		}
		if len(files) == 0 {
			t.Errorf("%s: no C# or Visual Basic files", pattern)
			continue
		}
		fset := token.NewFileSet()
		res, err := driver.Analyze(context.Background(), fset, files, []*analysis.Analyzer{a}, driver.Options{})
		if err != nil {
			t.Errorf("analyzing %s: %v", pattern, err)
			continue
		}
		for _, err := range res.Errors {
			t.Errorf("%s: %v", pattern, err)
		}
		check(t, files, res)
		results = append(results, res)
	}
	return results
}

func load(src, pattern string) ([]compilation.File, error) {
	recursive := false
	if strings.HasSuffix(pattern, "/...") || pattern == "..." {
		recursive = true
		pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
	}
	root := filepath.Join(src, filepath.FromSlash(pattern))
	var files []compilation.File
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := syntax.LanguageOf(p); !ok {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		files = append(files, compilation.File{Name: p, Src: data})
		return nil
	})
	return files, err
}

type key struct {
	file string
	line int
}

type expectation struct {
	re      *regexp.Regexp
	matched bool
}

var wantComment = regexp.MustCompile(`(?://|')\s*want\s+(.*)$`)

func check(t Testing, files []compilation.File, res *driver.Result) {
	want := map[key][]*expectation{}
	for _, f := range files {
		for i, line := range strings.Split(string(f.Src), "\n") {
			m := wantComment.FindStringSubmatch(strings.TrimRight(line, "\r"))
			if m == nil {
				continue
			}
			patterns, err := expectations(m[1])
			if err != nil {
				t.Errorf("%s:%d: %v", f.Name, i+1, err)
				continue
			}
			k := key{f.Name, i + 1}
			for _, p := range patterns {
				re, err := regexp.Compile(p)
				if err != nil {
					t.Errorf("%s:%d: %v", f.Name, i+1, err)
					continue
				}
				want[k] = append(want[k], &expectation{re: re})
			}
		}
	}

	for _, d := range res.Diagnostics {
		k := key{d.Position.Filename, d.Position.Line}
		found := false
		for _, e := range want[k] {
			if !e.matched && e.re.MatchString(d.Message) {
				e.matched = true
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%v: unexpected diagnostic: %s", d.Position, d.Message)
		}
	}

	var missing []string
	for k, es := range want {
		for _, e := range es {
			if !e.matched {
				missing = append(missing, fmt.Sprintf("%s:%d: no diagnostic was reported matching %#q", k.file, k.line, e.re))
			}
		}
	}
	sort.Strings(missing)
	for _, m := range missing {
		t.Errorf("%s", m)
	}
}

// expectations parses a sequence of Go string literals.
func expectations(text string) ([]string, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(text))
	s.Mode = scanner.ScanStrings | scanner.ScanRawStrings
	s.Error = func(*scanner.Scanner, string) {}
	var out []string
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		switch tok {
		case scanner.String, scanner.RawString:
			p, err := strconv.Unquote(s.TokenText())
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		default:
			return nil, fmt.Errorf("unexpected %q in expectation", s.TokenText())
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty expectation")
	}
	return out, nil
}
