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

// Package suppression defines an analyzer that identifies source lines
// suppressed by a comment.
package suppression

import (
	"reflect"
	"strings"

	"golang.org/x/tools/go/analysis"

	"github.com/google/netlevee/internal/pkg/compilation"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// ResultType is the set of suppressed lines of each tree.
type ResultType map[*syntax.Tree]map[int]bool

// IsSuppressed reports whether the line a node starts on is suppressed.
func (rt ResultType) IsSuppressed(n *syntax.Node) bool {
	t := n.Tree()
	if t == nil {
		return false
	}
	return rt[t][t.Line(n.StartByte)]
}

var Analyzer = &analysis.Analyzer{
	Name:       "suppression",
	Doc:        "This analyzer identifies source lines that are suppressed by comments.",
	Run:        run,
	Requires:   []*analysis.Analyzer{compilation.Analyzer},
	ResultType: reflect.TypeOf(new(ResultType)).Elem(),
}

func run(pass *analysis.Pass) (interface{}, error) {
	comp := pass.ResultOf[compilation.Analyzer].(*compilation.Result)
	result := ResultType{}
	for _, u := range comp.Units {
		if lines := Lines(u.Tree); len(lines) > 0 {
			result[u.Tree] = lines
		}
	}
	return result, nil
}

// Lines returns the lines of t suppressed by its comments. A suppressing
// comment covers its own line and, when nothing but whitespace precedes
// it, the line that follows.
func Lines(t *syntax.Tree) map[int]bool {
	lines := map[int]bool{}
	for _, c := range t.Comments {
		if !isSuppressingComment(c.Text) {
			continue
		}
		line := t.Line(c.StartByte)
		lines[line] = true
		if strings.TrimSpace(string(lastLine(t.Src[:c.StartByte]))) == "" {
			lines[t.Line(c.EndByte)+1] = true
		}
	}
	return lines
}

func lastLine(b []byte) []byte {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == '\n' {
			return b[i+1:]
		}
	}
	return b
}

func isSuppressingComment(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, prefix := range []string{"//", "/*", "'", "*"} {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
		if len(trimmed) >= 3 && strings.EqualFold(trimmed[:3], "rem") {
			trimmed = strings.TrimSpace(trimmed[3:])
		}
		if strings.HasPrefix(trimmed, doNotReport) {
			return true
		}
	}
	return false
}

const doNotReport = "netlevee.DoNotReport"
