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

package render

import (
	"fmt"
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Statements renders, for each routine with a body, the statements the
// taint pass visits, in the order it visits them.
func Statements(t *syntax.Tree, h syntax.Helper) string {
	var b strings.Builder
	syntax.Inspect(t.Root, func(n *syntax.Node) bool {
		if !h.IsRoutine(n) {
			return true
		}
		d := h.Routine(n)
		if d.Body == nil {
			return true
		}
		b.WriteString(fmt.Sprintf("%s:\n", d.Name.Text()))
		for i, stmt := range h.Statements(d.Body) {
			b.WriteString(fmt.Sprintf("\t%d(%s): %s\n", i, stmt.Kind, oneLine(stmt.Text())))
		}
		return true
	})
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
