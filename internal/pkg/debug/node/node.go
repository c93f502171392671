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

// Package node contains utility functions for describing syntax nodes.
package node

import (
	"fmt"
	"strconv"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// CanonicalName produces a canonical string representation for a node:
// its grammar kind, followed by its abstract class when it has one.
func CanonicalName(h syntax.Helper, n *syntax.Node) string {
	if c := h.Classify(n); c != syntax.Other {
		return fmt.Sprintf("%s (%s)", n.Kind, c)
	}
	return n.Kind
}

// LeafText returns the quoted source text of a node without named
// children.
func LeafText(n *syntax.Node) (string, bool) {
	if len(n.NamedChildren()) > 0 {
		return "", false
	}
	return strconv.Quote(n.Text()), true
}
