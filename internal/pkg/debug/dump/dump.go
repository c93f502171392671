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

// Package dump contains functions for writing a syntax tree as text or DOT
// source to a file.
package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/netlevee/internal/pkg/debug/render"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// Formats maps each supported format to its renderer.
var Formats = map[string]func(*syntax.Tree, syntax.Helper) string{
	"text":       render.Text,
	"dot":        render.DOT,
	"statements": render.Statements,
}

var extensions = map[string]string{
	"text":       "tree",
	"dot":        "dot",
	"statements": "stmts",
}

// Render renders t in the named format.
func Render(format string, t *syntax.Tree, h syntax.Helper) (string, error) {
	fn, ok := Formats[format]
	if !ok {
		return "", fmt.Errorf("unknown dump format %q", format)
	}
	return fn(t, h), nil
}

// Save writes t, rendered in the named format, to a file in dir named
// after the tree's source file. It returns the path written.
func Save(dir, format string, t *syntax.Tree, h syntax.Helper) (string, error) {
	s, err := Render(format, t, h)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	base := filepath.Base(t.Name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	out := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, strings.TrimPrefix(filepath.Ext(t.Name), "."), extensions[format]))
	if err := os.WriteFile(out, []byte(s), 0666); err != nil {
		return "", fmt.Errorf("could not write to file %s: %w", out, err)
	}
	return out, nil
}
