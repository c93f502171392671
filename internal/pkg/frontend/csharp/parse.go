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

// Package csharp parses C# source with tree-sitter and answers syntax
// queries over the resulting trees.
package csharp

import (
	"context"
	"fmt"
	"go/token"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Parse parses src and registers it in fset under filename.
// Regions tree-sitter could not recognize are kept as ERROR nodes and
// recorded in the tree's Errors; they are not fatal.
func Parse(ctx context.Context, fset *token.FileSet, filename string, src []byte) (*syntax.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())

	tsTree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	defer tsTree.Close()

	t := syntax.NewTree(fset, filename, syntax.CSharp, src)
	t.Adopt(convert(t, tsTree.RootNode()))
	return t, nil
}

// convert copies a tree-sitter subtree. Comments are extras in the
// grammar and may appear between any two tokens; they are moved out of
// the tree into t.Comments so that operand positions stay predictable.
func convert(t *syntax.Tree, n *sitter.Node) *syntax.Node {
	out := syntax.NewNode(n.Type(), n.IsNamed(), int(n.StartByte()), int(n.EndByte()))
	switch {
	case n.IsMissing():
		t.Errorf(out.StartByte, "missing %s", n.Type())
	case n.IsError():
		t.Errorf(out.StartByte, "unexpected %q", shorten(n.Content(t.Src)))
	}

	cursor := sitter.NewTreeCursor(n)
	defer cursor.Close()
	if !cursor.GoToFirstChild() {
		return out
	}
	for {
		c := cursor.CurrentNode()
		if c.Type() == "comment" {
			t.AddComment(int(c.StartByte()), int(c.EndByte()))
		} else {
			out.Append(cursor.CurrentFieldName(), convert(t, c))
		}
		if !cursor.GoToNextSibling() {
			break
		}
	}
	return out
}

func shorten(s string) string {
	const limit = 40
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
