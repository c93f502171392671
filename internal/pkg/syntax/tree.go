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

package syntax

import (
	"fmt"
	"go/token"
	"strings"
)

// A Comment is a source comment, with its delimiters.
type Comment struct {
	StartByte int
	EndByte   int
	Text      string
}

// A SyntaxError records a region of source the parser could not recognize.
type SyntaxError struct {
	Pos token.Pos
	Msg string
}

func (e SyntaxError) Error() string { return e.Msg }

// Tree is a parsed source file.
type Tree struct {
	Lang     Language
	Name     string
	Src      []byte
	Root     *Node
	File     *token.File
	Comments []Comment
	Errors   []SyntaxError
}

// NewTree registers src under name in fset and returns an empty tree for it.
// The front end fills the tree in and finishes with Adopt.
func NewTree(fset *token.FileSet, name string, lang Language, src []byte) *Tree {
	f := fset.AddFile(name, -1, len(src))
	f.SetLinesForContent(src)
	return &Tree{Lang: lang, Name: name, Src: src, File: f}
}

// Adopt makes root the root of t, linking every node to its parent and to t.
func (t *Tree) Adopt(root *Node) {
	t.Root = root
	var link func(n, parent *Node)
	link = func(n, parent *Node) {
		n.tree = t
		n.Parent = parent
		for _, c := range n.Children {
			link(c, n)
		}
	}
	link(root, nil)
}

// AddComment records a comment spanning [start, end).
func (t *Tree) AddComment(start, end int) {
	t.Comments = append(t.Comments, Comment{StartByte: start, EndByte: end, Text: string(t.Src[start:end])})
}

// Errorf records a syntax error at the given offset.
func (t *Tree) Errorf(offset int, format string, args ...interface{}) {
	var pos token.Pos
	if t.File != nil && offset <= t.File.Size() {
		pos = t.File.Pos(offset)
	}
	t.Errors = append(t.Errors, SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Line returns the 1-based line of the byte offset.
func (t *Tree) Line(offset int) int {
	if t.File == nil {
		return 0
	}
	if offset > t.File.Size() {
		offset = t.File.Size()
	}
	return t.File.Line(t.File.Pos(offset))
}

// LineText returns the text of the 1-based line, without its terminator.
func (t *Tree) LineText(line int) string {
	if t.File == nil || line < 1 || line > t.File.LineCount() {
		return ""
	}
	start := t.File.Offset(t.File.LineStart(line))
	end := len(t.Src)
	if line < t.File.LineCount() {
		end = t.File.Offset(t.File.LineStart(line + 1))
	}
	return strings.TrimRight(string(t.Src[start:end]), "\r\n")
}

// Fold normalizes an identifier for comparison in the tree's language.
func (t *Tree) Fold(name string) string {
	if t != nil && t.Lang.CaseInsensitive() {
		return strings.ToLower(name)
	}
	return name
}
