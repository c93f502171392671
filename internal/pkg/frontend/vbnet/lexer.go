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

package vbnet

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/netlevee/internal/pkg/syntax"
)

type tokKind int

const (
	tEOF tokKind = iota
	tNewline
	tIdent
	tString
	tChar
	tNumber
	tDate
	tInterpolated
	tPunct
)

type tok struct {
	kind    tokKind
	start   int
	end     int
	text    string
	escaped bool
}

// is reports whether the token is the given keyword or punctuator.
// Keywords match without regard to case; escaped identifiers never match.
func (t tok) is(word string) bool {
	switch t.kind {
	case tIdent:
		return !t.escaped && strings.EqualFold(t.text, word)
	case tPunct, tNewline:
		return t.text == word
	}
	return false
}

// name returns the identifier spelled by the token, without brackets.
func (t tok) name() string {
	if t.escaped {
		return strings.TrimSuffix(strings.TrimPrefix(t.text, "["), "]")
	}
	return t.text
}

type lexer struct {
	t    *syntax.Tree
	src  []byte
	off  int
	toks []tok
}

// lex splits the tree's source into tokens. Comments are recorded on the
// tree. Explicit line continuations are consumed here; implicit ones are
// the parser's business.
func lex(t *syntax.Tree) []tok {
	return lexRange(t, 0, len(t.Src))
}

// lexRange tokenizes t.Src[start:end], keeping offsets relative to the
// whole source.
func lexRange(t *syntax.Tree, start, end int) []tok {
	l := &lexer{t: t, src: t.Src[:end], off: start}
	for l.off < len(l.src) {
		l.next()
	}
	l.emit(tEOF, len(l.src), len(l.src))
	return l.toks
}

func (l *lexer) emit(kind tokKind, start, end int) {
	t := tok{kind: kind, start: start, end: end, text: string(l.src[start:end])}
	if kind == tIdent && strings.HasPrefix(t.text, "[") {
		t.escaped = true
	}
	l.toks = append(l.toks, t)
}

func (l *lexer) peekByte(i int) byte {
	if l.off+i < len(l.src) {
		return l.src[l.off+i]
	}
	return 0
}

func (l *lexer) next() {
	start := l.off
	r, size := utf8.DecodeRune(l.src[l.off:])
	switch {
	case r == '\r' || r == '\n':
		l.off += size
		if r == '\r' && l.peekByte(0) == '\n' {
			l.off++
		}
		l.emit(tNewline, start, l.off)
	case r == ' ' || r == '\t' || r == '\u00a0' || r == '\ufeff':
		l.off += size
	case r == '\'' || r == '\u2018' || r == '\u2019':
		l.comment()
	case r == '_' && l.isContinuation():
		l.continuation()
	case r == '[':
		l.escapedIdent()
	case r == '_' || unicode.IsLetter(r):
		l.ident()
	case r == '"' || r == '\u201c' || r == '\u201d':
		l.str()
	case r == '$' && l.peekByte(1) == '"':
		l.interpolated()
	case r == '#' && l.atLineStart():
		l.directive()
	case r == '#' && l.isDate():
		l.date()
	case r >= '0' && r <= '9', r == '.' && isDigit(l.peekByte(1)):
		l.number()
	case r == '&' && isRadix(l.peekByte(1)) && isDigitIn(l.peekByte(1), l.peekByte(2)):
		l.number()
	case r == ':' && l.peekByte(1) != '=':
		l.off++
		l.emit(tNewline, start, l.off)
	default:
		l.punct()
	}
}

func (l *lexer) comment() {
	start := l.off
	for l.off < len(l.src) && l.src[l.off] != '\n' && l.src[l.off] != '\r' {
		l.off++
	}
	l.t.AddComment(start, l.off)
}

// isContinuation reports whether the underscore at the current offset is
// a line continuation: preceded by white space and followed only by white
// space or a comment up to the end of the line.
func (l *lexer) isContinuation() bool {
	if l.off > 0 && !isSpace(l.src[l.off-1]) {
		return false
	}
	for i := l.off + 1; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case c == ' ' || c == '\t':
		case c == '\r' || c == '\n' || c == '\'':
			return true
		default:
			return false
		}
	}
	return true
}

func (l *lexer) continuation() {
	l.off++
	for l.off < len(l.src) && (l.src[l.off] == ' ' || l.src[l.off] == '\t') {
		l.off++
	}
	if l.off < len(l.src) && l.src[l.off] == '\'' {
		l.comment()
	}
	if l.off < len(l.src) && l.src[l.off] == '\r' {
		l.off++
	}
	if l.off < len(l.src) && l.src[l.off] == '\n' {
		l.off++
	}
}

func (l *lexer) escapedIdent() {
	start := l.off
	end := strings.IndexByte(string(l.src[l.off:]), ']')
	nl := strings.IndexAny(string(l.src[l.off:]), "\r\n")
	if end < 0 || (nl >= 0 && nl < end) {
		l.off++
		l.t.Errorf(start, "unterminated escaped identifier")
		l.emit(tPunct, start, l.off)
		return
	}
	l.off += end + 1
	l.emit(tIdent, start, l.off)
}

func (l *lexer) ident() {
	start := l.off
	for l.off < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.off:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.off += size
	}
	if strings.EqualFold(string(l.src[start:l.off]), "rem") && (l.off == len(l.src) || isSpace(l.src[l.off]) || l.src[l.off] == '\r' || l.src[l.off] == '\n') {
		l.off = start
		l.comment()
		return
	}
	// Type characters are part of the name.
	if l.off < len(l.src) && strings.IndexByte("$%!#@", l.src[l.off]) >= 0 && !isIdentByte(l.peekByte(1)) {
		l.off++
	}
	l.emit(tIdent, start, l.off)
}

func (l *lexer) str() {
	start := l.off
	_, size := utf8.DecodeRune(l.src[l.off:])
	l.off += size
	for l.off < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.off:])
		if r == '\r' || r == '\n' {
			break
		}
		l.off += size
		if r == '"' || r == '\u201c' || r == '\u201d' {
			if l.peekByte(0) == '"' {
				l.off++
				continue
			}
			if c := l.peekByte(0); (c == 'c' || c == 'C') && !isIdentByte(l.peekByte(1)) {
				l.off++
				l.emit(tChar, start, l.off)
				return
			}
			l.emit(tString, start, l.off)
			return
		}
	}
	l.t.Errorf(start, "unterminated string literal")
	l.emit(tString, start, l.off)
}

func (l *lexer) interpolated() {
	start := l.off
	l.off += 2
	depth := 0
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == '\r' || c == '\n':
			l.t.Errorf(start, "unterminated interpolated string")
			l.emit(tInterpolated, start, l.off)
			return
		case depth == 0 && c == '"':
			l.off++
			if l.peekByte(0) == '"' {
				l.off++
				continue
			}
			l.emit(tInterpolated, start, l.off)
			return
		case depth == 0 && c == '{' && l.peekByte(1) == '{':
			l.off += 2
			continue
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case depth > 0 && c == '"':
			// string literal inside a hole
			l.off++
			for l.off < len(l.src) && l.src[l.off] != '"' && l.src[l.off] != '\n' {
				l.off++
			}
		}
		l.off++
	}
	l.t.Errorf(start, "unterminated interpolated string")
	l.emit(tInterpolated, start, l.off)
}

func (l *lexer) atLineStart() bool {
	for i := l.off - 1; i >= 0; i-- {
		switch l.src[i] {
		case ' ', '\t':
		case '\n', '\r':
			return true
		default:
			return false
		}
	}
	return true
}

// directive skips a preprocessing line such as #Region or #If.
func (l *lexer) directive() {
	for l.off < len(l.src) && l.src[l.off] != '\n' && l.src[l.off] != '\r' {
		l.off++
	}
}

func (l *lexer) isDate() bool {
	for i := l.off + 1; i < len(l.src); i++ {
		switch c := l.src[i]; {
		case c == '#':
			return i > l.off+1
		case c == '\r' || c == '\n':
			return false
		case isDigit(c) || c == '/' || c == '-' || c == ':' || c == ' ' || c == 'A' || c == 'M' || c == 'P' || c == 'a' || c == 'm' || c == 'p':
		default:
			return false
		}
	}
	return false
}

func (l *lexer) date() {
	start := l.off
	l.off++
	for l.src[l.off] != '#' {
		l.off++
	}
	l.off++
	l.emit(tDate, start, l.off)
}

func (l *lexer) number() {
	start := l.off
	if l.src[l.off] == '&' {
		l.off += 2
		for l.off < len(l.src) && (isHexByte(l.src[l.off]) || l.src[l.off] == '_') {
			l.off++
		}
	} else {
		for l.off < len(l.src) && (isDigit(l.src[l.off]) || l.src[l.off] == '_') {
			l.off++
		}
		if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
			l.off++
			for l.off < len(l.src) && isDigit(l.src[l.off]) {
				l.off++
			}
		}
		if c := l.peekByte(0); (c == 'e' || c == 'E') && (isDigit(l.peekByte(1)) || (l.peekByte(1) == '+' || l.peekByte(1) == '-') && isDigit(l.peekByte(2))) {
			l.off += 2
			for l.off < len(l.src) && isDigit(l.src[l.off]) {
				l.off++
			}
		}
	}
	// type suffix: S, I, L, D, F, R, US, UI, UL, @, !, #, %, &
	for n := 0; n < 2 && l.off < len(l.src) && strings.IndexByte("sSiIlLdDfFrRuU@!#%&", l.src[l.off]) >= 0; n++ {
		l.off++
	}
	l.emit(tNumber, start, l.off)
}

var punctuators = []string{
	"<<=", ">>=",
	":=", "<>", "<=", ">=", "&=", "+=", "-=", "*=", "/=", `\=`, "^=", "<<", ">>", "?.",
}

func (l *lexer) punct() {
	start := l.off
	rest := l.src[l.off:]
	for _, p := range punctuators {
		if strings.HasPrefix(string(rest[:min(len(rest), 3)]), p) {
			l.off += len(p)
			l.emit(tPunct, start, l.off)
			return
		}
	}
	_, size := utf8.DecodeRune(rest)
	l.off += size
	l.emit(tPunct, start, l.off)
}

func isSpace(c byte) bool     { return c == ' ' || c == '\t' }
func isDigit(c byte) bool     { return '0' <= c && c <= '9' }
func isIdentByte(c byte) bool { return c == '_' || isDigit(c) || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }
func isRadix(c byte) bool     { return strings.IndexByte("hHoObB", c) >= 0 }

func isHexByte(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isDigitIn(radix, c byte) bool {
	switch radix {
	case 'h', 'H':
		return isHexByte(c)
	case 'o', 'O':
		return '0' <= c && c <= '7'
	case 'b', 'B':
		return c == '0' || c == '1'
	}
	return false
}
