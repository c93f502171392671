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

	"github.com/google/netlevee/internal/pkg/syntax"
)

// atBlockEnd reports whether the current line closes or splits the
// enclosing statement block.
func (p *parser) atBlockEnd() bool {
	if p.atEnd() {
		return true
	}
	for _, w := range []string{"else", "elseif", "case", "catch", "finally", "loop", "next", "wend"} {
		if p.at(w) {
			return true
		}
	}
	return false
}

// statements parses statements into parent until the line that ends the
// enclosing block.
func (p *parser) statements(parent *syntax.Node) {
	for {
		p.skipNewlines()
		if p.cur().kind == tEOF || p.atBlockEnd() {
			return
		}
		before := p.pos
		parent.Append("", p.statement())
		if p.pos == before {
			p.errorf("unexpected %q", p.cur().text)
			parent.Append("", p.skipLine())
			if p.pos == before {
				p.advance()
			}
		}
	}
}

// assignments maps assignment operators to statement kinds.
var assignments = map[string]string{
	"=":   "SimpleAssignmentStatement",
	"+=":  "AddAssignmentStatement",
	"-=":  "SubtractAssignmentStatement",
	"*=":  "MultiplyAssignmentStatement",
	"/=":  "DivideAssignmentStatement",
	"\\=": "IntegerDivideAssignmentStatement",
	"^=":  "ExponentiateAssignmentStatement",
	"&=":  "ConcatenateAssignmentStatement",
	"<<=": "LeftShiftAssignmentStatement",
	">>=": "RightShiftAssignmentStatement",
}

// skipped are statements kept only as their tokens.
var skipped = map[string]string{
	"continue":   "ContinueStatement",
	"end":        "EndStatement",
	"erase":      "EraseStatement",
	"error":      "ErrorStatement",
	"exit":       "ExitStatement",
	"goto":       "GoToStatement",
	"on":         "OnErrorStatement",
	"raiseevent": "RaiseEventStatement",
	"redim":      "ReDimStatement",
	"resume":     "ResumeStatement",
	"stop":       "StopStatement",
	"yield":      "YieldStatement",
}

func (p *parser) statement() *syntax.Node {
	t := p.cur()
	word := ""
	if t.kind == tIdent && !t.escaped {
		word = strings.ToLower(t.text)
	}
	switch word {
	case "dim", "const", "static":
		return p.localDeclaration()
	case "if":
		return p.ifStatement()
	case "select":
		return p.selectBlock()
	case "for":
		if p.peek(1).is("each") {
			return p.forEachBlock()
		}
		return p.forBlock()
	case "while":
		return p.whileBlock()
	case "do":
		return p.doLoopBlock()
	case "try":
		return p.tryBlock()
	case "using":
		return p.usingBlock()
	case "with":
		return p.simpleBlock("WithBlock", "with")
	case "synclock":
		return p.simpleBlock("SyncLockBlock", "synclock")
	case "return":
		return p.valueStatement("ReturnStatement")
	case "throw":
		return p.valueStatement("ThrowStatement")
	case "call":
		n := p.open("CallStatement")
		p.token(n, "")
		n.Append("expression", p.expression())
		p.endStatement(n)
		return p.close(n)
	case "addhandler", "removehandler":
		kind := "AddHandlerStatement"
		if word == "removehandler" {
			kind = "RemoveHandlerStatement"
		}
		n := p.open(kind)
		p.token(n, "")
		n.Append("event", p.expression())
		p.expect(n, ",")
		p.skipNewlines()
		n.Append("handler", p.expression())
		p.endStatement(n)
		return p.close(n)
	}
	if kind, ok := skipped[word]; ok {
		return p.lineStatement(kind)
	}
	return p.expressionStatement()
}

func (p *parser) expressionStatement() *syntax.Node {
	start := p.cur().start
	var left *syntax.Node
	if p.at("await") {
		left = p.expression()
	} else {
		left = p.postfixExpression()
	}
	if left == nil {
		return nil
	}
	kind, ok := assignments[p.cur().text]
	if !ok || p.cur().kind != tPunct {
		n := syntax.NewNode("ExpressionStatement", true, start, left.EndByte)
		n.Append("expression", left)
		p.endStatement(n)
		return p.close(n)
	}
	n := syntax.NewNode(kind, true, start, start)
	n.Append("left", left)
	p.token(n, "operator")
	p.skipNewlines()
	n.Append("right", p.expression())
	p.endStatement(n)
	return p.close(n)
}

func (p *parser) localDeclaration() *syntax.Node {
	n := p.open("LocalDeclarationStatement")
	for _, m := range p.modifiers() {
		n.Append("", m)
	}
	p.declarators(n)
	p.endStatement(n)
	return p.close(n)
}

// valueStatement parses a keyword followed by an optional expression.
func (p *parser) valueStatement(kind string) *syntax.Node {
	n := p.open(kind)
	p.token(n, "")
	if !p.atEOS() {
		n.Append("value", p.expression())
	}
	p.endStatement(n)
	return p.close(n)
}

func (p *parser) ifStatement() *syntax.Node {
	n := p.open("MultiLineIfBlock")
	p.token(n, "")
	n.Append("condition", p.expression())
	if p.at("then") {
		p.token(n, "")
	}
	if !p.atEOS() || p.at("else") {
		return p.singleLineIf(n)
	}
	p.statements(n)
	for {
		switch {
		case p.at("elseif") || p.at("else") && p.peek(1).is("if"):
			b := p.open("ElseIfBlock")
			p.token(b, "")
			if p.at("if") {
				p.token(b, "")
			}
			b.Append("condition", p.expression())
			if p.at("then") {
				p.token(b, "")
			}
			p.endStatement(b)
			p.statements(b)
			n.Append("", p.close(b))
			continue
		case p.at("else"):
			b := p.open("ElseBlock")
			p.token(b, "")
			p.endStatement(b)
			p.statements(b)
			n.Append("", p.close(b))
			continue
		}
		break
	}
	p.endBlock(n, "if")
	return p.close(n)
}

// singleLineIf parses the remainder of "If c Then s1 : s2 Else s3".
func (p *parser) singleLineIf(n *syntax.Node) *syntax.Node {
	n.Kind = "SingleLineIfStatement"
	p.singleLine++
	defer func() { p.singleLine-- }()
	p.inlineStatements(n)
	if p.at("else") {
		e := p.open("SingleLineElseClause")
		p.token(e, "")
		p.inlineStatements(e)
		n.Append("", p.close(e))
	}
	return p.close(n)
}

// inlineStatements parses colon separated statements on the current line.
func (p *parser) inlineStatements(parent *syntax.Node) {
	for {
		if p.atEOS() {
			if p.cur().kind == tNewline && p.cur().text == ":" {
				p.advance()
				continue
			}
			return
		}
		before := p.pos
		parent.Append("", p.statement())
		if p.pos == before {
			parent.Append("", p.skipLine())
			return
		}
	}
}

func (p *parser) selectBlock() *syntax.Node {
	n := p.open("SelectBlock")
	p.token(n, "")
	if p.at("case") {
		p.token(n, "")
	}
	n.Append("expression", p.expression())
	p.endStatement(n)
	for {
		p.skipNewlines()
		if !p.at("case") {
			break
		}
		c := p.open("CaseBlock")
		p.token(c, "")
		if p.at("else") {
			c.Kind = "CaseElseBlock"
			p.token(c, "")
		}
		for !p.atEOS() {
			switch {
			case p.at("is"):
				p.token(c, "")
				p.token(c, "")
			case p.at(",") || p.at("to"):
				p.token(c, "")
			}
			before := p.pos
			c.Append("", p.expression())
			if p.pos == before {
				break
			}
		}
		p.endStatement(c)
		p.statements(c)
		n.Append("", p.close(c))
	}
	p.endBlock(n, "select")
	return p.close(n)
}

// controlVariable parses the loop variable of a For or For Each statement.
func (p *parser) controlVariable(n *syntax.Node) {
	if p.cur().kind == tIdent && (p.peek(1).is("as") || p.peek(1).is("=") || p.peek(1).is("in")) {
		n.Append("variable", p.modifiedIdentifier())
	} else {
		n.Append("variable", p.postfixExpression())
	}
	if p.at("as") {
		p.token(n, "")
		n.Append("type", p.typeName(true))
	}
}

// nextStatement consumes the Next line closing a For loop.
func (p *parser) nextStatement(n *syntax.Node) {
	if !p.at("next") {
		p.errorf("missing Next")
		return
	}
	for !p.atEOS() {
		p.token(n, "")
	}
	p.close(n)
}

func (p *parser) forBlock() *syntax.Node {
	n := p.open("ForBlock")
	p.token(n, "")
	p.controlVariable(n)
	p.expect(n, "=")
	n.Append("from", p.expression())
	p.expect(n, "to")
	n.Append("to", p.expression())
	if p.at("step") {
		p.token(n, "")
		n.Append("step", p.expression())
	}
	p.endStatement(n)
	p.statements(n)
	p.nextStatement(n)
	return p.close(n)
}

func (p *parser) forEachBlock() *syntax.Node {
	n := p.open("ForEachBlock")
	p.token(n, "")
	p.token(n, "")
	p.controlVariable(n)
	p.expect(n, "in")
	n.Append("value", p.expression())
	p.endStatement(n)
	p.statements(n)
	p.nextStatement(n)
	return p.close(n)
}

func (p *parser) whileBlock() *syntax.Node {
	n := p.open("WhileBlock")
	p.token(n, "")
	n.Append("condition", p.expression())
	p.endStatement(n)
	p.statements(n)
	if p.at("wend") {
		p.token(n, "")
		return p.close(n)
	}
	p.endBlock(n, "while")
	return p.close(n)
}

func (p *parser) doLoopBlock() *syntax.Node {
	n := p.open("DoLoopBlock")
	p.token(n, "")
	if p.at("while") || p.at("until") {
		p.token(n, "")
		n.Append("condition", p.expression())
	}
	p.endStatement(n)
	p.statements(n)
	if !p.expect(n, "loop") {
		return p.close(n)
	}
	if p.at("while") || p.at("until") {
		p.token(n, "")
		n.Append("condition", p.expression())
	}
	p.endStatement(n)
	return p.close(n)
}

func (p *parser) tryBlock() *syntax.Node {
	n := p.open("TryBlock")
	p.token(n, "")
	p.endStatement(n)
	p.statements(n)
	for p.at("catch") {
		c := p.open("CatchBlock")
		p.token(c, "")
		if p.cur().kind == tIdent && !p.at("when") {
			c.Append("variable", p.modifiedIdentifier())
			if p.at("as") {
				p.token(c, "")
				c.Append("type", p.typeName(true))
			}
		}
		if p.at("when") {
			p.token(c, "")
			c.Append("filter", p.expression())
		}
		p.endStatement(c)
		p.statements(c)
		n.Append("", p.close(c))
	}
	if p.at("finally") {
		f := p.open("FinallyBlock")
		p.token(f, "")
		p.endStatement(f)
		p.statements(f)
		n.Append("", p.close(f))
	}
	p.endBlock(n, "try")
	return p.close(n)
}

func (p *parser) usingBlock() *syntax.Node {
	n := p.open("UsingBlock")
	p.token(n, "")
	if p.cur().kind == tIdent && (p.peek(1).is("as") || p.peek(1).is("=")) {
		p.declarators(n)
	} else {
		n.Append("expression", p.expression())
	}
	p.endStatement(n)
	p.statements(n)
	p.endBlock(n, "using")
	return p.close(n)
}

// simpleBlock parses "word expr ... End word".
func (p *parser) simpleBlock(kind, word string) *syntax.Node {
	n := p.open(kind)
	p.token(n, "")
	n.Append("expression", p.expression())
	p.endStatement(n)
	p.statements(n)
	p.endBlock(n, word)
	return p.close(n)
}
