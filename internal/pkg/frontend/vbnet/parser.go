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

// Package vbnet parses Visual Basic source files into syntax trees.
//
// The parser is a hand-written recursive descent parser over the subset of
// the language security rules look at: declarations, statements and
// expressions. Node kinds follow the names the Roslyn compiler uses, with
// the "Syntax" suffix dropped. Constructs the parser does not understand
// are recorded as errors and skipped to the end of the line.
package vbnet

import (
	"context"
	"go/token"
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Parse parses a Visual Basic source file.
// The returned tree is never nil when err is nil, even if the source had
// syntax errors; those are recorded in the tree.
func Parse(ctx context.Context, fset *token.FileSet, filename string, src []byte) (*syntax.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := syntax.NewTree(fset, filename, syntax.VisualBasic, src)
	p := &parser{t: t, toks: lex(t)}
	root := syntax.NewNode("CompilationUnit", true, 0, len(src))
	p.members(root, "")
	t.Adopt(root)
	return t, nil
}

type parser struct {
	t    *syntax.Tree
	toks []tok
	pos  int
	// last is the end offset of the last token consumed, newlines aside.
	last int
	// singleLine counts the single-line If statements being parsed; within
	// one, Else ends a statement.
	singleLine int
	// nested counts the single-line Sub lambdas being parsed; within one,
	// the closing punctuation of the enclosing expression ends a statement.
	nested int
}

func (p *parser) cur() tok {
	return p.toks[p.pos]
}

func (p *parser) peek(i int) tok {
	if p.pos+i < len(p.toks) {
		return p.toks[p.pos+i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) at(word string) bool {
	return p.cur().is(word)
}

func (p *parser) advance() tok {
	t := p.cur()
	if t.kind != tEOF {
		p.pos++
		if t.kind != tNewline {
			p.last = t.end
		}
	}
	return t
}

// atEOS reports whether the current token ends a statement.
func (p *parser) atEOS() bool {
	switch t := p.cur(); {
	case t.kind == tEOF, t.kind == tNewline:
		return true
	case p.singleLine > 0 && t.is("else"):
		return true
	case p.nested > 0 && (t.is(")") || t.is(",") || t.is("}")):
		return true
	}
	return false
}

func (p *parser) skipNewlines() {
	for p.cur().kind == tNewline {
		p.advance()
	}
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.t.Errorf(p.cur().start, format, args...)
}

// open starts a node at the current token.
func (p *parser) open(kind string) *syntax.Node {
	s := p.cur().start
	return syntax.NewNode(kind, true, s, s)
}

// openAt starts a node at the start of first.
func openAt(kind string, first *syntax.Node) *syntax.Node {
	return syntax.NewNode(kind, true, first.StartByte, first.EndByte)
}

// close ends n at the last consumed token.
func (p *parser) close(n *syntax.Node) *syntax.Node {
	if p.last > n.EndByte {
		n.EndByte = p.last
	}
	return n
}

// leaf consumes the current token as a named node of the given kind.
func (p *parser) leaf(kind string) *syntax.Node {
	t := p.advance()
	return syntax.NewNode(kind, true, t.start, t.end)
}

// token consumes the current token into n as an unnamed child.
func (p *parser) token(n *syntax.Node, field string) {
	t := p.advance()
	n.Append(field, syntax.NewNode(strings.ToLower(t.text), false, t.start, t.end))
}

// expect consumes the given keyword or punctuator into n, or records an error.
func (p *parser) expect(n *syntax.Node, word string) bool {
	if !p.at(word) {
		p.errorf("expected %q, found %q", word, p.cur().text)
		return false
	}
	p.token(n, "")
	return true
}

// skipLine consumes the rest of the line, returning the skipped tokens as a
// node, or nil when there were none.
func (p *parser) skipLine() *syntax.Node {
	if p.atEOS() {
		return nil
	}
	n := p.open("SkippedTokens")
	for !p.atEOS() {
		p.advance()
	}
	return p.close(n)
}

// endStatement checks that the statement held in n is complete, skipping
// anything that follows it on the line.
func (p *parser) endStatement(n *syntax.Node) {
	if p.atEOS() {
		return
	}
	p.errorf("unexpected %q", p.cur().text)
	n.Append("", p.skipLine())
	p.close(n)
}

// blockWords are the words that may follow End to close a block.
var blockWords = map[string]bool{
	"addhandler":    true,
	"class":         true,
	"enum":          true,
	"event":         true,
	"function":      true,
	"get":           true,
	"if":            true,
	"interface":     true,
	"module":        true,
	"namespace":     true,
	"operator":      true,
	"property":      true,
	"raiseevent":    true,
	"removehandler": true,
	"select":        true,
	"set":           true,
	"structure":     true,
	"sub":           true,
	"synclock":      true,
	"try":           true,
	"using":         true,
	"while":         true,
	"with":          true,
}

func (p *parser) atEnd() bool {
	n := p.peek(1)
	return p.at("end") && n.kind == tIdent && !n.escaped && blockWords[strings.ToLower(n.text)]
}

// endBlock consumes the End statement closing a block opened by word.
func (p *parser) endBlock(n *syntax.Node, word string) {
	if p.at("end") && p.peek(1).is(word) {
		p.token(n, "")
		p.token(n, "")
		p.endStatement(n)
		p.close(n)
		return
	}
	p.errorf("missing End %s", strings.ToUpper(word[:1])+word[1:])
}

// lineIs reports whether, skipping attribute lists and modifiers, the next
// line starts with one of the given words.
func (p *parser) lineIs(words ...string) bool {
	i := p.pos
	for i < len(p.toks) && p.toks[i].kind == tNewline {
		i++
	}
	depth := 0
	for ; i < len(p.toks); i++ {
		t := p.toks[i]
		switch {
		case t.kind == tEOF:
			return false
		case t.is("<"):
			depth++
		case t.is(">") && depth > 0:
			depth--
		case depth > 0:
		case t.kind == tNewline:
		case t.kind == tIdent && !t.escaped && modifierWords[strings.ToLower(t.text)]:
		default:
			for _, w := range words {
				if t.is(w) {
					return true
				}
			}
			return false
		}
	}
	return false
}

// modifierWords are the keywords that may precede a declaration.
var modifierWords = map[string]bool{
	"async":          true,
	"const":          true,
	"default":        true,
	"dim":            true,
	"friend":         true,
	"iterator":       true,
	"mustinherit":    true,
	"mustoverride":   true,
	"narrowing":      true,
	"notinheritable": true,
	"notoverridable": true,
	"overloads":      true,
	"overridable":    true,
	"overrides":      true,
	"partial":        true,
	"private":        true,
	"protected":      true,
	"public":         true,
	"readonly":       true,
	"shadows":        true,
	"shared":         true,
	"static":         true,
	"widening":       true,
	"withevents":     true,
	"writeonly":      true,
}

func (p *parser) modifiers() []*syntax.Node {
	var mods []*syntax.Node
	for t := p.cur(); t.kind == tIdent && !t.escaped && modifierWords[strings.ToLower(t.text)]; t = p.cur() {
		mods = append(mods, p.leaf("Modifier"))
	}
	return mods
}

func hasModifier(mods []*syntax.Node, t *syntax.Tree, word string) bool {
	for _, m := range mods {
		if strings.EqualFold(string(t.Src[m.StartByte:m.EndByte]), word) {
			return true
		}
	}
	return false
}

// members parses the declarations of a file, namespace or type until the
// End statement of block, or until the end of the file when block is empty.
func (p *parser) members(parent *syntax.Node, block string) {
	for {
		p.skipNewlines()
		switch {
		case p.cur().kind == tEOF:
			return
		case p.atEnd() && block != "":
			return
		case p.atEnd():
			p.errorf("unexpected %q", "End "+p.peek(1).text)
			parent.Append("", p.skipLine())
			continue
		}
		before := p.pos
		p.member(parent, block == "interface")
		if p.pos == before {
			p.errorf("unexpected %q", p.cur().text)
			p.advance()
		}
	}
}

func (p *parser) member(parent *syntax.Node, inInterface bool) {
	switch {
	case p.at("option"):
		parent.Append("", p.lineStatement("OptionStatement"))
		return
	case p.at("imports"):
		parent.Append("", p.importsStatement())
		return
	case p.at("namespace"):
		parent.Append("", p.namespaceBlock())
		return
	case p.at("inherits"):
		parent.Append("", p.typeList("InheritsStatement"))
		return
	case p.at("implements"):
		parent.Append("", p.typeList("ImplementsStatement"))
		return
	}
	start := p.cur().start
	attrs := p.attributeLists()
	if len(attrs) > 0 && attrs[0].ChildOfKind("Attribute").Field("target") != nil {
		n := syntax.NewNode("AttributesStatement", true, start, start)
		for _, a := range attrs {
			n.Append("", a)
		}
		parent.Append("", p.close(n))
		return
	}
	mods := p.modifiers()
	begin := func(kind string) *syntax.Node {
		n := syntax.NewNode(kind, true, start, start)
		for _, a := range attrs {
			n.Append("", a)
		}
		for _, m := range mods {
			n.Append("", m)
		}
		return n
	}
	noBody := inInterface || hasModifier(mods, p.t, "mustoverride")
	var n *syntax.Node
	switch {
	case p.at("class"):
		n = p.typeBlock(begin("ClassBlock"), "class")
	case p.at("module"):
		n = p.typeBlock(begin("ModuleBlock"), "module")
	case p.at("structure"):
		n = p.typeBlock(begin("StructureBlock"), "structure")
	case p.at("interface"):
		n = p.typeBlock(begin("InterfaceBlock"), "interface")
	case p.at("enum"):
		n = p.enumBlock(begin("EnumBlock"))
	case p.at("sub"), p.at("function"):
		n = p.methodBlock(begin, noBody)
	case p.at("property"):
		n = p.property(begin("PropertyStatement"), noBody)
	case p.at("operator"):
		n = p.operatorBlock(begin("OperatorBlock"))
	case p.at("custom") && p.peek(1).is("event"):
		n = p.skipBlock(begin("EventBlock"), "event")
	case p.at("event"):
		n = p.skipStatement(begin("EventStatement"))
	case p.at("delegate"):
		n = p.skipStatement(begin("DelegateStatement"))
	case p.at("declare"):
		n = p.skipStatement(begin("DeclareStatement"))
	case len(mods) > 0 && p.cur().kind == tIdent:
		n = begin("FieldDeclaration")
		p.declarators(n)
		p.endStatement(n)
		p.close(n)
	default:
		if len(attrs) == 0 && len(mods) == 0 {
			return
		}
		p.errorf("expected declaration, found %q", p.cur().text)
		n = begin("IncompleteMember")
		n.Append("", p.skipLine())
		p.close(n)
	}
	parent.Append("", n)
}

// lineStatement consumes a whole line as a node of the given kind.
func (p *parser) lineStatement(kind string) *syntax.Node {
	return p.skipStatement(p.open(kind))
}

func (p *parser) skipStatement(n *syntax.Node) *syntax.Node {
	for !p.atEOS() {
		p.token(n, "")
	}
	return p.close(n)
}

// skipBlock consumes everything up to and including End word.
func (p *parser) skipBlock(n *syntax.Node, word string) *syntax.Node {
	for p.cur().kind != tEOF && !(p.at("end") && p.peek(1).is(word)) {
		p.advance()
	}
	p.endBlock(n, word)
	return p.close(n)
}

func (p *parser) importsStatement() *syntax.Node {
	n := p.open("ImportsStatement")
	p.token(n, "")
	for !p.atEOS() {
		if p.at("<") {
			c := p.open("XmlNamespaceImportsClause")
			for !p.atEOS() && !p.at(">") {
				p.advance()
			}
			p.expect(c, ">")
			n.Append("", p.close(c))
		} else {
			c := p.open("SimpleImportsClause")
			if p.cur().kind == tIdent && p.peek(1).is("=") {
				c.Append("alias", p.leaf("IdentifierName"))
				p.token(c, "")
			}
			c.Append("name", p.typeName(false))
			n.Append("", p.close(c))
		}
		if !p.at(",") {
			break
		}
		p.token(n, "")
		p.skipNewlines()
	}
	p.endStatement(n)
	return p.close(n)
}

func (p *parser) namespaceBlock() *syntax.Node {
	n := p.open("NamespaceBlock")
	p.token(n, "")
	n.Append("name", p.typeName(false))
	p.endStatement(n)
	p.members(n, "namespace")
	p.endBlock(n, "namespace")
	return p.close(n)
}

// typeList parses an Inherits or Implements statement.
func (p *parser) typeList(kind string) *syntax.Node {
	n := p.open(kind)
	p.token(n, "")
	for {
		n.Append("", p.typeName(false))
		if !p.at(",") {
			break
		}
		p.token(n, "")
		p.skipNewlines()
	}
	p.endStatement(n)
	return p.close(n)
}

func (p *parser) typeBlock(n *syntax.Node, word string) *syntax.Node {
	p.token(n, "")
	n.Append("name", p.identifier("Identifier"))
	if p.at("(") && p.peek(1).is("of") {
		n.Append("", p.typeParameters())
	}
	p.endStatement(n)
	p.members(n, word)
	p.endBlock(n, word)
	return p.close(n)
}

func (p *parser) enumBlock(n *syntax.Node) *syntax.Node {
	p.token(n, "")
	n.Append("name", p.identifier("Identifier"))
	if p.at("as") {
		p.token(n, "")
		n.Append("underlyingType", p.typeName(false))
	}
	p.endStatement(n)
	for {
		p.skipNewlines()
		if p.cur().kind == tEOF || p.atEnd() {
			break
		}
		m := p.open("EnumMemberDeclaration")
		for _, a := range p.attributeLists() {
			m.Append("", a)
		}
		id := p.identifier("Identifier")
		if id == nil {
			p.advance()
			continue
		}
		m.Append("name", id)
		if p.at("=") {
			p.token(m, "")
			m.Append("value", p.expression())
		}
		p.endStatement(m)
		n.Append("", p.close(m))
	}
	p.endBlock(n, "enum")
	return p.close(n)
}

func (p *parser) methodBlock(begin func(string) *syntax.Node, noBody bool) *syntax.Node {
	word := strings.ToLower(p.cur().text)
	ctor := word == "sub" && p.peek(1).is("new")
	var kind string
	switch {
	case ctor:
		kind = "ConstructorBlock"
	case word == "function":
		kind = "FunctionBlock"
	default:
		kind = "SubBlock"
	}
	if noBody {
		kind = strings.TrimSuffix(kind, "Block") + "Statement"
	}
	n := begin(kind)
	p.token(n, "")
	if ctor {
		n.Append("name", p.leaf("Identifier"))
	} else {
		n.Append("name", p.identifier("Identifier"))
	}
	if p.at("(") && p.peek(1).is("of") {
		n.Append("", p.typeParameters())
	}
	if p.at("(") {
		n.Append("parameters", p.parameterList())
	}
	if p.at("as") {
		p.token(n, "")
		for _, a := range p.attributeLists() {
			n.Append("", a)
		}
		n.Append("returns", p.typeName(true))
	}
	if p.at("handles") || p.at("implements") {
		n.Append("", p.skipLine())
	}
	p.endStatement(n)
	p.close(n)
	if noBody {
		return n
	}
	p.statements(n)
	p.endBlock(n, word)
	return p.close(n)
}

func (p *parser) operatorBlock(n *syntax.Node) *syntax.Node {
	p.token(n, "")
	for !p.atEOS() && !p.at("(") {
		p.token(n, "")
	}
	if p.at("(") {
		n.Append("parameters", p.parameterList())
	}
	if p.at("as") {
		p.token(n, "")
		n.Append("returns", p.typeName(true))
	}
	p.endStatement(n)
	p.statements(n)
	p.endBlock(n, "operator")
	return p.close(n)
}

func (p *parser) property(n *syntax.Node, noBody bool) *syntax.Node {
	p.token(n, "")
	n.Append("name", p.identifier("Identifier"))
	if p.at("(") {
		n.Append("parameters", p.parameterList())
	}
	if p.at("as") {
		p.token(n, "")
		for _, a := range p.attributeLists() {
			n.Append("", a)
		}
		if p.at("new") {
			c := p.newExpression()
			n.SetField("type", c.Field("type"))
			n.Append("value", c)
		} else {
			n.Append("type", p.typeName(true))
		}
	}
	if p.at("=") {
		p.token(n, "")
		p.skipNewlines()
		n.Append("value", p.expression())
	}
	if p.at("implements") {
		n.Append("", p.skipLine())
	}
	p.endStatement(n)
	p.close(n)
	if noBody || !p.lineIs("get", "set") {
		return n
	}
	n.Kind = "PropertyBlock"
	for {
		p.skipNewlines()
		if p.cur().kind == tEOF || p.atEnd() && p.peek(1).is("property") {
			break
		}
		if !p.lineIs("get", "set") {
			p.errorf("expected Get or Set, found %q", p.cur().text)
			n.Append("", p.skipLine())
			continue
		}
		start := p.cur().start
		attrs := p.attributeLists()
		mods := p.modifiers()
		word := strings.ToLower(p.cur().text)
		a := syntax.NewNode(map[string]string{"get": "GetAccessorBlock", "set": "SetAccessorBlock"}[word], true, start, start)
		for _, c := range attrs {
			a.Append("", c)
		}
		for _, c := range mods {
			a.Append("", c)
		}
		p.token(a, "")
		if p.at("(") {
			a.Append("parameters", p.parameterList())
		}
		p.endStatement(a)
		p.statements(a)
		p.endBlock(a, word)
		n.Append("", p.close(a))
	}
	p.endBlock(n, "property")
	return p.close(n)
}

func (p *parser) typeParameters() *syntax.Node {
	n := p.open("TypeParameterList")
	p.token(n, "")
	depth := 1
	for depth > 0 && p.cur().kind != tEOF {
		switch {
		case p.at("("):
			depth++
		case p.at(")"):
			depth--
		}
		p.token(n, "")
	}
	return p.close(n)
}

func (p *parser) parameterList() *syntax.Node {
	n := p.open("ParameterList")
	p.token(n, "")
	p.skipNewlines()
	for !p.at(")") && p.cur().kind != tEOF {
		before := p.pos
		n.Append("", p.parameter())
		p.skipNewlines()
		if p.at(",") {
			p.token(n, "")
			p.skipNewlines()
			continue
		}
		if p.pos == before {
			break
		}
		if !p.at(")") {
			break
		}
	}
	p.expect(n, ")")
	return p.close(n)
}

var parameterModifiers = map[string]bool{
	"byref":      true,
	"byval":      true,
	"optional":   true,
	"paramarray": true,
}

func (p *parser) parameter() *syntax.Node {
	n := p.open("Parameter")
	for _, a := range p.attributeLists() {
		n.Append("", a)
	}
	for t := p.cur(); t.kind == tIdent && !t.escaped && parameterModifiers[strings.ToLower(t.text)]; t = p.cur() {
		n.Append("", p.leaf("Modifier"))
	}
	n.Append("name", p.modifiedIdentifier())
	if p.at("as") {
		p.token(n, "")
		n.Append("type", p.typeName(true))
	}
	if p.at("=") {
		p.token(n, "")
		p.skipNewlines()
		n.Append("value", p.expression())
	}
	return p.close(n)
}

// identifier consumes an identifier as a leaf of the given kind.
func (p *parser) identifier(kind string) *syntax.Node {
	if p.cur().kind != tIdent {
		p.errorf("expected identifier, found %q", p.cur().text)
		return nil
	}
	return p.leaf(kind)
}

// modifiedIdentifier parses a declared name with its optional array or
// nullable modifiers, as in "x()" or "n?".
func (p *parser) modifiedIdentifier() *syntax.Node {
	n := p.open("ModifiedIdentifier")
	id := p.identifier("Identifier")
	if id == nil {
		return nil
	}
	n.Append("identifier", id)
	if p.at("?") {
		p.token(n, "")
	}
	if p.at("(") && (p.peek(1).is(")") || p.peek(1).is(",")) {
		for !p.at(")") && p.cur().kind != tEOF {
			p.token(n, "")
		}
		p.expect(n, ")")
	}
	return p.close(n)
}

// declarators parses the comma separated variable declarators of a field
// or local declaration into n.
func (p *parser) declarators(n *syntax.Node) {
	for {
		d := p.variableDeclarator()
		if d == nil {
			return
		}
		n.Append("", d)
		if !p.at(",") {
			return
		}
		p.token(n, "")
		p.skipNewlines()
	}
}

// variableDeclarator parses one or more names sharing an As clause and an
// initializer, as in "a, b As String" or "c As New T()".
func (p *parser) variableDeclarator() *syntax.Node {
	if p.cur().kind != tIdent {
		p.errorf("expected identifier, found %q", p.cur().text)
		return nil
	}
	d := p.open("VariableDeclarator")
	d.Append("name", p.modifiedIdentifier())
	for p.at(",") && p.peek(1).kind == tIdent && !p.namesEndAs() {
		p.token(d, "")
		d.Append("", p.modifiedIdentifier())
	}
	if p.at("as") {
		p.token(d, "")
		if p.at("new") {
			c := p.newExpression()
			d.SetField("type", c.Field("type"))
			d.Append("value", c)
		} else {
			d.Append("type", p.typeName(true))
		}
	}
	if p.at("=") {
		p.token(d, "")
		p.skipNewlines()
		d.Append("value", p.expression())
	}
	return p.close(d)
}

// namesEndAs reports whether the declarator so far already has its own
// As clause or initializer, in which case a following comma starts a new
// declarator. It is called positioned at the comma.
func (p *parser) namesEndAs() bool {
	for i := p.pos - 1; i >= 0; i-- {
		t := p.toks[i]
		if t.is("as") || t.is("=") {
			return true
		}
		if t.kind == tNewline || t.is("dim") || t.is("const") || t.is("static") || t.kind == tIdent && modifierWords[strings.ToLower(t.text)] {
			return false
		}
		if t.is(",") {
			continue
		}
		if t.kind != tIdent && !t.is("(") && !t.is(")") && !t.is("?") {
			return true
		}
	}
	return false
}

// attributeLists parses the attribute blocks preceding a declaration.
func (p *parser) attributeLists() []*syntax.Node {
	var out []*syntax.Node
	for p.at("<") {
		l := p.open("AttributeList")
		p.token(l, "")
		for {
			p.skipNewlines()
			a := p.open("Attribute")
			if (p.at("assembly") || p.at("module")) && p.peek(1).kind == tNewline && p.peek(1).text == ":" {
				p.token(a, "target")
				p.token(a, "")
			}
			a.Append("name", p.typeName(false))
			if p.at("(") {
				a.Append("arguments", p.argumentList())
			}
			l.Append("", p.close(a))
			p.skipNewlines()
			if !p.at(",") {
				break
			}
			p.token(l, "")
		}
		p.expect(l, ">")
		out = append(out, p.close(l))
		p.skipNewlines()
	}
	return out
}

// predefinedTypes are the keywords naming built-in types.
var predefinedTypes = map[string]string{
	"boolean":  "System.Boolean",
	"byte":     "System.Byte",
	"char":     "System.Char",
	"date":     "System.DateTime",
	"decimal":  "System.Decimal",
	"double":   "System.Double",
	"integer":  "System.Int32",
	"long":     "System.Int64",
	"object":   "System.Object",
	"sbyte":    "System.SByte",
	"short":    "System.Int16",
	"single":   "System.Single",
	"string":   "System.String",
	"uinteger": "System.UInt32",
	"ulong":    "System.UInt64",
	"ushort":   "System.UInt16",
}

func (p *parser) atPredefinedType() bool {
	t := p.cur()
	return t.kind == tIdent && !t.escaped && predefinedTypes[strings.ToLower(t.text)] != ""
}

// typeName parses a type. With arrays set, trailing "()" and "?" make
// array and nullable types; elsewhere the parentheses belong to the caller.
func (p *parser) typeName(arrays bool) *syntax.Node {
	var n *syntax.Node
	switch {
	case p.atPredefinedType():
		n = p.leaf("PredefinedType")
	case p.at("global") && p.peek(1).is("."):
		n = p.leaf("GlobalName")
	case p.cur().kind == tIdent:
		n = p.simpleName()
	default:
		p.errorf("expected type, found %q", p.cur().text)
		return nil
	}
	for p.at(".") && p.peek(1).kind == tIdent {
		q := openAt("QualifiedName", n)
		q.Append("left", n)
		p.token(q, "")
		q.Append("right", p.simpleName())
		n = p.close(q)
	}
	for arrays {
		switch {
		case p.at("?"):
			q := openAt("NullableType", n)
			q.Append("elementType", n)
			p.token(q, "")
			n = p.close(q)
		case p.at("(") && (p.peek(1).is(")") || p.peek(1).is(",")):
			q := openAt("ArrayType", n)
			q.Append("elementType", n)
			for !p.at(")") && p.cur().kind != tEOF {
				p.token(q, "")
			}
			p.expect(q, ")")
			n = p.close(q)
		default:
			return n
		}
	}
	return n
}

// simpleName parses an identifier with optional type arguments.
func (p *parser) simpleName() *syntax.Node {
	id := p.leaf("IdentifierName")
	if !(p.at("(") && p.peek(1).is("of")) {
		return id
	}
	n := openAt("GenericName", id)
	id.Kind = "Identifier"
	n.Append("name", id)
	args := p.open("TypeArgumentList")
	p.token(args, "")
	p.token(args, "")
	for {
		p.skipNewlines()
		args.Append("", p.typeName(true))
		p.skipNewlines()
		if !p.at(",") {
			break
		}
		p.token(args, "")
	}
	p.expect(args, ")")
	n.Append("arguments", p.close(args))
	return p.close(n)
}
