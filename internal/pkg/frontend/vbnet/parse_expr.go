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

// A level is one precedence level of binary operators, from loosest to
// tightest binding.
type level map[string]string

var levels = []level{
	{"xor": "ExclusiveOrExpression"},
	{"or": "OrExpression", "orelse": "OrElseExpression"},
	{"and": "AndExpression", "andalso": "AndAlsoExpression"},
	nil, // notLevel
	{
		"=":     "EqualsExpression",
		"<>":    "NotEqualsExpression",
		"<":     "LessThanExpression",
		">":     "GreaterThanExpression",
		"<=":    "LessThanOrEqualExpression",
		">=":    "GreaterThanOrEqualExpression",
		"is":    "IsExpression",
		"isnot": "IsNotExpression",
		"like":  "LikeExpression",
	},
	{"<<": "LeftShiftExpression", ">>": "RightShiftExpression"},
	{"&": "ConcatenateExpression"},
	{"+": "AddExpression", "-": "SubtractExpression"},
	{"mod": "ModuloExpression"},
	{"\\": "IntegerDivideExpression"},
	{"*": "MultiplyExpression", "/": "DivideExpression"},
	nil, // signLevel
	{"^": "ExponentiateExpression"},
}

const (
	notLevel  = 3
	signLevel = 11
)

func (p *parser) expression() *syntax.Node {
	return p.binary(0)
}

func (p *parser) operatorKind(l level) (string, bool) {
	t := p.cur()
	switch t.kind {
	case tPunct:
		k, ok := l[t.text]
		return k, ok
	case tIdent:
		if t.escaped {
			return "", false
		}
		k, ok := l[strings.ToLower(t.text)]
		return k, ok
	}
	return "", false
}

// binary parses an expression whose operators bind at least as tightly as
// levels[i].
func (p *parser) binary(i int) *syntax.Node {
	if i == len(levels) {
		return p.await()
	}
	if levels[i] == nil {
		return p.unary(i)
	}
	left := p.binary(i + 1)
	for left != nil {
		kind, ok := p.operatorKind(levels[i])
		if !ok {
			break
		}
		n := openAt(kind, left)
		n.Append("left", left)
		p.token(n, "operator")
		p.skipNewlines()
		n.Append("right", p.binary(i+1))
		left = p.close(n)
	}
	return left
}

// unary parses the prefix operators of the Not and sign levels.
func (p *parser) unary(i int) *syntax.Node {
	var kind string
	switch {
	case i == notLevel && p.at("not"):
		kind = "NotExpression"
	case i == signLevel && p.at("-"):
		kind = "UnaryMinusExpression"
	case i == signLevel && p.at("+"):
		kind = "UnaryPlusExpression"
	default:
		return p.binary(i + 1)
	}
	n := p.open(kind)
	p.token(n, "operator")
	n.Append("operand", p.unary(i))
	return p.close(n)
}

func (p *parser) await() *syntax.Node {
	if !p.at("await") {
		return p.postfixExpression()
	}
	n := p.open("AwaitExpression")
	p.token(n, "operator")
	n.Append("operand", p.await())
	return p.close(n)
}

// invocable are the kinds an argument list may follow.
var invocable = map[string]bool{
	"ConditionalAccessExpression":  true,
	"DictionaryAccessExpression":   true,
	"GenericName":                  true,
	"IdentifierName":               true,
	"InvocationExpression":         true,
	"MeExpression":                 true,
	"MyBaseExpression":             true,
	"MyClassExpression":            true,
	"ParenthesizedExpression":      true,
	"SimpleMemberAccessExpression": true,
}

func (p *parser) postfixExpression() *syntax.Node {
	n := p.primary()
	for n != nil {
		switch {
		case (p.at(".") || p.at("?.")) && p.peek(1).kind == tIdent:
			kind := "SimpleMemberAccessExpression"
			if p.at("?.") {
				kind = "ConditionalAccessExpression"
			}
			m := openAt(kind, n)
			m.Append("expression", n)
			p.token(m, "operator")
			m.Append("name", p.simpleName())
			n = p.close(m)
		case p.at("!") && p.peek(1).kind == tIdent:
			m := openAt("DictionaryAccessExpression", n)
			m.Append("expression", n)
			p.token(m, "operator")
			m.Append("name", p.leaf("IdentifierName"))
			n = p.close(m)
		case p.at("(") && invocable[n.Kind]:
			m := openAt("InvocationExpression", n)
			m.Append("expression", n)
			m.Append("arguments", p.argumentList())
			n = p.close(m)
		default:
			return n
		}
	}
	return n
}

func (p *parser) argumentList() *syntax.Node {
	n := p.open("ArgumentList")
	p.token(n, "")
	p.skipNewlines()
	for !p.at(")") && p.cur().kind != tEOF {
		if p.at(",") {
			n.Append("", p.open("OmittedArgument"))
			p.token(n, "")
			p.skipNewlines()
			continue
		}
		a := p.open("SimpleArgument")
		if p.cur().kind == tIdent && p.peek(1).is(":=") {
			a.Append("name", p.leaf("IdentifierName"))
			p.token(a, "")
			p.skipNewlines()
		}
		before := p.pos
		a.Append("value", p.expression())
		if p.at("to") {
			a.Kind = "RangeArgument"
			p.token(a, "")
			a.Append("", p.expression())
		}
		n.Append("", p.close(a))
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

// literals maps literal token kinds to expression kinds.
var literals = map[tokKind]string{
	tString: "StringLiteralExpression",
	tChar:   "CharacterLiteralExpression",
	tNumber: "NumericLiteralExpression",
	tDate:   "DateLiteralExpression",
}

// keywordExpressions are keywords that form an expression on their own.
var keywordExpressions = map[string]string{
	"false":   "FalseLiteralExpression",
	"me":      "MeExpression",
	"mybase":  "MyBaseExpression",
	"myclass": "MyClassExpression",
	"nothing": "NothingLiteralExpression",
	"true":    "TrueLiteralExpression",
}

var casts = map[string]string{
	"ctype":      "CTypeExpression",
	"directcast": "DirectCastExpression",
	"trycast":    "TryCastExpression",
}

// predefinedCasts maps the conversion keywords to their target types.
var predefinedCasts = map[string]string{
	"cbool":   "System.Boolean",
	"cbyte":   "System.Byte",
	"cchar":   "System.Char",
	"cdate":   "System.DateTime",
	"cdbl":    "System.Double",
	"cdec":    "System.Decimal",
	"cint":    "System.Int32",
	"clng":    "System.Int64",
	"cobj":    "System.Object",
	"csbyte":  "System.SByte",
	"cshort":  "System.Int16",
	"csng":    "System.Single",
	"cstr":    "System.String",
	"cuint":   "System.UInt32",
	"culng":   "System.UInt64",
	"cushort": "System.UInt16",
}

func (p *parser) primary() *syntax.Node {
	t := p.cur()
	if kind, ok := literals[t.kind]; ok {
		return p.leaf(kind)
	}
	switch t.kind {
	case tInterpolated:
		return p.interpolatedString()
	case tPunct:
		switch t.text {
		case "(":
			n := p.open("ParenthesizedExpression")
			p.token(n, "")
			p.skipNewlines()
			n.Append("expression", p.expression())
			p.skipNewlines()
			p.expect(n, ")")
			return p.close(n)
		case ".", "?.":
			// Member of the enclosing With block.
			n := p.open("SimpleMemberAccessExpression")
			p.token(n, "operator")
			if p.cur().kind != tIdent {
				p.errorf("expected identifier, found %q", p.cur().text)
				return p.close(n)
			}
			n.Append("name", p.simpleName())
			return p.close(n)
		case "{":
			return p.collectionInitializer()
		}
	case tIdent:
		if t.escaped {
			return p.simpleName()
		}
		word := strings.ToLower(t.text)
		if kind, ok := keywordExpressions[word]; ok {
			return p.leaf(kind)
		}
		if kind, ok := casts[word]; ok {
			return p.cast(kind)
		}
		if _, ok := predefinedCasts[word]; ok && p.peek(1).is("(") {
			n := p.open("PredefinedCastExpression")
			n.Append("keyword", p.leaf("PredefinedCastKeyword"))
			p.expect(n, "(")
			p.skipNewlines()
			n.Append("expression", p.expression())
			p.skipNewlines()
			p.expect(n, ")")
			return p.close(n)
		}
		switch word {
		case "new":
			return p.newExpression()
		case "gettype", "nameof":
			kind := "GetTypeExpression"
			if word == "nameof" {
				kind = "NameOfExpression"
			}
			n := p.open(kind)
			p.token(n, "")
			p.expect(n, "(")
			if kind == "GetTypeExpression" {
				n.Append("type", p.typeName(true))
			} else {
				n.Append("expression", p.expression())
			}
			p.expect(n, ")")
			return p.close(n)
		case "typeof":
			n := p.open("TypeOfIsExpression")
			p.token(n, "")
			n.Append("expression", p.postfixExpression())
			if p.at("is") || p.at("isnot") {
				p.token(n, "operator")
			}
			n.Append("type", p.typeName(true))
			return p.close(n)
		case "addressof":
			n := p.open("AddressOfExpression")
			p.token(n, "")
			n.Append("operand", p.postfixExpression())
			return p.close(n)
		case "if":
			if p.peek(1).is("(") {
				return p.conditional()
			}
		case "function", "sub", "async", "iterator":
			return p.lambda()
		case "global":
			if p.peek(1).is(".") {
				return p.leaf("GlobalName")
			}
		}
		if p.atPredefinedType() {
			return p.leaf("PredefinedType")
		}
		return p.simpleName()
	}
	p.errorf("expected expression, found %q", t.text)
	return nil
}

func (p *parser) cast(kind string) *syntax.Node {
	n := p.open(kind)
	p.token(n, "")
	p.expect(n, "(")
	p.skipNewlines()
	n.Append("expression", p.expression())
	p.skipNewlines()
	p.expect(n, ",")
	p.skipNewlines()
	n.Append("type", p.typeName(true))
	p.skipNewlines()
	p.expect(n, ")")
	return p.close(n)
}

// conditional parses If(c, a, b) and If(a, b).
func (p *parser) conditional() *syntax.Node {
	n := p.open("BinaryConditionalExpression")
	p.token(n, "")
	p.token(n, "")
	var parts []*syntax.Node
	for {
		p.skipNewlines()
		e := p.expression()
		n.Append("", e)
		parts = append(parts, e)
		p.skipNewlines()
		if !p.at(",") {
			break
		}
		p.token(n, "")
	}
	p.expect(n, ")")
	fields := []string{"first", "second"}
	if len(parts) == 3 {
		n.Kind = "TernaryConditionalExpression"
		fields = []string{"condition", "whenTrue", "whenFalse"}
	}
	for i, c := range parts {
		if i < len(fields) {
			n.SetField(fields[i], c)
		}
	}
	return p.close(n)
}

func (p *parser) newExpression() *syntax.Node {
	n := p.open("ObjectCreationExpression")
	p.token(n, "")
	if p.at("with") {
		n.Kind = "AnonymousObjectCreationExpression"
		n.Append("initializer", p.objectMemberInitializer())
		return p.close(n)
	}
	n.Append("type", p.typeName(false))
	if p.at("(") {
		n.Append("arguments", p.argumentList())
	}
	switch {
	case p.at("{"):
		n.Kind = "ArrayCreationExpression"
		n.Append("initializer", p.collectionInitializer())
	case p.at("with"):
		n.Append("initializer", p.objectMemberInitializer())
	case p.at("from"):
		p.token(n, "")
		n.Append("initializer", p.collectionInitializer())
	}
	return p.close(n)
}

// objectMemberInitializer parses With {.A = x, .B = y}.
func (p *parser) objectMemberInitializer() *syntax.Node {
	n := p.open("ObjectMemberInitializer")
	p.token(n, "")
	p.skipNewlines()
	if !p.expect(n, "{") {
		return p.close(n)
	}
	for {
		p.skipNewlines()
		if p.at("}") || p.cur().kind == tEOF {
			break
		}
		if p.at(".") || p.at("key") && p.peek(1).is(".") {
			f := p.open("NamedFieldInitializer")
			if p.at("key") {
				p.token(f, "")
			}
			p.token(f, "")
			f.Append("name", p.identifier("IdentifierName"))
			p.expect(f, "=")
			p.skipNewlines()
			f.Append("value", p.expression())
			n.Append("", p.close(f))
		} else {
			f := p.open("InferredFieldInitializer")
			before := p.pos
			f.Append("expression", p.expression())
			n.Append("", p.close(f))
			if p.pos == before {
				break
			}
		}
		p.skipNewlines()
		if !p.at(",") {
			break
		}
		p.token(n, "")
	}
	p.expect(n, "}")
	return p.close(n)
}

func (p *parser) collectionInitializer() *syntax.Node {
	n := p.open("CollectionInitializer")
	p.token(n, "")
	for {
		p.skipNewlines()
		if p.at("}") || p.cur().kind == tEOF {
			break
		}
		before := p.pos
		n.Append("", p.expression())
		if p.pos == before {
			break
		}
		p.skipNewlines()
		if !p.at(",") {
			break
		}
		p.token(n, "")
	}
	p.expect(n, "}")
	return p.close(n)
}

// lambda parses single and multi-line Function and Sub lambdas.
func (p *parser) lambda() *syntax.Node {
	n := p.open("")
	for p.at("async") || p.at("iterator") {
		n.Append("", p.leaf("Modifier"))
	}
	word := strings.ToLower(p.cur().text)
	if word != "function" && word != "sub" {
		p.errorf("expected Function or Sub, found %q", p.cur().text)
		return nil
	}
	kind := "Function"
	if word == "sub" {
		kind = "Sub"
	}
	p.token(n, "")
	if p.at("(") {
		n.Append("parameters", p.parameterList())
	}
	if p.at("as") {
		p.token(n, "")
		n.Append("returns", p.typeName(true))
	}
	if p.cur().kind == tNewline && p.cur().text != ":" {
		n.Kind = "MultiLine" + kind + "LambdaExpression"
		p.statements(n)
		p.endBlock(n, word)
		return p.close(n)
	}
	n.Kind = "SingleLine" + kind + "LambdaExpression"
	if kind == "Function" {
		n.Append("body", p.expression())
	} else {
		p.nested++
		n.Append("body", p.statement())
		p.nested--
	}
	return p.close(n)
}

// interpolatedString parses $"..." and the expressions of its holes.
func (p *parser) interpolatedString() *syntax.Node {
	n := p.open("InterpolatedStringExpression")
	t := p.advance()
	src := p.t.Src
	for i := t.start + 2; i < t.end-1; i++ {
		switch {
		case src[i] == '{' && i+1 < t.end && src[i+1] == '{', src[i] == '}' && i+1 < t.end && src[i+1] == '}':
			i++
			continue
		case src[i] != '{':
			continue
		}
		end := holeEnd(src, i+1, t.end-1)
		h := syntax.NewNode("Interpolation", true, i, end)
		exprEnd := holeExpressionEnd(src, i+1, end)
		sub := &parser{t: p.t, toks: lexRange(p.t, i+1, exprEnd)}
		h.Append("expression", sub.expression())
		n.Append("", h)
		i = end - 1
	}
	return p.close(n)
}

// holeEnd returns the offset just past the brace closing the hole whose
// content starts at start.
func holeEnd(src []byte, start, limit int) int {
	depth := 1
	inString := false
	for i := start; i < limit; i++ {
		switch c := src[i]; {
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return limit
}

// holeExpressionEnd returns where the expression of a hole ends, before
// any alignment or format specifier.
func holeExpressionEnd(src []byte, start, end int) int {
	depth := 0
	inString := false
	for i := start; i < end; i++ {
		switch c := src[i]; {
		case c == '"':
			inString = !inString
		case inString:
		case c == '(' || c == '{':
			depth++
		case c == ')':
			depth--
		case c == '}' && depth == 0:
			return i
		case c == '}':
			depth--
		case (c == ',' || c == ':') && depth == 0:
			return i
		}
	}
	return end
}
