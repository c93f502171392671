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

package semantic

import (
	"go/constant"
	"go/token"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// TypeOf returns the static type of the expression n, or nil if it is
// unknown. Locals declared without a type take the type of their
// initializer.
func (m *Model) TypeOf(n *syntax.Node) *Symbol {
	return m.typeOf(n, 0)
}

func (m *Model) typeOf(n *syntax.Node, depth int) *Symbol {
	if n == nil || depth > maxDepth {
		return nil
	}
	h := m.h
	if v, ok := h.Literal(n); ok {
		return m.literalType(v)
	}
	if inner := h.Paren(n); inner != nil {
		return m.typeOf(inner, depth+1)
	}
	if typ, _ := h.Cast(n); typ != nil {
		return m.resolveTypeAt(n, typ, false)
	}
	if _, then, _ := h.Conditional(n); then != nil {
		return m.typeOf(then, depth+1)
	}
	if op, l, r := h.Binary(n); op != syntax.NoBinary {
		switch op {
		case syntax.Concat:
			return m.u.LookupType("System.String")
		case syntax.Compare, syntax.Logical:
			return m.u.LookupType("System.Boolean")
		case syntax.Add:
			lt, rt := m.typeOf(l, depth+1), m.typeOf(r, depth+1)
			if str := m.u.LookupType("System.String"); lt == str || rt == str {
				return str
			}
			return lt
		}
		return m.typeOf(l, depth+1)
	}
	if op, x := h.Unary(n); op != syntax.NoUnary {
		if op == syntax.Await {
			return nil
		}
		return m.typeOf(x, depth+1)
	}
	switch {
	case h.IsSelf(n):
		return m.enclosingType(n)
	case h.IsBase(n):
		if t := m.enclosingType(n); t != nil && len(t.Bases) > 0 {
			return t.Bases[0]
		}
		return nil
	case h.IsLambda(n):
		return nil
	case h.IsObjectCreation(n):
		return m.createdType(n)
	}

	sym := m.resolve(n, depth+1)
	switch {
	case sym == nil:
		return nil
	case sym.Kind == Method:
		// Visual Basic calls a method named without arguments.
		if h.Classify(n) == syntax.Invocation || m.lang.CaseInsensitive() {
			return sym.Type
		}
	case sym.Kind.IsValue():
		if h.Classify(n) == syntax.Invocation {
			// An index into the value.
			return nil
		}
		return m.valueType(sym, depth+1)
	}
	return nil
}

// valueType returns the type of a variable, inferring it from the
// initializer when no type is declared.
func (m *Model) valueType(sym *Symbol, depth int) *Symbol {
	if sym.Type != nil {
		return sym.Type
	}
	if sym.valueNode == nil {
		return nil
	}
	return m.typeOf(sym.valueNode, depth+1)
}

func (m *Model) literalType(v constant.Value) *Symbol {
	switch v.Kind() {
	case constant.String:
		return m.u.LookupType("System.String")
	case constant.Bool:
		return m.u.LookupType("System.Boolean")
	case constant.Int:
		return m.u.LookupType("System.Int32")
	case constant.Float:
		return m.u.LookupType("System.Double")
	}
	return nil
}

// ConstantValue folds the compile-time constant n evaluates to, or
// returns nil if it is not a constant. Enum members fold to their integer
// values.
func (m *Model) ConstantValue(n *syntax.Node) constant.Value {
	return m.constant(n, 0)
}

func (m *Model) constant(n *syntax.Node, depth int) constant.Value {
	if n == nil || depth > maxDepth {
		return nil
	}
	h := m.h
	if v, ok := h.Literal(n); ok {
		return v
	}
	if inner := h.Paren(n); inner != nil {
		return m.constant(inner, depth+1)
	}
	if _, x := h.Cast(n); x != nil {
		return m.constant(x, depth+1)
	}
	if op, x := h.Unary(n); op != syntax.NoUnary {
		return unaryConstant(op, m.constant(x, depth+1))
	}
	if op, l, r := h.Binary(n); op != syntax.NoBinary {
		lv := m.constant(l, depth+1)
		if lv == nil {
			return nil
		}
		return binaryConstant(op, lv, m.constant(r, depth+1))
	}
	if sym := m.resolve(n, depth+1); sym != nil {
		return sym.Constant
	}
	return nil
}

func unaryConstant(op syntax.UnaryOp, v constant.Value) constant.Value {
	if v == nil {
		return nil
	}
	switch {
	case op == syntax.Plus && numeric(v):
		return v
	case op == syntax.Negate && numeric(v):
		return constant.UnaryOp(token.SUB, v, 0)
	case op == syntax.Not && v.Kind() == constant.Bool:
		return constant.UnaryOp(token.NOT, v, 0)
	case op == syntax.Not && v.Kind() == constant.Int:
		return constant.UnaryOp(token.XOR, v, 0)
	}
	return nil
}

func binaryConstant(op syntax.BinaryOp, l, r constant.Value) constant.Value {
	if r == nil {
		return nil
	}
	lk, rk := l.Kind(), r.Kind()
	switch op {
	case syntax.BitOr, syntax.BitAnd:
		tok := token.AND
		if op == syntax.BitOr {
			tok = token.OR
		}
		switch {
		case lk == constant.Int && rk == constant.Int:
			return constant.BinaryOp(l, tok, r)
		case lk == constant.Bool && rk == constant.Bool:
			if op == syntax.BitOr {
				return constant.MakeBool(constant.BoolVal(l) || constant.BoolVal(r))
			}
			return constant.MakeBool(constant.BoolVal(l) && constant.BoolVal(r))
		}
	case syntax.Add:
		if lk == constant.String && rk == constant.String || numeric(l) && numeric(r) {
			return constant.BinaryOp(l, token.ADD, r)
		}
	case syntax.Concat:
		return constant.MakeString(text(l) + text(r))
	}
	return nil
}

func numeric(v constant.Value) bool {
	return v.Kind() == constant.Int || v.Kind() == constant.Float
}

// text is the string a constant converts to when concatenated.
func text(v constant.Value) string {
	switch v.Kind() {
	case constant.String:
		return constant.StringVal(v)
	case constant.Bool:
		if constant.BoolVal(v) {
			return "True"
		}
		return "False"
	}
	return v.ExactString()
}
