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

package csharp

import (
	"go/constant"
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Helper answers syntax queries over trees produced by Parse.
//
// Field names and wrapper nodes of the tree-sitter C# grammar have
// changed between releases (name_equals, equals_value_clause, the
// returns/type field of methods). Each query accepts every shape it
// knows of.
var Helper syntax.Helper = helper{}

type helper struct{}

func (helper) Language() syntax.Language { return syntax.CSharp }

var literalKinds = map[string]bool{
	"boolean_literal":         true,
	"character_literal":       true,
	"integer_literal":         true,
	"null_literal":            true,
	"real_literal":            true,
	"string_literal":          true,
	"verbatim_string_literal": true,
	"raw_string_literal":      true,
}

func (h helper) Classify(n *syntax.Node) syntax.Class {
	if n == nil {
		return syntax.Other
	}
	switch n.Kind {
	case "assignment_expression":
		return syntax.Assignment
	case "attribute_argument":
		return syntax.AttributeArgument
	case "object_creation_expression", "implicit_object_creation_expression":
		return syntax.ObjectCreation
	case "member_access_expression":
		return syntax.MemberAccess
	case "invocation_expression":
		return syntax.Invocation
	case "identifier":
		return syntax.Identifier
	case "return_statement":
		return syntax.Return
	case "method_declaration", "constructor_declaration":
		return syntax.Routine
	case "lambda_expression", "anonymous_method_expression":
		return syntax.Lambda
	}
	if literalKinds[n.Kind] {
		return syntax.Literal
	}
	return syntax.Other
}

// first returns the field if present, otherwise the first child of one of
// the given kinds, otherwise the first named child when no kinds are given.
func first(n *syntax.Node, field string, kinds ...string) *syntax.Node {
	if n == nil {
		return nil
	}
	if f := n.Field(field); f != nil {
		return f
	}
	if len(kinds) > 0 {
		return n.ChildOfKind(kinds...)
	}
	if kids := n.NamedChildren(); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

func last(n *syntax.Node, field string) *syntax.Node {
	if n == nil {
		return nil
	}
	if f := n.Field(field); f != nil {
		return f
	}
	if kids := n.NamedChildren(); len(kids) > 0 {
		return kids[len(kids)-1]
	}
	return nil
}

// namedBefore returns the named child of n immediately preceding tok.
func namedBefore(n, tok *syntax.Node) *syntax.Node {
	var prev *syntax.Node
	for _, c := range n.Children {
		if c == tok {
			return prev
		}
		if c.Named {
			prev = c
		}
	}
	return nil
}

// namedAfter returns the first named child of n following tok.
func namedAfter(n, tok *syntax.Node) *syntax.Node {
	seen := false
	for _, c := range n.Children {
		if c == tok {
			seen = true
			continue
		}
		if seen && c.Named {
			return c
		}
	}
	return nil
}

// Attribute arguments.

func (helper) IsAttributeArgument(n *syntax.Node) bool {
	return n.Is("attribute_argument")
}

func (h helper) AttributeArgumentName(n *syntax.Node) *syntax.Node {
	if !h.IsAttributeArgument(n) {
		return nil
	}
	if ne := n.ChildOfKind("name_equals", "name_colon"); ne != nil {
		return first(ne, "name", "identifier")
	}
	if f := n.Field("name"); f != nil {
		return f
	}
	if tok := n.Token("=", ":"); tok != nil {
		return namedBefore(n, tok)
	}
	// Some grammar versions read a named argument as an assignment.
	if e := last(n, "expression"); e.Is("assignment_expression") {
		return first(e, "left")
	}
	return nil
}

func (h helper) AttributeArgumentValue(n *syntax.Node) *syntax.Node {
	if !h.IsAttributeArgument(n) {
		return nil
	}
	v := last(n, "expression")
	switch {
	case v.Is("name_equals", "name_colon"):
		return nil
	case v.Is("assignment_expression") && n.ChildOfKind("name_equals", "name_colon") == nil && n.Token("=", ":") == nil:
		return last(v, "right")
	}
	return v
}

// Assignments.

func (helper) IsAssignment(n *syntax.Node) bool {
	return n.Is("assignment_expression")
}

func (h helper) AssignmentOperator(n *syntax.Node) syntax.AssignOp {
	if !h.IsAssignment(n) {
		return syntax.NoAssign
	}
	var op string
	switch {
	case n.Field("operator") != nil:
		op = n.Field("operator").Text()
	case n.ChildOfKind("assignment_operator") != nil:
		op = n.ChildOfKind("assignment_operator").Text()
	default:
		for _, c := range n.Children {
			if !c.Named && strings.HasSuffix(c.Text(), "=") {
				op = c.Text()
				break
			}
		}
	}
	switch op {
	case "=":
		return syntax.SimpleAssign
	case "+=":
		return syntax.AddAssign
	case "":
		return syntax.NoAssign
	}
	return syntax.OtherAssign
}

func (h helper) AssignmentTarget(n *syntax.Node) *syntax.Node {
	if !h.IsAssignment(n) {
		return nil
	}
	return first(n, "left")
}

func (h helper) AssignmentValue(n *syntax.Node) *syntax.Node {
	if !h.IsAssignment(n) {
		return nil
	}
	return last(n, "right")
}

// Object creation.

func (helper) IsObjectCreation(n *syntax.Node) bool {
	return n.Is("object_creation_expression", "implicit_object_creation_expression")
}

func (h helper) ObjectCreationType(n *syntax.Node) *syntax.Node {
	if !n.Is("object_creation_expression") {
		return nil
	}
	if t := n.Field("type"); t != nil {
		return t
	}
	for _, c := range n.NamedChildren() {
		if !c.Is("argument_list", "initializer_expression") {
			return c
		}
	}
	return nil
}

func (h helper) ObjectCreationArguments(n *syntax.Node) []*syntax.Node {
	if !h.IsObjectCreation(n) {
		return nil
	}
	return arguments(first(n, "arguments", "argument_list"))
}

func (h helper) ObjectCreationInitializers(n *syntax.Node) []*syntax.Node {
	if !h.IsObjectCreation(n) {
		return nil
	}
	init := first(n, "initializer", "initializer_expression")
	return init.ChildrenOfKind("assignment_expression")
}

func arguments(list *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, a := range list.ChildrenOfKind("argument") {
		if e := argumentExpression(a); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func argumentExpression(a *syntax.Node) *syntax.Node {
	if f := a.Field("expression"); f != nil {
		return f
	}
	kids := a.NamedChildren()
	for i := len(kids) - 1; i >= 0; i-- {
		if !kids[i].Is("name_colon") {
			return kids[i]
		}
	}
	return nil
}

// Member access.

func (helper) IsSimpleMemberAccess(n *syntax.Node) bool {
	return n.Is("member_access_expression") && n.Token("->") == nil
}

func (h helper) MemberAccessExpression(n *syntax.Node) *syntax.Node {
	if !n.Is("member_access_expression") {
		return nil
	}
	return first(n, "expression")
}

func (h helper) MemberAccessName(n *syntax.Node) *syntax.Node {
	if !n.Is("member_access_expression") {
		return nil
	}
	return last(n, "name")
}

// Expressions.

func (helper) InvocationTarget(n *syntax.Node) *syntax.Node {
	if !n.Is("invocation_expression") {
		return nil
	}
	return first(n, "function")
}

func (helper) InvocationArguments(n *syntax.Node) []*syntax.Node {
	if !n.Is("invocation_expression") {
		return nil
	}
	return arguments(first(n, "arguments", "argument_list"))
}

func (helper) Identifier(n *syntax.Node) (string, bool) {
	switch {
	case n.Is("identifier"):
		return strings.TrimPrefix(n.Text(), "@"), true
	case n.Is("generic_name"):
		if id := n.ChildOfKind("identifier"); id != nil {
			return strings.TrimPrefix(id.Text(), "@"), true
		}
	}
	return "", false
}

func (helper) Literal(n *syntax.Node) (constant.Value, bool) {
	if n == nil || !literalKinds[n.Kind] {
		return nil, false
	}
	return literalValue(n.Kind, n.Text())
}

var binaryOps = map[string]syntax.BinaryOp{
	"+":  syntax.Add,
	"|":  syntax.BitOr,
	"&":  syntax.BitAnd,
	"^":  syntax.Arithmetic,
	"&&": syntax.Logical,
	"||": syntax.Logical,
	"==": syntax.Compare,
	"!=": syntax.Compare,
	"<":  syntax.Compare,
	">":  syntax.Compare,
	"<=": syntax.Compare,
	">=": syntax.Compare,
	"??": syntax.Coalesce,
}

func (helper) Binary(n *syntax.Node) (syntax.BinaryOp, *syntax.Node, *syntax.Node) {
	if !n.Is("binary_expression") {
		return syntax.NoBinary, nil, nil
	}
	var op string
	if f := n.Field("operator"); f != nil {
		op = f.Text()
	} else {
		for _, c := range n.Children {
			if !c.Named {
				op = c.Text()
				break
			}
		}
	}
	kind, ok := binaryOps[op]
	if !ok {
		kind = syntax.Arithmetic
	}
	return kind, first(n, "left"), last(n, "right")
}

func (helper) Unary(n *syntax.Node) (syntax.UnaryOp, *syntax.Node) {
	switch {
	case n.Is("await_expression"):
		return syntax.Await, last(n, "expression")
	case n.Is("prefix_unary_expression"):
		operand := last(n, "operand")
		switch {
		case n.Token("-") != nil:
			return syntax.Negate, operand
		case n.Token("+") != nil:
			return syntax.Plus, operand
		case n.Token("!") != nil:
			return syntax.Not, operand
		}
	}
	return syntax.NoUnary, nil
}

func (helper) Paren(n *syntax.Node) *syntax.Node {
	if !n.Is("parenthesized_expression") {
		return nil
	}
	return first(n, "expression")
}

func (helper) Cast(n *syntax.Node) (*syntax.Node, *syntax.Node) {
	switch {
	case n.Is("cast_expression"):
		return first(n, "type"), last(n, "value")
	case n.Is("as_expression"):
		return last(n, "right"), first(n, "left")
	}
	return nil, nil
}

func (helper) Conditional(n *syntax.Node) (*syntax.Node, *syntax.Node, *syntax.Node) {
	if !n.Is("conditional_expression") {
		return nil, nil, nil
	}
	kids := n.NamedChildren()
	pick := func(field string, i int) *syntax.Node {
		if f := n.Field(field); f != nil {
			return f
		}
		if i < len(kids) {
			return kids[i]
		}
		return nil
	}
	return pick("condition", 0), pick("consequence", 1), pick("alternative", 2)
}

func (helper) IsLambda(n *syntax.Node) bool {
	return n.Is("lambda_expression", "anonymous_method_expression")
}

func (helper) IsSelf(n *syntax.Node) bool {
	return n.Is("this_expression", "this")
}

func (helper) IsBase(n *syntax.Node) bool {
	return n.Is("base_expression", "base")
}

func (helper) ImplicitReceiver(*syntax.Node) *syntax.Node { return nil }

func (h helper) TypeArguments(n *syntax.Node) []*syntax.Node {
	switch {
	case n.Is("qualified_name"):
		return h.TypeArguments(last(n, "name"))
	case n.Is("generic_name"):
		return first(n, "type_arguments", "type_argument_list").NamedChildren()
	}
	return nil
}

func (h helper) TypeName(n *syntax.Node) (syntax.TypeName, bool) {
	if n == nil {
		return syntax.TypeName{}, false
	}
	switch n.Kind {
	case "identifier", "generic_name":
		name, ok := h.Identifier(n)
		return syntax.TypeName{Name: name}, ok
	case "predefined_type":
		return syntax.TypeName{Name: n.Text()}, true
	case "implicit_type":
		return syntax.TypeName{Name: "var"}, true
	case "qualified_name", "alias_qualified_name", "member_access_expression":
		kids := n.NamedChildren()
		if len(kids) < 2 {
			return syntax.TypeName{}, false
		}
		left, ok := h.TypeName(first(n, "qualifier", "identifier", "qualified_name", "generic_name", "alias_qualified_name", "member_access_expression"))
		if n.Kind == "member_access_expression" {
			left, ok = h.TypeName(h.MemberAccessExpression(n))
		}
		right, ok2 := h.TypeName(last(n, "name"))
		if !ok || !ok2 {
			return syntax.TypeName{}, false
		}
		if left.Name == "global" {
			return right, true
		}
		return syntax.TypeName{Name: left.Name + "." + right.Name}, true
	case "array_type":
		elem, ok := h.TypeName(first(n, "type"))
		elem.Array = true
		return elem, ok
	case "nullable_type":
		return h.TypeName(first(n, "type"))
	}
	return syntax.TypeName{}, false
}
