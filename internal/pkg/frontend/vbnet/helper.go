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
	"go/constant"
	"strings"

	"github.com/google/netlevee/internal/pkg/syntax"
)

// Helper answers syntax queries over trees produced by Parse.
var Helper syntax.Helper = helper{}

type helper struct{}

func (helper) Language() syntax.Language { return syntax.VisualBasic }

var literalKinds = map[string]bool{
	"CharacterLiteralExpression": true,
	"DateLiteralExpression":      true,
	"FalseLiteralExpression":     true,
	"NothingLiteralExpression":   true,
	"NumericLiteralExpression":   true,
	"StringLiteralExpression":    true,
	"TrueLiteralExpression":      true,
}

var routineKinds = []string{"FunctionBlock", "SubBlock", "ConstructorBlock", "FunctionStatement", "SubStatement"}

var lambdaKinds = []string{
	"SingleLineFunctionLambdaExpression",
	"SingleLineSubLambdaExpression",
	"MultiLineFunctionLambdaExpression",
	"MultiLineSubLambdaExpression",
}

func (h helper) Classify(n *syntax.Node) syntax.Class {
	switch {
	case n == nil:
		return syntax.Other
	case h.IsAssignment(n):
		return syntax.Assignment
	case h.IsAttributeArgument(n):
		return syntax.AttributeArgument
	case h.IsObjectCreation(n):
		return syntax.ObjectCreation
	case n.Is("SimpleMemberAccessExpression", "ConditionalAccessExpression"):
		return syntax.MemberAccess
	case n.Is("InvocationExpression"):
		return syntax.Invocation
	case literalKinds[n.Kind]:
		return syntax.Literal
	case n.Is("IdentifierName", "Identifier"):
		return syntax.Identifier
	case n.Is("ReturnStatement"):
		return syntax.Return
	case n.Is(routineKinds...):
		return syntax.Routine
	case n.Is(lambdaKinds...):
		return syntax.Lambda
	}
	return syntax.Other
}

// Attribute arguments.

func (helper) IsAttributeArgument(n *syntax.Node) bool {
	return n.Is("SimpleArgument") && n.Parent.Is("ArgumentList") && n.Parent.Parent.Is("Attribute")
}

func (h helper) AttributeArgumentName(n *syntax.Node) *syntax.Node {
	if !h.IsAttributeArgument(n) {
		return nil
	}
	return n.Field("name")
}

func (h helper) AttributeArgumentValue(n *syntax.Node) *syntax.Node {
	if !h.IsAttributeArgument(n) {
		return nil
	}
	return n.Field("value")
}

// Assignments.

func (helper) IsAssignment(n *syntax.Node) bool {
	return n != nil && (strings.HasSuffix(n.Kind, "AssignmentStatement") || n.Kind == "NamedFieldInitializer")
}

func (h helper) AssignmentOperator(n *syntax.Node) syntax.AssignOp {
	switch {
	case !h.IsAssignment(n):
		return syntax.NoAssign
	case n.Is("SimpleAssignmentStatement", "NamedFieldInitializer"):
		return syntax.SimpleAssign
	case n.Is("AddAssignmentStatement"):
		return syntax.AddAssign
	}
	return syntax.OtherAssign
}

func (h helper) AssignmentTarget(n *syntax.Node) *syntax.Node {
	switch {
	case n.Is("NamedFieldInitializer"):
		return n.Field("name")
	case h.IsAssignment(n):
		return n.Field("left")
	}
	return nil
}

func (h helper) AssignmentValue(n *syntax.Node) *syntax.Node {
	switch {
	case n.Is("NamedFieldInitializer"):
		return n.Field("value")
	case h.IsAssignment(n):
		return n.Field("right")
	}
	return nil
}

// Object creation.

func (helper) IsObjectCreation(n *syntax.Node) bool {
	return n.Is("ObjectCreationExpression")
}

func (h helper) ObjectCreationType(n *syntax.Node) *syntax.Node {
	if !h.IsObjectCreation(n) {
		return nil
	}
	return n.Field("type")
}

func (h helper) ObjectCreationArguments(n *syntax.Node) []*syntax.Node {
	if !h.IsObjectCreation(n) {
		return nil
	}
	return arguments(n.Field("arguments"))
}

func (h helper) ObjectCreationInitializers(n *syntax.Node) []*syntax.Node {
	if !h.IsObjectCreation(n) {
		return nil
	}
	return n.Field("initializer").ChildrenOfKind("NamedFieldInitializer")
}

// arguments returns the values of the arguments in list, skipping omitted
// ones.
func arguments(list *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, a := range list.ChildrenOfKind("SimpleArgument", "RangeArgument") {
		if v := a.Field("value"); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Member access.

func (helper) IsSimpleMemberAccess(n *syntax.Node) bool {
	return n.Is("SimpleMemberAccessExpression") && n.Field("expression") != nil
}

func (helper) MemberAccessExpression(n *syntax.Node) *syntax.Node {
	if !n.Is("SimpleMemberAccessExpression", "ConditionalAccessExpression") {
		return nil
	}
	return n.Field("expression")
}

func (helper) MemberAccessName(n *syntax.Node) *syntax.Node {
	if !n.Is("SimpleMemberAccessExpression", "ConditionalAccessExpression") {
		return nil
	}
	return n.Field("name")
}

// Expressions.

func (helper) InvocationTarget(n *syntax.Node) *syntax.Node {
	if !n.Is("InvocationExpression") {
		return nil
	}
	return n.Field("expression")
}

func (helper) InvocationArguments(n *syntax.Node) []*syntax.Node {
	if !n.Is("InvocationExpression") {
		return nil
	}
	return arguments(n.Field("arguments"))
}

// unescape returns the identifier spelled by text, without brackets or
// type character.
func unescape(text string) string {
	if strings.HasPrefix(text, "[") {
		return strings.TrimSuffix(text[1:], "]")
	}
	return strings.TrimRight(text, "$%!#@")
}

func (h helper) Identifier(n *syntax.Node) (string, bool) {
	switch {
	case n.Is("IdentifierName", "Identifier"):
		return unescape(n.Text()), true
	case n.Is("GenericName"):
		return h.Identifier(n.Field("name"))
	case n.Is("ModifiedIdentifier"):
		return h.Identifier(n.Field("identifier"))
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
	"AddExpression":                syntax.Add,
	"AndAlsoExpression":            syntax.Logical,
	"AndExpression":                syntax.BitAnd,
	"ConcatenateExpression":        syntax.Concat,
	"EqualsExpression":             syntax.Compare,
	"GreaterThanExpression":        syntax.Compare,
	"GreaterThanOrEqualExpression": syntax.Compare,
	"IsExpression":                 syntax.Compare,
	"IsNotExpression":              syntax.Compare,
	"LessThanExpression":           syntax.Compare,
	"LessThanOrEqualExpression":    syntax.Compare,
	"LikeExpression":               syntax.Compare,
	"NotEqualsExpression":          syntax.Compare,
	"OrElseExpression":             syntax.Logical,
	"OrExpression":                 syntax.BitOr,
}

var arithmetic = map[string]bool{
	"DivideExpression":        true,
	"ExclusiveOrExpression":   true,
	"ExponentiateExpression":  true,
	"IntegerDivideExpression": true,
	"LeftShiftExpression":     true,
	"ModuloExpression":        true,
	"MultiplyExpression":      true,
	"RightShiftExpression":    true,
	"SubtractExpression":      true,
}

func (helper) Binary(n *syntax.Node) (syntax.BinaryOp, *syntax.Node, *syntax.Node) {
	switch {
	case n == nil:
	case n.Kind == "BinaryConditionalExpression":
		return syntax.Coalesce, n.Field("first"), n.Field("second")
	case binaryOps[n.Kind] != syntax.NoBinary:
		return binaryOps[n.Kind], n.Field("left"), n.Field("right")
	case arithmetic[n.Kind]:
		return syntax.Arithmetic, n.Field("left"), n.Field("right")
	}
	return syntax.NoBinary, nil, nil
}

var unaryOps = map[string]syntax.UnaryOp{
	"AwaitExpression":      syntax.Await,
	"NotExpression":        syntax.Not,
	"UnaryMinusExpression": syntax.Negate,
	"UnaryPlusExpression":  syntax.Plus,
}

func (helper) Unary(n *syntax.Node) (syntax.UnaryOp, *syntax.Node) {
	if n == nil || unaryOps[n.Kind] == syntax.NoUnary {
		return syntax.NoUnary, nil
	}
	return unaryOps[n.Kind], n.Field("operand")
}

func (helper) Paren(n *syntax.Node) *syntax.Node {
	if !n.Is("ParenthesizedExpression") {
		return nil
	}
	return n.Field("expression")
}

func (helper) Cast(n *syntax.Node) (*syntax.Node, *syntax.Node) {
	switch {
	case n.Is("CTypeExpression", "DirectCastExpression", "TryCastExpression"):
		return n.Field("type"), n.Field("expression")
	case n.Is("PredefinedCastExpression"):
		return n.Field("keyword"), n.Field("expression")
	}
	return nil, nil
}

func (helper) Conditional(n *syntax.Node) (*syntax.Node, *syntax.Node, *syntax.Node) {
	if !n.Is("TernaryConditionalExpression") {
		return nil, nil, nil
	}
	return n.Field("condition"), n.Field("whenTrue"), n.Field("whenFalse")
}

func (helper) IsLambda(n *syntax.Node) bool {
	return n.Is(lambdaKinds...)
}

func (helper) IsSelf(n *syntax.Node) bool {
	return n.Is("MeExpression", "MyClassExpression")
}

func (helper) IsBase(n *syntax.Node) bool {
	return n.Is("MyBaseExpression")
}

func (helper) ImplicitReceiver(n *syntax.Node) *syntax.Node {
	if !n.Is("SimpleMemberAccessExpression", "ConditionalAccessExpression") || n.Field("expression") != nil {
		return nil
	}
	return n.Ancestor("WithBlock").Field("expression")
}

func (h helper) TypeArguments(n *syntax.Node) []*syntax.Node {
	switch {
	case n.Is("QualifiedName"):
		return h.TypeArguments(n.Field("right"))
	case n.Is("GenericName"):
		return n.Field("arguments").NamedChildren()
	}
	return nil
}

func (h helper) TypeName(n *syntax.Node) (syntax.TypeName, bool) {
	if n == nil {
		return syntax.TypeName{}, false
	}
	switch n.Kind {
	case "IdentifierName", "GenericName":
		name, ok := h.Identifier(n)
		return syntax.TypeName{Name: name}, ok
	case "PredefinedType":
		name, ok := predefinedTypes[strings.ToLower(n.Text())]
		return syntax.TypeName{Name: name}, ok
	case "PredefinedCastKeyword":
		name, ok := predefinedCasts[strings.ToLower(n.Text())]
		return syntax.TypeName{Name: name}, ok
	case "QualifiedName", "SimpleMemberAccessExpression":
		var left, right *syntax.Node
		if n.Kind == "QualifiedName" {
			left, right = n.Field("left"), n.Field("right")
		} else {
			left, right = n.Field("expression"), n.Field("name")
		}
		r, ok := h.TypeName(right)
		if !ok {
			return syntax.TypeName{}, false
		}
		if left.Is("GlobalName") {
			return r, true
		}
		l, ok := h.TypeName(left)
		if !ok {
			return syntax.TypeName{}, false
		}
		return syntax.TypeName{Name: l.Name + "." + r.Name}, true
	case "ArrayType":
		elem, ok := h.TypeName(n.Field("elementType"))
		elem.Array = true
		return elem, ok
	case "NullableType":
		return h.TypeName(n.Field("elementType"))
	}
	return syntax.TypeName{}, false
}
