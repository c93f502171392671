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

import "go/constant"

// Class is the abstract category of a node, independent of grammar.
type Class int

const (
	Other Class = iota
	Assignment
	AttributeArgument
	ObjectCreation
	MemberAccess
	Invocation
	Literal
	Identifier
	Return
	Routine
	Lambda
)

var classNames = [...]string{
	Other:             "other",
	Assignment:        "assignment",
	AttributeArgument: "attribute-argument",
	ObjectCreation:    "object-creation",
	MemberAccess:      "member-access",
	Invocation:        "invocation",
	Literal:           "literal",
	Identifier:        "identifier",
	Return:            "return",
	Routine:           "routine",
	Lambda:            "lambda",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "other"
}

// AssignOp is the operator of an assignment.
type AssignOp int

const (
	NoAssign AssignOp = iota
	SimpleAssign
	AddAssign
	OtherAssign
)

// BinaryOp is the abstract operator of a binary expression.
type BinaryOp int

const (
	NoBinary BinaryOp = iota
	Concat            // VB &
	Add               // +, which is also string concatenation
	BitOr             // | and VB Or
	BitAnd            // & and VB And
	Logical           // &&, ||, AndAlso, OrElse
	Compare           // equality and relational operators
	Arithmetic        // -, *, /, %, Mod, shifts
	Coalesce          // ??
)

// UnaryOp is the abstract operator of a unary expression.
type UnaryOp int

const (
	NoUnary UnaryOp = iota
	Negate
	Plus
	Not
	Await
)

// Accessibility is the declared or default accessibility of a declaration.
type Accessibility int

const (
	NotApplicable Accessibility = iota
	Private
	ProtectedAndInternal
	Protected
	Internal
	ProtectedOrInternal
	Public
)

func (a Accessibility) String() string {
	switch a {
	case Private:
		return "private"
	case ProtectedAndInternal:
		return "private protected"
	case Protected:
		return "protected"
	case Internal:
		return "internal"
	case ProtectedOrInternal:
		return "protected internal"
	case Public:
		return "public"
	}
	return ""
}

// TypeKind is the kind of a type declaration.
type TypeKind int

const (
	NotAType TypeKind = iota
	ClassKind
	StructKind
	InterfaceKind
	EnumKind
	ModuleKind
	DelegateKind
)

// Import is a namespace import or alias at the top of a file.
type Import struct {
	Alias  string
	Name   *Node
	Static bool
}

// TypeDecl describes a type declaration.
type TypeDecl struct {
	Name  *Node
	Kind  TypeKind
	Bases []*Node
}

// RoutineDecl describes a method, constructor or accessor body.
// Returns is nil when the routine declares no return type; Void is set
// when it explicitly returns nothing.
type RoutineDecl struct {
	Name        *Node
	Returns     *Node
	Void        bool
	Constructor bool
	Params      []*Node
	Body        *Node
	Expr        *Node
}

// Declarator is a variable introduced by a field, property, local
// declaration or loop header. Value is the initializer, if any.
type Declarator struct {
	Name  *Node
	Type  *Node
	Value *Node
}

// TypeName is the decomposed spelling of a type reference.
type TypeName struct {
	Name  string // dotted, unescaped, without type arguments
	Array bool
}

// Queries is the contract the rule analyzers use to classify a node and
// extract its operands. Every query answers nil or false when the node
// does not have the expected shape.
type Queries interface {
	IsAttributeArgument(n *Node) bool
	AttributeArgumentName(n *Node) *Node
	AttributeArgumentValue(n *Node) *Node

	IsAssignment(n *Node) bool
	AssignmentOperator(n *Node) AssignOp
	AssignmentTarget(n *Node) *Node
	AssignmentValue(n *Node) *Node

	IsObjectCreation(n *Node) bool
	ObjectCreationType(n *Node) *Node
	ObjectCreationArguments(n *Node) []*Node
	ObjectCreationInitializers(n *Node) []*Node

	IsSimpleMemberAccess(n *Node) bool
	MemberAccessExpression(n *Node) *Node
	MemberAccessName(n *Node) *Node
}

// Expressions decomposes expressions.
type Expressions interface {
	InvocationTarget(n *Node) *Node
	InvocationArguments(n *Node) []*Node
	// Identifier returns the unescaped name of a simple name node.
	Identifier(n *Node) (string, bool)
	// Literal returns the value of a literal; null literals report false.
	Literal(n *Node) (constant.Value, bool)
	Binary(n *Node) (op BinaryOp, left, right *Node)
	Unary(n *Node) (op UnaryOp, operand *Node)
	Paren(n *Node) *Node
	Cast(n *Node) (typ, operand *Node)
	Conditional(n *Node) (cond, then, els *Node)
	IsLambda(n *Node) bool
	IsSelf(n *Node) bool
	IsBase(n *Node) bool
	// ImplicitReceiver returns the expression a member access written
	// without a receiver binds to, such as the subject of a With block.
	ImplicitReceiver(n *Node) *Node
	TypeName(n *Node) (TypeName, bool)
	// TypeArguments returns the type arguments of a generic type
	// reference, as in List<T> or Task(Of String).
	TypeArguments(n *Node) []*Node
}

// Declarations decomposes declarations.
type Declarations interface {
	Imports(root *Node) []Import
	IsNamespace(n *Node) bool
	NamespaceName(n *Node) *Node
	IsTypeDeclaration(n *Node) bool
	TypeDeclaration(n *Node) TypeDecl
	EnumMembers(n *Node) []Declarator
	IsRoutine(n *Node) bool
	Routine(n *Node) RoutineDecl
	Parameter(n *Node) Declarator
	// MemberDeclarators returns the variables declared by a field or
	// property declaration.
	MemberDeclarators(n *Node) []Declarator
	IsProperty(n *Node) bool
	IsConstant(n *Node) bool
	Attributes(n *Node) []*Node
	AttributeName(n *Node) *Node
	AttributeArguments(n *Node) []*Node
	Modifiers(n *Node) []string
	Accessibility(n *Node) Accessibility
	IsStatic(n *Node) bool
}

// Statements decomposes routine bodies.
type Statements interface {
	// Statements returns the statements of a body in lexical order,
	// descending into nested blocks but not into lambdas.
	Statements(body *Node) []*Node
	// Declarators returns the locals a statement introduces.
	Declarators(stmt *Node) []Declarator
	IsReturn(stmt *Node) bool
	ReturnValue(stmt *Node) *Node
	// Expressions returns the expressions a statement evaluates itself,
	// excluding those of nested statements.
	Expressions(stmt *Node) []*Node
}

// Helper is implemented once per grammar.
type Helper interface {
	Language() Language
	Classify(n *Node) Class

	Queries
	Expressions
	Declarations
	Statements
}
