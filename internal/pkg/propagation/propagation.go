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

// Package propagation tracks attacker-influenced values through the
// statements of one routine body.
//
// The pass is a single forward walk over the statements in lexical order.
// It is not branch sensitive: the last assignment to a variable, in source
// order, decides its state.
package propagation

import (
	"context"
	"strings"

	"github.com/google/netlevee/internal/pkg/semantic"
	"github.com/google/netlevee/internal/pkg/syntax"
)

// maxDepth bounds the recursion into nested expressions.
const maxDepth = 64

// Fact is the taint state of a variable or expression.
type Fact struct {
	Tainted bool
	// Origin is the declaration the taint was seeded from.
	Origin *syntax.Node
}

func (f Fact) or(g Fact) Fact {
	if f.Tainted {
		return f
	}
	return g
}

// State holds the facts of one routine body. It must not be shared
// between routines.
type State struct {
	facts map[interface{}]Fact
}

// NewState returns an empty state.
func NewState() *State {
	return &State{facts: map[interface{}]Fact{}}
}

// Len returns the number of facts recorded.
func (st *State) Len() int {
	return len(st.facts)
}

// Engine evaluates taint against the semantic model of one language.
// An Engine holds no per-routine state and may be shared.
type Engine struct {
	Model *semantic.Model
	// IsSanitizer identifies calls whose result is never tainted.
	IsSanitizer func(*semantic.Symbol) bool
}

// Seed marks the variable declared by name as tainted.
func (e *Engine) Seed(st *State, name *syntax.Node) bool {
	sym := e.Model.DeclaredSymbol(name)
	if sym == nil {
		return false
	}
	st.facts[sym] = Fact{Tainted: true, Origin: name}
	return true
}

// Run walks the statements of body in lexical order. visit, if not nil,
// is called for each statement before the statement takes effect.
func (e *Engine) Run(ctx context.Context, st *State, body *syntax.Node, visit func(stmt *syntax.Node)) error {
	for _, stmt := range e.Model.Helper().Statements(body) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if visit != nil {
			visit(stmt)
		}
		e.Apply(st, stmt)
	}
	return nil
}

// Apply records the effects of one statement: declarations, assignments
// and calls that taint their receiver.
func (e *Engine) Apply(st *State, stmt *syntax.Node) {
	h := e.Model.Helper()
	for _, d := range h.Declarators(stmt) {
		if d.Value == nil {
			continue
		}
		if sym := e.Model.DeclaredSymbol(d.Name); sym != nil {
			st.facts[sym] = e.Evaluate(st, d.Value)
		}
	}
	for _, x := range h.Expressions(stmt) {
		e.effects(st, x)
	}
}

func (e *Engine) effects(st *State, root *syntax.Node) {
	h := e.Model.Helper()
	syntax.Inspect(root, func(n *syntax.Node) bool {
		switch h.Classify(n) {
		case syntax.Lambda:
			return false
		case syntax.Assignment:
			if !e.initializes(n, root) {
				e.assign(st, n)
			}
		case syntax.Invocation:
			e.callEffects(st, n)
		}
		return true
	})
}

// initializes reports whether the assignment a sets a member of an object
// being created, rather than a variable.
func (e *Engine) initializes(a, root *syntax.Node) bool {
	h := e.Model.Helper()
	for p := a.Parent; p != nil && p != root.Parent; p = p.Parent {
		if h.IsObjectCreation(p) {
			return true
		}
	}
	return false
}

func (e *Engine) assign(st *State, a *syntax.Node) {
	h := e.Model.Helper()
	target, value := h.AssignmentTarget(a), h.AssignmentValue(a)
	if target == nil || value == nil {
		return
	}
	f := e.Evaluate(st, value)
	if h.AssignmentOperator(a) != syntax.SimpleAssign {
		f = e.Evaluate(st, target).or(f)
	}
	st.facts[e.key(target)] = f
}

func (e *Engine) callEffects(st *State, call *syntax.Node) {
	s, ok := summaryOf(e.Model.ResolveSymbol(call))
	if !ok || !s.taintsReceiver {
		return
	}
	h := e.Model.Helper()
	recv := e.receiver(h.InvocationTarget(call))
	if recv == nil || e.isStatic(recv) {
		return
	}
	f := e.inputs(st, s, recv, call, 0)
	if !f.Tainted {
		return
	}
	// sb.Append(a).Append(b) taints sb.
	for h.Classify(recv) == syntax.Invocation {
		inner, ok := summaryOf(e.Model.ResolveSymbol(recv))
		next := e.receiver(h.InvocationTarget(recv))
		if !ok || !inner.returnsReceiver || next == nil || e.isStatic(next) {
			break
		}
		recv = next
	}
	st.facts[e.key(recv)] = f
}

// Lookup returns the fact recorded for the variable or member n refers to.
func (e *Engine) Lookup(st *State, n *syntax.Node) (Fact, bool) {
	f, ok := st.facts[e.key(n)]
	return f, ok
}

// Evaluate computes the taint of the expression n in state st.
func (e *Engine) Evaluate(st *State, n *syntax.Node) Fact {
	return e.eval(st, n, 0)
}

func (e *Engine) eval(st *State, n *syntax.Node, depth int) Fact {
	if n == nil || depth > maxDepth {
		return Fact{}
	}
	h := e.Model.Helper()
	if t := e.Model.TypeOf(n); t != nil && t.FullName() == "System.Boolean" {
		return Fact{}
	}
	switch h.Classify(n) {
	case syntax.Literal, syntax.Lambda:
		return Fact{}
	case syntax.Assignment:
		return e.eval(st, h.AssignmentValue(n), depth+1)
	case syntax.ObjectCreation:
		var f Fact
		for _, a := range h.ObjectCreationArguments(n) {
			f = f.or(e.eval(st, a, depth+1))
		}
		for _, i := range h.ObjectCreationInitializers(n) {
			f = f.or(e.eval(st, i, depth+1))
		}
		return f
	case syntax.Invocation:
		return e.call(st, n, depth)
	case syntax.MemberAccess:
		return e.member(st, n, depth)
	case syntax.Identifier:
		f, _ := e.Lookup(st, n)
		return f
	}
	if inner := h.Paren(n); inner != nil {
		return e.eval(st, inner, depth+1)
	}
	if _, operand := h.Cast(n); operand != nil {
		return e.eval(st, operand, depth+1)
	}
	if cond, then, els := h.Conditional(n); cond != nil {
		return e.eval(st, then, depth+1).or(e.eval(st, els, depth+1))
	}
	if op, l, r := h.Binary(n); op != syntax.NoBinary {
		if op == syntax.Compare || op == syntax.Logical {
			return Fact{}
		}
		return e.eval(st, l, depth+1).or(e.eval(st, r, depth+1))
	}
	if op, operand := h.Unary(n); op != syntax.NoUnary {
		if op == syntax.Not {
			return Fact{}
		}
		return e.eval(st, operand, depth+1)
	}
	if h.IsSelf(n) || h.IsBase(n) {
		return Fact{}
	}
	// Arguments, interpolations, element accesses and the like carry the
	// taint of their parts.
	var f Fact
	for _, c := range n.NamedChildren() {
		f = f.or(e.eval(st, c, depth+1))
	}
	return f
}

// call evaluates an invocation. Sanitizers return clean values; calls with
// a summary follow it; any other call is tainted if its receiver or one
// of its arguments is.
func (e *Engine) call(st *State, call *syntax.Node, depth int) Fact {
	h := e.Model.Helper()
	sym := e.Model.ResolveSymbol(call)
	if sym != nil && e.IsSanitizer != nil && e.IsSanitizer(sym) {
		return Fact{}
	}
	recv := e.receiver(h.InvocationTarget(call))
	if recv != nil && e.isStatic(recv) {
		recv = nil
	}
	if s, ok := summaryOf(sym); ok {
		if !s.taintsResult {
			return Fact{}
		}
		return e.inputs(st, s, recv, call, depth)
	}
	var f Fact
	if recv != nil {
		f = e.eval(st, recv, depth+1)
	} else if target := h.InvocationTarget(call); h.Classify(target) != syntax.Identifier {
		// Delegates and indexers written as calls.
		f = e.eval(st, target, depth+1)
	}
	for _, a := range h.InvocationArguments(call) {
		f = f.or(e.eval(st, a, depth+1))
	}
	return f
}

// inputs returns the taint of the operands a summary reads.
func (e *Engine) inputs(st *State, s summary, recv, call *syntax.Node, depth int) Fact {
	var f Fact
	if s.ifTainted&receiverBit != 0 && recv != nil {
		f = e.eval(st, recv, depth+1)
	}
	for i, a := range e.Model.Helper().InvocationArguments(call) {
		if s.reads(i) {
			f = f.or(e.eval(st, a, depth+1))
		}
	}
	return f
}

func (e *Engine) member(st *State, n *syntax.Node, depth int) Fact {
	if f, ok := e.Lookup(st, n); ok {
		return f
	}
	h := e.Model.Helper()
	recv := e.receiver(n)
	if recv == nil || e.isStatic(recv) || h.IsSelf(recv) || h.IsBase(recv) {
		return Fact{}
	}
	return e.eval(st, recv, depth+1)
}

// receiver returns the expression a member access is applied to.
func (e *Engine) receiver(n *syntax.Node) *syntax.Node {
	h := e.Model.Helper()
	if r := h.MemberAccessExpression(n); r != nil {
		return r
	}
	return h.ImplicitReceiver(n)
}

// isStatic reports whether n names a type or namespace.
func (e *Engine) isStatic(n *syntax.Node) bool {
	sym := e.Model.ResolveSymbol(n)
	return sym != nil && (sym.Kind == semantic.Type || sym.Kind == semantic.Namespace)
}

// key identifies the storage n refers to. Variables, and members reached
// through the current instance or a type, are keyed by symbol; members of
// other values by their spelling, so that two instances of a type do not
// share facts.
func (e *Engine) key(n *syntax.Node) interface{} {
	h := e.Model.Helper()
	for inner := h.Paren(n); inner != nil; inner = h.Paren(n) {
		n = inner
	}
	if recv := e.receiver(n); recv != nil && !h.IsSelf(recv) && !h.IsBase(recv) && !e.isStatic(recv) {
		if h.MemberAccessExpression(n) == nil {
			return "text:" + spell(recv) + spell(n)
		}
		return "text:" + spell(n)
	}
	if sym := e.Model.ResolveSymbol(n); sym != nil && sym.Kind.IsValue() {
		return sym
	}
	return "text:" + spell(n)
}

func spell(n *syntax.Node) string {
	return n.Tree().Fold(strings.Join(strings.Fields(n.Text()), ""))
}
