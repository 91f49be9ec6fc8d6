// Package exprast defines the closed AST sum for the template binding
// expression language (`item.name`, `items.length > 0 ? 'a' : 'b'`, `name |
// upperCase`, `value & debounce:500`, ...) and the small recursive-descent
// parser that builds it. Every later stage (scope binding, type checking,
// overlay emission, provenance mapping) walks this AST with an exhaustive
// type switch — spec.md's design note "visitor-heavy AST walking... stays
// as plain pattern matches over a closed AST sum" — so adding a node kind
// here is a deliberately loud, grep-able change across the whole compiler.
package exprast

import "github.com/opmodel/tscompiler/internal/span"

// Node is the sealed interface implemented by every expression AST node.
// The unexported marker method closes the sum to this package: no outside
// package may add a new Node implementation without editing this file,
// which is the point — every visitor's type switch stays exhaustive.
type Node interface {
	Span() span.TextSpan
	exprNode()
}

type base struct{ Sp span.TextSpan }

func (b base) Span() span.TextSpan { return b.Sp }
func (base) exprNode()             {}

// AccessScope reads a name from the nearest scope that declares it,
// climbing Ancestor frames first (the `$parent` / `$parent.$parent` chain,
// recorded as Ancestor count).
type AccessScope struct {
	base
	Name     string
	Ancestor int
}

// AccessThis refers to the scope's own binding context, optionally walking
// up Ancestor frames (`$this`, `$parent`).
type AccessThis struct {
	base
	Ancestor int
}

// AccessMember reads Name off Object (`object.name`).
type AccessMember struct {
	base
	Object Node
	Name   string
	// Optional marks a `?.` access: resolution short-circuits to undefined
	// when Object is null/undefined rather than raising.
	Optional bool
}

// AccessKeyed reads Key off Object (`object[key]`).
type AccessKeyed struct {
	base
	Object Node
	Key    Node
}

// CallScope calls a function named Name resolved from scope, with Args.
type CallScope struct {
	base
	Name     string
	Args     []Node
	Ancestor int
}

// CallMember calls Name as a method of Object, with Args.
type CallMember struct {
	base
	Object   Node
	Name     string
	Args     []Node
	Optional bool
}

// CallFunction calls Func (itself an expression, e.g. the result of another
// member access) with Args.
type CallFunction struct {
	base
	Func Node
	Args []Node
}

// Binary applies a binary Operator (`+ - * / % == != === !== < <= > >= && ||
// ??`) to Left and Right.
type Binary struct {
	base
	Operator string
	Left     Node
	Right    Node
}

// Unary applies a unary Operator (`! - + typeof void`) to Operand.
type Unary struct {
	base
	Operator string
	Operand  Node
}

// Assign assigns Value to Target, used by two-way bindings' view->model
// direction (`target = value`).
type Assign struct {
	base
	Target Node
	Value  Node
}

// Conditional is the ternary `Condition ? Yes : No`.
type Conditional struct {
	base
	Condition Node
	Yes       Node
	No        Node
}

// ArrayLiteral is `[a, b, c]`.
type ArrayLiteral struct {
	base
	Elements []Node
}

// ObjectLiteral is `{a: 1, b: 2}`.
type ObjectLiteral struct {
	base
	Keys   []string
	Values []Node
}

// TemplateLiteral is a backtick string with interpolated Expressions
// between the literal Cooked string parts (len(Cooked) == len(Expressions)+1).
type TemplateLiteral struct {
	base
	Cooked      []string
	Expressions []Node
}

// TaggedTemplate is Func applied to a TemplateLiteral (`` tag`...` ``).
type TaggedTemplate struct {
	base
	Template TemplateLiteral
	Func     Node
}

// PrimitiveLiteral is a literal string, number, boolean, or null, stored
// pre-decoded as a Go value (string, float64, bool, or nil).
type PrimitiveLiteral struct {
	base
	Value any
}

// ValueConverter applies a named pipe converter to Expression (`expr |
// name:arg1:arg2`).
type ValueConverter struct {
	base
	Expression Node
	Name       string
	Args       []Node
}

// BindingBehavior attaches a named behavior to Expression (`expr &
// name:arg1:arg2`).
type BindingBehavior struct {
	base
	Expression Node
	Name       string
	Args       []Node
}

// Interpolation is a top-level `${...}` chain: alternating literal Parts and
// bound Expressions, with len(Parts) == len(Expressions)+1 — the form
// textBinding's BindingSource carries directly (spec.md §3).
type Interpolation struct {
	base
	Parts       []string
	Expressions []Node
}

// Unknown preserves an unrecognized/unrecoverable construct instead of
// silently falling through a default branch — spec.md's "no any-case
// fall-throughs" design rule. ReasonKind names why (e.g. "parse-error",
// "unsupported-syntax").
type Unknown struct {
	base
	ReasonKind string
}
