package exprast

import "fmt"

// Visitor is called once per node in a pre-order walk. Returning false stops
// descent into that node's children (but sibling traversal continues).
type Visitor func(n Node) bool

// Walk traverses n and its children in a deterministic left-to-right,
// pre-order fashion. The switch is exhaustive over every Node
// implementation in this package — spec.md's "no any-case fall-throughs"
// rule — so adding a node kind without updating Walk is a compile-time-
// invisible but review-visible bug; we guard it at runtime with a panic
// instead of silently skipping the new kind.
func Walk(n Node, visit Visitor) {
	if n == nil || !visit(n) {
		return
	}
	switch t := n.(type) {
	case *AccessScope, *AccessThis, *PrimitiveLiteral, *Unknown:
		// leaves
	case *AccessMember:
		Walk(t.Object, visit)
	case *AccessKeyed:
		Walk(t.Object, visit)
		Walk(t.Key, visit)
	case *CallScope:
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *CallMember:
		Walk(t.Object, visit)
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *CallFunction:
		Walk(t.Func, visit)
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *Binary:
		Walk(t.Left, visit)
		Walk(t.Right, visit)
	case *Unary:
		Walk(t.Operand, visit)
	case *Assign:
		Walk(t.Target, visit)
		Walk(t.Value, visit)
	case *Conditional:
		Walk(t.Condition, visit)
		Walk(t.Yes, visit)
		Walk(t.No, visit)
	case *ArrayLiteral:
		for _, e := range t.Elements {
			Walk(e, visit)
		}
	case *ObjectLiteral:
		for _, v := range t.Values {
			Walk(v, visit)
		}
	case *TemplateLiteral:
		for _, e := range t.Expressions {
			Walk(e, visit)
		}
	case *TaggedTemplate:
		Walk(t.Func, visit)
		for _, e := range t.Template.Expressions {
			Walk(e, visit)
		}
	case *ValueConverter:
		Walk(t.Expression, visit)
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *BindingBehavior:
		Walk(t.Expression, visit)
		for _, a := range t.Args {
			Walk(a, visit)
		}
	case *Interpolation:
		for _, e := range t.Expressions {
			Walk(e, visit)
		}
	default:
		panic(fmt.Sprintf("exprast: Walk encountered unmatched node kind %T — add a case", n))
	}
}

// Normalize renders n back to a canonical source form: no incidental
// whitespace, single-quoted strings, no redundant parens. Two ASTs parsed
// from differently-formatted but semantically identical source normalize to
// the same string, which is what ExprIdPayload.NormalizedSource hashes over.
func Normalize(n Node) string {
	switch t := n.(type) {
	case *AccessScope:
		return fmt.Sprintf("%s%s", ancestorPrefix(t.Ancestor), t.Name)
	case *AccessThis:
		if t.Ancestor == 0 {
			return "$this"
		}
		p := ancestorPrefix(t.Ancestor)
		return p[:len(p)-1]
	case *AccessMember:
		op := "."
		if t.Optional {
			op = "?."
		}
		return Normalize(t.Object) + op + t.Name
	case *AccessKeyed:
		return Normalize(t.Object) + "[" + Normalize(t.Key) + "]"
	case *CallScope:
		return t.Name + "(" + joinArgs(t.Args) + ")"
	case *CallMember:
		op := "."
		if t.Optional {
			op = "?."
		}
		return Normalize(t.Object) + op + t.Name + "(" + joinArgs(t.Args) + ")"
	case *CallFunction:
		return Normalize(t.Func) + "(" + joinArgs(t.Args) + ")"
	case *Binary:
		return Normalize(t.Left) + t.Operator + Normalize(t.Right)
	case *Unary:
		return t.Operator + Normalize(t.Operand)
	case *Assign:
		return Normalize(t.Target) + "=" + Normalize(t.Value)
	case *Conditional:
		return Normalize(t.Condition) + "?" + Normalize(t.Yes) + ":" + Normalize(t.No)
	case *ArrayLiteral:
		return "[" + joinArgs(t.Elements) + "]"
	case *ObjectLiteral:
		s := "{"
		for i, k := range t.Keys {
			if i > 0 {
				s += ","
			}
			s += k + ":" + Normalize(t.Values[i])
		}
		return s + "}"
	case *TemplateLiteral:
		s := "`"
		for i, c := range t.Cooked {
			s += c
			if i < len(t.Expressions) {
				s += "${" + Normalize(t.Expressions[i]) + "}"
			}
		}
		return s + "`"
	case *TaggedTemplate:
		return Normalize(t.Func) + Normalize(&t.Template)
	case *PrimitiveLiteral:
		switch v := t.Value.(type) {
		case nil:
			return "null"
		case string:
			return "'" + v + "'"
		default:
			return fmt.Sprintf("%v", v)
		}
	case *ValueConverter:
		return Normalize(t.Expression) + "|" + t.Name + joinPipeArgs(t.Args)
	case *BindingBehavior:
		return Normalize(t.Expression) + "&" + t.Name + joinPipeArgs(t.Args)
	case *Unknown:
		return "�/* " + t.ReasonKind + " */"
	}
	return ""
}

func ancestorPrefix(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += "$parent."
	}
	return s
}

func joinArgs(args []Node) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ","
		}
		s += Normalize(a)
	}
	return s
}

func joinPipeArgs(args []Node) string {
	s := ""
	for _, a := range args {
		s += ":" + Normalize(a)
	}
	return s
}
