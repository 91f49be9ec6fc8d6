// Package typecheck implements Type Check (C7): for each linked
// instruction it determines the expected type from the resolved binding
// target, infers a type for the bound expression by walking its AST in the
// frame environment Scope Binding produced, and reports a mismatch
// diagnostic when the two disagree textually (spec.md §4.6).
//
// There is no host type checker in this pipeline — the host-language AST
// parser is an opaque external collaborator (spec.md §1) and carrying its
// full type system is out of scope. Inference here is therefore
// deliberately shallow: literal shapes, operator shapes, and scope/frame
// lookups that Scope Binding already resolved; a value converter or
// binding behavior passes its piped expression's type through. Anything
// beyond that (member access on a project-defined class, call return
// types) normalizes to "unknown", which spec.md's
// demotion rule exempts from mismatch reporting — the same rule that lets
// a real host type checker's "any"/"unknown" results pass through quietly.
package typecheck

import (
	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

// Unknown is the type every inference path that can't say more normalizes
// to; spec.md's demotion rule suppresses comparisons against it.
const Unknown = "unknown"

// inferType walks n's AST, resolving scope/frame accesses against st
// starting at frame.
func inferType(n exprast.Node, st *scope.ScopeTemplate, frame span.FrameId) string {
	if n == nil || st == nil {
		return Unknown
	}
	switch e := n.(type) {
	case *exprast.PrimitiveLiteral:
		return primitiveType(e.Value)

	case *exprast.TemplateLiteral:
		return "string"

	case *exprast.TaggedTemplate:
		return Unknown

	case *exprast.ArrayLiteral:
		return "Array<unknown>"

	case *exprast.ObjectLiteral:
		return "object"

	case *exprast.AccessThis:
		target, ok := st.Resolve(frame, e.Ancestor)
		if !ok {
			return Unknown
		}
		if t, found := target.Locals["$this"]; found {
			return t.Name
		}
		return Unknown

	case *exprast.AccessScope:
		target, ok := st.Resolve(frame, e.Ancestor)
		if !ok {
			return Unknown
		}
		if t, _, found := st.LookupLocal(target.Id, e.Name); found {
			return t.Name
		}
		return Unknown

	case *exprast.AccessMember:
		_ = inferType(e.Object, st, frame)
		return Unknown

	case *exprast.AccessKeyed:
		return Unknown

	case *exprast.CallScope, *exprast.CallMember, *exprast.CallFunction:
		return Unknown

	case *exprast.Binary:
		return binaryType(e.Operator)

	case *exprast.Unary:
		return unaryType(e.Operator)

	case *exprast.Assign:
		return inferType(e.Value, st, frame)

	case *exprast.Conditional:
		yes := inferType(e.Yes, st, frame)
		no := inferType(e.No, st, frame)
		if yes == no {
			return yes
		}
		return Unknown

	case *exprast.ValueConverter:
		// No converter signature catalog; pass the piped expression's own
		// type through rather than widening to unknown unconditionally.
		return inferType(e.Expression, st, frame)

	case *exprast.BindingBehavior:
		return inferType(e.Expression, st, frame)

	case *exprast.Interpolation:
		return "string"

	case *exprast.Unknown:
		return Unknown

	default:
		return Unknown
	}
}

func primitiveType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return Unknown
	}
}

func binaryType(op string) string {
	switch op {
	case "==", "!=", "===", "!==", "<", "<=", ">", ">=", "&&", "||":
		return "boolean"
	case "??":
		return Unknown
	case "-", "*", "/", "%":
		return "number"
	default:
		// "+" is ambiguous between numeric addition and string
		// concatenation without operand types the host checker would have;
		// widen rather than guess.
		return Unknown
	}
}

func unaryType(op string) string {
	switch op {
	case "!":
		return "boolean"
	case "-", "+":
		return "number"
	case "typeof":
		return "string"
	case "void":
		return "undefined"
	default:
		return Unknown
	}
}
