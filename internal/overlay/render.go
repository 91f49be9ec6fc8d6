package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opmodel/tscompiler/internal/exprast"
)

// render serializes n back into host-language source text, rewriting every
// scope/frame access into a member access on "o" — the lambda parameter
// spec.md §4.7 names (`o => <rewritten>`). Ancestor hops walk a `$parent`
// member chain, matching the `$parent` field every non-root frame
// descriptor's type literal carries (see plan.go's frameTypeExpr).
//
// This is a small unparser, not a general pretty-printer: exprast is this
// compiler's own closed AST (spec.md §1 draws the opaque-parser boundary
// around the *host*-language AST, not the binding-expression one), so
// owning its serialization is the same call already made for parsing it.
func render(n exprast.Node) string {
	switch e := n.(type) {
	case *exprast.AccessThis:
		return "o" + strings.Repeat(".$parent", e.Ancestor)

	case *exprast.AccessScope:
		return "o" + strings.Repeat(".$parent", e.Ancestor) + "." + e.Name

	case *exprast.AccessMember:
		op := "."
		if e.Optional {
			op = "?."
		}
		return render(e.Object) + op + e.Name

	case *exprast.AccessKeyed:
		return render(e.Object) + "[" + render(e.Key) + "]"

	case *exprast.CallScope:
		return "o" + strings.Repeat(".$parent", e.Ancestor) + "." + e.Name + "(" + renderArgs(e.Args) + ")"

	case *exprast.CallMember:
		op := "."
		if e.Optional {
			op = "?."
		}
		return render(e.Object) + op + e.Name + "(" + renderArgs(e.Args) + ")"

	case *exprast.CallFunction:
		return render(e.Func) + "(" + renderArgs(e.Args) + ")"

	case *exprast.Binary:
		return "(" + render(e.Left) + " " + e.Operator + " " + render(e.Right) + ")"

	case *exprast.Unary:
		if isWordOperator(e.Operator) {
			return e.Operator + " " + render(e.Operand)
		}
		return e.Operator + render(e.Operand)

	case *exprast.Assign:
		return render(e.Target) + " = " + render(e.Value)

	case *exprast.Conditional:
		return "(" + render(e.Condition) + " ? " + render(e.Yes) + " : " + render(e.No) + ")"

	case *exprast.ArrayLiteral:
		parts := make([]string, len(e.Elements))
		for i, el := range e.Elements {
			parts[i] = render(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case *exprast.ObjectLiteral:
		parts := make([]string, len(e.Keys))
		for i := range e.Keys {
			parts[i] = e.Keys[i] + ": " + render(e.Values[i])
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case *exprast.TemplateLiteral:
		return renderTemplateLiteral(e)

	case *exprast.TaggedTemplate:
		return render(e.Func) + renderTemplateLiteral(&e.Template)

	case *exprast.PrimitiveLiteral:
		return renderPrimitive(e.Value)

	case *exprast.ValueConverter:
		return render(e.Expression) + " | " + e.Name + renderPipeArgs(e.Args)

	case *exprast.BindingBehavior:
		return render(e.Expression) + " & " + e.Name + renderPipeArgs(e.Args)

	case *exprast.Interpolation:
		var b strings.Builder
		b.WriteString("`")
		for i, part := range e.Parts {
			b.WriteString(part)
			if i < len(e.Expressions) {
				b.WriteString("${")
				b.WriteString(render(e.Expressions[i]))
				b.WriteString("}")
			}
		}
		b.WriteString("`")
		return b.String()

	case *exprast.Unknown:
		return "/* unrecoverable: " + e.ReasonKind + " */"

	default:
		return "/* unrecoverable */"
	}
}

func renderArgs(args []exprast.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = render(a)
	}
	return strings.Join(parts, ", ")
}

func renderPipeArgs(args []exprast.Node) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range args {
		b.WriteString(":")
		b.WriteString(render(a))
	}
	return b.String()
}

func renderTemplateLiteral(e *exprast.TemplateLiteral) string {
	var b strings.Builder
	b.WriteString("`")
	for i, cooked := range e.Cooked {
		b.WriteString(cooked)
		if i < len(e.Expressions) {
			b.WriteString("${")
			b.WriteString(render(e.Expressions[i]))
			b.WriteString("}")
		}
	}
	b.WriteString("`")
	return b.String()
}

func renderPrimitive(v any) string {
	switch val := v.(type) {
	case string:
		return strconv.Quote(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return fmt.Sprintf("%v", val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isWordOperator(op string) bool {
	return op == "typeof" || op == "void"
}
