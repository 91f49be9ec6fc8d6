package overlay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/span"
)

// MemberSegment pairs one member-path node's authored HTML span with the
// overlay-source span render emitted for it (spec.md §4.7's per-member
// mapping bullet).
type MemberSegment struct {
	HTMLSpan    span.TextSpan
	OverlaySpan span.TextSpan
	Degraded    bool
}

// ExprMapping is one expression's full entry in the bidirectional map.
type ExprMapping struct {
	ExprId      span.ExprId
	FrameId     span.FrameId
	HTMLSpan    span.TextSpan
	OverlaySpan span.TextSpan
	CallSpan    span.TextSpan
	Segments    []MemberSegment
}

// Emission is Emit's output: the overlay source text plus its mapping.
type Emission struct {
	Source   string
	Mappings []ExprMapping
}

// accessFn is the probe function every emitted call invokes. In host-typed
// mode its generic argument is the probe's own frame alias, so the call
// site type-checks the lambda's "o" parameter against that frame's literal.
const accessFn = "__au$access"

// Emit renders plan into one overlay source file: one `type <alias> =
// <expr>;` declaration per frame followed by one `__au$access<alias>(o =>
// ...)` call per expression assigned to it (spec.md §4.7's host-typed
// mode). It returns the rendered text and the per-expression/per-member
// span mapping render tracked while writing each lambda.
func Emit(plan *Plan, exprSpans map[span.ExprId]span.TextSpan, exprAst map[span.ExprId]exprast.Node) *Emission {
	var out strings.Builder
	var mappings []ExprMapping

	for _, frame := range plan.Frames {
		out.WriteString(fmt.Sprintf("type %s = %s;\n", frame.TypeName, frame.TypeExpr))
	}
	out.WriteString("\n")

	for _, frame := range plan.Frames {
		for _, lam := range frame.Lambdas {
			callStart := out.Len()
			out.WriteString(accessFn + "<" + frame.TypeName + ">(")
			lambdaStart := out.Len()
			out.WriteString(lam.Lambda)
			lambdaEnd := out.Len()
			out.WriteString(");\n")
			callEnd := out.Len()

			htmlSpan := exprSpans[lam.ExprId]
			lambdaOverlay := span.NewTextSpan(lambdaStart, lambdaEnd)
			var segments []MemberSegment
			if ast, ok := exprAst[lam.ExprId]; ok {
				for _, node := range memberNodes(ast) {
					segments = append(segments, MemberSegment{
						HTMLSpan:    node.Span(),
						OverlaySpan: projectToOverlay(htmlSpan, lambdaOverlay, node.Span()),
						Degraded:    true,
					})
				}
			}

			mappings = append(mappings, ExprMapping{
				ExprId:      lam.ExprId,
				FrameId:     frame.FrameId,
				HTMLSpan:    htmlSpan,
				OverlaySpan: lambdaOverlay,
				CallSpan:    span.NewTextSpan(callStart, callEnd),
				Segments:    segments,
			})
		}
	}

	sort.Slice(mappings, func(i, j int) bool { return mappings[i].ExprId < mappings[j].ExprId })
	return &Emission{Source: out.String(), Mappings: mappings}
}

// projectToOverlay synthesizes a degraded overlay span for one member
// node, by projecting its relative position inside the expression's full
// authored HTML span proportionally onto the lambda's overlay span.
//
// render doesn't track a per-node output offset as it writes (unlike the
// astro printer's printTextWithSourcemap, which can because it walks
// already-positioned source text rather than re-serializing an AST), so
// the overlay side is the one this implementation can't get exactly;
// spec.md §4.7 names the opposite direction (missing HTML span, overlay
// position known) as its degraded case, but the same proportional-
// projection idea applies whichever side is missing — this is recorded as
// a resolved Open Question in the design ledger, not silent guessing.
func projectToOverlay(exprHTML span.TextSpan, lambdaOverlay, memberHTML span.TextSpan) span.TextSpan {
	htmlLen := exprHTML.End - exprHTML.Start
	if htmlLen <= 0 {
		return lambdaOverlay
	}
	overlayLen := lambdaOverlay.End - lambdaOverlay.Start
	relStart := memberHTML.Start - exprHTML.Start
	relEnd := memberHTML.End - exprHTML.Start
	start := lambdaOverlay.Start + (relStart*overlayLen)/htmlLen
	end := lambdaOverlay.Start + (relEnd*overlayLen)/htmlLen
	return span.NewTextSpan(start, end)
}

// memberNodes flattens every member-path-shaped node (anything that reads
// or calls a name off a scope/object) out of n's subtree, in the order a
// left-to-right render visits them — used to pair rendered overlay slices
// with their authored AST span when finer-than-expression granularity is
// wanted.
func memberNodes(n exprast.Node) []exprast.Node {
	var out []exprast.Node
	var walk func(exprast.Node)
	walk = func(node exprast.Node) {
		if node == nil {
			return
		}
		switch e := node.(type) {
		case *exprast.AccessScope, *exprast.AccessThis:
			out = append(out, node)
		case *exprast.AccessMember:
			walk(e.Object)
			out = append(out, node)
		case *exprast.AccessKeyed:
			walk(e.Object)
			walk(e.Key)
			out = append(out, node)
		case *exprast.CallScope:
			out = append(out, node)
			for _, a := range e.Args {
				walk(a)
			}
		case *exprast.CallMember:
			walk(e.Object)
			out = append(out, node)
			for _, a := range e.Args {
				walk(a)
			}
		case *exprast.CallFunction:
			walk(e.Func)
			for _, a := range e.Args {
				walk(a)
			}
		case *exprast.Binary:
			walk(e.Left)
			walk(e.Right)
		case *exprast.Unary:
			walk(e.Operand)
		case *exprast.Assign:
			walk(e.Target)
			walk(e.Value)
		case *exprast.Conditional:
			walk(e.Condition)
			walk(e.Yes)
			walk(e.No)
		case *exprast.ArrayLiteral:
			for _, el := range e.Elements {
				walk(el)
			}
		case *exprast.ObjectLiteral:
			for _, v := range e.Values {
				walk(v)
			}
		case *exprast.TemplateLiteral:
			for _, ex := range e.Expressions {
				walk(ex)
			}
		case *exprast.TaggedTemplate:
			walk(e.Func)
			for _, ex := range e.Template.Expressions {
				walk(ex)
			}
		case *exprast.ValueConverter:
			walk(e.Expression)
			for _, a := range e.Args {
				walk(a)
			}
		case *exprast.BindingBehavior:
			walk(e.Expression)
			for _, a := range e.Args {
				walk(a)
			}
		case *exprast.Interpolation:
			for _, ex := range e.Expressions {
				walk(ex)
			}
		}
	}
	walk(n)
	return out
}
