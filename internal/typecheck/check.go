package typecheck

import (
	"fmt"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

// CodeExprTypeMismatch is raised when an expression's inferred type
// disagrees, textually, with its binding target's expected type.
const CodeExprTypeMismatch = "expr-type-mismatch"

// Entry is one row of the expected-vs-inferred type table (spec.md §4.6).
type Entry struct {
	ExprId   span.ExprId
	Expected string
	Inferred string
}

// Table is the full output of Type Check: every entry that carried an
// expected type worth recording, keyed by expression id.
type Table struct {
	Entries map[span.ExprId]Entry
}

// Check walks every linked instruction in mod, inferring a type for each
// bound expression; non-interpolated ones are also compared against the
// instruction's resolved expected type. scopes supplies the per-template
// frame assignments Scope Binding produced.
func Check(mod *resolve.LinkedModule, scopes map[span.TemplateId]*scope.ScopeTemplate) (*Table, []diag.RawDiagnostic) {
	table := &Table{Entries: map[span.ExprId]Entry{}}
	var diags []diag.RawDiagnostic

	for _, tpl := range mod.Templates {
		st := scopes[tpl.Source.Id]
		for _, row := range tpl.Rows {
			for _, instr := range row.Instructions {
				if instr.From.IsInterp {
					// Interpolation always coerces to string; spec.md §4.6
					// only names bindable/listener/iterator expectations,
					// none of which apply to a text/attribute interpolation
					// chunk, so each piece gets a table entry (for hover)
					// but is never compared or diagnosed.
					for _, ref := range instr.From.Exprs {
						if entry, ok := mod.ExprTable[ref.Id]; ok {
							table.Entries[ref.Id] = Entry{ExprId: ref.Id, Expected: "string", Inferred: inferType(entry.Ast, st, frameFor(st, ref.Id))}
						}
					}
					continue
				}
				expected := instr.Sem.Expected
				if expected == "" {
					continue
				}
				entry, ok := mod.ExprTable[instr.From.Expr.Id]
				if !ok {
					continue
				}
				frame := frameFor(st, instr.From.Expr.Id)
				inferred := inferType(entry.Ast, st, frame)
				table.Entries[instr.From.Expr.Id] = Entry{ExprId: instr.From.Expr.Id, Expected: expected, Inferred: inferred}

				if suppressed(expected) || suppressed(inferred) {
					continue
				}
				if expected == inferred {
					continue
				}
				diags = append(diags, diag.RawDiagnostic{
					Code:    CodeExprTypeMismatch,
					Message: fmt.Sprintf("expected type %q, inferred %q", expected, inferred),
					Span:    nil,
					Data:    map[string]any{"exprId": string(instr.From.Expr.Id), "expected": expected, "inferred": inferred},
				})
			}
		}
	}
	return table, diags
}

func suppressed(t string) bool {
	return t == Unknown || t == "any" || t == ""
}

func frameFor(st *scope.ScopeTemplate, id span.ExprId) span.FrameId {
	if st == nil {
		return span.RootFrameId
	}
	if f, ok := st.ExprToFrame[id]; ok {
		return f
	}
	return span.RootFrameId
}
