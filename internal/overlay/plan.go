// Package overlay implements Overlay Synthesis (C8): it groups bound
// expressions by their Scope Binding frame, emits a host-language source
// file of `__au$access(...)` probes — one per expression, wrapped in a
// lambda closing over its frame's type — and builds the bidirectional span
// map between that overlay and the authored template (spec.md §4.7).
package overlay

import (
	"sort"
	"strconv"

	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

// LambdaEntry is one expression's emitted probe within its frame.
type LambdaEntry struct {
	ExprId span.ExprId
	Lambda string // the rewritten expression body, "o => <rewritten>"
}

// FrameDescriptor is one frame's emitted type + probes (spec.md §4.7's
// `{typeName, typeExpr, lambdas}`).
type FrameDescriptor struct {
	FrameId  span.FrameId
	TypeName string
	TypeExpr string
	Lambdas  []LambdaEntry
}

// Plan is the full pre-emission layout: one descriptor per frame that had
// at least one expression assigned to it, in a deterministic frame-id order.
type Plan struct {
	Frames []FrameDescriptor
}

// BuildPlan groups every expression reachable from mod's linked templates
// by the frame Scope Binding assigned it to, and derives each frame's type
// literal/alias name.
func BuildPlan(mod *resolve.LinkedModule, scopes map[span.TemplateId]*scope.ScopeTemplate) *Plan {
	var anyFrames []scope.Frame
	for _, st := range scopes {
		if len(st.Frames) > 0 {
			anyFrames = st.Frames
			break
		}
	}
	framesById := map[span.FrameId]scope.Frame{}
	for _, f := range anyFrames {
		framesById[f.Id] = f
	}

	exprsByFrame := map[span.FrameId][]span.ExprId{}
	for _, tpl := range mod.Templates {
		st := scopes[tpl.Source.Id]
		if st == nil {
			continue
		}
		for _, row := range tpl.Rows {
			for _, instr := range row.Instructions {
				for _, id := range exprIdsOf(instr) {
					frame, ok := st.ExprToFrame[id]
					if !ok {
						continue
					}
					exprsByFrame[frame] = append(exprsByFrame[frame], id)
				}
			}
		}
	}

	var frameIds []span.FrameId
	for id := range exprsByFrame {
		frameIds = append(frameIds, id)
	}
	sort.Slice(frameIds, func(i, j int) bool { return frameIds[i] < frameIds[j] })

	aliasNames := map[span.FrameId]string{}
	for _, id := range frameIds {
		aliasNames[id] = frameAliasName(id)
	}

	plan := &Plan{}
	for _, fid := range frameIds {
		f := framesById[fid]
		desc := FrameDescriptor{
			FrameId:  fid,
			TypeName: aliasNames[fid],
			TypeExpr: frameTypeExpr(f, aliasNames),
		}
		ids := exprsByFrame[fid]
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		seen := map[span.ExprId]bool{}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			entry, ok := mod.ExprTable[id]
			if !ok {
				continue
			}
			desc.Lambdas = append(desc.Lambdas, LambdaEntry{ExprId: id, Lambda: "o => " + render(entry.Ast)})
		}
		plan.Frames = append(plan.Frames, desc)
	}
	return plan
}

func frameAliasName(id span.FrameId) string {
	return "Frame" + strconv.Itoa(int(id))
}

// frameTypeExpr derives a frame's type literal. The root frame's binding
// context IS the view-model type, so its literal is just that type's name.
// Every other frame's literal is an object type of its own locals plus a
// `$parent` member referencing the parent frame's alias, so `$parent`
// chains in a rewritten lambda type-check as ordinary member access.
func frameTypeExpr(f scope.Frame, aliasNames map[span.FrameId]string) string {
	if f.Origin == scope.FrameRoot {
		return f.Locals["$this"].Name
	}

	var names []string
	for name := range f.Locals {
		if name == "$this" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b string
	b += "{ "
	for _, name := range names {
		b += name + ": " + f.Locals[name].Name + "; "
	}
	if f.Parent != nil {
		if alias, ok := aliasNames[*f.Parent]; ok {
			b += "$parent: " + alias + "; "
		}
	}
	b += "}"
	return b
}

// exprIdsOf returns every ExprId a linked instruction's own fields (not its
// nested Def's rows, which are walked separately as their own template)
// reference.
func exprIdsOf(instr resolve.LinkedInstruction) []span.ExprId {
	var ids []span.ExprId
	if instr.From.IsInterp {
		for _, e := range instr.From.Exprs {
			if e.Id != "" {
				ids = append(ids, e.Id)
			}
		}
	} else if instr.From.Expr.Id != "" {
		ids = append(ids, instr.From.Expr.Id)
	}
	for _, let := range instr.Source.Lets {
		if let.From.IsInterp {
			for _, e := range let.From.Exprs {
				ids = append(ids, e.Id)
			}
		} else if let.From.Expr.Id != "" {
			ids = append(ids, let.From.Expr.Id)
		}
	}
	for _, prop := range instr.Source.Props {
		if prop.From.Expr.Id != "" {
			ids = append(ids, prop.From.Expr.Id)
		}
	}
	return ids
}
