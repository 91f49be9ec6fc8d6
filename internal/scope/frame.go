// Package scope implements Scope Binding (C6): it creates lexical frames
// for a linked template (the root, and each repeat, with and promise
// controller; a let element adds its locals to the current frame, and
// there is no projection frame) and assigns each expression to the
// innermost frame visible at its DOM site.
//
// The frame/ancestor-chain shape is grounded on other_examples'
// abiiranathan-rex-template-validator `analyzer/ast/scope_processor.go`,
// the clearest pack precedent for a template-scope-stack walker (push a
// scope on entering a block construct, resolve names by walking parent
// scopes, pop on exit) adapted from validating identifiers to attaching
// frame ids to expressions.
package scope

import "github.com/opmodel/tscompiler/internal/span"

// FrameOriginKind discriminates why a Frame exists.
type FrameOriginKind int

const (
	FrameRoot FrameOriginKind = iota
	FrameController
	FrameLet
	FrameProjection
)

// TypeRef is a minimal host-type reference: either a named type or, for
// locals whose type can't be determined without full host inference
// (spec.md's AnalysisGap spirit), "unknown".
type TypeRef struct {
	Name string
}

var UnknownType = TypeRef{Name: "unknown"}

// Frame is one lexical scope level. Root holds the view-model type itself;
// every other frame's Locals only adds names introduced at that site —
// resolving a name walks Locals outward through Parent, exactly like the
// teacher-adjacent scope_processor.go's scope stack.
type Frame struct {
	Id     span.FrameId
	Parent *span.FrameId
	Origin FrameOriginKind
	Locals map[string]TypeRef
}

// ScopeTemplate is the per-TemplateIR output of binding: every frame
// created while walking it, and the frame each expression was assigned to.
type ScopeTemplate struct {
	Frames     []Frame
	ExprToFrame map[span.ExprId]span.FrameId
}

// FrameByID returns the frame with the given id, if present.
func (st *ScopeTemplate) FrameByID(id span.FrameId) (Frame, bool) {
	for _, f := range st.Frames {
		if f.Id == id {
			return f, true
		}
	}
	return Frame{}, false
}

// Resolve walks frame f's ancestor chain ancestorHops times (as an
// expression's `$parent`/`$parent^N` chain requires) and returns the frame
// landed on.
func (st *ScopeTemplate) Resolve(f span.FrameId, ancestorHops int) (Frame, bool) {
	cur, ok := st.FrameByID(f)
	if !ok {
		return Frame{}, false
	}
	for i := 0; i < ancestorHops; i++ {
		if cur.Parent == nil {
			return Frame{}, false
		}
		cur, ok = st.FrameByID(*cur.Parent)
		if !ok {
			return Frame{}, false
		}
	}
	return cur, true
}

// LookupLocal resolves name starting at frame f and walking outward
// through parents, returning the nearest declaring frame's type for it.
func (st *ScopeTemplate) LookupLocal(f span.FrameId, name string) (TypeRef, span.FrameId, bool) {
	cur, ok := st.FrameByID(f)
	for ok {
		if t, found := cur.Locals[name]; found {
			return t, cur.Id, true
		}
		if cur.Parent == nil {
			break
		}
		cur, ok = st.FrameByID(*cur.Parent)
	}
	return TypeRef{}, 0, false
}
