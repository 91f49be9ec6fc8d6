package scope

import (
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/span"
)

// Result is the full output of binding: one ScopeTemplate per TemplateId.
type Result struct {
	ByTemplate map[span.TemplateId]*ScopeTemplate
}

// Bind walks mod's linked templates starting from the root, creating
// frames per spec.md §4.5 and assigning every expression reference to the
// innermost frame visible at its DOM site. rootType is the project's root
// view-model type (from Host Resolution's VM reflection token, spec.md
// §6); it becomes frame 0's binding-context type.
func Bind(mod *resolve.LinkedModule, rootType TypeRef) *Result {
	byPtr := map[*lower.TemplateIR]*resolve.LinkedTemplate{}
	var rootLt *resolve.LinkedTemplate
	for _, lt := range mod.Templates {
		byPtr[lt.Source] = lt
		if lt.Source.Origin.Kind == lower.OriginRoot {
			rootLt = lt
		}
	}

	b := &binder{byPtr: byPtr, perTemplate: map[span.TemplateId]*ScopeTemplate{}}
	if rootLt != nil {
		rootFrame := b.newFrame(nil, FrameRoot, rootType)
		b.bindTemplate(rootLt, rootFrame)
	}
	return &Result{ByTemplate: b.perTemplate}
}

type binder struct {
	byPtr       map[*lower.TemplateIR]*resolve.LinkedTemplate
	perTemplate map[span.TemplateId]*ScopeTemplate
	nextFrameId span.FrameId
	frames      []Frame
}

func (b *binder) newFrame(parent *span.FrameId, origin FrameOriginKind, thisType TypeRef) *Frame {
	f := Frame{Id: b.nextFrameId, Parent: parent, Origin: origin, Locals: map[string]TypeRef{}}
	f.Locals["$this"] = thisType
	b.frames = append(b.frames, f)
	idx := len(b.frames) - 1
	b.nextFrameId++
	return &b.frames[idx]
}

// bindTemplate assigns frame to every expression reached directly within
// lt's rows, then recurses into nested templates its controller/projection
// instructions spawned.
func (b *binder) bindTemplate(lt *resolve.LinkedTemplate, frame *Frame) {
	st, ok := b.perTemplate[lt.Source.Id]
	if !ok {
		st = &ScopeTemplate{ExprToFrame: map[span.ExprId]span.FrameId{}}
		b.perTemplate[lt.Source.Id] = st
	}

	for _, row := range lt.Rows {
		for _, instr := range row.Instructions {
			b.assignSource(instr.From, frame.Id, st)

			switch instr.Kind {
			case lower.InstrHydrateLetElement:
				// Both binding-context and override-context lets land in the
				// current frame's Locals; ToBindingContext only changes which
				// object overlay synthesis assigns into, not frame shape.
				for _, let := range instr.Source.Lets {
					b.assignSource(let.From, frame.Id, st)
					frame.Locals[let.To] = UnknownType
				}
			case lower.InstrHydrateTemplateController:
				for _, prop := range instr.Source.Props {
					b.assignSource(prop.From, frame.Id, st)
				}
				childFrame := frame
				switch instr.Sem.Resource.Name {
				case "repeat":
					childFrame = b.newFrame(frameIdPtr(frame.Id), FrameController, UnknownType)
					localName := repeatLocalName(instr)
					childFrame.Locals[localName] = UnknownType
					childFrame.Locals["$index"] = TypeRef{Name: "number"}
				case "with":
					childFrame = b.newFrame(frameIdPtr(frame.Id), FrameController, UnknownType)
				case "promise":
					childFrame = b.newFrame(frameIdPtr(frame.Id), FrameController, frame.Locals["$this"])
				}
				if instr.Source.Def != nil {
					if nested, ok := b.byPtr[instr.Source.Def]; ok {
						b.bindTemplate(nested, childFrame)
					}
				}
			}
		}
	}

	b.syncFrames(st)
}

// syncFrames copies every frame created so far into st.Frames (overwriting
// rather than appending-only, since binding proceeds depth-first and a
// later sibling call may have added frames a prior template also needs
// visible for Resolve/LookupLocal to walk the whole chain).
func (b *binder) syncFrames(st *ScopeTemplate) {
	st.Frames = append([]Frame(nil), b.frames...)
	for _, other := range b.perTemplate {
		other.Frames = st.Frames
	}
}

func (b *binder) assignSource(src lower.BindingSource, frameId span.FrameId, st *ScopeTemplate) {
	if src.IsInterp {
		for _, e := range src.Exprs {
			if e.Id != "" {
				st.ExprToFrame[e.Id] = frameId
			}
		}
		return
	}
	if src.Expr.Id != "" {
		st.ExprToFrame[src.Expr.Id] = frameId
	}
}

func frameIdPtr(id span.FrameId) *span.FrameId { return &id }

// repeatLocalName names the local a `repeat.for` frame introduces. It
// always returns "item": only the iterable expression is parsed into the
// expr table, so the authored declarator is not retained past lowering.
func repeatLocalName(instr resolve.LinkedInstruction) string {
	return "item"
}
