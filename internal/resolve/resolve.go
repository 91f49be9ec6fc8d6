package resolve

import (
	"fmt"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/span"
)

// Resolver links lowered instructions against a discovery snapshot.
type Resolver struct {
	graph *discovery.ResourceGraph
}

// New returns a Resolver bound to graph (typically the root scope of a
// discovery.Snapshot, reused unchanged across every template in a
// project — spec.md §2's control-flow note).
func New(graph *discovery.ResourceGraph) *Resolver {
	return &Resolver{graph: graph}
}

// Resolve links every instruction in mod, returning the linked module and
// any unknown-bindable diagnostics raised along the way.
func (r *Resolver) Resolve(mod *lower.IrModule) (*LinkedModule, []diag.RawDiagnostic) {
	out := &LinkedModule{ExprTable: mod.ExprTable}
	var diags []diag.RawDiagnostic
	for _, tpl := range mod.Templates {
		tags := tagsByNodeId(tpl.Dom)
		lt := &LinkedTemplate{Source: tpl}
		for _, row := range tpl.Rows {
			lrow := LinkedRow{Target: row.Target}
			tag := tags[row.Target]
			for _, instr := range row.Instructions {
				sem, d := r.resolveInstruction(instr, tag)
				if d != nil {
					diags = append(diags, *d)
				}
				lrow.Instructions = append(lrow.Instructions, LinkedInstruction{
					Target: row.Target, Kind: instr.Kind, Sem: sem, From: instr.From, Source: instr,
				})
			}
			lt.Rows = append(lt.Rows, lrow)
		}
		out.Templates = append(out.Templates, lt)
	}
	return out, diags
}

// tagsByNodeId flattens a TemplateIR's DOM into a NodeId -> tag name
// lookup, so an InstructionRow (which only carries a NodeId) can recover
// which element it targets.
func tagsByNodeId(dom *lower.DomNode) map[span.NodeId]string {
	out := map[span.NodeId]string{}
	var walk func(n *lower.DomNode)
	walk = func(n *lower.DomNode) {
		if n == nil {
			return
		}
		if n.Kind == lower.DomElement {
			out[n.Id] = n.Tag
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(dom)
	return out
}

func (r *Resolver) resolveInstruction(instr lower.Instruction, tag string) (TargetSem, *diag.RawDiagnostic) {
	switch instr.Kind {
	case lower.InstrPropertyBinding:
		if def, ok := r.graph.Lookup(r.graph.Root, discovery.KindCustomElement, tag); ok {
			if b, ok := def.Bindables[instr.To]; ok {
				return TargetSem{Kind: TargetElementBindable, Resource: discovery.ResourceKey{Kind: discovery.KindCustomElement, Name: tag}, Bindable: instr.To, Expected: b.Type.Value}, nil
			}
			return unknownBindable(tag, instr.To)
		}
		return TargetSem{Kind: TargetElementNativeProp, Bindable: instr.To}, nil

	case lower.InstrAttributeBinding:
		attrName := instr.Attr
		if def, ok := r.graph.Lookup(r.graph.Root, discovery.KindCustomAttribute, attrName); ok {
			return TargetSem{Kind: TargetAttributeBindable, Resource: discovery.ResourceKey{Kind: discovery.KindCustomAttribute, Name: attrName}, Bindable: "value", Expected: primaryBindableType(def)}, nil
		}
		return TargetSem{Kind: TargetElementNativeProp, Bindable: attrName}, nil

	case lower.InstrStylePropertyBinding:
		return TargetSem{Kind: TargetStyle, Bindable: instr.To}, nil

	case lower.InstrListenerBinding:
		return TargetSem{Kind: TargetElementNativeProp, Bindable: instr.To, Expected: "Function"}, nil

	case lower.InstrHydrateTemplateController:
		if def, ok := r.graph.Lookup(r.graph.Root, discovery.KindTemplateController, instr.Res); ok {
			expected := "unknown"
			if instr.Res == "repeat" {
				expected = "Iterable<T>"
			} else if b, ok := def.Bindables["value"]; ok {
				expected = b.Type.Value
			}
			return TargetSem{Kind: TargetControllerProp, Resource: discovery.ResourceKey{Kind: discovery.KindTemplateController, Name: instr.Res}, Bindable: "value", Expected: expected}, nil
		}
		// Built-in controllers (if/repeat/switch/with/portal/case/...) have
		// no discovery-catalog entry; they are host-known, not
		// project-defined, so this is not an unknown-bindable situation.
		expected := "unknown"
		if instr.Res == "repeat" {
			expected = "Iterable<T>"
		}
		return TargetSem{Kind: TargetControllerProp, Resource: discovery.ResourceKey{Kind: discovery.KindTemplateController, Name: instr.Res}, Bindable: "value", Expected: expected}, nil

	case lower.InstrRefBinding:
		return TargetSem{Kind: TargetElementNativeProp, Bindable: instr.To}, nil

	default:
		return TargetSem{Kind: TargetUnknown}, nil
	}
}

func unknownBindable(tag, name string) (TargetSem, *diag.RawDiagnostic) {
	return TargetSem{Kind: TargetUnknown}, &diag.RawDiagnostic{
		Code:    "unknown-bindable",
		Message: fmt.Sprintf("element <%s> has no bindable %q", tag, name),
		Data:    map[string]any{"tag": tag, "bindable": name},
	}
}

// primaryBindableType returns a custom attribute's primary bindable type:
// the conventional "value" bindable if declared, else "" (multi-bindable
// attributes use attribute micro-syntax, which Scope Binding/Type Check
// resolve per-property rather than through this single slot).
func primaryBindableType(def *discovery.ResourceDef) string {
	if b, ok := def.Bindables["value"]; ok {
		return b.Type.Value
	}
	return ""
}
