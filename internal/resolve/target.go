// Package resolve implements Host Resolution (C5): it links each Template
// Lowering (C4) instruction's target against the converged resource
// catalog from Project-Semantics Discovery (C3), producing LinkedModule —
// the input Scope Binding (C6) and Type Check (C7) consume.
package resolve

import (
	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/span"
)

// TargetSemKind is the closed sum of resolved binding-target shapes
// (spec.md §4.4), widened with TargetUnknown for the explicitly-named
// "emits unknown-bindable if an attribute has no match" / "offending
// target becomes unknown-typed" (§7) fallback case.
type TargetSemKind int

const (
	TargetElementBindable TargetSemKind = iota
	TargetAttributeBindable
	TargetControllerProp
	TargetElementNativeProp
	TargetStyle
	TargetUnknown
)

// TargetSem is the resolved shape of one Instruction's binding target.
type TargetSem struct {
	Kind     TargetSemKind
	Resource discovery.ResourceKey // ElementBindable, AttributeBindable, ControllerProp
	Bindable string                // bindable member name, when applicable
	Expected string                // expected type text, "" if not statically known
}

// LinkedInstruction mirrors a lower.Instruction with its target resolved.
type LinkedInstruction struct {
	Target span.NodeId
	Kind   lower.InstructionKind
	Sem    TargetSem
	From   lower.BindingSource
	// Source is the original lowering-stage instruction, kept so later
	// stages (overlay synthesis) can recover fields this type doesn't
	// duplicate (Value, Lets, Props, Def, Branch, ...).
	Source lower.Instruction
}

// LinkedRow mirrors an InstructionRow with every instruction linked.
type LinkedRow struct {
	Target       span.NodeId
	Instructions []LinkedInstruction
}

// LinkedTemplate is one TemplateIR with resolved rows; Dom/Origin/Meta are
// unchanged from lowering.
type LinkedTemplate struct {
	Source *lower.TemplateIR
	Rows   []LinkedRow
}

// LinkedModule is the full output of Host Resolution.
type LinkedModule struct {
	Templates []*LinkedTemplate
	ExprTable map[span.ExprId]lower.ExprTableEntry
}
