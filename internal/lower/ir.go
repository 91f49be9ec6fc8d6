// Package lower implements Template Lowering (C4): it walks a parsed HTML
// tree (internal/htmldoc) and produces the canonical template IR — a DOM
// tree of stable-id nodes, per-node instruction rows, and an expression
// table — that every downstream stage (resolution, scope binding, type
// check, overlay synthesis) consumes instead of re-parsing markup.
//
// The traversal and instruction-row shape are grounded on the staged,
// multi-pass transform idiom in other_examples' withastro/compiler
// transform.go and printer.go (walk once, classify each node, split
// controller subtrees into nested templates) adapted to this compiler's
// binding-instruction domain instead of styling/scoping.
package lower

import (
	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/span"
)

// DomNodeKind discriminates DomNode's closed sum.
type DomNodeKind int

const (
	DomElement DomNodeKind = iota
	DomTemplate
	DomText
	DomComment
)

// DomAttr is a source attribute retained on the IR. Plain and
// interpolated attributes are listed; attributes consumed into an
// instruction (binding commands, static class/style, the controller
// attribute of a split element) are not.
type DomAttr struct {
	Name      string
	Value     string
	NameSpan  span.TextSpan
	ValueSpan span.TextSpan
}

// DomNode is the IR's DOM tree node, spec.md §3's closed sum over
// element/template/text/comment.
type DomNode struct {
	Kind DomNodeKind
	Id   span.NodeId

	// element + template
	Tag         string
	NS          string
	Attrs       []DomAttr
	Children    []*DomNode
	SelfClosed  bool
	TagLoc      span.TextSpan
	CloseTagLoc span.TextSpan

	// text + comment
	Text string

	Loc span.TextSpan
}

// TemplateOrigin is the closed sum describing why a nested template exists.
type TemplateOrigin struct {
	Kind       OriginKind
	File       span.SourceFileId // root
	Host       span.NodeId       // controller | branch | projection
	Controller string             // controller
	Branch     string             // branch: then|catch|pending|case|default
	Slot       string             // projection
	Reason     string             // synthetic
}

type OriginKind int

const (
	OriginRoot OriginKind = iota
	OriginController
	OriginBranch
	OriginProjection
	OriginSynthetic
)

// BindingMode mirrors the binding-command modes recognized off prop.bind
// variants.
type BindingMode int

const (
	ModeToView BindingMode = iota
	ModeOneTime
	ModeFromView
	ModeTwoWay
	ModeDefault
)

// ExprRef points at an entry in the owning TemplateIR's expression table.
type ExprRef struct {
	Id  span.ExprId
	Loc span.TextSpan
}

// BindingSource is the closed sum an Instruction's `from` field holds.
type BindingSource struct {
	IsInterp bool
	Expr     ExprRef   // !IsInterp
	Parts    []string  // IsInterp: literal text chunks, len(Parts) == len(Exprs)+1
	Exprs    []ExprRef // IsInterp
}

// InstructionKind discriminates the Instruction closed sum.
type InstructionKind int

const (
	InstrPropertyBinding InstructionKind = iota
	InstrAttributeBinding
	InstrStylePropertyBinding
	InstrListenerBinding
	InstrRefBinding
	InstrTextBinding
	InstrSetAttribute
	InstrSetClassAttribute
	InstrSetStyleAttribute
	InstrSetProperty
	InstrHydrateElement
	InstrHydrateAttribute
	InstrHydrateTemplateController
	InstrHydrateLetElement
)

// LetBinding is one member of a hydrateLetElement instruction.
type LetBinding struct {
	To   string
	From BindingSource
}

// Instruction is the closed sum of per-target binding directives. Exactly
// the fields relevant to Kind are populated. Later stages switch over
// Kind for the kinds they handle; resolve maps any kind it does not name
// to TargetUnknown.
type Instruction struct {
	Kind InstructionKind

	// propertyBinding / attributeBinding / stylePropertyBinding / setProperty
	To   string
	From BindingSource
	Mode BindingMode

	// attributeBinding
	Attr string

	// listenerBinding
	Capture  bool
	Modifier string

	// setAttribute / setClassAttribute / setStyleAttribute
	Value string

	// hydrateElement / hydrateAttribute / hydrateTemplateController
	Res          string
	Props        []Instruction
	Containerless bool
	Alias        string
	Def          *TemplateIR // hydrateTemplateController
	Branch       string      // hydrateTemplateController, optional

	// hydrateLetElement
	Lets             []LetBinding
	ToBindingContext bool
}

// InstructionRow binds a set of instructions to the DOM node they animate.
type InstructionRow struct {
	Target       span.NodeId
	Instructions []Instruction
}

// ExpressionType classifies an expression table entry's evaluation
// position (spec.md §3).
type ExpressionType int

const (
	IsProperty ExpressionType = iota
	IsFunction
	IsInterp
)

// ExprTableEntry is the authoritative store for every parsed binding
// expression in a template; InstructionRow/BindingSource only ever
// reference expressions by ExprId.
type ExprTableEntry struct {
	Id             span.ExprId
	ExpressionType ExpressionType
	Ast            exprast.Node
	Span           span.TextSpan
}

// TemplateMeta records source-level directives stripped from the DOM
// output (import/require/bindable/use-shadow-dom/containerless/capture/
// alias meta tags) so a caller can excise them from authored HTML.
type TemplateMeta struct {
	StrippedRanges []span.TextSpan
	UseShadowDOM   bool
	Containerless  bool
}

// TemplateIR is the output unit of Template Lowering: one DOM tree plus its
// instruction rows; the expression table those rows reference is shared by
// the whole module and held on IrModule. Nested
// templates produced by controller/branch/projection splitting are
// complete TemplateIR values in their own right, referenced from the
// parent's hydrateTemplateController instruction and also listed in the
// owning IrModule.
type TemplateIR struct {
	Id     span.TemplateId
	Dom    *DomNode
	Rows   []InstructionRow
	Origin TemplateOrigin
	Meta   TemplateMeta
}

// IrModule is the full output of lowering one root template: the root plus
// every nested template it spawned, and the shared expression table.
type IrModule struct {
	Templates []*TemplateIR
	ExprTable map[span.ExprId]ExprTableEntry
	Diags     []diag.RawDiagnostic
}
