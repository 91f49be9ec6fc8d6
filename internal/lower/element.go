package lower

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/span"
)

// sortedSlotNames returns m's keys sorted, so projection template splitting
// is deterministic across runs (map iteration order is not).
func sortedSlotNames(m map[string][]*htmldoc.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lowerElement handles one ElementNode already known not to be a meta tag.
// It detects projection (au-slot) children, template-controller splitting,
// and <let> elements before falling through to ordinary attribute
// expansion. Resource-aware wrapping (hydrateElement/hydrateAttribute) is
// deliberately not done here: spec.md §4.2's algorithm only names
// controller splitting and attribute-command expansion as lowering's job,
// reserving bindable/controller resolution for Host Resolution (C5), which
// has the project-semantics catalog this stage does not.
func (l *Lowerer) lowerElement(n *htmldoc.Node, nodeId span.NodeId, b *span.NodeIdBuilder, mod *IrModule) (*DomNode, []InstructionRow) {
	tag := n.Data

	if strings.EqualFold(tag, "let") {
		return l.lowerLetElement(n, nodeId, mod)
	}

	if ctrlName, branch, attr, ok := findControllerAttr(n); ok {
		return l.lowerController(n, nodeId, b, mod, ctrlName, branch, attr)
	}

	dom := &DomNode{
		Kind:        DomElement,
		Id:          nodeId,
		Tag:         tag,
		SelfClosed:  n.SelfClosed,
		Loc:         n.Loc,
		TagLoc:      n.TagLoc,
		CloseTagLoc: n.CloseTagLoc,
	}

	var rows []InstructionRow
	var instrs []Instruction
	projectionChildren, ordinaryChildren := splitProjection(n.Children())

	for _, a := range n.Attr {
		attrDom, instr, diagnostic := l.lowerAttr(a, mod)
		if attrDom != nil {
			dom.Attrs = append(dom.Attrs, *attrDom)
		}
		if instr != nil {
			instrs = append(instrs, *instr)
		}
		if diagnostic != nil {
			mod.Diags = append(mod.Diags, *diagnostic)
		}
	}
	if len(instrs) > 0 {
		rows = append(rows, InstructionRow{Target: nodeId, Instructions: instrs})
	}

	dom.Children = l.lowerChildren(flattenMeta(ordinaryChildren, nil), b, mod, &rows)

	for _, slot := range sortedSlotNames(projectionChildren) {
		children := projectionChildren[slot]
		nestedId := span.NewNestedTemplateId(nodeId, "slot:"+slot)
		nested := l.lowerTemplate(children, TemplateOrigin{Kind: OriginProjection, Host: nodeId, Slot: slot}, nestedId, mod)
		mod.Templates = append(mod.Templates, nested)
		rows = append(rows, InstructionRow{Target: nodeId, Instructions: []Instruction{{
			Kind: InstrHydrateTemplateController,
			Res:  "au-slot",
			Def:  nested,
		}}})
	}

	return dom, rows
}

// lowerLetElement gathers a <let> element's attributes into a single
// hydrateLetElement instruction; a bare `to-binding-context` attribute
// routes the assignments onto the binding context instead of the override
// context.
func (l *Lowerer) lowerLetElement(n *htmldoc.Node, nodeId span.NodeId, mod *IrModule) (*DomNode, []InstructionRow) {
	var lets []LetBinding
	toBindingContext := false
	for _, a := range n.Attr {
		if a.Name == "to-binding-context" {
			toBindingContext = true
			continue
		}
		cmd, ok := parseAttrName(a.Name)
		name := cmd.target
		if !ok {
			name = a.Name
		}
		ref := l.exprRefFor(a.Value, a.ValueSpan.Start, mod)
		lets = append(lets, LetBinding{To: name, From: BindingSource{Expr: ref}})
	}
	dom := &DomNode{Kind: DomElement, Id: nodeId, Tag: "let", Loc: n.Loc, TagLoc: n.TagLoc, SelfClosed: true}
	row := InstructionRow{Target: nodeId, Instructions: []Instruction{{
		Kind: InstrHydrateLetElement, Lets: lets, ToBindingContext: toBindingContext,
	}}}
	return dom, []InstructionRow{row}
}

// exprRefFor parses src (at its document offset) and records its table
// entry, returning a reference to it.
func (l *Lowerer) exprRefFor(src string, docOffset int, mod *IrModule) ExprRef {
	return l.parseAndRecord(src, docOffset, IsProperty, mod)
}

// findControllerAttr scans n's attributes for a template-controller or
// branch-selector command and returns its logical name, branch label (for
// branch selectors), and the matched raw attribute.
func findControllerAttr(n *htmldoc.Node) (ctrlName, branch string, attr htmldoc.Attr, ok bool) {
	for _, a := range n.Attr {
		if name, matched := controllerAttrNames[a.Name]; matched {
			return name, "", a, true
		}
	}
	for _, a := range n.Attr {
		if name, matched := branchAttrNames[a.Name]; matched {
			return name, name, a, true
		}
	}
	return "", "", htmldoc.Attr{}, false
}

// lowerController splits n into a marker DomNode plus a nested TemplateIR
// holding the original subtree (minus the controller attribute itself),
// per spec.md §4.2.
func (l *Lowerer) lowerController(n *htmldoc.Node, nodeId span.NodeId, b *span.NodeIdBuilder, mod *IrModule, ctrlName, branch string, ctrlAttr htmldoc.Attr) (*DomNode, []InstructionRow) {
	marker := &DomNode{Kind: DomTemplate, Id: nodeId, Tag: n.Data, Loc: n.Loc, TagLoc: n.TagLoc}

	origin := TemplateOrigin{Kind: OriginController, Host: nodeId, Controller: ctrlName}
	discriminator := ctrlName
	if branch != "" {
		origin = TemplateOrigin{Kind: OriginBranch, Host: nodeId, Branch: branch}
		discriminator = "branch:" + branch
	}
	nestedId := span.NewNestedTemplateId(nodeId, discriminator)

	stripped := cloneWithoutAttr(n, ctrlAttr.Name)
	nested := l.lowerTemplate([]*htmldoc.Node{stripped}, origin, nestedId, mod)
	mod.Templates = append(mod.Templates, nested)

	instr := Instruction{Kind: InstrHydrateTemplateController, Res: ctrlName, Def: nested, Branch: branch}

	if ctrlName == "repeat" {
		iterableSrc, iterableOffset := splitForOf(ctrlAttr.Value, ctrlAttr.ValueSpan.Start)
		ref := l.exprRefFor(iterableSrc, iterableOffset, mod)
		instr.Props = []Instruction{{Kind: InstrPropertyBinding, To: "items", From: BindingSource{Expr: ref}, Mode: ModeToView}}
	} else if ctrlName != "switch" {
		ref := l.exprRefFor(ctrlAttr.Value, ctrlAttr.ValueSpan.Start, mod)
		instr.Props = []Instruction{{Kind: InstrPropertyBinding, To: "value", From: BindingSource{Expr: ref}, Mode: ModeToView}}
	}

	return marker, []InstructionRow{{Target: nodeId, Instructions: []Instruction{instr}}}
}

// splitForOf strips a `repeat.for`'s "<local> of <iterable>" declarator
// syntax down to just the iterable expression, preserving its document
// offset so the parsed AST's span still points at the authored source.
// Destructuring declarators ("[a, b] of items") are not special-cased;
// the local-name scan just looks for the first " of " separator.
func splitForOf(value string, docOffset int) (string, int) {
	if idx := strings.Index(value, " of "); idx >= 0 {
		rest := value[idx+4:]
		return rest, docOffset + idx + 4
	}
	return value, docOffset
}

// cloneWithoutAttr returns a shallow copy of n with attr removed from its
// attribute list; all other fields (including Loc) are shared, since the
// nested template reuses the same source spans. n's children are moved
// under the copy, so n is left with no children.
func cloneWithoutAttr(n *htmldoc.Node, attrName string) *htmldoc.Node {
	clone := *n
	clone.Attr = nil
	for _, a := range n.Attr {
		if a.Name != attrName {
			clone.Attr = append(clone.Attr, a)
		}
	}
	clone.Parent, clone.PrevSibling, clone.NextSibling = nil, nil, nil
	clone.FirstChild, clone.LastChild = nil, nil
	for _, c := range n.Children() {
		clone.AppendChild(c)
	}
	return &clone
}

// splitProjection separates au-slot projection children from ordinary
// content children, grouping projected nodes by target slot name (default
// slot is "").
func splitProjection(children []*htmldoc.Node) (projected map[string][]*htmldoc.Node, ordinary []*htmldoc.Node) {
	for _, c := range children {
		if c.Type == htmldoc.ElementNode {
			if a, ok := c.Attribute("au-slot"); ok {
				if projected == nil {
					projected = map[string][]*htmldoc.Node{}
				}
				projected[a.Value] = append(projected[a.Value], c)
				continue
			}
		}
		ordinary = append(ordinary, c)
	}
	return projected, ordinary
}

// lowerAttr classifies and lowers one source attribute, returning the
// DomAttr to retain on the DOM output (nil if fully consumed into an
// instruction), the instruction it produces (nil for plain static
// attributes other than class and style, which are consumed into a
// setClassAttribute/setStyleAttribute instruction), and a diagnostic for
// unrecognized commands.
func (l *Lowerer) lowerAttr(a htmldoc.Attr, mod *IrModule) (*DomAttr, *Instruction, *diag.RawDiagnostic) {
	domAttr := DomAttr{Name: a.Name, Value: a.Value, NameSpan: a.NameSpan, ValueSpan: a.ValueSpan}

	if !strings.ContainsAny(a.Name, ".") {
		if parts, pieces, hasInterp := scanInterpolation(a.Value, a.ValueSpan.Start); hasInterp {
			exprs := make([]ExprRef, len(pieces))
			for i, p := range pieces {
				exprs[i] = l.parseAndRecord(p.Src, p.Start, IsInterp, mod)
			}
			normParts := make([]string, len(parts))
			for i, p := range parts {
				normParts[i] = normalizeCRLF(p)
			}
			return &domAttr, &Instruction{
				Kind: InstrAttributeBinding, Attr: a.Name, To: a.Name,
				From: BindingSource{IsInterp: true, Parts: normParts, Exprs: exprs},
			}, nil
		}
		switch a.Name {
		case "class":
			return nil, &Instruction{Kind: InstrSetClassAttribute, Value: a.Value}, nil
		case "style":
			return nil, &Instruction{Kind: InstrSetStyleAttribute, Value: a.Value}, nil
		}
		return &domAttr, nil, nil
	}

	cmd, ok := parseAttrName(a.Name)
	if !ok {
		return &domAttr, nil, &diag.RawDiagnostic{
			Code:    diag.CodeInvalidCommandUsage,
			Message: fmt.Sprintf("unrecognized binding command %q", a.Name),
			Span:    ptrSpan(span.NewSourceSpan(l.file, a.NameSpan.Start, a.NameSpan.End)),
		}
	}

	switch cmd.kind {
	case cmdNone:
		return &domAttr, nil, nil
	case cmdPropertyBind:
		ref := l.exprRefFor(a.Value, a.ValueSpan.Start, mod)
		return nil, &Instruction{Kind: InstrPropertyBinding, To: cmd.target, From: BindingSource{Expr: ref}, Mode: cmd.mode}, nil
	case cmdListener:
		ref := l.exprRefFor(a.Value, a.ValueSpan.Start, mod)
		return nil, &Instruction{Kind: InstrListenerBinding, To: cmd.target, From: BindingSource{Expr: ref}, Capture: cmd.capture}, nil
	case cmdRef:
		return nil, &Instruction{Kind: InstrRefBinding, To: a.Value}, nil
	case cmdStyleProp:
		ref := l.exprRefFor(a.Value, a.ValueSpan.Start, mod)
		return nil, &Instruction{Kind: InstrStylePropertyBinding, To: cmd.target, From: BindingSource{Expr: ref}}, nil
	case cmdClassProp:
		ref := l.exprRefFor(a.Value, a.ValueSpan.Start, mod)
		return nil, &Instruction{Kind: InstrAttributeBinding, Attr: "class", To: cmd.target, From: BindingSource{Expr: ref}}, nil
	case cmdAttr:
		ref := l.exprRefFor(a.Value, a.ValueSpan.Start, mod)
		return nil, &Instruction{Kind: InstrAttributeBinding, Attr: cmd.target, To: cmd.target, From: BindingSource{Expr: ref}}, nil
	}
	return &domAttr, nil, nil
}
