package lower

import (
	"fmt"
	"strings"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/span"
)

// Lowerer turns one file's parsed HTML tree into an IrModule. It owns no
// state across files — every Lower call starts a fresh expression table and
// diagnostics list, matching the Pipeline Engine's per-stage purity
// contract (spec.md §4.1).
type Lowerer struct {
	file   span.SourceFileId
	parser *exprast.Parser
}

// New returns a Lowerer for file's content.
func New(file span.SourceFileId) *Lowerer {
	return &Lowerer{file: file, parser: exprast.NewParser()}
}

// Lower lowers root (a Document node from internal/htmldoc) into an
// IrModule: the root TemplateIR plus any nested templates split out by
// projection/controller/branch handling.
func (l *Lowerer) Lower(root *htmldoc.Node) *IrModule {
	mod := &IrModule{ExprTable: map[span.ExprId]ExprTableEntry{}}
	rootTpl := l.lowerTemplate(root.Children(), TemplateOrigin{Kind: OriginRoot, File: l.file}, span.NewRootTemplateId(l.file), mod)
	mod.Templates = append([]*TemplateIR{rootTpl}, mod.Templates...)
	return mod
}

// lowerTemplate lowers a flat list of sibling HTML nodes into a standalone
// TemplateIR with its own NodeId namespace. Nested templates it spawns are
// appended to mod.Templates as a side effect; the caller is responsible for
// placing the returned template itself into mod.Templates.
func (l *Lowerer) lowerTemplate(children []*htmldoc.Node, origin TemplateOrigin, id span.TemplateId, mod *IrModule) *TemplateIR {
	b := span.NewNodeIdBuilder()
	var rows []InstructionRow
	var stripped []span.TextSpan
	domChildren := l.lowerChildren(flattenMeta(children, &stripped), b, mod, &rows)
	tpl := &TemplateIR{
		Id:     id,
		Dom:    &DomNode{Kind: DomTemplate, Id: b.Root(), Children: domChildren},
		Rows:   rows,
		Origin: origin,
		Meta:   TemplateMeta{StrippedRanges: stripped},
	}
	return tpl
}

// flattenMeta inlines the children of any meta tag (import/require/
// bindable/use-shadow-dom/containerless/capture/alias) in place of the meta
// tag itself, recursively, and records each meta tag's source range into
// strippedRanges. Non-meta nodes pass through unchanged.
func flattenMeta(nodes []*htmldoc.Node, strippedRanges *[]span.TextSpan) []*htmldoc.Node {
	var out []*htmldoc.Node
	for _, n := range nodes {
		if n.Type == htmldoc.ElementNode && metaTagNames[strings.ToLower(n.Data)] {
			if strippedRanges != nil {
				*strippedRanges = append(*strippedRanges, n.Loc)
			}
			out = append(out, flattenMeta(n.Children(), strippedRanges)...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// lowerChildren lowers a sibling list already flattened of meta tags,
// assigning NodeIds by position and accumulating instruction rows into
// *rows.
func (l *Lowerer) lowerChildren(nodes []*htmldoc.Node, b *span.NodeIdBuilder, mod *IrModule, rows *[]InstructionRow) []*DomNode {
	sameKind := map[string]int{}
	var out []*DomNode
	for i, n := range nodes {
		kind := domKindName(n)
		idx := sameKind[kind]
		sameKind[kind]++
		nodeId := b.Push(i, kind, idx)

		dom, rowsForNode := l.lowerNode(n, nodeId, b, mod)
		b.Pop()
		if dom != nil {
			out = append(out, dom)
		}
		*rows = append(*rows, rowsForNode...)
	}
	return out
}

func domKindName(n *htmldoc.Node) string {
	switch n.Type {
	case htmldoc.ElementNode:
		return "element"
	case htmldoc.TextNode:
		return "text"
	case htmldoc.CommentNode:
		return "comment"
	default:
		return "node"
	}
}

// lowerNode lowers a single flattened node at nodeId, returning its DomNode
// (nil for nodes fully absorbed elsewhere, e.g. projection children) and
// any instruction rows it and its descendants produced.
func (l *Lowerer) lowerNode(n *htmldoc.Node, nodeId span.NodeId, b *span.NodeIdBuilder, mod *IrModule) (*DomNode, []InstructionRow) {
	switch n.Type {
	case htmldoc.TextNode:
		return l.lowerText(n, nodeId, mod)
	case htmldoc.CommentNode:
		return &DomNode{Kind: DomComment, Id: nodeId, Text: n.Data, Loc: n.Loc}, nil
	case htmldoc.ElementNode:
		return l.lowerElement(n, nodeId, b, mod)
	default:
		return nil, nil
	}
}

func (l *Lowerer) lowerText(n *htmldoc.Node, nodeId span.NodeId, mod *IrModule) (*DomNode, []InstructionRow) {
	parts, pieces, hasInterp := scanInterpolation(n.Data, n.Loc.Start)
	dom := &DomNode{Kind: DomText, Id: nodeId, Text: normalizeCRLF(n.Data), Loc: n.Loc}
	if !hasInterp {
		return dom, nil
	}
	normParts := make([]string, len(parts))
	for i, p := range parts {
		normParts[i] = normalizeCRLF(p)
	}
	exprs := make([]ExprRef, len(pieces))
	for i, piece := range pieces {
		exprs[i] = l.parseAndRecord(piece.Src, piece.Start, IsInterp, mod)
	}
	row := InstructionRow{Target: nodeId, Instructions: []Instruction{{
		Kind: InstrTextBinding,
		From: BindingSource{IsInterp: true, Parts: normParts, Exprs: exprs},
	}}}
	return dom, []InstructionRow{row}
}

// parseAndRecord parses src (an expression found at document offset
// docOffset) and records its ExprTableEntry, returning a reference to it.
// Parse failures still produce a recovery AST (exprast guarantees this) so
// the expression table always has an entry for every ExprRef spec.md §8
// invariant (ii) requires.
func (l *Lowerer) parseAndRecord(src string, docOffset int, exprType ExpressionType, mod *IrModule) ExprRef {
	ast, err := l.parser.Parse(src, docOffset)
	sp := span.NewTextSpan(docOffset, docOffset+len(src))
	if err != nil {
		mod.Diags = append(mod.Diags, diag.RawDiagnostic{
			Code:    diag.CodeExprParseError,
			Message: fmt.Sprintf("failed to parse expression %q: %v", src, err),
			Span:    ptrSpan(span.NewSourceSpan(l.file, sp.Start, sp.End)),
		})
	}
	normalized := exprast.Normalize(ast)
	id := span.NewExprId(span.ExprIdPayload{
		File:             l.file,
		Span:             sp,
		ExpressionType:   exprTypeLabel(exprType),
		NormalizedSource: normalized,
	})
	if _, exists := mod.ExprTable[id]; !exists {
		mod.ExprTable[id] = ExprTableEntry{Id: id, ExpressionType: exprType, Ast: ast, Span: sp}
	}
	return ExprRef{Id: id, Loc: sp}
}

func exprTypeLabel(t ExpressionType) string {
	switch t {
	case IsFunction:
		return "IsFunction"
	case IsInterp:
		return "IsInterp"
	default:
		return "IsProperty"
	}
}

func ptrSpan(s span.SourceSpan) *span.SourceSpan { return &s }
