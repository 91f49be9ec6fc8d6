package workspace

import (
	"context"
	"sort"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/provenance"
	"github.com/opmodel/tscompiler/internal/span"
)

// Position is the "(uri, offset)" pair every query operation in spec.md
// §4.10 accepts.
type Position struct {
	URI    span.SourceFileId
	Offset int
}

// NodeAt returns the narrowest DomNode whose span covers pos, and the
// TemplateIR it belongs to (a template's root or one of its nested
// controller/branch/projection templates).
func (w *Workspace) NodeAt(ctx context.Context, pos Position) (*lower.DomNode, *lower.TemplateIR, bool) {
	c, err := w.GetCompilation(ctx, pos.URI)
	if err != nil {
		return nil, nil, false
	}
	var best *lower.DomNode
	var bestTpl *lower.TemplateIR
	for _, tpl := range c.Module.Templates {
		if n := narrowestNode(tpl.Dom, pos.Offset); n != nil {
			if best == nil || n.Loc.Len() < best.Loc.Len() {
				best, bestTpl = n, tpl
			}
		}
	}
	if best == nil {
		return nil, nil, false
	}
	return best, bestTpl, true
}

func narrowestNode(n *lower.DomNode, offset int) *lower.DomNode {
	if n == nil || !n.Loc.Contains(offset) {
		return nil
	}
	best := n
	for _, child := range n.Children {
		if hit := narrowestNode(child, offset); hit != nil {
			if hit.Loc.Len() < best.Loc.Len() {
				best = hit
			}
		}
	}
	return best
}

// ExprAt returns the expression whose span covers pos, narrowest first
// (so a member-position lookup inside a larger containing expression is
// impossible here since the expression table has no nesting — this is
// simply "the" expression, spec.md §3's ExprTableEntry is flat per
// binding position).
func (w *Workspace) ExprAt(ctx context.Context, pos Position) (span.ExprId, bool) {
	c, err := w.GetCompilation(ctx, pos.URI)
	if err != nil {
		return "", false
	}
	var best span.ExprId
	var bestLen = -1
	for id, entry := range c.Module.ExprTable {
		if !entry.Span.Contains(pos.Offset) {
			continue
		}
		if bestLen == -1 || entry.Span.Len() < bestLen {
			best, bestLen = id, entry.Span.Len()
		}
	}
	return best, bestLen != -1
}

// ControllerAt returns the hydrateTemplateController instruction whose
// host element covers pos, plus the TemplateIR it was lowered into.
func (w *Workspace) ControllerAt(ctx context.Context, pos Position) (*lower.Instruction, *lower.TemplateIR, bool) {
	c, err := w.GetCompilation(ctx, pos.URI)
	if err != nil {
		return nil, nil, false
	}
	for _, tpl := range c.Module.Templates {
		node := narrowestNode(tpl.Dom, pos.Offset)
		if node == nil {
			continue
		}
		for _, row := range tpl.Rows {
			if row.Target != node.Id {
				continue
			}
			for i := range row.Instructions {
				if row.Instructions[i].Kind == lower.InstrHydrateTemplateController {
					return &row.Instructions[i], tpl, true
				}
			}
		}
	}
	return nil, nil, false
}

// BindablesFor returns the converged bindable set for the resource an
// element node names (custom element tag, or a matching custom
// attribute), or false if node's tag/attributes resolve to no known
// resource.
func (w *Workspace) BindablesFor(node *lower.DomNode) (map[string]discovery.ResourceBindable, *discovery.ResourceDef, bool) {
	if node == nil || w.opts.Graph == nil {
		return nil, nil, false
	}
	if def, ok := w.opts.Graph.Lookup(w.opts.Graph.Root, discovery.KindCustomElement, node.Tag); ok {
		return def.Bindables, def, true
	}
	for _, a := range node.Attrs {
		if def, ok := w.opts.Graph.Lookup(w.opts.Graph.Root, discovery.KindCustomAttribute, a.Name); ok {
			return def.Bindables, def, true
		}
	}
	return nil, nil, false
}

// ExpectedTypeOf returns the Type Check table's expected-type entry for
// exprId, if Type Check recorded one.
func (w *Workspace) ExpectedTypeOf(ctx context.Context, file span.SourceFileId, id span.ExprId) (string, bool) {
	c, err := w.GetCompilation(ctx, file)
	if err != nil {
		return "", false
	}
	entry, ok := c.Types.Entries[id]
	if !ok {
		return "", false
	}
	return entry.Expected, true
}

// HoverResult is the answer to a hover query: the span it covers and the
// text to display.
type HoverResult struct {
	Span span.TextSpan
	Text string
}

// Hover answers spec.md §4.10's hover(pos): over an expression, the
// expected/inferred type pair Type Check recorded; over an element/
// attribute naming a known resource, its bindable catalog.
func (w *Workspace) Hover(ctx context.Context, pos Position) (*HoverResult, bool) {
	c, err := w.GetCompilation(ctx, pos.URI)
	if err != nil {
		return nil, false
	}
	if id, ok := w.ExprAt(ctx, pos); ok {
		entry, ok := c.Types.Entries[id]
		if ok {
			exprEntry := c.Module.ExprTable[id]
			return &HoverResult{Span: exprEntry.Span, Text: "expected: " + entry.Expected + "\ninferred: " + entry.Inferred}, true
		}
	}
	node, _, ok := w.NodeAt(ctx, pos)
	if !ok {
		return nil, false
	}
	bindables, def, ok := w.BindablesFor(node)
	if !ok {
		return nil, false
	}
	text := def.Name.Value + " (" + def.Kind.String() + ")"
	for name, b := range bindables {
		text += "\n  " + name + ": " + b.Type.Value
	}
	return &HoverResult{Span: node.TagLoc, Text: text}, true
}

// completionConfidence is spec.md §4.10's "confidenceRank: exact<high<
// partial<low".
type completionConfidence int

const (
	ConfidenceExact completionConfidence = iota
	ConfidenceHigh
	ConfidencePartial
	ConfidenceLow
)

// completionOrigin mirrors discovery.OriginKind but widens it with
// OriginUnknown for items with no traceable provenance at all, matching
// spec.md's "originRank: source<config<builtin<unknown".
type completionOrigin int

const (
	OriginSource completionOrigin = iota
	OriginConfig
	OriginBuiltin
	OriginUnknown
)

// Completion is the full completion-item shape: label, the sort
// secondary key, and the two rank dimensions completions() orders by.
type Completion struct {
	Label      string
	SortText   string
	Confidence completionConfidence
	Origin     completionOrigin
}

func originRankOf(o discovery.OriginKind) completionOrigin {
	switch o {
	case discovery.OriginSource:
		return OriginSource
	case discovery.OriginConfig:
		return OriginConfig
	case discovery.OriginBuiltin:
		return OriginBuiltin
	default:
		return OriginUnknown
	}
}

// Completions answers spec.md §4.10's completions(pos): element-name
// completions when pos sits in tag position, bindable-name completions
// when pos sits inside a known element's attribute area. Results are
// ordered by (confidenceRank, originRank, sortText|label, label) and
// deduplicated by label, per spec.md §4.10.
func (w *Workspace) Completions(ctx context.Context, pos Position) []Completion {
	node, _, ok := w.NodeAt(ctx, pos)
	var out []Completion
	if !ok || w.opts.Graph == nil {
		return out
	}
	if node.TagLoc.Contains(pos.Offset) || node.Kind == lower.DomElement {
		inAttrArea := node.TagLoc.Contains(pos.Offset) && pos.Offset > node.TagLoc.Start+1+len(node.Tag)
		if bindables, _, hasResource := w.BindablesFor(node); hasResource && inAttrArea {
			for name, b := range bindables {
				out = append(out, Completion{
					Label:      name,
					SortText:   name,
					Confidence: ConfidenceExact,
					Origin:     originRankOf(b.Name.Origin),
				})
			}
		}
		for key, def := range w.opts.Graph.Resources {
			if inAttrArea || key.Kind != discovery.KindCustomElement {
				continue
			}
			out = append(out, Completion{
				Label:      def.Name.Value,
				SortText:   def.Name.Value,
				Confidence: ConfidenceHigh,
				Origin:     originRankOf(def.Name.Origin),
			})
		}
	}
	return dedupeAndSortCompletions(out)
}

func dedupeAndSortCompletions(items []Completion) []Completion {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Confidence != b.Confidence {
			return a.Confidence < b.Confidence
		}
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.SortText != b.SortText {
			return a.SortText < b.SortText
		}
		return a.Label < b.Label
	})
	seen := map[string]bool{}
	out := items[:0]
	for _, it := range items {
		if seen[it.Label] {
			continue
		}
		seen[it.Label] = true
		out = append(out, it)
	}
	return out
}

// Definition answers spec.md §4.10's definition(pos): the source
// location(s) backing the resource/bindable named at pos, drawn from
// the converged ResourceDef's own Sourced provenance.
func (w *Workspace) Definition(ctx context.Context, pos Position) []span.SourceSpan {
	node, _, ok := w.NodeAt(ctx, pos)
	if !ok {
		return nil
	}
	var out []span.SourceSpan
	if def, ok := w.opts.Graph.Lookup(w.opts.Graph.Root, discovery.KindCustomElement, node.Tag); ok && node.TagLoc.Contains(pos.Offset) {
		if loc := def.Name.Location; loc != nil {
			out = append(out, span.NewSourceSpan(loc.File, loc.Span.Start, loc.Span.End))
		}
		return out
	}
	for _, a := range node.Attrs {
		if !a.NameSpan.Contains(pos.Offset) {
			continue
		}
		bindables, _, has := w.BindablesFor(node)
		if !has {
			continue
		}
		if b, ok := bindables[a.Name]; ok && b.Name.Location != nil {
			loc := b.Name.Location
			out = append(out, span.NewSourceSpan(loc.File, loc.Span.Start, loc.Span.End))
		}
	}
	return out
}

// References answers spec.md §4.10's references(pos): when the node at
// pos is a known custom element, it walks the compiled DOM and returns
// the opening-tag span of every element with the same tag. Attribute
// occurrences are not collected, and the provenance index is not
// consulted.
func (w *Workspace) References(ctx context.Context, pos Position) []span.SourceSpan {
	c, err := w.GetCompilation(ctx, pos.URI)
	if err != nil {
		return nil
	}
	node, _, ok := w.NodeAt(ctx, pos)
	if !ok {
		return nil
	}
	var out []span.SourceSpan
	if _, ok := w.opts.Graph.Lookup(w.opts.Graph.Root, discovery.KindCustomElement, node.Tag); ok {
		var collect func(n *lower.DomNode)
		collect = func(n *lower.DomNode) {
			if n == nil {
				return
			}
			if n.Tag == node.Tag && n.Kind == lower.DomElement {
				out = append(out, span.NewSourceSpan(pos.URI, n.TagLoc.Start, n.TagLoc.End))
			}
			for _, ch := range n.Children {
				collect(ch)
			}
		}
		for _, tpl := range c.Module.Templates {
			collect(tpl.Dom)
		}
	}
	return out
}

// OverlayQuery answers a generated-overlay-position query (e.g. a
// language-service diagnostic anchored in the `.__au.ttc.overlay.ts`
// file) by mapping it back to the authored template span, enforcing
// spec.md §4.8's "reference lookups drop degraded spans" rule.
func (w *Workspace) OverlayQuery(file span.SourceFileId, overlayOffset int) (span.SourceSpan, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := provenance.Query{Policy: provenance.ReportMissing, RequireExactMappedSpan: true}
	edge, ok := w.prov.LookupGeneratedWithPolicy(overlayURI(file), overlayOffset, q, provenance.Edge{})
	if !ok {
		return span.SourceSpan{}, false
	}
	return span.NewSourceSpan(span.SourceFileId(edge.To.URI), edge.To.Span.Start, edge.To.Span.End), true
}
