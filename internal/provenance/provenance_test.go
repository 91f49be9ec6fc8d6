package provenance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/overlay"
	"github.com/opmodel/tscompiler/internal/provenance"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

func buildIndex(t *testing.T, src string) (*provenance.Index, *overlay.Emission) {
	t.Helper()
	doc, err := htmldoc.Parse(src)
	require.NoError(t, err)
	mod := lower.New(span.NewSourceFileId("app.html")).Lower(doc)
	linked, diags := resolve.New(discovery.Discover(nil).Graph).Resolve(mod)
	require.Empty(t, diags)
	bound := scope.Bind(linked, scope.TypeRef{Name: "AppViewModel"})
	plan := overlay.BuildPlan(linked, bound.ByTemplate)

	spans := map[span.ExprId]span.TextSpan{}
	asts := map[span.ExprId]exprast.Node{}
	for id, entry := range linked.ExprTable {
		spans[id] = entry.Span
		asts[id] = entry.Ast
	}

	emission := overlay.Emit(plan, spans, asts)
	idx := provenance.NewIndex()
	idx.AddEdges(provenance.FromOverlay("app.html", "app.html.overlay.ts", emission)...)
	return idx, emission
}

func TestLookupGeneratedFindsExprEdge(t *testing.T) {
	idx, emission := buildIndex(t, `<div class.bind="name"></div>`)
	require.Len(t, emission.Mappings, 1)
	call := emission.Mappings[0].CallSpan

	edge, ok := idx.LookupGenerated("app.html.overlay.ts", call.Start+1)
	require.True(t, ok)
	assert.Equal(t, provenance.EdgeOverlayExpr, edge.Kind)
	assert.Equal(t, "app.html", edge.To.URI)
}

func TestLookupSourceFindsExprEdge(t *testing.T) {
	idx, emission := buildIndex(t, `<div class.bind="name"></div>`)
	html := emission.Mappings[0].HTMLSpan

	edge, ok := idx.LookupSource("app.html", html.Start+1)
	require.True(t, ok)
	assert.Equal(t, "app.html.overlay.ts", edge.From.URI)
}

func TestRemoveDocumentPurgesBothSides(t *testing.T) {
	idx, _ := buildIndex(t, `<div class.bind="name"></div>`)
	idx.RemoveDocument("app.html")

	_, ok := idx.LookupSource("app.html", 0)
	assert.False(t, ok)

	edges := idx.FindByGenerated("app.html.overlay.ts", 0)
	assert.Empty(t, edges)
}

func TestAddEdgesSupersedesSameUriPair(t *testing.T) {
	idx := provenance.NewIndex()
	first := provenance.Edge{
		Kind: provenance.EdgeOverlayExpr,
		From: provenance.Endpoint{URI: "a.ts", Span: span.NewTextSpan(0, 5)},
		To:   provenance.Endpoint{URI: "a.html", Span: span.NewTextSpan(0, 5)},
	}
	idx.AddEdges(first)
	require.Len(t, idx.FindByGenerated("a.ts", 2), 1)

	second := provenance.Edge{
		Kind: provenance.EdgeOverlayExpr,
		From: provenance.Endpoint{URI: "a.ts", Span: span.NewTextSpan(10, 15)},
		To:   provenance.Endpoint{URI: "a.html", Span: span.NewTextSpan(10, 15)},
	}
	idx.AddEdges(second)

	assert.Empty(t, idx.FindByGenerated("a.ts", 2))
	require.Len(t, idx.FindByGenerated("a.ts", 12), 1)
}

func TestQueryRequireExactMappedSpanDropsDegraded(t *testing.T) {
	degraded := provenance.Edge{
		Kind:     provenance.EdgeOverlayMember,
		From:     provenance.Endpoint{URI: "a.ts", Span: span.NewTextSpan(0, 3)},
		To:       provenance.Endpoint{URI: "a.html", Span: span.NewTextSpan(0, 3)},
		Degraded: true,
	}
	q := provenance.Query{Policy: provenance.ReportMissing, RequireExactMappedSpan: true}
	_, ok := q.Resolve(degraded, true, provenance.Edge{})
	assert.False(t, ok, "reference-style lookups must drop degraded spans")

	q2 := provenance.Query{Policy: provenance.ReportMissing, RequireExactMappedSpan: false}
	got, ok2 := q2.Resolve(degraded, true, provenance.Edge{})
	assert.True(t, ok2)
	assert.Equal(t, degraded, got)
}

func TestQueryFallbackToWholeTemplate(t *testing.T) {
	whole := provenance.Edge{To: provenance.Endpoint{URI: "a.html", Span: span.NewTextSpan(0, 100)}}
	q := provenance.Query{Policy: provenance.FallbackToWholeTemplate}
	got, ok := q.Resolve(provenance.Edge{}, false, whole)
	require.True(t, ok)
	assert.Equal(t, whole, got)
}
