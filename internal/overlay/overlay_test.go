package overlay_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/exprast"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/overlay"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

func linkAndBind(t *testing.T, src string) (*resolve.LinkedModule, *scope.Result) {
	t.Helper()
	doc, err := htmldoc.Parse(src)
	require.NoError(t, err)
	mod := lower.New(span.NewSourceFileId("app.html")).Lower(doc)
	linked, diags := resolve.New(discovery.Discover(nil).Graph).Resolve(mod)
	require.Empty(t, diags)
	return linked, scope.Bind(linked, scope.TypeRef{Name: "AppViewModel"})
}

func exprInfo(linked *resolve.LinkedModule) (map[span.ExprId]span.TextSpan, map[span.ExprId]exprast.Node) {
	spans := map[span.ExprId]span.TextSpan{}
	asts := map[span.ExprId]exprast.Node{}
	for id, entry := range linked.ExprTable {
		spans[id] = entry.Span
		asts[id] = entry.Ast
	}
	return spans, asts
}

func TestBuildPlanGroupsExpressionsByFrame(t *testing.T) {
	linked, bound := linkAndBind(t, `<li repeat.for="item of items">${item}</li>`)
	plan := overlay.BuildPlan(linked, bound.ByTemplate)

	require.Len(t, plan.Frames, 2)
	assert.Equal(t, "AppViewModel", plan.Frames[0].TypeExpr)
	assert.Contains(t, plan.Frames[1].TypeExpr, "item:")
	assert.Contains(t, plan.Frames[1].TypeExpr, "$parent: Frame0")

	var sawIterable, sawItem bool
	for _, lam := range plan.Frames[0].Lambdas {
		if strings.Contains(lam.Lambda, "o.items") {
			sawIterable = true
		}
	}
	for _, lam := range plan.Frames[1].Lambdas {
		if strings.Contains(lam.Lambda, "o.item") {
			sawItem = true
		}
	}
	assert.True(t, sawIterable, "repeat's iterable expression renders against the root frame")
	assert.True(t, sawItem, "the interpolated item renders against the repeat's own frame")
}

func TestEmitProducesHostSourceWithMapping(t *testing.T) {
	linked, bound := linkAndBind(t, `<div class.bind="name"></div>`)
	plan := overlay.BuildPlan(linked, bound.ByTemplate)
	spans, asts := exprInfo(linked)

	emission := overlay.Emit(plan, spans, asts)

	assert.Contains(t, emission.Source, "type Frame0 = AppViewModel;")
	assert.Contains(t, emission.Source, "__au$access<Frame0>(o => o.name);")
	require.Len(t, emission.Mappings, 1)
	m := emission.Mappings[0]
	assert.True(t, m.CallSpan.Start < m.OverlaySpan.Start)
	assert.True(t, m.OverlaySpan.End <= m.CallSpan.End)
}
