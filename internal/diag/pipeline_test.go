package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/span"
)

func newPipeline() *diag.Pipeline {
	return diag.NewPipeline(diag.NewCatalog(), diag.Policy{})
}

func TestNormalizeRejectsUnknownCode(t *testing.T) {
	p := newPipeline()
	_, ok := p.Normalize(diag.RawDiagnostic{Code: "not-a-real-code"})
	assert.False(t, ok)
}

func TestNormalizeRequiresSpanWhenSpecDemandsIt(t *testing.T) {
	p := newPipeline()
	_, ok := p.Normalize(diag.RawDiagnostic{Code: diag.CodeExprParseError})
	assert.False(t, ok, "expr-parse-error requires a span")

	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{Code: diag.CodeExprParseError, Span: &sp})
	require.True(t, ok)
	assert.Equal(t, diag.SeverityError, n.Severity)
}

func TestDemoteGrammarDeterministicExempt(t *testing.T) {
	p := newPipeline()
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{
		Code: diag.CodeExprParseError, Span: &sp,
		Data: map[string]any{"confidence": "low"},
	})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.False(t, resolved.Suppressed)
	assert.Equal(t, diag.SeverityError, resolved.Severity, "grammar-deterministic diagnostics are exempt from demotion")
}

func TestDemoteBehavioralDependentCapsAtInfo(t *testing.T) {
	p := newPipeline()
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{Code: "aurelia/expr-type-mismatch", Span: &sp})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.False(t, resolved.Suppressed)
	assert.Equal(t, diag.SeverityInfo, resolved.Severity)
}

func TestDemoteCatalogDependentHighUnchanged(t *testing.T) {
	p := newPipeline()
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{
		Code: "aurelia/unknown-bindable", Span: &sp,
		Data: map[string]any{"confidence": "high"},
	})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.Equal(t, diag.SeverityError, resolved.Severity)
	assert.False(t, resolved.Suppressed)
}

func TestDemoteCatalogDependentLowErrorBecomesInfo(t *testing.T) {
	p := newPipeline()
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{
		Code: "aurelia/unknown-bindable", Span: &sp,
		Data: map[string]any{"confidence": "low"},
	})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.Equal(t, diag.SeverityInfo, resolved.Severity)
	assert.False(t, resolved.Suppressed)
}

func TestDemoteCatalogDependentLowWarningSuppressed(t *testing.T) {
	p := diag.NewPipeline(diag.NewCatalog(), diag.Policy{})
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{
		Code: "aurelia/invalid-binding-pattern", Span: &sp,
		Data: map[string]any{"confidence": "low"},
	})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.True(t, resolved.Suppressed)
}

func TestPolicyOffSuppressesNonBlocking(t *testing.T) {
	p := diag.NewPipeline(diag.NewCatalog(), diag.Policy{
		CodeOverrides: map[string]diag.Severity{"aurelia/expr-type-mismatch": "off"},
	})
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{Code: "aurelia/expr-type-mismatch", Span: &sp})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.True(t, resolved.Suppressed)
}

func TestPolicyOffCannotSuppressBlockingByDefault(t *testing.T) {
	p := diag.NewPipeline(diag.NewCatalog(), diag.Policy{
		CodeOverrides: map[string]diag.Severity{diag.CodeExprParseError: "off"},
	})
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{Code: diag.CodeExprParseError, Span: &sp})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.False(t, resolved.Suppressed, "blocking diagnostics survive an off override unless AllowSuppressBlocking")
}

func TestPolicyOffSuppressesBlockingWhenAllowed(t *testing.T) {
	p := diag.NewPipeline(diag.NewCatalog(), diag.Policy{
		CodeOverrides:         map[string]diag.Severity{diag.CodeExprParseError: "off"},
		AllowSuppressBlocking: true,
	})
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{Code: diag.CodeExprParseError, Span: &sp})
	require.True(t, ok)
	resolved := p.Apply(n)
	assert.True(t, resolved.Suppressed)
}

func TestRouteIntersectsRequestedSurfaces(t *testing.T) {
	p := newPipeline()
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	n, ok := p.Normalize(diag.RawDiagnostic{Code: diag.CodeExprParseError, Span: &sp})
	require.True(t, ok)
	resolved := p.Apply(n)

	routed := diag.Route(resolved, []diag.Surface{diag.SurfaceLSP})
	assert.Equal(t, []diag.Surface{diag.SurfaceLSP}, routed.Surfaces)

	routedNone := diag.Route(resolved, []diag.Surface{"ide-sidebar"})
	assert.Empty(t, routedNone.Surfaces)
}

func TestRunDropsUnknownAndSuppressedReturnsRest(t *testing.T) {
	p := newPipeline()
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 0, 3)
	raws := []diag.RawDiagnostic{
		{Code: "not-a-real-code"},
		{Code: diag.CodeExprParseError, Span: &sp},
		{Code: "aurelia/invalid-binding-pattern", Span: &sp, Data: map[string]any{"confidence": "low"}},
	}
	routed := p.Run(raws, []diag.Surface{diag.SurfaceCLI})
	require.Len(t, routed, 1)
	assert.Equal(t, diag.CodeExprParseError, routed[0].Spec.Code)
}

func TestCLIFormatterIncludesLocationAndCode(t *testing.T) {
	sp := span.NewSourceSpan(span.NewSourceFileId("app.html"), 10, 14)
	spec, _ := diag.NewCatalog().Lookup(diag.CodeExprParseError)
	r := diag.Routed{Resolved: diag.Resolved{Normalized: diag.Normalized{
		Spec: spec, Message: "unexpected token", Severity: diag.SeverityError, Span: &sp,
	}}}
	out := diag.CLIFormatter{}.Format(r)
	assert.Contains(t, out, "app.html")
	assert.Contains(t, out, "expr-parse-error")
	assert.Contains(t, out, "unexpected token")
}
