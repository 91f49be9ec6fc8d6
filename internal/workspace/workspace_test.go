package workspace_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/diag"
	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
	"github.com/opmodel/tscompiler/internal/workspace"
)

func userCardGraph(t *testing.T) *discovery.ResourceGraph {
	t.Helper()
	facts := []discovery.ClassFact{{
		DeclaredName: "UserCard",
		File:         span.NewSourceFileId("user-card.ts"),
		Decorators:   []discovery.DecoratorFact{{Name: "customElement", Args: []any{"user-card"}}},
		Bindables:    []discovery.BindableFact{{Name: "user", Type: "User", Mode: "to-view"}},
	}}
	snap := discovery.Discover(facts)
	return snap.Graph
}

func newTestWorkspace(t *testing.T, policy workspace.RefactorPolicy) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(workspace.Options{
		Graph:          userCardGraph(t),
		RootVMType:     scope.TypeRef{Name: "Root"},
		ParserHint:     "default",
		VMTokenHint:    "default",
		RefactorPolicy: policy,
		Surfaces:       []diag.Surface{diag.SurfaceCLI},
		DiagPolicy:     diag.Policy{},
	})
	require.NoError(t, err)
	return ws
}

func TestGetCompilationCacheHitReuse(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{})
	file := span.NewSourceFileId("page.html")
	ws.Open(file, `<div>${name}</div>`)

	first, err := ws.GetCompilation(context.Background(), file)
	require.NoError(t, err)

	second, err := ws.GetCompilation(context.Background(), file)
	require.NoError(t, err)

	assert.Same(t, first, second, "an unchanged document must reuse the cached Compilation")
}

func TestGetCompilationInvalidatesOnUpdate(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{})
	file := span.NewSourceFileId("page.html")
	ws.Open(file, `<div>${name}</div>`)

	first, err := ws.GetCompilation(context.Background(), file)
	require.NoError(t, err)

	ws.Update(file, `<div>${other}</div>`)
	second, err := ws.GetCompilation(context.Background(), file)
	require.NoError(t, err)

	assert.NotSame(t, first, second, "changed content must invalidate the cached Compilation")
}

func TestGetCompilationRejectsUnopenedFile(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{})
	_, err := ws.GetCompilation(context.Background(), span.NewSourceFileId("missing.html"))
	assert.Error(t, err)
}

func TestHoverOverInterpolationExpression(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{})
	file := span.NewSourceFileId("page.html")
	text := `<div>${name}</div>`
	ws.Open(file, text)

	offset := len(`<div>${`) + 1
	hover, ok := ws.Hover(context.Background(), workspace.Position{URI: file, Offset: offset})
	require.True(t, ok)
	assert.Contains(t, hover.Text, "expected:")
}

func TestRenameDeniedWhenTargetNotAllowed(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{
		RenameAllowedTargets: nil,
	})
	file := span.NewSourceFileId("page.html")
	text := `<user-card user.bind="u"></user-card>`
	ws.Open(file, text)

	pos := workspace.Position{URI: file, Offset: 2}
	_, refErr := ws.Rename(context.Background(), pos, "profile-card")
	require.NotNil(t, refErr)
	assert.Equal(t, workspace.ErrRefactorTargetNotAllowed, refErr.Kind)
	assert.False(t, refErr.Retryable)
}

func TestRenameDeniedOnUnresolvedRequiredDecision(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{
		RenameAllowedTargets: []workspace.RefactorTarget{workspace.TargetResource},
		RequiredDecisions:    []workspace.RefactorDecisionPoint{workspace.DecisionFileRename},
	})
	file := span.NewSourceFileId("page.html")
	text := `<user-card user.bind="u"></user-card>`
	snapBefore := ws.Open(file, text)

	pos := workspace.Position{URI: file, Offset: 2}
	_, refErr := ws.Rename(context.Background(), pos, "profile-card")
	require.NotNil(t, refErr)
	assert.Equal(t, workspace.ErrRefactorDecisionRequired, refErr.Kind)
	assert.False(t, refErr.Retryable)

	snapAfter, ok := ws.Open(file, text), true
	_ = ok
	assert.Equal(t, snapBefore.ContentHash, snapAfter.ContentHash, "a denied rename must not mutate workspace source state")
}

func TestRenameCustomElementAcrossOccurrences(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{
		RenameAllowedTargets: []workspace.RefactorTarget{workspace.TargetResource},
	})
	file := span.NewSourceFileId("page.html")
	text := `<user-card user.bind="a"></user-card><div><user-card user.bind="b"></user-card></div>`
	ws.Open(file, text)

	pos := workspace.Position{URI: file, Offset: 2}
	result, refErr := ws.Rename(context.Background(), pos, "profile-card")
	require.Nil(t, refErr)
	require.NotNil(t, result)
	assert.Equal(t, workspace.TargetResource, result.Route)
	assert.Len(t, result.Edits, 2)
	for _, e := range result.Edits {
		assert.Equal(t, "profile-card", e.Text)
	}
}

func TestCompletionsOrderedAndDeduped(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{})
	file := span.NewSourceFileId("page.html")
	text := `<user-card></user-card>`
	ws.Open(file, text)

	items := ws.Completions(context.Background(), workspace.Position{URI: file, Offset: 1})
	require.NotEmpty(t, items)
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Label], "completions must be deduplicated by label")
		seen[it.Label] = true
	}
}

func TestDiagnosticsGroupedBySurface(t *testing.T) {
	ws := newTestWorkspace(t, workspace.RefactorPolicy{})
	file := span.NewSourceFileId("page.html")
	ws.Open(file, `<div>${name}</div>`)

	diags, err := ws.Diagnostics(context.Background(), file)
	require.NoError(t, err)
	assert.NotNil(t, diags.BySurface)
}
