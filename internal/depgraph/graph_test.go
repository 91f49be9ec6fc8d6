package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/depgraph"
)

func node(t *testing.T, kind depgraph.Kind, key string) depgraph.Node {
	t.Helper()
	n, err := depgraph.NewNode(kind, key)
	require.NoError(t, err)
	return n
}

func TestNewNodeRejectsUnknownKind(t *testing.T) {
	_, err := depgraph.NewNode(depgraph.Kind("bogus"), "x")
	var unk *depgraph.UnknownKindError
	require.ErrorAs(t, err, &unk)
}

func TestGetAffectedWalksReverseEdgesInBFSOrder(t *testing.T) {
	g := depgraph.New()
	file := node(t, depgraph.KindFile, "app.html")
	compilation := node(t, depgraph.KindTemplateCompilation, "app")
	observation := node(t, depgraph.KindObservation, "app:diagnostics")
	manifest := node(t, depgraph.KindManifest, "app:ssr")

	g.AddDependency(compilation, file)
	g.AddDependency(observation, compilation)
	g.AddDependency(manifest, compilation)

	affected := g.GetAffected([]depgraph.Node{file})
	assert.Equal(t, []depgraph.Node{file, compilation, manifest, observation}, affected)
}

func TestGetAffectedIncludesUnreachedChangedNodes(t *testing.T) {
	g := depgraph.New()
	a := node(t, depgraph.KindFile, "a.html")
	b := node(t, depgraph.KindFile, "b.html")
	g.AddNode(a)
	g.AddNode(b)

	affected := g.GetAffected([]depgraph.Node{a, b})
	assert.ElementsMatch(t, []depgraph.Node{a, b}, affected)
}

func TestGetAffectedDoesNotVisitUnrelatedNodes(t *testing.T) {
	g := depgraph.New()
	file := node(t, depgraph.KindFile, "app.html")
	compilation := node(t, depgraph.KindTemplateCompilation, "app")
	unrelated := node(t, depgraph.KindTemplateCompilation, "other")
	g.AddDependency(compilation, file)
	g.AddNode(unrelated)

	affected := g.GetAffected([]depgraph.Node{file})
	assert.NotContains(t, affected, unrelated)
}

func TestRemoveNodePurgesEdgesOnBothSides(t *testing.T) {
	g := depgraph.New()
	file := node(t, depgraph.KindFile, "app.html")
	compilation := node(t, depgraph.KindTemplateCompilation, "app")
	observation := node(t, depgraph.KindObservation, "app:diagnostics")
	g.AddDependency(compilation, file)
	g.AddDependency(observation, compilation)

	g.RemoveNode(compilation)

	assert.False(t, g.Has(compilation))
	assert.Empty(t, g.Dependents(file))
	assert.Empty(t, g.Dependencies(observation))
	affected := g.GetAffected([]depgraph.Node{file})
	assert.Equal(t, []depgraph.Node{file}, affected)
}

func TestDependenciesAndDependentsAreSortedDeterministically(t *testing.T) {
	g := depgraph.New()
	compilation := node(t, depgraph.KindTemplateCompilation, "app")
	fileB := node(t, depgraph.KindFile, "b.html")
	fileA := node(t, depgraph.KindFile, "a.html")
	g.AddDependency(compilation, fileB)
	g.AddDependency(compilation, fileA)

	assert.Equal(t, []depgraph.Node{fileA, fileB}, g.Dependencies(compilation))
}

func TestAddDependencyIsIdempotent(t *testing.T) {
	g := depgraph.New()
	compilation := node(t, depgraph.KindTemplateCompilation, "app")
	file := node(t, depgraph.KindFile, "app.html")
	g.AddDependency(compilation, file)
	g.AddDependency(compilation, file)

	assert.Len(t, g.Dependencies(compilation), 1)
	assert.Len(t, g.Dependents(file), 1)
}
