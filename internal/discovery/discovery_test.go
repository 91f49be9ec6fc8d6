package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/span"
)

func TestDiscoverDecoratorCustomElement(t *testing.T) {
	facts := []discovery.ClassFact{{
		DeclaredName: "UserCard",
		File:         span.NewSourceFileId("user-card.ts"),
		Decorators:   []discovery.DecoratorFact{{Name: "customElement", Args: []any{"user-card"}}},
		Bindables:    []discovery.BindableFact{{Name: "user", Type: "User", Mode: "to-view"}},
	}}
	snap := discovery.Discover(facts)
	def, ok := snap.Graph.Lookup(snap.Graph.Root, discovery.KindCustomElement, "user-card")
	require.True(t, ok)
	assert.Equal(t, "UserCard", def.ClassName.Value)
	assert.Equal(t, "User", def.Bindables["user"].Type.Value)
}

func TestDiscoverConventionFallback(t *testing.T) {
	facts := []discovery.ClassFact{{
		DeclaredName: "NavBarCustomElement",
		File:         span.NewSourceFileId("nav-bar.ts"),
	}}
	snap := discovery.Discover(facts)
	_, ok := snap.Graph.Lookup(snap.Graph.Root, discovery.KindCustomElement, "nav-bar")
	assert.True(t, ok)
}

func TestDiscoverFieldConflictAcrossAtoms(t *testing.T) {
	className := "BadgeCustomElement"
	facts := []discovery.ClassFact{
		{DeclaredName: className, File: span.NewSourceFileId("a.ts"), Decorators: []discovery.DecoratorFact{{Name: "customElement", Args: []any{"badge"}}}},
		{DeclaredName: "DifferentClassName", File: span.NewSourceFileId("b.ts"), Decorators: []discovery.DecoratorFact{{Name: "customElement", Args: []any{"badge"}}}},
	}
	snap := discovery.Discover(facts)
	found := false
	for _, d := range snap.Diagnostics {
		if d.Code == "field-conflict" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConvergeKnownOverUnknownBackfills(t *testing.T) {
	atoms := []discovery.Atom{
		{AtomId: "a", Field: "bindables.value.type", Value: "", SourceKind: discovery.SourceConvention, EvidenceRank: 3},
		{AtomId: "b", Field: "bindables.value.type", Value: "string", SourceKind: discovery.SourceDecorator, EvidenceRank: 0},
	}
	merged, diags := discovery.Converge(atoms, discovery.DefaultRulebook)
	assert.Empty(t, diags)
	assert.Equal(t, "string", merged["bindables.value.type"])
}

func TestPatternMatchPriorityDecoratorBeatsConvention(t *testing.T) {
	facts := []discovery.ClassFact{{
		DeclaredName: "ThingCustomAttribute",
		File:         span.NewSourceFileId("thing.ts"),
		Decorators:   []discovery.DecoratorFact{{Name: "customElement", Args: []any{"thing-el"}}},
	}}
	snap := discovery.Discover(facts)
	_, okEl := snap.Graph.Lookup(snap.Graph.Root, discovery.KindCustomElement, "thing-el")
	_, okAttr := snap.Graph.Lookup(snap.Graph.Root, discovery.KindCustomAttribute, "thing")
	assert.True(t, okEl)
	assert.False(t, okAttr)
}
