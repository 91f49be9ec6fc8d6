package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/span"
)

func lowerHTML(t *testing.T, src string) *lower.IrModule {
	t.Helper()
	doc, err := htmldoc.Parse(src)
	require.NoError(t, err)
	return lower.New(span.NewSourceFileId("app.html")).Lower(doc)
}

func TestResolveKnownBindable(t *testing.T) {
	mod := lowerHTML(t, `<user-card user.bind="current"></user-card>`)
	snap := discovery.Discover([]discovery.ClassFact{{
		DeclaredName: "UserCard",
		File:         span.NewSourceFileId("user-card.ts"),
		Decorators:   []discovery.DecoratorFact{{Name: "customElement", Args: []any{"user-card"}}},
		Bindables:    []discovery.BindableFact{{Name: "user", Type: "User"}},
	}})

	linked, diags := resolve.New(snap.Graph).Resolve(mod)
	assert.Empty(t, diags)

	var found bool
	for _, tpl := range linked.Templates {
		for _, row := range tpl.Rows {
			for _, instr := range row.Instructions {
				if instr.Kind == lower.InstrPropertyBinding {
					found = true
					assert.Equal(t, resolve.TargetElementBindable, instr.Sem.Kind)
					assert.Equal(t, "User", instr.Sem.Expected)
				}
			}
		}
	}
	assert.True(t, found)
}

func TestResolveUnknownBindableDiagnostic(t *testing.T) {
	mod := lowerHTML(t, `<user-card ghost.bind="x"></user-card>`)
	snap := discovery.Discover([]discovery.ClassFact{{
		DeclaredName: "UserCard",
		File:         span.NewSourceFileId("user-card.ts"),
		Decorators:   []discovery.DecoratorFact{{Name: "customElement", Args: []any{"user-card"}}},
	}})

	_, diags := resolve.New(snap.Graph).Resolve(mod)
	require.Len(t, diags, 1)
	assert.Equal(t, "unknown-bindable", diags[0].Code)
}

func TestResolveRepeatControllerExpectsIterable(t *testing.T) {
	mod := lowerHTML(t, `<li repeat.for="item of items">${item}</li>`)
	snap := discovery.Discover(nil)

	linked, _ := resolve.New(snap.Graph).Resolve(mod)
	found := false
	for _, tpl := range linked.Templates {
		for _, row := range tpl.Rows {
			for _, instr := range row.Instructions {
				if instr.Kind == lower.InstrHydrateTemplateController {
					found = true
					assert.Equal(t, "Iterable<T>", instr.Sem.Expected)
				}
			}
		}
	}
	assert.True(t, found)
}
