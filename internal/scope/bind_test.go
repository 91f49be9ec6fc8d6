package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/htmldoc"
	"github.com/opmodel/tscompiler/internal/lower"
	"github.com/opmodel/tscompiler/internal/resolve"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

func linkHTML(t *testing.T, src string) *resolve.LinkedModule {
	t.Helper()
	doc, err := htmldoc.Parse(src)
	require.NoError(t, err)
	mod := lower.New(span.NewSourceFileId("app.html")).Lower(doc)
	linked, diags := resolve.New(discovery.Discover(nil).Graph).Resolve(mod)
	require.Empty(t, diags)
	return linked
}

func findExprId(t *testing.T, mod *resolve.LinkedModule) span.ExprId {
	t.Helper()
	for id := range mod.ExprTable {
		return id
	}
	t.Fatal("no expressions in table")
	return ""
}

func TestBindRootFrameHoldsViewModelType(t *testing.T) {
	linked := linkHTML(t, `<div>${greeting}</div>`)
	result := scope.Bind(linked, scope.TypeRef{Name: "AppViewModel"})

	var root *scope.ScopeTemplate
	for _, st := range result.ByTemplate {
		root = st
	}
	require.NotNil(t, root)
	require.Len(t, root.Frames, 1)
	assert.Equal(t, "AppViewModel", root.Frames[0].Locals["$this"].Name)

	exprId := findExprId(t, linked)
	frameId, ok := root.ExprToFrame[exprId]
	require.True(t, ok)
	assert.Equal(t, span.RootFrameId, frameId)
}

func TestBindRepeatIntroducesIteratorFrame(t *testing.T) {
	linked := linkHTML(t, `<li repeat.for="item of items">${item}</li>`)
	result := scope.Bind(linked, scope.UnknownType)

	var root *scope.ScopeTemplate
	for _, st := range result.ByTemplate {
		if len(st.Frames) > 0 && root == nil {
			root = st
		}
	}
	require.NotNil(t, root)
	require.Len(t, root.Frames, 2, "root frame plus the repeat's iterator frame")

	childFrame := root.Frames[1]
	assert.Equal(t, scope.FrameController, childFrame.Origin)
	require.NotNil(t, childFrame.Parent)
	assert.Equal(t, span.RootFrameId, *childFrame.Parent)
	assert.Contains(t, childFrame.Locals, "item")
	assert.Equal(t, "number", childFrame.Locals["$index"].Name)

	typ, owner, ok := root.LookupLocal(childFrame.Id, "item")
	require.True(t, ok)
	assert.Equal(t, childFrame.Id, owner)
	assert.Equal(t, scope.UnknownType, typ)
}

func TestBindWithReplacesScope(t *testing.T) {
	linked := linkHTML(t, `<div with.bind="profile"><span>${name}</span></div>`)
	result := scope.Bind(linked, scope.TypeRef{Name: "AppViewModel"})

	var withFrame *scope.Frame
	for _, st := range result.ByTemplate {
		for i := range st.Frames {
			if st.Frames[i].Origin == scope.FrameController {
				withFrame = &st.Frames[i]
			}
		}
	}
	require.NotNil(t, withFrame)
	require.NotNil(t, withFrame.Parent)
	assert.Equal(t, span.RootFrameId, *withFrame.Parent)
}

func TestBindLetAddsLocalWithoutNewFrame(t *testing.T) {
	linked := linkHTML(t, `<template><let full-name.bind="first"></let><div>${fullName}</div></template>`)
	result := scope.Bind(linked, scope.UnknownType)

	var root *scope.ScopeTemplate
	for _, st := range result.ByTemplate {
		root = st
	}
	require.NotNil(t, root)
	require.Len(t, root.Frames, 1, "let augments the current frame rather than opening a new one")
	assert.Contains(t, root.Frames[0].Locals, "full-name")
}

func TestScopeTemplateResolveAncestorHops(t *testing.T) {
	parent := span.RootFrameId
	st := &scope.ScopeTemplate{
		Frames: []scope.Frame{
			{Id: 0, Origin: scope.FrameRoot, Locals: map[string]scope.TypeRef{"$this": {Name: "Root"}}},
			{Id: 1, Parent: &parent, Origin: scope.FrameController, Locals: map[string]scope.TypeRef{"$this": {Name: "Child"}}},
		},
	}

	self, ok := st.Resolve(1, 0)
	require.True(t, ok)
	assert.Equal(t, "Child", self.Locals["$this"].Name)

	up, ok := st.Resolve(1, 1)
	require.True(t, ok)
	assert.Equal(t, "Root", up.Locals["$this"].Name)

	_, ok = st.Resolve(1, 2)
	assert.False(t, ok)
}
