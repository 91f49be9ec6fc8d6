package exprast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/exprast"
)

func parse(t *testing.T, src string) exprast.Node {
	t.Helper()
	n, err := exprast.NewParser().Parse(src, 0)
	require.NoError(t, err)
	return n
}

func TestParserMemberAccess(t *testing.T) {
	n := parse(t, "item.name")
	m, ok := n.(*exprast.AccessMember)
	require.True(t, ok)
	assert.Equal(t, "name", m.Name)
	obj, ok := m.Object.(*exprast.AccessScope)
	require.True(t, ok)
	assert.Equal(t, "item", obj.Name)
}

func TestParserSimpleIdentifier(t *testing.T) {
	n := parse(t, "name")
	s, ok := n.(*exprast.AccessScope)
	require.True(t, ok)
	assert.Equal(t, "name", s.Name)
}

func TestParserCallScope(t *testing.T) {
	n := parse(t, "save(item, 1)")
	c, ok := n.(*exprast.CallScope)
	require.True(t, ok)
	assert.Equal(t, "save", c.Name)
	assert.Len(t, c.Args, 2)
}

func TestParserValueConverter(t *testing.T) {
	n := parse(t, "name | upperCase")
	vc, ok := n.(*exprast.ValueConverter)
	require.True(t, ok)
	assert.Equal(t, "upperCase", vc.Name)
}

func TestParserBindingBehavior(t *testing.T) {
	n := parse(t, "value & debounce:500")
	bb, ok := n.(*exprast.BindingBehavior)
	require.True(t, ok)
	assert.Equal(t, "debounce", bb.Name)
	require.Len(t, bb.Args, 1)
	lit, ok := bb.Args[0].(*exprast.PrimitiveLiteral)
	require.True(t, ok)
	assert.InEpsilon(t, 500.0, lit.Value.(float64), 0.0001)
}

func TestParserParentChain(t *testing.T) {
	n := parse(t, "$parent.$parent.name")
	m, ok := n.(*exprast.AccessMember)
	require.True(t, ok)
	assert.Equal(t, "name", m.Name)
	this, ok := m.Object.(*exprast.AccessThis)
	require.True(t, ok)
	assert.Equal(t, 2, this.Ancestor)
}

func TestParserConditional(t *testing.T) {
	n := parse(t, "items.length > 0 ? 'yes' : 'no'")
	cond, ok := n.(*exprast.Conditional)
	require.True(t, ok)
	assert.Equal(t, "'yes'", exprast.Normalize(cond.Yes))
}

func TestParserRecoversFromError(t *testing.T) {
	n, err := exprast.NewParser().Parse("item..name", 0)
	require.Error(t, err)
	_, ok := n.(*exprast.Unknown)
	assert.True(t, ok)
}

func TestNormalizeIsWhitespaceInsensitive(t *testing.T) {
	a := parse(t, "item.name")
	b := parse(t, "  item.name  ")
	assert.Equal(t, exprast.Normalize(a), exprast.Normalize(b))
}

func TestWalkVisitsEveryDescendant(t *testing.T) {
	n := parse(t, "a.b(c, d[e])")
	var names []string
	exprast.Walk(n, func(node exprast.Node) bool {
		if s, ok := node.(*exprast.AccessScope); ok {
			names = append(names, s.Name)
		}
		return true
	})
	assert.ElementsMatch(t, []string{"a", "c", "d", "e"}, names)
}
