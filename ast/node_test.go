package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sqlcore/arena"
	"github.com/ha1tch/sqlcore/ast"
)

func testCfg() arena.Config {
	return arena.Config{InitialBytes: 512, MaxBlockBytes: 4096, MaxTotalBytes: 1 << 20}
}

func TestTree_AllocAssignsMonotoneIDs(t *testing.T) {
	tr := ast.NewTree(testCfg())
	a, err := tr.Alloc(ast.KindIdentifier, 0, 1)
	require.NoError(t, err)
	b, err := tr.Alloc(ast.KindIdentifier, 1, 2)
	require.NoError(t, err)
	assert.Less(t, a.ID(), b.ID())
}

func TestBuilder_AttachSetsParentAndCount(t *testing.T) {
	tr := ast.NewTree(testCfg())
	parent, _ := tr.Alloc(ast.KindSelectList, 0, 10)
	c1, _ := tr.Alloc(ast.KindIdentifier, 0, 1)
	c2, _ := tr.Alloc(ast.KindIdentifier, 2, 3)
	c3, _ := tr.Alloc(ast.KindIdentifier, 4, 5)

	var b ast.Builder
	b.Add(c1)
	b.Add(nil) // ignored
	b.Add(c2)
	b.Add(c3)
	b.Attach(parent)

	assert.EqualValues(t, 3, parent.ChildCount)
	kids := ast.Children(parent)
	require.Len(t, kids, 3)
	assert.Same(t, c1, kids[0])
	assert.Same(t, c2, kids[1])
	assert.Same(t, c3, kids[2])
	for _, k := range kids {
		assert.Same(t, parent, k.Parent)
	}
}

func TestBuilder_EmptyAttach(t *testing.T) {
	tr := ast.NewTree(testCfg())
	parent, _ := tr.Alloc(ast.KindWhere, 0, 10)
	var b ast.Builder
	b.Attach(parent)
	assert.EqualValues(t, 0, parent.ChildCount)
	assert.Nil(t, parent.FirstChild)
}

func TestTree_ResetInvalidatesCountingButReusesCapacity(t *testing.T) {
	tr := ast.NewTree(testCfg())
	for i := 0; i < 50; i++ {
		_, err := tr.Alloc(ast.KindIdentifier, 0, 1)
		require.NoError(t, err)
	}
	statsBefore := tr.Stats()
	assert.Equal(t, 50, statsBefore.NodesInUse)

	tr.Reset()
	statsAfter := tr.Stats()
	assert.Equal(t, 0, statsAfter.NodesInUse)

	n, err := tr.Alloc(ast.KindIdentifier, 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n.ID(), "ids restart after reset")
}

func TestFlags_ContextRoundTrip(t *testing.T) {
	var f ast.Flags
	f = f.WithContext(ast.CtxWhere)
	assert.Equal(t, ast.CtxWhere, f.Context())

	f |= ast.FlagDistinct
	assert.Equal(t, ast.CtxWhere, f.Context(), "grammar flags don't disturb the context byte")
	assert.True(t, f&ast.FlagDistinct != 0)
}

func TestNode_SizeIsSmallAndStable(t *testing.T) {
	sz := ast.NodeByteSize()
	assert.Greater(t, sz, uint64(0))
	assert.LessOrEqual(t, sz, uint64(256), "node should stay within a couple of cache lines")
}
