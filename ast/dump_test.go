package ast_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sqlcore/arena"
	"github.com/ha1tch/sqlcore/ast"
)

func buildSmallTree(t *testing.T) *ast.Node {
	t.Helper()
	tr := ast.NewTree(testCfg())
	left, _ := tr.Alloc(ast.KindIdentifier, 0, 1)
	left.Text = "a"
	right, _ := tr.Alloc(ast.KindIntLiteral, 4, 5)
	right.Text = "1"
	bin, _ := tr.Alloc(ast.KindBinaryExpr, 0, 5)
	bin.Text = "="
	var b ast.Builder
	b.Add(left)
	b.Add(right)
	b.Attach(bin)
	return bin
}

func TestDigest_DeterministicAcrossRuns(t *testing.T) {
	root1 := buildSmallTree(t)
	root2 := buildSmallTree(t)
	_, h1 := ast.Digest(root1)
	_, h2 := ast.Digest(root2)
	assert.Equal(t, h1, h2)
}

func TestDigest_SubtreeSizeAndDepth(t *testing.T) {
	root := buildSmallTree(t)
	table, _ := ast.Digest(root)
	rootInfo := table[root.ID()]
	assert.Equal(t, 3, rootInfo.SubtreeSize)
	assert.Equal(t, 0, rootInfo.Depth)

	left := root.FirstChild
	assert.Equal(t, 1, table[left.ID()].Depth)
}

func TestDumpJSON_RoundTripsShape(t *testing.T) {
	root := buildSmallTree(t)
	data, err := ast.DumpJSON(root)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "BinaryExpr"`)
	assert.Contains(t, string(data), `"text": "a"`)
}

func TestDumpText_NoColorIsDeterministic(t *testing.T) {
	root := buildSmallTree(t)
	var buf bytes.Buffer
	ast.DumpText(&buf, root, false)
	out := buf.String()
	assert.Contains(t, out, "BinaryExpr")
	assert.Contains(t, out, `"a"`)
	assert.Contains(t, out, `"1"`)
}

// TestDumpJSON_ByteIdenticalAcrossRuns uses go-cmp, rather than a
// substring check, for the case where two independently built trees over
// the same input must serialize identically: a cmp.Diff failure pinpoints
// exactly which JSON field and node path diverged instead of just
// reporting unequal strings.
func TestDumpJSON_ByteIdenticalAcrossRuns(t *testing.T) {
	data1, err := ast.DumpJSON(buildSmallTree(t))
	require.NoError(t, err)
	data2, err := ast.DumpJSON(buildSmallTree(t))
	require.NoError(t, err)

	if diff := cmp.Diff(string(data1), string(data2)); diff != "" {
		t.Errorf("DumpJSON mismatch across independently built but structurally identical trees (-first +second):\n%s", diff)
	}
}

func TestDumpSExpr(t *testing.T) {
	root := buildSmallTree(t)
	assert.Equal(t, `(BinaryExpr = (Identifier a) (IntLiteral 1))`, ast.DumpSExpr(root))
}
