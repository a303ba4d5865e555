package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-dev/strata/pkg/shape"
)

func TestIngestHomogeneous(t *testing.T) {
	nodes, err := Ingest([]any{1, 2, 3}, DefaultIngestConfig())
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	for i, n := range nodes {
		in, ok := n.(*IntNode)
		require.True(t, ok)
		assert.Equal(t, int64(i+1), in.Val)
	}

	nodes, err = Ingest([]any{"x", "y"}, DefaultIngestConfig())
	require.NoError(t, err)
	_, ok := nodes[0].(*StringNode)
	assert.True(t, ok)
}

func TestIngestHeterogeneous(t *testing.T) {
	nodes, err := Ingest([]any{1, "x", 2.5}, DefaultIngestConfig())
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	_, ok := nodes[0].(*IntNode)
	assert.True(t, ok)
	_, ok = nodes[1].(*StringNode)
	assert.True(t, ok)
	_, ok = nodes[2].(*FloatNode)
	assert.True(t, ok)
}

func TestIngestMixedTailPastSample(t *testing.T) {
	// The sampled head is all ints but the tail is not: the fast pass
	// must yield to per-element dispatch, not crash.
	cfg := DefaultIngestConfig()
	cfg.Sample = 2

	nodes, err := Ingest([]any{1, 2, "x"}, cfg)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	_, ok := nodes[0].(*IntNode)
	assert.True(t, ok)
	_, ok = nodes[2].(*StringNode)
	assert.True(t, ok)

	nodes, err = Ingest([]any{"a", "b", 3.5}, cfg)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	_, ok = nodes[2].(*FloatNode)
	assert.True(t, ok)
}

func TestIngestPassesNodesThrough(t *testing.T) {
	leaf := DeclareTable("a", shape.MustParse("3, int32"))
	nodes, err := Ingest([]any{leaf, 2}, DefaultIngestConfig())
	require.NoError(t, err)
	assert.Same(t, leaf, nodes[0])
}

func TestIngestNestedSlice(t *testing.T) {
	nodes, err := Ingest([]any{[]any{1, 2}, 3}, DefaultIngestConfig())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	tbl, ok := nodes[0].(*Table)
	require.True(t, ok)
	assert.Equal(t, Manifest, tbl.Class())
	assert.Equal(t, "2, int64", tbl.Shape().String())
	assert.Len(t, tbl.Data(), 2)
	assert.Empty(t, tbl.Children())
}

func TestIngestEmpty(t *testing.T) {
	nodes, err := Ingest(nil, DefaultIngestConfig())
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestIngestUnknownType(t *testing.T) {
	_, err := Ingest([]any{1, struct{}{}}, DefaultIngestConfig())
	var unknown shape.UnknownTypeError
	require.ErrorAs(t, err, &unknown)
}

func TestIngestRecursionLimit(t *testing.T) {
	v := []any{1}
	for i := 0; i < 30; i++ {
		v = []any{v}
	}
	_, err := Ingest(v, DefaultIngestConfig())
	var limit RecursionLimitError
	require.ErrorAs(t, err, &limit)
}

func TestIngestTooManyArguments(t *testing.T) {
	cfg := DefaultIngestConfig()
	cfg.MaxArguments = 10

	args := make([]any, 10)
	for i := range args {
		args[i] = i
	}
	_, err := Ingest(args, cfg)
	var tooMany TooManyArgumentsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, 10, tooMany.Count)
}
