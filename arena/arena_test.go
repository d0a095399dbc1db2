package arena_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sqlcore/arena"
)

func TestReserve_BumpsWithinBlock(t *testing.T) {
	a := arena.New(arena.Config{ElemSize: 1, InitialBytes: 4, MaxBlockBytes: 4, MaxTotalBytes: 1024})
	b0, s0, err := a.Reserve()
	require.NoError(t, err)
	b1, s1, err := a.Reserve()
	require.NoError(t, err)
	assert.Equal(t, b0, b1)
	assert.Equal(t, 0, s0)
	assert.Equal(t, 1, s1)
}

func TestReserve_GrowsGeometricallyCappedAtMaxBlock(t *testing.T) {
	a := arena.New(arena.Config{ElemSize: 1, InitialBytes: 2, MaxBlockBytes: 4, MaxTotalBytes: 1 << 20})
	for i := 0; i < 2; i++ {
		_, _, err := a.Reserve()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, a.NumBlocks())

	// third Reserve overflows the first (cap 2) block, growing a new one.
	_, _, err := a.Reserve()
	require.NoError(t, err)
	assert.Equal(t, 2, a.NumBlocks())
	assert.LessOrEqual(t, a.BlockCap(1), 4)
}

func TestReserve_MemoryExceeded(t *testing.T) {
	a := arena.New(arena.Config{ElemSize: 1, InitialBytes: 4, MaxBlockBytes: 4, MaxTotalBytes: 4})
	for i := 0; i < 4; i++ {
		_, _, err := a.Reserve()
		require.NoError(t, err)
	}
	_, _, err := a.Reserve()
	require.Error(t, err)
	var memErr *arena.ErrMemoryExceeded
	assert.True(t, errors.As(err, &memErr))
}

func TestReset_ReusesCapacityAndZeroesUsage(t *testing.T) {
	a := arena.New(arena.Config{ElemSize: 1, InitialBytes: 4, MaxBlockBytes: 4, MaxTotalBytes: 1024})
	for i := 0; i < 4; i++ {
		_, _, err := a.Reserve()
		require.NoError(t, err)
	}
	statsBefore := a.Stats()
	assert.Equal(t, 4, statsBefore.NodesInUse)

	a.Reset()
	statsAfter := a.Stats()
	assert.Equal(t, 0, statsAfter.NodesInUse)
	assert.Equal(t, statsBefore.TotalBytes, statsAfter.TotalBytes, "reset must not release block capacity")

	// capacity from before Reset is immediately reusable without growth.
	_, _, err := a.Reserve()
	require.NoError(t, err)
	assert.Equal(t, 1, a.NumBlocks())
}

func TestStats_HighWaterSurvivesReset(t *testing.T) {
	a := arena.New(arena.Config{ElemSize: 1, InitialBytes: 4, MaxBlockBytes: 4, MaxTotalBytes: 1024})
	for i := 0; i < 3; i++ {
		_, _, err := a.Reserve()
		require.NoError(t, err)
	}
	a.Reset()
	_, _, err := a.Reserve()
	require.NoError(t, err)

	assert.Equal(t, uint64(3), a.Stats().HighWaterBytes/1)
}

func TestNew_ZeroByteConfigDoesNotPanic(t *testing.T) {
	a := arena.New(arena.Config{})
	_, _, err := a.Reserve()
	require.NoError(t, err)
}
