package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelTableValidation(t *testing.T) {
	_, err := NewLevelTable(nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewLevelTable([]int{10, 20})
	assert.ErrorIs(t, err, ErrValidation, "first threshold must be zero")

	_, err = NewLevelTable([]int{0, 100, 100})
	assert.ErrorIs(t, err, ErrValidation, "thresholds must be strictly ascending")

	_, err = NewLevelTable([]int{0, 100, 250})
	assert.NoError(t, err)
}

func TestLevelOf(t *testing.T) {
	table, err := NewLevelTable([]int{0, 100, 250, 500})
	require.NoError(t, err)

	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{500, 4},
		{1_000_000, 4},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.level, table.LevelOf(tc.xp), "LevelOf(%d)", tc.xp)
	}
}

func TestLevelOfMonotonic(t *testing.T) {
	table, err := NewLevelTable(DefaultLevelThresholds())
	require.NoError(t, err)

	require.Equal(t, 1, table.LevelOf(0))
	prev := table.LevelOf(0)
	for xp := 1; xp <= 20000; xp += 7 {
		level := table.LevelOf(xp)
		require.GreaterOrEqualf(t, level, prev, "LevelOf must be monotonic at xp=%d", xp)
		prev = level
	}
}

func TestNextThreshold(t *testing.T) {
	table, err := NewLevelTable([]int{0, 100, 250})
	require.NoError(t, err)

	next, ok := table.NextThreshold(1)
	assert.True(t, ok)
	assert.Equal(t, 100, next)

	next, ok = table.NextThreshold(2)
	assert.True(t, ok)
	assert.Equal(t, 250, next)

	// Max level reached: terminal state, not an error.
	_, ok = table.NextThreshold(3)
	assert.False(t, ok)

	_, ok = table.NextThreshold(0)
	assert.False(t, ok)

	assert.Equal(t, 3, table.MaxLevel())
}
