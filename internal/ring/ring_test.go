package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheerer/light-cascade/lights"
)

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestTraversal(t *testing.T) {
	for _, n := range []int{1, 2, 3, 8} {
		r, err := New(lights.Sequential(n))
		require.NoError(t, err)

		seen := make(map[lights.PositionID]int)
		for i := 0; i < n; i++ {
			seen[r.Current()]++
			r.Advance()
		}
		assert.Len(t, seen, n, "ring of %d", n)
		for id, count := range seen {
			assert.Equal(t, 1, count, "position %v in ring of %d", id, n)
		}
		assert.Equal(t, lights.PositionID(0), r.Current(), "ring of %d returns to start", n)
	}
}

func TestPeekNextDoesNotMove(t *testing.T) {
	r, err := New([]lights.PositionID{13, 12, 11})
	require.NoError(t, err)

	assert.Equal(t, lights.PositionID(12), r.PeekNext())
	assert.Equal(t, lights.PositionID(13), r.Current())

	r.Advance()
	r.Advance()
	assert.Equal(t, lights.PositionID(11), r.Current())
	assert.Equal(t, lights.PositionID(13), r.PeekNext())
	assert.Equal(t, 2, r.Index())
}

func TestSinglePosition(t *testing.T) {
	r, err := New([]lights.PositionID{7})
	require.NoError(t, err)
	assert.Equal(t, r.Current(), r.PeekNext())
	r.Advance()
	assert.Equal(t, lights.PositionID(7), r.Current())
}

func TestPositionsIsACopy(t *testing.T) {
	src := lights.Sequential(3)
	r, err := New(src)
	require.NoError(t, err)
	src[0] = 99
	p := r.Positions()
	p[1] = 42
	assert.Equal(t, []lights.PositionID{0, 1, 2}, r.Positions())
}
