package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceIsDeterministic(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)

	for i := 0; i < 16; i++ {
		require.Equal(t, a.Seed(), b.Seed(), "draw %d", i)
	}
}

func TestSeedsStayInRange(t *testing.T) {
	src := NewRandomSource()
	for i := 0; i < 1000; i++ {
		seed := src.Seed()
		assert.GreaterOrEqual(t, seed, int64(1))
		assert.LessOrEqual(t, seed, int64(MaxSeed))
	}
}

func TestFixedSource(t *testing.T) {
	assert.Equal(t, int64(42), Fixed(42).Seed())
}
