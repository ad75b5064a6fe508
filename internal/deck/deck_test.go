package deck

import (
	"testing"

	"github.com/lox/caribbeanpoker/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleIsReproducible(t *testing.T) {
	first := Shuffle(42)
	second := Shuffle(42)
	require.Equal(t, first, second)

	// Pinned so a browser replaying the seed gets the same order.
	assert.Equal(t,
		[]string{"9♦", "7♠", "K♥", "K♠", "5♦", "K♦", "8♥", "2♥", "6♥", "10♦"},
		Strings(first[:10]))
}

func TestShuffleEdgeSeeds(t *testing.T) {
	assert.Equal(t, []string{"6♠", "Q♦", "K♦", "2♦", "2♠"}, Strings(Shuffle(1)[:5]))
	assert.Equal(t, []string{"K♣", "7♣", "6♥", "Q♥", "4♠"}, Strings(Shuffle(0)[:5]))
	assert.Equal(t, []string{"Q♠", "7♠", "7♣", "9♠", "5♠"}, Strings(Shuffle(-5)[:5]))
}

func TestShuffleIsAPermutation(t *testing.T) {
	for _, seed := range []int64{1, 42, 1 << 40, randutil.MaxSeed} {
		cards := Shuffle(seed)
		require.Len(t, cards, 52)

		seen := make(map[Card]bool, 52)
		for _, c := range cards {
			require.False(t, c.IsHidden())
			require.False(t, seen[c], "duplicate %s for seed %d", c, seed)
			seen[c] = true
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	assert.NotEqual(t, Shuffle(42), Shuffle(43))
	assert.NotEqual(t, Shuffle(1000), Shuffle(1001))
}

func TestDeckDrawsFromTheFront(t *testing.T) {
	d := New(42, randutil.Fixed(7))
	expected := Shuffle(42)

	assert.Equal(t, expected[0], d.Draw())
	assert.Equal(t, expected[1:6], d.DrawN(5))
	assert.Equal(t, 46, d.CardsRemaining())
}

func TestDeckReshufflesWhenExhausted(t *testing.T) {
	d := New(42, randutil.Fixed(7))
	d.DrawN(52)
	require.Equal(t, 0, d.CardsRemaining())

	card := d.Draw()
	assert.Equal(t, Shuffle(7)[0], card)
	assert.Equal(t, int64(7), d.Seed())
	assert.Equal(t, 51, d.CardsRemaining())
}
