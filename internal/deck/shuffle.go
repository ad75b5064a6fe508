package deck

const (
	lcgModulus    = 2147483647
	lcgMultiplier = 16807
)

// lcg is a Park-Miller minimal standard generator. Clients replay it from the
// broadcast dealer seed, so its arithmetic must not change.
type lcg struct {
	value int64
}

func newLCG(seed int64) *lcg {
	v := seed % lcgModulus
	if v <= 0 {
		v += lcgModulus - 1
	}
	return &lcg{value: v}
}

// Float64 returns the next value in (0, 1).
func (g *lcg) Float64() float64 {
	g.value = (g.value * lcgMultiplier) % lcgModulus
	return float64(g.value-1) / float64(lcgModulus-1)
}

// Ordered returns the unshuffled 52-card deck: suits ♠♥♦♣, ranks A down to 2.
func Ordered() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle returns the 52-card deck permuted by a Fisher-Yates shuffle driven
// by the seeded generator. The same seed always yields the same order.
func Shuffle(seed int64) []Card {
	cards := Ordered()
	rng := newLCG(seed)
	for i := len(cards) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		cards[i], cards[j] = cards[j], cards[i]
	}
	return cards
}
