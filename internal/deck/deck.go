package deck

import "github.com/lox/caribbeanpoker/internal/randutil"

// Deck represents a seeded deck of playing cards
type Deck struct {
	cards []Card
	seed  int64
	seeds randutil.Source
}

// New creates a deck shuffled from seed. seeds supplies fresh seeds if the
// deck runs dry mid-round; nil falls back to a random source.
func New(seed int64, seeds randutil.Source) *Deck {
	if seeds == nil {
		seeds = randutil.NewRandomSource()
	}
	return &Deck{
		cards: Shuffle(seed),
		seed:  seed,
		seeds: seeds,
	}
}

// Seed returns the seed the current cards were shuffled from.
func (d *Deck) Seed() int64 {
	return d.seed
}

// Draw removes and returns the top card. An exhausted deck is silently
// reshuffled from a fresh seed, so cards already dealt this round can
// appear again.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.seed = d.seeds.Seed()
		d.cards = Shuffle(d.seed)
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

// DrawN draws n cards
func (d *Deck) DrawN(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = d.Draw()
	}
	return cards
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

