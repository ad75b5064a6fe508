package randutil

import (
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15

	// MaxSeed is the largest dealer seed handed out. Seeds stay within the
	// 53-bit integer range so they survive a round trip through JSON numbers.
	MaxSeed = 1<<53 - 1
)

// Source hands out dealer seeds. Seeds are always in [1, MaxSeed]; zero is
// reserved to mean "no seed chosen yet".
type Source interface {
	Seed() int64
}

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSource returns a Source whose sequence of seeds is fully determined by
// seed. Used by tests and by servers started with a fixed seed.
func NewSource(seed int64) Source {
	return &lockedSource{rng: New(seed)}
}

// NewRandomSource returns a Source seeded from the runtime's random state.
func NewRandomSource() Source {
	return &lockedSource{rng: New(rand.Int64())}
}

type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int64N(MaxSeed) + 1
}

// Fixed is a Source that always returns the same seed.
type Fixed int64

// Seed implements Source.
func (f Fixed) Seed() int64 { return int64(f) }

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
