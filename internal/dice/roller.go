package dice

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
)

// Roller is a seedable deterministic source of die faces.
// Two rollers built from the same seed produce identical sequences.
//
// Thread-safe: rolls are serialized by a mutex.
type Roller struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed uint64
}

// NewRoller creates a roller backed by a PCG generator seeded with seed.
func NewRoller(seed uint64) *Roller {
	return &Roller{
		rng:  rand.New(rand.NewPCG(seed, seed)),
		seed: seed,
	}
}

// Seed returns the seed the roller was created with.
func (r *Roller) Seed() uint64 {
	return r.seed
}

// Roll returns a face of d in [1, d]. Dice with fewer than one side roll 0.
func (r *Roller) Roll(d Die) int {
	if d < 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(int(d)) + 1
}

var (
	defaultMu     sync.Mutex
	defaultRoller *Roller
)

// SetSeed seeds the process-wide default roller. Only the first seeding
// takes effect; it reports whether this call was the one applied.
func SetSeed(seed uint64) bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRoller != nil {
		return false
	}
	defaultRoller = NewRoller(seed)
	return true
}

// RandomSeed seeds the default roller from the runtime's random source.
func RandomSeed() bool {
	return SetSeed(rand.Uint64())
}

// Default returns the process-wide roller used when none is passed.
//
// Rolling before any seed was set is a bug inside tests and panics there.
// Elsewhere the roller is seeded randomly and a warning is logged, since
// the run is then not reproducible.
func Default() *Roller {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRoller == nil {
		if testing.Testing() {
			panic("dice: rolled with no seed set; call dice.SetSeed or pass a Roller")
		}
		seed := rand.Uint64()
		slog.Warn("dice seed was never set, falling back to a random seed", "seed", seed)
		defaultRoller = NewRoller(seed)
	}
	return defaultRoller
}
