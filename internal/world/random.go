package world

import (
	"hash/fnv"
	"math/rand"
)

// DeterministicSeedValue folds a root seed and a subsystem label into a
// stable int64 so independent subsystems draw from uncorrelated streams that
// still replay identically per seed.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func NewDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

// RandomRange returns a value in [min, max) from the given stream.
func RandomRange(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	if rng == nil {
		rng = NewDeterministicRNG(DefaultSeed, "world")
	}
	return min + rng.Float64()*(max-min)
}
