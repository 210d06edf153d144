package scenario

import (
	"hash/fnv"
	"math/rand"
)

// hashSeed folds a string seed into a 64-bit source value. FNV-1a keeps the
// mapping stable across runs and platforms, which is what the determinism
// contract of Generate rests on.
func hashSeed(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

// newRand returns a PRNG stream derived from the seed string. Callers that
// need independent streams derive them with distinct suffixes, e.g.
// seed+"-anomalies", so consuming one stream never shifts another.
func newRand(seed string) *rand.Rand {
	return rand.New(rand.NewSource(hashSeed(seed)))
}

// rangeFloat maps the next sample of r uniformly into [lo, hi).
func rangeFloat(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
