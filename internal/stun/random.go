package stun

import (
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// RandomSource resolves light stun chances. *rand.Rand satisfies it.
//
// Implementations used by a shared Calculator must be safe for concurrent use.
type RandomSource interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// SeededSource is a reproducible, concurrency-safe RandomSource.
type SeededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource derives a PCG stream from the blake2b digest of seed, so the
// same seed string always replays the same rolls.
func NewSeededSource(seed string) *SeededSource {
	sum := blake2b.Sum256([]byte(seed))
	s1 := binary.LittleEndian.Uint64(sum[0:8])
	s2 := binary.LittleEndian.Uint64(sum[8:16])
	return &SeededSource{rng: rand.New(rand.NewPCG(s1, s2))}
}

// Float64 implements RandomSource.
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
