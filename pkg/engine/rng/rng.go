// Package rng is the seeded random source every placement decision draws from.
// Nothing in the engine uses the global math/rand source, so a seed string
// always produces the same world.
package rng

import (
	"math/rand"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Rand wraps a seeded source
type Rand struct {
	r    *rand.Rand
	seed uint64
}

// New creates a generator from a numeric seed
func New(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(int64(seed))), seed: seed}
}

// FromString creates a generator from a seed string. Decimal strings are used
// as-is; anything else is hashed.
func FromString(seed string) *Rand {
	return New(HashSeed(seed))
}

// HashSeed maps a seed string to a 64-bit seed
func HashSeed(seed string) uint64 {
	if n, err := strconv.ParseUint(seed, 10, 64); err == nil {
		return n
	}
	return xxhash.Sum64String(seed)
}

// Seed returns the numeric seed the generator was created with
func (r *Rand) Seed() uint64 {
	return r.seed
}

// Derive returns an independent generator for a sub-task, e.g. one world of a multiworld seed
func (r *Rand) Derive(label string) *Rand {
	return New(r.seed ^ xxhash.Sum64String(label))
}

// Intn returns a uniform int in [0, n)
func (r *Rand) Intn(n int) int {
	return r.r.Intn(n)
}

// Shuffle permutes s in place
func Shuffle[T any](r *Rand, s []T) {
	r.r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// Pick returns a uniformly chosen element of s; s must not be empty
func Pick[T any](r *Rand, s []T) T {
	return s[r.Intn(len(s))]
}

// Pop removes a uniformly chosen element of s and returns it with the shortened slice
func Pop[T any](r *Rand, s []T) (T, []T) {
	i := r.Intn(len(s))
	v := s[i]
	s[i] = s[len(s)-1]
	return v, s[:len(s)-1]
}

// PopBack removes the last element of s
func PopBack[T any](s []T) (T, []T) {
	return s[len(s)-1], s[:len(s)-1]
}
