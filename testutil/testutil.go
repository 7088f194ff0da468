package testutil

import (
	"math/big"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n uniformly random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.rand.Intn(256))
	}
	return out
}

// SparseBytes returns n bytes with exactly weight distinct bits set
// (MSB-first positions). weight is clamped to n*8.
func (r *RNG) SparseBytes(n, weight int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]byte, n)
	weight = min(weight, n*8)
	for _, p := range r.rand.Perm(n * 8)[:weight] {
		out[p>>3] |= 0x80 >> (p & 7)
	}
	return out
}

// Binomial returns C(n, k) computed exactly. Used as a reference value for
// the overflow-aware accumulation under test.
func Binomial(n, k int64) *big.Int {
	return new(big.Int).Binomial(n, k)
}

// BinomialSum returns sum_{i=0..k} C(n, i) computed exactly.
func BinomialSum(n, k int64) *big.Int {
	sum := new(big.Int)
	for i := int64(0); i <= k && i <= n; i++ {
		sum.Add(sum, Binomial(n, i))
	}
	return sum
}
