// Package testutil provides testing utilities for the biclique search engine.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	key := rng.Bytes(16)        // uniform random bytes
//	mask := rng.SparseBytes(16, 3) // exactly 3 bits set
//
// # Reference Counts
//
//	n := testutil.Binomial(32, 4) // exact C(32,4) via math/big
package testutil
