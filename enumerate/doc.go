// Package enumerate generates key-difference candidates of bounded Hamming
// weight.
//
// Restricting candidates to weight at most the search dimension keeps the
// space tractable: dimension 8 over a 128-bit key yields
// sum_{i=1..8} C(128, i) candidates instead of 2^128.
//
//	e := enumerate.NewWeightBounded()
//	n, err := e.Init(2, 8) // 36 candidates
//	for c, ok := e.Next(); ok; c, ok = e.Next() {
//	    // c has one or two bits set
//	}
package enumerate
