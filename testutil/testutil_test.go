package testutil

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	rng := NewRNG(4711)

	a := rng.Bytes(16)
	rng.Reset()
	b := rng.Bytes(16)

	assert.Len(t, a, 16)
	assert.Equal(t, a, b, "reset must replay the sequence")
}

func TestSparseBytes(t *testing.T) {
	rng := NewRNG(4711)

	for w := 0; w <= 16; w++ {
		got := rng.SparseBytes(2, w)
		n := 0
		for _, x := range got {
			n += bits.OnesCount8(x)
		}
		assert.Equal(t, w, n)
	}
}

func TestBinomialSum(t *testing.T) {
	assert.Equal(t, int64(64), BinomialSum(6, 6).Int64())
	assert.Equal(t, int64(1149017), BinomialSum(32, 6).Int64())
}
