package enumerate

import (
	"errors"
	"fmt"
	"math/bits"
	"sync"

	"github.com/hupe1980/biclique/bitvector"
)

var (
	// ErrInvalidDimension is returned for a negative dimension or one larger
	// than the number of bits.
	ErrInvalidDimension = errors.New("enumerate: invalid dimension")

	// ErrInvalidNumBits is returned when numBits is not a positive multiple of 8.
	ErrInvalidNumBits = errors.New("enumerate: number of bits must be a positive multiple of 8")

	// ErrOverflow is returned when a candidate count does not fit in a uint64.
	ErrOverflow = errors.New("enumerate: candidate count overflows uint64")
)

// Enumerator produces a finite, restartable sequence of key-difference
// candidates.
type Enumerator interface {
	// Init prepares the sequence for the given dimension and bit width and
	// returns the number of candidates it will produce.
	Init(dimension, numBits int) (uint64, error)

	// NumResults returns the candidate count computed by Init.
	NumResults() uint64

	// Next returns the next candidate, or false once the sequence is exhausted.
	Next() (*bitvector.Vector, bool)

	// Reset restarts the sequence from the first candidate.
	Reset()
}

// Factory creates a fresh Enumerator.
type Factory func() Enumerator

// BinomialCoefficientSum returns sum_{i=0..k} C(n, i).
//
// Each coefficient is derived from the previous one as
// C(n, i) = C(n, i-1) * (n-i+1) / i, which is exact at every step and avoids
// factorials. ErrOverflow is returned if an intermediate product or the sum
// leaves the uint64 range.
func BinomialCoefficientSum(n, k int) (uint64, error) {
	if n < 0 || k < 0 {
		return 0, fmt.Errorf("%w: n=%d k=%d", ErrInvalidDimension, n, k)
	}
	k = min(k, n)

	var (
		coeff uint64 = 1
		sum   uint64 = 1
	)
	for i := 1; i <= k; i++ {
		hi, lo := bits.Mul64(coeff, uint64(n-i+1))
		if hi >= uint64(i) {
			return 0, fmt.Errorf("%w: C(%d,%d)", ErrOverflow, n, i)
		}
		coeff, _ = bits.Div64(hi, lo, uint64(i))

		var carry uint64
		sum, carry = bits.Add64(sum, coeff, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: sum up to C(%d,%d)", ErrOverflow, n, i)
		}
	}
	return sum, nil
}

// NumCandidates returns the number of non-zero values of numBits bits with
// Hamming weight at most dimension.
func NumCandidates(dimension, numBits int) (uint64, error) {
	if dimension < 0 || dimension > numBits {
		return 0, fmt.Errorf("%w: %d for %d bits", ErrInvalidDimension, dimension, numBits)
	}
	sum, err := BinomialCoefficientSum(numBits, dimension)
	if err != nil {
		return 0, err
	}
	return sum - 1, nil
}

// WeightBounded enumerates every non-zero numBits-bit value of Hamming weight
// 1..dimension, ordered by weight and then lexicographically by the
// MSB-first positions of the set bits.
//
// Positions are advanced like an odometer: the highest position that can
// still move is incremented and every higher position is reset to follow it
// contiguously. A weight is exhausted when no position can move.
//
// WeightBounded is safe for concurrent use; Next calls are serialized.
type WeightBounded struct {
	mu sync.Mutex

	dimension int
	numBits   int
	total     uint64
	emitted   uint64

	weight    int
	positions []int
	done      bool
}

// NewWeightBounded creates an uninitialized enumerator. Call Init before Next.
func NewWeightBounded() *WeightBounded {
	return &WeightBounded{done: true}
}

// WeightBoundedFactory is the default Factory.
func WeightBoundedFactory() Enumerator {
	return NewWeightBounded()
}

// Init implements Enumerator.
func (e *WeightBounded) Init(dimension, numBits int) (uint64, error) {
	if numBits <= 0 || numBits%8 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidNumBits, numBits)
	}
	total, err := NumCandidates(dimension, numBits)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.dimension = dimension
	e.numBits = numBits
	e.total = total
	e.resetLocked()
	return total, nil
}

// NumResults implements Enumerator.
func (e *WeightBounded) NumResults() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// Emitted returns how many candidates Next has returned since the last reset.
func (e *WeightBounded) Emitted() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emitted
}

// Reset implements Enumerator.
func (e *WeightBounded) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *WeightBounded) resetLocked() {
	e.emitted = 0
	e.done = e.total == 0
	e.startWeightLocked(1)
}

func (e *WeightBounded) startWeightLocked(w int) {
	e.weight = w
	e.positions = e.positions[:0]
	for i := 0; i < w; i++ {
		e.positions = append(e.positions, i)
	}
}

// Next implements Enumerator.
func (e *WeightBounded) Next() (*bitvector.Vector, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return nil, false
	}

	out := bitvector.New(e.numBits / 8)
	for _, p := range e.positions {
		_ = out.SetBit(p, true)
	}
	e.emitted++
	e.advanceLocked()
	return out, true
}

func (e *WeightBounded) advanceLocked() {
	w := e.weight
	for j := w - 1; j >= 0; j-- {
		// Position j may move up to numBits-w+j without crowding the ones above it.
		if e.positions[j] < e.numBits-w+j {
			e.positions[j]++
			for k := j + 1; k < w; k++ {
				e.positions[k] = e.positions[k-1] + 1
			}
			return
		}
	}
	if w >= e.dimension {
		e.done = true
		return
	}
	e.startWeightLocked(w + 1)
}
