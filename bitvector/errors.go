package bitvector

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("bitvector: index out of range")

	// ErrLengthMismatch is matched by every *LengthMismatchError.
	ErrLengthMismatch = errors.New("bitvector: length mismatch")

	// ErrInvalidHex is returned when parsing a malformed hex string.
	ErrInvalidHex = errors.New("bitvector: invalid hex string")
)

// RangeError reports an index outside the addressable range of a vector.
type RangeError struct {
	Unit  string // "bit", "nibble", "byte"
	Index int
	Limit int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bitvector: %s index %d out of range [0,%d)", e.Unit, e.Index, e.Limit)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// LengthMismatchError reports a binary operation between vectors of
// different lengths.
type LengthMismatchError struct {
	Op    string
	Left  int
	Right int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("bitvector: %s of %d-byte and %d-byte vectors", e.Op, e.Left, e.Right)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }
