package bitvector

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/bits"
	"strings"
)

// Vector is a resizable sequence of bytes addressed MSB-first.
type Vector struct {
	data []byte
}

// New creates a zeroed vector of numBytes bytes.
func New(numBytes int) *Vector {
	if numBytes < 0 {
		numBytes = 0
	}
	return &Vector{data: make([]byte, numBytes)}
}

// FromBytes creates a vector holding a copy of b.
func FromBytes(b []byte) *Vector {
	data := make([]byte, len(b))
	copy(data, b)
	return &Vector{data: data}
}

// FromUint creates a numBytes-long vector holding v in big-endian order.
// Higher-order bytes that do not fit are dropped.
func FromUint(v uint64, numBytes int) *Vector {
	out := New(numBytes)
	for i := numBytes - 1; i >= 0 && v != 0; i-- {
		out.data[i] = byte(v)
		v >>= 8
	}
	return out
}

// FromHex parses a hex string (optionally "0x"-prefixed, whitespace ignored).
func FromHex(s string) (*Vector, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Join(strings.Fields(s), "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(s))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}
	return &Vector{data: data}, nil
}

// Len returns the length in bytes.
func (v *Vector) Len() int { return len(v.data) }

// NumBits returns the length in bits.
func (v *Vector) NumBits() int { return len(v.data) * 8 }

// NumNibbles returns the length in nibbles.
func (v *Vector) NumNibbles() int { return len(v.data) * 2 }

// Bytes returns a copy of the underlying bytes.
func (v *Vector) Bytes() []byte {
	out := make([]byte, len(v.data))
	copy(out, v.data)
	return out
}

// Clone returns a deep copy.
func (v *Vector) Clone() *Vector {
	if v == nil {
		return nil
	}
	return FromBytes(v.data)
}

// Equal reports whether both vectors have the same length and bytes.
func (v *Vector) Equal(o *Vector) bool {
	if v == nil || o == nil {
		return v == o
	}
	return bytes.Equal(v.data, o.data)
}

// EqualBytes compares against a raw byte array element by element.
func (v *Vector) EqualBytes(b []byte) bool {
	return bytes.Equal(v.data, b)
}

// EqualInts compares against a numeric array, reading every element as an
// unsigned byte (so -1 matches 0xff).
func (v *Vector) EqualInts(values []int) bool {
	if len(values) != len(v.data) {
		return false
	}
	for i, x := range values {
		if byte(x) != v.data[i] {
			return false
		}
	}
	return true
}

// EqualUint reports whether the vector holds the big-endian value x.
// Leading bytes beyond eight must be zero.
func (v *Vector) EqualUint(x uint64) bool {
	for i := len(v.data) - 1; i >= 0; i-- {
		if v.data[i] != byte(x) {
			return false
		}
		x >>= 8
	}
	return x == 0
}

// IsZero reports whether every byte is zero.
func (v *Vector) IsZero() bool {
	for _, b := range v.data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Clear zeroes every byte.
func (v *Vector) Clear() {
	clear(v.data)
}

func (v *Vector) checkBit(i int) error {
	if i < 0 || i >= len(v.data)*8 {
		return &RangeError{Unit: "bit", Index: i, Limit: len(v.data) * 8}
	}
	return nil
}

func (v *Vector) checkNibble(i int) error {
	if i < 0 || i >= len(v.data)*2 {
		return &RangeError{Unit: "nibble", Index: i, Limit: len(v.data) * 2}
	}
	return nil
}

func (v *Vector) checkByte(i int) error {
	if i < 0 || i >= len(v.data) {
		return &RangeError{Unit: "byte", Index: i, Limit: len(v.data)}
	}
	return nil
}

// Bit returns bit i, counted MSB-first from the head.
func (v *Vector) Bit(i int) (bool, error) {
	if err := v.checkBit(i); err != nil {
		return false, err
	}
	return v.data[i>>3]&(0x80>>(i&7)) != 0, nil
}

// SetBit sets or clears bit i, counted MSB-first from the head.
func (v *Vector) SetBit(i int, on bool) error {
	if err := v.checkBit(i); err != nil {
		return err
	}
	mask := byte(0x80 >> (i & 7))
	if on {
		v.data[i>>3] |= mask
	} else {
		v.data[i>>3] &^= mask
	}
	return nil
}

// BitAtEnd returns bit i counted from the tail (bit 0 is the LSB of the last byte).
func (v *Vector) BitAtEnd(i int) (bool, error) {
	if err := v.checkBit(i); err != nil {
		return false, err
	}
	return v.Bit(len(v.data)*8 - 1 - i)
}

// SetBitAtEnd sets or clears bit i counted from the tail.
func (v *Vector) SetBitAtEnd(i int, on bool) error {
	if err := v.checkBit(i); err != nil {
		return err
	}
	return v.SetBit(len(v.data)*8-1-i, on)
}

// Nibble returns nibble i; nibble 0 is the high nibble of byte 0.
func (v *Vector) Nibble(i int) (byte, error) {
	if err := v.checkNibble(i); err != nil {
		return 0, err
	}
	b := v.data[i>>1]
	if i&1 == 0 {
		return b >> 4, nil
	}
	return b & 0x0f, nil
}

// SetNibble stores the low four bits of value at nibble i.
func (v *Vector) SetNibble(i int, value byte) error {
	if err := v.checkNibble(i); err != nil {
		return err
	}
	value &= 0x0f
	if i&1 == 0 {
		v.data[i>>1] = v.data[i>>1]&0x0f | value<<4
	} else {
		v.data[i>>1] = v.data[i>>1]&0xf0 | value
	}
	return nil
}

// NibbleAtEnd returns nibble i counted from the tail.
func (v *Vector) NibbleAtEnd(i int) (byte, error) {
	if err := v.checkNibble(i); err != nil {
		return 0, err
	}
	return v.Nibble(len(v.data)*2 - 1 - i)
}

// SetNibbleAtEnd stores value at nibble i counted from the tail.
func (v *Vector) SetNibbleAtEnd(i int, value byte) error {
	if err := v.checkNibble(i); err != nil {
		return err
	}
	return v.SetNibble(len(v.data)*2-1-i, value)
}

// Byte returns byte i.
func (v *Vector) Byte(i int) (byte, error) {
	if err := v.checkByte(i); err != nil {
		return 0, err
	}
	return v.data[i], nil
}

// SetByte stores value at byte i.
func (v *Vector) SetByte(i int, value byte) error {
	if err := v.checkByte(i); err != nil {
		return err
	}
	v.data[i] = value
	return nil
}

// ByteAtEnd returns byte i counted from the tail.
func (v *Vector) ByteAtEnd(i int) (byte, error) {
	if err := v.checkByte(i); err != nil {
		return 0, err
	}
	return v.data[len(v.data)-1-i], nil
}

// SetByteAtEnd stores value at byte i counted from the tail.
func (v *Vector) SetByteAtEnd(i int, value byte) error {
	if err := v.checkByte(i); err != nil {
		return err
	}
	v.data[len(v.data)-1-i] = value
	return nil
}

// ReadBytes returns a copy of bytes [from, to).
func (v *Vector) ReadBytes(from, to int) ([]byte, error) {
	if from < 0 || from > len(v.data) {
		return nil, &RangeError{Unit: "byte", Index: from, Limit: len(v.data) + 1}
	}
	if to < from || to > len(v.data) {
		return nil, &RangeError{Unit: "byte", Index: to, Limit: len(v.data) + 1}
	}
	out := make([]byte, to-from)
	copy(out, v.data[from:to])
	return out, nil
}

// Splice returns a new vector holding bytes [from, to).
func (v *Vector) Splice(from, to int) (*Vector, error) {
	b, err := v.ReadBytes(from, to)
	if err != nil {
		return nil, err
	}
	return &Vector{data: b}, nil
}

// WriteBytes copies b into the vector starting at byte offset at, growing the
// vector when the target range ends beyond the current length.
func (v *Vector) WriteBytes(b []byte, at int) error {
	if at < 0 || at > len(v.data) {
		return &RangeError{Unit: "byte", Index: at, Limit: len(v.data) + 1}
	}
	if end := at + len(b); end > len(v.data) {
		v.data = append(v.data, make([]byte, end-len(v.data))...)
	}
	copy(v.data[at:], b)
	return nil
}

// Concat appends o to the receiver and returns it.
func (v *Vector) Concat(o *Vector) *Vector {
	v.data = append(v.data, o.data...)
	return v
}

// Xor sets v = v ^ o and returns v.
func (v *Vector) Xor(o *Vector) (*Vector, error) {
	if len(v.data) != len(o.data) {
		return v, &LengthMismatchError{Op: "xor", Left: len(v.data), Right: len(o.data)}
	}
	for i := range v.data {
		v.data[i] ^= o.data[i]
	}
	return v, nil
}

// And sets v = v & o and returns v.
func (v *Vector) And(o *Vector) (*Vector, error) {
	if len(v.data) != len(o.data) {
		return v, &LengthMismatchError{Op: "and", Left: len(v.data), Right: len(o.data)}
	}
	for i := range v.data {
		v.data[i] &= o.data[i]
	}
	return v, nil
}

// Or sets v = v | o and returns v.
func (v *Vector) Or(o *Vector) (*Vector, error) {
	if len(v.data) != len(o.data) {
		return v, &LengthMismatchError{Op: "or", Left: len(v.data), Right: len(o.data)}
	}
	for i := range v.data {
		v.data[i] |= o.data[i]
	}
	return v, nil
}

func (v *Vector) checkRange(o *Vector, from, to int) error {
	limit := min(len(v.data), len(o.data))
	if from < 0 || from > limit {
		return &RangeError{Unit: "byte", Index: from, Limit: limit + 1}
	}
	if to < from || to > limit {
		return &RangeError{Unit: "byte", Index: to, Limit: limit + 1}
	}
	return nil
}

// XorRange applies XOR over bytes [from, to) only.
func (v *Vector) XorRange(o *Vector, from, to int) (*Vector, error) {
	if err := v.checkRange(o, from, to); err != nil {
		return v, err
	}
	for i := from; i < to; i++ {
		v.data[i] ^= o.data[i]
	}
	return v, nil
}

// AndRange applies AND over bytes [from, to) only.
func (v *Vector) AndRange(o *Vector, from, to int) (*Vector, error) {
	if err := v.checkRange(o, from, to); err != nil {
		return v, err
	}
	for i := from; i < to; i++ {
		v.data[i] &= o.data[i]
	}
	return v, nil
}

// OrRange applies OR over bytes [from, to) only.
func (v *Vector) OrRange(o *Vector, from, to int) (*Vector, error) {
	if err := v.checkRange(o, from, to); err != nil {
		return v, err
	}
	for i := from; i < to; i++ {
		v.data[i] |= o.data[i]
	}
	return v, nil
}

// NumActiveBits returns the Hamming weight.
func (v *Vector) NumActiveBits() int {
	n := 0
	for _, b := range v.data {
		n += bits.OnesCount8(b)
	}
	return n
}

// NumActiveBytes returns the number of non-zero bytes.
func (v *Vector) NumActiveBytes() int {
	n := 0
	for _, b := range v.data {
		if b != 0 {
			n++
		}
	}
	return n
}

// NumActiveNibbles returns the number of non-zero nibbles.
func (v *Vector) NumActiveNibbles() int {
	n := 0
	for _, b := range v.data {
		if b&0xf0 != 0 {
			n++
		}
		if b&0x0f != 0 {
			n++
		}
	}
	return n
}

// ActiveBitPositions returns the MSB-first indices of all set bits in
// ascending order.
func (v *Vector) ActiveBitPositions() []int {
	out := make([]int, 0, v.NumActiveBits())
	for i, b := range v.data {
		for b != 0 {
			lz := bits.LeadingZeros8(b)
			out = append(out, i*8+lz)
			b &^= 0x80 >> lz
		}
	}
	return out
}

// String returns the lowercase hex encoding.
func (v *Vector) String() string {
	if v == nil {
		return "<nil>"
	}
	return hex.EncodeToString(v.data)
}

// MarshalText encodes the vector as hex.
func (v *Vector) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(v.data)), nil
}

// UnmarshalText decodes a hex encoding produced by MarshalText.
func (v *Vector) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	v.data = parsed.data
	return nil
}
