// Package bitvector provides a fixed-length byte vector with bit, nibble and
// byte addressing.
//
// Addressing is MSB-first within a byte: bit 0 is the most significant bit of
// byte 0, nibble 0 is the high nibble of byte 0. The "AtEnd" variants address
// from the tail of the vector, so bit 0 at end is the least significant bit of
// the last byte. This is the layout used for register-style states that grow
// from the right.
//
// Every index is bounds-checked. Out-of-range accesses return a *RangeError
// that matches ErrOutOfRange via errors.Is.
//
// Binary operators (Xor, And, Or) require operands of equal length and return
// a *LengthMismatchError otherwise. The ranged variants (XorRange, AndRange,
// OrRange) operate over an explicit byte range that must lie inside both
// operands.
//
// A Vector is not safe for concurrent mutation. Clone before handing a vector
// to another goroutine.
package bitvector
