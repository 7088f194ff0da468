package differential

import (
	"github.com/hupe1980/biclique/bitvector"
)

// Difference is an XOR mask between two cipher states (or keys).
//
// Xor, And and Or mutate the receiver and return it for chaining. Clone
// before sharing a Difference with another goroutine.
type Difference struct {
	*bitvector.Vector
}

// NewDifference creates a zero difference of numBytes bytes.
func NewDifference(numBytes int) *Difference {
	return &Difference{Vector: bitvector.New(numBytes)}
}

// FromVector wraps a copy of v.
func FromVector(v *bitvector.Vector) *Difference {
	return &Difference{Vector: v.Clone()}
}

// FromBytes wraps a copy of b.
func FromBytes(b []byte) *Difference {
	return &Difference{Vector: bitvector.FromBytes(b)}
}

// Between returns a ^ b as a new difference.
func Between(a, b *bitvector.Vector) (*Difference, error) {
	d := FromVector(a)
	if _, err := d.Vector.Xor(b); err != nil {
		return nil, err
	}
	return d, nil
}

// Clone returns a deep copy.
func (d *Difference) Clone() *Difference {
	if d == nil {
		return nil
	}
	return &Difference{Vector: d.Vector.Clone()}
}

// Xor sets d = d ^ o.
func (d *Difference) Xor(o *Difference) (*Difference, error) {
	_, err := d.Vector.Xor(o.Vector)
	return d, err
}

// And sets d = d & o.
func (d *Difference) And(o *Difference) (*Difference, error) {
	_, err := d.Vector.And(o.Vector)
	return d, err
}

// Or sets d = d | o.
func (d *Difference) Or(o *Difference) (*Difference, error) {
	_, err := d.Vector.Or(o.Vector)
	return d, err
}

// Equal reports whether both differences hold identical bytes.
func (d *Difference) Equal(o *Difference) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.Vector.Equal(o.Vector)
}

// MarshalText encodes the difference as hex.
func (d *Difference) MarshalText() ([]byte, error) {
	return d.Vector.MarshalText()
}

// UnmarshalText decodes a hex-encoded difference.
func (d *Difference) UnmarshalText(text []byte) error {
	if d.Vector == nil {
		d.Vector = new(bitvector.Vector)
	}
	return d.Vector.UnmarshalText(text)
}
