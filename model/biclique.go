package model

import (
	"errors"
	"fmt"

	"github.com/hupe1980/biclique/differential"
)

var (
	// ErrWindowMismatch is returned when the two trails cover different rounds.
	ErrWindowMismatch = errors.New("model: delta and nabla windows differ")

	// ErrNilDifferential is returned when either trail is missing.
	ErrNilDifferential = errors.New("model: nil differential")
)

// Biclique is a pair of independent differential trails.
type Biclique struct {
	CipherName        string                     `json:"cipherName"`
	Dimension         int                        `json:"dimension"`
	DeltaDifferential *differential.Differential `json:"deltaDifferential"`
	NablaDifferential *differential.Differential `json:"nablaDifferential"`
}

// New creates a Biclique, checking that both trails share one window.
func New(cipherName string, dimension int, delta, nabla *differential.Differential) (*Biclique, error) {
	if delta == nil || nabla == nil {
		return nil, ErrNilDifferential
	}
	if !delta.SameWindow(nabla) {
		return nil, fmt.Errorf("%w: delta [%d,%d], nabla [%d,%d]", ErrWindowMismatch,
			delta.FromRound, delta.ToRound, nabla.FromRound, nabla.ToRound)
	}
	return &Biclique{
		CipherName:        cipherName,
		Dimension:         dimension,
		DeltaDifferential: delta,
		NablaDifferential: nabla,
	}, nil
}

// FromRound returns the first round of the window.
func (b *Biclique) FromRound() int { return b.DeltaDifferential.FromRound }

// ToRound returns the last round of the window.
func (b *Biclique) ToRound() int { return b.DeltaDifferential.ToRound }

// Validate checks both trails and the shared window, e.g. after decoding.
func (b *Biclique) Validate() error {
	if b.DeltaDifferential == nil || b.NablaDifferential == nil {
		return ErrNilDifferential
	}
	if !b.DeltaDifferential.SameWindow(b.NablaDifferential) {
		return ErrWindowMismatch
	}
	if err := b.DeltaDifferential.Validate(); err != nil {
		return fmt.Errorf("delta: %w", err)
	}
	if err := b.NablaDifferential.Validate(); err != nil {
		return fmt.Errorf("nabla: %w", err)
	}
	return nil
}

// String returns a short description.
func (b *Biclique) String() string {
	return fmt.Sprintf("Biclique(%s, dim=%d, rounds=%d-%d, delta=%s, nabla=%s)",
		b.CipherName, b.Dimension, b.FromRound(), b.ToRound(),
		b.DeltaDifferential.KeyDifference, b.NablaDifferential.KeyDifference)
}

// Clone returns a deep copy whose trails share no memory with b.
func (b *Biclique) Clone() *Biclique {
	return &Biclique{
		CipherName:        b.CipherName,
		Dimension:         b.Dimension,
		DeltaDifferential: b.DeltaDifferential.Clone(),
		NablaDifferential: b.NablaDifferential.Clone(),
	}
}
