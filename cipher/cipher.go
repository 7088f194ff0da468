// Package cipher defines the capability contract the search engine expects
// from an iterated block cipher.
//
// Rounds are numbered 1..NumRounds. Round 0 denotes the key-whitening step
// applied before round 1, if the cipher has one.
package cipher

import (
	"errors"
	"fmt"

	"github.com/hupe1980/biclique/bitvector"
)

var (
	// ErrInvalidKey is returned when a key has the wrong length.
	ErrInvalidKey = errors.New("cipher: invalid key size")

	// ErrInvalidState is returned when a state has the wrong length.
	ErrInvalidState = errors.New("cipher: invalid state size")

	// ErrInvalidRounds is returned for a round range outside the cipher.
	ErrInvalidRounds = errors.New("cipher: invalid round range")

	// ErrNoKey is returned when encrypting before SetKey.
	ErrNoKey = errors.New("cipher: key not set")
)

// Cipher is an iterated block cipher with a round-granular interface.
//
// SetKey mutates the instance, so a Cipher must not be shared between
// goroutines while keys are being set. Builders create one instance per call
// through a Factory.
type Cipher interface {
	Name() string
	NumRounds() int
	// KeySize returns the key length in bytes.
	KeySize() int
	// StateSize returns the block length in bytes.
	StateSize() int

	SetKey(key *bitvector.Vector) error
	// ExpandedKey returns the concatenated round keys, whitening key first.
	ExpandedKey() (*bitvector.Vector, error)
	HasKeyInjectionInRound(round int) bool

	// EncryptRounds applies rounds fromRound..toRound to a copy of state.
	// fromRound 1 includes the whitening step.
	EncryptRounds(state *bitvector.Vector, fromRound, toRound int) (*bitvector.Vector, error)
	// DecryptRounds inverts rounds toRound down to fromRound on a copy of state.
	DecryptRounds(state *bitvector.Vector, fromRound, toRound int) (*bitvector.Vector, error)
}

// Factory creates a fresh, keyless Cipher instance.
type Factory func() Cipher

// Window is an inclusive round range.
type Window struct {
	FromRound int `json:"fromRound" yaml:"from"`
	ToRound   int `json:"toRound" yaml:"to"`
}

// NumRounds returns the number of rounds in the window.
func (w Window) NumRounds() int { return w.ToRound - w.FromRound + 1 }

func (w Window) String() string { return fmt.Sprintf("[%d,%d]", w.FromRound, w.ToRound) }

// ValidateWindow checks 1 <= from <= to <= c.NumRounds().
func ValidateWindow(c Cipher, w Window) error {
	if w.FromRound < 1 || w.ToRound < w.FromRound || w.ToRound > c.NumRounds() {
		return fmt.Errorf("%w: %s for %s with %d rounds", ErrInvalidRounds, w, c.Name(), c.NumRounds())
	}
	return nil
}

// Windows returns every window of the given length, sliding by one round
// over 1..numRounds.
func Windows(numRounds, length int) []Window {
	if length < 1 || length > numRounds {
		return nil
	}
	out := make([]Window, 0, numRounds-length+1)
	for from := 1; from+length-1 <= numRounds; from++ {
		out = append(out, Window{FromRound: from, ToRound: from + length - 1})
	}
	return out
}
