// Package toy implements a small nibble-oriented SPN cipher family and a
// truncated differential builder for it.
//
// A toy cipher with n nibbles has an n*4-bit state and an n*4-bit key. Each
// round applies the PRESENT S-box to every nibble, optionally rotates the
// nibbles one position to the left, and XORs the round key. Round 0 is a
// whitening key addition. Round key r is the master key XOR a round constant,
// so a key difference lands on the same nibbles in every round.
//
// The family exists to exercise the search engine end to end; it has no
// cryptographic value.
package toy

import (
	"fmt"

	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/cipher"
)

var sbox = [16]byte{0xc, 0x5, 0x6, 0xb, 0x9, 0x0, 0xa, 0xd, 0x3, 0xe, 0xf, 0x8, 0x4, 0x7, 0x1, 0x2}

var invSbox = func() [16]byte {
	var inv [16]byte
	for i, v := range sbox {
		inv[v] = byte(i)
	}
	return inv
}()

// Config describes a member of the toy family.
type Config struct {
	// Nibbles is the state and key width in nibbles; it must be even.
	Nibbles int `yaml:"nibbles"`
	// Rounds is the number of full rounds.
	Rounds int `yaml:"rounds"`
	// RotateNibbles enables the nibble rotation layer.
	RotateNibbles bool `yaml:"rotate_nibbles"`
}

// DefaultConfig is the 8-bit, two-round variant.
var DefaultConfig = Config{Nibbles: 2, Rounds: 2}

func (c Config) validate() error {
	if c.Nibbles < 2 || c.Nibbles%2 != 0 {
		return fmt.Errorf("toy: nibbles must be even and >= 2, got %d", c.Nibbles)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("toy: rounds must be positive, got %d", c.Rounds)
	}
	return nil
}

// Cipher is one keyed instance of the toy family.
type Cipher struct {
	cfg       Config
	roundKeys []*bitvector.Vector // index 0 is the whitening key
}

var _ cipher.Cipher = (*Cipher)(nil)

// New creates a keyless toy cipher.
func New(cfg Config) (*Cipher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Cipher{cfg: cfg}, nil
}

// Factory returns a cipher.Factory for cfg. cfg must be valid.
func Factory(cfg Config) (cipher.Factory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return func() cipher.Cipher { return &Cipher{cfg: cfg} }, nil
}

// Name implements cipher.Cipher.
func (c *Cipher) Name() string {
	if c.cfg.RotateNibbles {
		return fmt.Sprintf("toy%d-rot", c.cfg.Nibbles*4)
	}
	return fmt.Sprintf("toy%d", c.cfg.Nibbles*4)
}

// NumRounds implements cipher.Cipher.
func (c *Cipher) NumRounds() int { return c.cfg.Rounds }

// KeySize implements cipher.Cipher.
func (c *Cipher) KeySize() int { return c.cfg.Nibbles / 2 }

// StateSize implements cipher.Cipher.
func (c *Cipher) StateSize() int { return c.cfg.Nibbles / 2 }

// HasKeyInjectionInRound implements cipher.Cipher.
func (c *Cipher) HasKeyInjectionInRound(round int) bool {
	return round >= 0 && round <= c.cfg.Rounds
}

func roundConstant(round, size int) []byte {
	rc := make([]byte, size)
	for i := range rc {
		rc[i] = byte(round*0x1d + i*0x07)
	}
	return rc
}

// SetKey implements cipher.Cipher.
func (c *Cipher) SetKey(key *bitvector.Vector) error {
	if key.Len() != c.KeySize() {
		return fmt.Errorf("%w: got %d bytes, want %d", cipher.ErrInvalidKey, key.Len(), c.KeySize())
	}
	c.roundKeys = make([]*bitvector.Vector, c.cfg.Rounds+1)
	for r := range c.roundKeys {
		rk := key.Clone()
		if _, err := rk.Xor(bitvector.FromBytes(roundConstant(r, key.Len()))); err != nil {
			return err
		}
		c.roundKeys[r] = rk
	}
	return nil
}

// RoundKey returns round key r (0 is the whitening key).
func (c *Cipher) RoundKey(r int) (*bitvector.Vector, error) {
	if c.roundKeys == nil {
		return nil, cipher.ErrNoKey
	}
	if r < 0 || r >= len(c.roundKeys) {
		return nil, fmt.Errorf("%w: round key %d", cipher.ErrInvalidRounds, r)
	}
	return c.roundKeys[r].Clone(), nil
}

// ExpandedKey implements cipher.Cipher.
func (c *Cipher) ExpandedKey() (*bitvector.Vector, error) {
	if c.roundKeys == nil {
		return nil, cipher.ErrNoKey
	}
	out := bitvector.New(0)
	for _, rk := range c.roundKeys {
		out.Concat(rk)
	}
	return out, nil
}

func (c *Cipher) checkCall(state *bitvector.Vector, fromRound, toRound int) error {
	if c.roundKeys == nil {
		return cipher.ErrNoKey
	}
	if state.Len() != c.StateSize() {
		return fmt.Errorf("%w: got %d bytes, want %d", cipher.ErrInvalidState, state.Len(), c.StateSize())
	}
	return cipher.ValidateWindow(c, cipher.Window{FromRound: fromRound, ToRound: toRound})
}

// EncryptRounds implements cipher.Cipher.
func (c *Cipher) EncryptRounds(state *bitvector.Vector, fromRound, toRound int) (*bitvector.Vector, error) {
	if err := c.checkCall(state, fromRound, toRound); err != nil {
		return nil, err
	}
	s := state.Bytes()
	if fromRound == 1 {
		xorInto(s, c.roundKeys[0])
	}
	for r := fromRound; r <= toRound; r++ {
		substitute(s, &sbox)
		if c.cfg.RotateNibbles {
			rotateNibblesLeft(s)
		}
		xorInto(s, c.roundKeys[r])
	}
	return bitvector.FromBytes(s), nil
}

// DecryptRounds implements cipher.Cipher.
func (c *Cipher) DecryptRounds(state *bitvector.Vector, fromRound, toRound int) (*bitvector.Vector, error) {
	if err := c.checkCall(state, fromRound, toRound); err != nil {
		return nil, err
	}
	s := state.Bytes()
	for r := toRound; r >= fromRound; r-- {
		xorInto(s, c.roundKeys[r])
		if c.cfg.RotateNibbles {
			rotateNibblesRight(s)
		}
		substitute(s, &invSbox)
	}
	if fromRound == 1 {
		xorInto(s, c.roundKeys[0])
	}
	return bitvector.FromBytes(s), nil
}

func xorInto(s []byte, k *bitvector.Vector) {
	kb := k.Bytes()
	for i := range s {
		s[i] ^= kb[i]
	}
}

func substitute(s []byte, box *[16]byte) {
	for i, b := range s {
		s[i] = box[b>>4]<<4 | box[b&0x0f]
	}
}

// rotateNibblesLeft moves nibble i to position i-1 (mod n), MSB-first.
func rotateNibblesLeft(s []byte) {
	if len(s) == 0 {
		return
	}
	first := s[0] >> 4
	for i := 0; i < len(s)-1; i++ {
		s[i] = s[i]<<4 | s[i+1]>>4
	}
	s[len(s)-1] = s[len(s)-1]<<4 | first
}

func rotateNibblesRight(s []byte) {
	if len(s) == 0 {
		return
	}
	last := s[len(s)-1] & 0x0f
	for i := len(s) - 1; i > 0; i-- {
		s[i] = s[i]>>4 | s[i-1]<<4
	}
	s[0] = s[0]>>4 | last<<4
}
