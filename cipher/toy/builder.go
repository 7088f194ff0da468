package toy

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/biclique/bitvector"
	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/differential"
)

// ErrUnsupportedPivot is returned when a request pivots anywhere but on the
// window boundary it propagates away from.
var ErrUnsupportedPivot = errors.New("toy: pivot must be FromRound-1 (forward) or ToRound (backward)")

// Builder constructs truncated differential trails for the toy family.
//
// Key differences are computed concretely from the key schedule of two
// fresh cipher instances. State differences are tracked at nibble
// granularity: a nibble is either inactive (0x0) or active (0xf). The
// S-box keeps activity, the rotation layer moves it, and a key addition
// activates every nibble that is active in the state or in the round-key
// difference.
//
// Builder is stateless and safe for concurrent use.
type Builder struct {
	cfg Config
}

var _ differential.Builder = (*Builder)(nil)

// NewBuilder creates a builder for the toy cipher described by cfg.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg}, nil
}

// roundKeyDifferences derives per-round key differences for base and
// base ^ delta from two independently keyed instances.
func (b *Builder) roundKeyDifferences(req differential.Request) (first, second *bitvector.Vector, diffs []*differential.Difference, err error) {
	size := b.cfg.Nibbles / 2
	if req.KeyDifference == nil || req.KeyDifference.Len() != size {
		return nil, nil, nil, fmt.Errorf("%w: key difference", cipher.ErrInvalidKey)
	}
	first = req.BaseKey
	if first == nil {
		first = bitvector.New(size)
	}
	second, err = first.Clone().Xor(req.KeyDifference)
	if err != nil {
		return nil, nil, nil, err
	}

	c1, c2 := &Cipher{cfg: b.cfg}, &Cipher{cfg: b.cfg}
	if err := c1.SetKey(first); err != nil {
		return nil, nil, nil, err
	}
	if err := c2.SetKey(second); err != nil {
		return nil, nil, nil, err
	}
	ek1, err := c1.ExpandedKey()
	if err != nil {
		return nil, nil, nil, err
	}
	ek2, err := c2.ExpandedKey()
	if err != nil {
		return nil, nil, nil, err
	}

	diffs = make([]*differential.Difference, b.cfg.Rounds+1)
	for r := range diffs {
		k1, err := ek1.Splice(r*size, (r+1)*size)
		if err != nil {
			return nil, nil, nil, err
		}
		k2, err := ek2.Splice(r*size, (r+1)*size)
		if err != nil {
			return nil, nil, nil, err
		}
		if diffs[r], err = differential.Between(k1, k2); err != nil {
			return nil, nil, nil, err
		}
	}
	return first, second, diffs, nil
}

func (b *Builder) newTrail(ctx context.Context, req differential.Request) (*differential.Differential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.FromRound < 1 || req.ToRound < req.FromRound || req.ToRound > b.cfg.Rounds {
		return nil, fmt.Errorf("%w: [%d,%d]", cipher.ErrInvalidRounds, req.FromRound, req.ToRound)
	}
	return differential.New(req.FromRound, req.ToRound)
}

// ForwardDifferential implements differential.Builder.
func (b *Builder) ForwardDifferential(ctx context.Context, req differential.Request) (*differential.Differential, error) {
	trail, err := b.newTrail(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.PivotRound != req.FromRound-1 {
		return nil, fmt.Errorf("%w: forward pivot %d", ErrUnsupportedPivot, req.PivotRound)
	}
	k1, k2, keyDiffs, err := b.roundKeyDifferences(req)
	if err != nil {
		return nil, err
	}
	if err := trail.SetSecretKeys(k1, k2); err != nil {
		return nil, err
	}

	act := make([]byte, b.cfg.Nibbles/2)
	if err := trail.SetStateDifference(req.FromRound-1, differential.FromBytes(act)); err != nil {
		return nil, err
	}
	if req.FromRound == 1 {
		if err := trail.SetKeyDifference(0, keyDiffs[0]); err != nil {
			return nil, err
		}
		activate(act, keyDiffs[0])
	}
	for r := req.FromRound; r <= req.ToRound; r++ {
		if b.cfg.RotateNibbles {
			rotateNibblesLeft(act)
		}
		if err := trail.SetIntermediateStateDifference(r, differential.FromBytes(act)); err != nil {
			return nil, err
		}
		if err := trail.SetKeyDifference(r, keyDiffs[r]); err != nil {
			return nil, err
		}
		activate(act, keyDiffs[r])
		if err := trail.SetStateDifference(r, differential.FromBytes(act)); err != nil {
			return nil, err
		}
	}
	return trail, nil
}

// BackwardDifferential implements differential.Builder.
func (b *Builder) BackwardDifferential(ctx context.Context, req differential.Request) (*differential.Differential, error) {
	trail, err := b.newTrail(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.PivotRound != req.ToRound {
		return nil, fmt.Errorf("%w: backward pivot %d", ErrUnsupportedPivot, req.PivotRound)
	}
	k1, k2, keyDiffs, err := b.roundKeyDifferences(req)
	if err != nil {
		return nil, err
	}
	if err := trail.SetSecretKeys(k1, k2); err != nil {
		return nil, err
	}

	act := make([]byte, b.cfg.Nibbles/2)
	if err := trail.SetStateDifference(req.ToRound, differential.FromBytes(act)); err != nil {
		return nil, err
	}
	for r := req.ToRound; r >= req.FromRound; r-- {
		if err := trail.SetKeyDifference(r, keyDiffs[r]); err != nil {
			return nil, err
		}
		activate(act, keyDiffs[r])
		if err := trail.SetIntermediateStateDifference(r, differential.FromBytes(act)); err != nil {
			return nil, err
		}
		if b.cfg.RotateNibbles {
			rotateNibblesRight(act)
		}
		if r == 1 {
			if err := trail.SetKeyDifference(0, keyDiffs[0]); err != nil {
				return nil, err
			}
			activate(act, keyDiffs[0])
		}
		if err := trail.SetStateDifference(r-1, differential.FromBytes(act)); err != nil {
			return nil, err
		}
	}
	return trail, nil
}

// activate marks every nibble of act that is non-zero in d.
func activate(act []byte, d *differential.Difference) {
	kb := d.Bytes()
	for i := range act {
		if kb[i]&0xf0 != 0 {
			act[i] |= 0xf0
		}
		if kb[i]&0x0f != 0 {
			act[i] |= 0x0f
		}
	}
}
