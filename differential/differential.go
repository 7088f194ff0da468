package differential

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/hupe1980/biclique/bitvector"
)

var (
	// ErrInvalidWindow is returned when FromRound > ToRound or FromRound < 1.
	ErrInvalidWindow = errors.New("differential: invalid round window")

	// ErrWindowMismatch is returned when combining trails over different windows.
	ErrWindowMismatch = errors.New("differential: round windows differ")

	// ErrRoundOutOfWindow is returned when storing a difference outside the
	// rounds a trail may address.
	ErrRoundOutOfWindow = errors.New("differential: round outside trail window")
)

// Differential is a differential trail over the inclusive round window
// [FromRound, ToRound].
//
// Differences are keyed by cipher round. StateDifferences[r] is the
// difference after round r, so StateDifferences[FromRound-1] is the input
// boundary of the window and StateDifferences[0] is the plaintext side.
// IntermediateStateDifferences[r] is the difference inside round r before
// key injection. KeyDifferences[r] is the round-key difference injected in
// round r; round 0 is the whitening key. Rounds without a difference are
// absent from the maps.
type Differential struct {
	FromRound int `json:"fromRound"`
	ToRound   int `json:"toRound"`

	StateDifferences             map[int]*Difference `json:"stateDifferences"`
	IntermediateStateDifferences map[int]*Difference `json:"intermediateStateDifferences"`
	KeyDifferences               map[int]*Difference `json:"keyDifferences"`

	FirstSecretKey  *bitvector.Vector `json:"firstSecretKey,omitempty"`
	SecondSecretKey *bitvector.Vector `json:"secondSecretKey,omitempty"`
	KeyDifference   *Difference       `json:"keyDifference,omitempty"`
}

// New creates an empty trail over [fromRound, toRound].
func New(fromRound, toRound int) (*Differential, error) {
	if fromRound < 1 || toRound < fromRound {
		return nil, fmt.Errorf("%w: [%d,%d]", ErrInvalidWindow, fromRound, toRound)
	}
	return &Differential{
		FromRound:                    fromRound,
		ToRound:                      toRound,
		StateDifferences:             make(map[int]*Difference),
		IntermediateStateDifferences: make(map[int]*Difference),
		KeyDifferences:               make(map[int]*Difference),
	}, nil
}

// NumRounds returns the number of rounds covered by the window.
func (d *Differential) NumRounds() int {
	return d.ToRound - d.FromRound + 1
}

// SameWindow reports whether both trails cover the same rounds.
func (d *Differential) SameWindow(o *Differential) bool {
	return d.FromRound == o.FromRound && d.ToRound == o.ToRound
}

func (d *Differential) checkRound(round int) error {
	// Round FromRound-1 is the input boundary; round 0 also carries the
	// whitening key when the window starts at round 1.
	if round < d.FromRound-1 || round > d.ToRound {
		return fmt.Errorf("%w: round %d not in [%d,%d]", ErrRoundOutOfWindow, round, d.FromRound-1, d.ToRound)
	}
	return nil
}

// StateDifference returns the state difference after round.
func (d *Differential) StateDifference(round int) (*Difference, bool) {
	diff, ok := d.StateDifferences[round]
	return diff, ok
}

// SetStateDifference stores the state difference after round.
func (d *Differential) SetStateDifference(round int, diff *Difference) error {
	if err := d.checkRound(round); err != nil {
		return err
	}
	d.StateDifferences[round] = diff
	return nil
}

// IntermediateStateDifference returns the pre-key-injection difference of round.
func (d *Differential) IntermediateStateDifference(round int) (*Difference, bool) {
	diff, ok := d.IntermediateStateDifferences[round]
	return diff, ok
}

// SetIntermediateStateDifference stores the pre-key-injection difference of round.
func (d *Differential) SetIntermediateStateDifference(round int, diff *Difference) error {
	if err := d.checkRound(round); err != nil {
		return err
	}
	d.IntermediateStateDifferences[round] = diff
	return nil
}

// KeyDifferenceAt returns the round-key difference injected in round.
func (d *Differential) KeyDifferenceAt(round int) (*Difference, bool) {
	diff, ok := d.KeyDifferences[round]
	return diff, ok
}

// SetKeyDifference stores the round-key difference injected in round.
func (d *Differential) SetKeyDifference(round int, diff *Difference) error {
	if err := d.checkRound(round); err != nil {
		return err
	}
	d.KeyDifferences[round] = diff
	return nil
}

// SetSecretKeys stores the two keys that produced the trail and derives
// their difference.
func (d *Differential) SetSecretKeys(first, second *bitvector.Vector) error {
	kd, err := Between(first, second)
	if err != nil {
		return err
	}
	d.FirstSecretKey = first.Clone()
	d.SecondSecretKey = second.Clone()
	d.KeyDifference = kd
	return nil
}

// Rounds returns every round that carries at least one difference, sorted.
func (d *Differential) Rounds() []int {
	set := make(map[int]struct{})
	for _, m := range []map[int]*Difference{d.StateDifferences, d.IntermediateStateDifferences, d.KeyDifferences} {
		for r := range m {
			set[r] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// Clone returns a deep copy.
func (d *Differential) Clone() *Differential {
	out := &Differential{
		FromRound:                    d.FromRound,
		ToRound:                      d.ToRound,
		StateDifferences:             cloneMap(d.StateDifferences),
		IntermediateStateDifferences: cloneMap(d.IntermediateStateDifferences),
		KeyDifferences:               cloneMap(d.KeyDifferences),
		FirstSecretKey:               d.FirstSecretKey.Clone(),
		SecondSecretKey:              d.SecondSecretKey.Clone(),
		KeyDifference:                d.KeyDifference.Clone(),
	}
	return out
}

func cloneMap(in map[int]*Difference) map[int]*Difference {
	out := make(map[int]*Difference, len(in))
	for r, diff := range in {
		out[r] = diff.Clone()
	}
	return out
}

// Xor combines o into d round by round. Rounds present in only one of the
// trails are left untouched.
func (d *Differential) Xor(o *Differential) (*Differential, error) {
	return d.combine(o, (*Difference).Xor)
}

// And combines o into d round by round.
func (d *Differential) And(o *Differential) (*Differential, error) {
	return d.combine(o, (*Difference).And)
}

// Or combines o into d round by round.
func (d *Differential) Or(o *Differential) (*Differential, error) {
	return d.combine(o, (*Difference).Or)
}

type combineFunc func(*Difference, *Difference) (*Difference, error)

func (d *Differential) combine(o *Differential, op combineFunc) (*Differential, error) {
	if !d.SameWindow(o) {
		return d, fmt.Errorf("%w: [%d,%d] vs [%d,%d]", ErrWindowMismatch, d.FromRound, d.ToRound, o.FromRound, o.ToRound)
	}
	pairs := [][2]map[int]*Difference{
		{d.StateDifferences, o.StateDifferences},
		{d.IntermediateStateDifferences, o.IntermediateStateDifferences},
		{d.KeyDifferences, o.KeyDifferences},
	}
	for _, p := range pairs {
		for r, diff := range p[0] {
			other, ok := p[1][r]
			if !ok || diff == nil || other == nil {
				continue
			}
			if _, err := op(diff, other); err != nil {
				return d, fmt.Errorf("round %d: %w", r, err)
			}
		}
	}
	return d, nil
}

// NumActiveBits sums the active bits of every state difference.
func (d *Differential) NumActiveBits() int {
	n := 0
	for _, diff := range d.StateDifferences {
		if diff != nil {
			n += diff.NumActiveBits()
		}
	}
	return n
}

// Validate checks that every stored round lies within the trail's window.
func (d *Differential) Validate() error {
	if d.FromRound < 1 || d.ToRound < d.FromRound {
		return fmt.Errorf("%w: [%d,%d]", ErrInvalidWindow, d.FromRound, d.ToRound)
	}
	for _, r := range d.Rounds() {
		if err := d.checkRound(r); err != nil {
			return err
		}
	}
	return nil
}
