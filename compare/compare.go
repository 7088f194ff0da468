package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/biclique/differential"
)

// ErrUnknownGranularity is returned by ParseGranularity.
var ErrUnknownGranularity = errors.New("compare: unknown granularity")

// unitShift separates the round from the unit index in a bitmap position.
// A round may therefore hold up to 65536 units.
const unitShift = 16

// Comparator tests two trails for shared active non-linear operations.
//
// Implementations must be safe for concurrent use and must not mutate the
// trails.
type Comparator interface {
	ShareActiveNonLinearOperations(forward, backward *differential.Differential) (bool, error)
}

// Func adapts a plain function to the Comparator interface.
type Func func(forward, backward *differential.Differential) (bool, error)

// ShareActiveNonLinearOperations implements Comparator.
func (f Func) ShareActiveNonLinearOperations(forward, backward *differential.Differential) (bool, error) {
	return f(forward, backward)
}

// Granularity is the width of one non-linear component.
type Granularity int

const (
	// Bit treats every state bit as its own component.
	Bit Granularity = iota
	// Nibble matches 4-bit S-boxes.
	Nibble
	// Byte matches 8-bit S-boxes.
	Byte
)

func (g Granularity) String() string {
	switch g {
	case Bit:
		return "bit"
	case Nibble:
		return "nibble"
	case Byte:
		return "byte"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// ParseGranularity parses "bit", "nibble" or "byte".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "bit":
		return Bit, nil
	case "nibble":
		return Nibble, nil
	case "byte":
		return Byte, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// ActiveComponents is the default Comparator. It is stateless.
type ActiveComponents struct {
	granularity Granularity
}

var _ Comparator = (*ActiveComponents)(nil)

// NewActiveComponents creates a comparator for S-boxes of the given width.
func NewActiveComponents(g Granularity) *ActiveComponents {
	return &ActiveComponents{granularity: g}
}

// Granularity returns the component width.
func (c *ActiveComponents) Granularity() Granularity { return c.granularity }

// ShareActiveNonLinearOperations implements Comparator.
func (c *ActiveComponents) ShareActiveNonLinearOperations(forward, backward *differential.Differential) (bool, error) {
	if forward == nil || backward == nil {
		return false, errors.New("compare: nil trail")
	}
	if !forward.SameWindow(backward) {
		return false, fmt.Errorf("%w: [%d,%d] vs [%d,%d]", differential.ErrWindowMismatch,
			forward.FromRound, forward.ToRound, backward.FromRound, backward.ToRound)
	}

	fwd, err := c.ActiveSet(forward)
	if err != nil {
		return false, err
	}
	bwd, err := c.ActiveSet(backward)
	if err != nil {
		return false, err
	}
	return fwd.Intersects(bwd), nil
}

// ActiveSet returns the positions of every active component of the trail's
// intermediate state differences in rounds FromRound..ToRound. Rounds that
// carry no intermediate difference contribute nothing.
func (c *ActiveComponents) ActiveSet(d *differential.Differential) (*roaring.Bitmap, error) {
	set := roaring.New()
	for r := d.FromRound; r <= d.ToRound; r++ {
		diff, ok := d.IntermediateStateDifference(r)
		if !ok || diff.IsZero() {
			continue
		}
		if err := c.addUnits(set, r, diff.Bytes()); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (c *ActiveComponents) addUnits(set *roaring.Bitmap, round int, b []byte) error {
	base := uint32(round) << unitShift
	limit := len(b)
	switch c.granularity {
	case Bit:
		limit *= 8
	case Nibble:
		limit *= 2
	}
	if limit > 1<<unitShift {
		return fmt.Errorf("compare: %d components per round exceed %d", limit, 1<<unitShift)
	}

	for i, v := range b {
		if v == 0 {
			continue
		}
		switch c.granularity {
		case Byte:
			set.Add(base + uint32(i))
		case Nibble:
			if v&0xf0 != 0 {
				set.Add(base + uint32(2*i))
			}
			if v&0x0f != 0 {
				set.Add(base + uint32(2*i+1))
			}
		case Bit:
			for j := 0; j < 8; j++ {
				if v&(0x80>>j) != 0 {
					set.Add(base + uint32(8*i+j))
				}
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownGranularity, c.granularity)
		}
	}
	return nil
}
