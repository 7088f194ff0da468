package rating

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/hupe1980/biclique/differential"
	"github.com/hupe1980/biclique/model"
)

// ErrUnknownRater is returned by ByName.
var ErrUnknownRater = errors.New("rating: unknown rater")

// Rater scores a completed biclique.
type Rater interface {
	Score(b *model.Biclique) int
}

// Func adapts a plain function to the Rater interface.
type Func func(b *model.Biclique) int

// Score implements Rater.
func (f Func) Score(b *model.Biclique) int { return f(b) }

// Default scores a biclique as (bits of the forward trail's starting state)
// minus (data complexity). Data complexity is the number of active bits of the
// plaintext-side difference when the window starts at round 1, and of the
// ciphertext-side difference otherwise.
type Default struct{}

var _ Rater = Default{}

// Score implements Rater.
func (Default) Score(b *model.Biclique) int {
	start, ok := b.DeltaDifferential.StateDifference(b.FromRound() - 1)
	if !ok {
		return -DataComplexity(b)
	}
	return start.NumBits() - DataComplexity(b)
}

// DataComplexity returns the active bits of the union of both trails'
// differences at the attacker-visible boundary.
func DataComplexity(b *model.Biclique) int {
	round := b.ToRound()
	if b.FromRound() == 1 {
		round = 0
	}
	delta, _ := b.DeltaDifferential.StateDifference(round)
	nabla, _ := b.NablaDifferential.StateDifference(round)
	return unionActiveBits(delta, nabla)
}

func unionActiveBits(a, b *differential.Difference) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return b.NumActiveBits()
	case b == nil:
		return a.NumActiveBits()
	}
	u, err := a.Clone().Or(b)
	if err != nil {
		// Differently sized boundaries: count each side on its own.
		return a.NumActiveBits() + b.NumActiveBits()
	}
	return u.NumActiveBits()
}

// ActiveBytePenalty subtracts Penalty for every active byte that lies in one
// of the configured rows or columns of a column-major byte-matrix state with
// NumRows rows, as used by AES-like ciphers. State differences of both
// trails in rounds FromRound..ToRound are inspected.
type ActiveBytePenalty struct {
	NumRows int
	Rows    []int
	Columns []int
	Penalty int
}

var _ Rater = ActiveBytePenalty{}

// Score implements Rater.
func (p ActiveBytePenalty) Score(b *model.Biclique) int {
	return Default{}.Score(b) - p.Penalty*p.count(b)
}

func (p ActiveBytePenalty) count(b *model.Biclique) int {
	if p.NumRows <= 0 {
		return 0
	}
	n := 0
	for _, trail := range []*differential.Differential{b.DeltaDifferential, b.NablaDifferential} {
		for r := trail.FromRound; r <= trail.ToRound; r++ {
			diff, ok := trail.StateDifference(r)
			if !ok {
				continue
			}
			for i, v := range diff.Bytes() {
				if v == 0 {
					continue
				}
				if slices.Contains(p.Rows, i%p.NumRows) || slices.Contains(p.Columns, i/p.NumRows) {
					n++
				}
			}
		}
	}
	return n
}

// SharedKeyNibblePenalty subtracts Penalty for every nibble that is active in
// the key differences of both trails in the same round. Each shared nibble
// multiplies the key pairs one biclique has to cover.
type SharedKeyNibblePenalty struct {
	Penalty int
}

var _ Rater = SharedKeyNibblePenalty{}

// Score implements Rater.
func (p SharedKeyNibblePenalty) Score(b *model.Biclique) int {
	shared := 0
	for r, kd := range b.DeltaDifferential.KeyDifferences {
		other, ok := b.NablaDifferential.KeyDifferenceAt(r)
		if !ok {
			continue
		}
		both, err := kd.Clone().And(other)
		if err != nil {
			continue
		}
		shared += both.NumActiveNibbles()
	}
	return Default{}.Score(b) - p.Penalty*shared
}

// Chain combines raters: the result is the Default score plus the sum of each
// rater's deviation from it.
func Chain(raters ...Rater) Rater {
	return Func(func(b *model.Biclique) int {
		base := Default{}.Score(b)
		score := base
		for _, r := range raters {
			score += r.Score(b) - base
		}
		return score
	})
}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Rater{
		"default": func() Rater { return Default{} },
		"active-bytes": func() Rater {
			return ActiveBytePenalty{NumRows: 4, Rows: []int{0}, Penalty: 1}
		},
		"shared-key-nibbles": func() Rater { return SharedKeyNibblePenalty{Penalty: 1} },
	}
)

// Register adds or replaces a named rater constructor.
func Register(name string, fn func() Rater) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ByName returns the registered rater called name.
func ByName(name string) (Rater, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRater, name)
	}
	return fn(), nil
}

// Names returns the registered rater names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
