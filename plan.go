package biclique

import (
	"fmt"

	"github.com/hupe1980/biclique/cipher"
	"github.com/hupe1980/biclique/enumerate"
)

// trailOverhead approximates the fixed cost of one trail: the struct, its
// three round maps and the slice headers of every difference.
const trailOverhead = 256

// Plan describes how a window's candidates are split into iterations so that
// the forward trails of one iteration fit into memory.
type Plan struct {
	Window             cipher.Window `json:"window"`
	NumDifferences     uint64        `json:"numDifferences"`
	BytesPerTrail      int64         `json:"bytesPerTrail"`
	BudgetBytes        int64         `json:"budgetBytes"`
	TrailsPerIteration uint64        `json:"trailsPerIteration"`
	Iterations         int           `json:"iterations"`
}

// IterationSize returns the number of delta candidates of iteration i.
func (p Plan) IterationSize(i int) uint64 {
	start := uint64(i) * p.TrailsPerIteration
	if i < 0 || start >= p.NumDifferences {
		return 0
	}
	return min(p.TrailsPerIteration, p.NumDifferences-start)
}

// BytesPerTrail estimates the memory of one trail over w: every round holds
// a key difference plus a state and an intermediate-state difference.
func BytesPerTrail(c cipher.Cipher, w cipher.Window) int64 {
	perRound := int64(c.KeySize() + 2*c.StateSize())
	return int64(w.NumRounds())*perRound + trailOverhead
}

// planIterations keeps 1/8 of headroom in reserve and fits as many trails as
// possible into the rest.
func planIterations(total uint64, bytesPerTrail, headroom int64) (Plan, error) {
	p := Plan{
		NumDifferences: total,
		BytesPerTrail:  bytesPerTrail,
		BudgetBytes:    headroom / 8 * 7,
	}
	if total == 0 {
		return p, nil
	}

	fit := uint64(0)
	if p.BudgetBytes > 0 && bytesPerTrail > 0 {
		fit = uint64(p.BudgetBytes / bytesPerTrail)
	}
	if fit == 0 {
		return p, fmt.Errorf("%w: budget %d bytes, trail %d bytes", ErrInsufficientMemory, p.BudgetBytes, bytesPerTrail)
	}

	p.TrailsPerIteration = min(fit, total)
	p.Iterations = int((total + p.TrailsPerIteration - 1) / p.TrailsPerIteration)
	return p, nil
}

// Plan validates w and computes its iteration plan against the current
// memory headroom.
func (s *Searcher) Plan(w cipher.Window) (Plan, error) {
	if err := cipher.ValidateWindow(s.cipher, w); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidWindow, err)
	}

	numBits := s.cipher.KeySize() * 8
	total, err := enumerate.NumCandidates(s.opts.dimension, numBits)
	if err != nil {
		return Plan{}, &ErrInvalidDimension{Dimension: s.opts.dimension, NumBits: numBits, cause: err}
	}

	headroom, err := s.rc.Headroom()
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInsufficientMemory, err)
	}

	p, err := planIterations(total, BytesPerTrail(s.cipher, w), headroom)
	p.Window = w
	return p, err
}
