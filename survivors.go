package biclique

import (
	"math"
	"sync"

	"github.com/hupe1980/biclique/model"
)

// survivors holds the bicliques with the highest score seen so far.
//
// Offer compares and updates under one lock, so concurrent offers can never
// interleave between reading the maximum and replacing the set.
type survivors struct {
	mu       sync.Mutex
	maxScore int
	items    []*model.Biclique

	// limitOne rejects every offer once a biclique has been recorded.
	limitOne bool
}

func newSurvivors(limitOne bool) *survivors {
	return &survivors{maxScore: math.MinInt, limitOne: limitOne}
}

// Offer records b when its score reaches the current maximum. A higher score
// replaces the set; a tie extends it. Accepted bicliques are cloned.
func (s *survivors) Offer(b *model.Biclique, score int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limitOne && len(s.items) > 0 {
		return false
	}

	switch {
	case len(s.items) == 0 || score > s.maxScore:
		s.maxScore = score
		clear(s.items)
		s.items = append(s.items[:0], b.Clone())
	case score == s.maxScore:
		s.items = append(s.items, b.Clone())
	default:
		return false
	}
	return true
}

// Snapshot returns a copy of the survivor list and the maximum score.
// The score is 0 when nothing survived.
func (s *survivors) Snapshot() ([]*model.Biclique, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil, 0
	}
	out := make([]*model.Biclique, len(s.items))
	copy(out, s.items)
	return out, s.maxScore
}

// Len returns the number of survivors.
func (s *survivors) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
