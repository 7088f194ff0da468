package differential

import (
	"context"

	"github.com/hupe1980/biclique/bitvector"
)

// Request describes one trail to construct.
type Request struct {
	FromRound int
	ToRound   int

	// KeyDifference is the enumerated candidate.
	KeyDifference *bitvector.Vector

	// BaseKey is the first secret key; the second is BaseKey ^ KeyDifference.
	BaseKey *bitvector.Vector

	// PivotRound is the round whose state difference is fixed to zero:
	// FromRound-1 for forward trails, ToRound for backward trails.
	PivotRound int
}

// Builder constructs differential trails for a cipher.
//
// Implementations must be pure with respect to the request and safe for
// concurrent use: the search engine calls them from many goroutines at once.
type Builder interface {
	// ForwardDifferential builds the delta trail, propagating from the pivot
	// towards ToRound.
	ForwardDifferential(ctx context.Context, req Request) (*Differential, error)

	// BackwardDifferential builds the nabla trail, propagating from the pivot
	// towards FromRound-1.
	BackwardDifferential(ctx context.Context, req Request) (*Differential, error)
}

// BuilderFuncs adapts two functions to a Builder.
type BuilderFuncs struct {
	Forward  func(ctx context.Context, req Request) (*Differential, error)
	Backward func(ctx context.Context, req Request) (*Differential, error)
}

// ForwardDifferential implements Builder.
func (f BuilderFuncs) ForwardDifferential(ctx context.Context, req Request) (*Differential, error) {
	return f.Forward(ctx, req)
}

// BackwardDifferential implements Builder.
func (f BuilderFuncs) BackwardDifferential(ctx context.Context, req Request) (*Differential, error) {
	return f.Backward(ctx, req)
}
