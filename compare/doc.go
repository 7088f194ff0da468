// Package compare decides whether a forward and a backward differential trail
// are independent, that is, whether they share no active non-linear
// components inside the search window.
//
// The default Comparator, ActiveComponents, records every active S-box input
// of a trail as a position in a roaring bitmap keyed by round and unit index.
// Two trails are independent when their bitmaps do not intersect.
//
// # Usage
//
//	cmp := compare.NewActiveComponents(compare.Nibble)
//	shared, err := cmp.ShareActiveNonLinearOperations(forward, backward)
//	if err == nil && !shared {
//	    // forward and backward form a biclique
//	}
package compare
