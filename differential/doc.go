// Package differential defines differences and differential trails.
//
// A Difference is a bit vector read as the XOR of two states. A Differential
// records, per cipher round, the state difference after the round, the
// intermediate difference before key injection and the round-key difference,
// together with the two secret keys that produced the trail.
//
// Differences are stored in maps keyed by round number. A trail loaded from
// its persisted form is therefore complete as-is; no positional reconciliation
// against cipher metadata is needed.
//
// Trails are built by a Builder (one call per key-difference candidate) and
// treated as read-only afterwards, except for the Xor/And/Or combinators used
// by rating strategies on clones.
package differential
