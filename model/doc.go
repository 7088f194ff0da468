// Package model defines the Biclique, the result type of the search engine.
//
// A Biclique pairs a forward ("delta") and a backward ("nabla") differential
// trail over the same round window of one cipher. It is created only after
// the pair passed the independence test and is immutable afterwards; the
// field names form the persistence surface used by the archive package.
package model
