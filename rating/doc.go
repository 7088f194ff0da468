// Package rating scores bicliques. Higher scores are better.
//
// Default scores a biclique by the bits of its starting state minus its data
// complexity. The structural raters subtract penalties from that base and can
// be combined with Chain. All raters are pure and never mutate the biclique.
package rating
