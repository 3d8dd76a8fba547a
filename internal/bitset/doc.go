// Package bitset provides a hierarchical 64-ary bitmap over a fixed range of
// integers with logarithmic successor and predecessor queries.
//
// Layout:
//   - Level 0 holds one bit per integer in [0, width)
//   - Level i+1 holds one bit per word of level i, set iff that word is non-zero
//   - Levels are stacked until a level fits in a single word
//
// All levels share one contiguous word slice; offsets mark where each level starts.
// Successor and predecessor climb until a residual word is non-zero and then
// descend along the lowest (or highest) set bit, touching O(log64 width) words.
//
// Used by the index to track which q-gram encodings have appeared.
package bitset
