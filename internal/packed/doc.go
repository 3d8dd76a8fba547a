// Package packed provides a fixed-bit-width integer array.
//
// Elements are stored back to back across 64-bit words, so an array of n
// values of width w occupies ceil(n*w/64) words. Values are masked to the
// configured width on write; a write never disturbs neighbouring elements.
//
// The array is not safe for concurrent mutation.
package packed
