// Package testutil provides testing utilities for sdci.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random symbol texts, picking
// patterns, and computing exact occurrence sets by brute force.
//
// # Random Text Generation
//
//	rng := testutil.NewRNG(seed)
//	text := rng.Text(1000, 4)          // uniform over [0, 4)
//	skew := rng.ZipfText(1000, 4, 1.5) // power-law symbol frequencies
//
// # Exact Locate (Ground Truth)
//
//	want := testutil.NaiveLocate(text, pattern)
package testutil
