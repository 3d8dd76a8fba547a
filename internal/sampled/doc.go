// Package sampled implements the per-key position buckets of the index.
//
// Each key owns a singly linked bucket of nodes, most recent first. Nodes
// are numbered in allocation order, so following a bucket always visits
// strictly decreasing node numbers. Links are stored off by one in two
// packed arrays of a shared bit width, where 0 terminates a bucket.
package sampled
