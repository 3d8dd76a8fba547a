// Package sdci provides a semi-dynamic compact q-gram index for Go.
//
// An Index stores a text over an integer alphabet [0, sigma) in a compressed
// form that answers substring queries and reconstructs the text, while new
// symbols can be appended at any time. Only every k-th q-gram position is
// sampled; the remaining occurrences are recovered by following reverse
// edges between q-grams, so memory stays close to the sampled positions plus
// a few bits per distinct q-gram.
//
// # Quick Start
//
//	ix, _ := sdci.New(4, 6, 3) // sigma=4, q=6, k=3
//	_ = ix.Append([]uint64{0, 1, 2, 0, 3, 2, 2, 1})
//
//	positions, _ := ix.Locate([]uint64{1, 2}) // unordered start positions
//	bm, _ := ix.LocateBitmap([]uint64{1, 2})  // ordered roaring64 set
//	n, _ := ix.Count([]uint64{1, 2})
//
//	text := ix.Retrieve()
//	part := ix.Extract(2, 4)
//
// # Parameters
//
// sigma is the alphabet size, q the q-gram length and k the sampling stride
// (1 <= k <= q). Patterns of up to MaxPatternLen = q-k+1 symbols can be
// located. Larger k samples fewer positions and saves memory; smaller k
// allows longer patterns. The q-gram space sigma^q must fit in memory as a
// bitmap plus two packed edge arrays.
//
// A zero value Index, or one created with any zero parameter, is empty:
// it reports no occurrences and rejects appended text with ErrNotInitialized.
//
// # Errors
//
// Errors are classified by sentinels usable with errors.Is:
//
//   - ErrInvalidArgument: bad parameters or an out-of-alphabet symbol
//     (*InvalidSymbolError carries the offending value)
//   - ErrLength: a pattern longer than MaxPatternLen (*PatternLengthError)
//   - ErrOverflow: the q-gram space or a capacity does not fit in uint64
//   - ErrFormat: a truncated, foreign or inconsistent snapshot
//   - ErrIO: an unusable stream, file or blob
//
// Mutators that fail part way reset the index to empty parameters rather
// than leaving it half updated. Append checks every symbol first, so an
// invalid symbol leaves the index untouched.
//
// # Persistence
//
// Snapshots use a fixed little-endian layout and may be wrapped in an LZ4 or
// Zstd frame, which loading detects automatically:
//
//	_ = ix.SaveFile("text.sdci", sdci.WithCompression(persistence.CompressionZstd))
//	_ = ix.LoadFile("text.sdci") // memory-mapped
//
//	store := s3.NewStore(client, "bucket", "snapshots/")
//	_ = ix.SaveBlob(ctx, store, "text.sdci")
//	_ = ix.LoadBlob(ctx, store, "text.sdci")
//
// # Observability
//
// WithLogger attaches a slog-based Logger for lifecycle events and
// WithMetricsCollector a MetricsCollector; see package
// metrics/promcollector for a Prometheus adapter.
//
// # Concurrency
//
// An Index is not safe for concurrent mutation. Concurrent queries are safe
// as long as no goroutine appends, clears or loads at the same time.
package sdci
