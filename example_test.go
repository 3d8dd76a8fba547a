package sdci_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/hupe1980/sdci"
	"github.com/hupe1980/sdci/blobstore"
	"github.com/hupe1980/sdci/persistence"
)

// encode maps the letters a, b, c, d to the symbols 0, 1, 2, 3.
func encode(s string) []uint64 {
	out := make([]uint64, len(s))
	for i := range len(s) {
		out[i] = uint64(s[i] - 'a')
	}
	return out
}

// Example demonstrates indexing a text, querying it, and appending to it.
func Example() {
	ix, err := sdci.New(4, 6, 3)
	if err != nil {
		log.Fatal(err)
	}

	if err := ix.Append(encode("abcadccbacbcabcadb")); err != nil {
		log.Fatal(err)
	}
	pos, _ := ix.Locate(encode("bca"))
	slices.Sort(pos)
	fmt.Println(pos)

	if err := ix.Append(encode("caddacbd")); err != nil {
		log.Fatal(err)
	}
	pos, _ = ix.Locate(encode("bca"))
	slices.Sort(pos)
	fmt.Println(pos)
	// Output:
	// [1 10 13]
	// [1 10 13 17]
}

// ExampleIndex_LocateBitmap shows ordered occurrence sets.
func ExampleIndex_LocateBitmap() {
	ix, _ := sdci.New(4, 6, 3)
	_ = ix.Append(encode("abcadccbacbcabcadb"))

	bm, err := ix.LocateBitmap(encode("a"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(bm.ToArray())
	// Output: [0 3 8 12 15]
}

// ExampleIndex_Extract reconstructs parts of the text from the index.
func ExampleIndex_Extract() {
	ix, _ := sdci.New(4, 6, 3)
	_ = ix.Append(encode("abcadccbacbcabcadb"))

	fmt.Println(ix.Extract(4, 5))
	fmt.Println(len(ix.Retrieve()))
	// Output:
	// [3 2 2 1 0]
	// 18
}

// ExampleIndex_MaxPatternLen shows the pattern length limit.
func ExampleIndex_MaxPatternLen() {
	ix, _ := sdci.New(4, 6, 3)
	_ = ix.Append(encode("abcadccbacbcabcadb"))

	_, err := ix.Locate(encode("abcad"))
	fmt.Println(ix.MaxPatternLen(), err)
	// Output: 4 length error: the pattern length must not exceed 4
}

// ExampleIndex_WriteTo demonstrates snapshot round trips.
func ExampleIndex_WriteTo() {
	ix, _ := sdci.New(4, 6, 3)
	_ = ix.Append(encode("abcadccbacbcabcadb"))

	var buf bytes.Buffer
	if _, err := ix.WriteTo(&buf); err != nil {
		log.Fatal(err)
	}

	var loaded sdci.Index
	if _, err := loaded.ReadFrom(&buf); err != nil {
		log.Fatal(err)
	}
	n, _ := loaded.Count(encode("bca"))
	fmt.Println(loaded.Len(), n)
	// Output: 18 3
}

// ExampleIndex_SaveBlob stores a compressed snapshot in a blob store.
func ExampleIndex_SaveBlob() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	ix, _ := sdci.New(4, 6, 3)
	_ = ix.Append(encode("abcadccbacbcabcadb"))
	if err := ix.SaveBlob(ctx, store, "demo.sdci", sdci.WithCompression(persistence.CompressionZstd)); err != nil {
		log.Fatal(err)
	}

	var loaded sdci.Index
	if err := loaded.LoadBlob(ctx, store, "demo.sdci"); err != nil {
		log.Fatal(err)
	}
	fmt.Println(loaded.Len())
	// Output: 18
}

// ExampleWithMetricsCollector demonstrates in-memory metrics.
func ExampleWithMetricsCollector() {
	metrics := &sdci.BasicMetricsCollector{}
	ix, _ := sdci.New(4, 6, 3, sdci.WithMetricsCollector(metrics))
	_ = ix.Append(encode("abcadccbacbcabcadb"))
	_, _ = ix.Count(encode("bca"))

	stats := metrics.GetStats()
	fmt.Println(stats.AppendSymbols, stats.LocateCount, stats.LocateMatches)
	// Output: 18 1 3
}
