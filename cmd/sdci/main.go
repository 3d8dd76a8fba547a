// Command sdci builds and queries semi-dynamic compact q-gram indexes.
//
// Texts are read as characters of a configured alphabet; character i of the
// alphabet becomes symbol i. Snapshots live in a file or in a blob store
// selected by the YAML config.
//
//	sdci build --index genome.sdci reads/*.txt
//	sdci locate --index genome.sdci ACGTAC
//	sdci demo
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
