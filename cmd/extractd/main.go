// extractd runs batches of rows through a set of concurrent extractors.
//
// Usage:
//
//	extractd serve [--config path]
//	extractd run --rows N [--cancel-after 3s] [--config path]
//	extractd version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
