// Package main is the entry point for the TuneStream player.
//
// Build:
//
//	go build -o build/tunestream ./cmd/tunestream
//
// Run:
//
//	./build/tunestream                 # desktop player
//	./build/tunestream play "lofi"     # headless
//	./build/tunestream download <ref>  # save a track
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
