// Package version reports the build identity of the extractd binary.
//
// Release builds stamp it via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/extractd/version.Version=1.4.0" ./cmd/extractd
//
// Unstamped builds fall back to the VCS settings Go records in the binary.
package version
