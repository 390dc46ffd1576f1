//go:build darwin

package main

import "github.com/nullkey/keyflow/internal/matrix"

// CoreGraphics event taps require the registering/polling calls to run on
// the process's first OS thread.
func main() {
	matrix.RunOnMainThread(run)
}
