//go:build !linux && !darwin && !freebsd && !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(
		os.Stderr,
		"netwho is only supported on Linux, macOS, FreeBSD, and Windows.",
	)
	os.Exit(1)
}
