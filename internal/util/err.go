package util

import (
	"fmt"
	"io"
	"os"
)

var (
	errOut = io.Writer(os.Stderr)
	exit   = os.Exit
)

// CheckError reports err and exits. It is meant for command tree setup,
// before the root command's error handling is in place.
func CheckError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(errOut, "Error: %v\n", err)
	exit(1)
}
