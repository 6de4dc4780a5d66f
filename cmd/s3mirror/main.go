// Command s3mirror bulk-downloads trees of S3 objects into a local
// directory, skipping anything already present.
package main

import (
	"fmt"
	"os"
)

// Exit codes. Individual fetch failures are reported in the run
// summary but still exit zero; only configuration and listing errors
// are fatal.
const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		return exitError
	}
	return exitSuccess
}
