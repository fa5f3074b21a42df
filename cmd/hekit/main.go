package main

import (
	"fmt"
	"os"

	"github.com/danmuck/hekit/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hekit: %v\n", err)
		os.Exit(1)
	}
}
