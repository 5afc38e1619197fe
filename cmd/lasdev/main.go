package main

import (
	"fmt"
	"os"

	"github.com/danmuck/lasdev/internal/logging"
)

func main() {
	logging.ConfigureRuntime()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lasdev: %v\n", err)
		os.Exit(1)
	}
}
