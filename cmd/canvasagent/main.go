package main

import (
	"os"

	"github.com/avasquez/canvasagent/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
