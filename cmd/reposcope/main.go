// Command reposcope browses remote GitHub repositories in the terminal.
package main

import (
	"os"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/cli"
)

func main() {
	cli.SetRuntimeFactory(newRuntime)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
