// Command sable compiles functional IR programs to WebAssembly.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sable/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
