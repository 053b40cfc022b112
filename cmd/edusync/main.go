// Command edusync is a demo harness over the offline-first
// synchronization core: create local progress, run sync cycles, and
// inject synthetic conflicts against an in-process mock remote.
package main

import (
	"fmt"
	"os"

	"github.com/mohamed352/edu-sync-core/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
