package main

import (
	"fmt"
	"os"

	"github.com/roach88/primops/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "primops: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
