package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/discogstools/internal/cli"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	root := cli.NewRootCmd(version, commit, buildDate)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, cli.ErrToolFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
