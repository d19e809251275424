// Command sizer finds the largest files in a directory tree and keeps a ranked log of them.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/idelchi/sizer/internal/cli"
)

// version is set at build time via ldflags.
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.New(version).Execute(ctx)

	stop()

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)

		os.Exit(1)
	}
}
