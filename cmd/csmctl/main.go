// Package main is the entry point for the csmctl CLI.
//
// csmctl administers the nodes of a Cray system through its
// management-plane services: hardware inventory, power control, boot
// orchestration, node configuration, images, and serial consoles.
//
// For detailed usage information, run:
//
//	csmctl --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shastaops/csmgo/cmd/csmctl/commands"
)

// Version information set by the release pipeline at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
