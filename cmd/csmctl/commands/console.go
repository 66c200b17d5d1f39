package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Console returns the command for attaching to a node's serial console.
//
// Examples:
//
//	csmctl console x1000c0s0b0n0
//	csmctl console nid000001
func Console() *cobra.Command {
	return &cobra.Command{
		Use:   "console <xname|nid>",
		Short: "Attach to a node's serial console",
		Long: `Attach the terminal to a node's serial console. Type "&." at the
start of a line to detach.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Console(cmd.Context(), cmd.OutOrStdout(), handlers.ConsoleOptions{
				GlobalOptions: global,
				Target:        args[0],
			})
		},
	}
}
