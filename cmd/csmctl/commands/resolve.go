package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Resolve returns the command for expanding target expressions.
//
// Examples:
//
//	csmctl resolve 'x1000c0s0b0n[0-3]'
//	csmctl resolve 'compute ! x9000*'
//	csmctl resolve --nids 'blue & green'
func Resolve() *cobra.Command {
	var nids bool

	cmd := &cobra.Command{
		Use:   "resolve <expression>",
		Short: "Expand a target expression to node identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Resolve(cmd.Context(), cmd.OutOrStdout(), handlers.ResolveOptions{
				GlobalOptions: global,
				Expression:    args[0],
				NIDs:          nids,
			})
		},
	}

	cmd.Flags().BoolVar(&nids, "nids", false, "Print node ID labels instead of xnames")

	return cmd
}
