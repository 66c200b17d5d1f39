package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Describe returns the command for printing merged node details.
//
// Example:
//
//	csmctl describe 'x1000c0s0b0n[0-3]'
func Describe() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <expression>",
		Short: "Show hardware, boot, and configuration state of the resolved nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Describe(cmd.Context(), cmd.OutOrStdout(), handlers.DescribeOptions{
				GlobalOptions: global,
				Expression:    args[0],
			})
		},
	}
}
