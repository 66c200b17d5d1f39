package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Power returns the command for power transitions.
//
// Examples:
//
//	csmctl power on 'x1000c0s0b0n[0-3]'
//	csmctl power force-off 'compute ! blue'
func Power() *cobra.Command {
	var deadlineMinutes int

	cmd := &cobra.Command{
		Use:   "power <operation> <expression>",
		Short: "Run a power operation across the resolved nodes",
		Long: `Run a power operation across every node the expression resolves to
and wait for it to settle.

Operations: on, off, soft-off, soft-restart, hard-restart, init, force-off.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Power(cmd.Context(), cmd.OutOrStdout(), handlers.PowerOptions{
				GlobalOptions:   global,
				Operation:       args[0],
				Expression:      args[1],
				DeadlineMinutes: deadlineMinutes,
			})
		},
	}

	cmd.Flags().IntVar(&deadlineMinutes, "task-deadline", 0, "Per-node deadline in minutes enforced by the power service (0 = service default)")

	return cmd
}
