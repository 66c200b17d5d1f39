package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Boot returns the command for boot sessions.
//
// Examples:
//
//	csmctl boot reboot --template compute-2.4 'x1000c0*'
//	csmctl boot shutdown --template compute-2.4 blue
func Boot() *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "boot <operation> <expression>",
		Short: "Run a boot session across the resolved nodes",
		Long: `Start a boot session from a session template across every node the
expression resolves to and wait for it to settle.

Operations: boot, reboot, shutdown.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Boot(cmd.Context(), cmd.OutOrStdout(), handlers.BootOptions{
				GlobalOptions: global,
				Operation:     args[0],
				Expression:    args[1],
				Template:      template,
			})
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Session template name")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}
