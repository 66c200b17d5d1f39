package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// ConfigApply returns the command for configuration sessions.
//
// Example:
//
//	csmctl config-apply --configuration compute-config 'compute ! blue'
func ConfigApply() *cobra.Command {
	var configuration string

	cmd := &cobra.Command{
		Use:   "config-apply <expression>",
		Short: "Apply a configuration across the resolved nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ConfigApply(cmd.Context(), cmd.OutOrStdout(), handlers.ConfigApplyOptions{
				GlobalOptions: global,
				Expression:    args[0],
				Configuration: configuration,
			})
		},
	}

	cmd.Flags().StringVar(&configuration, "configuration", "", "Configuration name to apply")
	_ = cmd.MarkFlagRequired("configuration")

	return cmd
}
