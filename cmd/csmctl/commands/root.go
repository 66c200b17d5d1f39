// Package commands defines the CLI command structure and flag bindings.
//
// Commands parse arguments and delegate execution to the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// global holds the persistent flag values shared by every command.
var global handlers.GlobalOptions

// Root returns the root command for the csmctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csmctl",
		Short: "Administer nodes of a Cray management plane",
		Long: `csmctl drives the management-plane services of an HPC system:
resolve target expressions against the hardware inventory, run power,
boot, and configuration operations across many nodes, attach to serial
consoles, and inspect boot images.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&global.ConfigPath, "config", "c", "", "Path to configuration file (default: environment only)")
	cmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(Resolve())
	cmd.AddCommand(Describe())
	cmd.AddCommand(Power())
	cmd.AddCommand(Boot())
	cmd.AddCommand(ConfigApply())
	cmd.AddCommand(Console())
	cmd.AddCommand(Group())
	cmd.AddCommand(Image())
	cmd.AddCommand(Version())

	return cmd
}
