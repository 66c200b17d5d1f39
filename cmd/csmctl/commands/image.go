package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Image returns the parent command for boot image inspection.
func Image() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Inspect registered boot images",
	}
	cmd.AddCommand(imageList())
	cmd.AddCommand(imageFetch())
	return cmd
}

func imageList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ImageList(cmd.Context(), cmd.OutOrStdout(), handlers.ImageListOptions{GlobalOptions: global})
		},
	}
}

func imageFetch() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <id|name>",
		Short: "Download an image's manifest from the object store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.ImageFetch(cmd.Context(), cmd.OutOrStdout(), handlers.ImageFetchOptions{
				GlobalOptions: global,
				Image:         args[0],
				Output:        output,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Destination file (\"-\" for stdout)")

	return cmd
}
