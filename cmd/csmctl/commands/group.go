package commands

import (
	"github.com/spf13/cobra"

	"github.com/shastaops/csmgo/cmd/csmctl/handlers"
)

// Group returns the parent command for inventory group management.
func Group() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage inventory groups",
	}
	cmd.AddCommand(groupList())
	cmd.AddCommand(groupShow())
	cmd.AddCommand(groupCreate())
	cmd.AddCommand(groupDelete())
	cmd.AddCommand(groupAdd())
	cmd.AddCommand(groupRemove())
	return cmd
}

func groupList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.GroupList(cmd.Context(), cmd.OutOrStdout(), handlers.GroupListOptions{GlobalOptions: global})
		},
	}
}

func groupShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <label>",
		Short: "Print a group's node members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.GroupShow(cmd.Context(), cmd.OutOrStdout(), handlers.GroupShowOptions{
				GlobalOptions: global,
				Label:         args[0],
			})
		},
	}
}

func groupCreate() *cobra.Command {
	var description, members string

	cmd := &cobra.Command{
		Use:   "create <label>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.GroupCreate(cmd.Context(), cmd.OutOrStdout(), handlers.GroupCreateOptions{
				GlobalOptions: global,
				Label:         args[0],
				Description:   description,
				Expression:    members,
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Group description")
	cmd.Flags().StringVar(&members, "members", "", "Target expression for the initial membership")

	return cmd
}

func groupDelete() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <label>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.GroupDelete(cmd.Context(), cmd.OutOrStdout(), handlers.GroupDeleteOptions{
				GlobalOptions: global,
				Label:         args[0],
			})
		},
	}
}

func groupAdd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <label> <expression>",
		Short: "Add the resolved nodes to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.GroupMembers(cmd.Context(), cmd.OutOrStdout(), handlers.GroupMembersOptions{
				GlobalOptions: global,
				Label:         args[0],
				Expression:    args[1],
			})
		},
	}
}

func groupRemove() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <label> <expression>",
		Short: "Remove the resolved nodes from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.GroupMembers(cmd.Context(), cmd.OutOrStdout(), handlers.GroupMembersOptions{
				GlobalOptions: global,
				Label:         args[0],
				Expression:    args[1],
				Remove:        true,
			})
		},
	}
}
