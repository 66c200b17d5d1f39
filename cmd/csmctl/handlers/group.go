package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shastaops/csmgo/internal/csm/hsm"
)

// GroupListOptions configures the group list command.
type GroupListOptions struct {
	GlobalOptions
}

// GroupList prints every inventory group with its member count.
func GroupList(ctx context.Context, out io.Writer, opts GroupListOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	list, err := c.hsm().Groups(ctx)
	if err != nil {
		return err
	}
	for _, g := range list {
		fmt.Fprintf(out, "%s\t%d member(s)\t%s\n", g.Label, len(g.Members.IDs), g.Description)
	}
	return nil
}

// GroupShowOptions configures the group show command.
type GroupShowOptions struct {
	GlobalOptions
	Label string
}

// GroupShow prints one group's membership, one identifier per line.
func GroupShow(ctx context.Context, out io.Writer, opts GroupShowOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	g, err := c.hsm().Group(ctx, opts.Label)
	if err != nil {
		return err
	}
	for _, id := range g.Members.MemberSet().Strings() {
		fmt.Fprintln(out, id)
	}
	return nil
}

// GroupCreateOptions configures the group create command.
type GroupCreateOptions struct {
	GlobalOptions
	Label       string
	Description string
	Expression  string // optional initial membership
}

// GroupCreate registers a new group, optionally seeded from a target
// expression.
func GroupCreate(ctx context.Context, out io.Writer, opts GroupCreateOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	g := hsm.Group{Label: opts.Label, Description: opts.Description}
	if opts.Expression != "" {
		members, err := c.resolver().Resolve(ctx, opts.Expression)
		if err != nil {
			return err
		}
		g.Members.IDs = members.Strings()
	}

	if err := c.hsm().CreateGroup(ctx, g); err != nil {
		return err
	}
	fmt.Fprintf(out, "created group %s with %d member(s)\n", g.Label, len(g.Members.IDs))
	return nil
}

// GroupDeleteOptions configures the group delete command.
type GroupDeleteOptions struct {
	GlobalOptions
	Label string
}

// GroupDelete removes a group. Member components are unaffected.
func GroupDelete(ctx context.Context, out io.Writer, opts GroupDeleteOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}
	if err := c.hsm().DeleteGroup(ctx, opts.Label); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted group %s\n", opts.Label)
	return nil
}

// GroupMembersOptions configures the group add/remove commands.
type GroupMembersOptions struct {
	GlobalOptions
	Label      string
	Expression string
	Remove     bool
}

// GroupMembers adds or removes the resolved targets one by one; the
// inventory service has no bulk membership call.
func GroupMembers(ctx context.Context, out io.Writer, opts GroupMembersOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	set, err := c.resolver().Resolve(ctx, opts.Expression)
	if err != nil {
		return err
	}
	if set.IsEmpty() {
		return fmt.Errorf("expression %q matches no nodes", opts.Expression)
	}

	var failures []string
	for _, id := range set.Strings() {
		if opts.Remove {
			err = c.hsm().RemoveMember(ctx, opts.Label, id)
		} else {
			err = c.hsm().AddMember(ctx, opts.Label, id)
		}
		if err != nil {
			c.log.Info("membership change failed", "group", opts.Label, "node", id, "error", err)
			failures = append(failures, id)
		}
	}

	verb := "added"
	if opts.Remove {
		verb = "removed"
	}
	fmt.Fprintf(out, "%s %d of %d member(s)\n", verb, set.Len()-len(failures), set.Len())
	if len(failures) > 0 {
		return fmt.Errorf("failed for %s", strings.Join(failures, ", "))
	}
	return nil
}
