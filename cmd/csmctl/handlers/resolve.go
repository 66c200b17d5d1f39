package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/shastaops/csmgo/internal/xname"
)

// ResolveOptions configures the resolve command.
type ResolveOptions struct {
	GlobalOptions
	Expression string
	NIDs       bool // print node ID labels instead of xnames
}

// Resolve expands a target expression against the live inventory and
// prints one identifier per line.
func Resolve(ctx context.Context, out io.Writer, opts ResolveOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	set, err := c.resolver().Resolve(ctx, opts.Expression)
	if err != nil {
		return err
	}

	if !opts.NIDs {
		for _, id := range set.Strings() {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	// NID labels come from the inventory, not the identifier itself.
	comps, err := c.hsm().Components(ctx, componentFilterFor(set))
	if err != nil {
		return err
	}
	for _, comp := range comps {
		if comp.NID > 0 {
			fmt.Fprintln(out, xname.FormatNID(int64(comp.NID)))
		}
	}
	return nil
}
