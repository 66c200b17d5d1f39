package handlers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shastaops/csmgo/internal/inventory"
)

// DescribeOptions configures the describe command.
type DescribeOptions struct {
	GlobalOptions
	Expression string
}

// Describe prints the merged backend view of every resolved node.
func Describe(ctx context.Context, out io.Writer, opts DescribeOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	targets, err := c.resolver().Resolve(ctx, opts.Expression)
	if err != nil {
		return err
	}

	agg := inventory.NewAggregator(c.hsm(), c.bos(), c.cfs(), inventory.WithLogger(c.log))
	details, err := agg.Details(ctx, targets)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "XNAME\tNID\tSTATE\tROLE\tENABLED\tCONFIG\tBOOT IMAGE")
	for _, d := range details {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			d.ID, d.NID, d.State, d.Role, d.Enabled, d.ConfigStatus, d.BootImage)
	}
	return w.Flush()
}
