package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/shastaops/csmgo/internal/console"
	"github.com/shastaops/csmgo/internal/csm/hsm"
	"github.com/shastaops/csmgo/internal/xname"
)

// ConsoleOptions configures the console command.
type ConsoleOptions struct {
	GlobalOptions
	Target string
}

// newStreamOpener is swappable in tests.
var newStreamOpener = func(kubeconfig string) (console.StreamOpener, error) {
	return console.NewKubeOpener(kubeconfig)
}

// Console attaches the terminal to one node's serial console. The target
// may be an xname or a nid label.
func Console(ctx context.Context, out io.Writer, opts ConsoleOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	node, err := resolveConsoleTarget(ctx, c, opts.Target)
	if err != nil {
		return err
	}

	opener, err := newStreamOpener(c.cfg.Kubeconfig)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "connecting to %s (escape: %s at line start)\n", node, console.DefaultEscape)
	bridge := console.NewBridge(opener, console.WithLogger(c.log))
	return bridge.Attach(ctx, node)
}

// resolveConsoleTarget maps a nid label to its xname via the inventory;
// xnames only need to parse as a node.
func resolveConsoleTarget(ctx context.Context, c *clients, target string) (string, error) {
	if xname.IsNID(target) {
		nid, err := xname.ParseNID(target)
		if err != nil {
			return "", err
		}
		comps, err := c.hsm().Components(ctx, hsm.ComponentFilter{Type: "Node"})
		if err != nil {
			return "", err
		}
		for _, comp := range comps {
			if int64(comp.NID) == nid {
				return comp.ID, nil
			}
		}
		return "", fmt.Errorf("no node with label %s in inventory", target)
	}

	x, err := xname.Parse(target)
	if err != nil {
		return "", err
	}
	if !x.IsNode() {
		return "", fmt.Errorf("%s is not a node identifier", target)
	}
	return x.String(), nil
}
