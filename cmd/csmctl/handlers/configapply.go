package handlers

import (
	"context"
	"io"

	"github.com/shastaops/csmgo/internal/orchestrator"
)

// ConfigApplyOptions configures the config apply command.
type ConfigApplyOptions struct {
	GlobalOptions
	Expression    string
	Configuration string
}

// ConfigApply runs a configuration session across the resolved targets and
// waits for it to settle.
func ConfigApply(ctx context.Context, out io.Writer, opts ConfigApplyOptions) error {
	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	// Same early check as boot: a missing configuration should fail the
	// command, not every node.
	if _, err := c.cfs().Configuration(ctx, opts.Configuration); err != nil {
		return err
	}

	return runOperation(ctx, out, c, orchestrator.NewConfigBackend(c.cfs(), opts.Configuration), opts.Expression)
}
