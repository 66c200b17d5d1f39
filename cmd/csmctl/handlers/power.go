package handlers

import (
	"context"
	"io"

	"github.com/shastaops/csmgo/internal/csm/pcs"
	"github.com/shastaops/csmgo/internal/orchestrator"
)

// PowerOptions configures the power command.
type PowerOptions struct {
	GlobalOptions
	Expression      string
	Operation       string
	DeadlineMinutes int
}

// Power runs a power transition across the resolved targets and waits for
// it to settle.
func Power(ctx context.Context, out io.Writer, opts PowerOptions) error {
	op, err := pcs.ParseOperation(opts.Operation)
	if err != nil {
		return err
	}

	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	backend := orchestrator.NewPowerBackend(c.pcs(), op)
	backend.DeadlineMinutes = opts.DeadlineMinutes
	return runOperation(ctx, out, c, backend, opts.Expression)
}
