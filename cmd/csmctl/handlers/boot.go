package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/shastaops/csmgo/internal/csm/bos"
	"github.com/shastaops/csmgo/internal/orchestrator"
)

// BootOptions configures the boot command.
type BootOptions struct {
	GlobalOptions
	Expression string
	Template   string
	Operation  string
}

// Boot runs a boot, reboot, or shutdown session across the resolved
// targets and waits for it to settle.
func Boot(ctx context.Context, out io.Writer, opts BootOptions) error {
	var op bos.SessionOperation
	switch opts.Operation {
	case "boot":
		op = bos.OperationBoot
	case "reboot":
		op = bos.OperationReboot
	case "shutdown":
		op = bos.OperationShutdown
	default:
		return fmt.Errorf("unknown boot operation %q (want boot, reboot, or shutdown)", opts.Operation)
	}

	c, err := connect(opts.GlobalOptions)
	if err != nil {
		return err
	}

	// Fail before submission when the template does not exist; the boot
	// service otherwise reports this per node, noisily.
	if _, err := c.bos().SessionTemplate(ctx, opts.Template); err != nil {
		return err
	}

	return runOperation(ctx, out, c, orchestrator.NewBootBackend(c.bos(), opts.Template, op), opts.Expression)
}
