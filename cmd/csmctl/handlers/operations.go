package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shastaops/csmgo/internal/csm/hsm"
	"github.com/shastaops/csmgo/internal/nodeset"
	"github.com/shastaops/csmgo/internal/orchestrator"
)

func componentFilterFor(set nodeset.Set) hsm.ComponentFilter {
	return hsm.ComponentFilter{IDs: set.Strings(), Type: "Node"}
}

// runOperation is the shared drive loop of the power, boot, and config
// commands: resolve targets, submit, poll to completion, print the report.
func runOperation(ctx context.Context, out io.Writer, c *clients, backend orchestrator.Backend, expression string) error {
	targets, err := c.resolver().Resolve(ctx, expression)
	if err != nil {
		return err
	}
	if targets.IsEmpty() {
		return fmt.Errorf("expression %q matches no nodes", expression)
	}
	fmt.Fprintf(out, "%s: %d target node(s)\n", backend.Name(), targets.Len())

	orch := orchestrator.New(c.cfg.Tuning, orchestrator.WithLogger(c.log))
	session, err := orch.Submit(ctx, backend, targets)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "submitted as %s\n", session.JobID())

	report, err := session.Run(ctx)
	printReport(out, report)
	if err != nil {
		return err
	}

	switch report.Outcome {
	case orchestrator.OutcomeCompleted:
		return nil
	default:
		return fmt.Errorf("operation %s: %s", report.JobID, report.Outcome)
	}
}

func printReport(out io.Writer, report orchestrator.Report) {
	fmt.Fprintf(out, "outcome: %s (%s elapsed)\n",
		report.Outcome, report.Finished.Sub(report.Started).Round(time.Millisecond))
	for _, id := range report.Succeeded() {
		fmt.Fprintf(out, "  %s  succeeded\n", id)
	}
	for _, id := range report.Failed() {
		fmt.Fprintf(out, "  %s  failed: %s\n", id, report.Statuses[id].Reason)
	}
	for _, id := range report.TimedOut() {
		fmt.Fprintf(out, "  %s  timed out\n", id)
	}
}
