package console

import (
	"context"
	"fmt"

	"github.com/copperline/console/client/pkg/workflow"
)

// RunWorkflow starts a streaming lead generation run and renders progress
// until it finishes. Cancelling ctx (Ctrl-C) aborts the run.
func (c *Console) RunWorkflow(ctx context.Context, req workflow.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	updates := make(chan workflow.RunState, 64)
	push := func(state workflow.RunState) {
		for {
			select {
			case updates <- state:
				return
			default:
				// Drop the oldest snapshot so a slow terminal never
				// stalls the stream.
				select {
				case <-updates:
				default:
				}
			}
		}
	}

	sc := workflow.NewStreamClient(c.baseURL, c.log, workflow.WithOnUpdate(push))
	if err := sc.Start(ctx, req); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Running workflow for %s\n", req.City)

	var lastLine string
	for {
		select {
		case <-ctx.Done():
			sc.Cancel()
			fmt.Fprintln(c.out, "\nWorkflow cancelled")
			return nil
		case state := <-updates:
			line := fmt.Sprintf("[%3d%%] %-20s %s", state.Progress, state.CurrentStep, state.StatusMessage)
			if line != lastLine {
				fmt.Fprintln(c.out, line)
				lastLine = line
			}

			switch state.Phase {
			case workflow.PhaseCompleted:
				fmt.Fprintln(c.out, "\nWorkflow completed")
				if state.SessionID != "" {
					fmt.Fprintf(c.out, "Session: %s\n", state.SessionID)
				}
				if leads, ok := state.Result["leads_found"]; ok {
					fmt.Fprintf(c.out, "Leads found: %v\n", leads)
				}
				return nil
			case workflow.PhaseErrored:
				return fmt.Errorf("workflow failed: %s", state.LastError)
			}
		}
	}
}
