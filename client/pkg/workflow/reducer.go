package workflow

import "time"

// fold applies one decoded event to the run state, in arrival order, and
// reports whether the event terminated the run.
//
// Progress handling: an explicit progress value always wins and is stored
// exactly as received, even when out of range or lower than the current value.
// The server is trusted; regressions are not smoothed. Without an explicit
// value, known steps fall back to the default table.
func fold(state *RunState, ev Event, now time.Time) bool {
	if ev.SessionID != "" {
		state.SessionID = ev.SessionID
	}
	if ev.Step != "" {
		state.CurrentStep = ev.Step
	}
	if ev.Message != "" {
		state.StatusMessage = ev.Message
	}
	if ev.Progress != nil {
		state.Progress = *ev.Progress
	}

	// Only events carrying both a step and a message are recorded in history.
	if ev.Step != "" && ev.Message != "" {
		rec := ev
		if rec.Timestamp == "" {
			rec.Timestamp = now.UTC().Format(time.RFC3339)
		}
		if rec.Status == "" {
			rec.Status = "running"
		}
		state.History = append(state.History, rec)
	}

	switch ev.Step {
	case StepWorkflowComplete:
		state.Progress = 100
		state.Phase = PhaseCompleted
		state.StatusMessage = msgCompleted
		if ev.Data != nil {
			state.Result = ev.Data
		}
		return true

	case StepWorkflowError:
		state.Phase = PhaseErrored
		state.LastError = ev.Message
		if state.LastError == "" {
			state.LastError = msgDefaultError
		}
		state.StatusMessage = msgFailed
		return true

	default:
		if ev.Progress == nil {
			if p, known := defaultProgress[ev.Step]; known {
				state.Progress = p
			}
		}
	}

	return false
}
