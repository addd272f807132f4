package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func runningState() *RunState {
	return &RunState{Phase: PhaseRunning, StatusMessage: msgStarting, History: []Event{}}
}

func TestConsole_Workflow_Fold_DefaultProgressTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step string
		want int
	}{
		{StepInitializing, 0},
		{StepLeadDiscovery, 20},
		{StepWaitForUpload, 40},
		{StepRetrieveLeads, 60},
		{StepSDRProcessing, 80},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.step, func(t *testing.T) {
			t.Parallel()

			state := runningState()
			done := fold(state, Event{Step: tt.step}, time.Now())

			assert.False(t, done)
			assert.Equal(t, tt.want, state.Progress)
			assert.Equal(t, tt.step, state.CurrentStep)
		})
	}
}

func TestConsole_Workflow_Fold_ExplicitProgressWins(t *testing.T) {
	t.Parallel()

	state := runningState()
	fold(state, Event{Step: StepLeadDiscovery, Progress: intp(55)}, time.Now())

	assert.Equal(t, 55, state.Progress)
}

func TestConsole_Workflow_Fold_OutOfRangeProgressPassedThrough(t *testing.T) {
	t.Parallel()

	// The server is trusted: out-of-range and regressing values are stored
	// exactly as received.
	state := runningState()
	fold(state, Event{Progress: intp(150)}, time.Now())
	assert.Equal(t, 150, state.Progress)

	fold(state, Event{Progress: intp(-5)}, time.Now())
	assert.Equal(t, -5, state.Progress)
}

func TestConsole_Workflow_Fold_UnknownStepKeepsProgress(t *testing.T) {
	t.Parallel()

	state := runningState()
	state.Progress = 42
	done := fold(state, Event{Step: "enriching", Message: "Enriching leads"}, time.Now())

	assert.False(t, done)
	assert.Equal(t, 42, state.Progress)
	assert.Equal(t, "enriching", state.CurrentStep)
	assert.Len(t, state.History, 1)
}

func TestConsole_Workflow_Fold_SessionIDSticky(t *testing.T) {
	t.Parallel()

	state := runningState()
	fold(state, Event{Step: StepInitializing, Message: "init", SessionID: "S1"}, time.Now())
	require.Equal(t, "S1", state.SessionID)

	fold(state, Event{Step: StepLeadDiscovery, Message: "searching"}, time.Now())
	assert.Equal(t, "S1", state.SessionID)
}

func TestConsole_Workflow_Fold_HistoryRequiresStepAndMessage(t *testing.T) {
	t.Parallel()

	state := runningState()
	fold(state, Event{Step: StepInitializing}, time.Now())
	fold(state, Event{Message: "no step"}, time.Now())
	assert.Empty(t, state.History)

	fold(state, Event{Step: StepInitializing, Message: "init"}, time.Now())
	assert.Len(t, state.History, 1)
}

func TestConsole_Workflow_Fold_HistoryDefaultsTimestampAndStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	state := runningState()
	fold(state, Event{Step: StepInitializing, Message: "init"}, now)

	require.Len(t, state.History, 1)
	assert.Equal(t, "2026-03-14T09:30:00Z", state.History[0].Timestamp)
	assert.Equal(t, "running", state.History[0].Status)
}

func TestConsole_Workflow_Fold_HistoryKeepsServerTimestampAndStatus(t *testing.T) {
	t.Parallel()

	state := runningState()
	fold(state, Event{
		Step:      StepLeadDiscovery,
		Message:   "searching",
		Timestamp: "2026-01-01T00:00:00Z",
		Status:    "pending",
	}, time.Now())

	require.Len(t, state.History, 1)
	assert.Equal(t, "2026-01-01T00:00:00Z", state.History[0].Timestamp)
	assert.Equal(t, "pending", state.History[0].Status)
}

func TestConsole_Workflow_Fold_TerminalSuccess(t *testing.T) {
	t.Parallel()

	state := runningState()
	state.Progress = 80
	done := fold(state, Event{
		Step:    StepWorkflowComplete,
		Message: "done",
		Data:    map[string]any{"foo": float64(1)},
	}, time.Now())

	assert.True(t, done)
	assert.Equal(t, PhaseCompleted, state.Phase)
	assert.Equal(t, 100, state.Progress)
	assert.Equal(t, msgCompleted, state.StatusMessage)
	assert.Equal(t, map[string]any{"foo": float64(1)}, state.Result)
}

func TestConsole_Workflow_Fold_TerminalSuccessForcesProgressOverExplicit(t *testing.T) {
	t.Parallel()

	state := runningState()
	fold(state, Event{Step: StepWorkflowComplete, Progress: intp(90)}, time.Now())

	assert.Equal(t, 100, state.Progress)
}

func TestConsole_Workflow_Fold_TerminalFailure(t *testing.T) {
	t.Parallel()

	state := runningState()
	done := fold(state, Event{Step: StepWorkflowError, Message: "boom"}, time.Now())

	assert.True(t, done)
	assert.Equal(t, PhaseErrored, state.Phase)
	assert.Equal(t, "boom", state.LastError)
	assert.Equal(t, msgFailed, state.StatusMessage)
}

func TestConsole_Workflow_Fold_TerminalFailureDefaultMessage(t *testing.T) {
	t.Parallel()

	state := runningState()
	fold(state, Event{Step: StepWorkflowError}, time.Now())

	assert.Equal(t, msgDefaultError, state.LastError)
}

func TestConsole_Workflow_Request_Validate(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Request{}.Validate(), ErrCityRequired)
	assert.NoError(t, Request{City: "Austin"}.Validate())
	assert.Error(t, Request{City: "Austin", MaxResults: 21}.Validate())
	assert.Error(t, Request{City: "Austin", MaxResults: -1}.Validate())
	assert.Error(t, Request{City: "Austin", SearchRadius: 50}.Validate())
	assert.Error(t, Request{City: "Austin", SearchRadius: 60000}.Validate())
	assert.NoError(t, Request{City: "Austin", MaxResults: 20, SearchRadius: 50000}.Validate())
}

func TestConsole_Workflow_Request_WireDefaults(t *testing.T) {
	t.Parallel()

	w := Request{City: "Austin"}.wire()
	assert.Equal(t, "Austin", w.City)
	assert.Equal(t, "restaurants", w.BusinessType)
	assert.Equal(t, 3, w.MaxResults)
	assert.Equal(t, 5000, w.SearchRadius)
	assert.True(t, w.EnableSDR)

	off := false
	w = Request{City: "Austin", BusinessType: "gyms", MaxResults: 10, SearchRadius: 1000, EnableSDR: &off}.wire()
	assert.Equal(t, "gyms", w.BusinessType)
	assert.Equal(t, 10, w.MaxResults)
	assert.Equal(t, 1000, w.SearchRadius)
	assert.False(t, w.EnableSDR)
}
