package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	consoletesting "github.com/copperline/console/utils/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client whose state snapshots are mirrored onto the
// returned channel.
func newTestClient(t *testing.T, baseURL string) (*StreamClient, <-chan RunState) {
	t.Helper()
	updates := make(chan RunState, 256)
	c := NewStreamClient(baseURL, consoletesting.NewLogger(), WithOnUpdate(func(s RunState) {
		updates <- s
	}))
	return c, updates
}

// waitPhase reads snapshots until one reaches any of the wanted phases.
func waitPhase(t *testing.T, updates <-chan RunState, want ...Phase) RunState {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-updates:
			for _, p := range want {
				if s.Phase == p {
					return s
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %v", want)
		}
	}
}

func writeEvent(w http.ResponseWriter, f http.Flusher, ev map[string]any) {
	payload, _ := json.Marshal(ev)
	fmt.Fprintf(w, "data: %s\n", payload)
	f.Flush()
}

func sseHandler(fn func(w http.ResponseWriter, r *http.Request, f http.Flusher)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fn(w, r, w.(http.Flusher))
	}
}

func TestConsole_Workflow_StreamClient_SuccessfulRun(t *testing.T) {
	t.Parallel()

	var receivedBody startRequest
	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&receivedBody))

		writeEvent(w, f, map[string]any{"step": "initializing", "message": "Setting up", "session_id": "S1"})
		writeEvent(w, f, map[string]any{"step": "lead_discovery", "message": "Searching"})
		writeEvent(w, f, map[string]any{"step": "sdr_processing", "message": "Processing", "progress": 85})
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done", "data": map[string]any{"leads_found": 3}})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseCompleted)

	assert.Equal(t, 100, state.Progress)
	assert.Equal(t, "S1", state.SessionID)
	assert.Equal(t, StepWorkflowComplete, state.CurrentStep)
	assert.Equal(t, map[string]any{"leads_found": float64(3)}, state.Result)
	assert.Len(t, state.History, 4)
	assert.Empty(t, state.LastError)

	// Request body carries the normalized snake_case fields.
	assert.Equal(t, "Austin", receivedBody.City)
	assert.Equal(t, "restaurants", receivedBody.BusinessType)
	assert.Equal(t, 3, receivedBody.MaxResults)
	assert.Equal(t, 5000, receivedBody.SearchRadius)
	assert.True(t, receivedBody.EnableSDR)
}

func TestConsole_Workflow_StreamClient_LineSplitAcrossChunks(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		// One event split across two flushed chunks, then a complete one.
		fmt.Fprint(w, `data: {"step":"lead_discovery"`)
		f.Flush()
		fmt.Fprint(w, ",\"message\":\"Searching\"}\n")
		f.Flush()
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done"})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseCompleted)

	require.Len(t, state.History, 2)
	assert.Equal(t, StepLeadDiscovery, state.History[0].Step)
	assert.Equal(t, "Searching", state.History[0].Message)
}

func TestConsole_Workflow_StreamClient_StopsReadingAfterTerminalEvent(t *testing.T) {
	t.Parallel()

	released := make(chan struct{})
	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done"})
		// The client must abandon the stream once the terminal event folds.
		select {
		case <-r.Context().Done():
			close(released)
		case <-time.After(3 * time.Second):
		}
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	waitPhase(t, updates, PhaseCompleted)

	select {
	case <-released:
	case <-time.After(3 * time.Second):
		t.Fatal("client kept the stream open after the terminal event")
	}
}

func TestConsole_Workflow_StreamClient_WorkflowError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "initializing", "message": "Setting up"})
		writeEvent(w, f, map[string]any{"step": "workflow_error", "message": "boom"})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseErrored)

	assert.Equal(t, "boom", state.LastError)
	assert.Equal(t, msgFailed, state.StatusMessage)
}

func TestConsole_Workflow_StreamClient_MalformedLineSkipped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		fmt.Fprint(w, "data: {not json}\n")
		f.Flush()
		writeEvent(w, f, map[string]any{"step": "lead_discovery", "message": "Searching"})
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done"})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseCompleted)

	require.Len(t, state.History, 2)
	assert.Equal(t, StepLeadDiscovery, state.History[0].Step)
}

func TestConsole_Workflow_StreamClient_StreamEndFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "lead_discovery", "message": "Searching"})
		// Handler returns without a terminal event; the stream just ends.
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseCompleted)

	assert.Equal(t, 100, state.Progress)
	assert.Empty(t, state.LastError)
}

func TestConsole_Workflow_StreamClient_TransportStartError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseErrored)

	assert.Contains(t, state.LastError, "status 502")
	assert.Equal(t, msgErrored, state.StatusMessage)
}

func TestConsole_Workflow_StreamClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Grab a port with no listener behind it.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, updates := newTestClient(t, url)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))

	state := waitPhase(t, updates, PhaseErrored)
	assert.Contains(t, state.LastError, "failed to send request")
}

func TestConsole_Workflow_StreamClient_ValidationError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, "http://localhost:0")

	err := client.Start(context.Background(), Request{City: "   "})

	require.ErrorIs(t, err, ErrCityRequired)
	assert.Equal(t, PhaseIdle, client.State().Phase)
}

func TestConsole_Workflow_StreamClient_CancelIdempotent(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, "http://localhost:0")

	// No run in flight: a no-op, state untouched.
	client.Cancel()
	client.Cancel()

	state := client.State()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Empty(t, state.StatusMessage)
}

func TestConsole_Workflow_StreamClient_CancelDuringRun(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "initializing", "message": "Setting up"})
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))
	<-started

	client.Cancel()
	state := waitPhase(t, updates, PhaseIdle)

	assert.Equal(t, msgCancelled, state.StatusMessage)
	assert.Empty(t, state.LastError)

	// Second cancel stays safe.
	client.Cancel()
	assert.Equal(t, PhaseIdle, client.State().Phase)
}

func TestConsole_Workflow_StreamClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "initializing", "message": "Setting up"})
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(ctx, Request{City: "Austin"}))
	<-started

	cancel()
	state := waitPhase(t, updates, PhaseIdle)

	assert.Equal(t, msgCancelled, state.StatusMessage)
}

func TestConsole_Workflow_StreamClient_RestartSupersedes(t *testing.T) {
	t.Parallel()

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		var body startRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body.City == "Austin" {
			// First run: hold the stream open, then try to deliver a stale
			// failure after the run has been superseded.
			writeEvent(w, f, map[string]any{"step": "initializing", "message": "run one", "session_id": "OLD"})
			close(firstStarted)
			select {
			case <-release:
				writeEvent(w, f, map[string]any{"step": "workflow_error", "message": "stale failure"})
			case <-r.Context().Done():
			}
			return
		}
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "run two", "session_id": "NEW"})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))
	<-firstStarted

	require.NoError(t, client.Start(context.Background(), Request{City: "Dallas"}))
	close(release)

	state := waitPhase(t, updates, PhaseCompleted)
	assert.Equal(t, "NEW", state.SessionID)

	// Give any stale delivery a moment, then confirm nothing regressed.
	time.Sleep(100 * time.Millisecond)
	final := client.State()
	assert.Equal(t, PhaseCompleted, final.Phase)
	assert.Equal(t, "NEW", final.SessionID)
	assert.Empty(t, final.LastError)
}

func TestConsole_Workflow_StreamClient_HistoryClearedOnRestart(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "initializing", "message": "Setting up"})
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done"})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))
	first := waitPhase(t, updates, PhaseCompleted)
	require.Len(t, first.History, 2)

	require.NoError(t, client.Start(context.Background(), Request{City: "Dallas"}))
	second := waitPhase(t, updates, PhaseCompleted)
	assert.Len(t, second.History, 2, "history restarts fresh per run")
}

func TestConsole_Workflow_StreamClient_Reset(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done", "session_id": "S1", "data": map[string]any{"x": 1}})
	}))
	defer server.Close()

	client, updates := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))
	waitPhase(t, updates, PhaseCompleted)

	client.Reset()
	state := client.State()

	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Zero(t, state.Progress)
	assert.Empty(t, state.CurrentStep)
	assert.Empty(t, state.SessionID)
	assert.Empty(t, state.History)
	assert.Nil(t, state.Result)
	assert.Empty(t, state.LastError)
	assert.Empty(t, state.StatusMessage)
}

func TestConsole_Workflow_StreamClient_ResetDetachesRunningStream(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(sseHandler(func(w http.ResponseWriter, r *http.Request, f http.Flusher) {
		writeEvent(w, f, map[string]any{"step": "initializing", "message": "Setting up"})
		close(started)
		<-release
		writeEvent(w, f, map[string]any{"step": "workflow_complete", "message": "Done"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	require.NoError(t, client.Start(context.Background(), Request{City: "Austin"}))
	<-started

	client.Reset()
	close(release)

	// The detached run's remaining events must not leak into the reset state.
	time.Sleep(100 * time.Millisecond)
	state := client.State()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Empty(t, state.History)
}
