package gateway

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/copperline/console/client/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamingBackend serves the backend's workflow stream endpoint, emitting
// the given raw event lines.
func streamingBackend(t *testing.T, lines []string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/workflow/main-stream", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("backend response writer does not support flushing")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, line := range lines {
			fmt.Fprintf(w, "data: %s\n", line)
			flusher.Flush()
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// readRelayedStates posts a workflow request to the gateway and decodes every
// relayed SSE snapshot.
func readRelayedStates(t *testing.T, gatewayURL, body string) []workflow.RunState {
	t.Helper()

	resp, err := http.Post(gatewayURL+"/api/workflow/stream", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var states []workflow.RunState
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var state workflow.RunState
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &state))
		states = append(states, state)
	}
	require.NoError(t, scanner.Err())
	return states
}

func TestConsole_Gateway_StreamRelaySuccess(t *testing.T) {
	t.Parallel()

	backend := streamingBackend(t, []string{
		`{"step":"lead_discovery","message":"Searching for leads","session_id":"S42"}`,
		`{"step":"sdr_processing","message":"Processing leads","progress":85}`,
		`{"step":"workflow_complete","message":"All done","data":{"leads_found":7}}`,
	})
	_, _, ts := newTestGateway(t, testConfig(backend.URL))

	states := readRelayedStates(t, ts.URL, `{"city":"Austin"}`)
	require.NotEmpty(t, states)

	// The first snapshot is the freshly started run.
	assert.Equal(t, workflow.PhaseRunning, states[0].Phase)

	last := states[len(states)-1]
	assert.Equal(t, workflow.PhaseCompleted, last.Phase)
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, "S42", last.SessionID)
	assert.Equal(t, float64(7), last.Result["leads_found"])
}

func TestConsole_Gateway_StreamRelayWorkflowError(t *testing.T) {
	t.Parallel()

	backend := streamingBackend(t, []string{
		`{"step":"lead_discovery","message":"Searching for leads"}`,
		`{"step":"workflow_error","message":"backend exploded"}`,
	})
	_, _, ts := newTestGateway(t, testConfig(backend.URL))

	states := readRelayedStates(t, ts.URL, `{"city":"Austin"}`)
	require.NotEmpty(t, states)

	last := states[len(states)-1]
	assert.Equal(t, workflow.PhaseErrored, last.Phase)
	assert.Equal(t, "backend exploded", last.LastError)
}

func TestConsole_Gateway_StreamRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	_, _, ts := newTestGateway(t, testConfig(backend.URL))

	resp, err := http.Post(ts.URL+"/api/workflow/stream", "application/json", strings.NewReader(`{"city":"  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Post(ts.URL+"/api/workflow/stream", "application/json", strings.NewReader(`not json`))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}
