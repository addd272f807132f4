package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/copperline/console/client/pkg/workflow"
)

// streamBufferSize bounds how many state snapshots can queue between the
// workflow client and a slow dashboard connection.
const streamBufferSize = 64

// handleWorkflowStream starts a workflow run against the backend and relays
// every state snapshot to the dashboard as Server-Sent Events. Closing the
// request aborts the run.
func (s *Server) handleWorkflowStream(w http.ResponseWriter, r *http.Request) {
	var req workflow.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	updates := make(chan workflow.RunState, streamBufferSize)
	push := func(state workflow.RunState) {
		// Drop the oldest snapshot rather than block the run; the
		// dashboard only needs the latest state anyway.
		for {
			select {
			case updates <- state:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	}

	sc := workflow.NewStreamClient(s.cfg.BackendURL, s.log, workflow.WithOnUpdate(push))
	if err := sc.Start(r.Context(), req); err != nil {
		// Validate already passed, so this is a request encoding failure.
		s.log.Error("failed to start workflow run", "error", err)
		WorkflowRunsTotal.WithLabelValues("error").Inc()
		return
	}

	for {
		select {
		case <-r.Context().Done():
			sc.Cancel()
			WorkflowRunsTotal.WithLabelValues("cancelled").Inc()
			return
		case state := <-updates:
			data, err := json.Marshal(state)
			if err != nil {
				s.log.Error("failed to marshal workflow state", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			StreamEventsRelayedTotal.Inc()

			if state.Terminal() {
				WorkflowRunsTotal.WithLabelValues(string(state.Phase)).Inc()
				return
			}
		}
	}
}
