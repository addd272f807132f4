// Package workflow drives streaming workflow runs against the Sales Agent
// backend. A StreamClient owns one run at a time: it starts the workflow,
// consumes the newline-delimited "data:" event stream, and folds each event
// into a RunState snapshot for the caller.
package workflow

import "fmt"

// Phase is the lifecycle phase of a workflow run.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseErrored   Phase = "error"
)

// Step values emitted by the backend workflow engine. Unknown steps are
// accepted and recorded but carry no default progress.
const (
	StepInitializing     = "initializing"
	StepLeadDiscovery    = "lead_discovery"
	StepWaitForUpload    = "wait_for_upload"
	StepRetrieveLeads    = "retrieve_leads"
	StepSDRProcessing    = "sdr_processing"
	StepWorkflowComplete = "workflow_complete"
	StepWorkflowError    = "workflow_error"
)

// defaultProgress maps known non-terminal steps to the progress shown when an
// event carries no explicit progress value. An explicit value always wins.
var defaultProgress = map[string]int{
	StepInitializing:  0,
	StepLeadDiscovery: 20,
	StepWaitForUpload: 40,
	StepRetrieveLeads: 60,
	StepSDRProcessing: 80,
}

// Status messages surfaced to the UI layer.
const (
	msgStarting     = "Starting workflow..."
	msgCompleted    = "Workflow completed successfully!"
	msgFailed       = "Workflow failed"
	msgCancelled    = "Workflow cancelled"
	msgErrored      = "Error occurred"
	msgDefaultError = "An error occurred during workflow execution"
)

const (
	defaultBusinessType = "restaurants"
	defaultMaxResults   = 3
	defaultSearchRadius = 5000

	minMaxResults   = 1
	maxMaxResults   = 20
	minSearchRadius = 100
	maxSearchRadius = 50000
)

// ErrCityRequired is returned by Start when the request has no city.
var ErrCityRequired = fmt.Errorf("city is required")

// Request describes a workflow run. City is required; the remaining fields
// default server-compatibly when zero (EnableSDR nil means enabled).
type Request struct {
	City         string `json:"city"`
	BusinessType string `json:"business_type,omitempty"`
	MaxResults   int    `json:"max_results,omitempty"`
	SearchRadius int    `json:"search_radius,omitempty"`
	EnableSDR    *bool  `json:"enable_sdr,omitempty"`
}

// Validate checks the request against the bounds the backend enforces.
func (r Request) Validate() error {
	if r.City == "" {
		return ErrCityRequired
	}
	if r.MaxResults != 0 && (r.MaxResults < minMaxResults || r.MaxResults > maxMaxResults) {
		return fmt.Errorf("max_results must be between %d and %d, got %d", minMaxResults, maxMaxResults, r.MaxResults)
	}
	if r.SearchRadius != 0 && (r.SearchRadius < minSearchRadius || r.SearchRadius > maxSearchRadius) {
		return fmt.Errorf("search_radius must be between %d and %d, got %d", minSearchRadius, maxSearchRadius, r.SearchRadius)
	}
	return nil
}

// startRequest is the wire body for POST /api/v1/workflow/main-stream.
type startRequest struct {
	City         string `json:"city"`
	BusinessType string `json:"business_type"`
	MaxResults   int    `json:"max_results"`
	SearchRadius int    `json:"search_radius"`
	EnableSDR    bool   `json:"enable_sdr"`
}

// wire resolves defaults into the request body sent to the backend.
func (r Request) wire() startRequest {
	w := startRequest{
		City:         r.City,
		BusinessType: r.BusinessType,
		MaxResults:   r.MaxResults,
		SearchRadius: r.SearchRadius,
		EnableSDR:    r.EnableSDR == nil || *r.EnableSDR,
	}
	if w.BusinessType == "" {
		w.BusinessType = defaultBusinessType
	}
	if w.MaxResults == 0 {
		w.MaxResults = defaultMaxResults
	}
	if w.SearchRadius == 0 {
		w.SearchRadius = defaultSearchRadius
	}
	return w
}

// Event is one decoded "data:" line from the stream.
type Event struct {
	Step      string         `json:"step,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Status    string         `json:"status,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Progress  *int           `json:"progress,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// RunState is the client-owned reduction of all events seen so far for one
// run. Snapshots of it are handed to the caller; the client never shares the
// live struct.
type RunState struct {
	Phase         Phase          `json:"phase"`
	Progress      int            `json:"progress"`
	CurrentStep   string         `json:"current_step,omitempty"`
	SessionID     string         `json:"session_id,omitempty"`
	History       []Event        `json:"history"`
	Result        map[string]any `json:"result,omitempty"`
	LastError     string         `json:"last_error,omitempty"`
	StatusMessage string         `json:"status_message,omitempty"`
}

// Terminal reports whether the run has reached a final phase.
func (s RunState) Terminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseErrored
}

// snapshot returns a copy safe to hand out while the run keeps mutating the
// original. History is copied; event payload maps are treated as read-only.
func (s RunState) snapshot() RunState {
	out := s
	if s.History != nil {
		out.History = make([]Event, len(s.History))
		copy(out.History, s.History)
	}
	return out
}
