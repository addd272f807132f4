package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const streamPath = "/api/v1/workflow/main-stream"

// StreamClient drives one streaming workflow run at a time. Starting a new
// run supersedes any run still in flight: the old run's transport is
// cancelled and its remaining events are dropped. All state mutation goes
// through the run's generation check, so a retired run can never touch the
// state of its successor.
type StreamClient struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	clock      clockwork.Clock
	onUpdate   func(RunState)

	mu     sync.Mutex
	state  RunState
	gen    uint64
	cancel context.CancelFunc
}

// Option configures a StreamClient.
type Option func(*StreamClient)

// WithHTTPClient replaces the default streaming HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *StreamClient) { c.httpClient = hc }
}

// WithClock replaces the clock used for event timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(c *StreamClient) { c.clock = clock }
}

// WithOnUpdate registers a callback invoked with a state snapshot after every
// fold and on every terminal or cancel transition. The callback runs on the
// run's read loop; it must not block for long.
func WithOnUpdate(fn func(RunState)) Option {
	return func(c *StreamClient) { c.onUpdate = fn }
}

// NewStreamClient creates a streaming workflow client for the given backend
// base URL.
func NewStreamClient(baseURL string, log *slog.Logger, opts ...Option) *StreamClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
	}

	c := &StreamClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			// No overall timeout: a run streams until a terminal event,
			// stream end, or cancellation.
		},
		log:   log,
		clock: clockwork.NewRealClock(),
		state: RunState{Phase: PhaseIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current run state.
func (c *StreamClient) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

// Start begins a new workflow run, superseding any run still in flight. It
// validates only that the city is present and returns immediately; every
// later failure is reported through the run state, not an error return. The
// provided context bounds the run: cancelling it cancels the run.
func (c *StreamClient) Start(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.City) == "" {
		return ErrCityRequired
	}

	body, err := json.Marshal(req.wire())
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	c.mu.Lock()
	if c.cancel != nil {
		// Retire the previous run without invoking its completion path.
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	gen := c.gen
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = RunState{
		Phase:         PhaseRunning,
		StatusMessage: msgStarting,
		History:       []Event{},
	}
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)

	runID := uuid.New().String()
	c.log.Debug("starting workflow run", "run_id", runID, "city", req.City)

	go c.run(runCtx, gen, runID, body)
	return nil
}

// Cancel aborts the run in flight, if any, and marks the state cancelled.
// Calling it with no run in flight is a no-op; calling it twice is safe.
func (c *StreamClient) Cancel() {
	c.mu.Lock()
	if c.cancel == nil {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.cancel = nil
	// Retire the run now so a straggling event from the read loop cannot
	// mutate state after cancellation.
	c.gen++
	c.state.Phase = PhaseIdle
	c.state.StatusMessage = msgCancelled
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)
}

// Reset returns the state to its initial idle shape. It does not cancel a run
// in flight: the transport keeps running detached, its events dropped, until
// it finishes or a later Cancel or Start aborts it.
func (c *StreamClient) Reset() {
	c.mu.Lock()
	c.gen++
	c.state = RunState{Phase: PhaseIdle}
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *StreamClient) notify(snap RunState) {
	if c.onUpdate != nil {
		c.onUpdate(snap)
	}
}

// run issues the start request and consumes the event stream. Exactly one
// terminal helper fires per run; each checks the generation so a superseded
// run exits silently.
func (c *StreamClient) run(ctx context.Context, gen uint64, runID string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+streamPath, bytes.NewReader(body))
	if err != nil {
		c.fail(gen, fmt.Errorf("failed to create request: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			c.cancelled(gen)
			return
		}
		c.fail(gen, fmt.Errorf("failed to send request: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.fail(gen, fmt.Errorf("workflow start failed: %s (status %d)", strings.TrimSpace(string(msg)), resp.StatusCode))
		return
	}

	var scanner lineScanner
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, line := range scanner.feed(buf[:n]) {
				ev, ok, perr := parseEvent(line)
				if perr != nil {
					c.log.Warn("dropping malformed stream line", "run_id", runID, "error", perr)
					continue
				}
				if !ok {
					continue
				}
				if c.apply(gen, ev) {
					return
				}
			}
		}
		if readErr != nil {
			switch {
			case errors.Is(readErr, io.EOF):
				c.finishAtStreamEnd(gen)
			case ctx.Err() != nil:
				c.cancelled(gen)
			default:
				c.fail(gen, fmt.Errorf("error reading stream: %w", readErr))
			}
			return
		}
	}
}

// apply folds one event into the state. It reports true when the read loop
// should stop, either because the event was terminal or because the run has
// been superseded.
func (c *StreamClient) apply(gen uint64, ev Event) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return true
	}
	done := fold(&c.state, ev, c.clock.Now())
	if done {
		c.releaseLocked()
	}
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)
	return done
}

// finishAtStreamEnd handles the stream ending without an explicit terminal
// event. The run is treated as succeeded.
func (c *StreamClient) finishAtStreamEnd(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.state.Phase != PhaseRunning {
		c.mu.Unlock()
		return
	}
	c.state.Phase = PhaseCompleted
	c.state.Progress = 100
	c.releaseLocked()
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)
}

// cancelled handles a read loop aborted through its context. Cancel() has
// usually retired the generation already and this is a no-op; it still fires
// when the caller's own context is cancelled.
func (c *StreamClient) cancelled(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state.Phase = PhaseIdle
	c.state.StatusMessage = msgCancelled
	c.releaseLocked()
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)
}

// fail marks the run errored. Failures are terminal for the run; nothing is
// retried.
func (c *StreamClient) fail(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state.Phase = PhaseErrored
	c.state.LastError = err.Error()
	c.state.StatusMessage = msgErrored
	c.releaseLocked()
	snap := c.state.snapshot()
	c.mu.Unlock()
	c.notify(snap)
	c.log.Debug("workflow run failed", "error", err)
}

// releaseLocked drops the cancel handle once the run has reached a terminal
// state, so a later Cancel() is a no-op instead of "cancelling" a finished
// run. Caller must hold c.mu.
func (c *StreamClient) releaseLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
