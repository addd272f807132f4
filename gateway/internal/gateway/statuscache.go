package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/copperline/console/client/pkg/api"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

// recentSessionsLimit caps how many sessions the overview carries.
const recentSessionsLimit = 10

// Overview is the aggregate dashboard landing payload. Each section carries
// its own error so one failing upstream endpoint does not blank the rest.
type Overview struct {
	Backend       api.HealthResponse      `json:"backend"`
	BackendError  string                  `json:"backend_error,omitempty"`
	Agents        api.AgentStatusResponse `json:"agents"`
	AgentsError   string                  `json:"agents_error,omitempty"`
	Sessions      []api.Session           `json:"recent_sessions"`
	SessionsError string                  `json:"sessions_error,omitempty"`
	RefreshedAt   time.Time               `json:"refreshed_at"`
}

// StatusCache refreshes the overview in the background so the dashboard
// landing page answers from memory instead of fanning out to the backend on
// every load.
type StatusCache struct {
	client   *api.Client
	log      *slog.Logger
	clock    clockwork.Clock
	interval time.Duration

	mu       sync.RWMutex
	overview Overview
	fresh    bool
}

// NewStatusCache creates a cache refreshing every interval.
func NewStatusCache(client *api.Client, interval time.Duration, clock clockwork.Clock, log *slog.Logger) *StatusCache {
	return &StatusCache{
		client:   client,
		log:      log,
		clock:    clock,
		interval: interval,
	}
}

// Start refreshes once immediately, then on every interval tick until ctx is
// cancelled.
func (c *StatusCache) Start(ctx context.Context) {
	go func() {
		c.Refresh(ctx)

		ticker := c.clock.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				c.Refresh(ctx)
			}
		}
	}()
}

// Refresh fetches health, agent status, and recent sessions concurrently and
// swaps in the new overview.
func (c *StatusCache) Refresh(ctx context.Context) {
	var next Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		health, err := c.client.Health(gctx)
		if err != nil {
			next.BackendError = err.Error()
			return nil
		}
		next.Backend = health
		return nil
	})
	g.Go(func() error {
		agents, err := c.client.AgentStatus(gctx)
		if err != nil {
			next.AgentsError = err.Error()
			return nil
		}
		next.Agents = agents
		return nil
	})
	g.Go(func() error {
		sessions, err := c.client.Sessions(gctx)
		if err != nil {
			next.SessionsError = err.Error()
			return nil
		}
		if len(sessions) > recentSessionsLimit {
			sessions = sessions[:recentSessionsLimit]
		}
		next.Sessions = sessions
		return nil
	})
	_ = g.Wait() // section errors are recorded, never propagated

	if next.Sessions == nil {
		next.Sessions = []api.Session{}
	}
	next.RefreshedAt = c.clock.Now().UTC()

	if next.BackendError != "" || next.AgentsError != "" || next.SessionsError != "" {
		OverviewRefreshErrorsTotal.Inc()
		c.log.Debug("overview refresh had upstream errors",
			"backend_error", next.BackendError,
			"agents_error", next.AgentsError,
			"sessions_error", next.SessionsError,
		)
	}

	c.mu.Lock()
	c.overview = next
	c.fresh = true
	c.mu.Unlock()
}

// Overview returns the cached overview and whether a refresh has completed
// yet.
func (c *StatusCache) Overview() (Overview, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overview, c.fresh
}
