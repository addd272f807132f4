package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salesagent_gateway_build_info",
			Help: "Build information of the Sales Agent dashboard gateway",
		},
		[]string{"version", "commit", "date"},
	)

	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesagent_gateway_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salesagent_gateway_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"route"},
	)

	WorkflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salesagent_gateway_workflow_runs_total",
			Help: "Total number of streamed workflow runs by outcome",
		},
		[]string{"outcome"},
	)

	StreamEventsRelayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salesagent_gateway_stream_events_relayed_total",
			Help: "Total number of workflow state snapshots relayed to clients",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salesagent_gateway_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	OverviewRefreshErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "salesagent_gateway_overview_refresh_errors_total",
			Help: "Total number of overview cache refreshes with at least one upstream error",
		},
	)
)
