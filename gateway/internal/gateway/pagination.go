package gateway

import (
	"net/http"
	"strconv"

	"github.com/copperline/console/client/pkg/api"
)

const (
	defaultLeadsLimit = 10
	maxLeadsLimit     = 100
)

// parseLeadsParams reads limit/offset/with_email_only query parameters,
// clamping the limit so a single request cannot drag the whole lead table
// through the gateway.
func parseLeadsParams(r *http.Request) api.LeadsParams {
	params := api.LeadsParams{Limit: defaultLeadsLimit}

	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			params.Limit = min(parsed, maxLeadsLimit)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	if v := r.URL.Query().Get("with_email_only"); v != "" {
		params.WithEmailOnly = v == "true" || v == "1"
	}

	return params
}
