package api

import (
	"context"
	"fmt"
	"net/url"
)

// Sessions lists recorded workflow sessions.
func (c *Client) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	if err := c.get(ctx, "/api/v1/sessions", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	return out, nil
}

// Session fetches one session by id.
func (c *Client) Session(ctx context.Context, id string) (Session, error) {
	var out Session
	if err := c.get(ctx, "/api/v1/sessions/"+url.PathEscape(id), nil, &out); err != nil {
		return Session{}, fmt.Errorf("failed to fetch session: %w", err)
	}
	return out, nil
}

// SessionLeads fetches the leads discovered during one session.
func (c *Client) SessionLeads(ctx context.Context, id string) ([]BusinessLeadDocument, error) {
	var out []BusinessLeadDocument
	if err := c.get(ctx, "/api/v1/sessions/"+url.PathEscape(id)+"/leads", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch session leads: %w", err)
	}
	return out, nil
}
