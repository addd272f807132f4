package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// RunLeadFinder runs the lead finder agent synchronously.
func (c *Client) RunLeadFinder(ctx context.Context, req LeadSearchRequest) (LeadSearchResponse, error) {
	var out LeadSearchResponse
	if err := c.post(ctx, "/api/v1/leads/finder", req, &out); err != nil {
		return LeadSearchResponse{}, fmt.Errorf("lead finder workflow failed: %w", err)
	}
	return out, nil
}

// Leads fetches one page of the lead listing. Zero params fall back to the
// backend defaults (limit 10, offset 0, all leads).
func (c *Client) Leads(ctx context.Context, params LeadsParams) (LeadsPage, error) {
	query := url.Values{}
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(max(params.Offset, 0)))
	query.Set("with_email_only", strconv.FormatBool(params.WithEmailOnly))

	var envelope leadsEnvelope
	if err := c.get(ctx, "/api/v1/leads/all", query, &envelope); err != nil {
		return LeadsPage{}, fmt.Errorf("failed to fetch leads: %w", err)
	}

	page := LeadsPage{
		Leads:   envelope.Leads,
		Total:   envelope.Pagination.Total,
		Limit:   envelope.Pagination.Limit,
		Offset:  envelope.Pagination.Offset,
		HasMore: envelope.Pagination.HasMore,
	}
	if page.Leads == nil {
		page.Leads = []BusinessLeadDocument{}
	}
	if page.Limit == 0 {
		page.Limit = limit
	}
	return page, nil
}

// BusinessLeads fetches all stored business leads.
func (c *Client) BusinessLeads(ctx context.Context) ([]BusinessLeadDocument, error) {
	var out []BusinessLeadDocument
	if err := c.get(ctx, "/api/v1/database/business-leads", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch business leads: %w", err)
	}
	return out, nil
}

// BusinessLead fetches one stored business lead by id.
func (c *Client) BusinessLead(ctx context.Context, id string) (BusinessLeadDocument, error) {
	var out BusinessLeadDocument
	if err := c.get(ctx, "/api/v1/database/business-leads/"+url.PathEscape(id), nil, &out); err != nil {
		return BusinessLeadDocument{}, fmt.Errorf("failed to fetch business lead: %w", err)
	}
	return out, nil
}
