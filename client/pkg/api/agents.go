package api

import (
	"context"
	"fmt"
)

// SendEmail sends a single email directly through the email sender agent.
func (c *Client) SendEmail(ctx context.Context, req EmailRequest) (EmailResponse, error) {
	var out EmailResponse
	if err := c.post(ctx, "/api/v1/email/send", req, &out); err != nil {
		return EmailResponse{}, fmt.Errorf("email send failed: %w", err)
	}
	return out, nil
}

// SendEmailWithAgent has the email agent compose and send outreach from
// research output.
func (c *Client) SendEmailWithAgent(ctx context.Context, req EmailAgentRequest) (map[string]any, error) {
	var out map[string]any
	if err := c.post(ctx, "/api/v1/email/send-agent", req, &out); err != nil {
		return nil, fmt.Errorf("email agent failed: %w", err)
	}
	return out, nil
}

// RunMainAgentWorkflow runs the orchestrated main agent workflow without
// streaming. For incremental progress use workflow.StreamClient instead.
func (c *Client) RunMainAgentWorkflow(ctx context.Context, req MainWorkflowRequest) (MainWorkflowResponse, error) {
	var out MainWorkflowResponse
	if err := c.post(ctx, "/api/v1/main-agent/workflow", req, &out); err != nil {
		return MainWorkflowResponse{}, fmt.Errorf("main agent workflow failed: %w", err)
	}
	return out, nil
}

// RunSDRWorkflow runs the SDR agent against one business.
func (c *Client) RunSDRWorkflow(ctx context.Context, data BusinessData) (SDRWorkflowResponse, error) {
	var out SDRWorkflowResponse
	if err := c.post(ctx, "/api/v1/sdr/workflow", data, &out); err != nil {
		return SDRWorkflowResponse{}, fmt.Errorf("SDR workflow failed: %w", err)
	}
	return out, nil
}

// AgentStatus reports per-agent readiness and environment configuration.
func (c *Client) AgentStatus(ctx context.Context) (AgentStatusResponse, error) {
	var out AgentStatusResponse
	if err := c.get(ctx, "/api/v1/agents/status", nil, &out); err != nil {
		return AgentStatusResponse{}, fmt.Errorf("failed to fetch agent status: %w", err)
	}
	return out, nil
}
