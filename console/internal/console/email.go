package console

import (
	"context"
	"fmt"

	"github.com/copperline/console/client/pkg/api"
)

// SendEmail sends a direct email through the backend's email agent.
func (c *Console) SendEmail(ctx context.Context, req api.EmailRequest) error {
	resp, err := c.client.SendEmail(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("email was not sent: %s", resp.Message)
	}

	fmt.Fprintf(c.out, "Email sent to %s: %s\n", resp.ToEmail, resp.Subject)
	return nil
}
