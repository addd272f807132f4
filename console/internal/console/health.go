package console

import (
	"context"
	"fmt"
)

// Health checks the backend and prints its reported status.
func (c *Console) Health(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("backend is unreachable: %w", err)
	}

	fmt.Fprintf(c.out, "Backend: %s\n", c.baseURL)
	fmt.Fprintf(c.out, "Status:  %s\n", health.Status)
	if health.Version != "" {
		fmt.Fprintf(c.out, "Version: %s\n", health.Version)
	}
	if health.Message != "" {
		fmt.Fprintf(c.out, "Message: %s\n", health.Message)
	}
	return nil
}
