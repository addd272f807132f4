package console

import (
	"context"
	"fmt"
	"sort"

	"github.com/copperline/console/client/pkg/api"
	"golang.org/x/sync/errgroup"
)

// Status fetches backend health and agent readiness concurrently and prints
// a combined report.
func (c *Console) Status(ctx context.Context) error {
	var (
		health api.HealthResponse
		agents api.AgentStatusResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		health, err = c.client.Health(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		agents, err = c.client.AgentStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch backend status: %w", err)
	}

	fmt.Fprintf(c.out, "Backend: %s (%s)\n\n", health.Status, c.baseURL)

	names := make([]string, 0, len(agents.Agents))
	for name := range agents.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out, "Agents:")
	for _, name := range names {
		info := agents.Agents[name]
		fmt.Fprintf(c.out, "  %-16s %s", name, info.Status)
		if info.Description != "" {
			fmt.Fprintf(c.out, "  (%s)", info.Description)
		}
		fmt.Fprintln(c.out)
	}

	fmt.Fprintln(c.out, "\nEnvironment:")
	fmt.Fprintf(c.out, "  gmail:    %s\n", configuredLabel(agents.Environment.GmailConfigured))
	fmt.Fprintf(c.out, "  cerebras: %s\n", configuredLabel(agents.Environment.CerebrasConfigured))
	fmt.Fprintf(c.out, "  mongodb:  %s\n", configuredLabel(agents.Environment.MongoDBConfigured))
	return nil
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
