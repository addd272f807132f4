package console

import (
	"context"
	"fmt"
)

// Sessions lists recorded workflow sessions.
func (c *Console) Sessions(ctx context.Context) error {
	sessions, err := c.client.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(c.out, "No sessions found")
		return nil
	}

	fmt.Fprintf(c.out, "%-26s %-16s %-12s %-10s %s\n", "SESSION", "CITY", "STATUS", "LEADS", "STARTED")
	for _, s := range sessions {
		fmt.Fprintf(c.out, "%-26s %-16s %-12s %-10d %s\n", s.SessionID, s.City, s.Status, s.LeadsFound, s.StartTime)
	}
	return nil
}

// Session prints one session in detail.
func (c *Console) Session(ctx context.Context, id string) error {
	s, err := c.client.Session(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch session %s: %w", id, err)
	}

	fmt.Fprintf(c.out, "Session:       %s\n", s.SessionID)
	fmt.Fprintf(c.out, "City:          %s\n", s.City)
	fmt.Fprintf(c.out, "Business type: %s\n", s.BusinessType)
	fmt.Fprintf(c.out, "Status:        %s\n", s.Status)
	fmt.Fprintf(c.out, "Leads found:   %d\n", s.LeadsFound)
	fmt.Fprintf(c.out, "Started:       %s\n", s.StartTime)
	if s.EndTime != "" {
		fmt.Fprintf(c.out, "Ended:         %s\n", s.EndTime)
	}
	return nil
}

// SessionLeads lists the leads discovered in one session.
func (c *Console) SessionLeads(ctx context.Context, id string) error {
	leads, err := c.client.SessionLeads(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch leads for session %s: %w", id, err)
	}

	if len(leads) == 0 {
		fmt.Fprintf(c.out, "No leads found for session %s\n", id)
		return nil
	}

	fmt.Fprintf(c.out, "%-28s %-28s %-16s %s\n", "NAME", "EMAIL", "PHONE", "WEBSITE")
	for _, l := range leads {
		fmt.Fprintf(c.out, "%-28s %-28s %-16s %s\n", l.Name, l.Email, l.Phone, l.Website)
	}
	return nil
}
