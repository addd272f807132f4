package console

import (
	"context"
	"fmt"

	"github.com/copperline/console/client/pkg/api"
)

// Leads lists stored leads with pagination.
func (c *Console) Leads(ctx context.Context, params api.LeadsParams) error {
	page, err := c.client.Leads(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	if len(page.Leads) == 0 {
		fmt.Fprintln(c.out, "No leads found")
		return nil
	}

	fmt.Fprintf(c.out, "%-28s %-28s %-16s %s\n", "NAME", "EMAIL", "CITY/ADDRESS", "BUSINESS TYPE")
	for _, l := range page.Leads {
		fmt.Fprintf(c.out, "%-28s %-28s %-16s %s\n", l.Name, l.Email, l.Address, l.BusinessType)
	}

	fmt.Fprintf(c.out, "\nShowing %d of %d leads (offset %d)", len(page.Leads), page.Total, page.Offset)
	if page.HasMore {
		fmt.Fprintf(c.out, ", more available with --offset %d", page.Offset+len(page.Leads))
	}
	fmt.Fprintln(c.out)
	return nil
}
