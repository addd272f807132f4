package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/copperline/console/client/pkg/api"
	"github.com/copperline/console/client/pkg/workflow"
	"github.com/copperline/console/console/internal/console"
	"github.com/copperline/console/utils/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	apiURLFlag := flag.String("api-url", "http://localhost:8000", "Sales agent backend URL (or set SALES_AGENT_API_URL env var)")

	// Commands
	healthFlag := flag.Bool("health", false, "Check backend health")
	agentStatusFlag := flag.Bool("agent-status", false, "Show backend and agent readiness")
	runWorkflowFlag := flag.Bool("run-workflow", false, "Run the streaming lead generation workflow")
	sessionsFlag := flag.Bool("sessions", false, "List workflow sessions")
	sessionFlag := flag.String("session", "", "Show one session by ID")
	sessionLeadsFlag := flag.String("session-leads", "", "List leads for a session ID")
	leadsFlag := flag.Bool("leads", false, "List stored leads")
	sendEmailFlag := flag.Bool("send-email", false, "Send an email through the email agent")

	// Workflow options
	cityFlag := flag.String("city", "", "City to search for leads in (required for --run-workflow)")
	businessTypeFlag := flag.String("business-type", "", "Business type to search for (default: restaurants)")
	maxResultsFlag := flag.Int("max-results", 0, "Maximum leads to find, 1-20 (default: 3)")
	searchRadiusFlag := flag.Int("search-radius", 0, "Search radius in meters, 100-50000 (default: 5000)")
	noSDRFlag := flag.Bool("no-sdr", false, "Skip SDR processing of discovered leads")

	// Leads options
	limitFlag := flag.Int("limit", 10, "Maximum leads per page")
	offsetFlag := flag.Int("offset", 0, "Pagination offset")
	withEmailOnlyFlag := flag.Bool("with-email-only", false, "Only list leads that have an email address")

	// Email options
	toFlag := flag.String("to", "", "Recipient email address (required for --send-email)")
	subjectFlag := flag.String("subject", "", "Email subject (required for --send-email)")
	bodyFlag := flag.String("body", "", "Email body (required for --send-email)")
	htmlFlag := flag.Bool("html", false, "Send the body as HTML")

	flag.Parse()

	// Optional .env for local development.
	_ = godotenv.Load()

	log := logger.New(*verboseFlag)

	if envAPIURL := os.Getenv("SALES_AGENT_API_URL"); envAPIURL != "" && !flag.CommandLine.Changed("api-url") {
		*apiURLFlag = envAPIURL
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := api.New(*apiURLFlag, log)
	c := console.New(*apiURLFlag, client, os.Stdout, log)

	switch {
	case *healthFlag:
		return c.Health(ctx)

	case *agentStatusFlag:
		return c.Status(ctx)

	case *runWorkflowFlag:
		if *cityFlag == "" {
			return fmt.Errorf("--city is required for --run-workflow")
		}
		req := workflow.Request{
			City:         *cityFlag,
			BusinessType: *businessTypeFlag,
			MaxResults:   *maxResultsFlag,
			SearchRadius: *searchRadiusFlag,
		}
		if *noSDRFlag {
			enable := false
			req.EnableSDR = &enable
		}
		return c.RunWorkflow(ctx, req)

	case *sessionsFlag:
		return c.Sessions(ctx)

	case *sessionFlag != "":
		return c.Session(ctx, *sessionFlag)

	case *sessionLeadsFlag != "":
		return c.SessionLeads(ctx, *sessionLeadsFlag)

	case *leadsFlag:
		return c.Leads(ctx, api.LeadsParams{
			Limit:         *limitFlag,
			Offset:        *offsetFlag,
			WithEmailOnly: *withEmailOnlyFlag,
		})

	case *sendEmailFlag:
		if *toFlag == "" || *subjectFlag == "" || *bodyFlag == "" {
			return fmt.Errorf("--to, --subject, and --body are required for --send-email")
		}
		return c.SendEmail(ctx, api.EmailRequest{
			ToEmail: *toFlag,
			Subject: *subjectFlag,
			Body:    *bodyFlag,
			IsHTML:  *htmlFlag,
		})
	}

	flag.Usage()
	return nil
}
