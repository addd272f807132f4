package console

import (
	"io"
	"log/slog"

	"github.com/copperline/console/client/pkg/api"
)

// Console runs dashboard commands against the sales agent backend and
// renders the results for a terminal.
type Console struct {
	baseURL string
	client  *api.Client
	out     io.Writer
	log     *slog.Logger
}

// New creates a console bound to the backend at baseURL, writing command
// output to out.
func New(baseURL string, client *api.Client, out io.Writer, log *slog.Logger) *Console {
	return &Console{
		baseURL: baseURL,
		client:  client,
		out:     out,
		log:     log,
	}
}
