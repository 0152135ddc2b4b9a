package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/centresolea/solea-events/internal/api"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API consumed by the voice assistant.

The port comes from --port, SOLEA_SERVER_PORT, PORT or server.port in the
config file, defaulting to 10000.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.New(a.scraper(), api.Options{
				Metrics:         a.metrics,
				EnrichPageLimit: a.cfg.Enrich.PageLimit,
			})
			srv.Now = a.now
			return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", a.cfg.Server.Port))
		},
	}

	cmd.Flags().Int("port", 10000, "Listen port")
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}
