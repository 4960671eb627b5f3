package cli

import (
	"os/signal"
	"syscall"

	"orl-assistant/internal/server"

	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the companion server for the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				a.cfg.App.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			success.Fprintf(cmd.OutOrStdout(), "Serving on http://localhost:%s\n", a.cfg.App.Port)
			return server.New(a.cfg, a.container).Run(ctx)
		},
	}
	cmd.Flags().String("port", "", "Listen port (overrides APP_PORT)")
	return cmd
}
