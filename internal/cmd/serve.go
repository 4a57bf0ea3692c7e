package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partsdesk/storefront/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local gateway",
	Long: `Start the local HTTP gateway which provides:
- session, catalog, cart and checkout routes for the view layer
- admin order history and user directory routes
- health probes, Prometheus metrics and Swagger UI`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(ctx context.Context, a *app.App) error {
		return a.Serve(ctx)
	})
}
