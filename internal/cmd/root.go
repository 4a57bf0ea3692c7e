package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partsdesk/storefront/internal/app"
	"github.com/partsdesk/storefront/internal/infrastructure/config"
	"github.com/partsdesk/storefront/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront - spare-parts ordering client",
	Long: `Storefront keeps the local state of the spare-parts ordering app: the signed-in
session, catalog filters, the cart mirror and the order draft.

Run "storefront serve" to expose the local gateway, or use the other commands
to work with the session and cart from a terminal.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp loads configuration, builds the app and closes it after fn.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "storefront",
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer a.Close(context.Background())

	return fn(ctx, a)
}
