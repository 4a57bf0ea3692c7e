package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/partsdesk/storefront/internal/app"
	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/service"
)

var exportPath string

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "List the cart of the signed-in client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			items, err := a.Cart.Refresh(ctx)
			if err != nil {
				return errors.New(domain.UserMessage(err))
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PART NO\tPART NAME\tMRP\tQTY\tTOTAL")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%.2f\n", it.PartNumber, it.PartName, it.MRP, it.Quantity, it.Total)
			}
			fmt.Fprintf(w, "\t\t\tGrand Total\t%.2f\n", service.GrandTotal(items))
			return w.Flush()
		})
	},
}

var exportCartCmd = &cobra.Command{
	Use:   "export-cart",
	Short: "Write the cart to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			items, err := a.Cart.Refresh(ctx)
			if err != nil {
				return errors.New(domain.UserMessage(err))
			}
			data, err := a.Drafts.ExportCart(items)
			if err != nil {
				return err
			}
			if err := os.WriteFile(exportPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", exportPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items to %s\n", len(items), exportPath)
			return nil
		})
	},
}

func init() {
	exportCartCmd.Flags().StringVarP(&exportPath, "out", "o", "cart.xlsx", "output file")

	rootCmd.AddCommand(cartCmd, exportCartCmd)
}
