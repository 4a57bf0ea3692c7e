package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/partsdesk/storefront/internal/app"
	"github.com/partsdesk/storefront/internal/core/domain"
)

var (
	historyClient string
	historyDate   string
	historyPage   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past orders (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if _, err := a.History.Reload(ctx); err != nil {
				return errors.New(domain.UserMessage(err))
			}
			a.History.SetCriteria(domain.HistoryCriteria{ClientName: historyClient, Date: historyDate})
			page := a.History.GoTo(historyPage)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tUSER\tKIND\tTOTAL")
			for _, o := range page.Items {
				kind := "cart"
				if o.IsExcelOrder {
					kind = "excel:" + o.Filename
				}
				date := "-"
				if !o.CreatedAt.IsZero() {
					date = o.CreatedAt.UTC().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", date, o.Username, kind, o.GrandTotal)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d orders)\n", page.Page, page.TotalPages, page.Total)
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyClient, "client", "", "client name substring")
	historyCmd.Flags().StringVar(&historyDate, "date", "", "order date (YYYY-MM-DD)")
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "page number")

	rootCmd.AddCommand(historyCmd)
}
