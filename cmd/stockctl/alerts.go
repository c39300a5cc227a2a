package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stockwise/internal/models"
)

func alertsCmd() *cobra.Command {
	var (
		status    string
		alertType string
		page      int
		pageSize  int
	)
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List stock alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if status != "" && !models.IsValidAlertStatus(status) {
				return fmt.Errorf("invalid --status %q", status)
			}
			if alertType != "" && !models.IsValidAlertType(alertType) {
				return fmt.Errorf("invalid --type %q", alertType)
			}
			result, err := newClient().ListAlerts(cmd.Context(), status, alertType, page, pageSize)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, result)
			}
			if len(result.Data) == 0 {
				fmt.Fprintln(out, "No alerts found.")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tMATERIAL\tTYPE\tSTOCK\tTHRESHOLD\tSTATUS\tRAISED")
			for _, a := range result.Data {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
					a.ID, a.MaterialID, a.AlertType, a.CurrentStock, a.SafeThreshold, a.Status, formatTime(a.AlertTime))
			}
			_ = tw.Flush()
			fmt.Fprintf(out, "\nPage %d of %d (%d alerts)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "unhandled", "filter by status (unhandled, handled; empty for all)")
	cmd.Flags().StringVar(&alertType, "type", "", "filter by type (predicted_shortage, low_stock)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page (max 100)")
	return cmd
}

func recommendationsCmd() *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "recommendations",
		Short: "Show purchase recommendations",
		Long: `List unhandled recent alerts with the quantity needed to get back to the
safe minimum and the supplier to order from. --export writes an xlsx workbook.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			out := cmd.OutOrStdout()

			if exportPath != "" {
				f, err := os.Create(exportPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", exportPath, err)
				}
				n, err := c.ExportRecommendations(cmd.Context(), f)
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s (%d bytes)\n", exportPath, n)
				return nil
			}

			recs, err := c.ListRecommendations(cmd.Context())
			if err != nil {
				return err
			}
			if wantJSON() {
				return printJSON(out, recs)
			}
			if len(recs) == 0 {
				fmt.Fprintln(out, "No purchase recommendations.")
				return nil
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "MATERIAL\tNAME\tTYPE\tPREDICTED\tTHRESHOLD\tORDER QTY\tSUPPLIER\tPHONE")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
					r.MaterialID, r.MaterialName, r.AlertType, r.PredictedStock, r.SafeThreshold,
					r.RequiredQuantity, r.SupplierName, r.Phone)
			}
			_ = tw.Flush()
			return nil
		},
	}
	cmd.Flags().StringVar(&exportPath, "export", "", "write the list to this xlsx file instead of printing it")
	return cmd
}

func handleCmd() *cobra.Command {
	var remark string
	cmd := &cobra.Command{
		Use:   "handle <alert-id>",
		Short: "Mark an alert as handled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().HandleAlert(cmd.Context(), args[0], remark); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alert %s handled\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&remark, "remark", "", "handling remark, e.g. the purchase order number")
	return cmd
}

func accuracyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accuracy",
		Short: "Show forecast accuracy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := newClient().GetAccuracy(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, stats)
			}
			if stats.TotalPredictions == 0 {
				fmt.Fprintln(out, "No elapsed shortage predictions to evaluate yet.")
				return nil
			}
			fmt.Fprintf(out, "Predictions evaluated: %d (horizon %d days)\n", stats.TotalPredictions, stats.HorizonDays)
			fmt.Fprintf(out, "Accurate: %d (%.1f%%)\n", stats.AccurateCount, stats.AccuracyRate)
			fmt.Fprintf(out, "Mean absolute error: %.2f\n", stats.AvgAbsError)
			return nil
		},
	}
}
