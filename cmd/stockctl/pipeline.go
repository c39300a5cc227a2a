package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockwise/internal/services"
)

func snapshotCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record today's stock snapshot",
		Long:  `Upsert one snapshot per active material for today, or for --as-of (YYYY-MM-DD).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClient().RunSnapshots(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.State)
			fmt.Fprintf(out, "Snapshots recorded for %s: %d\n", result.AsOf.Format("2006-01-02"), result.Recorded)
			if result.Message != "" {
				fmt.Fprintln(out, result.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "snapshot day (YYYY-MM-DD, default today)")
	return cmd
}

func forecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Run a forecasting cycle",
		Long:  `Ensure snapshot history, project every active material and raise shortage alerts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClient().RunForecast(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, result)
			}

			fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.State)
			if result.Message != "" {
				fmt.Fprintln(out, result.Message)
			}
			fmt.Fprintf(out, "Projected: %d  Alerts raised: %d  Refreshed: %d  Low stock: %d\n",
				result.ProjectedCount, result.AlertsRaised, result.AlertsRefreshed, result.LowStockAlerts)

			if len(result.Projections) > 0 {
				fmt.Fprintln(out)
				tw := newTable(out)
				fmt.Fprintln(tw, "MATERIAL\tCURRENT\tDAILY RATE\tPROJECTED\tPOINTS")
				for _, p := range result.Projections {
					fmt.Fprintf(tw, "%s\t%.2f\t%+.4f\t%.2f\t%d\n",
						p.MaterialID, p.CurrentStock, p.DailyRate, p.ProjectedStock, p.DataPoints)
				}
				_ = tw.Flush()
			}
			printSkipped(out, result.Skipped)
			return nil
		},
	}
}

func anomaliesCmd() *cobra.Command {
	var windowDays int
	var materialID string
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Run an anomaly scan",
		Long:  `Score recent outbound transactions per material and flag z-score outliers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if windowDays < 0 || windowDays > 90 {
				return fmt.Errorf("--window-days must be between 1 and 90")
			}
			result, err := newClient().RunAnomalies(cmd.Context(), services.AnomalyScan{
				WindowDays: windowDays,
				MaterialID: materialID,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, result)
			}

			fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.State)
			if result.Message != "" {
				fmt.Fprintln(out, result.Message)
			}
			fmt.Fprintf(out, "Window: %d days  Scanned: %d  Materials evaluated: %d  New flags: %d\n",
				result.WindowDays, result.ScannedCount, result.EvaluatedMaterials, result.NewFlags)

			if len(result.Flags) > 0 {
				fmt.Fprintln(out)
				tw := newTable(out)
				fmt.Fprintln(tw, "RECORD\tMATERIAL\tQUANTITY\tMEAN\tZ\tTIME")
				for _, f := range result.Flags {
					fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
						f.RecordID, f.MaterialID, f.Quantity, f.Mean, f.ZScore, formatTime(f.OperationTime))
				}
				_ = tw.Flush()
			}
			printSkipped(out, result.Skipped)
			return nil
		},
	}
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "days of transactions to scan (default: server setting)")
	cmd.Flags().StringVar(&materialID, "material", "", "scan only this material")
	return cmd
}

func maintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Prune stale alerts and snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := newClient().RunMaintenance(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wantJSON() {
				return printJSON(out, result)
			}
			fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.State)
			fmt.Fprintf(out, "Pruned shortage alerts: %d  low stock alerts: %d  snapshots: %d\n",
				result.ShortageAlerts, result.LowStockAlerts, result.PrunedSnapshots)
			return nil
		},
	}
}
