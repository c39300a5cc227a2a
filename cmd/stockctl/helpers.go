package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/viper"

	"stockwise/internal/client"
	"stockwise/internal/models"
)

const defaultTimeout = 6 * time.Minute

// newClient builds an API client from the bound flags and config.
func newClient() *client.StockwiseClient {
	timeout := viper.GetDuration("timeout")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return client.NewStockwiseClient(
		viper.GetString("api_url"),
		viper.GetString("api_key"),
		viper.GetString("token"),
		&http.Client{Timeout: timeout},
	)
}

func wantJSON() bool {
	return viper.GetString("output") == "json"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printSkipped(w io.Writer, skipped []models.SkippedMaterial) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped materials (%d):\n", len(skipped))
	tw := newTable(w)
	fmt.Fprintln(tw, "MATERIAL\tREASON")
	for _, s := range skipped {
		fmt.Fprintf(tw, "%s\t%s\n", s.MaterialID, s.Reason)
	}
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
