package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/conveyor/internal/pipeline/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running conveyor instance",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	url := fmt.Sprintf("http://localhost:%d/health/detailed", cfg.Server.Port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Failed to reach conveyor instance", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		slog.Error("Failed to decode status response", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATUS\tBATCHES\tPENDING RETRY\tUPDATED")
	_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
		report.Status, report.BatchesRun, report.PendingRetry,
		report.UpdatedAt.Format(time.RFC3339))
	_ = w.Flush()

	if report.LastBatch != nil {
		fmt.Printf("\nLast batch %s: %d/%d succeeded in %s\n",
			report.LastBatch.BatchID,
			report.LastBatch.Succeeded, report.LastBatch.Total,
			report.LastBatch.Elapsed)
	}
}
