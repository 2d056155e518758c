package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"airlift/internal/history"
	"airlift/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:           "history",
	Short:         "Show recent upload runs",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit") //nolint:errcheck // flag name is hardcoded

	store, err := history.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no recorded runs")
		return nil
	}

	for _, rec := range records {
		status := "ok"
		if !rec.Success {
			status = "FAILED"
		}
		fmt.Fprintf(os.Stdout, "%s  %-6s  %7s files  %10s  %9s  %s\n",
			rec.StartedAt.Format("2006-01-02 15:04"),
			status,
			ui.FormatCount(rec.FilesUploaded),
			ui.FormatBytes(rec.Bytes),
			ui.FormatDuration(rec.Duration),
			rec.Source,
		)
	}
	return nil
}
