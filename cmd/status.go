package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qbdaten/qbsync/internal/store"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row count and recent load runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		count, err := st.CountHospitals(ctx)
		if err != nil {
			return eris.Wrap(err, "status")
		}
		fmt.Printf("hospitals: %d rows\n\n", count)

		entries, err := st.RecentLoads(ctx, statusLimit)
		if err != nil {
			return eris.Wrap(err, "status")
		}
		if len(entries) == 0 {
			zap.L().Info("no load runs recorded yet, run 'qbsync load' first")
			return nil
		}

		formatLoadEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of load runs to show")
	rootCmd.AddCommand(statusCmd)
}

// formatLoadEntries writes a tabular representation of load runs to w.
func formatLoadEntries(out io.Writer, entries []store.LoadEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tDURATION\tFILES\tSKIPPED\tROWS\tERROR")

	for _, e := range entries {
		dur := "-"
		if e.CompletedAt != nil {
			dur = e.CompletedAt.Sub(e.StartedAt).Round(time.Second).String()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(e.ID),
			e.Status,
			e.StartedAt.Format("2006-01-02 15:04"),
			dur,
			e.FilesProcessed,
			e.FilesSkipped,
			e.RowsUpserted,
			truncate(e.Error, 60),
		)
	}
	_ = w.Flush()
}

// shortID trims a UUID to its first segment for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
