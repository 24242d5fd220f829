package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nao1215/ecbcrawl/internal/config"
	"github.com/nao1215/ecbcrawl/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List previous crawl runs",
		Long: `History lists the runs recorded by the crawl command, newest first.

Runs that collected no documents, or whose statistics show that the site
markup may have changed, are flagged. A silent empty result usually means
the selectors no longer match.

Pass a run ID to show the per-year statistics of that run.

Examples:
  # List the last 20 runs
  ecbcrawl history

  # List every run
  ecbcrawl history --limit 0

  # Show one run
  ecbcrawl history 0b6c1c4e-5c1a-4f0e-8d8e-2f4a7e9b1d3a`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No crawl runs recorded yet.")
		return nil
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if len(args) == 1 {
		run, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeRunDetail(out, run)
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl runs recorded yet.")
		return nil
	}
	return writeRunList(out, runs)
}

// writeRunList prints one line per run.
func writeRunList(out io.Writer, runs []database.RunRecord) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tDURATION\tYEARS\tDOCS\tLISTED\tSTATUS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Duration().Round(time.Second),
			formatYears(run.Years),
			run.Documents,
			run.Listed,
			runStatus(run),
		)
	}
	return tw.Flush()
}

// writeRunDetail prints the per-year statistics of one run.
func writeRunDetail(out io.Writer, run *database.RunRecord) error {
	fmt.Fprintf(out, "Run:      %s\n", run.RunID)
	fmt.Fprintf(out, "Listing:  %s\n", run.ListingURL)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Duration: %s\n", run.Duration().Round(time.Second))
	fmt.Fprintf(out, "Status:   %s\n\n", runStatus(*run))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tLISTED\tKEPT\tNON-HTML\tERRORS\tFETCHED\tFETCH ERRORS\tFLAGS")
	for _, ys := range run.Stats.Years {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			formatYears([]int{ys.Year}),
			ys.Listed, ys.Kept, ys.NonHTML, ys.ExtractErrors,
			ys.Fetched, ys.FetchErrors,
			yearFlags(ys.SectionMismatch, ys.YearFilterFailed, ys.ScrollBoundHit, ys.CapReached, ys.DiscoveryError != ""),
		)
	}
	return tw.Flush()
}

// runStatus summarizes how a run ended.
func runStatus(run database.RunRecord) string {
	var flags []string
	if run.Canceled {
		flags = append(flags, "canceled")
	}
	if run.Documents == 0 {
		flags = append(flags, "EMPTY")
	}
	if run.Anomalies {
		flags = append(flags, "check selectors")
	}
	if len(flags) == 0 {
		return "ok"
	}
	return strings.Join(flags, ", ")
}

// yearFlags lists the notable conditions of a year batch.
func yearFlags(mismatch, filterFailed, scrollBound, capReached, discoveryFailed bool) string {
	var flags []string
	if mismatch {
		flags = append(flags, "mismatch")
	}
	if filterFailed {
		flags = append(flags, "filter failed")
	}
	if scrollBound {
		flags = append(flags, "scroll bound")
	}
	if discoveryFailed {
		flags = append(flags, "discovery failed")
	}
	if capReached {
		flags = append(flags, "cap")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ", ")
}

// formatYears renders year batches, with 0 as "all".
func formatYears(years []int) string {
	parts := make([]string, 0, len(years))
	for _, y := range years {
		if y == 0 {
			parts = append(parts, "all")
			continue
		}
		parts = append(parts, strconv.Itoa(y))
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ",")
}
