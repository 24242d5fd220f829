package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/ecbcrawl/internal/browser"
	"github.com/nao1215/ecbcrawl/internal/config"
	"github.com/nao1215/ecbcrawl/internal/crawler"
	"github.com/nao1215/ecbcrawl/internal/database"
	"github.com/nao1215/ecbcrawl/internal/log"
	"github.com/nao1215/ecbcrawl/internal/model"
	"github.com/nao1215/ecbcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Collect publications from the ECB listing",
		Long: `Crawl opens the ECB publications listing, scrolls until all entries are
loaded, and fetches the text of every HTML publication.

Each --year value is crawled as a separate batch in the given order. Without
--year the listing is crawled unfiltered. --max-count caps the documents
kept per batch.

Examples:
  # Crawl the whole listing with a headless browser
  ecbcrawl crawl

  # Crawl two years, at most 10 documents each
  ecbcrawl crawl --year 2023 --year 2024 --max-count 10

  # Drive an already running Chrome
  ecbcrawl crawl --remote-url ws://127.0.0.1:9222/devtools/browser/<id>

  # Fetch pages over plain HTTP and write a JSON report
  ecbcrawl crawl --static --json -o out/report.json

Configuration file (.ecbcrawl) example:
  years: [2024]
  maxCount: 20
  selectors:
    content: ".section"`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Batch flags
	cmd.Flags().IntSliceP("year", "y", nil,
		"Year to crawl (repeatable; 0 crawls without a year filter)")
	cmd.Flags().IntP("max-count", "n", 0,
		"Maximum documents kept per year batch (0 means unlimited)")

	// Session flags
	cmd.Flags().Bool("static", false,
		"Fetch pages with plain HTTP requests instead of a browser")
	cmd.Flags().String("remote-url", "",
		"DevTools URL of a running browser to connect to")
	cmd.Flags().String("browser-bin", "",
		"Chrome executable to launch (default: found or downloaded automatically)")
	cmd.Flags().Bool("headful", false,
		"Show the browser window")
	cmd.Flags().DurationP("page-load-timeout", "t", config.DefaultPageLoadTimeout,
		"Timeout for each page load")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ecbcrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Journal flags
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close browser session", "error", err)
		}
	}()

	return runCrawl(ctx, cfg, session, logger, cmd.OutOrStdout())
}

// getPersistentBool retrieves a persistent flag from the command or its root.
func getPersistentBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from defaults, the config file and the
// command flags, in that order. Flags only override the file when set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing file is only an error when the user asked for it.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("year") {
		if cfg.Years, err = flags.GetIntSlice("year"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-count") {
		if cfg.MaxCount, err = flags.GetInt("max-count"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("page-load-timeout") {
		if cfg.Timing.PageLoadTimeout, err = flags.GetDuration("page-load-timeout"); err != nil {
			return nil, err
		}
	}

	if cfg.Static, err = flags.GetBool("static"); err != nil {
		return nil, err
	}
	if cfg.RemoteURL, err = flags.GetString("remote-url"); err != nil {
		return nil, err
	}
	if cfg.BrowserBin, err = flags.GetString("browser-bin"); err != nil {
		return nil, err
	}
	headful, err := flags.GetBool("headful")
	if err != nil {
		return nil, err
	}
	cfg.Headless = !headful

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.Verbose = getPersistentBool(cmd, "verbose")
	cfg.LogJSON = getPersistentBool(cmd, "log-json")

	if len(cfg.Years) == 0 {
		cfg.Years = []int{0}
	}

	return cfg, nil
}

// newSession opens the page session selected by cfg.
func newSession(ctx context.Context, cfg *config.Config) (browser.Session, error) {
	if cfg.Static {
		return browser.NewStaticSession(
			browser.WithUserAgent(cfg.UserAgent),
			browser.WithLoadTimeout(cfg.Timing.PageLoadTimeout),
		), nil
	}

	opts := browser.RodOptions{
		Headless:        cfg.Headless,
		Bin:             cfg.BrowserBin,
		RemoteURL:       cfg.RemoteURL,
		PageLoadTimeout: cfg.Timing.PageLoadTimeout,
		ClickTimeout:    cfg.Timing.ClickTimeout,
	}
	// The browser keeps its own user agent unless the file sets one.
	if cfg.File != nil && cfg.File.UserAgent != "" {
		opts.UserAgent = cfg.File.UserAgent
	}

	session, err := browser.NewRodSession(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	return session, nil
}

// runCrawl crawls with session, then writes the report and records the run.
// An interrupted run still reports and records what was collected, and then
// returns the interruption.
func runCrawl(ctx context.Context, cfg *config.Config, session browser.Session, logger *slog.Logger, stdout io.Writer) error {
	result := model.NewCrawlResult(cfg.ListingURL, cfg.Years, cfg.MaxCount)
	logger = logger.With("run", result.RunID, "source", "ecb")

	logger.Info("starting crawl",
		"listingURL", cfg.ListingURL,
		"years", cfg.Years,
		"maxCount", cfg.MaxCount,
		"static", cfg.Static,
	)

	c := crawler.New(session,
		crawler.WithLogger(logger),
		crawler.WithListingURL(cfg.ListingURL),
		crawler.WithYears(cfg.Years),
		crawler.WithMaxCount(cfg.MaxCount),
		crawler.WithSelectors(cfg.Selectors),
		crawler.WithTiming(cfg.Timing),
	)

	docs, crawlErr := c.Run(ctx)
	result.Finish(docs, c.Stats())
	if crawlErr != nil {
		result.Canceled = errors.Is(crawlErr, context.Canceled) || errors.Is(crawlErr, context.DeadlineExceeded)
		logger.Warn("crawl interrupted", "documents", len(docs), "error", crawlErr)
	}

	logger.Info("crawl finished",
		"documents", len(result.Documents),
		"duration", result.Duration().Round(time.Millisecond),
		"anomalies", result.Stats.HasAnomalies(),
	)

	if err := outputReport(cfg, result, stdout); err != nil {
		logger.Error("report failed", "error", err)
	}

	// The journal write must not be skipped by the interruption itself.
	if err := saveRun(context.WithoutCancel(ctx), cfg, result, logger); err != nil {
		logger.Error("failed to record run", "error", err)
	}

	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// outputReport writes the result in the requested format to the report file,
// or to stdout when no file is configured.
func outputReport(cfg *config.Config, result *model.CrawlResult, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(result)
	return err
}

// saveRun records the run statistics in the history database.
// It is a no-op when history is disabled.
func saveRun(ctx context.Context, cfg *config.Config, result *model.CrawlResult, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, result); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run recorded", "db", db.Path())
	return nil
}
