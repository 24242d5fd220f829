package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/ecbcrawl/internal/browser"
	"github.com/nao1215/ecbcrawl/internal/config"
	"github.com/nao1215/ecbcrawl/internal/database"
	"github.com/nao1215/ecbcrawl/internal/log"
)

const testListing = `<!DOCTYPE html><html><body>
<div class="dl-wrapper"><dl>
<dt>4 March 2024</dt><dd><div class="category">Press release</div><div class="title"><a href="/press/pr1.en.html">Monetary policy decisions</a></div></dd>
<dt>1 March 2024</dt><dd><div class="title"><a href="/pub/report.en.pdf">Annual report</a></div></dd>
<dt>28 February 2024</dt><dd><div class="category">Speech</div><div class="title"><a href="/press/sp1.en.html">Opening remarks</a></div></dd>
</dl></div>
<div class="lazy-load-hit"></div>
</body></html>`

// newTestSite serves a listing with two HTML documents and one PDF.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/index.html":       testListing,
		"/press/pr1.en.html": `<html><body><div class="section"><p>Rates unchanged.</p></div><div class="footnotes">1. Note</div></body></html>`,
		"/press/sp1.en.html": `<html><body><div class="section"><p>Good morning.</p></div></body></html>`,
	}
	mux := http.NewServeMux()
	for path, page := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(page))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestConfig returns a config crawling srv without delays.
func newTestConfig(t *testing.T, srv *httptest.Server) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.ListingURL = srv.URL + "/index.html"
	cfg.Static = true
	cfg.DBDir = t.TempDir()
	cfg.Timing = config.Timing{PageLoadTimeout: 5 * time.Second, ClickTimeout: time.Second}
	return cfg
}

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	tests := []struct {
		name      string
		shorthand string
	}{
		{name: "year", shorthand: "y"},
		{name: "max-count", shorthand: "n"},
		{name: "static"},
		{name: "remote-url"},
		{name: "browser-bin"},
		{name: "headful"},
		{name: "page-load-timeout", shorthand: "t"},
		{name: "config", shorthand: "c"},
		{name: "json", shorthand: "j"},
		{name: "markdown", shorthand: "m"},
		{name: "output", shorthand: "o"},
		{name: "no-history"},
		{name: "db-dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}

	t.Run("rejects positional arguments", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"extra"}); err == nil {
			t.Error("expected error for positional argument")
		}
	})
}

// TestBuildConfig tests flag and config file precedence.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "ecbcrawl.yaml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		return path
	}

	parse := func(t *testing.T, args ...string) (*config.Config, error) {
		t.Helper()
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		return buildConfig(cmd)
	}

	t.Run("file values apply when flags are unset", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "years: [2023]\nmaxCount: 7\ntiming:\n  pageLoadTimeout: 10s\n")
		cfg, err := parse(t, "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Years) != 1 || cfg.Years[0] != 2023 {
			t.Errorf("got years %v", cfg.Years)
		}
		if cfg.MaxCount != 7 {
			t.Errorf("got max count %d", cfg.MaxCount)
		}
		if cfg.Timing.PageLoadTimeout != 10*time.Second {
			t.Errorf("got page load timeout %v", cfg.Timing.PageLoadTimeout)
		}
	})

	t.Run("flags override the file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "years: [2023]\nmaxCount: 7\n")
		cfg, err := parse(t, "-c", path, "--year", "2022", "--year", "2024", "-n", "0", "-t", "3s")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Years) != 2 || cfg.Years[0] != 2022 || cfg.Years[1] != 2024 {
			t.Errorf("got years %v", cfg.Years)
		}
		if cfg.MaxCount != 0 {
			t.Errorf("got max count %d", cfg.MaxCount)
		}
		if cfg.Timing.PageLoadTimeout != 3*time.Second {
			t.Errorf("got page load timeout %v", cfg.Timing.PageLoadTimeout)
		}
	})

	t.Run("session and report flags", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		path := writeConfig(t, "{}\n")
		cfg, err := parse(t, "-c", path, "--static", "--headful", "--json", "-o", "out.json", "--no-history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Static || cfg.Headless || !cfg.JSONReport || cfg.ReportFile != "out.json" {
			t.Errorf("unexpected config %+v", cfg)
		}
		if cfg.SaveToDB || cfg.DBDir != dbDir {
			t.Errorf("unexpected journal settings: save=%v dir=%q", cfg.SaveToDB, cfg.DBDir)
		}
		if len(cfg.Years) != 1 || cfg.Years[0] != 0 {
			t.Errorf("expected unfiltered default, got %v", cfg.Years)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		_, err := parse(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid config file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "years: [not-a-year\n")
		if _, err := parse(t, "-c", path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

// TestRunCrawl tests a whole run against a local site.
func TestRunCrawl(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON report and records the run", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		cfg := newTestConfig(t, srv)
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.json")

		var stdout bytes.Buffer
		err := runCrawl(context.Background(), cfg, browser.NewStaticSession(), log.Discard(), &stdout)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout.Len() != 0 {
			t.Errorf("expected nothing on stdout when writing to a file, got %q", stdout.String())
		}

		data, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var got struct {
			RunID     string `json:"run_id"`
			Documents []struct {
				Title   string `json:"title"`
				Text    string `json:"text"`
				WebLink string `json:"web_link"`
			} `json:"documents"`
		}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if len(got.Documents) != 2 {
			t.Fatalf("got %d documents, expected 2", len(got.Documents))
		}
		if got.Documents[0].Title != "Monetary policy decisions" {
			t.Errorf("unexpected first title %q", got.Documents[0].Title)
		}
		if !strings.Contains(got.Documents[0].Text, "Rates unchanged.") || !strings.Contains(got.Documents[0].Text, "1. Note") {
			t.Errorf("unexpected text %q", got.Documents[0].Text)
		}
		for _, doc := range got.Documents {
			if !strings.HasSuffix(doc.WebLink, ".html") {
				t.Errorf("non-HTML link %q in result", doc.WebLink)
			}
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		run, err := db.GetRun(context.Background(), got.RunID)
		if err != nil {
			t.Fatalf("run not recorded: %v", err)
		}
		if run.Documents != 2 || run.Canceled {
			t.Errorf("unexpected run record %+v", run)
		}
	})

	t.Run("simple report on stdout without history", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		cfg := newTestConfig(t, srv)
		cfg.SaveToDB = false

		var stdout bytes.Buffer
		if err := runCrawl(context.Background(), cfg, browser.NewStaticSession(), log.Discard(), &stdout); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "Opening remarks") {
			t.Errorf("expected document title in report, got %q", stdout.String())
		}
		if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected no database with history disabled")
		}
	})

	t.Run("interrupted run still reports and records", func(t *testing.T) {
		t.Parallel()

		srv := newTestSite(t)
		cfg := newTestConfig(t, srv)
		cfg.MarkdownReport = true

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var stdout bytes.Buffer
		err := runCrawl(ctx, cfg, browser.NewStaticSession(), log.Discard(), &stdout)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if stdout.Len() == 0 {
			t.Error("expected a report for the interrupted run")
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		runs, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || !runs[0].Canceled {
			t.Errorf("expected one canceled run, got %+v", runs)
		}
	})
}

func TestNewSessionStatic(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Static = true

	session, err := newSession(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer session.Close()

	if _, ok := session.(*browser.StaticSession); !ok {
		t.Errorf("expected a static session, got %T", session)
	}
}
