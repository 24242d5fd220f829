package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default listing URL", func(t *testing.T) {
		t.Parallel()
		if cfg.ListingURL != "https://www.ecb.europa.eu/pub/pubbydate/html/index.en.html" {
			t.Errorf("unexpected ListingURL %q", cfg.ListingURL)
		}
	})

	t.Run("default years is the unfiltered listing", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Years) != 1 || cfg.Years[0] != 0 {
			t.Errorf("expected Years [0], got %v", cfg.Years)
		}
	})

	t.Run("default MaxCount is unlimited", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxCount != 0 {
			t.Errorf("expected MaxCount 0, got %d", cfg.MaxCount)
		}
	})

	t.Run("default delays", func(t *testing.T) {
		t.Parallel()
		want := Timing{
			PageLoadTimeout:   40 * time.Second,
			InitialLoadDelay:  2 * time.Second,
			ScrollInterval:    1 * time.Second,
			YearFilterDelay:   3 * time.Second,
			DocumentLoadDelay: 2 * time.Second,
			ClickTimeout:      5 * time.Second,
		}
		if cfg.Timing != want {
			t.Errorf("got %+v, expected %+v", cfg.Timing, want)
		}
	})

	t.Run("default headless with journal", func(t *testing.T) {
		t.Parallel()
		if !cfg.Headless {
			t.Error("expected Headless to be true")
		}
		if !cfg.SaveToDB || cfg.DBDir == "" {
			t.Error("expected journal to be enabled with a DB dir")
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:    "relative listing URL",
			modify:  func(c *Config) { c.ListingURL = "/pub/index.html" },
			wantErr: ErrInvalidListingURL,
		},
		{
			name:    "non-http listing URL",
			modify:  func(c *Config) { c.ListingURL = "ftp://www.ecb.europa.eu/" },
			wantErr: ErrInvalidListingURL,
		},
		{
			name:    "negative max count",
			modify:  func(c *Config) { c.MaxCount = -1 },
			wantErr: ErrInvalidMaxCount,
		},
		{
			name:    "year before listing start",
			modify:  func(c *Config) { c.Years = []int{2024, 1990} },
			wantErr: ErrInvalidYear,
		},
		{
			name:    "zero page load timeout",
			modify:  func(c *Config) { c.Timing.PageLoadTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative scroll interval",
			modify:  func(c *Config) { c.Timing.ScrollInterval = -time.Second },
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "empty selector",
			modify:  func(c *Config) { c.Selectors.Wrapper = "" },
			wantErr: ErrEmptySelector,
		},
		{
			name: "both report formats",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name: "static with remote browser",
			modify: func(c *Config) {
				c.Static = true
				c.RemoteURL = "ws://127.0.0.1:9222/devtools/browser/abc"
			},
			wantErr: ErrConflictingSessionModes,
		},
		{
			name:   "zero delays are allowed",
			modify: func(c *Config) { c.Timing.InitialLoadDelay = 0; c.Timing.ScrollInterval = 0 },
		},
		{
			name:   "mixed years",
			modify: func(c *Config) { c.Years = []int{0, 2023, 2024} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestSelectorsMerge tests partial overrides.
func TestSelectorsMerge(t *testing.T) {
	t.Parallel()

	merged := DefaultSelectors().Merge(Selectors{Wrapper: ".listing", Footnotes: "#notes"})

	if merged.Wrapper != ".listing" || merged.Footnotes != "#notes" {
		t.Errorf("overrides not applied: %+v", merged)
	}
	if merged.LazyLoad != ".lazy-load-hit" || merged.Content != ".section" {
		t.Errorf("defaults not kept: %+v", merged)
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestLoadConfigFile tests loading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.ecbcrawl")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads and applies valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".ecbcrawl")
		content := `listingURL: "https://example.com/pub/index.html"
years:
  - 2023
  - 2024
maxCount: 0
selectors:
  wrapper: ".listing"
timing:
  scrollInterval: 500ms
  yearFilterDelay: 0s
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.MaxCount == nil || *f.MaxCount != 0 {
			t.Errorf("expected explicit maxCount 0, got %v", f.MaxCount)
		}

		cfg := NewConfig()
		cfg.MaxCount = 7
		cfg.ApplyFile(f)

		if cfg.ListingURL != "https://example.com/pub/index.html" {
			t.Errorf("unexpected ListingURL %q", cfg.ListingURL)
		}
		if len(cfg.Years) != 2 || cfg.Years[1] != 2024 {
			t.Errorf("unexpected Years %v", cfg.Years)
		}
		if cfg.MaxCount != 0 {
			t.Errorf("expected MaxCount 0 from file, got %d", cfg.MaxCount)
		}
		if cfg.Selectors.Wrapper != ".listing" || cfg.Selectors.Section != "dl" {
			t.Errorf("unexpected selectors %+v", cfg.Selectors)
		}
		if cfg.Timing.ScrollInterval != 500*time.Millisecond {
			t.Errorf("unexpected ScrollInterval %v", cfg.Timing.ScrollInterval)
		}
		if cfg.Timing.YearFilterDelay != 0 {
			t.Errorf("unexpected YearFilterDelay %v", cfg.Timing.YearFilterDelay)
		}
		if cfg.Timing.DocumentLoadDelay != DefaultDocumentLoadDelay {
			t.Errorf("unset delay changed: %v", cfg.Timing.DocumentLoadDelay)
		}
		if cfg.File != f {
			t.Error("expected File to be recorded")
		}
	})

	t.Run("absent maxCount keeps current value", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".ecbcrawl")
		if err := os.WriteFile(configPath, []byte("years: [2020]\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cfg.MaxCount = 7
		cfg.ApplyFile(f)
		if cfg.MaxCount != 7 {
			t.Errorf("expected MaxCount 7, got %d", cfg.MaxCount)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".ecbcrawl")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("years: [2024]"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds file in current directory", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, DefaultConfigFile)
		if err := os.WriteFile(configPath, []byte("years: [2024]"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Chdir(dir)

		if result := FindConfigFile(""); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("unexpected XDG data dir %q", dir)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("unexpected XDG config dir %q", dir)
	}
}
