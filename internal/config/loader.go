package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".ecbcrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .ecbcrawl configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	ListingURL string `yaml:"listingURL,omitempty"`
	Years      []int  `yaml:"years,omitempty"`

	// MaxCount is a pointer so an explicit 0 (unlimited) can be told apart
	// from an absent key.
	MaxCount *int `yaml:"maxCount,omitempty"`

	UserAgent string `yaml:"userAgent,omitempty"`

	// Selectors override individual default selectors.
	Selectors Selectors `yaml:"selectors,omitempty"`

	// Timing overrides individual delays, written as Go durations ("2s").
	Timing FileTiming `yaml:"timing,omitempty"`
}

// FileTiming holds the delays that may be overridden in the config file.
type FileTiming struct {
	PageLoadTimeout   *time.Duration `yaml:"pageLoadTimeout,omitempty"`
	InitialLoadDelay  *time.Duration `yaml:"initialLoadDelay,omitempty"`
	ScrollInterval    *time.Duration `yaml:"scrollInterval,omitempty"`
	YearFilterDelay   *time.Duration `yaml:"yearFilterDelay,omitempty"`
	DocumentLoadDelay *time.Duration `yaml:"documentLoadDelay,omitempty"`
	ClickTimeout      *time.Duration `yaml:"clickTimeout,omitempty"`
}

func (ft FileTiming) apply(t Timing) Timing {
	set := func(dst *time.Duration, src *time.Duration) {
		if src != nil {
			*dst = *src
		}
	}
	set(&t.PageLoadTimeout, ft.PageLoadTimeout)
	set(&t.InitialLoadDelay, ft.InitialLoadDelay)
	set(&t.ScrollInterval, ft.ScrollInterval)
	set(&t.YearFilterDelay, ft.YearFilterDelay)
	set(&t.DocumentLoadDelay, ft.DocumentLoadDelay)
	set(&t.ClickTimeout, ft.ClickTimeout)
	return t
}

// LoadConfigFile loads the configuration file at path.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .ecbcrawl in the current directory
// 3. Look for .ecbcrawl in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}
