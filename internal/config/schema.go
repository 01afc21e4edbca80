package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/blackwell-systems/minerva/internal/util"
)

const (
	defaultDBPath        = "~/.local/share/minerva/library.db"
	defaultLookupBaseURL = "https://openlibrary.org"
	defaultCoverBaseURL  = "https://covers.openlibrary.org"
	defaultCacheDir      = "~/.cache/minerva"
	defaultHTTPTimeout   = "0s"
)

// Config is the minerva configuration.
type Config struct {
	DBPath        string        `mapstructure:"db_path"`
	LookupBaseURL string        `mapstructure:"lookup_base_url"`
	CoverBaseURL  string        `mapstructure:"cover_base_url"`
	CacheDir      string        `mapstructure:"cache_dir"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"` // 0 leaves the transport default
}

// Validate checks that required settings are present and well formed.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path is empty")
	}
	for key, raw := range map[string]string{
		"lookup_base_url": c.LookupBaseURL,
		"cover_base_url":  c.CoverBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: %s %q is not an absolute URL", key, raw)
		}
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config: http_timeout must not be negative")
	}
	return nil
}

// Defaults returns the built-in configuration with paths expanded.
func Defaults() *Config {
	return &Config{
		DBPath:        util.ExpandHome(defaultDBPath),
		LookupBaseURL: defaultLookupBaseURL,
		CoverBaseURL:  defaultCoverBaseURL,
		CacheDir:      util.ExpandHome(defaultCacheDir),
	}
}
