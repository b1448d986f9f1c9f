// Package config holds scraper and store configuration.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the settings for one scrape-and-query run.
type Config struct {
	BaseURL       string
	CataloguePath string // path prefix shared by listing and detail pages
	MaxPages      int
	Timeout       time.Duration
	UserAgent     string

	DatabasePath string // SQLite DSN or file path

	ExportFile   string // optional flat-file mirror of inserted records
	ExportFormat string // csv, json, or dual

	DedupeMaxSize int
	MetricsAddr   string
	Verbose       bool
}

// DefaultConfig returns the compiled-in defaults for the demo target.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "http://books.toscrape.com",
		CataloguePath: "catalogue",
		MaxPages:      50,
		Timeout:       10 * time.Second,
		UserAgent:     "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		DatabasePath:  "data/books.db",
		ExportFile:    "",
		ExportFormat:  "csv",
		DedupeMaxSize: 2048,
		MetricsAddr:   "",
		Verbose:       false,
	}
}

// PageURL returns the absolute URL of the nth catalogue listing page.
func (c *Config) PageURL(page int) string {
	return fmt.Sprintf("%s/%s/page-%d.html", c.BaseURL, c.CataloguePath, page)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if c.CataloguePath == "" {
		return fmt.Errorf("catalogue path cannot be empty")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.ExportFile != "" && c.ExportFormat != "csv" && c.ExportFormat != "json" && c.ExportFormat != "dual" {
		return fmt.Errorf("export format must be csv, json, or dual")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe cache size must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
