// Package models defines data structures shared across the scraper and store.
package models

import "time"

// Book is one catalogue record. ID and the timestamps are assigned by the
// store at insert time and are zero-valued on freshly scraped records.
type Book struct {
	ID          int64     `csv:"-" json:"id,omitempty"`
	Title       string    `csv:"title" json:"title"`
	Price       float64   `csv:"price" json:"price"`
	Rating      string    `csv:"rating" json:"rating"`
	Description string    `csv:"description" json:"description"`
	URL         string    `csv:"url" json:"url"`
	CreatedAt   time.Time `csv:"-" json:"created_at,omitempty"`
	UpdatedAt   time.Time `csv:"-" json:"updated_at,omitempty"`
}

// ScrapeResult holds the overall result of a scraping run.
type ScrapeResult struct {
	StartTime    time.Time
	EndTime      time.Time
	PageCount    int
	RequestCount int
	StoredCount  int
	ErrorCount   int
	ErrorsByType map[string]int
}
