// Package scraper drives the sequential scrape of the book catalogue:
// listing pages in fixed order, one detail fetch per item, normalized
// records emitted straight to the pipeline.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-books-catalog/config"
	"github.com/aluiziolira/go-books-catalog/models"
	"github.com/aluiziolira/go-books-catalog/parser"
	"github.com/aluiziolira/go-books-catalog/pipeline"
)

// Scraper fetches catalogue pages with colly and hands normalized records
// to a pipeline. A Scraper instance runs one scrape at a time and is not
// safe for concurrent use.
type Scraper struct {
	cfg     *config.Config
	listing *colly.Collector
	details *colly.Collector
	Metrics *Metrics

	// per-fetch scratch state, valid only inside a Visit call
	items       []parser.Summary
	description string
	parseErr    error
	fetchErr    error

	errorsByType map[string]int
	requestCount int
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	s := &Scraper{
		cfg:          cfg,
		Metrics:      NewMetrics(),
		errorsByType: make(map[string]int),
	}
	s.listing = s.newCollector(parsed.Host, "listing")
	s.details = s.newCollector(parsed.Host, "detail")

	s.listing.OnResponse(func(r *colly.Response) {
		items, err := parser.ParseListing(bytes.NewReader(r.Body))
		if err != nil {
			s.parseErr = fmt.Errorf("parse listing %s: %w", r.Request.URL, err)
			return
		}
		for i := range items {
			items[i].DetailURL = r.Request.AbsoluteURL(items[i].DetailURL)
		}
		s.items = items
	})

	s.details.OnResponse(func(r *colly.Response) {
		desc, err := parser.ParseDescription(bytes.NewReader(r.Body))
		if err != nil {
			s.parseErr = fmt.Errorf("parse detail %s: %w", r.Request.URL, err)
			return
		}
		s.description = desc
	})

	return s, nil
}

func (s *Scraper) newCollector(host, phase string) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(host),
		colly.UserAgent(s.cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(s.cfg.Timeout)
	c.IgnoreRobotsTxt = true

	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		s.requestCount++
		s.Metrics.IncRequest(phase)
	})
	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= http.StatusBadRequest {
			slog.Error("non-200 response",
				slog.Int("status", r.StatusCode),
				slog.String("url", r.Request.URL.String()),
			)
		}
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		s.fetchErr = classifyError(err, statusCode)
	})

	return c
}

// SetTransport swaps the HTTP round tripper on both collectors. Used by
// tests to serve fixture pages.
func (s *Scraper) SetTransport(rt http.RoundTripper) {
	s.listing.WithTransport(rt)
	s.details.WithTransport(rt)
}

// Run scrapes cfg.MaxPages catalogue pages in order. Each listing item
// triggers one detail fetch before the record is normalized and emitted.
// The first transport, price-parse, or sink failure aborts the run;
// records emitted before the failure stay written.
func (s *Scraper) Run(ctx context.Context, pipe *pipeline.Pipeline) (*models.ScrapeResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.ScrapeResult{
		StartTime:    time.Now(),
		ErrorsByType: s.errorsByType,
	}
	defer func() {
		result.EndTime = time.Now()
		result.RequestCount = s.requestCount
		result.StoredCount = pipe.Stats().Processed
	}()

	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageURL := s.cfg.PageURL(page)
		items, err := s.fetchListing(pageURL)
		if err != nil {
			return result, s.fail(result, fmt.Errorf("fetch listing page %d: %w", page, err))
		}

		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			book, err := s.scrapeItem(item)
			if err != nil {
				return result, s.fail(result, err)
			}
			if err := pipe.Process(book); err != nil {
				s.recordError(result, "store")
				return result, err
			}
			s.Metrics.IncBook()
		}

		result.PageCount = page
		s.Metrics.IncPage()
		slog.Info("catalogue page scraped",
			slog.Int("page", page),
			slog.Int("pages", s.cfg.MaxPages),
			slog.Int("items", len(items)),
		)
	}

	return result, nil
}

// fetchListing retrieves and parses one listing page. Pages without any
// item container yield an empty slice, not an error.
func (s *Scraper) fetchListing(pageURL string) ([]parser.Summary, error) {
	s.items = nil
	s.parseErr = nil
	s.fetchErr = nil

	if err := s.listing.Visit(pageURL); err != nil {
		if s.fetchErr != nil {
			return nil, s.fetchErr
		}
		return nil, classifyError(err, 0)
	}
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return s.items, nil
}

// scrapeItem fetches the item's detail page and builds the normalized
// record. A missing description block degrades to the sentinel inside
// the parser; a malformed price does not.
func (s *Scraper) scrapeItem(item parser.Summary) (*models.Book, error) {
	description, err := s.fetchDescription(item.DetailURL)
	if err != nil {
		return nil, fmt.Errorf("fetch detail %s: %w", item.DetailURL, err)
	}

	price, err := parser.ParsePrice(item.PriceText)
	if err != nil {
		return nil, err
	}

	return &models.Book{
		Title:       item.Title,
		Price:       price,
		Rating:      item.Rating,
		Description: description,
		URL:         item.DetailURL,
	}, nil
}

func (s *Scraper) fetchDescription(detailURL string) (string, error) {
	s.description = parser.NoDescription
	s.parseErr = nil
	s.fetchErr = nil

	if err := s.details.Visit(detailURL); err != nil {
		if s.fetchErr != nil {
			return "", s.fetchErr
		}
		return "", classifyError(err, 0)
	}
	if s.parseErr != nil {
		return "", s.parseErr
	}
	return s.description, nil
}

func (s *Scraper) fail(result *models.ScrapeResult, err error) error {
	s.recordError(result, errorTypeLabel(err))
	return err
}

func (s *Scraper) recordError(result *models.ScrapeResult, label string) {
	result.ErrorCount++
	s.errorsByType[label]++
	s.Metrics.IncError(label)
}
