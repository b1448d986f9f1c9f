package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-books-catalog/config"
	"github.com/aluiziolira/go-books-catalog/models"
	"github.com/aluiziolira/go-books-catalog/pipeline"
	"github.com/aluiziolira/go-books-catalog/scraper"
	"github.com/aluiziolira/go-books-catalog/store"
	"github.com/aluiziolira/go-books-catalog/view"
)

func main() {
	defaultCfg := config.DefaultConfig()
	pagesDefault := defaultCfg.MaxPages
	if value, ok, err := config.EnvInt("SCRAPER_PAGES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SCRAPER_PAGES: %v\n", err)
		os.Exit(1)
	} else if ok {
		pagesDefault = value
	}
	dbDefault := defaultCfg.DatabasePath
	if value, ok := config.EnvString("SCRAPER_DB"); ok {
		dbDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("SCRAPER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	baseURL := flag.String("base-url", defaultCfg.BaseURL, "Base URL of the book catalogue")
	maxPages := flag.Int("pages", pagesDefault, "Catalogue pages to scrape")
	dbPath := flag.String("db", dbDefault, "SQLite database path")
	exportFile := flag.String("export", "", "Optional file mirroring inserted records")
	exportFormat := flag.String("format", defaultCfg.ExportFormat, "Export format: csv, json, or dual")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	search := flag.String("search", "", "Substring to search in title or description")
	order := flag.String("order", string(view.RatingLowToHigh), "Sort order for displayed results")
	page := flag.Int("page", 1, "Result page to display")
	pageSize := flag.Int("page-size", 25, "Results per page")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.MaxPages = *maxPages
	cfg.DatabasePath = *dbPath
	cfg.ExportFile = *exportFile
	cfg.ExportFormat = strings.ToLower(*exportFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("close store", slog.Any("error", err))
		}
	}()

	empty, err := st.IsEmpty()
	if err != nil {
		slog.Error("checking store", slog.Any("error", err))
		os.Exit(1)
	}
	if empty {
		if err := runScrape(cfg, st); err != nil {
			slog.Error("scraping failed", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		slog.Info("store already populated, skipping scrape", slog.String("db", cfg.DatabasePath))
	}

	books, err := queryBooks(st, *search)
	if err != nil {
		slog.Error("querying store", slog.Any("error", err))
		os.Exit(1)
	}

	sorted, err := view.Sort(books, view.Order(*order))
	if err != nil {
		slog.Error("sorting results", slog.Any("error", err))
		os.Exit(1)
	}

	printPage(sorted, *pageSize, *page)
}

// runScrape populates an empty store. The emptiness precondition is the
// caller's responsibility; the scraper itself only appends.
func runScrape(cfg *config.Config, st *store.Store) error {
	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	mirror, err := createMirror(cfg)
	if err != nil {
		return fmt.Errorf("creating export writer: %w", err)
	}

	pipe, err := pipeline.New(pipeline.WriterFunc(st.Insert), mirror, cfg.DedupeMaxSize)
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("pages", cfg.MaxPages),
	)

	result, runErr := s.Run(ctx, pipe)

	if err := pipe.Close(); err != nil {
		slog.Error("pipeline shutdown failed", slog.Any("error", err))
	}
	if mirror != nil && runErr == nil {
		if err := mirror.Validate(); err != nil {
			slog.Error("export validation failed", slog.Any("error", err))
		}
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, pipe.Stats())
	return runErr
}

func createMirror(cfg *config.Config) (pipeline.OutputWriter, error) {
	if cfg.ExportFile == "" {
		return nil, nil
	}
	switch cfg.ExportFormat {
	case "json":
		return pipeline.NewJSONWriter(cfg.ExportFile)
	case "csv":
		return pipeline.NewCSVWriter(cfg.ExportFile)
	case "dual":
		jsonFilename := strings.TrimSuffix(cfg.ExportFile, ".csv") + ".json"
		return pipeline.NewDualWriter(cfg.ExportFile, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", cfg.ExportFormat)
	}
}

func queryBooks(st *store.Store, search string) ([]*models.Book, error) {
	if search != "" {
		return st.Search(search)
	}
	return st.All()
}

func printPage(books []*models.Book, pageSize, page int) {
	total := view.TotalPages(len(books), pageSize)
	if page > total {
		page = total
	}
	fmt.Printf("Page %d of %d (%d records)\n\n", page, total, len(books))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tPRICE\tRATING\tDESCRIPTION")
	for _, b := range view.Page(books, pageSize, page) {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", b.Title, b.Price, b.Rating, truncate(b.Description, 80))
	}
	w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func printSummary(result *models.ScrapeResult, stats pipeline.Stats) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	duration := result.EndTime.Sub(result.StartTime)
	fmt.Printf("  Pages fetched:  %d\n", result.PageCount)
	fmt.Printf("  Requests:       %d\n", result.RequestCount)
	fmt.Printf("  Records stored: %d\n", result.StoredCount)
	fmt.Printf("  Errors:         %d\n", result.ErrorCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:    %v\n", result.ErrorsByType)
	}
	if len(stats.Skipped) > 0 {
		fmt.Printf("  Skipped:        %v\n", stats.Skipped)
	}
	fmt.Printf("  Duration:       %v\n", duration)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
