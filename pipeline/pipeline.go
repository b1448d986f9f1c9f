// Package pipeline coordinates validation, de-duplication, and record
// writing between the scraper and its sinks.
package pipeline

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-books-catalog/models"
	"github.com/aluiziolira/go-books-catalog/parser"
)

// RecordWriter receives one fully normalized record per call.
type RecordWriter interface {
	Write(book *models.Book) error
}

// WriterFunc adapts a plain function to the RecordWriter interface.
type WriterFunc func(book *models.Book) error

// Write calls f(book).
func (f WriterFunc) Write(book *models.Book) error {
	return f(book)
}

// OutputWriter is a RecordWriter bound to an external file that must be
// flushed and sanity-checked after the run.
type OutputWriter interface {
	RecordWriter
	Close() error
	Validate() error
}

// Stats summarizes what the pipeline did with the records it saw.
type Stats struct {
	Processed int
	Skipped   map[string]int
}

// Pipeline feeds validated records to a sink, dropping duplicates along
// the way. The whole scrape is single-threaded, so the pipeline is
// strictly synchronous: Process writes through before returning.
type Pipeline struct {
	sink   RecordWriter
	mirror OutputWriter
	seen   *lru.Cache[string, struct{}]
	stats  Stats
}

// New builds a pipeline writing to sink. mirror may be nil; when set,
// every record written to the sink is also appended to it.
func New(sink RecordWriter, mirror OutputWriter, dedupeSize int) (*Pipeline, error) {
	if sink == nil {
		return nil, fmt.Errorf("pipeline sink is required")
	}
	seen, err := lru.New[string, struct{}](dedupeSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}
	return &Pipeline{
		sink:   sink,
		mirror: mirror,
		seen:   seen,
		stats:  Stats{Skipped: make(map[string]int)},
	}, nil
}

// Process validates and writes one record. Invalid or duplicate records
// are dropped and counted, not treated as errors; a sink write failure
// propagates to the caller.
func (p *Pipeline) Process(book *models.Book) error {
	if err := parser.ValidateBook(book); err != nil {
		p.stats.Skipped["invalid_record"]++
		return nil
	}

	if book.URL != "" {
		if _, dup := p.seen.Get(book.URL); dup {
			p.stats.Skipped["duplicate_url"]++
			return nil
		}
		p.seen.Add(book.URL, struct{}{})
	}

	if err := p.sink.Write(book); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if p.mirror != nil {
		if err := p.mirror.Write(book); err != nil {
			return fmt.Errorf("mirror record: %w", err)
		}
	}

	p.stats.Processed++
	return nil
}

// Close flushes the mirror writer, if any, and verifies it produced
// output.
func (p *Pipeline) Close() error {
	if p.mirror == nil {
		return nil
	}
	if err := p.mirror.Close(); err != nil {
		return fmt.Errorf("close mirror: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	out := Stats{
		Processed: p.stats.Processed,
		Skipped:   make(map[string]int, len(p.stats.Skipped)),
	}
	for k, v := range p.stats.Skipped {
		out.Skipped[k] = v
	}
	return out
}
