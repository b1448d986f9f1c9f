package pipeline

import (
	"errors"
	"testing"

	"github.com/aluiziolira/go-books-catalog/models"
)

type memoryWriter struct {
	books []*models.Book
	err   error
}

func (mw *memoryWriter) Write(book *models.Book) error {
	if mw.err != nil {
		return mw.err
	}
	mw.books = append(mw.books, book)
	return nil
}

func validBook(url string) *models.Book {
	return &models.Book{
		Title:       "Test Book",
		Price:       10.00,
		Rating:      "Two",
		Description: "A description",
		URL:         url,
	}
}

func TestPipelineRequiresSink(t *testing.T) {
	if _, err := New(nil, nil, 16); err == nil {
		t.Fatalf("expected error for nil sink")
	}
}

func TestPipelineWritesThrough(t *testing.T) {
	sink := &memoryWriter{}
	p, err := New(sink, nil, 16)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if err := p.Process(validBook("http://example.test/book-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Process(validBook("http://example.test/book-2")); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(sink.books) != 2 {
		t.Fatalf("sink books = %d, want 2", len(sink.books))
	}
	if got := p.Stats().Processed; got != 2 {
		t.Errorf("processed = %d, want 2", got)
	}
}

func TestPipelineDropsInvalid(t *testing.T) {
	sink := &memoryWriter{}
	p, err := New(sink, nil, 16)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	invalid := validBook("http://example.test/book-1")
	invalid.Title = ""

	if err := p.Process(invalid); err != nil {
		t.Fatalf("invalid record should be dropped, not an error: %v", err)
	}
	if len(sink.books) != 0 {
		t.Fatalf("sink books = %d, want 0", len(sink.books))
	}
	if got := p.Stats().Skipped["invalid_record"]; got != 1 {
		t.Errorf("invalid_record = %d, want 1", got)
	}
}

func TestPipelineDropsDuplicateURL(t *testing.T) {
	sink := &memoryWriter{}
	p, err := New(sink, nil, 16)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if err := p.Process(validBook("http://example.test/book-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := p.Process(validBook("http://example.test/book-1")); err != nil {
		t.Fatalf("process duplicate: %v", err)
	}

	if len(sink.books) != 1 {
		t.Fatalf("sink books = %d, want 1", len(sink.books))
	}
	if got := p.Stats().Skipped["duplicate_url"]; got != 1 {
		t.Errorf("duplicate_url = %d, want 1", got)
	}
}

func TestPipelineSinkErrorPropagates(t *testing.T) {
	sinkErr := errors.New("insert failed")
	p, err := New(&memoryWriter{err: sinkErr}, nil, 16)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if err := p.Process(validBook("http://example.test/book-1")); !errors.Is(err, sinkErr) {
		t.Fatalf("process error = %v, want wrapped %v", err, sinkErr)
	}
}

type memoryOutput struct {
	memoryWriter
	closed bool
}

func (mo *memoryOutput) Close() error {
	mo.closed = true
	return nil
}

func (mo *memoryOutput) Validate() error {
	return nil
}

func TestPipelineMirrors(t *testing.T) {
	sink := &memoryWriter{}
	mirror := &memoryOutput{}
	p, err := New(sink, mirror, 16)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if err := p.Process(validBook("http://example.test/book-1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(sink.books) != 1 || len(mirror.books) != 1 {
		t.Fatalf("sink=%d mirror=%d, want 1/1", len(sink.books), len(mirror.books))
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !mirror.closed {
		t.Errorf("mirror not closed")
	}
}
