package scraper

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-books-catalog/pipeline"
	"github.com/aluiziolira/go-books-catalog/store"
	"github.com/aluiziolira/go-books-catalog/view"
)

// Full path: fixture site -> scraper -> pipeline -> SQLite -> query surface.
func TestScrapeIntoStore(t *testing.T) {
	cfg := testConfig(1)
	transport := httpmock.NewMockTransport()
	registerFixtures(transport, cfg, map[int][]bookFixture{
		1: {
			{title: "A Light in the Attic", price: "£51.77", rating: "Three", slug: "a-light_1000", description: "Poems for children."},
			{title: "Soumission", price: "£50.10", rating: "One", slug: "soumission_998", description: "A novel."},
		},
	})

	st, err := store.Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	empty, err := st.IsEmpty()
	if err != nil {
		t.Fatalf("is empty: %v", err)
	}
	if !empty {
		t.Fatalf("fresh store should be empty")
	}

	s := newTestScraper(t, cfg, transport)
	p, err := pipeline.New(pipeline.WriterFunc(st.Insert), nil, cfg.DedupeMaxSize)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := s.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.StoredCount != 2 {
		t.Fatalf("stored = %d, want 2", result.StoredCount)
	}

	empty, err = st.IsEmpty()
	if err != nil {
		t.Fatalf("is empty: %v", err)
	}
	if empty {
		t.Fatalf("store should be populated after the run")
	}

	// All returns both rows in store order.
	books, err := st.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("books = %d, want 2", len(books))
	}
	if books[0].Title != "A Light in the Attic" || books[1].Title != "Soumission" {
		t.Fatalf("store order = %q, %q", books[0].Title, books[1].Title)
	}

	// The presentation layer sorts the result set itself.
	sorted, err := view.Sort(books, view.PriceLowToHigh)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if sorted[0].Title != "Soumission" || sorted[1].Title != "A Light in the Attic" {
		t.Fatalf("price ascending = %q, %q", sorted[0].Title, sorted[1].Title)
	}

	// Substring search hits titles and descriptions alike.
	matches, err := st.Search("Light")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Title != "A Light in the Attic" {
		t.Fatalf("search results = %d", len(matches))
	}
}
