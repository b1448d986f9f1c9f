package store

import (
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-books-catalog/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateSchemaIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Open already ran it once; a second run must not fail.
	if err := s.CreateSchema(); err != nil {
		t.Fatalf("second CreateSchema: %v", err)
	}
}

func TestIsEmpty(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Fatalf("fresh table should be empty")
	}

	book := &models.Book{
		Title:       "A Light in the Attic",
		Price:       51.77,
		Rating:      "Three",
		Description: "A tender story.",
	}
	if err := s.Insert(book); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	empty, err = s.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty after insert: %v", err)
	}
	if empty {
		t.Fatalf("table with one row should not be empty")
	}
}

func TestInsertAssignsTimestamps(t *testing.T) {
	s := newTestStore(t)

	book := &models.Book{Title: "T", Price: 1.00, Rating: "One", Description: "D"}
	if err := s.Insert(book); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var created, updated string
	err := s.db.QueryRow(`SELECT created_at, updated_at FROM books WHERE title = ?`, "T").
		Scan(&created, &updated)
	if err != nil {
		t.Fatalf("query timestamps: %v", err)
	}
	if created == "" || updated == "" {
		t.Fatalf("timestamps not defaulted: created=%q updated=%q", created, updated)
	}
}

func TestInsertAllowsDuplicateTitles(t *testing.T) {
	s := newTestStore(t)

	book := &models.Book{Title: "Same", Price: 2.00, Rating: "Two", Description: "D"}
	if err := s.Insert(book); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.Insert(book); err != nil {
		t.Fatalf("duplicate insert should succeed: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func seedSearchFixture(t *testing.T, s *Store) {
	t.Helper()
	books := []*models.Book{
		{Title: "A Light in the Attic", Price: 51.77, Rating: "Three", Description: "Poems for children."},
		{Title: "Soumission", Price: 50.10, Rating: "One", Description: "A novel."},
		{Title: "Sharp Objects", Price: 47.82, Rating: "Four", Description: "Lightning-paced thriller."},
	}
	for _, b := range books {
		if err := s.Insert(b); err != nil {
			t.Fatalf("insert fixture %q: %v", b.Title, err)
		}
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	seedSearchFixture(t, s)

	results, err := s.Search("Light")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	// Title match and description match, in insert order.
	if results[0].Title != "A Light in the Attic" {
		t.Errorf("first result = %q", results[0].Title)
	}
	if results[1].Title != "Sharp Objects" {
		t.Errorf("second result = %q", results[1].Title)
	}

	none, err := s.Search("Zzyzx")
	if err != nil {
		t.Fatalf("Search no match: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no results, got %d", len(none))
	}
}

func TestAllReturnsInsertOrder(t *testing.T) {
	s := newTestStore(t)
	seedSearchFixture(t, s)

	books, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("books = %d, want 3", len(books))
	}
	if books[0].Title != "A Light in the Attic" || books[1].Title != "Soumission" {
		t.Fatalf("unexpected order: %q, %q", books[0].Title, books[1].Title)
	}
	if books[0].Price != 51.77 {
		t.Errorf("price = %v, want 51.77", books[0].Price)
	}
	if books[1].Rating != "One" {
		t.Errorf("rating = %q, want One", books[1].Rating)
	}
}
