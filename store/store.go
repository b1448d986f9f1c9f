// Package store persists scraped book records in SQLite and exposes the
// query surface consumed by the presentation layer.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aluiziolira/go-books-catalog/models"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Store wraps a single SQLite connection holding the books table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes
// the schema. The returned store holds a single pooled connection; there
// is never a concurrent writer.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.CreateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// CreateSchema creates the books table if it does not exist. Safe to call
// repeatedly.
func (s *Store) CreateSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsEmpty reports whether the books table currently holds zero rows.
func (s *Store) IsEmpty() (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM books)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table empty: %w", err)
	}
	return !exists, nil
}

// Insert appends one record. Timestamps default to insert time; there is
// no uniqueness constraint and no conflict handling.
func (s *Store) Insert(book *models.Book) error {
	_, err := s.db.Exec(
		`INSERT INTO books (title, price, rating, description) VALUES (?, ?, ?, ?)`,
		book.Title, book.Price, book.Rating, book.Description,
	)
	if err != nil {
		return fmt.Errorf("insert book %q: %w", book.Title, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// All returns every record in store-native order.
func (s *Store) All() ([]*models.Book, error) {
	rows, err := s.db.Query(`SELECT title, price, rating, description FROM books`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	return scanBooks(rows)
}

// Search returns all records whose title or description contains the
// given substring, in store-native order. Case sensitivity follows the
// database collation.
func (s *Store) Search(substring string) ([]*models.Book, error) {
	pattern := "%" + substring + "%"
	rows, err := s.db.Query(
		`SELECT title, price, rating, description FROM books WHERE title LIKE ? OR description LIKE ?`,
		pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]*models.Book, error) {
	defer func() { _ = rows.Close() }()

	var books []*models.Book
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.Title, &b.Price, &b.Rating, &b.Description); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book rows: %w", err)
	}
	return books, nil
}
