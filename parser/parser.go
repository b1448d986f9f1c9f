// Package parser extracts book data from catalogue HTML and normalizes
// the raw scraped fields.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-books-catalog/models"
)

// NoDescription is stored when a detail page has no description block.
const NoDescription = "No description available"

// currencyPrefixes are stripped before numeric parsing. The second form
// shows up when a UTF-8 pound sign is read as Latin-1.
var currencyPrefixes = []string{"£", "Â£"}

// PriceError reports raw price text that failed numeric conversion.
type PriceError struct {
	Raw string
	Err error
}

func (e PriceError) Error() string {
	return fmt.Sprintf("parse price %q: %v", e.Raw, e.Err)
}

func (e PriceError) Unwrap() error {
	return e.Err
}

// ParsePrice strips the currency symbol and surrounding whitespace, then
// converts the remainder to a decimal value.
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	for _, prefix := range currencyPrefixes {
		s = strings.ReplaceAll(s, prefix, "")
	}
	s = strings.TrimSpace(s)

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, PriceError{Raw: raw, Err: err}
	}
	return value, nil
}

// RatingFromClass extracts the rating token from a star-rating class
// attribute. The token is the second class, e.g. "star-rating Three"
// yields "Three". It is kept as opaque text and not validated against
// the known rating words.
func RatingFromClass(classAttr string) string {
	parts := strings.Fields(classAttr)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// ValidateBook ensures the scraper captured the required fields.
func ValidateBook(b *models.Book) error {
	if b == nil {
		return fmt.Errorf("book is nil")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book missing title")
	}
	if strings.TrimSpace(b.Rating) == "" {
		return fmt.Errorf("book missing rating for %s", b.Title)
	}
	if strings.TrimSpace(b.Description) == "" {
		return fmt.Errorf("book missing description for %s", b.Title)
	}
	return nil
}
