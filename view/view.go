// Package view provides client-side sorting and pagination over query
// results, matching what the interactive front end does with them. The
// store itself never orders or pages.
package view

import (
	"fmt"
	"sort"

	"github.com/aluiziolira/go-books-catalog/models"
)

// Order names one of the fixed sort choices offered to the user.
type Order string

const (
	RatingLowToHigh Order = "Rating Low to High"
	RatingHighToLow Order = "Rating High to Low"
	PriceLowToHigh  Order = "Price Low to High"
	PriceHighToLow  Order = "Price High to Low"
)

// Orders lists the selectable sort choices in menu order.
func Orders() []Order {
	return []Order{RatingLowToHigh, RatingHighToLow, PriceLowToHigh, PriceHighToLow}
}

// Sort returns a sorted copy of books. Rating sorts compare the rating
// words as plain text, and their direction is inverted relative to the
// labels: "Low to High" produces a descending text sort. Both quirks are
// carried over from the existing front end so results stay identical.
// TODO: confirm the intended rating direction with the UI owners before
// changing it here.
func Sort(books []*models.Book, order Order) ([]*models.Book, error) {
	out := make([]*models.Book, len(books))
	copy(out, books)

	switch order {
	case RatingLowToHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case RatingHighToLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	case PriceLowToHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case PriceHighToLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default:
		return nil, fmt.Errorf("unknown sort order %q", order)
	}
	return out, nil
}

// Paginate slices books into consecutive pages of pageSize records. The
// final page may be short; no books yields no pages.
func Paginate(books []*models.Book, pageSize int) [][]*models.Book {
	if pageSize <= 0 || len(books) == 0 {
		return nil
	}

	pages := make([][]*models.Book, 0, (len(books)+pageSize-1)/pageSize)
	for start := 0; start < len(books); start += pageSize {
		end := start + pageSize
		if end > len(books) {
			end = len(books)
		}
		pages = append(pages, books[start:end])
	}
	return pages
}

// Page returns the 1-based page of books, or an empty slice when the
// page is past the end.
func Page(books []*models.Book, pageSize, page int) []*models.Book {
	pages := Paginate(books, pageSize)
	if page < 1 || page > len(pages) {
		return nil
	}
	return pages[page-1]
}

// TotalPages reports how many pages a result set spans at the given page
// size. An empty result still counts as one page, matching the front
// end's page selector.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := total / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
