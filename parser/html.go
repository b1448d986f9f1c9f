package parser

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the books.toscrape.com markup. The site structure is
// assumed stable; a missing container yields an empty result, not an error.
const (
	itemSelector        = "article.product_pod"
	titleSelector       = "h3 a"
	priceSelector       = "p.price_color"
	ratingSelector      = "p.star-rating"
	descriptionSelector = "#product_description + p"
)

// Summary is one raw listing item before any normalization. DetailURL is
// relative to the listing page it was scraped from.
type Summary struct {
	Title     string
	PriceText string
	Rating    string
	DetailURL string
}

// ParseListing extracts all item summaries from a catalogue listing page,
// in document order. HTML with no matching item containers produces an
// empty slice.
func ParseListing(body io.Reader) ([]Summary, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var items []Summary
	doc.Find(itemSelector).Each(func(_ int, pod *goquery.Selection) {
		link := pod.Find(titleSelector).First()
		items = append(items, Summary{
			Title:     link.AttrOr("title", ""),
			PriceText: pod.Find(priceSelector).First().Text(),
			Rating:    RatingFromClass(pod.Find(ratingSelector).First().AttrOr("class", "")),
			DetailURL: link.AttrOr("href", ""),
		})
	})
	return items, nil
}

// ParseDescription extracts the description paragraph that follows the
// product_description anchor on a detail page. Pages without that block
// get the NoDescription sentinel.
func ParseDescription(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}

	sel := doc.Find(descriptionSelector).First()
	if sel.Length() == 0 {
		return NoDescription, nil
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return NoDescription, nil
	}
	return text, nil
}
