package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDocument means ingestion produced zero pages.
	ErrEmptyDocument = errors.New("document has no pages")
	// ErrPageNotFound means a page number outside the document was requested.
	ErrPageNotFound = errors.New("page not found")
)

// Page is one page of an ingested document.
type Page struct {
	Number int    // 1-based, contiguous
	Text   string // raw extracted text
}

// Document is the per-page index of one ingested document plus the
// marker-joined full text used as grounding context. Immutable after Build;
// a new upload replaces it wholesale.
type Document struct {
	pages    []Page
	fullText string
}

// Build pairs each page text with its page number, in input order starting
// at page 1, and precomputes the full grounding text.
func Build(pageTexts []string) (*Document, error) {
	if len(pageTexts) == 0 {
		return nil, ErrEmptyDocument
	}

	d := &Document{pages: make([]Page, 0, len(pageTexts))}
	var full strings.Builder
	for i, text := range pageTexts {
		n := i + 1
		d.pages = append(d.pages, Page{Number: n, Text: text})
		fmt.Fprintf(&full, "Page %d: %s\n\n", n, text)
	}
	d.fullText = full.String()
	return d, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Pages returns the pages in ascending order. The returned slice must not
// be mutated.
func (d *Document) Pages() []Page {
	return d.pages
}

// Lookup returns the raw text of page n.
func (d *Document) Lookup(n int) (string, error) {
	if n < 1 || n > len(d.pages) {
		return "", fmt.Errorf("page %d: %w", n, ErrPageNotFound)
	}
	return d.pages[n-1].Text, nil
}

// FullText returns the concatenation of all page texts in page order, each
// prefixed with its page marker.
func (d *Document) FullText() string {
	return d.fullText
}
