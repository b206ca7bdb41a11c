package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingsStartNewPages(t *testing.T) {
	input := `# Introduction

Some intro text here.

# Methods

Description of methods.

# Results

The findings.`

	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(input), "paper.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d: %v", len(pages), pages)
	}
	if !strings.Contains(pages[0], "Introduction") || !strings.Contains(pages[0], "intro text") {
		t.Errorf("page 1 should carry the intro section: %q", pages[0])
	}
	if !strings.Contains(pages[1], "Methods") {
		t.Errorf("page 2 should start at Methods: %q", pages[1])
	}
	if !strings.Contains(pages[2], "Results") {
		t.Errorf("page 3 should start at Results: %q", pages[2])
	}
}

func TestMarkdownParser_MinorHeadingsDoNotBreakPages(t *testing.T) {
	input := `# Chapter

Intro.

### Subsection

Detail text.`

	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d: %v", len(pages), pages)
	}
	if !strings.Contains(pages[0], "Subsection") {
		t.Errorf("subsection should share the chapter page: %q", pages[0])
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := "Just a plain paragraph.\n\nAnd another one."
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected 0 pages, got %d", len(pages))
	}
}

func TestHTMLParser_HeadingsAndParagraphs(t *testing.T) {
	input := `<html><head><title>T</title><style>.x{}</style></head><body>
<h1>Overview</h1>
<p>Overview text.</p>
<h1>Details</h1>
<p>Detail text.</p>
<script>ignored()</script>
</body></html>`

	p := &HTMLParser{}
	pages, err := p.Parse(strings.NewReader(input), "doc.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d: %v", len(pages), pages)
	}
	if !strings.Contains(pages[0], "Overview text.") {
		t.Errorf("page 1 missing overview: %q", pages[0])
	}
	if !strings.Contains(pages[1], "Detail text.") {
		t.Errorf("page 2 missing details: %q", pages[1])
	}
	for i, page := range pages {
		if strings.Contains(page, "ignored()") {
			t.Errorf("page %d leaked script content", i+1)
		}
	}
}

func TestCSVParser_RowBatchesBecomePages(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,amount\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("item,1\n")
	}

	p := &CSVParser{}
	pages, err := p.Parse(strings.NewReader(sb.String()), "data.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("expected 2 pages for 25 rows, got %d", len(pages))
	}
	if !strings.HasPrefix(pages[0], "Headers: name, amount") {
		t.Errorf("pages must repeat headers: %q", pages[0])
	}
	if !strings.Contains(pages[0], "name: item, amount: 1") {
		t.Errorf("rows must be labeled with headers: %q", pages[0])
	}
}

func TestForFile_UnsupportedExtension(t *testing.T) {
	if _, err := ForFile("archive.zip"); err == nil {
		t.Errorf("expected error for unsupported extension")
	}
	if IsSupportedExtension("archive.zip") {
		t.Errorf("zip must not be supported")
	}
	if !IsSupportedExtension("REPORT.PDF") {
		t.Errorf("extension check must be case-insensitive")
	}
}
