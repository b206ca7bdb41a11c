package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Top-level headings
// (h1/h2) start a new page; everything else accumulates until the page
// budget fills up.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	var pageBreaks []int // indices into blocks where a new page must start

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if title == "" {
				continue
			}
			if node.Level <= 2 {
				pageBreaks = append(pageBreaks, len(blocks))
			}
			blocks = append(blocks, title)

		default:
			if t := extractText(n, src); t != "" {
				blocks = append(blocks, t)
			}
		}
	}

	return paginateSections(blocks, pageBreaks, pageCharBudget), nil
}

// paginateSections splits blocks into sections at the break indices and
// paginates each section independently, so a major heading always opens a
// fresh page.
func paginateSections(blocks []string, breaks []int, budget int) []string {
	if len(breaks) == 0 || breaks[0] != 0 {
		breaks = append([]int{0}, breaks...)
	}

	var pages []string
	for i, start := range breaks {
		end := len(blocks)
		if i+1 < len(breaks) {
			end = breaks[i+1]
		}
		pages = append(pages, paginate(blocks[start:end], budget)...)
	}
	return pages
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
