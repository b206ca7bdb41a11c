package parser

import (
	"strings"
	"unicode/utf8"
)

// pageCharBudget is the target page size for formats without native pages,
// roughly matching the text volume of a dense printed page.
const pageCharBudget = 3000

// paginate packs text blocks into pages of approximately pageCharBudget
// characters. A block never splits across pages unless it alone exceeds the
// budget, in which case it is cut at paragraph boundaries first and then
// hard-wrapped. Empty blocks are dropped; an input with no usable text
// yields no pages.
func paginate(blocks []string, budget int) []string {
	if budget <= 0 {
		budget = pageCharBudget
	}

	var pages []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			pages = append(pages, current.String())
			current.Reset()
		}
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if len(block) > budget {
			flush()
			for _, part := range splitOversized(block, budget) {
				pages = append(pages, part)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(block)+2 > budget {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(block)
	}
	flush()

	return pages
}

// splitOversized cuts a block larger than the budget at paragraph
// boundaries, falling back to a hard cut for a single huge paragraph.
func splitOversized(block string, budget int) []string {
	paragraphs := strings.Split(block, "\n\n")
	if len(paragraphs) > 1 {
		return paginate(paragraphs, budget)
	}

	var parts []string
	for len(block) > budget {
		cut := budget
		// Prefer breaking at whitespace near the budget.
		if i := strings.LastIndexAny(block[:cut], " \n\t"); i > budget/2 {
			cut = i
		}
		for cut > 0 && !utf8.RuneStart(block[cut]) {
			cut--
		}
		parts = append(parts, strings.TrimSpace(block[:cut]))
		block = strings.TrimSpace(block[cut:])
	}
	if block != "" {
		parts = append(parts, block)
	}
	return parts
}
