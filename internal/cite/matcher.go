package cite

import (
	"sort"
	"strings"

	"github.com/dmorey/pagechat/internal/document"
)

// Scoring constants, load-bearing like the phrase thresholds: a phrase found
// on a page contributes len/4 to that page's score, and a page is cited only
// when its score strictly exceeds the threshold.
const (
	phraseWeightDivisor = 4
	citeThreshold       = 5
)

// Match scores every page of doc against the significant phrases of
// answerText and returns the cited page numbers, ascending and unique.
// Containment is literal substring matching: case-sensitive and
// whitespace-sensitive. No phrase match anywhere means no citations.
func Match(answerText string, doc *document.Document) []int {
	phrases := ExtractPhrases(answerText)

	cited := make([]int, 0)
	for _, page := range doc.Pages() {
		score := 0.0
		for phrase := range phrases {
			if strings.Contains(page.Text, phrase) {
				score += float64(len(phrase)) / phraseWeightDivisor
			}
		}
		if score > citeThreshold {
			cited = append(cited, page.Number)
		}
	}

	sort.Ints(cited)
	return cited
}
