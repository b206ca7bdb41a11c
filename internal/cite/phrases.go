package cite

import (
	"regexp"
	"strings"
)

// Phrase window and filter thresholds. These are part of the matching
// contract, not tunables: changing them changes which pages get cited.
const (
	phraseWords  = 3
	minPhraseLen = 13 // keep phrases strictly longer than 12 characters
)

var (
	sentenceBoundary = regexp.MustCompile(`([.?!])\s+`)
	allLowercase     = regexp.MustCompile(`^[a-z\s]+$`)
)

// ExtractPhrases turns raw text into the set of candidate significant
// phrases: every 3-word window of each sentence-like unit, kept only if it
// is long enough and carries at least one uppercase letter, digit, or
// punctuation mark. All-lowercase runs are generic filler and get dropped.
func ExtractPhrases(text string) map[string]struct{} {
	phrases := make(map[string]struct{})

	for _, unit := range splitUnits(text) {
		words := strings.Fields(unit)
		if len(words) < phraseWords {
			continue
		}
		for i := 0; i+phraseWords <= len(words); i++ {
			phrase := strings.Join(words[i:i+phraseWords], " ")
			if len(phrase) >= minPhraseLen && !allLowercase.MatchString(phrase) {
				phrases[phrase] = struct{}{}
			}
		}
	}

	return phrases
}

// splitUnits cuts text at sentence terminators followed by whitespace.
// This is a heuristic boundary, not sentence parsing.
func splitUnits(text string) []string {
	return strings.Split(sentenceBoundary.ReplaceAllString(text, "$1|"), "|")
}
