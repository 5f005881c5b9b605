package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// SpellingCorrector snaps misspelled words onto a known vocabulary.
type SpellingCorrector struct {
	vocabulary []string
	known      map[string]struct{}
}

// NewSpellingCorrector builds a corrector over lower-case vocabulary words.
func NewSpellingCorrector(vocabulary []string) *SpellingCorrector {
	known := make(map[string]struct{}, len(vocabulary))
	for _, w := range vocabulary {
		known[w] = struct{}{}
	}
	return &SpellingCorrector{vocabulary: vocabulary, known: known}
}

// Correct fixes every word of every symptom. Blank symptoms are dropped.
func (c *SpellingCorrector) Correct(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, symptom := range cleanSymptoms(symptoms) {
		words := strings.Fields(symptom)
		for i, w := range words {
			words[i] = c.CorrectWord(w)
		}
		out = append(out, strings.Join(words, " "))
	}
	return out
}

// CorrectWord returns the closest vocabulary word when it is within the
// allowed edit distance: 1 for words up to four letters, 2 otherwise.
// Known words and tokens containing anything but letters are returned as is.
func (c *SpellingCorrector) CorrectWord(word string) string {
	lower := strings.ToLower(word)
	if _, ok := c.known[lower]; ok || !isAlphabetic(lower) {
		return word
	}

	maxDistance := 2
	if utf8.RuneCountInString(lower) <= 4 {
		maxDistance = 1
	}

	best, bestDistance := "", maxDistance+1
	for _, candidate := range c.vocabulary {
		d := levenshtein.ComputeDistance(lower, candidate)
		if d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	if best == "" {
		return word
	}
	return best
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
