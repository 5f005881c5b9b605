// Package textproc holds the text routines behind disease extraction:
// merging NER subword tokens into phrases, de-duplicating them, and
// highlighting them in cleaned document text.
package textproc

import "strings"

// CleanText flattens text extracted from a PDF: newlines become spaces, runs
// of whitespace collapse to a single space, and the ends are trimmed.
func CleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// RemoveDuplicatesPreserveOrder drops case-insensitive repeats, keeping the
// first spelling seen and the original order.
func RemoveDuplicatesPreserveOrder(items []string) []string {
	unique := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}
