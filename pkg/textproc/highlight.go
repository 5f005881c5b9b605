package textproc

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	highlightOpen  = `<span class="highlight">`
	highlightClose = `</span>`
)

type span struct {
	start, end int
}

// HighlightDiseases cleans raw and wraps every whole-word, case-insensitive
// occurrence of each disease in a highlight span. Words inside a disease may
// be separated by any whitespace in the text. Longer diseases claim text
// first; a shorter match overlapping a claimed region is left alone. The
// returned string is HTML: text outside the spans is escaped.
func HighlightDiseases(raw string, diseases []string) string {
	text := CleanText(raw)

	unique := RemoveDuplicatesPreserveOrder(diseases)
	sort.SliceStable(unique, func(i, j int) bool {
		return utf8.RuneCountInString(unique[i]) > utf8.RuneCountInString(unique[j])
	})

	var claimed []span
	for _, disease := range unique {
		pattern := diseasePattern(disease)
		if pattern == nil {
			continue
		}
		claimed = append(claimed, findWholeWord(pattern, text, claimed)...)
	}

	sort.Slice(claimed, func(i, j int) bool { return claimed[i].start < claimed[j].start })

	var out strings.Builder
	out.Grow(len(text) + len(claimed)*(len(highlightOpen)+len(highlightClose)))
	prev := 0
	for _, m := range claimed {
		out.WriteString(html.EscapeString(text[prev:m.start]))
		out.WriteString(highlightOpen)
		out.WriteString(html.EscapeString(text[m.start:m.end]))
		out.WriteString(highlightClose)
		prev = m.end
	}
	out.WriteString(html.EscapeString(text[prev:]))
	return out.String()
}

// diseasePattern builds a case-insensitive pattern for phrase with each gap
// between words relaxed to \s+. It returns nil for a blank phrase.
func diseasePattern(phrase string) *regexp.Regexp {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, `\s+`))
}

// findWholeWord returns matches of re in text that are not preceded or
// followed by an ASCII word character and do not overlap claimed. A rejected
// candidate only advances the scan by one rune so an acceptable overlapping
// match is still found.
func findWholeWord(re *regexp.Regexp, text string, claimed []span) []span {
	var found []span
	offset := 0
	for offset < len(text) {
		loc := re.FindStringIndex(text[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		m := span{start: start, end: end}
		if end > start && isBoundary(text, start, end) && !overlapsAny(claimed, m) {
			found = append(found, m)
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		if size == 0 {
			size = 1
		}
		offset = start + size
	}
	return found
}

func isBoundary(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func overlapsAny(spans []span, candidate span) bool {
	for _, s := range spans {
		if candidate.start < s.end && s.start < candidate.end {
			return true
		}
	}
	return false
}
