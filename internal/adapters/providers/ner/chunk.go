package ner

import (
	"unicode"
	"unicode/utf8"
)

// chunk is a slice of the input text plus its position in runes.
type chunk struct {
	text       string
	runeOffset int
}

// splitText cuts text into pieces of at most maxBytes, breaking after
// whitespace where possible so words stay whole. A single word longer than
// maxBytes is cut on a rune boundary.
func splitText(text string, maxBytes int) []chunk {
	if maxBytes <= 0 || len(text) <= maxBytes {
		if text == "" {
			return nil
		}
		return []chunk{{text: text}}
	}

	var chunks []chunk
	runeOffset := 0
	for len(text) > 0 {
		if len(text) <= maxBytes {
			chunks = append(chunks, chunk{text: text, runeOffset: runeOffset})
			break
		}

		cut := lastSpaceCut(text, maxBytes)
		if cut <= 0 {
			cut = runeBoundary(text, maxBytes)
		}

		piece := text[:cut]
		chunks = append(chunks, chunk{text: piece, runeOffset: runeOffset})
		runeOffset += utf8.RuneCountInString(piece)
		text = text[cut:]
	}
	return chunks
}

// lastSpaceCut returns the byte index just after the last whitespace rune in
// text[:limit], or 0 when there is none.
func lastSpaceCut(text string, limit int) int {
	window := text[:runeBoundary(text, limit)]
	for i := len(window); i > 0; {
		r, size := utf8.DecodeLastRuneInString(window[:i])
		if unicode.IsSpace(r) {
			return i
		}
		i -= size
	}
	return 0
}

// runeBoundary backs limit off to the start of the rune it falls inside.
func runeBoundary(text string, limit int) int {
	if limit >= len(text) {
		return len(text)
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	if limit == 0 {
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	return limit
}
