package ner

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitText_ShortTextIsOneChunk(t *testing.T) {
	got := splitText("Patient has asthma.", 1500)
	assert.Equal(t, []chunk{{text: "Patient has asthma."}}, got)
	assert.Nil(t, splitText("", 10))
}

func TestSplitText_BreaksAtWhitespace(t *testing.T) {
	got := splitText("alpha beta gamma delta", 12)

	var texts []string
	for _, c := range got {
		texts = append(texts, c.text)
		assert.LessOrEqual(t, len(c.text), 12)
	}
	assert.Equal(t, []string{"alpha beta ", "gamma delta"}, texts)
	assert.Equal(t, 0, got[0].runeOffset)
	assert.Equal(t, 11, got[1].runeOffset)
}

func TestSplitText_LongWordAndMultibyte(t *testing.T) {
	text := strings.Repeat("é", 10) // 20 bytes, no spaces
	got := splitText(text, 5)

	var joined strings.Builder
	offset := 0
	for _, c := range got {
		assert.True(t, utf8.ValidString(c.text))
		assert.LessOrEqual(t, len(c.text), 5)
		assert.Equal(t, offset, c.runeOffset)
		offset += utf8.RuneCountInString(c.text)
		joined.WriteString(c.text)
	}
	assert.Equal(t, text, joined.String())
}
