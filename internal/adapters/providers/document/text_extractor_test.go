package document

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestExtractText_ConcatenatesPages(t *testing.T) {
	data := buildPDF(t, "Diagnosis: hypertension", "Follow-up for asthma")

	text, err := NewTextExtractor().ExtractText(context.Background(), data)
	require.NoError(t, err)
	assert.Contains(t, text, "hypertension")
	assert.Contains(t, text, "asthma")
	assert.Less(t, bytes.Index([]byte(text), []byte("hypertension")), bytes.Index([]byte(text), []byte("asthma")))
}

func TestExtractText_RejectsNonPDF(t *testing.T) {
	_, err := NewTextExtractor().ExtractText(context.Background(), []byte("just some text"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))

	_, err = NewTextExtractor().ExtractText(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}
