package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

// ErrInvalidDocument is returned for uploads that are not readable PDFs.
var ErrInvalidDocument = errors.New("invalid pdf document")

// TextExtractor implements DocumentTextExtractor for PDF files.
type TextExtractor struct{}

// NewTextExtractor creates a new PDF text extractor
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

var _ providers.DocumentTextExtractor = (*TextExtractor)(nil)

// ExtractText returns the plain text of every page, concatenated in page order.
func (e *TextExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrInvalidDocument)
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrInvalidDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			font := page.Font(name)
			fonts[name] = &font
		}

		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
