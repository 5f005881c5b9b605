package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// ErrNERModelLoading is returned while the hosted model is still warming up.
var ErrNERModelLoading = errors.New("ner model is loading")

// EntityRecognizer runs token classification over text. Offsets in the
// returned entities refer to the text passed in.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]entities.NEREntity, error)
}

// DocumentTextExtractor pulls plain text out of an uploaded document.
type DocumentTextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
