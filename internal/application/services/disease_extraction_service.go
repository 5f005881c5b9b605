package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/specialistfinder/backend/pkg/errors"
	"github.com/zatekoja/specialistfinder/backend/pkg/textproc"
)

// DiseaseExtractionService finds and highlights disease mentions in uploaded documents.
type DiseaseExtractionService struct {
	extractor  providers.DocumentTextExtractor
	recognizer providers.EntityRecognizer
	labels     textproc.Labels
	events     providers.EventBus
}

// NewDiseaseExtractionService creates the service. Empty labels fall back to
// textproc.DefaultLabels.
func NewDiseaseExtractionService(extractor providers.DocumentTextExtractor, recognizer providers.EntityRecognizer, labels textproc.Labels) *DiseaseExtractionService {
	if labels.Begin == "" {
		labels.Begin = textproc.DefaultLabels.Begin
	}
	if labels.Inside == "" {
		labels.Inside = textproc.DefaultLabels.Inside
	}
	return &DiseaseExtractionService{
		extractor:  extractor,
		recognizer: recognizer,
		labels:     labels,
	}
}

// SetEventBus sets the bus extraction.completed events are published on.
func (s *DiseaseExtractionService) SetEventBus(bus providers.EventBus) {
	s.events = bus
}

// Extract pulls the text out of a PDF and runs it through ExtractFromText.
func (s *DiseaseExtractionService) Extract(ctx context.Context, fileName string, pdf []byte) (*entities.DiseaseExtraction, error) {
	ctx, span := observability.StartSpan(ctx, "extraction.pdf")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.Int("document.bytes", len(pdf)))

	raw, err := s.extractor.ExtractText(ctx, pdf)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewValidationError("Could not read the uploaded PDF")
	}

	result, err := s.ExtractFromText(ctx, raw)
	if err != nil {
		return nil, err
	}
	result.FileName = fileName
	return result, nil
}

// ExtractFromText recognises diseases in raw text and highlights them in the
// cleaned text.
func (s *DiseaseExtractionService) ExtractFromText(ctx context.Context, raw string) (*entities.DiseaseExtraction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.NewValidationError("No text could be extracted from the PDF")
	}

	recognized, err := s.recognizer.Recognize(ctx, raw)
	if err != nil {
		return nil, apperrors.NewExternalError("Disease recognition failed", err)
	}

	tokens := make([]textproc.Token, len(recognized))
	for i, e := range recognized {
		tokens[i] = textproc.Token{Group: e.EntityGroup, Word: e.Word}
	}
	diseases := textproc.RemoveDuplicatesPreserveOrder(textproc.MergeSubwords(tokens, s.labels))
	if diseases == nil {
		diseases = []string{}
	}

	result := &entities.DiseaseExtraction{
		ID:              uuid.NewString(),
		Text:            textproc.CleanText(raw),
		Diseases:        diseases,
		HighlightedText: textproc.HighlightDiseases(raw, diseases),
		CreatedAt:       time.Now().UTC(),
	}

	observability.LoggerFromContext(ctx).Info().
		Str("extraction_id", result.ID).
		Int("entities", len(recognized)).
		Int("diseases", len(diseases)).
		Msg("Disease extraction completed")

	if s.events != nil {
		event := entities.NewSearchEvent(entities.SearchEventTypeExtractionCompleted, result.ID, map[string]interface{}{
			"disease_count": len(diseases),
			"diseases":      diseases,
		})
		if err := s.events.Publish(ctx, providers.EventChannelSearches, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to publish extraction event")
		}
	}
	return result, nil
}
