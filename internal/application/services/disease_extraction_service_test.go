package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/pkg/textproc"
	apperrors "github.com/zatekoja/specialistfinder/backend/pkg/errors"
)

func TestDiseaseExtraction_Pipeline(t *testing.T) {
	raw := "Patient has hyper\ntension and   Type 2\ndiabetes. History of HYPERTENSION."
	extractor := new(mockTextExtractor)
	extractor.On("ExtractText", mock.Anything, []byte("%PDF")).Return(raw, nil)

	recognizer := new(mockRecognizer)
	recognizer.On("Recognize", mock.Anything, raw).Return([]entities.NEREntity{
		{EntityGroup: "LABEL_2", Word: "stray"},
		{EntityGroup: "LABEL_1", Word: "hyper"},
		{EntityGroup: "LABEL_2", Word: "##tension"},
		{EntityGroup: "LABEL_0", Word: "and"},
		{EntityGroup: "LABEL_1", Word: "type"},
		{EntityGroup: "LABEL_2", Word: "2"},
		{EntityGroup: "LABEL_2", Word: "diabetes"},
		{EntityGroup: "LABEL_1", Word: "Hypertension"},
	}, nil)

	bus := &recordingBus{}
	service := services.NewDiseaseExtractionService(extractor, recognizer, textproc.Labels{})
	service.SetEventBus(bus)

	result, err := service.Extract(context.Background(), "report.pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hypertension", "type 2 diabetes"}, result.Diseases)
	assert.Equal(t, "report.pdf", result.FileName)
	assert.Equal(t, "Patient has hyper tension and Type 2 diabetes. History of HYPERTENSION.", result.Text)
	assert.Contains(t, result.HighlightedText, `<span class="highlight">Type 2 diabetes</span>`)
	assert.Contains(t, result.HighlightedText, `<span class="highlight">HYPERTENSION</span>`)
	assert.NotEmpty(t, result.ID)

	events := bus.Events()
	require.Len(t, events, 1)
	assert.Equal(t, entities.SearchEventTypeExtractionCompleted, events[0].Type)
	assert.Equal(t, result.ID, events[0].SearchID)
}

func TestDiseaseExtraction_EmptyText(t *testing.T) {
	extractor := new(mockTextExtractor)
	extractor.On("ExtractText", mock.Anything, mock.Anything).Return("  \n ", nil)
	recognizer := new(mockRecognizer)

	service := services.NewDiseaseExtractionService(extractor, recognizer, textproc.DefaultLabels)
	_, err := service.Extract(context.Background(), "blank.pdf", []byte("%PDF"))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "No text could be extracted from the PDF", appErr.Message)
	recognizer.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything)
}

func TestDiseaseExtraction_Errors(t *testing.T) {
	extractor := new(mockTextExtractor)
	extractor.On("ExtractText", mock.Anything, []byte("junk")).Return("", errors.New("not a pdf"))
	recognizer := new(mockRecognizer)
	recognizer.On("Recognize", mock.Anything, mock.Anything).Return(nil, errors.New("model loading"))

	service := services.NewDiseaseExtractionService(extractor, recognizer, textproc.DefaultLabels)

	_, err := service.Extract(context.Background(), "junk.pdf", []byte("junk"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = service.ExtractFromText(context.Background(), "asthma")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestDiseaseExtraction_CustomLabels(t *testing.T) {
	recognizer := new(mockRecognizer)
	recognizer.On("Recognize", mock.Anything, mock.Anything).Return([]entities.NEREntity{
		{EntityGroup: "B-DISEASE", Word: "asth"},
		{EntityGroup: "I-DISEASE", Word: "##ma"},
	}, nil)

	service := services.NewDiseaseExtractionService(nil, recognizer, textproc.Labels{Begin: "B-DISEASE", Inside: "I-DISEASE"})
	result, err := service.ExtractFromText(context.Background(), "Known asthma.")
	require.NoError(t, err)
	assert.Equal(t, []string{"asthma"}, result.Diseases)
	assert.Equal(t, `Known <span class="highlight">asthma</span>.`, result.HighlightedText)
}
