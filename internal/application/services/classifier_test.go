package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/specialistfinder/backend/internal/adapters/cache"
	"github.com/zatekoja/specialistfinder/backend/internal/application/services"
	"github.com/zatekoja/specialistfinder/backend/internal/catalog"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
)

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, services.Similarity("Headache", "headache"))
	assert.InDelta(t, 36.0/38.0, services.Similarity("irregular heartbeet", "Irregular heartbeat"), 1e-9)
	assert.Equal(t, 0.0, services.Similarity("abc", "xyz"))

	assert.True(t, services.IsSimilar("chest pain", "Chest pain", 0.8))
	assert.False(t, services.IsSimilar("pizza", "Chest pain", 0.8))
}

func TestFuzzyClassifier_Match(t *testing.T) {
	classifier := services.NewFuzzyClassifier(testCatalog(), 0)

	assert.Equal(t, []string{"Dermatologist", "Neurologist"}, classifier.Match([]string{"headache", "skin rash"}))
	assert.Equal(t, []string{"Cardiologist"}, classifier.Match([]string{"Irregular heartbeet"}))
	assert.Equal(t, []string{}, classifier.Match([]string{"pizza"}))
	assert.Equal(t, []string{}, classifier.Match([]string{"", "   "}))
	assert.Equal(t, []string{}, classifier.Match(nil))
}

func TestFuzzyClassifier_DefaultCatalog(t *testing.T) {
	classifier := services.NewFuzzyClassifier(catalog.Default(), services.DefaultFuzzyThreshold)

	result, err := classifier.Classify(context.Background(), []string{"chest pain"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Specialties)
	assert.Equal(t, "Cardiologist", result.Specialties[0])
	assert.Equal(t, entities.ClassificationMethodFuzzy, result.Method)
	assert.Equal(t, []string{"chest pain"}, result.Symptoms)
}

func TestSpellingCorrector(t *testing.T) {
	corrector := services.NewSpellingCorrector(testCatalog().Vocabulary())

	assert.Equal(t, "headache", corrector.CorrectWord("hedache"))
	assert.Equal(t, "rash", corrector.CorrectWord("rsh"))
	assert.Equal(t, "chest", corrector.CorrectWord("chset"))
	assert.Equal(t, "pian", corrector.CorrectWord("pian"))
	assert.Equal(t, "Skin", corrector.CorrectWord("Skin"))
	assert.Equal(t, "123", corrector.CorrectWord("123"))

	assert.Equal(t, []string{"headache now"}, corrector.Correct([]string{" hedache  now", " "}))
}

func TestLLMClassifier_CanonicalisesSpecialties(t *testing.T) {
	cat := testCatalog()
	interpreter := new(mockInterpreter)
	interpreter.On("InterpretSymptoms", mock.Anything, []string{"chest pian"}, cat.Names()).
		Return(&providers.SymptomInterpretation{
			CorrectedSymptoms: []string{"chest pain"},
			Specialties:       []string{"cardiologist", "Witch Doctor", "Cardiologist"},
		}, nil).Once()

	classifier := services.NewLLMClassifier(interpreter, cat, services.NewFuzzyClassifier(cat, 0))
	result, err := classifier.Classify(context.Background(), []string{"chest pian"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiologist"}, result.Specialties)
	assert.Equal(t, []string{"chest pain"}, result.CorrectedSymptoms)
	assert.Equal(t, []string{"chest pian"}, result.Symptoms)
	assert.Equal(t, entities.ClassificationMethodLLM, result.Method)
	interpreter.AssertExpectations(t)
}

func TestLLMClassifier_FallsBackOnError(t *testing.T) {
	cat := testCatalog()
	interpreter := new(mockInterpreter)
	interpreter.On("InterpretSymptoms", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream down"))

	classifier := services.NewLLMClassifier(interpreter, cat, services.NewFuzzyClassifier(cat, 0))
	result, err := classifier.Classify(context.Background(), []string{"hedache"})

	require.NoError(t, err)
	assert.Equal(t, entities.ClassificationMethodFuzzy, result.Method)
	assert.Equal(t, []string{"headache"}, result.CorrectedSymptoms)
	assert.Equal(t, []string{"Neurologist"}, result.Specialties)
}

func TestLLMClassifier_FallsBackOnEmptyAnswer(t *testing.T) {
	cat := testCatalog()
	interpreter := new(mockInterpreter)
	interpreter.On("InterpretSymptoms", mock.Anything, mock.Anything, mock.Anything).
		Return(&providers.SymptomInterpretation{Specialties: []string{"Astrologer"}}, nil)

	classifier := services.NewLLMClassifier(interpreter, cat, services.NewFuzzyClassifier(cat, 0))
	result, err := classifier.Classify(context.Background(), []string{"acne"})

	require.NoError(t, err)
	assert.Equal(t, entities.ClassificationMethodFuzzy, result.Method)
	assert.Equal(t, []string{"Dermatologist"}, result.Specialties)
}

func TestLLMClassifier_CachesResults(t *testing.T) {
	cat := testCatalog()
	interpreter := new(mockInterpreter)
	interpreter.On("InterpretSymptoms", mock.Anything, mock.Anything, mock.Anything).
		Return(&providers.SymptomInterpretation{Specialties: []string{"Neurologist"}}, nil).Once()

	classifier := services.NewLLMClassifier(interpreter, cat, services.NewFuzzyClassifier(cat, 0))
	classifier.SetCache(cache.NewMemoryAdapter())

	first, err := classifier.Classify(context.Background(), []string{"Headache"})
	require.NoError(t, err)
	second, err := classifier.Classify(context.Background(), []string{"  headache "})
	require.NoError(t, err)

	assert.Equal(t, first.Specialties, second.Specialties)
	assert.Equal(t, []string{"  headache "}, second.Symptoms)
	interpreter.AssertNumberOfCalls(t, "InterpretSymptoms", 1)
}

func TestLLMClassifier_EmptyInput(t *testing.T) {
	cat := testCatalog()
	interpreter := new(mockInterpreter)
	classifier := services.NewLLMClassifier(interpreter, cat, services.NewFuzzyClassifier(cat, 0))

	result, err := classifier.Classify(context.Background(), []string{" "})
	require.NoError(t, err)
	assert.False(t, result.Matched())
	interpreter.AssertNotCalled(t, "InterpretSymptoms", mock.Anything, mock.Anything, mock.Anything)
}
