package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/zatekoja/specialistfinder/backend/internal/catalog"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/providers"
	"github.com/zatekoja/specialistfinder/backend/internal/infrastructure/observability"
)

const classificationCacheTTLSeconds = 86400

// LLMClassifier asks a language model for specialties and falls back to
// spelling correction plus fuzzy matching when the model is unavailable.
type LLMClassifier struct {
	interpreter providers.SymptomInterpreter
	catalog     *catalog.Catalog
	fuzzy       *FuzzyClassifier
	corrector   *SpellingCorrector
	cache       providers.CacheProvider
}

// NewLLMClassifier creates a classifier backed by interpreter.
func NewLLMClassifier(interpreter providers.SymptomInterpreter, cat *catalog.Catalog, fuzzy *FuzzyClassifier) *LLMClassifier {
	return &LLMClassifier{
		interpreter: interpreter,
		catalog:     cat,
		fuzzy:       fuzzy,
		corrector:   NewSpellingCorrector(cat.Vocabulary()),
	}
}

// SetCache sets the cache provider for classification results.
func (c *LLMClassifier) SetCache(cache providers.CacheProvider) {
	c.cache = cache
}

// Classify implements SymptomClassifier.
func (c *LLMClassifier) Classify(ctx context.Context, symptoms []string) (*entities.Classification, error) {
	cleaned := cleanSymptoms(symptoms)
	if len(cleaned) == 0 {
		return &entities.Classification{Symptoms: symptoms, Specialties: []string{}, Method: entities.ClassificationMethodLLM}, nil
	}

	cacheKey := providers.CacheKey("classification:v1", normalizeForKey(cleaned)...)
	if c.cache != nil {
		if data, err := c.cache.Get(ctx, cacheKey); err == nil {
			var cached entities.Classification
			if json.Unmarshal(data, &cached) == nil {
				cached.Symptoms = symptoms
				return &cached, nil
			}
		}
	}

	result, err := c.interpret(ctx, cleaned)
	if err != nil || !result.Matched() {
		logger := observability.LoggerFromContext(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Symptom interpreter failed, using fuzzy matching")
		} else {
			logger.Info().Strs("symptoms", cleaned).Msg("Symptom interpreter found no specialty, using fuzzy matching")
		}
		return c.fallback(symptoms, cleaned), nil
	}

	if c.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = c.cache.Set(ctx, cacheKey, data, classificationCacheTTLSeconds)
		}
	}
	result.Symptoms = symptoms
	return result, nil
}

func (c *LLMClassifier) interpret(ctx context.Context, symptoms []string) (*entities.Classification, error) {
	ctx, span := observability.StartSpan(ctx, "classifier.llm")
	defer span.End()

	out, err := c.interpreter.InterpretSymptoms(ctx, symptoms, c.catalog.Names())
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	specialties := []string{}
	seen := make(map[string]struct{})
	for _, name := range out.Specialties {
		canonical, ok := c.catalog.Canonical(name)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		specialties = append(specialties, canonical)
	}

	corrected := cleanSymptoms(out.CorrectedSymptoms)
	if len(corrected) == 0 {
		corrected = symptoms
	}

	return &entities.Classification{
		CorrectedSymptoms: corrected,
		Specialties:       specialties,
		Method:            entities.ClassificationMethodLLM,
	}, nil
}

func (c *LLMClassifier) fallback(original, cleaned []string) *entities.Classification {
	corrected := c.corrector.Correct(cleaned)
	return &entities.Classification{
		Symptoms:          original,
		CorrectedSymptoms: corrected,
		Specialties:       c.fuzzy.Match(corrected),
		Method:            entities.ClassificationMethodFuzzy,
	}
}

func normalizeForKey(symptoms []string) []string {
	out := make([]string, len(symptoms))
	for i, s := range symptoms {
		out[i] = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return out
}
