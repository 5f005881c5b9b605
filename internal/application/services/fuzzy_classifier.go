package services

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/zatekoja/specialistfinder/backend/internal/catalog"
	"github.com/zatekoja/specialistfinder/backend/internal/domain/entities"
)

// DefaultFuzzyThreshold is the minimum similarity ratio for two symptoms to match.
const DefaultFuzzyThreshold = 0.8

// SymptomClassifier maps free-text symptoms to specialties.
type SymptomClassifier interface {
	Classify(ctx context.Context, symptoms []string) (*entities.Classification, error)
}

// Similarity returns the Ratcliff/Obershelp ratio of the lower-cased strings,
// comparing code points.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runeStrings(strings.ToLower(a)), runeStrings(strings.ToLower(b))).Ratio()
}

// IsSimilar reports whether Similarity(a, b) reaches threshold.
func IsSimilar(a, b string, threshold float64) bool {
	return Similarity(a, b) >= threshold
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// FuzzyClassifier matches symptoms against the catalog by string similarity.
type FuzzyClassifier struct {
	catalog   *catalog.Catalog
	threshold float64
}

// NewFuzzyClassifier creates a classifier over cat. A non-positive threshold
// uses DefaultFuzzyThreshold.
func NewFuzzyClassifier(cat *catalog.Catalog, threshold float64) *FuzzyClassifier {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &FuzzyClassifier{catalog: cat, threshold: threshold}
}

// Match returns every specialty with at least one symptom similar to a user
// symptom, in catalog order.
func (c *FuzzyClassifier) Match(symptoms []string) []string {
	cleaned := cleanSymptoms(symptoms)
	matched := []string{}
	if len(cleaned) == 0 {
		return matched
	}

	for _, specialty := range c.catalog.Specialties() {
		if c.specialtyMatches(specialty, cleaned) {
			matched = append(matched, specialty.Name)
		}
	}
	return matched
}

func (c *FuzzyClassifier) specialtyMatches(specialty catalog.Specialty, symptoms []string) bool {
	for _, user := range symptoms {
		for _, known := range specialty.Symptoms {
			if IsSimilar(user, known, c.threshold) {
				return true
			}
		}
	}
	return false
}

// Classify implements SymptomClassifier.
func (c *FuzzyClassifier) Classify(ctx context.Context, symptoms []string) (*entities.Classification, error) {
	return &entities.Classification{
		Symptoms:    symptoms,
		Specialties: c.Match(symptoms),
		Method:      entities.ClassificationMethodFuzzy,
	}, nil
}

// cleanSymptoms trims entries and drops blanks.
func cleanSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
