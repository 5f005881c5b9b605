package entities

// ClassificationMethod names the strategy that produced a Classification.
type ClassificationMethod string

const (
	ClassificationMethodFuzzy ClassificationMethod = "fuzzy"
	ClassificationMethodLLM   ClassificationMethod = "llm"
)

// Classification is the outcome of mapping free-text symptoms to specialties.
type Classification struct {
	Symptoms          []string             `json:"symptoms"`
	CorrectedSymptoms []string             `json:"corrected_symptoms,omitempty"`
	Specialties       []string             `json:"specialties"`
	Method            ClassificationMethod `json:"method"`
}

// Matched reports whether at least one specialty was found.
func (c *Classification) Matched() bool {
	return c != nil && len(c.Specialties) > 0
}
