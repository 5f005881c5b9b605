package entities

import "time"

// NEREntity is one aggregated entity returned by the token-classification model.
type NEREntity struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// DiseaseExtraction is the result of running an uploaded document through NER.
type DiseaseExtraction struct {
	ID              string    `json:"id"`
	FileName        string    `json:"file_name,omitempty"`
	Text            string    `json:"text"`
	Diseases        []string  `json:"diseases"`
	HighlightedText string    `json:"highlighted_text"`
	CreatedAt       time.Time `json:"created_at"`
}
