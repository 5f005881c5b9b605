package entities

import (
	"time"

	"github.com/google/uuid"
)

// SearchEventType represents the type of search event
type SearchEventType string

const (
	SearchEventTypeSearchCompleted     SearchEventType = "search.completed"
	SearchEventTypeExtractionCompleted SearchEventType = "extraction.completed"
)

// SearchEvent is broadcast to live subscribers when a lookup finishes.
type SearchEvent struct {
	ID        string                 `json:"id"`
	Type      SearchEventType        `json:"type"`
	SearchID  string                 `json:"search_id"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewSearchEvent creates a new search event
func NewSearchEvent(eventType SearchEventType, searchID string, payload map[string]interface{}) *SearchEvent {
	return &SearchEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		SearchID:  searchID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
