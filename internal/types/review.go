package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ReviewProgress summarizes how many criteria of a review are rated.
type ReviewProgress struct {
	TotalCriteria     int `json:"totalCriteria"`
	CompletedCriteria int `json:"completedCriteria"`
	Percentage        int `json:"percentage"`
}

// SnapshotCriterion is the persisted shape of a single review criterion.
type SnapshotCriterion struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rating      int       `json:"rating"`
	Feedback    string    `json:"feedback"`
	CreatedAt   time.Time `json:"createdAt"`
	IsDefault   bool      `json:"isDefault"`
}

// ReviewSnapshot is the structured review stored on a candidate.
type ReviewSnapshot struct {
	OverallRating float64             `json:"overallRating"`
	Progress      ReviewProgress      `json:"progress"`
	Criteria      []SnapshotCriterion `json:"criteria"`
}

// Review is either a legacy free-text review or a structured snapshot.
// At most one of Legacy and Snapshot is meaningful; Snapshot wins.
type Review struct {
	Legacy   string
	Snapshot *ReviewSnapshot
}

// LegacyReview wraps a free-text review.
func LegacyReview(text string) *Review {
	return &Review{Legacy: text}
}

// SnapshotReview wraps a structured review.
func SnapshotReview(s ReviewSnapshot) *Review {
	return &Review{Snapshot: &s}
}

// IsStructured reports whether r carries a snapshot.
func (r *Review) IsStructured() bool {
	return r != nil && r.Snapshot != nil
}

// MarshalJSON writes the snapshot object, or the legacy string otherwise.
func (r Review) MarshalJSON() ([]byte, error) {
	if r.Snapshot != nil {
		return json.Marshal(r.Snapshot)
	}
	return json.Marshal(r.Legacy)
}

// UnmarshalJSON accepts a JSON string, object or null.
func (r *Review) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*r = Review{}
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = Review{Legacy: s}
		return nil
	case trimmed[0] == '{':
		var snap ReviewSnapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return err
		}
		*r = Review{Snapshot: &snap}
		return nil
	default:
		return fmt.Errorf("review must be a string or object, got %s", trimmed[:1])
	}
}
