package models

import "time"

// AttemptRecord is a locally stored finished attempt, the history read-model
// of an AttemptSummary header.
type AttemptRecord struct {
	ID            int64     `json:"id"`
	TestAttemptID int64     `json:"test_attempt_id"`
	Status        string    `json:"status"`
	StartedAt     string    `json:"started_at"`
	FinishedAt    string    `json:"finished_at"`
	TotalScore    string    `json:"total_score"`
	MaxScore      string    `json:"max_score"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryFilter constrains and pages the attempt-history listing.
type HistoryFilter struct {
	Status string
	Limit  int
	Offset int
}
