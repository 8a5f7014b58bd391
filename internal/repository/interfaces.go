package repository

import (
	"context"

	"github.com/adaptaki/trainer/internal/models"
)

// HistoryRepository stores finished attempt summaries locally so past results
// can be revisited after the session is gone.
type HistoryRepository interface {
	// InsertSummary records a finished attempt and its items. Re-recording
	// the same test_attempt_id replaces the previous record.
	InsertSummary(ctx context.Context, summary models.AttemptSummary) (int64, error)
	// ListAttempts returns attempt headers, newest first.
	ListAttempts(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, error)
	// GetSummary reconstructs a stored summary, or nil when absent.
	GetSummary(ctx context.Context, testAttemptID int64) (*models.AttemptSummary, error)
}
