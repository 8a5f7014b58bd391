package trainingapi

import (
	"context"

	"github.com/adaptaki/trainer/internal/models"
)

// ClientInterface defines the remote task-service operations the session
// controller depends on. This interface enables testability by allowing mock
// implementations.
type ClientInterface interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListTaskTypes(ctx context.Context) ([]models.TaskType, error)
	RandomTask(ctx context.Context, sel models.TaskSelection, attemptID *int64) (*models.Task, error)
	SubmitAnswer(ctx context.Context, sub models.AnswerSubmission) (*models.SubmitResult, error)
	FinishAttempt(ctx context.Context, attemptID int64) error
	AttemptSummary(ctx context.Context, attemptID int64) (*models.AttemptSummary, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
