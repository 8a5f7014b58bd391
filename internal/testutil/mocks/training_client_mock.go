package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adaptaki/trainer/internal/models"
)

// MockTrainingClient is a mock implementation of trainingapi.ClientInterface
type MockTrainingClient struct {
	mock.Mock
}

func (m *MockTrainingClient) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subject), args.Error(1)
}

func (m *MockTrainingClient) ListTaskTypes(ctx context.Context) ([]models.TaskType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TaskType), args.Error(1)
}

func (m *MockTrainingClient) RandomTask(ctx context.Context, sel models.TaskSelection, attemptID *int64) (*models.Task, error) {
	args := m.Called(ctx, sel, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTrainingClient) SubmitAnswer(ctx context.Context, sub models.AnswerSubmission) (*models.SubmitResult, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResult), args.Error(1)
}

func (m *MockTrainingClient) FinishAttempt(ctx context.Context, attemptID int64) error {
	args := m.Called(ctx, attemptID)
	return args.Error(0)
}

func (m *MockTrainingClient) AttemptSummary(ctx context.Context, attemptID int64) (*models.AttemptSummary, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptSummary), args.Error(1)
}
