package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/adaptaki/trainer/internal/models"
)

// MockHistoryRepository is a mock implementation of repository.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) InsertSummary(ctx context.Context, summary models.AttemptSummary) (int64, error) {
	args := m.Called(ctx, summary)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) ListAttempts(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttemptRecord), args.Error(1)
}

func (m *MockHistoryRepository) GetSummary(ctx context.Context, testAttemptID int64) (*models.AttemptSummary, error) {
	args := m.Called(ctx, testAttemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptSummary), args.Error(1)
}
