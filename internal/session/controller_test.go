package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/adaptaki/trainer/internal/errors"
	"github.com/adaptaki/trainer/internal/models"
	"github.com/adaptaki/trainer/internal/session"
	"github.com/adaptaki/trainer/internal/testutil/mocks"
)

func newTask(id, attemptID int64) *models.Task {
	return &models.Task{
		ID:            id,
		SubjectID:     1,
		TaskType:      "short_text",
		Prompt:        "What has mass?",
		TypePayload:   map[string]any{},
		TestAttemptID: attemptID,
	}
}

func newResult(taskID int64) *models.SubmitResult {
	return &models.SubmitResult{
		AttemptID:   900,
		TaskID:      taskID,
		IsCorrect:   true,
		Score:       "1",
		MaxScore:    "1",
		SubmittedAt: "2026-02-01T10:00:00",
	}
}

func newSummary(attemptID int64) *models.AttemptSummary {
	finished := "2026-02-01T10:05:00"
	return &models.AttemptSummary{
		TestAttemptID: attemptID,
		Status:        "finished",
		StartedAt:     "2026-02-01T10:00:00",
		FinishedAt:    &finished,
		TotalScore:    "2",
		MaxScore:      "3",
		Items:         []models.SummaryItem{{AttemptID: 900, TaskID: 10, Score: "2", MaxScore: "3"}},
	}
}

func TestRequestTask_StoresServerAttemptID(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)

	ctrl := session.New(client)
	err := ctrl.RequestTask(context.Background(), models.TaskSelection{}, true)
	require.NoError(t, err)

	view := ctrl.Snapshot()
	assert.Equal(t, session.TaskReady, view.TaskPhase)
	require.NotNil(t, view.AttemptID)
	assert.Equal(t, int64(42), *view.AttemptID)
	client.AssertExpectations(t)
}

func TestRequestTask_StartNewNeverSendsHeldAttemptID(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil).Once()

	ctrl := session.New(client)
	require.NoError(t, ctrl.RequestTask(context.Background(), models.TaskSelection{}, true))

	// Starting over with a held attempt id must still omit it.
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(11, 77), nil).Once()
	require.NoError(t, ctrl.RequestTask(context.Background(), models.TaskSelection{}, true))

	view := ctrl.Snapshot()
	require.NotNil(t, view.AttemptID)
	assert.Equal(t, int64(77), *view.AttemptID)
	client.AssertExpectations(t)
}

func TestRequestTask_AdvanceSendsHeldAttemptID(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil).Once()
	client.On("RandomTask", mock.Anything, mock.Anything, mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == 42
	})).Return(newTask(11, 42), nil).Once()
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{SubjectID: 1}, true))
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	require.NoError(t, ctrl.Advance(ctx))

	view := ctrl.Snapshot()
	assert.Equal(t, int64(11), view.Task.ID)
	assert.Equal(t, session.SubmitIdle, view.SubmitPhase)
	assert.Nil(t, view.Result)
	assert.Empty(t, view.Answer)
	client.AssertExpectations(t)
}

func TestRequestTask_FailureHoldsNoTask(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).
		Return(nil, apperrors.NewRemoteError(404, "No tasks available.", nil))

	ctrl := session.New(client)
	err := ctrl.RequestTask(context.Background(), models.TaskSelection{}, true)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTaskFetch, appErr.Code)

	view := ctrl.Snapshot()
	assert.Equal(t, session.TaskError, view.TaskPhase)
	assert.Equal(t, "No tasks available.", view.TaskError)
	assert.Nil(t, view.Task)
}

func TestSubmitAnswer_LocksInput(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))

	err := ctrl.SetAnswer("changed")
	assert.Error(t, err)

	view := ctrl.Snapshot()
	assert.Equal(t, session.SubmitDone, view.SubmitPhase)
	assert.Equal(t, "mass", view.Answer)
}

func TestSubmitAnswer_RejectsEmptyAndSecondSubmission(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	assert.Error(t, ctrl.SubmitAnswer(ctx, "   "))
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	assert.Error(t, ctrl.SubmitAnswer(ctx, "mass"))

	client.AssertNumberOfCalls(t, "SubmitAnswer", 1)
}

func TestSubmitAnswer_SendsClampedDuration(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	clock := &now

	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub models.AnswerSubmission) bool {
		return sub.DurationMS != nil && *sub.DurationMS == 1500
	})).Return(newResult(10), nil)

	ctrl := session.New(client, session.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	now = now.Add(1500 * time.Millisecond)
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	client.AssertExpectations(t)
}

func TestSubmitAnswer_DurationNeverNegative(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	clock := &now

	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub models.AnswerSubmission) bool {
		return sub.DurationMS != nil && *sub.DurationMS == 0
	})).Return(newResult(10), nil)

	ctrl := session.New(client, session.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	// Clock moved backwards between task display and submit.
	now = now.Add(-10 * time.Second)
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	client.AssertExpectations(t)
}

func TestSubmitAnswer_DurationAbsentWithoutStartTimestamp(t *testing.T) {
	// A zero clock at fetch time means no start timestamp was recorded;
	// duration must then be absent, not zero.
	now := time.Time{}
	clock := &now

	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.MatchedBy(func(sub models.AnswerSubmission) bool {
		return sub.DurationMS == nil
	})).Return(newResult(10), nil)

	ctrl := session.New(client, session.WithClock(func() time.Time { return *clock }))
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	now = time.Date(2026, 2, 1, 10, 0, 5, 0, time.UTC)
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	client.AssertExpectations(t)
}

func TestSubmitAnswer_PendingBlocksSecondActivation(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(entered)
		<-release
	}).Return(newResult(10), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	done := make(chan error, 1)
	go func() {
		done <- ctrl.SubmitAnswer(ctx, "mass")
	}()
	<-entered

	// Rapid second activation while the first is in flight.
	err := ctrl.SubmitAnswer(ctx, "mass")
	assert.Error(t, err)

	close(release)
	require.NoError(t, <-done)
	client.AssertNumberOfCalls(t, "SubmitAnswer", 1)
}

func TestSubmitAnswer_FailureKeepsTaskEditable(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewRemoteError(502, "", errors.New("gateway"))).Once()
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil).Once()

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	err := ctrl.SubmitAnswer(ctx, "mass")
	require.Error(t, err)

	view := ctrl.Snapshot()
	assert.Equal(t, session.SubmitError, view.SubmitPhase)
	assert.NotEmpty(t, view.SubmitError)
	require.NoError(t, ctrl.SetAnswer("mass, corrected"))

	// Retry succeeds.
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass, corrected"))
	client.AssertExpectations(t)
}

func TestFinishAttempt_HappyPathEndsInSummaryReady(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil)
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(nil)
	client.On("AttemptSummary", mock.Anything, int64(42)).Return(newSummary(42), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	require.NoError(t, ctrl.FinishAttempt(ctx))

	view := ctrl.Snapshot()
	assert.Equal(t, session.SummaryReady, view.SummaryPhase)
	require.NotNil(t, view.Summary)
	assert.Equal(t, int64(42), view.Summary.TestAttemptID)

	// No per-attempt state survives the finish.
	assert.Nil(t, view.Task)
	assert.Nil(t, view.AttemptID)
	assert.Nil(t, view.Result)
	assert.Empty(t, view.Answer)
	assert.Equal(t, session.TaskIdle, view.TaskPhase)
	client.AssertExpectations(t)
}

func TestFinishAttempt_RecordsHistory(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(nil)
	client.On("AttemptSummary", mock.Anything, int64(42)).Return(newSummary(42), nil)

	history := new(mocks.MockHistoryRepository)
	history.On("InsertSummary", mock.Anything, mock.MatchedBy(func(s models.AttemptSummary) bool {
		return s.TestAttemptID == 42
	})).Return(int64(1), nil)

	ctrl := session.New(client, session.WithHistory(history))
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	require.NoError(t, ctrl.FinishAttempt(ctx))

	history.AssertExpectations(t)
}

func TestFinishAttempt_HistoryFailureDoesNotBlockSummary(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(nil)
	client.On("AttemptSummary", mock.Anything, int64(42)).Return(newSummary(42), nil)

	history := new(mocks.MockHistoryRepository)
	history.On("InsertSummary", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	ctrl := session.New(client, session.WithHistory(history))
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	require.NoError(t, ctrl.FinishAttempt(ctx))

	assert.Equal(t, session.SummaryReady, ctrl.Snapshot().SummaryPhase)
}

func TestFinishAttempt_SummaryFetchFailure(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil).Once()
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(nil)
	client.On("AttemptSummary", mock.Anything, int64(42)).
		Return(nil, apperrors.NewRemoteError(500, "", errors.New("boom")))

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	err := ctrl.FinishAttempt(ctx)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSummaryFetch, appErr.Code)

	view := ctrl.Snapshot()
	assert.Equal(t, session.SummaryError, view.SummaryPhase)
	assert.NotEmpty(t, view.SummaryError)
	assert.Nil(t, view.AttemptID)

	// Dismissing returns to idle; a new session must not reuse attempt 42.
	ctrl.DismissSummary()
	view = ctrl.Snapshot()
	assert.Equal(t, session.SummaryNone, view.SummaryPhase)
	assert.Equal(t, session.TaskIdle, view.TaskPhase)
	assert.Nil(t, view.AttemptID)

	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(12, 88), nil).Once()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, false))
	client.AssertExpectations(t)
}

func TestFinishAttempt_CloseFailureStillFetchesSummary(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(apperrors.NewRemoteError(500, "", errors.New("boom")))
	client.On("AttemptSummary", mock.Anything, int64(42)).Return(newSummary(42), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	err := ctrl.FinishAttempt(ctx)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeFinish, appErr.Code)

	// The summary was still retrieved and the attempt is never resumed.
	view := ctrl.Snapshot()
	assert.Equal(t, session.SummaryReady, view.SummaryPhase)
	assert.Nil(t, view.AttemptID)
	client.AssertExpectations(t)
}

func TestFinishAttempt_BothFailuresShowSummaryErrorState(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(apperrors.NewRemoteError(500, "", errors.New("boom")))
	client.On("AttemptSummary", mock.Anything, int64(42)).
		Return(nil, apperrors.NewRemoteError(500, "", errors.New("boom")))

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	err := ctrl.FinishAttempt(ctx)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeFinish, appErr.Code)

	view := ctrl.Snapshot()
	assert.Equal(t, session.SummaryError, view.SummaryPhase)
	assert.Equal(t, "Could not retrieve the attempt results.", view.SummaryError)
}

func TestFinishAttempt_RequiresActiveAttempt(t *testing.T) {
	ctrl := session.New(new(mocks.MockTrainingClient))
	assert.Error(t, ctrl.FinishAttempt(context.Background()))
}

func TestLoadFilters_Success(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("ListSubjects", mock.Anything).Return([]models.Subject{{ID: 1, Title: "Physics"}}, nil)
	client.On("ListTaskTypes", mock.Anything).Return([]models.TaskType{{Value: "number", Label: "Number"}}, nil)

	ctrl := session.New(client)
	require.NoError(t, ctrl.LoadFilters(context.Background()))

	view := ctrl.Snapshot()
	assert.Equal(t, session.FiltersReady, view.FiltersPhase)
	assert.Len(t, view.Filters.Subjects, 1)
	assert.Len(t, view.Filters.TaskTypes, 1)
}

func TestLoadFilters_FailureDegradesWithoutBlockingTasks(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("ListSubjects", mock.Anything).Return(nil, apperrors.NewRemoteError(500, "", errors.New("boom")))
	client.On("ListTaskTypes", mock.Anything).Return([]models.TaskType{}, nil)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)

	ctrl := session.New(client)
	ctx := context.Background()

	err := ctrl.LoadFilters(ctx)
	require.Error(t, err)
	assert.Equal(t, session.FiltersError, ctrl.Snapshot().FiltersPhase)

	// An unconstrained fetch still works.
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	assert.Equal(t, session.TaskReady, ctrl.Snapshot().TaskPhase)
}

func TestToggleSolution_OnlyWithResult(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil)
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil)

	ctrl := session.New(client)
	ctx := context.Background()

	ctrl.ToggleSolution()
	assert.False(t, ctrl.Snapshot().ShowSolution)

	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))

	ctrl.ToggleSolution()
	assert.True(t, ctrl.Snapshot().ShowSolution)
	ctrl.ToggleSolution()
	assert.False(t, ctrl.Snapshot().ShowSolution)
}

func TestSessionIsReentrant(t *testing.T) {
	client := new(mocks.MockTrainingClient)
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(10, 42), nil).Once()
	client.On("SubmitAnswer", mock.Anything, mock.Anything).Return(newResult(10), nil)
	client.On("FinishAttempt", mock.Anything, int64(42)).Return(nil)
	client.On("AttemptSummary", mock.Anything, int64(42)).Return(newSummary(42), nil)

	ctrl := session.New(client)
	ctx := context.Background()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))
	require.NoError(t, ctrl.SubmitAnswer(ctx, "mass"))
	require.NoError(t, ctrl.FinishAttempt(ctx))
	ctrl.DismissSummary()

	// A second full session starts from a clean slate on a new attempt.
	client.On("RandomTask", mock.Anything, mock.Anything, (*int64)(nil)).Return(newTask(20, 50), nil).Once()
	require.NoError(t, ctrl.RequestTask(ctx, models.TaskSelection{}, true))

	view := ctrl.Snapshot()
	require.NotNil(t, view.AttemptID)
	assert.Equal(t, int64(50), *view.AttemptID)
	client.AssertExpectations(t)
}
