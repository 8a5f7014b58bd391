package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaptaki/trainer/internal/models"
)

func TestNewResultView(t *testing.T) {
	solution := "Carry the one."

	t.Run("nil result yields nil view", func(t *testing.T) {
		assert.Nil(t, newResultView(nil))
	})

	t.Run("full result", func(t *testing.T) {
		v := newResultView(&models.SubmitResult{
			AttemptID:    1,
			TaskID:       2,
			IsCorrect:    false,
			Score:        "1.00",
			MaxScore:     "2.00",
			SubmittedAt:  "2026-02-01T10:01:00",
			SolutionText: &solution,
			AnswerKey:    map[string]any{"correct": []any{"a", "b"}},
		})
		require.NotNil(t, v)
		assert.Equal(t, "partial", v.Band)
		assert.Equal(t, "1", v.ScoreText)
		assert.Equal(t, "2", v.MaxScoreText)
		assert.True(t, v.HasAnswerKey)
		assert.Equal(t, "a, b", v.AnswerKey)
		assert.True(t, v.HasSolution)
		assert.Equal(t, "Carry the one.", v.SolutionText)
	})

	t.Run("absent key and solution render placeholders", func(t *testing.T) {
		v := newResultView(&models.SubmitResult{
			IsCorrect: true,
			Score:     "1",
			MaxScore:  "1",
		})
		require.NotNil(t, v)
		assert.Equal(t, "correct", v.Band)
		assert.False(t, v.HasAnswerKey)
		assert.Equal(t, "—", v.AnswerKey)
		assert.False(t, v.HasSolution)
	})
}

func TestNewSummaryView(t *testing.T) {
	t.Run("nil summary yields nil view", func(t *testing.T) {
		assert.Nil(t, newSummaryView(nil))
	})

	t.Run("rows keep server order and numbering", func(t *testing.T) {
		finished := "2026-02-01T10:05:00"
		v := newSummaryView(&models.AttemptSummary{
			TestAttemptID: 42,
			Status:        "finished",
			StartedAt:     "2026-02-01T10:00:00",
			FinishedAt:    &finished,
			TotalScore:    "7.00",
			MaxScore:      "10.00",
			Items: []models.SummaryItem{
				{
					TaskID:        10,
					TaskType:      "short_text",
					Prompt:        "First prompt",
					AnswerPayload: map[string]any{"value": "mass"},
					AnswerKey:     map[string]any{"correct": "mass"},
					IsCorrect:     true,
					Score:         "1",
					MaxScore:      "1",
				},
				{
					TaskID:        11,
					TaskType:      "number",
					Prompt:        "Second prompt",
					AnswerPayload: map[string]any{"value": "4"},
					IsCorrect:     false,
					Score:         "0",
					MaxScore:      "1",
				},
			},
		})
		require.NotNil(t, v)
		assert.Equal(t, "7", v.TotalScore)
		assert.Equal(t, "10", v.MaxScore)
		assert.Equal(t, 70, v.Percent)
		assert.Equal(t, "2026-02-01T10:05:00", v.FinishedAt)

		require.Len(t, v.Rows, 2)
		assert.Equal(t, 1, v.Rows[0].Position)
		assert.Equal(t, 2, v.Rows[1].Position)
		assert.Equal(t, "mass", v.Rows[0].Answer)
		assert.Equal(t, "mass", v.Rows[0].AnswerKey)
		assert.Equal(t, "correct", v.Rows[0].Band)
		assert.Equal(t, "—", v.Rows[1].AnswerKey)
		assert.Equal(t, "incorrect", v.Rows[1].Band)
	})

	t.Run("percentage is not clamped to 100", func(t *testing.T) {
		v := newSummaryView(&models.AttemptSummary{
			TotalScore: "10",
			MaxScore:   "3",
		})
		require.NotNil(t, v)
		assert.Equal(t, 333, v.Percent)
	})

	t.Run("empty attempt reads zero percent", func(t *testing.T) {
		v := newSummaryView(&models.AttemptSummary{
			TotalScore: "0",
			MaxScore:   "0",
		})
		require.NotNil(t, v)
		assert.Equal(t, 0, v.Percent)
		assert.Equal(t, "—", v.FinishedAt)
		assert.Empty(t, v.Rows)
	})
}

func TestNewHistoryRow(t *testing.T) {
	row := newHistoryRow(models.AttemptRecord{
		TestAttemptID: 42,
		Status:        "finished",
		FinishedAt:    "",
		TotalScore:    "2.00",
		MaxScore:      "4",
		ItemCount:     4,
	})
	assert.Equal(t, "2", row.TotalScore)
	assert.Equal(t, "4", row.MaxScore)
	assert.Equal(t, 50, row.Percent)
	assert.Equal(t, "—", row.FinishedAt)
	assert.Equal(t, 4, row.ItemCount)
}
