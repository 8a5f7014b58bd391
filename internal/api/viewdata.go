package api

import (
	"github.com/adaptaki/trainer/internal/format"
	"github.com/adaptaki/trainer/internal/models"
	"github.com/adaptaki/trainer/internal/session"
)

// resultView is the template-ready feedback block for a graded answer.
type resultView struct {
	Band         string
	IsCorrect    bool
	ScoreText    string
	MaxScoreText string
	AnswerKey    string
	HasAnswerKey bool
	SolutionText string
	HasSolution  bool
	SubmittedAt  string
}

func newResultView(res *models.SubmitResult) *resultView {
	if res == nil {
		return nil
	}
	key, hasKey := format.AnswerKeyText(res.AnswerKey)
	v := &resultView{
		Band:         format.ResultBand(res.Score, res.MaxScore, res.IsCorrect).String(),
		IsCorrect:    res.IsCorrect,
		ScoreText:    format.ScoreText(res.Score),
		MaxScoreText: format.ScoreText(res.MaxScore),
		AnswerKey:    format.OrPlaceholder(key, hasKey),
		HasAnswerKey: hasKey,
		SubmittedAt:  res.SubmittedAt,
	}
	if res.SolutionText != nil && *res.SolutionText != "" {
		v.SolutionText = *res.SolutionText
		v.HasSolution = true
	}
	return v
}

// summaryRow is one scored task in the attempt results table.
type summaryRow struct {
	Position     int
	TaskType     string
	Prompt       string
	Answer       string
	AnswerKey    string
	Band         string
	ScoreText    string
	MaxScoreText string
	SolutionText string
	HasSolution  bool
	SubmittedAt  string
}

// summaryView is the template-ready attempt results panel. Percent is not
// clamped; a score above the maximum renders above 100.
type summaryView struct {
	TestAttemptID int64
	Status        string
	StartedAt     string
	FinishedAt    string
	TotalScore    string
	MaxScore      string
	Percent       int
	Rows          []summaryRow
}

func newSummaryView(sum *models.AttemptSummary) *summaryView {
	if sum == nil {
		return nil
	}
	v := &summaryView{
		TestAttemptID: sum.TestAttemptID,
		Status:        sum.Status,
		StartedAt:     format.OrPlaceholder(sum.StartedAt, sum.StartedAt != ""),
		FinishedAt:    format.Placeholder,
		TotalScore:    format.ScoreText(sum.TotalScore),
		MaxScore:      format.ScoreText(sum.MaxScore),
		Percent:       format.Percent(sum.TotalScore, sum.MaxScore),
	}
	if sum.FinishedAt != nil && *sum.FinishedAt != "" {
		v.FinishedAt = *sum.FinishedAt
	}
	for i, item := range sum.Items {
		answer, hasAnswer := format.AnswerPayloadText(item.AnswerPayload)
		key, hasKey := format.AnswerKeyText(item.AnswerKey)
		row := summaryRow{
			Position:     i + 1,
			TaskType:     item.TaskType,
			Prompt:       item.Prompt,
			Answer:       format.OrPlaceholder(answer, hasAnswer),
			AnswerKey:    format.OrPlaceholder(key, hasKey),
			Band:         format.ResultBand(item.Score, item.MaxScore, item.IsCorrect).String(),
			ScoreText:    format.ScoreText(item.Score),
			MaxScoreText: format.ScoreText(item.MaxScore),
			SubmittedAt:  item.SubmittedAt,
		}
		if item.SolutionText != nil && *item.SolutionText != "" {
			row.SolutionText = *item.SolutionText
			row.HasSolution = true
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

// historyRow is one stored attempt in the history listing.
type historyRow struct {
	TestAttemptID int64
	Status        string
	FinishedAt    string
	TotalScore    string
	MaxScore      string
	Percent       int
	ItemCount     int
}

func newHistoryRow(rec models.AttemptRecord) historyRow {
	return historyRow{
		TestAttemptID: rec.TestAttemptID,
		Status:        rec.Status,
		FinishedAt:    format.OrPlaceholder(rec.FinishedAt, rec.FinishedAt != ""),
		TotalScore:    format.ScoreText(rec.TotalScore),
		MaxScore:      format.ScoreText(rec.MaxScore),
		Percent:       format.Percent(rec.TotalScore, rec.MaxScore),
		ItemCount:     rec.ItemCount,
	}
}

// trainingPage bundles everything the training template renders: the raw
// snapshot for phase checks plus the derived presentation blocks.
type trainingPage struct {
	View    session.View
	Result  *resultView
	Summary *summaryView
}

func newTrainingPage(view session.View) trainingPage {
	return trainingPage{
		View:    view,
		Result:  newResultView(view.Result),
		Summary: newSummaryView(view.Summary),
	}
}
