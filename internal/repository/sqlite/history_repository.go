package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/adaptaki/trainer/internal/logger"
	"github.com/adaptaki/trainer/internal/models"
	"github.com/adaptaki/trainer/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository implementation
func NewHistoryRepository(db *sql.DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) InsertSummary(ctx context.Context, summary models.AttemptSummary) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("recording attempt summary: test_attempt_id=%d, items=%d", summary.TestAttemptID, len(summary.Items))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return 0, err
	}
	defer tx.Rollback()

	// Re-recording the same attempt replaces the previous record.
	if _, err := tx.ExecContext(ctx, `DELETE FROM attempts WHERE test_attempt_id = ?`, summary.TestAttemptID); err != nil {
		log.Error("failed to clear previous record: %v", err)
		return 0, err
	}

	finishedAt := ""
	if summary.FinishedAt != nil {
		finishedAt = *summary.FinishedAt
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO attempts (test_attempt_id, status, started_at, finished_at, total_score, max_score)
VALUES (?, ?, ?, ?, ?, ?)
`, summary.TestAttemptID, summary.Status, summary.StartedAt, finishedAt, summary.TotalScore, summary.MaxScore)
	if err != nil {
		log.Error("failed to insert attempt: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get attempt id: %v", err)
		return 0, err
	}

	for i, item := range summary.Items {
		payload, err := json.Marshal(item.AnswerPayload)
		if err != nil {
			log.Error("failed to encode answer payload: %v", err)
			return 0, err
		}
		var key sql.NullString
		if item.AnswerKey != nil {
			raw, err := json.Marshal(item.AnswerKey)
			if err != nil {
				log.Error("failed to encode answer key: %v", err)
				return 0, err
			}
			key = sql.NullString{String: string(raw), Valid: true}
		}
		var solution sql.NullString
		if item.SolutionText != nil {
			solution = sql.NullString{String: *item.SolutionText, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO attempt_items (attempt_id, remote_attempt_id, task_id, task_type, prompt, answer_payload, answer_key, is_correct, score, max_score, submitted_at, solution_text, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, item.AttemptID, item.TaskID, item.TaskType, item.Prompt, string(payload), key, item.IsCorrect, item.Score, item.MaxScore, item.SubmittedAt, solution, i)
		if err != nil {
			log.Error("failed to insert attempt item: %v", err)
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit attempt summary: %v", err)
		return 0, err
	}
	log.Debug("attempt summary recorded: id=%d", id)
	return id, nil
}

func (r *historyRepository) ListAttempts(ctx context.Context, filter models.HistoryFilter) ([]models.AttemptRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("listing attempts: status=%q, limit=%d, offset=%d", filter.Status, filter.Limit, filter.Offset)

	query := sqlBuilder.
		Select(
			"a.id", "a.test_attempt_id", "a.status", "a.started_at", "a.finished_at",
			"a.total_score", "a.max_score",
			"(SELECT COUNT(*) FROM attempt_items i WHERE i.attempt_id = a.id) AS item_count",
			"a.created_at",
		).
		From("attempts a").
		OrderBy("a.created_at DESC", "a.id DESC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"a.status": filter.Status})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query = query.Limit(uint64(limit))
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.AttemptRecord
	for rows.Next() {
		var rec models.AttemptRecord
		if err := rows.Scan(&rec.ID, &rec.TestAttemptID, &rec.Status, &rec.StartedAt, &rec.FinishedAt, &rec.TotalScore, &rec.MaxScore, &rec.ItemCount, &rec.CreatedAt); err != nil {
			log.Error("failed to scan attempt row: %v", err)
			return nil, err
		}
		records = append(records, rec)
	}
	log.Debug("found %d attempts", len(records))
	return records, rows.Err()
}

func (r *historyRepository) GetSummary(ctx context.Context, testAttemptID int64) (*models.AttemptSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("getting stored summary: test_attempt_id=%d", testAttemptID)

	var (
		id         int64
		summary    models.AttemptSummary
		finishedAt string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, test_attempt_id, status, started_at, finished_at, total_score, max_score
FROM attempts
WHERE test_attempt_id = ?
`, testAttemptID).Scan(&id, &summary.TestAttemptID, &summary.Status, &summary.StartedAt, &finishedAt, &summary.TotalScore, &summary.MaxScore)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("stored summary not found: test_attempt_id=%d", testAttemptID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get attempt: %v", err)
		return nil, err
	}
	if finishedAt != "" {
		summary.FinishedAt = &finishedAt
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT remote_attempt_id, task_id, task_type, prompt, answer_payload, answer_key, is_correct, score, max_score, submitted_at, solution_text
FROM attempt_items
WHERE attempt_id = ?
ORDER BY position
`, id)
	if err != nil {
		log.Error("failed to query attempt items: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     models.SummaryItem
			payload  string
			key      sql.NullString
			solution sql.NullString
		)
		if err := rows.Scan(&item.AttemptID, &item.TaskID, &item.TaskType, &item.Prompt, &payload, &key, &item.IsCorrect, &item.Score, &item.MaxScore, &item.SubmittedAt, &solution); err != nil {
			log.Error("failed to scan attempt item: %v", err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &item.AnswerPayload); err != nil {
			log.Error("failed to decode answer payload: %v", err)
			return nil, err
		}
		if key.Valid {
			if err := json.Unmarshal([]byte(key.String), &item.AnswerKey); err != nil {
				log.Error("failed to decode answer key: %v", err)
				return nil, err
			}
		}
		if solution.Valid {
			item.SolutionText = &solution.String
		}
		summary.Items = append(summary.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("stored summary found: items=%d", len(summary.Items))
	return &summary, nil
}
