package models

// Subject is one selectable subject filter option.
type Subject struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// TaskType is one selectable task-type filter option.
type TaskType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions holds the enumerable constraints used to scope which task is
// fetched next. Both lists may be empty; an empty selection means "all".
type FilterOptions struct {
	Subjects  []Subject  `json:"subjects"`
	TaskTypes []TaskType `json:"task_types"`
}

// TaskSelection constrains the next random-task request. Zero values mean no
// constraint.
type TaskSelection struct {
	SubjectID int64
	TaskType  string
}

// Task is one practice problem instance. TypePayload is opaque to the client;
// its structure depends on the task type.
type Task struct {
	ID            int64          `json:"id"`
	SubjectID     int64          `json:"subject_id"`
	TaskType      string         `json:"task_type"`
	Prompt        string         `json:"prompt"`
	TypePayload   map[string]any `json:"type_payload"`
	TestAttemptID int64          `json:"test_attempt_id"`
}

// AnswerSubmission is the outbound record for one answer. DurationMS is nil
// when no task start time was recorded, never zero by default.
type AnswerSubmission struct {
	TaskID        int64          `json:"task_id"`
	AnswerPayload map[string]any `json:"answer_payload"`
	DurationMS    *int64         `json:"duration_ms,omitempty"`
	TestAttemptID *int64         `json:"test_attempt_id,omitempty"`
}

// SubmitResult is the server's verdict for one submission. Score and MaxScore
// are decimal strings and are never mutated client-side.
type SubmitResult struct {
	AttemptID    int64   `json:"attempt_id"`
	TaskID       int64   `json:"task_id"`
	IsCorrect    bool    `json:"is_correct"`
	Score        string  `json:"score"`
	MaxScore     string  `json:"max_score"`
	SubmittedAt  string  `json:"submitted_at"`
	SolutionText *string `json:"solution_text"`
	AnswerKey    any     `json:"answer_key,omitempty"`
}

// SummaryItem is one scored task inside a finished attempt, ordered by the
// server (assumed chronological).
type SummaryItem struct {
	AttemptID     int64          `json:"attempt_id"`
	TaskID        int64          `json:"task_id"`
	TaskType      string         `json:"task_type"`
	Prompt        string         `json:"prompt"`
	AnswerPayload map[string]any `json:"answer_payload"`
	AnswerKey     any            `json:"answer_key,omitempty"`
	IsCorrect     bool           `json:"is_correct"`
	Score         string         `json:"score"`
	MaxScore      string         `json:"max_score"`
	SubmittedAt   string         `json:"submitted_at"`
	SolutionText  *string        `json:"solution_text"`
}

// AttemptSummary is the finished attempt's aggregate result.
type AttemptSummary struct {
	TestAttemptID int64         `json:"test_attempt_id"`
	Status        string        `json:"status"`
	StartedAt     string        `json:"started_at"`
	FinishedAt    *string       `json:"finished_at"`
	TotalScore    string        `json:"total_score"`
	MaxScore      string        `json:"max_score"`
	Items         []SummaryItem `json:"items"`
}
