// Package session owns the state of one randomized practice session and
// orchestrates the remote task service calls that drive it: fetching filter
// options, requesting tasks bound to a test attempt, submitting answers,
// finishing the attempt, and retrieving its scored summary.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adaptaki/trainer/internal/errors"
	"github.com/adaptaki/trainer/internal/logger"
	"github.com/adaptaki/trainer/internal/models"
	"github.com/adaptaki/trainer/internal/trainingapi"
)

// Fallback messages shown when the service's failure payload carries no
// error string.
const (
	msgFilterLoadFailed = "Failed to load filter options."
	msgTaskFetchFailed  = "Failed to fetch a task."
	msgSubmitFailed     = "Failed to submit the answer."
	msgFinishFailed     = "Failed to finish the attempt."
	msgSummaryFailed    = "Could not retrieve the attempt results."
)

// HistoryRecorder persists a finished attempt's summary locally. Optional;
// recording is best-effort and never blocks the session flow.
type HistoryRecorder interface {
	InsertSummary(ctx context.Context, summary models.AttemptSummary) (int64, error)
}

// Controller is the state container for one practice session. All remote
// operations are single-flight: a second activation while the matching call
// is pending is rejected without touching the wire. Completing a session
// returns the controller to idle, ready for the next one.
type Controller struct {
	client  trainingapi.ClientInterface
	history HistoryRecorder
	log     *logger.Logger
	now     func() time.Time

	mu sync.Mutex

	filtersPhase FiltersPhase
	filters      models.FilterOptions
	filtersErr   string

	selection models.TaskSelection
	taskPhase TaskPhase
	task      *models.Task
	taskErr   string
	attemptID *int64
	startedAt time.Time // zero when no task start was recorded

	answer       string
	submitPhase  SubmitPhase
	submitErr    string
	result       *models.SubmitResult
	showSolution bool

	finishPending bool
	summaryPhase  SummaryPhase
	summary       *models.AttemptSummary
	summaryErr    string
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory sets the local store finished summaries are recorded into.
func WithHistory(h HistoryRecorder) Option {
	return func(c *Controller) {
		c.history = h
	}
}

// WithClock overrides the time source, for duration assertions in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates an idle controller on top of the given task-service client.
func New(client trainingapi.ClientInterface, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		log:    logger.Default().WithPrefix("session"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadFilters fetches the subject and task-type options. A failure degrades
// to unconstrained filtering and never blocks task fetching.
func (c *Controller) LoadFilters(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("session")

	c.mu.Lock()
	if c.filtersPhase == FiltersLoading {
		c.mu.Unlock()
		return errors.NewValidationError("filters", "filter load already in progress")
	}
	c.filtersPhase = FiltersLoading
	c.filtersErr = ""
	c.mu.Unlock()

	// Both lists load concurrently; they are independent reads.
	var (
		wg       sync.WaitGroup
		subjects []models.Subject
		types    []models.TaskType
		errS     error
		errT     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		subjects, errS = c.client.ListSubjects(ctx)
	}()
	go func() {
		defer wg.Done()
		types, errT = c.client.ListTaskTypes(ctx)
	}()
	wg.Wait()

	err := errS
	if err == nil {
		err = errT
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		appErr := errors.NewTrainingError(errors.ErrCodeFilterLoad, msgFilterLoadFailed, err)
		c.filtersPhase = FiltersError
		c.filtersErr = appErr.Message
		log.Warn("filter load failed: %v", err)
		return appErr
	}

	c.filters = models.FilterOptions{Subjects: subjects, TaskTypes: types}
	c.filtersPhase = FiltersReady
	log.Debug("filters loaded: subjects=%d, task_types=%d", len(subjects), len(types))
	return nil
}

// RequestTask fetches a task scoped by sel. With startNew the held attempt id
// is never sent, so the server allocates a fresh attempt; otherwise the held
// id is sent and the task joins the running attempt. Success replaces the
// whole per-task state and clears any held summary.
func (c *Controller) RequestTask(ctx context.Context, sel models.TaskSelection, startNew bool) error {
	log := logger.FromContext(ctx).WithPrefix("session")

	c.mu.Lock()
	if c.taskPhase == TaskLoading {
		c.mu.Unlock()
		return errors.NewValidationError("task", "a task request is already in progress")
	}
	var attemptID *int64
	if !startNew && c.attemptID != nil {
		id := *c.attemptID
		attemptID = &id
	}
	c.selection = sel
	c.taskPhase = TaskLoading
	c.taskErr = ""
	c.mu.Unlock()

	task, err := c.client.RandomTask(ctx, sel, attemptID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		appErr := errors.NewTrainingError(errors.ErrCodeTaskFetch, msgTaskFetchFailed, err)
		c.taskPhase = TaskError
		c.taskErr = appErr.Message
		c.task = nil
		log.Warn("task fetch failed: %v", err)
		return appErr
	}

	c.task = task
	id := task.TestAttemptID
	c.attemptID = &id
	c.answer = ""
	c.submitPhase = SubmitIdle
	c.submitErr = ""
	c.result = nil
	c.showSolution = false
	c.startedAt = c.now()
	c.summary = nil
	c.summaryPhase = SummaryNone
	c.summaryErr = ""
	c.taskPhase = TaskReady
	log.Info("task ready: task_id=%d, attempt_id=%d, start_new=%t", task.ID, id, startNew)
	return nil
}

// SetAnswer updates the draft answer. Rejected once a result is held: the
// input is locked until the session advances.
func (c *Controller) SetAnswer(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.taskPhase != TaskReady {
		return errors.NewValidationError("answer", "no task is loaded")
	}
	if c.submitPhase == SubmitDone || c.submitPhase == SubmitPending {
		return errors.NewValidationError("answer", "answer is locked")
	}
	c.answer = raw
	return nil
}

// SubmitAnswer sends raw for grading. Valid only while a task is held with no
// result yet; raw must be non-empty after trimming. Strictly single-shot per
// task instance. On failure the task stays editable for a retry.
func (c *Controller) SubmitAnswer(ctx context.Context, raw string) error {
	log := logger.FromContext(ctx).WithPrefix("session")

	c.mu.Lock()
	if c.submitPhase == SubmitPending {
		c.mu.Unlock()
		return errors.NewValidationError("submission", "a submission is already in progress")
	}
	if c.taskPhase != TaskReady || c.task == nil {
		c.mu.Unlock()
		return errors.NewValidationError("submission", "no task is loaded")
	}
	if c.submitPhase == SubmitDone {
		c.mu.Unlock()
		return errors.NewValidationError("submission", "the answer was already graded")
	}
	if strings.TrimSpace(raw) == "" {
		c.mu.Unlock()
		return errors.NewValidationError("answer", "must not be empty")
	}

	c.answer = raw
	sub := models.AnswerSubmission{
		TaskID:        c.task.ID,
		AnswerPayload: map[string]any{"value": raw},
		DurationMS:    c.elapsedLocked(),
	}
	if c.attemptID != nil {
		id := *c.attemptID
		sub.TestAttemptID = &id
	}
	c.submitPhase = SubmitPending
	c.submitErr = ""
	c.mu.Unlock()

	result, err := c.client.SubmitAnswer(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		appErr := errors.NewTrainingError(errors.ErrCodeSubmission, msgSubmitFailed, err)
		c.submitPhase = SubmitError
		c.submitErr = appErr.Message
		log.Warn("submission failed: task_id=%d: %v", sub.TaskID, err)
		return appErr
	}

	c.result = result
	c.submitPhase = SubmitDone
	c.showSolution = false
	log.Info("answer graded: task_id=%d, is_correct=%t, score=%s/%s", result.TaskID, result.IsCorrect, result.Score, result.MaxScore)
	return nil
}

// Advance fetches the next task under the same attempt and selection.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	sel := c.selection
	c.mu.Unlock()
	return c.RequestTask(ctx, sel, false)
}

// FinishAttempt closes the running attempt and retrieves its summary. The
// close call's success is durable server-side, so the summary fetch is
// attempted even when the close failed, and the held attempt state is cleared
// either way: a finished (or fate-unknown) attempt is never resumed.
func (c *Controller) FinishAttempt(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("session")

	c.mu.Lock()
	if c.finishPending {
		c.mu.Unlock()
		return errors.NewValidationError("finish", "finish already in progress")
	}
	if c.attemptID == nil {
		c.mu.Unlock()
		return errors.NewValidationError("finish", "no active attempt")
	}
	id := *c.attemptID
	c.finishPending = true
	c.summaryPhase = SummaryLoading
	c.summaryErr = ""
	c.mu.Unlock()

	closeErr := c.client.FinishAttempt(ctx, id)
	if closeErr != nil {
		log.Warn("finish failed: attempt_id=%d: %v", id, closeErr)
	}

	summary, fetchErr := c.client.AttemptSummary(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishPending = false
	c.clearAttemptLocked()

	if fetchErr != nil {
		c.summaryPhase = SummaryError
		c.summaryErr = msgSummaryFailed
		code := errors.ErrCodeSummaryFetch
		if closeErr != nil {
			code = errors.ErrCodeFinish
		}
		log.Warn("summary fetch failed: attempt_id=%d: %v", id, fetchErr)
		return errors.NewTrainingError(code, msgSummaryFailed, fetchErr)
	}

	c.summary = summary
	c.summaryPhase = SummaryReady
	log.Info("attempt finished: attempt_id=%d, total=%s/%s, items=%d", id, summary.TotalScore, summary.MaxScore, len(summary.Items))

	if c.history != nil {
		if _, err := c.history.InsertSummary(ctx, *summary); err != nil {
			// Recording is best-effort; the student still sees the summary.
			log.Warn("failed to record attempt history: %v", err)
		}
	}

	if closeErr != nil {
		// The summary still came back, so it is shown, but the failed close
		// is surfaced rather than swallowed.
		return errors.NewTrainingError(errors.ErrCodeFinish, msgFinishFailed, closeErr)
	}
	return nil
}

// DismissSummary clears the held summary and returns the controller to its
// idle state, ready for a new session.
func (c *Controller) DismissSummary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summaryPhase != SummaryReady && c.summaryPhase != SummaryError {
		return
	}
	c.summary = nil
	c.summaryPhase = SummaryNone
	c.summaryErr = ""
	c.taskPhase = TaskIdle
	c.taskErr = ""
}

// ToggleSolution flips the worked-solution reveal. Meaningful only while a
// result is shown.
func (c *Controller) ToggleSolution() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return
	}
	c.showSolution = !c.showSolution
}

// Snapshot returns a copy of the controller state for rendering.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		FiltersPhase:  c.filtersPhase,
		Filters:       c.filters,
		FiltersError:  c.filtersErr,
		Selection:     c.selection,
		TaskPhase:     c.taskPhase,
		Task:          c.task,
		TaskError:     c.taskErr,
		Answer:        c.answer,
		SubmitPhase:   c.submitPhase,
		SubmitError:   c.submitErr,
		Result:        c.result,
		ShowSolution:  c.showSolution,
		FinishPending: c.finishPending,
		SummaryPhase:  c.summaryPhase,
		Summary:       c.summary,
		SummaryError:  c.summaryErr,
	}
	if c.attemptID != nil {
		id := *c.attemptID
		v.AttemptID = &id
	}
	return v
}

// elapsedLocked returns milliseconds since the task became visible, clamped
// to >= 0, or nil when no start was recorded (absent, not zero). Callers must
// hold c.mu.
func (c *Controller) elapsedLocked() *int64 {
	if c.startedAt.IsZero() {
		return nil
	}
	d := c.now().Sub(c.startedAt).Milliseconds()
	if d < 0 {
		d = 0
	}
	return &d
}

// clearAttemptLocked drops every per-attempt value. Callers must hold c.mu.
func (c *Controller) clearAttemptLocked() {
	c.task = nil
	c.attemptID = nil
	c.answer = ""
	c.submitPhase = SubmitIdle
	c.submitErr = ""
	c.result = nil
	c.showSolution = false
	c.startedAt = time.Time{}
	c.taskPhase = TaskIdle
	c.taskErr = ""
}
