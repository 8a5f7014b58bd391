package session

import "github.com/adaptaki/trainer/internal/models"

// Each logical machine of a practice session carries one discriminated phase,
// so combinations like "submission succeeded with no task held" cannot be
// represented.

// FiltersPhase is the lifecycle of the filter-options fetch.
type FiltersPhase int

const (
	FiltersIdle FiltersPhase = iota
	FiltersLoading
	FiltersError
	FiltersReady
)

func (p FiltersPhase) String() string {
	return [...]string{"idle", "loading", "error", "ready"}[p]
}

// TaskPhase is the lifecycle of the current task fetch.
type TaskPhase int

const (
	TaskIdle TaskPhase = iota
	TaskLoading
	TaskError
	TaskReady
)

func (p TaskPhase) String() string {
	return [...]string{"idle", "loading", "error", "ready"}[p]
}

// SubmitPhase is the lifecycle of the current task's answer submission.
type SubmitPhase int

const (
	SubmitIdle SubmitPhase = iota
	SubmitPending
	SubmitError
	SubmitDone
)

func (p SubmitPhase) String() string {
	return [...]string{"idle", "pending", "error", "done"}[p]
}

// SummaryPhase is the lifecycle of the finish-and-summary flow.
type SummaryPhase int

const (
	SummaryNone SummaryPhase = iota
	SummaryLoading
	SummaryReady
	SummaryError
)

func (p SummaryPhase) String() string {
	return [...]string{"none", "loading", "ready", "error"}[p]
}

// View is an immutable snapshot of the controller for rendering. Pointer
// fields reference values the controller never mutates after storing.
type View struct {
	FiltersPhase FiltersPhase
	Filters      models.FilterOptions
	FiltersError string

	Selection models.TaskSelection
	TaskPhase TaskPhase
	Task      *models.Task
	TaskError string
	AttemptID *int64

	Answer       string
	SubmitPhase  SubmitPhase
	SubmitError  string
	Result       *models.SubmitResult
	ShowSolution bool

	FinishPending bool
	SummaryPhase  SummaryPhase
	Summary       *models.AttemptSummary
	SummaryError  string
}

// InSession reports whether a task is currently held.
func (v View) InSession() bool {
	return v.Task != nil
}

// ShowingSummary reports whether the summary panel replaces the task view.
func (v View) ShowingSummary() bool {
	return v.SummaryPhase != SummaryNone
}
