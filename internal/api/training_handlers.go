package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/adaptaki/trainer/internal/errors"
	"github.com/adaptaki/trainer/internal/logger"
	"github.com/adaptaki/trainer/internal/models"
	"github.com/adaptaki/trainer/internal/session"
)

// handleTraining renders the practice page from the session snapshot. Filter
// options load on first visit; a load failure is shown inline and never
// blocks task fetching.
func (s *Server) handleTraining(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctrl := controllerFromContext(r.Context())

	if ctrl.Snapshot().FiltersPhase == session.FiltersIdle {
		if err := ctrl.LoadFilters(r.Context()); err != nil {
			log.Warn("filter options unavailable: %v", err)
		}
	}

	view := ctrl.Snapshot()
	s.render(w, r, "pages/training.html", pageData{
		"page": newTrainingPage(view),
	})
}

// handleRetryFilters re-runs the filter-options fetch on demand.
func (s *Server) handleRetryFilters(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctrl := controllerFromContext(r.Context())

	if err := ctrl.LoadFilters(r.Context()); err != nil {
		log.Warn("filter reload failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleStartTask begins a new attempt with the submitted filter selection.
func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctrl := controllerFromContext(r.Context())

	sel, err := parseSelection(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("starting practice: subject_id=%d, task_type=%q", sel.SubjectID, sel.TaskType)
	if err := ctrl.RequestTask(r.Context(), sel, true); err != nil {
		log.Warn("task fetch failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleSubmitAnswer grades the current answer. Failures leave the answer
// editable; the page renders the stored error.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctrl := controllerFromContext(r.Context())

	raw := r.FormValue("answer")
	if strings.TrimSpace(raw) == "" {
		log.Debug("ignoring empty answer submission")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := ctrl.SubmitAnswer(r.Context(), raw); err != nil {
		log.Warn("answer submission failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleNextTask advances to the next task within the held attempt, reusing
// the selection the attempt was started with.
func (s *Server) handleNextTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctrl := controllerFromContext(r.Context())

	if err := ctrl.Advance(r.Context()); err != nil {
		log.Warn("advance failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleFinishAttempt closes the held attempt and loads its results.
func (s *Server) handleFinishAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	ctrl := controllerFromContext(r.Context())

	if err := ctrl.FinishAttempt(r.Context()); err != nil {
		log.Warn("finish failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDismissSummary returns from the results panel to the idle page.
func (s *Server) handleDismissSummary(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFromContext(r.Context())
	ctrl.DismissSummary()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleToggleSolution shows or hides the worked solution for the graded task.
func (s *Server) handleToggleSolution(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFromContext(r.Context())
	ctrl.ToggleSolution()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func parseSelection(r *http.Request) (models.TaskSelection, error) {
	var sel models.TaskSelection
	if raw := r.FormValue("subject_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return sel, errors.NewValidationError("subject_id", "must be an integer")
		}
		sel.SubjectID = id
	}
	sel.TaskType = r.FormValue("task_type")
	return sel, nil
}
