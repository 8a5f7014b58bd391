package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adaptaki/trainer/internal/errors"
	"github.com/adaptaki/trainer/internal/logger"
	"github.com/adaptaki/trainer/internal/models"
)

const historyPageSize = 20

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("rendering attempt history")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}

	filter := models.HistoryFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  historyPageSize + 1,
		Offset: (page - 1) * historyPageSize,
	}

	records, err := s.History.ListAttempts(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	hasNext := len(records) > historyPageSize
	if hasNext {
		records = records[:historyPageSize]
	}

	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, newHistoryRow(rec))
	}

	s.render(w, r, "pages/history.html", pageData{
		"rows":      rows,
		"status":    filter.Status,
		"page":      page,
		"prev_page": page - 1,
		"next_page": page + 1,
		"has_next":  hasNext,
	})
}

func (s *Server) handleHistoryDetail(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	idStr := chi.URLParam(r, "testAttemptID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Warn("invalid attempt id: %s", idStr)
		handleError(w, r, errors.NewValidationError("testAttemptID", "must be an integer"))
		return
	}

	summary, err := s.History.GetSummary(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if summary == nil {
		handleError(w, r, errors.NewNotFoundError("attempt", id))
		return
	}

	s.render(w, r, "pages/history_detail.html", pageData{
		"summary": newSummaryView(summary),
	})
}
