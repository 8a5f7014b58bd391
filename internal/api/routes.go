package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleTraining)
		r.Post("/training/filters", s.handleRetryFilters)
		r.Post("/training/start", s.handleStartTask)
		r.Post("/training/answer", s.handleSubmitAnswer)
		r.Post("/training/next", s.handleNextTask)
		r.Post("/training/finish", s.handleFinishAttempt)
		r.Post("/training/solution", s.handleToggleSolution)
		r.Post("/training/summary/dismiss", s.handleDismissSummary)

		r.Get("/history", s.handleHistory)
		r.Get("/history/{testAttemptID}", s.handleHistoryDetail)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	return r
}
