package api

import (
	"database/sql"
	"html/template"
	"net/http"

	"github.com/adaptaki/trainer/internal/logger"
	"github.com/adaptaki/trainer/internal/repository"
	"github.com/adaptaki/trainer/internal/session"
	"github.com/adaptaki/trainer/internal/trainingapi"
)

type Server struct {
	DB        *sql.DB
	Client    trainingapi.ClientInterface
	History   repository.HistoryRepository
	Templates *template.Template

	sessions *sessionRegistry
}

// NewServer wires the HTTP surface. Each browser session gets its own
// controller; the remote client and history store are shared.
func NewServer(db *sql.DB, client trainingapi.ClientInterface, history repository.HistoryRepository, templates *template.Template) *Server {
	s := &Server{
		DB:        db,
		Client:    client,
		History:   history,
		Templates: templates,
	}
	s.sessions = newSessionRegistry(func() *session.Controller {
		return session.New(client, session.WithHistory(history))
	})
	return s
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}

	log := logger.FromContext(r.Context())
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
