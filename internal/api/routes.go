package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	timeout := s.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(timeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Post("/import/preview", s.handlePreviewImport)

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.handleListGroups)
		r.Post("/", s.handleCreateGroup)

		r.Route("/{groupID}", func(r chi.Router) {
			r.Put("/", s.handleRenameGroup)
			r.Delete("/", s.handleDeleteGroup)

			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleAddCard)
			r.Delete("/cards", s.handleDeleteCards)
			r.Post("/cards/reset", s.handleResetStats)
			r.Patch("/cards/{cardID}", s.handleUpdateCard)
			r.Delete("/cards/{cardID}", s.handleDeleteCard)
			r.Post("/cards/{cardID}/move", s.handleMoveCard)
			r.Post("/clear", s.handleClearGroup)

			r.Post("/import", s.handleImportCards)
			r.Post("/import/json", s.handleImportJSON)
			r.Get("/export", s.handleExport)
			r.Get("/report", s.handleReport)
			r.Get("/report.csv", s.handleReportCSV)

			r.Post("/study", s.handleStartStudy)
		})
	})

	r.Route("/study/{sessionID}", func(r chi.Router) {
		r.Get("/", s.handleGetStudy)
		r.Delete("/", s.handleStopStudy)
		r.Post("/reveal", s.handleReveal)
		r.Post("/answer", s.handleAnswer)
		r.Get("/events", s.handleStudyEvents)
	})

	return r
}
