package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/flashdrill/internal/logger"
)

const readyTimeout = 2 * time.Second

// handleHealth is the liveness probe. It always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady is the readiness probe. It returns 503 while the database
// does not answer a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			logger.FromContext(ctx).Warn("readiness check failed - database: %v", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
