package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/flashdrill/internal/errors"
	"github.com/vytor/flashdrill/internal/services"
	"github.com/vytor/flashdrill/internal/study"
)

type startStudyRequest struct {
	Mode              string                `json:"mode" validate:"omitempty,oneof=learn review"`
	TimeoutSeconds    *int                  `json:"timeout_seconds"`
	WarnSeconds       *int                  `json:"warn_seconds"`
	WrongDelaySeconds *int                  `json:"wrong_delay_seconds"`
	SoundEnabled      *bool                 `json:"sound_enabled"`
	Speech            *study.SpeechSettings `json:"speech"`
}

type drawRequest struct {
	Draw int `json:"draw" validate:"min=1"`
}

type answerRequest struct {
	Draw    int    `json:"draw" validate:"min=1"`
	Outcome string `json:"outcome" validate:"required,oneof=known wrong"`
}

type eventsResponse struct {
	Events  []study.Event `json:"events"`
	LastSeq int64         `json:"last_seq"`
}

func (s *Server) handleStartStudy(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req startStudyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	mode := study.Learn
	if req.Mode != "" {
		if mode, err = study.ParseMode(req.Mode); err != nil {
			handleError(w, r, errors.NewValidationError("mode", "must be learn or review"))
			return
		}
	}

	view, err := s.StudyService.Start(r.Context(), groupID, services.StudyOptions{
		Mode:              mode,
		TimeoutSeconds:    req.TimeoutSeconds,
		WarnSeconds:       req.WarnSeconds,
		WrongDelaySeconds: req.WrongDelaySeconds,
		SoundEnabled:      req.SoundEnabled,
		Speech:            req.Speech,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	view, err := s.StudyService.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleStopStudy(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.Stop(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.StudyService.Reveal(r.Context(), chi.URLParam(r, "sessionID"), req.Draw)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.StudyService.Answer(r.Context(), chi.URLParam(r, "sessionID"), req.Draw, req.Outcome)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleStudyEvents(w http.ResponseWriter, r *http.Request) {
	var after int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			handleError(w, r, errors.NewBadRequestError("after must be a non-negative integer"))
			return
		}
		after = n
	}

	id := chi.URLParam(r, "sessionID")
	events, err := s.StudyService.Events(r.Context(), id, after)
	if err != nil {
		handleError(w, r, err)
		return
	}
	resp := eventsResponse{Events: events, LastSeq: after}
	if len(events) > 0 {
		resp.LastSeq = events[len(events)-1].Seq
	}
	writeJSON(w, r, http.StatusOK, resp)
}
