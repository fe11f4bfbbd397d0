package api

import (
	"net/http"

	"github.com/vytor/flashdrill/internal/errors"
)

type cardRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type idsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.CardService.ListCards(r.Context(), groupID, r.URL.Query().Get("filter"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.AddCard(r.Context(), groupID, req.Question, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.UpdateCard(r.Context(), groupID, cardID, req.Question, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	n, err := s.CardService.DeleteCards(r.Context(), groupID, []int64{cardID})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if n == 0 {
		handleError(w, r, errors.NewNotFoundError("card", cardID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCards(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	n, err := s.CardService.DeleteCards(r.Context(), groupID, req.IDs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	cardID, err := pathID(r, "cardID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.CardService.MoveCard(r.Context(), groupID, cardID, req.Direction); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req idsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	n, err := s.CardService.ResetStats(r.Context(), groupID, req.IDs)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, countResponse{Count: n})
}

func (s *Server) handleClearGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	n, err := s.CardService.ClearGroup(r.Context(), groupID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, countResponse{Count: n})
}
