package api

import (
	"net/http"

	"github.com/vytor/flashdrill/internal/logger"
)

type groupRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.GroupService.ListGroups(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	group, err := s.GroupService.CreateGroup(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, group)
}

func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	group, err := s.GroupService.RenameGroup(r.Context(), id, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.GroupService.DeleteGroup(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	s.StudyService.StopGroup(r.Context(), id)

	logger.FromContext(r.Context()).Info("group deleted: id=%d", id)
	w.WriteHeader(http.StatusNoContent)
}
