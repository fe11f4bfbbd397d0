package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/vytor/flashdrill/internal/importer"
	"github.com/vytor/flashdrill/internal/logger"
	"github.com/vytor/flashdrill/internal/models"
)

type previewRequest struct {
	Text string `json:"text"`
}

type previewResponse struct {
	Cards []models.CardDocument `json:"cards"`
}

type confirmRequest struct {
	Cards []models.CardDocument `json:"cards" validate:"required"`
}

type queuedResponse struct {
	Queued int `json:"queued"`
}

func (s *Server) handlePreviewImport(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	docs := s.CardService.PreviewImport(req.Text)
	logger.FromContext(r.Context()).Debug("import preview parsed %d cards", len(docs))
	writeJSON(w, r, http.StatusOK, previewResponse{Cards: docs})
}

func (s *Server) handleImportCards(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	n, err := s.CardService.ImportConfirmed(r.Context(), groupID, req.Cards)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, queuedResponse{Queued: n})
}

func (s *Server) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	n, err := s.CardService.ImportJSON(r.Context(), groupID, body)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, queuedResponse{Queued: n})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	docs, err := s.CardService.Export(r.Context(), groupID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := importer.EncodeDocuments(&buf, docs); err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="group-%d.json"`, groupID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	report, err := s.CardService.Report(r.Context(), groupID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupID")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.CardService.WriteReportCSV(r.Context(), groupID, &buf); err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%d.csv"`, groupID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
