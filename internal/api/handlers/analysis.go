package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/api/middleware"
	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/service"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

type CreateAnalysisRequest struct {
	AudioFileID string `json:"audioFileId"`
}

func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	audioFileID, err := uuid.Parse(req.AudioFileID)
	if err != nil {
		http.Error(w, "Invalid audio file id", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.Submit(r.Context(), audioFileID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Audio file not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, analysis)
}

func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	analyses, err := h.analysisService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if analyses == nil {
		analyses = []*domain.SpeechAnalysis{}
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid analysis id", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.Get(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// LatestForAudioFile returns the most recent completed analysis for a file.
func (h *AnalysisHandler) LatestForAudioFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	audioFileID, err := uuid.Parse(chi.URLParam(r, "audioFileId"))
	if err != nil {
		http.Error(w, "Invalid audio file id", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.LatestCompletedForFile(r.Context(), audioFileID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "No completed analysis for this file", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *AnalysisHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid analysis id", http.StatusBadRequest)
		return
	}

	pdfBytes, err := h.analysisService.RenderPDF(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Analysis not found", http.StatusNotFound)
		case errors.Is(err, service.ErrAnalysisNotCompleted):
			http.Error(w, "Analysis is not completed", http.StatusConflict)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"speech-analysis-%s.pdf\"", id))
	w.Write(pdfBytes)
}
