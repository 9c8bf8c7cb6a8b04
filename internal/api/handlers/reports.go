package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/api/middleware"
	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type CreateReportRequest struct {
	SpeechAnalysisID string   `json:"speechAnalysisId"`
	ReportType       string   `json:"reportType"`
	Sections         []string `json:"sections"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	analysisID, err := uuid.Parse(req.SpeechAnalysisID)
	if err != nil {
		http.Error(w, "Invalid analysis id", http.StatusBadRequest)
		return
	}
	reportType := domain.ReportType(req.ReportType)
	if req.ReportType != "" && !domain.ValidReportType(reportType) {
		http.Error(w, "Invalid report type", http.StatusBadRequest)
		return
	}

	rep, err := h.reportService.Create(r.Context(), userID, service.CreateReportInput{
		SpeechAnalysisID: analysisID,
		ReportType:       reportType,
		Sections:         req.Sections,
	})
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

	writeJSON(w, http.StatusCreated, rep)
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reports, err := h.reportService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid report id", http.StatusBadRequest)
		return
	}

	if err := h.reportService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Report not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
