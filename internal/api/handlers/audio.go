package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/speechpath/speechpath-server/internal/api/middleware"
	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/service"
)

type AudioHandler struct {
	audioService *service.AudioService
	maxBytes     int64
}

func NewAudioHandler(audioService *service.AudioService, maxBytes int64) *AudioHandler {
	return &AudioHandler{audioService: audioService, maxBytes: maxBytes}
}

func (h *AudioHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Slack for multipart framing on top of the payload cap.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "File size exceeds the upload limit", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Audio file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var duration *float64
	if v := r.FormValue("duration"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d >= 0 {
			duration = &d
		}
	}

	audio, err := h.audioService.Upload(r.Context(), userID, service.UploadInput{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Duration:     duration,
		Body:         file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedMediaType):
			http.Error(w, "Unsupported audio type", http.StatusBadRequest)
		case errors.Is(err, service.ErrFileTooLarge):
			http.Error(w, "File size exceeds the upload limit", http.StatusBadRequest)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, audio)
}

func (h *AudioHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	files, err := h.audioService.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []*domain.AudioFile{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *AudioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid audio file id", http.StatusBadRequest)
		return
	}

	if err := h.audioService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Audio file not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AudioHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid audio file id", http.StatusBadRequest)
		return
	}

	f, audio, err := h.audioService.Open(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Audio file not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", audio.MimeType)
	http.ServeContent(w, r, audio.OriginalName, audio.CreatedAt, f)
}
