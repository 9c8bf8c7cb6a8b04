package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"github.com/speechpath/speechpath-server/internal/domain"
	"github.com/speechpath/speechpath-server/internal/service"
	"github.com/speechpath/speechpath-server/internal/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub             *websocket.Hub
	authService     *service.AuthService
	analysisService *service.AnalysisService
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, analysisService *service.AnalysisService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		authService:     authService,
		analysisService: analysisService,
	}
}

// Watch upgrades the connection and streams status changes for one analysis.
// Browsers cannot set an Authorization header on websocket dials, so the
// access token arrives as a query parameter.
func (h *WebSocketHandler) Watch(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}
	userID, err := h.authService.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	analysisID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid analysis id", http.StatusBadRequest)
		return
	}

	analysis, err := h.analysisService.Get(r.Context(), analysisID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Analysis not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := websocket.NewClient(h.hub, conn, analysisID, userID)
	h.hub.Subscribe(analysisID, client)
	go client.WritePump()
	go client.ReadPump()

	// Send the current state immediately so late subscribers do not wait
	// for a transition that already happened.
	snapshot, _ := json.Marshal(websocket.StatusMessage{
		AnalysisID: analysisID.String(),
		Status:     analysis.Status,
		Error:      analysis.ErrorMessage,
	})
	client.Send(snapshot)
	if analysis.Status.Terminal() {
		h.hub.Unsubscribe(analysisID, client)
	}
}
