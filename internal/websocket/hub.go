// Package websocket pushes analysis status updates to subscribed clients so
// the dashboard does not have to poll for terminal states.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath-server/internal/domain"
)

// StatusMessage is the wire format pushed to subscribers.
type StatusMessage struct {
	AnalysisID string                `json:"analysisId"`
	Status     domain.AnalysisStatus `json:"status"`
	Error      string                `json:"error,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*Client]bool
	stopped bool
	log     *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		subs: make(map[uuid.UUID]map[*Client]bool),
		log:  log,
	}
}

// Subscribe registers a client for updates on one analysis.
func (h *Hub) Subscribe(analysisID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		client.Close()
		return
	}
	if h.subs[analysisID] == nil {
		h.subs[analysisID] = make(map[*Client]bool)
	}
	h.subs[analysisID][client] = true
}

// Unsubscribe drops a client. Safe to call after the hub removed it already.
func (h *Hub) Unsubscribe(analysisID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.subs[analysisID]; ok {
		if clients[client] {
			delete(clients, client)
			client.Close()
		}
		if len(clients) == 0 {
			delete(h.subs, analysisID)
		}
	}
}

// NotifyStatus broadcasts a status change to every subscriber of the
// analysis. Terminal statuses are delivered exactly once: the subscription
// set is dropped after the send.
func (h *Hub) NotifyStatus(analysisID uuid.UUID, status domain.AnalysisStatus, errMsg string) {
	msg := StatusMessage{
		AnalysisID: analysisID.String(),
		Status:     status,
		Error:      errMsg,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorw("marshal status message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.subs[analysisID]
	for client := range clients {
		client.Send(data)
	}
	if status.Terminal() && clients != nil {
		for client := range clients {
			client.Close()
		}
		delete(h.subs, analysisID)
	}
}

// Stop closes every connected client and refuses new subscriptions.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return
	}
	h.stopped = true
	for id, clients := range h.subs {
		for client := range clients {
			client.Close()
		}
		delete(h.subs, id)
	}
}
