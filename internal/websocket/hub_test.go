package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/speechpath/speechpath-server/internal/domain"
)

func newTestHub() *Hub {
	return NewHub(zap.NewNop().Sugar())
}

// recv pops one queued message from a client, failing if none is buffered.
func recv(t *testing.T, c *Client) StatusMessage {
	t.Helper()

	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed before a message arrived")
		var msg StatusMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("no message queued")
		return StatusMessage{}
	}
}

func TestHub_NotifyStatus(t *testing.T) {
	hub := newTestHub()
	analysisID := uuid.New()
	client := NewClient(hub, nil, analysisID, uuid.New())

	hub.Subscribe(analysisID, client)
	hub.NotifyStatus(analysisID, domain.AnalysisStatusProcessing, "")

	msg := recv(t, client)
	assert.Equal(t, analysisID.String(), msg.AnalysisID)
	assert.Equal(t, domain.AnalysisStatusProcessing, msg.Status)
	assert.Empty(t, msg.Error)

	// Non-terminal updates keep the subscription alive.
	hub.NotifyStatus(analysisID, domain.AnalysisStatusProcessing, "")
	recv(t, client)
}

func TestHub_TerminalStatusDeliveredOnce(t *testing.T) {
	hub := newTestHub()
	analysisID := uuid.New()
	client := NewClient(hub, nil, analysisID, uuid.New())

	hub.Subscribe(analysisID, client)
	hub.NotifyStatus(analysisID, domain.AnalysisStatusCompleted, "")

	msg := recv(t, client)
	assert.Equal(t, domain.AnalysisStatusCompleted, msg.Status)

	// The subscription is gone and the client is closed.
	_, ok := <-client.send
	assert.False(t, ok, "client must be closed after a terminal status")

	hub.mu.RLock()
	_, subscribed := hub.subs[analysisID]
	hub.mu.RUnlock()
	assert.False(t, subscribed)
}

func TestHub_SendAfterTerminalClose(t *testing.T) {
	hub := newTestHub()
	analysisID := uuid.New()
	client := NewClient(hub, nil, analysisID, uuid.New())

	// A fast worker can finish between Subscribe and the handler's
	// snapshot send; the closed client must swallow the late message.
	hub.Subscribe(analysisID, client)
	hub.NotifyStatus(analysisID, domain.AnalysisStatusCompleted, "")

	assert.NotPanics(t, func() {
		client.Send([]byte(`{"status":"processing"}`))
	})

	msg := recv(t, client)
	assert.Equal(t, domain.AnalysisStatusCompleted, msg.Status)
	_, ok := <-client.send
	assert.False(t, ok, "only the terminal message may be queued")
}

func TestHub_TerminalStatusCarriesError(t *testing.T) {
	hub := newTestHub()
	analysisID := uuid.New()
	client := NewClient(hub, nil, analysisID, uuid.New())

	hub.Subscribe(analysisID, client)
	hub.NotifyStatus(analysisID, domain.AnalysisStatusFailed, "transcription timeout")

	msg := recv(t, client)
	assert.Equal(t, domain.AnalysisStatusFailed, msg.Status)
	assert.Equal(t, "transcription timeout", msg.Error)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := newTestHub()
	analysisID := uuid.New()
	client := NewClient(hub, nil, analysisID, uuid.New())

	hub.Subscribe(analysisID, client)
	hub.Unsubscribe(analysisID, client)

	_, ok := <-client.send
	assert.False(t, ok, "client must be closed on unsubscribe")

	// Unsubscribing again is harmless.
	hub.Unsubscribe(analysisID, client)

	hub.NotifyStatus(analysisID, domain.AnalysisStatusCompleted, "")
}

func TestHub_NotifyWithoutSubscribers(t *testing.T) {
	hub := newTestHub()

	// Must not panic or block.
	hub.NotifyStatus(uuid.New(), domain.AnalysisStatusCompleted, "")
}

func TestHub_Stop(t *testing.T) {
	hub := newTestHub()
	analysisID := uuid.New()
	client := NewClient(hub, nil, analysisID, uuid.New())

	hub.Subscribe(analysisID, client)
	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok, "clients must be closed on hub stop")

	// New subscriptions after stop are rejected by closing the client.
	late := NewClient(hub, nil, analysisID, uuid.New())
	hub.Subscribe(analysisID, late)
	_, ok = <-late.send
	assert.False(t, ok)
}
