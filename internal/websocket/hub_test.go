package websocket

import (
	"testing"
	"time"

	"ai-writing-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestHub() *Hub {
	h := NewHub(nil, nopLogger{})
	go h.Run()
	return h
}

func (h *Hub) clientCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func TestSendDeliversToRegisteredClient(t *testing.T) {
	h := newTestHub()
	sessionID := uuid.New()
	client := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, 4)}

	h.register <- client
	require.Eventually(t, func() bool {
		return h.clientCount(sessionID) == 1
	}, time.Second, 10*time.Millisecond)

	h.Send(sessionID, model.PushMessage{Type: "suggestion"})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), `"suggestion"`)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered to client")
	}
}

func TestSlowClientDroppedWithoutClosingTwice(t *testing.T) {
	h := newTestHub()
	sessionID := uuid.New()
	// No buffer and no reader: the first frame already finds it full.
	slow := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte)}

	h.register <- slow
	require.Eventually(t, func() bool {
		return h.clientCount(sessionID) == 1
	}, time.Second, 10*time.Millisecond)

	h.Send(sessionID, model.PushMessage{Type: "suggestion"})

	// The hub must drop the client, not panic its run loop.
	require.Eventually(t, func() bool {
		return h.clientCount(sessionID) == 0
	}, time.Second, 10*time.Millisecond)

	// Send is closed exactly once, by the unregister path.
	select {
	case _, open := <-slow.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("Send channel was never closed")
	}

	// The hub is still alive for other clients.
	healthy := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, 1)}
	h.register <- healthy
	require.Eventually(t, func() bool {
		return h.clientCount(sessionID) == 1
	}, time.Second, 10*time.Millisecond)

	h.Send(sessionID, model.PushMessage{Type: "suggestion"})
	select {
	case <-healthy.Send:
	case <-time.After(time.Second):
		t.Fatal("hub stopped delivering after dropping the slow client")
	}
}

func TestUnregisterTwiceIsHarmless(t *testing.T) {
	h := newTestHub()
	sessionID := uuid.New()
	client := &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, 1)}

	h.register <- client
	require.Eventually(t, func() bool {
		return h.clientCount(sessionID) == 1
	}, time.Second, 10*time.Millisecond)

	// A disconnecting client can be reported by readPump and by a concurrent
	// full-buffer drop; the second report must find nothing left to close.
	h.unregister <- client
	h.unregister <- client

	require.Eventually(t, func() bool {
		return h.clientCount(sessionID) == 0
	}, time.Second, 10*time.Millisecond)

	h.Send(sessionID, model.PushMessage{Type: "suggestion"})
	assert.Equal(t, 0, h.clientCount(sessionID))
}
