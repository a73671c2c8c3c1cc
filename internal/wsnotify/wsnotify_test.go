package wsnotify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, m *Manager, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return m.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	manager := NewManager()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		manager.Serve(w, r)
	}))
	defer srv.Close()

	first := dial(t, srv)
	second := dial(t, srv)
	waitClients(t, manager, 2)

	manager.Broadcast(Event{Type: EventReady, Payload: map[string]string{"session": "support-session"}})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, EventReady, got.Type)
		assert.Equal(t, "support-session", got.Payload["session"])
	}
}

func TestClientRemovedAfterDisconnect(t *testing.T) {
	manager := NewManager()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		manager.Serve(w, r)
	}))
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, manager, 1)

	conn.Close()
	waitClients(t, manager, 0)
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	manager := NewManager()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		manager.Serve(w, r)
	}))
	defer srv.Close()

	live := dial(t, srv)
	waitClients(t, manager, 1)

	// cliente sem fila livre nem writer lendo dela
	stalled := &client{send: make(chan Event)}
	manager.lock.Lock()
	manager.clients[&websocket.Conn{}] = stalled
	manager.lock.Unlock()

	done := make(chan struct{})
	go func() {
		manager.Broadcast(Event{Type: EventMessage, Payload: map[string]string{"body": "oi"}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast bloqueou no cliente parado")
	}

	assert.Equal(t, 1, manager.ClientCount())
	live.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	require.NoError(t, live.ReadJSON(&got))
	assert.Equal(t, EventMessage, got.Type)
}
