package ws

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/qrpage/internal/observability"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubDeliversToRoomOnly(t *testing.T) {
	log := observability.NopLogger()
	hub := NewHub(log)
	srv := httptest.NewServer(WSHandler(hub, log))
	defer srv.Close()

	a := dial(t, srv, "abc123")
	b := dial(t, srv, "other")

	require.Eventually(t, func() bool {
		return hub.RoomSize("abc123") == 1 && hub.RoomSize("other") == 1
	}, time.Second, 5*time.Millisecond)

	hub.SendToRoom("abc123", []byte(`{"type":"updated","pageId":"abc123"}`))

	_ = a.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := a.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"updated","pageId":"abc123"}`, string(msg))

	_ = b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = b.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	log := observability.NopLogger()
	hub := NewHub(log)
	srv := httptest.NewServer(WSHandler(hub, log))
	defer srv.Close()

	conn := dial(t, srv, "abc123")
	require.Eventually(t, func() bool { return hub.RoomSize("abc123") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.RoomSize("abc123") == 0 }, time.Second, 5*time.Millisecond)

	// sending to an empty room is a no-op
	hub.SendToRoom("abc123", []byte("x"))
}

func TestHubSlowWriterDoesNotBlockOtherRooms(t *testing.T) {
	log := observability.NopLogger()
	hub := NewHub(log)
	srv := httptest.NewServer(WSHandler(hub, log))
	defer srv.Close()

	dial(t, srv, "slow")
	require.Eventually(t, func() bool { return hub.RoomSize("slow") == 1 }, time.Second, 5*time.Millisecond)

	// hold the connection's write lock as an in-flight write would
	hub.mu.RLock()
	var wmu *sync.Mutex
	for _, m := range hub.rooms["slow"] {
		wmu = m
	}
	hub.mu.RUnlock()
	wmu.Lock()

	sent := make(chan struct{})
	go func() {
		hub.SendToRoom("slow", []byte("x"))
		close(sent)
	}()

	dial(t, srv, "fast")
	assert.Eventually(t, func() bool { return hub.RoomSize("fast") == 1 }, time.Second, 5*time.Millisecond)

	wmu.Unlock()
	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("send did not finish")
	}
}
