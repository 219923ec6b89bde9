package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialReloader(t *testing.T, lr LiveReloaderInterface) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(lr.Handler))

	url := "ws" + server.URL[len("http"):]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("failed to connect to WebSocket: %v", err)
	}

	waitFor(t, func() bool { return lr.Clients() == 1 })
	return ws, server.Close
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLiveReloader_ClientConnectsAndReceivesReload(t *testing.T) {
	lr := NewLiveReloader()
	ws, closeServer := dialReloader(t, lr)
	defer closeServer()
	defer ws.Close()

	lr.BroadcastReload()

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read reload message: %v", err)
	}
	if string(msg) != "reload" {
		t.Errorf("expected 'reload' message, got %q", msg)
	}
}

func TestLiveReloader_RemovesDisconnectedClients(t *testing.T) {
	lr := NewLiveReloader()
	ws, closeServer := dialReloader(t, lr)
	defer closeServer()

	_ = ws.Close()

	waitFor(t, func() bool { return lr.Clients() == 0 })

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("BroadcastReload panicked after client disconnect: %v", r)
		}
	}()

	lr.BroadcastReload()
}

func TestLiveReloader_IgnoreUpgradeError(t *testing.T) {
	lr := NewLiveReloader()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	lr.Handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected HTTP 400 on upgrade failure, got %d", w.Code)
	}
	if lr.Clients() != 0 {
		t.Error("expected no client registered after failed upgrade")
	}
}

func TestLiveReloader_BroadcastRemovesDeadConnection(t *testing.T) {
	lr := NewLiveReloader()
	ws, closeServer := dialReloader(t, lr)
	defer closeServer()

	_ = ws.Close()
	waitFor(t, func() bool { return lr.Clients() == 0 })

	hub := lr.(*LiveReloader)
	hub.mu.Lock()
	hub.tabs[ws] = struct{}{}
	hub.mu.Unlock()

	lr.BroadcastReload()

	hub.mu.Lock()
	_, exists := hub.tabs[ws]
	hub.mu.Unlock()

	if exists {
		t.Errorf("expected closed connection to be removed from clients map")
	}
}

func TestLiveReloader_CloseSendsGoingAway(t *testing.T) {
	lr := NewLiveReloader()
	ws, closeServer := dialReloader(t, lr)
	defer closeServer()
	defer ws.Close()

	lr.Close()

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected a going-away close frame, got %v", err)
	}
	if lr.Clients() != 0 {
		t.Errorf("expected no clients after Close, got %d", lr.Clients())
	}

	lr.Close()
	lr.BroadcastReload()
}

func TestLiveReloader_TurnsAwayClientsAfterClose(t *testing.T) {
	lr := NewLiveReloader()
	lr.Close()

	server := httptest.NewServer(http.HandlerFunc(lr.Handler))
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):], nil)
	if err != nil {
		t.Fatalf("failed to connect to WebSocket: %v", err)
	}
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(1 * time.Second))
	if _, _, err := ws.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected a going-away close frame, got %v", err)
	}
	if lr.Clients() != 0 {
		t.Errorf("expected no clients registered after Close, got %d", lr.Clients())
	}
}
