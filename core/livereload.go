package core

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// reloadMessage is the text frame the injected page script reacts to.
const reloadMessage = "reload"

const reloadWriteWait = time.Second

type LiveReloaderInterface interface {
	BroadcastReload()
	Handler(http.ResponseWriter, *http.Request)
	Clients() int
	Close()
}

// LiveReloader is the dev-mode websocket endpoint behind ReloadPath. Every
// open page holds one connection; a broadcast makes all of them refresh.
type LiveReloader struct {
	mu       sync.Mutex
	tabs     map[*websocket.Conn]struct{}
	closed   bool
	upgrader websocket.Upgrader
}

var NewLiveReloader = func() LiveReloaderInterface {
	return &LiveReloader{
		tabs: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// Dev server only; pages may be opened through any host alias.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (lr *LiveReloader) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := lr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if !lr.register(conn) {
		goingAway(conn)
		return
	}
	go lr.drain(conn)
}

func (lr *LiveReloader) register(conn *websocket.Conn) bool {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.closed {
		return false
	}
	lr.tabs[conn] = struct{}{}
	return true
}

func (lr *LiveReloader) unregister(conn *websocket.Conn) {
	lr.mu.Lock()
	delete(lr.tabs, conn)
	lr.mu.Unlock()
	conn.Close()
}

// drain reads until the page goes away. Nothing is expected from the
// browser, but reading is what processes its ping and close frames.
func (lr *LiveReloader) drain(conn *websocket.Conn) {
	defer lr.unregister(conn)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (lr *LiveReloader) BroadcastReload() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	for conn := range lr.tabs {
		conn.SetWriteDeadline(time.Now().Add(reloadWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reloadMessage)); err != nil {
			delete(lr.tabs, conn)
			conn.Close()
		}
	}
}

func (lr *LiveReloader) Clients() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return len(lr.tabs)
}

// Close says goodbye to every connected page and turns away later ones.
// Calling it again is a no-op.
func (lr *LiveReloader) Close() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if lr.closed {
		return
	}
	lr.closed = true

	for conn := range lr.tabs {
		goingAway(conn)
		delete(lr.tabs, conn)
	}
}

func goingAway(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(reloadWriteWait))
	conn.Close()
}
