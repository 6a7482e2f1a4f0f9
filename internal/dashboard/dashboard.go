// Package dashboard serves the live orientation view over HTTP: an
// embedded page plus a websocket that streams rendered frames and
// stream-health updates to every connected browser.
package dashboard

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"unicorn-orientviz/internal/status"
)

//go:embed index.html
var indexHTML []byte

// message is one websocket payload: rendered frames go out as binary
// PNG, status updates as JSON text.
type message struct {
	kind int // websocket.BinaryMessage or websocket.TextMessage
	data []byte
}

// Server fans rendered frames and status snapshots out to websocket
// clients. PublishFrame and PublishStatus are safe from any goroutine.
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan message]struct{}
	frame   []byte // latest encoded frame, replayed to new clients
	health  []byte // latest status JSON, replayed to new clients
}

// New returns a server with no clients yet.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:     log,
		clients: make(map[chan message]struct{}),
	}
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	ch := make(chan message, 8)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	// Replay the latest state so a late join is not a blank page.
	if s.health != nil {
		ch <- message{websocket.TextMessage, s.health}
	}
	if s.frame != nil {
		ch <- message{websocket.BinaryMessage, s.frame}
	}
	s.mu.Unlock()
	s.log.Info("dashboard client connected", "remote", r.RemoteAddr)

	// Drain incoming control traffic; a read error means the client left.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(ch)
				return
			}
		}
	}()

	for m := range ch {
		if err := conn.WriteMessage(m.kind, m.data); err != nil {
			s.drop(ch)
			break
		}
	}
	conn.Close()
}

// drop unregisters a client channel once.
func (s *Server) drop(ch chan message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[ch]; ok {
		delete(s.clients, ch)
		close(ch)
	}
}

// broadcast stores the payload for replay and queues it to every
// client. Slow clients lose intermediate messages rather than stalling
// the stream.
func (s *Server) broadcast(m message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m.kind {
	case websocket.BinaryMessage:
		s.frame = m.data
	case websocket.TextMessage:
		s.health = m.data
	}
	for ch := range s.clients {
		select {
		case ch <- m:
		default:
		}
	}
}

// PublishFrame encodes a rendered frame and streams it to all clients.
func (s *Server) PublishFrame(img *image.NRGBA) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("dashboard: encode frame: %w", err)
	}
	s.broadcast(message{websocket.BinaryMessage, buf.Bytes()})
	return nil
}

// PublishStatus streams a stream-health snapshot to all clients.
func (s *Server) PublishStatus(snap status.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("dashboard: encode status: %w", err)
	}
	s.broadcast(message{websocket.TextMessage, data})
	return nil
}

// ClientCount reports how many websocket clients are connected.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
