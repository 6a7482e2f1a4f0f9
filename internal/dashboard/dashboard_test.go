package dashboard

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"unicorn-orientviz/internal/status"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(slog.New(slog.DiscardHandler))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestIndexServed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("/ws")) {
		t.Fatal("page does not reference the websocket endpoint")
	}

	if resp, err := http.Get(ts.URL + "/nope"); err == nil {
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("unknown path status = %d", resp.StatusCode)
		}
	}
}

func TestFrameBroadcast(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	if err := s.PublishFrame(img); err != nil {
		t.Fatal(err)
	}

	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("message kind = %d, want binary", kind)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("frame is not a PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Fatalf("frame bounds = %v", b)
	}
}

func TestStatusBroadcast(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	snap := status.Snapshot{Streaming: true, Battery: 0.8, Received: 500, Dropped: 3}
	if err := s.PublishStatus(snap); err != nil {
		t.Fatal(err)
	}

	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("message kind = %d, want text", kind)
	}
	var got status.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got != snap {
		t.Fatalf("snapshot = %+v, want %+v", got, snap)
	}
}

func TestLateClientGetsReplay(t *testing.T) {
	s, ts := newTestServer(t)

	s.PublishStatus(status.Snapshot{Streaming: true, Battery: 0.5})
	s.PublishFrame(image.NewNRGBA(image.Rect(0, 0, 8, 8)))

	conn := dialWS(t, ts)
	kinds := map[int]bool{}
	for i := 0; i < 2; i++ {
		kind, _, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		kinds[kind] = true
	}
	if !kinds[websocket.TextMessage] || !kinds[websocket.BinaryMessage] {
		t.Fatalf("replayed kinds = %v, want status and frame", kinds)
	}
}

func TestClientCountTracksDisconnects(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)

	deadline := time.Now().Add(5 * time.Second)
	for s.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	conn.Close()
	for s.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered")
		}
		time.Sleep(time.Millisecond)
	}
}
