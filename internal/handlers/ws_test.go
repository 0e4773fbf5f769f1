package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ktfth/roleta-online/internal/registry"
)

func newTestServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()
	router, reg := newTestRouter(t)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg
}

// waitForRoom blocks until the registry has registered the room. The dialer
// returns at handshake time, before the server side has joined the room.
func waitForRoom(t *testing.T, reg *registry.Registry, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := reg.Get(id); ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("room %q never appeared", id)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", query, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env map[string]interface{}
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("non-JSON frame: %s", frame)
	}
	return env
}

func TestWebSocketSignalingFlow(t *testing.T) {
	srv, reg := newTestServer(t)

	alice := dialWS(t, srv, "roomId=sala&userName=Alice&hasCamera=true")
	waitForRoom(t, reg, "sala")
	bob := dialWS(t, srv, "roomId=sala&userName=Bob")

	env := readEnvelope(t, alice)
	if env["type"] != "user-joined" || env["userName"] != "Bob" {
		t.Fatalf("expected Bob's user-joined, got %v", env)
	}

	chat := `{"type":"chat","userName":"Bob","message":"olá"}`
	if err := bob.WriteMessage(websocket.TextMessage, []byte(chat)); err != nil {
		t.Fatal(err)
	}
	env = readEnvelope(t, alice)
	if env["type"] != "chat" || env["message"] != "olá" {
		t.Fatalf("expected forwarded chat, got %v", env)
	}

	// Creator hangs up: everyone else hears the room closed.
	alice.Close()
	env = readEnvelope(t, bob)
	if env["type"] != "creator-left" {
		t.Fatalf("expected creator-left, got %v", env)
	}
}

func TestWebSocketWrongPasswordRejected(t *testing.T) {
	srv, reg := newTestServer(t)

	dialWS(t, srv, "roomId=cofre&userName=Alice&isPrivate=true&password=certa")
	waitForRoom(t, reg, "cofre")

	intruder := dialWS(t, srv, "roomId=cofre&userName=Mallory&isPrivate=true&password=errada")
	env := readEnvelope(t, intruder)
	if env["type"] != "error" {
		t.Fatalf("expected error envelope, got %v", env)
	}
	if msg, _ := env["message"].(string); msg == "" {
		t.Fatalf("expected a human-readable message, got %v", env)
	}
}

func TestWebSocketMissingRoomID(t *testing.T) {
	srv, _ := newTestServer(t)

	conn := dialWS(t, srv, "userName=Ghost")
	env := readEnvelope(t, conn)
	if env["type"] != "error" {
		t.Fatalf("expected error envelope, got %v", env)
	}
}
