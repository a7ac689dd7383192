package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"notesaides-api/internal/domain"
	"notesaides-api/internal/event"
	"notesaides-api/internal/websocket"
	"notesaides-api/pkg/jwt"

	ws "github.com/gorilla/websocket"
)

const testSecret = "ws-handler-test-secret"

func newTestStack() (*websocket.Hub, *event.Bus, *httptest.Server) {
	hub := websocket.NewHub(5, 10*time.Second, 60*time.Second, 54*time.Second)
	bus := event.NewBus()
	websocket.NewNotifier(hub, bus).Attach()

	h := NewWebSocketHandler(hub, testSecret, 1024, 1024)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleConnection))
	return hub, bus, srv
}

func wsURL(srv *httptest.Server, query string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http")
	if query != "" {
		u += "?" + query
	}
	return u
}

func waitForConnections(t *testing.T, hub *websocket.Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(hub.ConnectionsFor(userID)) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d connections for %s, got %d", want, userID, len(hub.ConnectionsFor(userID)))
}

func TestHandleConnection_MissingTokenRejected(t *testing.T) {
	hub, _, srv := newTestStack()
	defer srv.Close()

	_, resp, err := ws.DefaultDialer.Dial(wsURL(srv, ""), nil)
	if err == nil {
		t.Fatal("expected dial to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing token, got %v", resp)
	}

	if conns := hub.ConnectionsFor("user1"); len(conns) != 0 {
		t.Errorf("rejected upgrade must not register, got %v", conns)
	}
}

func TestHandleConnection_InvalidTokenRejected(t *testing.T) {
	hub, _, srv := newTestStack()
	defer srv.Close()

	_, resp, err := ws.DefaultDialer.Dial(wsURL(srv, "token=not.a.jwt"), nil)
	if err == nil {
		t.Fatal("expected dial to fail with an invalid token")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for invalid token, got %v", resp)
	}

	if conns := hub.ConnectionsFor("user1"); len(conns) != 0 {
		t.Errorf("rejected upgrade must not register, got %v", conns)
	}
}

func TestHandleConnection_ValidTokenRegistersAndReceives(t *testing.T) {
	hub, bus, srv := newTestStack()
	defer srv.Close()

	token, err := jwt.GenerateToken("user1", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	conn, _, err := ws.DefaultDialer.Dial(wsURL(srv, "token="+token), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForConnections(t, hub, "user1", 1)

	bus.Publish(domain.ChangeEvent{UserID: "user1", Type: domain.ChangeCreated, NoteID: "note1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read notification: %v", err)
	}

	var msg websocket.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("failed to decode notification: %v", err)
	}
	if msg.Type != websocket.TypeNoteCreated || msg.NoteID != "note1" {
		t.Errorf("unexpected notification: %+v", msg)
	}
}

func TestHandleConnection_DisconnectUnregisters(t *testing.T) {
	hub, _, srv := newTestStack()
	defer srv.Close()

	token, _ := jwt.GenerateToken("user1", time.Hour, testSecret)

	conn, _, err := ws.DefaultDialer.Dial(wsURL(srv, "token="+token), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	waitForConnections(t, hub, "user1", 1)

	conn.Close()

	waitForConnections(t, hub, "user1", 0)
}

func TestHandleConnection_EventForOtherUserNotDelivered(t *testing.T) {
	hub, bus, srv := newTestStack()
	defer srv.Close()

	token, _ := jwt.GenerateToken("bob", time.Hour, testSecret)
	conn, _, err := ws.DefaultDialer.Dial(wsURL(srv, "token="+token), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForConnections(t, hub, "bob", 1)

	bus.Publish(domain.ChangeEvent{UserID: "alice", Type: domain.ChangeUpdated, NoteID: "note1"})

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, payload, err := conn.ReadMessage(); err == nil {
		t.Errorf("bob received alice's notification: %s", payload)
	}
}
