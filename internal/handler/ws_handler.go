package handler

import (
	"log"
	"net/http"

	"notesaides-api/internal/websocket"
	"notesaides-api/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub       *websocket.Hub
	jwtSecret string
	upgrader  ws.Upgrader
}

func NewWebSocketHandler(hub *websocket.Hub, jwtSecret string, readBufferSize, writeBufferSize int) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection authenticates the upgrade request and hands the
// connection to the hub. The credential gate runs before any registration:
// a missing or invalid token rejects the request and leaves no trace in
// the registry.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}

	if token == "" {
		log.Printf("[WS] upgrade rejected: missing token")
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		log.Printf("[WS] upgrade rejected: %v", err)
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] failed to upgrade connection: %v", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), claims.UserID, conn, h.hub)
	if !h.hub.Register(client) {
		conn.WriteMessage(ws.CloseMessage,
			ws.FormatCloseMessage(ws.ClosePolicyViolation, "connection limit reached"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
