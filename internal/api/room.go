package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RoomMessage is the wire format exchanged inside a session room.
// Payload is opaque to the server; it relays signaling and workspace
// sync data between participants without interpreting it.
type RoomMessage struct {
	Type    string          `json:"type"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// room tracks the live connections of one session
type room struct {
	mu      sync.Mutex
	members map[*websocket.Conn]string
}

// broadcast sends a message to every member except the sender
func (rm *room) broadcast(sender *websocket.Conn, msg RoomMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal room message", "error", err)
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for conn := range rm.members {
		if conn == sender {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("failed to relay room message", "error", err)
		}
	}
}

// joinRoom looks up or creates the session's room and registers the
// connection in one step under the map lock, so a leaver can never
// drop the room between lookup and registration.
func (s *Server) joinRoom(sessionID string, conn *websocket.Conn, userID string) *room {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	rm, ok := s.rooms[sessionID]
	if !ok {
		rm = &room{members: make(map[*websocket.Conn]string)}
		s.rooms[sessionID] = rm
	}
	rm.mu.Lock()
	rm.members[conn] = userID
	rm.mu.Unlock()
	return rm
}

// leaveRoom removes the connection and drops the room from the map
// once it is empty. The map entry is re-checked against rm so a stale
// pointer never deletes a room that was recreated in the meantime.
func (s *Server) leaveRoom(sessionID string, rm *room, conn *websocket.Conn) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	rm.mu.Lock()
	delete(rm.members, conn)
	empty := len(rm.members) == 0
	rm.mu.Unlock()
	if empty && s.rooms[sessionID] == rm {
		delete(s.rooms, sessionID)
	}
}

// handleRoomWS joins the caller to the session's live room. Only the
// participants of a non-terminal session may join.
func (s *Server) handleRoomWS(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	session, err := s.service.GetSession(r.Context(), caller, sessionID)
	if err != nil {
		slog.Warn("room join rejected", "session_id", sessionID, "error", err)
		respondCoreError(w, err, "join room")
		return
	}

	if !session.IsParticipant(caller.UserID) {
		http.Error(w, "not a session participant", http.StatusForbidden)
		return
	}

	if session.Status.IsTerminal() {
		http.Error(w, "session has ended", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	s.service.RecordJoin(r.Context(), caller, sessionID)

	rm := s.joinRoom(sessionID, conn, caller.UserID)
	slog.Info("room joined", "session_id", sessionID, "user_id", caller.UserID)

	rm.broadcast(conn, RoomMessage{Type: "peer_joined", From: caller.UserID})

	defer func() {
		s.leaveRoom(sessionID, rm, conn)
		rm.broadcast(conn, RoomMessage{Type: "peer_left", From: caller.UserID})
		slog.Info("room left", "session_id", sessionID, "user_id", caller.UserID)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}

		var msg RoomMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Debug("invalid room message", "error", err)
			continue
		}

		// Stamp the sender; clients cannot spoof each other
		msg.From = caller.UserID
		rm.broadcast(conn, msg)
	}
}
