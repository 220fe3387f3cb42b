package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/iphonefly/realtime-api/internal/ws"
)

// Realtime channel event names.
const (
	evtJoinChat      = "join-chat"
	evtSendMessage   = "send-message"
	evtGetAllIphones = "get-all-iphones"
	evtCreateIphone  = "create-iphone"
	evtUpdateIphone  = "update-iphone"
	evtDeleteIphone  = "delete-iphone"

	evtNewMessage     = "new-message"
	evtMessageHistory = "message-history"
	evtMessageDeleted = "message-deleted"
	evtUsersOnline    = "users-online"
	evtAllIphones     = "all-iphones"
	evtIphoneCreated  = "iphone-created"
	evtIphoneUpdated  = "iphone-updated"
	evtIphoneDeleted  = "iphone-deleted"
	evtError          = "error"
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return allowedMap[origin]
		},
	}
}

// HandleWebSocket handles GET /ws. It upgrades the connection, registers it
// with the hub, and pumps inbound events through the dispatcher until the
// client goes away. Teardown removes the connection from the hub before the
// leave notifications fire, so "broadcast to all" at that point means
// "all other connections".
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := createUpgrader(h.Config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(conn)
	h.Hub.Add(client)
	go client.WritePump()

	client.ReadLoop(func(event string, data json.RawMessage) {
		h.dispatch(client, event, data)
	})

	h.Hub.Remove(client)
	h.handleDisconnect(client)
	client.Close()
}

func (h *Handler) dispatch(client *ws.Client, event string, data json.RawMessage) {
	switch event {
	case evtJoinChat:
		h.handleJoinChat(client, data)
	case evtSendMessage:
		h.handleSendMessage(client, data)
	case evtGetAllIphones:
		h.handleGetAllIphones(client)
	case evtCreateIphone:
		h.handleCreateIphone(client, data)
	case evtUpdateIphone:
		h.handleUpdateIphone(client, data)
	case evtDeleteIphone:
		h.handleDeleteIphone(client, data)
	default:
		log.Printf("[WebSocket] Unknown event %q from %s", event, client.ID)
		h.sendError(client, "Unknown event: "+event)
	}
}
