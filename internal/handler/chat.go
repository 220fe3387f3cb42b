package handler

import (
	"encoding/json"
	"log"

	"github.com/samber/lo"

	"github.com/iphonefly/realtime-api/internal/model"
	"github.com/iphonefly/realtime-api/internal/ws"
)

type joinChatPayload struct {
	DisplayName string `json:"displayName"`
}

type sendMessagePayload struct {
	Text   string `json:"text" validate:"required"`
	Sender string `json:"sender" validate:"required"`
}

// handleJoinChat registers the connection in the presence roster, persists a
// system join notice, broadcasts it together with the updated roster to every
// connection (the joiner sees its own join notice), and replays recent
// history privately to the joiner.
func (h *Handler) handleJoinChat(client *ws.Client, data json.RawMessage) {
	var p joinChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(client, "Invalid join-chat payload")
		return
	}

	h.Presence.Join(client.ID, p.DisplayName)

	joinMsg := &model.Message{
		Text:   p.DisplayName + " entered the chat! 👋",
		Sender: model.SystemSender,
		Kind:   model.MessageKindSystem,
	}
	if err := h.Messages.Create(joinMsg); err != nil {
		log.Printf("[WebSocket] ❌ Error joining chat: %v", err)
		h.sendError(client, "Failed to join chat")
		return
	}

	h.Hub.Broadcast(evtNewMessage, joinMsg)
	h.broadcastRoster()

	recent, err := h.Messages.Recent(h.Config.HistoryLimit)
	if err != nil {
		log.Printf("[WebSocket] ❌ Error loading history: %v", err)
		h.sendError(client, "Failed to load message history")
		return
	}
	// history is replayed oldest-first to the joining connection only
	if err := client.Send(evtMessageHistory, lo.Reverse(recent)); err != nil {
		log.Printf("[WebSocket] Failed to send history to %s: %v", client.ID, err)
	}

	log.Printf("[WebSocket] ✅ %s joined the chat as %q", client.ID, p.DisplayName)
}

// handleSendMessage persists a user message and broadcasts it to everyone,
// sender included; the echo doubles as the persistence confirmation.
func (h *Handler) handleSendMessage(client *ws.Client, data json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(client, "Invalid send-message payload")
		return
	}
	if err := h.validate.Struct(p); err != nil {
		h.sendError(client, "Message text and sender are required")
		return
	}

	msg := &model.Message{
		Text:   p.Text,
		Sender: p.Sender,
		Kind:   model.MessageKindUser,
	}
	if err := h.Messages.Create(msg); err != nil {
		log.Printf("[WebSocket] ❌ Error sending message: %v", err)
		h.sendError(client, "Failed to send message")
		return
	}

	h.Hub.Broadcast(evtNewMessage, msg)
}

// handleDisconnect runs after the connection leaves the hub. If the client
// had joined the chat, a leave notice is persisted and broadcast to the
// remaining connections along with the shrunken roster. A connection that
// never joined disconnects silently.
func (h *Handler) handleDisconnect(client *ws.Client) {
	entry, ok := h.Presence.Leave(client.ID)
	if !ok {
		return
	}

	leaveMsg := &model.Message{
		Text:   entry.Name + " left the chat",
		Sender: model.SystemSender,
		Kind:   model.MessageKindSystem,
	}
	if err := h.Messages.Create(leaveMsg); err != nil {
		// Nobody to notify privately; the connection is already gone.
		log.Printf("[WebSocket] ❌ Error recording leave for %s: %v", client.ID, err)
		return
	}

	h.Hub.Broadcast(evtNewMessage, leaveMsg)
	h.broadcastRoster()

	log.Printf("[WebSocket] %q left the chat (%s)", entry.Name, client.ID)
}

// broadcastRoster publishes the current presence snapshot to every
// registered connection.
func (h *Handler) broadcastRoster() {
	users := h.Presence.Snapshot()
	h.Hub.Broadcast(evtUsersOnline, model.UsersOnline{Users: users, Count: len(users)})
}
