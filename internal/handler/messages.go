package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/iphonefly/realtime-api/internal/model"
	"github.com/iphonefly/realtime-api/internal/store"
)

const defaultPageLimit = 50

// messagesPage is the body of GET /api/messages.
type messagesPage struct {
	Messages   []model.Message `json:"messages"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int64           `json:"totalPages"`
}

// chatStats is the body of GET /api/chat/stats.
type chatStats struct {
	TotalMessages  int64               `json:"totalMessages"`
	UserMessages   int64               `json:"userMessages"`
	SystemMessages int64               `json:"systemMessages"`
	ActiveUsers    []model.SenderCount `json:"activeUsers"`
	OnlineUsers    []model.OnlineUser  `json:"onlineUsers"`
	OnlineCount    int                 `json:"onlineCount"`
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// ListMessages handles GET /api/messages?limit&page
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	log.Printf("[GET /api/messages] Request received from %s", r.RemoteAddr)

	limit := queryInt(r, "limit", defaultPageLimit)
	page := queryInt(r, "page", 1)
	offset := (page - 1) * limit

	msgs, total, err := h.Messages.Page(limit, offset)
	if err != nil {
		log.Printf("[GET /api/messages] ❌ Store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	writeJSON(w, http.StatusOK, messagesPage{
		// pages are fetched newest-first; readers want oldest-first
		Messages:   lo.Reverse(msgs),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

// MessagesBySender handles GET /api/messages/user/{sender}?limit
func (h *Handler) MessagesBySender(w http.ResponseWriter, r *http.Request) {
	sender := mux.Vars(r)["sender"]
	log.Printf("[GET /api/messages/user/%s] Request received from %s", sender, r.RemoteAddr)

	limit := queryInt(r, "limit", defaultPageLimit)

	msgs, err := h.Messages.BySender(sender, limit)
	if err != nil {
		log.Printf("[GET /api/messages/user/%s] ❌ Store error: %v", sender, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, lo.Reverse(msgs))
}

// ChatStats handles GET /api/chat/stats
func (h *Handler) ChatStats(w http.ResponseWriter, r *http.Request) {
	log.Printf("[GET /api/chat/stats] Request received from %s", r.RemoteAddr)

	total, user, system, err := h.Messages.CountByKind()
	if err != nil {
		log.Printf("[GET /api/chat/stats] ❌ Store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	active, err := h.Messages.TopSenders(10)
	if err != nil {
		log.Printf("[GET /api/chat/stats] ❌ Store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	online := h.Presence.Snapshot()
	writeJSON(w, http.StatusOK, chatStats{
		TotalMessages:  total,
		UserMessages:   user,
		SystemMessages: system,
		ActiveUsers:    active,
		OnlineUsers:    online,
		OnlineCount:    len(online),
	})
}

// DeleteMessage handles DELETE /api/messages/{id}. This is the one REST path
// that touches the realtime channel: a successful delete is broadcast to
// every connection so client caches drop the message.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Printf("[DELETE /api/messages/%s] Request received from %s", id, r.RemoteAddr)

	if err := h.Messages.DeleteByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("[DELETE /api/messages/%s] ❌ Not Found", id)
			writeError(w, http.StatusNotFound, "Message not found")
			return
		}
		log.Printf("[DELETE /api/messages/%s] ❌ Store error: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}

	log.Printf("[DELETE /api/messages/%s] ✅ Deleted successfully", id)
	h.Hub.Broadcast(evtMessageDeleted, model.MessageDeleted{ID: id})

	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted successfully"})
}
