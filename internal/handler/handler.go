package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/iphonefly/realtime-api/internal/config"
	"github.com/iphonefly/realtime-api/internal/model"
	"github.com/iphonefly/realtime-api/internal/presence"
	"github.com/iphonefly/realtime-api/internal/store"
	"github.com/iphonefly/realtime-api/internal/ws"
)

// Handler holds application dependencies
type Handler struct {
	Iphones  store.IphoneStore
	Messages store.MessageStore
	Presence *presence.Registry
	Hub      *ws.Hub
	Config   config.Config

	validate *validator.Validate
}

// New creates a new Handler with the given dependencies
func New(iphones store.IphoneStore, messages store.MessageStore, cfg config.Config) *Handler {
	return &Handler{
		Iphones:  iphones,
		Messages: messages,
		Presence: presence.NewRegistry(),
		Hub:      ws.NewHub(),
		Config:   cfg,
		validate: validator.New(),
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Root).Methods("GET")

	// REST API
	r.HandleFunc("/api/messages", h.ListMessages).Methods("GET")
	r.HandleFunc("/api/messages/user/{sender}", h.MessagesBySender).Methods("GET")
	r.HandleFunc("/api/chat/stats", h.ChatStats).Methods("GET")
	r.HandleFunc("/api/messages/{id}", h.DeleteMessage).Methods("DELETE")

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	return r
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("iPhone Fly API - WebSocket & Chat enabled!"))
}

// sendError delivers a private error event to one connection. Handler
// failures never reach other connections.
func (h *Handler) sendError(client *ws.Client, message string) {
	if err := client.Send(evtError, model.ErrorPayload{Message: message}); err != nil {
		log.Printf("[WebSocket] Failed to send error to %s: %v", client.ID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
