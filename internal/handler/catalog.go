package handler

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/iphonefly/realtime-api/internal/model"
	"github.com/iphonefly/realtime-api/internal/store"
	"github.com/iphonefly/realtime-api/internal/ws"
)

// createIphonePayload carries the create-iphone event. Price is a pointer so
// that a listing priced at zero still passes the required check.
type createIphonePayload struct {
	Name          string   `json:"name" validate:"required"`
	Model         string   `json:"model" validate:"required"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	Storage       string   `json:"storage" validate:"required"`
	Color         string   `json:"color" validate:"required"`
	Image         string   `json:"image" validate:"required"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gte=0"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0"`
}

type updateIphonePayload struct {
	ID            uint     `json:"id"`
	Name          *string  `json:"name"`
	Model         *string  `json:"model"`
	Price         *float64 `json:"price"`
	Storage       *string  `json:"storage"`
	Color         *string  `json:"color"`
	Image         *string  `json:"image"`
	OriginalPrice *float64 `json:"originalPrice"`
	Rating        *float64 `json:"rating"`
}

type deleteIphonePayload struct {
	ID uint `json:"id"`
}

// handleGetAllIphones replies privately with the full catalog, id ascending.
func (h *Handler) handleGetAllIphones(client *ws.Client) {
	iphones, err := h.Iphones.ListByID()
	if err != nil {
		log.Printf("[WebSocket] ❌ Error fetching iPhones: %v", err)
		h.sendError(client, "Failed to fetch iPhones")
		return
	}
	if err := client.Send(evtAllIphones, iphones); err != nil {
		log.Printf("[WebSocket] Failed to send catalog to %s: %v", client.ID, err)
	}
}

// handleCreateIphone persists a new listing, then broadcasts the created item
// followed by the refreshed full list. The list is re-queried at broadcast
// time so it reflects any mutation that landed in between.
func (h *Handler) handleCreateIphone(client *ws.Client, data json.RawMessage) {
	var p createIphonePayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.sendError(client, "Invalid create-iphone payload")
		return
	}
	if err := h.validate.Struct(p); err != nil {
		log.Printf("[WebSocket] ❌ Invalid create-iphone payload from %s: %v", client.ID, err)
		h.sendError(client, "Missing required iPhone fields")
		return
	}

	iphone := &model.Iphone{
		Name:          p.Name,
		Model:         p.Model,
		Price:         *p.Price,
		Storage:       p.Storage,
		Color:         p.Color,
		Image:         p.Image,
		OriginalPrice: p.OriginalPrice,
		Rating:        p.Rating,
	}
	if err := h.Iphones.Create(iphone); err != nil {
		log.Printf("[WebSocket] ❌ Error creating iPhone: %v", err)
		h.sendError(client, "Failed to create iPhone")
		return
	}

	log.Printf("[WebSocket] ✅ Created iPhone %d (%s)", iphone.ID, iphone.Name)
	h.Hub.Broadcast(evtIphoneCreated, iphone)
	h.broadcastCatalog(client)
}

// handleUpdateIphone applies a partial field set to an existing listing.
// A missing id produces a private error only; nothing is broadcast.
func (h *Handler) handleUpdateIphone(client *ws.Client, data json.RawMessage) {
	var p updateIphonePayload
	if err := json.Unmarshal(data, &p); err != nil || p.ID == 0 {
		h.sendError(client, "Invalid update-iphone payload")
		return
	}
	// Prices and ratings stay non-negative through updates too
	if (p.Price != nil && *p.Price < 0) ||
		(p.OriginalPrice != nil && *p.OriginalPrice < 0) ||
		(p.Rating != nil && *p.Rating < 0) {
		log.Printf("[WebSocket] ❌ Invalid update-iphone payload from %s: negative numeric field", client.ID)
		h.sendError(client, "Invalid iPhone fields")
		return
	}

	if _, err := h.Iphones.FindByID(p.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(client, "iPhone not found")
			return
		}
		log.Printf("[WebSocket] ❌ Error loading iPhone %d: %v", p.ID, err)
		h.sendError(client, "Failed to update iPhone")
		return
	}

	fields := p.changedFields()
	if len(fields) > 0 {
		if err := h.Iphones.Update(p.ID, fields); err != nil {
			log.Printf("[WebSocket] ❌ Error updating iPhone %d: %v", p.ID, err)
			h.sendError(client, "Failed to update iPhone")
			return
		}
	}

	updated, err := h.Iphones.FindByID(p.ID)
	if err != nil {
		log.Printf("[WebSocket] ❌ Error reloading iPhone %d: %v", p.ID, err)
		h.sendError(client, "Failed to update iPhone")
		return
	}

	log.Printf("[WebSocket] 📢 iPhone %d updated, notifying all clients", p.ID)
	h.Hub.Broadcast(evtIphoneUpdated, updated)
	h.broadcastCatalog(client)
}

// handleDeleteIphone removes a listing, then broadcasts the deleted id and
// the refreshed full list.
func (h *Handler) handleDeleteIphone(client *ws.Client, data json.RawMessage) {
	var p deleteIphonePayload
	if err := json.Unmarshal(data, &p); err != nil || p.ID == 0 {
		h.sendError(client, "Invalid delete-iphone payload")
		return
	}

	if _, err := h.Iphones.FindByID(p.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(client, "iPhone not found")
			return
		}
		log.Printf("[WebSocket] ❌ Error loading iPhone %d: %v", p.ID, err)
		h.sendError(client, "Failed to delete iPhone")
		return
	}

	if err := h.Iphones.Delete(p.ID); err != nil {
		log.Printf("[WebSocket] ❌ Error deleting iPhone %d: %v", p.ID, err)
		h.sendError(client, "Failed to delete iPhone")
		return
	}

	log.Printf("[WebSocket] 📢 iPhone %d deleted, notifying all clients", p.ID)
	h.Hub.Broadcast(evtIphoneDeleted, model.IphoneDeleted{ID: p.ID})
	h.broadcastCatalog(client)
}

// broadcastCatalog re-queries the catalog and broadcasts it to everyone.
// This full-list broadcast is the convergence backstop after every mutation;
// it always reflects storage at the moment it fires.
func (h *Handler) broadcastCatalog(client *ws.Client) {
	iphones, err := h.Iphones.ListByID()
	if err != nil {
		log.Printf("[WebSocket] ❌ Error refreshing catalog: %v", err)
		h.sendError(client, "Failed to refresh catalog")
		return
	}
	h.Hub.Broadcast(evtAllIphones, iphones)
}

// changedFields maps the provided payload fields to their column names for
// the store's partial update.
func (p updateIphonePayload) changedFields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Model != nil {
		fields["model"] = *p.Model
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Storage != nil {
		fields["storage"] = *p.Storage
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.OriginalPrice != nil {
		fields["original_price"] = *p.OriginalPrice
	}
	if p.Rating != nil {
		fields["rating"] = *p.Rating
	}
	return fields
}
