// Package store is the persistence gateway for catalog items and chat
// messages. Handlers talk to the interfaces here; the GORM implementation
// backs production and the in-memory one backs tests and DB-less runs.
package store

import (
	"errors"

	"github.com/iphonefly/realtime-api/internal/model"
)

// ErrNotFound is returned when the requested identifier does not exist.
var ErrNotFound = errors.New("record not found")

// IphoneStore persists catalog items.
type IphoneStore interface {
	// Create inserts the item and fills in its server-assigned id.
	Create(iphone *model.Iphone) error
	// FindByID returns ErrNotFound when no row has the id.
	FindByID(id uint) (*model.Iphone, error)
	// Update applies the given column/value pairs to an existing row.
	Update(id uint, fields map[string]any) error
	// Delete removes the row. The id is never reused afterwards.
	Delete(id uint) error
	// ListByID returns every item ordered by ascending id.
	ListByID() ([]model.Iphone, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	// Create inserts the message, assigning id and timestamp when unset.
	Create(msg *model.Message) error
	// Recent returns up to limit messages, newest first.
	Recent(limit int) ([]model.Message, error)
	// Page returns one page of messages newest first plus the total count.
	Page(limit, offset int) ([]model.Message, int64, error)
	// BySender returns up to limit messages from one sender, newest first.
	BySender(sender string, limit int) ([]model.Message, error)
	// CountByKind returns total, user, and system message counts.
	CountByKind() (total, user, system int64, err error)
	// TopSenders returns the n most prolific user-message senders.
	TopSenders(n int) ([]model.SenderCount, error)
	// DeleteByID removes one message, returning ErrNotFound when absent.
	DeleteByID(id string) error
}
