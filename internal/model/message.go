package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageKind distinguishes user-authored chat messages from system notices.
type MessageKind string

const (
	MessageKindUser   MessageKind = "user"
	MessageKindSystem MessageKind = "system"
)

// SystemSender is the display name attached to join/leave notices.
const SystemSender = "System"

// Message represents a chat message. Messages are immutable after creation
// except for administrative delete.
type Message struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	Text      string      `gorm:"type:text;not null" json:"text"`
	Sender    string      `gorm:"size:255;not null;index" json:"sender"`
	Timestamp time.Time   `gorm:"not null;index" json:"timestamp"`
	Kind      MessageKind `gorm:"size:16;not null;default:user" json:"kind"`
}

// BeforeCreate assigns the random token id and creation timestamp when the
// caller left them unset.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.Kind == "" {
		m.Kind = MessageKindUser
	}
	return nil
}

// MessageDeleted is the payload broadcast when a message is removed through
// the REST admin endpoint.
type MessageDeleted struct {
	ID string `json:"id"`
}

// SenderCount is one row of the per-sender message leaderboard.
type SenderCount struct {
	Sender       string `json:"sender"`
	MessageCount int64  `json:"messageCount"`
}
