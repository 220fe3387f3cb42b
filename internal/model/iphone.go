package model

import "time"

// Iphone represents a catalog listing.
// IDs are auto-incremented by the database and never reused after deletion.
type Iphone struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Model         string    `gorm:"size:255;not null" json:"model"`
	Price         float64   `gorm:"not null" json:"price"`
	Storage       string    `gorm:"size:64;not null" json:"storage"`
	Color         string    `gorm:"size:64;not null" json:"color"`
	Image         string    `gorm:"size:512;not null" json:"image"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Rating        *float64  `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IphoneDeleted is the payload broadcast after a catalog row is removed.
type IphoneDeleted struct {
	ID uint `json:"id"`
}
