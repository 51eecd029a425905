package models

import "time"

// Client is created on first booking or explicitly by staff. Email is stored
// lower-cased so the unique index is case-insensitive.
type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Phone     string `gorm:"size:20;not null" json:"phone_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
