package models

import "time"

// AuditLog keeps a trail of admin review actions (approve/reject/ban/unban).
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ReviewerID *uint  `json:"reviewer_id"`
	Action     string `gorm:"size:50;not null" json:"action"`

	Entity   string `gorm:"size:50" json:"entity"`
	EntityID *uint  `json:"entity_id"`
	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}
