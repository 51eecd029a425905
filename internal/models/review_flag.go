package models

import "time"

const (
	FlagStatusPending  = "pending"
	FlagStatusApproved = "approved"
	FlagStatusRejected = "rejected"
	FlagStatusBanned   = "banned"
)

// ClientReviewFlag records a suspected trust violation. One row per
// (client, appointment) pair; a re-triggered violation bumps AutoFlagCount
// instead of inserting a sibling row. Rows are never deleted.
type ClientReviewFlag struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"uniqueIndex:uniq_flags_client_appointment" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	AppointmentID uint        `gorm:"uniqueIndex:uniq_flags_client_appointment" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"appointment"`

	Reason        string `gorm:"size:255;not null" json:"reason"`
	Status        string `gorm:"size:20;default:'pending'" json:"status"`
	AutoFlagCount int    `gorm:"default:1" json:"auto_flag_count"`

	ReviewedBy *uint      `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	Comments   string     `gorm:"size:500" json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
