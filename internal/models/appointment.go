package models

import "time"

// Appointment rows are immutable after creation. Slot exclusivity and replay
// detection both live in the database: a partial unique index on
// (service_id, scheduled_at) over non-cancelled rows, and a unique index on
// the idempotency key.
type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	ServiceID uint    `gorm:"uniqueIndex:uniq_appointments_slot,where:status <> 'cancelled'" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	ScheduledAt time.Time `gorm:"uniqueIndex:uniq_appointments_slot,where:status <> 'cancelled'" json:"scheduled_at"`

	IdempotencyKey string `gorm:"size:64;not null;uniqueIndex" json:"-"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
