package models

import "time"

type ContactMessage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:100;not null;index" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`
	Message string `gorm:"size:2000;not null" json:"message"`

	CreatedAt time.Time `json:"created_at"`
}
