package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint `gorm:"not null;uniqueIndex" json:"appointment_id"`

	Reference uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Method    string    `gorm:"size:20;not null" json:"method"`
	Status    string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes     string    `gorm:"size:255" json:"notes"`

	PaidAt *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
