package models

import "time"

const (
	SlotKindStaff       = "staff"
	SlotKindWorkstation = "workstation"
)

// SlotReservation holds one (resource, date, turn) key for an appointment.
// The unique index is what keeps a staff member or a workstation from being
// booked twice in the same turn.
type SlotReservation struct {
	ID uint `gorm:"primaryKey"`

	Kind       string    `gorm:"size:20;not null;uniqueIndex:idx_slot_key"`
	ResourceID uint      `gorm:"not null;uniqueIndex:idx_slot_key"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:idx_slot_key"`
	Turn       int       `gorm:"not null;uniqueIndex:idx_slot_key"`

	AppointmentID uint `gorm:"not null;index"`

	CreatedAt time.Time
}
