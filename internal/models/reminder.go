package models

import "time"

// Reminder is the durable record behind a scheduled appointment reminder.
type Reminder struct {
	AppointmentID uint      `gorm:"primaryKey;autoIncrement:false"`
	FireAt        time.Time `gorm:"not null;index"`
	Status        string    `gorm:"size:20;not null;index"`
	Detail        string    `gorm:"size:255"`
	Attempts      int       `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
