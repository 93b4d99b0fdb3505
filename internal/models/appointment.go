package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Person `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	StaffID uint  `gorm:"not null;index" json:"staff_id"`
	Staff   Staff `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	LocationID uint     `gorm:"not null;index" json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	WorkstationID uint        `gorm:"not null;index" json:"workstation_id"`
	Workstation   Workstation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Services []AppointmentService `gorm:"constraint:OnDelete:CASCADE;" json:"services"`

	PaymentID *uint `gorm:"uniqueIndex" json:"payment_id"`

	Date time.Time `gorm:"type:date;not null;index" json:"date"`
	Turn int       `gorm:"not null" json:"turn"`

	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes  string `gorm:"size:255" json:"notes"`

	CancellationReason string     `gorm:"size:255" json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	FinalizedAt        *time.Time `json:"finalized_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceIDs returns the booked services in booking order.
func (a *Appointment) ServiceIDs() []uint {
	out := make([]uint, 0, len(a.Services))
	for _, s := range a.Services {
		out = append(out, s.ServiceID)
	}
	return out
}

// AppointmentService keeps the ordered service list of an appointment.
type AppointmentService struct {
	AppointmentID uint    `gorm:"primaryKey" json:"-"`
	Position      int     `gorm:"primaryKey" json:"position"`
	ServiceID     uint    `gorm:"not null;index" json:"service_id"`
	Service       Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}
