package dto

import (
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type AppointmentDTO struct {
	ID                 uint       `json:"id"`
	ClientID           uint       `json:"client_id"`
	StaffID            uint       `json:"staff_id"`
	LocationID         uint       `json:"location_id"`
	WorkstationID      uint       `json:"workstation_id"`
	ServiceIDs         []uint     `json:"service_ids"`
	PaymentID          *uint      `json:"payment_id"`
	Date               string     `json:"date"`
	Turn               int        `json:"turn"`
	StartsAt           time.Time  `json:"starts_at"`
	Status             string     `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	FinalizedAt        *time.Time `json:"finalized_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

// AppointmentListDTO is one row of a staff member's day.
type AppointmentListDTO struct {
	ID         uint      `json:"id"`
	Turn       int       `json:"turn"`
	StartsAt   time.Time `json:"starts_at"`
	Status     string    `json:"status"`
	ClientName string    `json:"client_name"`
	ServiceIDs []uint    `json:"service_ids"`
}

func FromAppointment(ap *models.Appointment, startsAt time.Time) AppointmentDTO {
	return AppointmentDTO{
		ID:                 ap.ID,
		ClientID:           ap.ClientID,
		StaffID:            ap.StaffID,
		LocationID:         ap.LocationID,
		WorkstationID:      ap.WorkstationID,
		ServiceIDs:         ap.ServiceIDs(),
		PaymentID:          ap.PaymentID,
		Date:               ap.Date.Format("2006-01-02"),
		Turn:               ap.Turn,
		StartsAt:           startsAt,
		Status:             ap.Status,
		Notes:              ap.Notes,
		CancellationReason: ap.CancellationReason,
		ConfirmedAt:        ap.ConfirmedAt,
		CompletedAt:        ap.CompletedAt,
		FinalizedAt:        ap.FinalizedAt,
		CancelledAt:        ap.CancelledAt,
	}
}

func ListItemFromAppointment(ap *models.Appointment, startsAt time.Time) AppointmentListDTO {
	return AppointmentListDTO{
		ID:         ap.ID,
		Turn:       ap.Turn,
		StartsAt:   startsAt,
		Status:     ap.Status,
		ClientName: ap.Client.Name,
		ServiceIDs: ap.ServiceIDs(),
	}
}
