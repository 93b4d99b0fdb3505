package appointment

import (
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// ===============================
// Slot
// ===============================

// Slot is the (staff, workstation, date, turn) tuple an appointment occupies.
type Slot struct {
	StaffID       uint
	WorkstationID uint
	Date          time.Time
	Turn          int
}

func SlotOf(ap *models.Appointment) Slot {
	return Slot{
		StaffID:       ap.StaffID,
		WorkstationID: ap.WorkstationID,
		Date:          Day(ap.Date),
		Turn:          ap.Turn,
	}
}

func (s Slot) SameStaffKey(o Slot) bool {
	return s.StaffID == o.StaffID && s.Date.Equal(o.Date) && s.Turn == o.Turn
}

func (s Slot) SameWorkstationKey(o Slot) bool {
	return s.WorkstationID == o.WorkstationID && s.Date.Equal(o.Date) && s.Turn == o.Turn
}

// Day truncates t to its calendar day, expressed as UTC midnight so that
// dates compare equal regardless of the zone they were parsed in.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CheckTransition(Status(ap.Status), StatusConfirmed); err != nil {
		return err
	}
	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CheckTransition(Status(ap.Status), StatusCompleted); err != nil {
		return err
	}
	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// Finalize may only be performed by the staff member the appointment is
// booked with.
func Finalize(ap *models.Appointment, staffID uint, now time.Time) error {
	if ap.StaffID != staffID {
		return httperr.ErrForbidden("not_assigned_staff")
	}
	if err := CheckTransition(Status(ap.Status), StatusFinalized); err != nil {
		return err
	}
	ap.Status = string(StatusFinalized)
	ap.FinalizedAt = &now
	return nil
}

// Cancel reports changed=false when the appointment was already cancelled.
func Cancel(ap *models.Appointment, reason string, now time.Time) (changed bool, err error) {
	if Status(ap.Status) == StatusCancelled {
		return false, nil
	}
	if err := CheckTransition(Status(ap.Status), StatusCancelled); err != nil {
		return false, err
	}
	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	ap.CancellationReason = reason
	return true, nil
}
