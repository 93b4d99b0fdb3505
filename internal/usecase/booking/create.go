package booking

import (
	"context"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	ClientID      uint
	StaffID       uint
	ServiceIDs    []uint
	LocationID    uint
	WorkstationID uint

	// Date is a calendar day; only its year, month and day are used.
	Date  time.Time
	Turn  int
	Notes string
}

// ======================================================
// EXECUTE
// ======================================================

// Create books an appointment in the pending state and registers its
// reminder. Two concurrent bookings of the same staff member or
// workstation at the same date and turn cannot both succeed.
func (e *Engine) Create(
	ctx context.Context,
	in CreateInput,
) (*models.Appointment, error) {

	ap, err := e.create(ctx, in)
	if err != nil {
		kind := httperr.KindOf(err)
		e.metrics.Booking(rejectedOutcome(kind))
		if kind == httperr.KindSlotConflict {
			e.log.Warn("booking.create.conflict", logger.Fields{
				"staffId":       in.StaffID,
				"workstationId": in.WorkstationID,
				"date":          domain.Day(in.Date).Format("2006-01-02"),
				"turn":          in.Turn,
			})
		}
		return nil, err
	}

	e.metrics.Booking("created")
	e.log.Info("booking.create.ok", logger.Fields{
		"appointmentId": ap.ID,
		"staffId":       ap.StaffID,
		"turn":          ap.Turn,
	})

	e.scheduleReminder(ctx, ap)
	e.record(ctx, "appointment_created", ap, map[string]any{
		"date": ap.Date.Format("2006-01-02"),
		"turn": ap.Turn,
	})

	return ap, nil
}

func (e *Engine) create(ctx context.Context, in CreateInput) (*models.Appointment, error) {

	// --------------------------------------------------
	// Time
	// --------------------------------------------------
	if err := e.checkTime(in.Date, in.Turn); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Client and services
	// --------------------------------------------------
	if _, err := e.catalog.GetPerson(ctx, in.ClientID); err != nil {
		return nil, err
	}

	services, err := e.loadServices(ctx, in.ServiceIDs)
	if err != nil {
		return nil, err
	}

	ap := &models.Appointment{
		ClientID:      in.ClientID,
		StaffID:       in.StaffID,
		LocationID:    in.LocationID,
		WorkstationID: in.WorkstationID,
		Services:      services,
		Date:          domain.Day(in.Date),
		Turn:          in.Turn,
		Status:        string(domain.InitialStatus()),
		Notes:         strings.TrimSpace(in.Notes),
	}

	// --------------------------------------------------
	// Assignment, row and slot in one transaction
	// --------------------------------------------------
	err = e.tx.Do(ctx, func(ctx context.Context) error {
		if err := e.checkAssignment(ctx, in.StaffID, in.WorkstationID, in.LocationID); err != nil {
			return err
		}
		if err := e.repo.Create(ctx, ap); err != nil {
			return err
		}
		return e.slots.Reserve(ctx, ap.ID, domain.SlotOf(ap))
	})
	if err != nil {
		return nil, err
	}

	return ap, nil
}

// rejectedOutcome labels a failed booking by business kind; anything else
// is an infrastructure error.
func rejectedOutcome(kind httperr.Kind) string {
	if kind == "" {
		return "error"
	}
	return string(kind)
}
