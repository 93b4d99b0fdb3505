package booking

import (
	"context"
	"strings"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	StaffID       *uint
	WorkstationID *uint
	LocationID    *uint
	Date          *time.Time
	Turn          *int
	ServiceIDs    []uint
	Notes         *string
}

func (in UpdateInput) movesResources() bool {
	return in.StaffID != nil || in.WorkstationID != nil || in.LocationID != nil
}

func (in UpdateInput) movesTime() bool {
	return in.Date != nil || in.Turn != nil
}

// Update edits a non-terminal appointment. Any slot change is a new booking
// and goes through the same staff and workstation checks as Create. The new
// keys are reserved before the old ones are released, in the same
// transaction as the row update; a conflict leaves the appointment as it was.
func (e *Engine) Update(
	ctx context.Context,
	id uint,
	in UpdateInput,
) (*models.Appointment, error) {

	var (
		ap        *models.Appointment
		timeMoved bool
	)

	err := e.tx.Do(ctx, func(ctx context.Context) error {
		var err error

		ap, err = e.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := domain.CanUpdate(domain.Status(ap.Status)); err != nil {
			return err
		}

		old := domain.SlotOf(ap)

		if in.StaffID != nil {
			ap.StaffID = *in.StaffID
		}
		if in.WorkstationID != nil {
			ap.WorkstationID = *in.WorkstationID
		}
		if in.LocationID != nil {
			ap.LocationID = *in.LocationID
		}
		if in.Date != nil {
			ap.Date = domain.Day(*in.Date)
		}
		if in.Turn != nil {
			ap.Turn = *in.Turn
		}
		if in.Notes != nil {
			ap.Notes = strings.TrimSpace(*in.Notes)
		}

		if in.ServiceIDs != nil {
			services, err := e.loadServices(ctx, in.ServiceIDs)
			if err != nil {
				return err
			}
			ap.Services = services
		}

		next := domain.SlotOf(ap)
		timeMoved = !old.Date.Equal(next.Date) || old.Turn != next.Turn

		if timeMoved {
			if err := e.checkTime(ap.Date, ap.Turn); err != nil {
				return err
			}
		}
		if timeMoved || in.movesResources() {
			if err := e.checkAssignment(ctx, ap.StaffID, ap.WorkstationID, ap.LocationID); err != nil {
				return err
			}
		}

		if err := e.slots.Move(ctx, ap.ID, old, next); err != nil {
			return err
		}
		return e.repo.Save(ctx, ap)
	})
	if err != nil {
		e.log.Warn("booking.update.rejected", logger.Fields{
			"appointmentId": id,
			"error":         err,
		})
		return nil, err
	}

	if timeMoved && isActive(ap) {
		e.rescheduleReminder(ctx, ap)
	}

	meta := map[string]any{"rescheduled": timeMoved}
	if in.movesResources() {
		meta["staffId"] = ap.StaffID
		meta["workstationId"] = ap.WorkstationID
	}
	e.record(ctx, "appointment_updated", ap, meta)

	return ap, nil
}
