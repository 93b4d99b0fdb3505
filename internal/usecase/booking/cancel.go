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

// Cancel releases the slot and the reminder. Cancelling a cancelled
// appointment returns it unchanged.
func (e *Engine) Cancel(
	ctx context.Context,
	id uint,
	reason string,
) (*models.Appointment, error) {

	var (
		ap      *models.Appointment
		changed bool
	)
	reason = strings.TrimSpace(reason)

	err := e.tx.Do(ctx, func(ctx context.Context) error {
		var err error

		ap, err = e.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := e.now()
		changed, err = domain.Cancel(ap, reason, now)
		if err != nil || !changed {
			return err
		}

		ok, err := e.repo.TransitionStatus(
			ctx,
			ap.ID,
			domain.Sources(domain.StatusCancelled),
			domain.StatusCancelled,
			now,
			reason,
		)
		if err != nil {
			return err
		}
		if !ok {
			return httperr.ErrInvalidTransition()
		}

		return e.slots.Release(ctx, domain.SlotOf(ap))
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		return ap, nil
	}

	e.cancelReminder(ctx, ap.ID)
	e.metrics.Transition(string(domain.StatusCancelled))
	e.log.Info("booking.cancel.ok", logger.Fields{"appointmentId": ap.ID})
	e.record(ctx, "appointment_cancelled", ap, map[string]any{"reason": reason})

	return ap, nil
}

// CancelUpcomingForStaff cancels every pending or confirmed appointment of
// staffID dated on or after from. It is the explicit follow-up to
// deactivating a staff member, which on its own leaves bookings in place.
func (e *Engine) CancelUpcomingForStaff(
	ctx context.Context,
	staffID uint,
	from time.Time,
	reason string,
) ([]uint, error) {

	if _, err := e.resources.GetStaff(ctx, staffID); err != nil {
		return nil, err
	}

	apps, err := e.repo.ListActiveForStaffFrom(ctx, staffID, from)
	if err != nil {
		return nil, err
	}

	cancelled := []uint{}
	for _, ap := range apps {
		if _, err := e.Cancel(ctx, ap.ID, reason); err != nil {
			// Completed or finalized in the meantime.
			if httperr.IsKind(err, httperr.KindInvalidTransition) {
				continue
			}
			return cancelled, err
		}
		cancelled = append(cancelled, ap.ID)
	}

	e.log.Info("booking.cancel_upcoming.ok", logger.Fields{
		"staffId": staffID,
		"count":   len(cancelled),
	})
	return cancelled, nil
}
