package booking

import (
	"context"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// transition applies a lifecycle step under the appointment row lock and
// persists it as a compare-and-swap on the status column. Checks made by
// apply (the assigned staff member for Finalize) hold until commit.
func (e *Engine) transition(
	ctx context.Context,
	id uint,
	to domain.Status,
	apply func(ap *models.Appointment) error,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := e.tx.Do(ctx, func(ctx context.Context) error {
		var err error

		ap, err = e.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(ap); err != nil {
			return err
		}

		ok, err := e.repo.TransitionStatus(ctx, ap.ID, domain.Sources(to), to, e.now(), "")
		if err != nil {
			return err
		}
		if !ok {
			return httperr.ErrInvalidTransition()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.metrics.Transition(string(to))
	return ap, nil
}

func (e *Engine) Confirm(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, err := e.transition(ctx, id, domain.StatusConfirmed, func(ap *models.Appointment) error {
		return domain.Confirm(ap, e.now())
	})
	if err != nil {
		return nil, err
	}

	e.record(ctx, "appointment_confirmed", ap, nil)
	return ap, nil
}

// Complete marks the service as delivered. The reminder is no longer
// useful past this point.
func (e *Engine) Complete(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, err := e.transition(ctx, id, domain.StatusCompleted, func(ap *models.Appointment) error {
		return domain.Complete(ap, e.now())
	})
	if err != nil {
		return nil, err
	}

	e.cancelReminder(ctx, ap.ID)
	e.record(ctx, "appointment_completed", ap, nil)
	return ap, nil
}

// Finalize is reserved to the assigned staff member. The slot stays held:
// past slots are never recycled.
func (e *Engine) Finalize(ctx context.Context, id uint, staffID uint) (*models.Appointment, error) {
	ap, err := e.transition(ctx, id, domain.StatusFinalized, func(ap *models.Appointment) error {
		return domain.Finalize(ap, staffID, e.now())
	})
	if err != nil {
		return nil, err
	}

	e.cancelReminder(ctx, ap.ID)
	e.record(ctx, "appointment_finalized", ap, map[string]any{"staffId": staffID})
	return ap, nil
}
