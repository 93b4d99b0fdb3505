package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Get returns the appointment with its client, staff, location and
// services loaded.
func (e *Engine) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	return e.repo.GetDetails(ctx, id)
}

func (e *Engine) ListForStaffDay(ctx context.Context, staffID uint, date time.Time) ([]models.Appointment, error) {
	if _, err := e.resources.GetStaff(ctx, staffID); err != nil {
		return nil, err
	}
	return e.repo.ListForStaffDay(ctx, staffID, date)
}
