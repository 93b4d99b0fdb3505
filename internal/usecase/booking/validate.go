package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// checkTime rejects turns outside the day and slots that already started.
func (e *Engine) checkTime(date time.Time, turn int) error {
	if !e.clock.Valid(turn) {
		return httperr.ErrBusiness("invalid_turn")
	}
	if e.clock.StartOf(date, turn).Before(e.now()) {
		return httperr.ErrBusiness("slot_in_past")
	}
	return nil
}

// loadServices resolves ids in order. Every id must name an active service.
func (e *Engine) loadServices(ctx context.Context, ids []uint) ([]models.AppointmentService, error) {
	if len(ids) == 0 {
		return nil, httperr.ErrBusiness("services_required")
	}

	found, err := e.catalog.GetServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	out := make([]models.AppointmentService, 0, len(ids))
	for _, id := range ids {
		svc, ok := byID[id]
		if !ok {
			return nil, httperr.ErrNotFound("service")
		}
		if !svc.Active {
			return nil, httperr.ErrBusiness("service_inactive")
		}
		out = append(out, models.AppointmentService{ServiceID: id})
	}
	return out, nil
}

// checkAssignment requires an active staff member working at locationID
// from workstationID. The staff row is locked when called in a transaction
// so a concurrent reassignment waits for the booking.
func (e *Engine) checkAssignment(ctx context.Context, staffID, workstationID, locationID uint) error {
	if _, err := e.resources.GetLocation(ctx, locationID); err != nil {
		return err
	}

	staff, err := e.resources.GetStaffForUpdate(ctx, staffID)
	if err != nil {
		return err
	}
	if !staff.Active {
		return httperr.ErrBusiness("staff_inactive")
	}
	if staff.LocationID != locationID {
		return httperr.ErrBusiness("staff_other_location")
	}

	ws, err := e.resources.GetWorkstation(ctx, workstationID)
	if err != nil {
		return err
	}
	if !ws.Active {
		return httperr.ErrBusiness("workstation_inactive")
	}
	if ws.LocationID != locationID {
		return httperr.ErrBusiness("workstation_other_location")
	}
	if !staff.HoldsWorkstation(ws.ID) {
		return httperr.ErrBusiness("staff_not_at_workstation")
	}
	return nil
}

func isActive(ap *models.Appointment) bool {
	s := domain.Status(ap.Status)
	for _, a := range domain.ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}
