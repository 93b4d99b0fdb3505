package resource

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

// Directory owns staff and workstation assignment. Every change that
// touches both a staff row and a workstation row runs in one transaction.
type Directory struct {
	repo  domain.Repository
	tx    txmanager.Transactor
	audit audit.Recorder
	log   logger.Logger
}

func NewDirectory(
	repo domain.Repository,
	tx txmanager.Transactor,
	rec audit.Recorder,
	log logger.Logger,
) *Directory {
	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Directory{
		repo:  repo,
		tx:    tx,
		audit: rec,
		log:   log.WithModule("ResourceDirectory"),
	}
}

// ======================================================
// Assignment
// ======================================================

// AssignWorkstation moves staffID onto workstationID, vacating whatever
// workstation they held before.
func (d *Directory) AssignWorkstation(
	ctx context.Context,
	staffID uint,
	workstationID uint,
) (*models.Staff, error) {

	var staff *models.Staff

	err := d.tx.Do(ctx, func(ctx context.Context) error {
		var err error

		staff, err = d.repo.GetStaffForUpdate(ctx, staffID)
		if err != nil {
			return err
		}
		if !staff.Active {
			return httperr.ErrBusiness("staff_inactive")
		}

		ws, err := d.repo.GetWorkstationForUpdate(ctx, workstationID)
		if err != nil {
			return err
		}
		if !ws.Active {
			return httperr.ErrBusiness("workstation_inactive")
		}
		if ws.LocationID != staff.LocationID {
			return httperr.ErrBusiness("workstation_other_location")
		}

		if staff.HoldsWorkstation(ws.ID) {
			return nil
		}

		// --------------------------------------------------
		// Current occupant
		// --------------------------------------------------
		if ws.StaffID != nil && *ws.StaffID != staffID {
			occupant, err := d.repo.GetStaff(ctx, *ws.StaffID)
			if err != nil {
				return err
			}
			if occupant.Active {
				return httperr.ErrAlreadyOccupied()
			}
			// An inactive occupant is stale state; clear it.
			if err := d.vacate(ctx, ws.ID, occupant); err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// Previous workstation of this staff member
		// --------------------------------------------------
		if staff.WorkstationID != nil {
			if err := d.repo.VacateWorkstation(ctx, *staff.WorkstationID, staffID); err != nil {
				return err
			}
		}

		ok, err := d.repo.OccupyWorkstation(ctx, ws.ID, staffID)
		if err != nil {
			return err
		}
		if !ok {
			return httperr.ErrAlreadyOccupied()
		}

		if err := d.repo.SetStaffWorkstation(ctx, staffID, &ws.ID); err != nil {
			return err
		}
		id := ws.ID
		staff.WorkstationID = &id
		return nil
	})
	if err != nil {
		d.log.Warn("resource.assign.rejected", logger.Fields{
			"staffId":       staffID,
			"workstationId": workstationID,
			"error":         err,
		})
		return nil, err
	}

	d.audit.Dispatch(audit.EventFor(ctx, audit.Event{
		LocationID: &staff.LocationID,
		Action:     "workstation_assigned",
		Entity:     "staff",
		EntityID:   &staff.ID,
		Metadata:   map[string]any{"workstationId": workstationID},
	}))

	return staff, nil
}

// ReleaseWorkstation frees workstationID. Releasing a free workstation
// succeeds.
func (d *Directory) ReleaseWorkstation(
	ctx context.Context,
	workstationID uint,
) error {

	var released *uint

	err := d.tx.Do(ctx, func(ctx context.Context) error {
		ws, err := d.repo.GetWorkstation(ctx, workstationID)
		if err != nil {
			return err
		}
		if ws.IsFree() {
			return nil
		}

		// Staff row first, same order as AssignWorkstation.
		staff, err := d.repo.GetStaffForUpdate(ctx, *ws.StaffID)
		if err != nil {
			return err
		}
		ws, err = d.repo.GetWorkstationForUpdate(ctx, workstationID)
		if err != nil {
			return err
		}
		if ws.IsFree() {
			return nil
		}

		if err := d.vacate(ctx, ws.ID, staff); err != nil {
			return err
		}
		released = &staff.ID
		return nil
	})
	if err != nil {
		return err
	}

	if released != nil {
		d.audit.Dispatch(audit.EventFor(ctx, audit.Event{
			Action:   "workstation_released",
			Entity:   "workstation",
			EntityID: &workstationID,
			Metadata: map[string]any{"staffId": *released},
		}))
	}
	return nil
}

// vacate clears both sides of the staff/workstation link.
func (d *Directory) vacate(ctx context.Context, workstationID uint, staff *models.Staff) error {
	if err := d.repo.VacateWorkstation(ctx, workstationID, staff.ID); err != nil {
		return err
	}
	if staff.HoldsWorkstation(workstationID) {
		if err := d.repo.SetStaffWorkstation(ctx, staff.ID, nil); err != nil {
			return err
		}
		staff.WorkstationID = nil
	}
	return nil
}

// ======================================================
// Staff status
// ======================================================

// DeactivateStaff releases the held workstation and marks the staff member
// inactive in one transaction. Booked appointments are left alone; see
// booking.Engine.CancelUpcomingForStaff.
func (d *Directory) DeactivateStaff(
	ctx context.Context,
	staffID uint,
) (*models.Staff, error) {

	var staff *models.Staff

	err := d.tx.Do(ctx, func(ctx context.Context) error {
		var err error
		staff, err = d.repo.GetStaffForUpdate(ctx, staffID)
		if err != nil {
			return err
		}

		if staff.WorkstationID != nil {
			if err := d.vacate(ctx, *staff.WorkstationID, staff); err != nil {
				return err
			}
		}

		if err := d.repo.SetStaffActive(ctx, staffID, false); err != nil {
			return err
		}
		staff.Active = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info("resource.staff.deactivated", logger.Fields{"staffId": staffID})
	d.audit.Dispatch(audit.EventFor(ctx, audit.Event{
		LocationID: &staff.LocationID,
		Action:     "staff_deactivated",
		Entity:     "staff",
		EntityID:   &staff.ID,
	}))

	return staff, nil
}

// ActivateStaff does not assign a workstation.
func (d *Directory) ActivateStaff(
	ctx context.Context,
	staffID uint,
) (*models.Staff, error) {

	if err := d.repo.SetStaffActive(ctx, staffID, true); err != nil {
		return nil, err
	}

	staff, err := d.repo.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}

	d.audit.Dispatch(audit.EventFor(ctx, audit.Event{
		LocationID: &staff.LocationID,
		Action:     "staff_activated",
		Entity:     "staff",
		EntityID:   &staff.ID,
	}))

	return staff, nil
}

// ======================================================
// Workstations
// ======================================================

func (d *Directory) CreateWorkstation(
	ctx context.Context,
	locationID uint,
	name string,
) (*models.Workstation, error) {

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, httperr.ErrBusiness("workstation_name_required")
	}

	if _, err := d.repo.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}

	ws := &models.Workstation{
		LocationID: locationID,
		Name:       name,
		Active:     true,
	}
	if err := d.repo.CreateWorkstation(ctx, ws); err != nil {
		return nil, err
	}

	d.audit.Dispatch(audit.EventFor(ctx, audit.Event{
		LocationID: &locationID,
		Action:     "workstation_created",
		Entity:     "workstation",
		EntityID:   &ws.ID,
	}))

	return ws, nil
}

// ======================================================
// Reads
// ======================================================

func (d *Directory) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	return d.repo.GetStaff(ctx, id)
}

func (d *Directory) GetWorkstation(ctx context.Context, id uint) (*models.Workstation, error) {
	return d.repo.GetWorkstation(ctx, id)
}

func (d *Directory) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	return d.repo.GetLocation(ctx, id)
}

func (d *Directory) ListWorkstations(ctx context.Context, locationID uint) ([]models.Workstation, error) {
	if _, err := d.repo.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	return d.repo.ListWorkstations(ctx, locationID)
}
