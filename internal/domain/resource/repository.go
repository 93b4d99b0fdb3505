package resource

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type Repository interface {
	// -------- Staff --------
	GetStaff(ctx context.Context, id uint) (*models.Staff, error)
	GetStaffForUpdate(ctx context.Context, id uint) (*models.Staff, error)
	SetStaffWorkstation(ctx context.Context, staffID uint, workstationID *uint) error
	SetStaffActive(ctx context.Context, staffID uint, active bool) error

	// -------- Workstation --------
	GetWorkstation(ctx context.Context, id uint) (*models.Workstation, error)
	GetWorkstationForUpdate(ctx context.Context, id uint) (*models.Workstation, error)
	ListWorkstations(ctx context.Context, locationID uint) ([]models.Workstation, error)
	CreateWorkstation(ctx context.Context, ws *models.Workstation) error

	// OccupyWorkstation sets the occupant only if the workstation is free or
	// already held by staffID.
	OccupyWorkstation(ctx context.Context, workstationID, staffID uint) (bool, error)

	// VacateWorkstation clears the occupant only if it is staffID.
	VacateWorkstation(ctx context.Context, workstationID, staffID uint) error

	// -------- Location --------
	GetLocation(ctx context.Context, id uint) (*models.Location, error)
}
