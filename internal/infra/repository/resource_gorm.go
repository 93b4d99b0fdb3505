package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

type ResourceGormRepository struct {
	db *gorm.DB
}

func NewResourceGormRepository(db *gorm.DB) *ResourceGormRepository {
	return &ResourceGormRepository{db: db}
}

func (r *ResourceGormRepository) conn(ctx context.Context) *gorm.DB {
	return txmanager.Conn(ctx, r.db)
}

// --------------------------------------------------
// Staff
// --------------------------------------------------

func (r *ResourceGormRepository) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	var s models.Staff
	if err := r.conn(ctx).Preload("Person").First(&s, id).Error; err != nil {
		return nil, notFound(err, "staff")
	}
	return &s, nil
}

func (r *ResourceGormRepository) GetStaffForUpdate(ctx context.Context, id uint) (*models.Staff, error) {
	var s models.Staff
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error; err != nil {
		return nil, notFound(err, "staff")
	}
	return &s, nil
}

func (r *ResourceGormRepository) SetStaffWorkstation(ctx context.Context, staffID uint, workstationID *uint) error {
	res := r.conn(ctx).
		Model(&models.Staff{}).
		Where("id = ?", staffID).
		Update("workstation_id", workstationID)
	if res.Error != nil {
		if httperr.IsUniqueViolation(res.Error) {
			return httperr.ErrAlreadyOccupied()
		}
		return fmt.Errorf("set staff workstation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("staff")
	}
	return nil
}

func (r *ResourceGormRepository) SetStaffActive(ctx context.Context, staffID uint, active bool) error {
	res := r.conn(ctx).
		Model(&models.Staff{}).
		Where("id = ?", staffID).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("set staff active: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("staff")
	}
	return nil
}

// --------------------------------------------------
// Workstation
// --------------------------------------------------

func (r *ResourceGormRepository) GetWorkstation(ctx context.Context, id uint) (*models.Workstation, error) {
	var ws models.Workstation
	if err := r.conn(ctx).First(&ws, id).Error; err != nil {
		return nil, notFound(err, "workstation")
	}
	return &ws, nil
}

func (r *ResourceGormRepository) GetWorkstationForUpdate(ctx context.Context, id uint) (*models.Workstation, error) {
	var ws models.Workstation
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ws, id).Error; err != nil {
		return nil, notFound(err, "workstation")
	}
	return &ws, nil
}

func (r *ResourceGormRepository) ListWorkstations(ctx context.Context, locationID uint) ([]models.Workstation, error) {
	var out []models.Workstation
	if err := r.conn(ctx).
		Where("location_id = ?", locationID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list workstations: %w", err)
	}
	return out, nil
}

func (r *ResourceGormRepository) CreateWorkstation(ctx context.Context, ws *models.Workstation) error {
	if err := r.conn(ctx).Omit(clause.Associations).Create(ws).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			return httperr.ErrBusiness("workstation_name_taken")
		}
		return fmt.Errorf("create workstation: %w", err)
	}
	return nil
}

func (r *ResourceGormRepository) OccupyWorkstation(ctx context.Context, workstationID, staffID uint) (bool, error) {
	res := r.conn(ctx).
		Model(&models.Workstation{}).
		Where("id = ? AND (staff_id IS NULL OR staff_id = ?)", workstationID, staffID).
		Update("staff_id", staffID)
	if res.Error != nil {
		if httperr.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, fmt.Errorf("occupy workstation: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ResourceGormRepository) VacateWorkstation(ctx context.Context, workstationID, staffID uint) error {
	if err := r.conn(ctx).
		Model(&models.Workstation{}).
		Where("id = ? AND staff_id = ?", workstationID, staffID).
		Update("staff_id", nil).Error; err != nil {
		return fmt.Errorf("vacate workstation: %w", err)
	}
	return nil
}

// --------------------------------------------------
// Location
// --------------------------------------------------

func (r *ResourceGormRepository) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	if err := r.conn(ctx).First(&loc, id).Error; err != nil {
		return nil, notFound(err, "location")
	}
	return &loc, nil
}

var _ resource.Repository = (*ResourceGormRepository)(nil)
