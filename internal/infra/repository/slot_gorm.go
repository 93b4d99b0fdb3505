package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

type SlotGormRepository struct {
	db *gorm.DB
}

func NewSlotGormRepository(db *gorm.DB) *SlotGormRepository {
	return &SlotGormRepository{db: db}
}

// Insert issues a single multi-row INSERT, so both keys land or neither
// does, even outside a transaction.
func (r *SlotGormRepository) Insert(
	ctx context.Context,
	appointmentID uint,
	keys []domain.SlotKey,
) error {

	if len(keys) == 0 {
		return nil
	}

	rows := make([]models.SlotReservation, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.SlotReservation{
			Kind:          k.Kind,
			ResourceID:    k.ResourceID,
			Date:          domain.Day(k.Date),
			Turn:          k.Turn,
			AppointmentID: appointmentID,
		})
	}

	if err := txmanager.Conn(ctx, r.db).Create(&rows).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			return httperr.ErrSlotConflict()
		}
		return fmt.Errorf("reserve slot: %w", err)
	}
	return nil
}

func (r *SlotGormRepository) Delete(
	ctx context.Context,
	keys []domain.SlotKey,
) error {

	db := txmanager.Conn(ctx, r.db)
	for _, k := range keys {
		if err := db.
			Where(
				"kind = ? AND resource_id = ? AND date = ? AND turn = ?",
				k.Kind, k.ResourceID, domain.Day(k.Date), k.Turn,
			).
			Delete(&models.SlotReservation{}).Error; err != nil {
			return fmt.Errorf("release slot: %w", err)
		}
	}
	return nil
}

func (r *SlotGormRepository) Exists(
	ctx context.Context,
	key domain.SlotKey,
) (bool, error) {

	var count int64
	if err := txmanager.Conn(ctx, r.db).
		Model(&models.SlotReservation{}).
		Where(
			"kind = ? AND resource_id = ? AND date = ? AND turn = ?",
			key.Kind, key.ResourceID, domain.Day(key.Date), key.Turn,
		).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return count > 0, nil
}

func (r *SlotGormRepository) HeldTurns(
	ctx context.Context,
	kind string,
	resourceID uint,
	date time.Time,
) ([]int, error) {

	var turns []int
	if err := txmanager.Conn(ctx, r.db).
		Model(&models.SlotReservation{}).
		Where("kind = ? AND resource_id = ? AND date = ?", kind, resourceID, domain.Day(date)).
		Order("turn ASC").
		Pluck("turn", &turns).Error; err != nil {
		return nil, fmt.Errorf("list held turns: %w", err)
	}
	return turns, nil
}

var _ domain.SlotRepository = (*SlotGormRepository)(nil)
