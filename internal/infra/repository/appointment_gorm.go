package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) conn(ctx context.Context) *gorm.DB {
	return txmanager.Conn(ctx, r.db)
}

func orderedServices(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// --------------------------------------------------
// Appointment (create / read)
// --------------------------------------------------

func (r *AppointmentGormRepository) Create(
	ctx context.Context,
	ap *models.Appointment,
) error {

	db := r.conn(ctx)
	if err := db.Omit(clause.Associations).Create(ap).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return r.writeServices(db, ap)
}

func (r *AppointmentGormRepository) writeServices(db *gorm.DB, ap *models.Appointment) error {
	for i := range ap.Services {
		ap.Services[i].AppointmentID = ap.ID
		ap.Services[i].Position = i
	}
	if len(ap.Services) == 0 {
		return nil
	}
	if err := db.Omit(clause.Associations).Create(&ap.Services).Error; err != nil {
		return fmt.Errorf("create appointment services: %w", err)
	}
	return nil
}

func (r *AppointmentGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.conn(ctx).
		Preload("Services", orderedServices).
		First(&ap, id).Error
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetForUpdate(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	db := r.conn(ctx)

	var ap models.Appointment
	if err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, notFound(err, "appointment")
	}

	if err := db.
		Where("appointment_id = ?", id).
		Order("position ASC").
		Find(&ap.Services).Error; err != nil {
		return nil, fmt.Errorf("load appointment services: %w", err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetDetails(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.conn(ctx).
		Preload("Client").
		Preload("Staff.Person").
		Preload("Location").
		Preload("Services", orderedServices).
		Preload("Services.Service").
		First(&ap, id).Error
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	return &ap, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) Save(
	ctx context.Context,
	ap *models.Appointment,
) error {

	db := r.conn(ctx)
	if err := db.Omit(clause.Associations).Save(ap).Error; err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}

	if err := db.
		Where("appointment_id = ?", ap.ID).
		Delete(&models.AppointmentService{}).Error; err != nil {
		return fmt.Errorf("clear appointment services: %w", err)
	}
	return r.writeServices(db, ap)
}

var statusTimestamp = map[domain.Status]string{
	domain.StatusConfirmed: "confirmed_at",
	domain.StatusCompleted: "completed_at",
	domain.StatusFinalized: "finalized_at",
	domain.StatusCancelled: "cancelled_at",
}

func (r *AppointmentGormRepository) TransitionStatus(
	ctx context.Context,
	id uint,
	from []domain.Status,
	to domain.Status,
	at time.Time,
	reason string,
) (bool, error) {

	updates := map[string]any{
		"status":     string(to),
		"updated_at": at,
	}
	if col, ok := statusTimestamp[to]; ok {
		updates[col] = at
	}
	if to == domain.StatusCancelled {
		updates["cancellation_reason"] = reason
	}

	res := r.conn(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition appointment status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *AppointmentGormRepository) SetPayment(
	ctx context.Context,
	appointmentID uint,
	paymentID uint,
) (bool, error) {

	res := r.conn(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND payment_id IS NULL", appointmentID).
		Update("payment_id", paymentID)
	if res.Error != nil {
		if httperr.IsUniqueViolation(res.Error) {
			return false, nil
		}
		return false, fmt.Errorf("link payment: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *AppointmentGormRepository) ListForStaffDay(
	ctx context.Context,
	staffID uint,
	date time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.conn(ctx).
		Preload("Client").
		Preload("Services", orderedServices).
		Where("staff_id = ? AND date = ?", staffID, domain.Day(date)).
		Order("turn ASC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list staff day: %w", err)
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListActiveFrom(
	ctx context.Context,
	from time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.conn(ctx).
		Where("status IN ? AND date >= ?", statusStrings(domain.ActiveStatuses), domain.Day(from)).
		Order("date ASC, turn ASC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListActiveForStaffFrom(
	ctx context.Context,
	staffID uint,
	from time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.conn(ctx).
		Where(
			"staff_id = ? AND status IN ? AND date >= ?",
			staffID, statusStrings(domain.ActiveStatuses), domain.Day(from),
		).
		Order("date ASC, turn ASC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("list staff appointments: %w", err)
	}
	return apps, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetPerson(
	ctx context.Context,
	id uint,
) (*models.Person, error) {

	var p models.Person
	if err := r.conn(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "client")
	}
	return &p, nil
}

func (r *AppointmentGormRepository) GetServices(
	ctx context.Context,
	ids []uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.conn(ctx).
		Where("id IN ?", ids).
		Find(&services).Error; err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	return services, nil
}

// --------------------------------------------------
// helpers
// --------------------------------------------------

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(entity)
	}
	return fmt.Errorf("load %s: %w", entity, err)
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Compile-time check
var (
	_ domain.Repository = (*AppointmentGormRepository)(nil)
	_ domain.Catalog    = (*AppointmentGormRepository)(nil)
)
