package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p *models.Payment) error {
	if err := txmanager.Conn(ctx, r.db).Create(p).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			return httperr.ErrPaymentAlreadyExists()
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *PaymentGormRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := txmanager.Conn(ctx, r.db).First(&p, id).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

func (r *PaymentGormRepository) GetByAppointment(ctx context.Context, appointmentID uint) (*models.Payment, error) {
	var p models.Payment
	if err := txmanager.Conn(ctx, r.db).
		Where("appointment_id = ?", appointmentID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

// Save never rewrites the appointment reference.
func (r *PaymentGormRepository) Save(ctx context.Context, p *models.Payment) error {
	if err := txmanager.Conn(ctx, r.db).
		Model(p).
		Select("amount", "method", "status", "notes", "paid_at", "updated_at").
		Updates(p).Error; err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

var _ payment.Repository = (*PaymentGormRepository)(nil)
