package payment

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRefunded Status = "refunded"
	StatusFailed   Status = "failed"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
	MethodOther    Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer, MethodOther:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return httperr.ErrBusiness("invalid_amount")
	}
	return nil
}

type Repository interface {
	// Create fails with PaymentAlreadyExists when the appointment already
	// has a payment row.
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByAppointment(ctx context.Context, appointmentID uint) (*models.Payment, error)
	Save(ctx context.Context, p *models.Payment) error
}
