package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

// Linker records the single payment an appointment may have.
type Linker struct {
	tx           txmanager.Transactor
	payments     domain.Repository
	appointments appointment.Repository
	audit        audit.Recorder
	metrics      *metrics.Metrics
	log          logger.Logger
	now          func() time.Time
}

func NewLinker(
	tx txmanager.Transactor,
	payments domain.Repository,
	appointments appointment.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	log logger.Logger,
	now func() time.Time,
) *Linker {

	if rec == nil {
		rec = audit.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Linker{
		tx:           tx,
		payments:     payments,
		appointments: appointments,
		audit:        rec,
		metrics:      m,
		log:          log.WithModule("PaymentLinker"),
		now:          now,
	}
}

func (l *Linker) record(ctx context.Context, action string, ap *models.Appointment, p *models.Payment, meta map[string]any) {
	var locationID *uint
	if ap != nil {
		locationID = &ap.LocationID
	}
	l.audit.Dispatch(audit.EventFor(ctx, audit.Event{
		LocationID: locationID,
		Action:     action,
		Entity:     "payment",
		EntityID:   &p.ID,
		Metadata:   meta,
	}))
}

// ======================================================
// Create
// ======================================================

type CreateInput struct {
	AppointmentID uint
	Amount        float64
	Method        string

	// Status defaults to pending.
	Status string
	Notes  string
}

func (in CreateInput) validate() error {
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if !domain.Method(in.Method).Valid() {
		return httperr.ErrBusiness("invalid_payment_method")
	}
	if in.Status != "" && !domain.Status(in.Status).Valid() {
		return httperr.ErrBusiness("invalid_payment_status")
	}
	return nil
}

// CreatePayment inserts the payment and links it to the appointment in one
// transaction. A second payment for the same appointment fails with
// payment_already_exists, whoever wins the race.
func (l *Linker) CreatePayment(ctx context.Context, in CreateInput) (*models.Payment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if in.Status != "" {
		status = domain.Status(in.Status)
	}

	var (
		ap *models.Appointment
		p  *models.Payment
	)
	err := l.tx.Do(ctx, func(ctx context.Context) error {
		var err error

		ap, err = l.appointments.GetForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if ap.PaymentID != nil {
			return httperr.ErrPaymentAlreadyExists()
		}
		if appointment.Status(ap.Status) == appointment.StatusCancelled {
			return httperr.ErrInvalidTransition()
		}

		p = &models.Payment{
			AppointmentID: ap.ID,
			Reference:     uuid.New(),
			Amount:        in.Amount,
			Method:        in.Method,
			Status:        string(status),
			Notes:         strings.TrimSpace(in.Notes),
		}
		if status == domain.StatusPaid {
			at := l.now()
			p.PaidAt = &at
		}
		if err := l.payments.Create(ctx, p); err != nil {
			return err
		}

		linked, err := l.appointments.SetPayment(ctx, ap.ID, p.ID)
		if err != nil {
			return err
		}
		if !linked {
			return httperr.ErrPaymentAlreadyExists()
		}
		return nil
	})
	if err != nil {
		if httperr.IsKind(err, httperr.KindPaymentAlreadyExists) {
			l.metrics.Payment("duplicate")
		}
		l.log.Warn("payment.create.failed", logger.Fields{
			"appointmentId": in.AppointmentID,
			"error":         err,
		})
		return nil, err
	}

	l.metrics.Payment("created")
	l.log.Info("payment.create.ok", logger.Fields{
		"appointmentId": ap.ID,
		"paymentId":     p.ID,
		"status":        p.Status,
	})
	l.record(ctx, "payment_created", ap, p, map[string]any{
		"amount": p.Amount,
		"method": p.Method,
		"status": p.Status,
	})
	return p, nil
}

// ======================================================
// Update
// ======================================================

// UpdateInput leaves nil fields unchanged. The appointment link and the
// reference cannot be changed.
type UpdateInput struct {
	Amount *float64
	Method *string
	Status *string
	Notes  *string
}

func (l *Linker) UpdatePayment(ctx context.Context, id uint, in UpdateInput) (*models.Payment, error) {
	var p *models.Payment

	err := l.tx.Do(ctx, func(ctx context.Context) error {
		var err error

		p, err = l.payments.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Amount != nil {
			if err := domain.ValidateAmount(*in.Amount); err != nil {
				return err
			}
			p.Amount = *in.Amount
		}
		if in.Method != nil {
			if !domain.Method(*in.Method).Valid() {
				return httperr.ErrBusiness("invalid_payment_method")
			}
			p.Method = *in.Method
		}
		if in.Status != nil {
			next := domain.Status(*in.Status)
			if !next.Valid() {
				return httperr.ErrBusiness("invalid_payment_status")
			}
			if next == domain.StatusPaid && p.PaidAt == nil {
				at := l.now()
				p.PaidAt = &at
			}
			p.Status = string(next)
		}
		if in.Notes != nil {
			p.Notes = strings.TrimSpace(*in.Notes)
		}

		return l.payments.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	l.metrics.Payment("updated")
	l.log.Info("payment.update.ok", logger.Fields{"paymentId": p.ID, "status": p.Status})
	l.record(ctx, "payment_updated", nil, p, map[string]any{
		"amount": p.Amount,
		"method": p.Method,
		"status": p.Status,
	})
	return p, nil
}

// ======================================================
// Queries
// ======================================================

func (l *Linker) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	return l.payments.GetByID(ctx, id)
}

func (l *Linker) GetByAppointment(ctx context.Context, appointmentID uint) (*models.Payment, error) {
	if _, err := l.appointments.GetByID(ctx, appointmentID); err != nil {
		return nil, err
	}
	return l.payments.GetByAppointment(ctx, appointmentID)
}
