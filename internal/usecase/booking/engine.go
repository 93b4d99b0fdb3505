package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/slots"
)

// ReminderRegistrar is the part of the reminder scheduler the engine drives.
type ReminderRegistrar interface {
	Schedule(ctx context.Context, appointmentID uint, fireAt time.Time) error
	Cancel(ctx context.Context, appointmentID uint) error
	Reschedule(ctx context.Context, appointmentID uint, fireAt time.Time) error
}

type Deps struct {
	Tx           txmanager.Transactor
	Appointments domain.Repository
	Catalog      domain.Catalog
	Resources    resource.Repository
	Slots        *slots.Index
	Reminders    ReminderRegistrar
	Clock        *domain.TurnClock
	ReminderLead time.Duration
	Audit        audit.Recorder
	Metrics      *metrics.Metrics
	Logger       logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine drives the appointment lifecycle. Slot reservations change in
// the same transaction as the appointment row; reminders are registered
// after commit.
type Engine struct {
	tx        txmanager.Transactor
	repo      domain.Repository
	catalog   domain.Catalog
	resources resource.Repository
	slots     *slots.Index
	reminders ReminderRegistrar
	clock     *domain.TurnClock
	lead      time.Duration
	audit     audit.Recorder
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
}

func NewEngine(d Deps) *Engine {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	rec := d.Audit
	if rec == nil {
		rec = audit.Nop{}
	}
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Engine{
		tx:        d.Tx,
		repo:      d.Appointments,
		catalog:   d.Catalog,
		resources: d.Resources,
		slots:     d.Slots,
		reminders: d.Reminders,
		clock:     d.Clock,
		lead:      d.ReminderLead,
		audit:     rec,
		metrics:   d.Metrics,
		log:       log.WithModule("BookingEngine"),
		now:       now,
	}
}

// StartOf is the wall-clock start of an appointment.
func (e *Engine) StartOf(ap *models.Appointment) time.Time {
	return e.clock.StartOf(ap.Date, ap.Turn)
}

func (e *Engine) fireAt(ap *models.Appointment) time.Time {
	return e.StartOf(ap).Add(-e.lead)
}

func (e *Engine) record(ctx context.Context, action string, ap *models.Appointment, meta map[string]any) {
	e.audit.Dispatch(audit.EventFor(ctx, audit.Event{
		LocationID: &ap.LocationID,
		Action:     action,
		Entity:     "appointment",
		EntityID:   &ap.ID,
		Metadata:   meta,
	}))
}

func (e *Engine) scheduleReminder(ctx context.Context, ap *models.Appointment) {
	if e.reminders == nil {
		return
	}
	if err := e.reminders.Schedule(ctx, ap.ID, e.fireAt(ap)); err != nil {
		// The scheduler's recovery sweep rebuilds missing tasks.
		e.log.Error("booking.reminder.schedule_failed", logger.Fields{
			"appointmentId": ap.ID,
			"error":         err,
		})
	}
}

func (e *Engine) rescheduleReminder(ctx context.Context, ap *models.Appointment) {
	if e.reminders == nil {
		return
	}
	if err := e.reminders.Reschedule(ctx, ap.ID, e.fireAt(ap)); err != nil {
		e.log.Error("booking.reminder.reschedule_failed", logger.Fields{
			"appointmentId": ap.ID,
			"error":         err,
		})
	}
}

func (e *Engine) cancelReminder(ctx context.Context, appointmentID uint) {
	if e.reminders == nil {
		return
	}
	if err := e.reminders.Cancel(ctx, appointmentID); err != nil {
		e.log.Error("booking.reminder.cancel_failed", logger.Fields{
			"appointmentId": appointmentID,
			"error":         err,
		})
	}
}
