package memstore

import (
	"context"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Appointments is the appointment repository and catalog view of a Store.
type Appointments struct {
	s *Store
}

func (s *Store) Appointments() *Appointments {
	return &Appointments{s: s}
}

func (r *Appointments) Create(ctx context.Context, ap *models.Appointment) error {
	return r.s.with(ctx, func(st *state) error {
		now := r.s.now()
		ap.ID = st.nextID()
		ap.CreatedAt = now
		ap.UpdatedAt = now
		if ap.Status == "" {
			ap.Status = string(domain.InitialStatus())
		}
		for i := range ap.Services {
			ap.Services[i].AppointmentID = ap.ID
			ap.Services[i].Position = i
		}
		st.appointments[ap.ID] = copyAppointment(stripAssociations(*ap))
		return nil
	})
}

func (r *Appointments) get(st *state, id uint) (*models.Appointment, error) {
	ap, ok := st.appointments[id]
	if !ok {
		return nil, httperr.ErrNotFound("appointment")
	}
	out := copyAppointment(ap)
	return &out, nil
}

func (r *Appointments) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var out *models.Appointment
	err := r.s.with(ctx, func(st *state) (err error) {
		out, err = r.get(st, id)
		return err
	})
	return out, err
}

// GetForUpdate is GetByID; the transaction lock already excludes writers.
func (r *Appointments) GetForUpdate(ctx context.Context, id uint) (*models.Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *Appointments) GetDetails(ctx context.Context, id uint) (*models.Appointment, error) {
	var out *models.Appointment
	err := r.s.with(ctx, func(st *state) error {
		ap, err := r.get(st, id)
		if err != nil {
			return err
		}
		ap.Client = st.persons[ap.ClientID]
		staff := st.staff[ap.StaffID]
		staff.Person = st.persons[staff.PersonID]
		ap.Staff = staff
		ap.Location = st.locations[ap.LocationID]
		for i := range ap.Services {
			ap.Services[i].Service = st.services[ap.Services[i].ServiceID]
		}
		out = ap
		return nil
	})
	return out, err
}

func (r *Appointments) Save(ctx context.Context, ap *models.Appointment) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.appointments[ap.ID]; !ok {
			return httperr.ErrNotFound("appointment")
		}
		ap.UpdatedAt = r.s.now()
		for i := range ap.Services {
			ap.Services[i].AppointmentID = ap.ID
			ap.Services[i].Position = i
		}
		st.appointments[ap.ID] = copyAppointment(stripAssociations(*ap))
		return nil
	})
}

func (r *Appointments) TransitionStatus(
	ctx context.Context,
	id uint,
	from []domain.Status,
	to domain.Status,
	at time.Time,
	reason string,
) (bool, error) {

	var changed bool
	err := r.s.with(ctx, func(st *state) error {
		ap, ok := st.appointments[id]
		if !ok || !containsStatus(from, domain.Status(ap.Status)) {
			return nil
		}
		ap.Status = string(to)
		ap.UpdatedAt = at
		switch to {
		case domain.StatusConfirmed:
			ap.ConfirmedAt = &at
		case domain.StatusCompleted:
			ap.CompletedAt = &at
		case domain.StatusFinalized:
			ap.FinalizedAt = &at
		case domain.StatusCancelled:
			ap.CancelledAt = &at
			ap.CancellationReason = reason
		}
		st.appointments[id] = ap
		changed = true
		return nil
	})
	return changed, err
}

func (r *Appointments) SetPayment(ctx context.Context, appointmentID, paymentID uint) (bool, error) {
	var linked bool
	err := r.s.with(ctx, func(st *state) error {
		ap, ok := st.appointments[appointmentID]
		if !ok || ap.PaymentID != nil {
			return nil
		}
		for _, other := range st.appointments {
			if other.PaymentID != nil && *other.PaymentID == paymentID {
				return nil
			}
		}
		ap.PaymentID = &paymentID
		st.appointments[appointmentID] = ap
		linked = true
		return nil
	})
	return linked, err
}

func (r *Appointments) list(ctx context.Context, keep func(models.Appointment) bool) ([]models.Appointment, error) {
	var out []models.Appointment
	err := r.s.with(ctx, func(st *state) error {
		for _, ap := range st.appointments {
			if keep(ap) {
				out = append(out, copyAppointment(ap))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Turn != out[j].Turn {
			return out[i].Turn < out[j].Turn
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *Appointments) ListForStaffDay(ctx context.Context, staffID uint, date time.Time) ([]models.Appointment, error) {
	day := domain.Day(date)
	apps, err := r.list(ctx, func(ap models.Appointment) bool {
		return ap.StaffID == staffID && domain.Day(ap.Date).Equal(day)
	})
	if err != nil {
		return nil, err
	}
	_ = r.s.with(ctx, func(st *state) error {
		for i := range apps {
			apps[i].Client = st.persons[apps[i].ClientID]
		}
		return nil
	})
	return apps, nil
}

func (r *Appointments) ListActiveFrom(ctx context.Context, from time.Time) ([]models.Appointment, error) {
	day := domain.Day(from)
	return r.list(ctx, func(ap models.Appointment) bool {
		return containsStatus(domain.ActiveStatuses, domain.Status(ap.Status)) &&
			!domain.Day(ap.Date).Before(day)
	})
}

func (r *Appointments) ListActiveForStaffFrom(ctx context.Context, staffID uint, from time.Time) ([]models.Appointment, error) {
	day := domain.Day(from)
	return r.list(ctx, func(ap models.Appointment) bool {
		return ap.StaffID == staffID &&
			containsStatus(domain.ActiveStatuses, domain.Status(ap.Status)) &&
			!domain.Day(ap.Date).Before(day)
	})
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *Appointments) GetPerson(ctx context.Context, id uint) (*models.Person, error) {
	var out *models.Person
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.persons[id]
		if !ok {
			return httperr.ErrNotFound("client")
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *Appointments) GetServices(ctx context.Context, ids []uint) ([]models.Service, error) {
	var out []models.Service
	err := r.s.with(ctx, func(st *state) error {
		for _, id := range ids {
			if svc, ok := st.services[id]; ok {
				out = append(out, svc)
			}
		}
		return nil
	})
	return out, err
}

func stripAssociations(ap models.Appointment) models.Appointment {
	ap.Client = models.Person{}
	ap.Staff = models.Staff{}
	ap.Location = models.Location{}
	ap.Workstation = models.Workstation{}
	services := make([]models.AppointmentService, len(ap.Services))
	for i, s := range ap.Services {
		s.Service = models.Service{}
		services[i] = s
	}
	ap.Services = services
	return ap
}

func containsStatus(list []domain.Status, s domain.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var (
	_ domain.Repository = (*Appointments)(nil)
	_ domain.Catalog    = (*Appointments)(nil)
)
