package memstore

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/payment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type Payments struct {
	s *Store
}

func (s *Store) Payments() *Payments {
	return &Payments{s: s}
}

func (r *Payments) Create(ctx context.Context, p *models.Payment) error {
	return r.s.with(ctx, func(st *state) error {
		for _, other := range st.payments {
			if other.AppointmentID == p.AppointmentID {
				return httperr.ErrPaymentAlreadyExists()
			}
		}
		now := r.s.now()
		p.ID = st.nextID()
		p.CreatedAt = now
		p.UpdatedAt = now
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *Payments) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var out *models.Payment
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.payments[id]
		if !ok {
			return httperr.ErrNotFound("payment")
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *Payments) GetByAppointment(ctx context.Context, appointmentID uint) (*models.Payment, error) {
	var out *models.Payment
	err := r.s.with(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.AppointmentID == appointmentID {
				p := p
				out = &p
				return nil
			}
		}
		return httperr.ErrNotFound("payment")
	})
	return out, err
}

func (r *Payments) Save(ctx context.Context, p *models.Payment) error {
	return r.s.with(ctx, func(st *state) error {
		cur, ok := st.payments[p.ID]
		if !ok {
			return httperr.ErrNotFound("payment")
		}
		cur.Amount = p.Amount
		cur.Method = p.Method
		cur.Status = p.Status
		cur.Notes = p.Notes
		cur.PaidAt = p.PaidAt
		cur.UpdatedAt = r.s.now()
		st.payments[p.ID] = cur
		return nil
	})
}

var _ payment.Repository = (*Payments)(nil)
