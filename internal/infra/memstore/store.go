// Package memstore keeps every repository in process memory. Transactions
// serialize on one mutex and roll back by restoring a snapshot.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type slotKey struct {
	kind       string
	resourceID uint
	date       string
	turn       int
}

type state struct {
	seq uint

	persons      map[uint]models.Person
	locations    map[uint]models.Location
	services     map[uint]models.Service
	staff        map[uint]models.Staff
	workstations map[uint]models.Workstation
	appointments map[uint]models.Appointment
	slots        map[slotKey]uint
	payments     map[uint]models.Payment
	audit        []models.AuditLog
}

func newState() *state {
	return &state{
		persons:      map[uint]models.Person{},
		locations:    map[uint]models.Location{},
		services:     map[uint]models.Service{},
		staff:        map[uint]models.Staff{},
		workstations: map[uint]models.Workstation{},
		appointments: map[uint]models.Appointment{},
		slots:        map[slotKey]uint{},
		payments:     map[uint]models.Payment{},
	}
}

func (s *state) nextID() uint {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.persons {
		c.persons[k] = v
	}
	for k, v := range s.locations {
		c.locations[k] = v
	}
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.staff {
		c.staff[k] = v
	}
	for k, v := range s.workstations {
		c.workstations[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = copyAppointment(v)
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	c.audit = append(c.audit, s.audit...)
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// Do runs fn with the store locked. Any error restores the state seen when
// the outermost Do began.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// with runs fn against the live state, taking the lock unless ctx already
// holds it.
func (s *Store) with(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func copyAppointment(ap models.Appointment) models.Appointment {
	ap.Services = append([]models.AppointmentService(nil), ap.Services...)
	return ap
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (s *Store) AddPerson(p models.Person) models.Person {
	_ = s.with(context.Background(), func(st *state) error {
		p.ID = st.nextID()
		st.persons[p.ID] = p
		return nil
	})
	return p
}

func (s *Store) AddLocation(l models.Location) models.Location {
	_ = s.with(context.Background(), func(st *state) error {
		l.ID = st.nextID()
		st.locations[l.ID] = l
		return nil
	})
	return l
}

func (s *Store) AddService(svc models.Service) models.Service {
	_ = s.with(context.Background(), func(st *state) error {
		svc.ID = st.nextID()
		st.services[svc.ID] = svc
		return nil
	})
	return svc
}

// AddStaff stores the staff member and, when WorkstationID is set, marks
// that workstation as occupied by them.
func (s *Store) AddStaff(m models.Staff) models.Staff {
	_ = s.with(context.Background(), func(st *state) error {
		m.ID = st.nextID()
		st.staff[m.ID] = m
		if m.WorkstationID != nil {
			if ws, ok := st.workstations[*m.WorkstationID]; ok {
				id := m.ID
				ws.StaffID = &id
				st.workstations[ws.ID] = ws
			}
		}
		return nil
	})
	return m
}

func (s *Store) AddWorkstation(ws models.Workstation) models.Workstation {
	_ = s.with(context.Background(), func(st *state) error {
		ws.ID = st.nextID()
		st.workstations[ws.ID] = ws
		return nil
	})
	return ws
}

// AuditLogs returns a copy of everything written through the audit writer.
func (s *Store) AuditLogs() []models.AuditLog {
	var out []models.AuditLog
	_ = s.with(context.Background(), func(st *state) error {
		out = append(out, st.audit...)
		return nil
	})
	return out
}

// SlotCount is the number of slot keys currently held.
func (s *Store) SlotCount() int {
	var n int
	_ = s.with(context.Background(), func(st *state) error {
		n = len(st.slots)
		return nil
	})
	return n
}
