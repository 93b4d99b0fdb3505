package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
)

// Reminders is a reminder.Store kept in memory. It is independent of the
// Store transaction lock.
type Reminders struct {
	mu    sync.Mutex
	tasks map[uint]reminder.Task
}

func NewReminders() *Reminders {
	return &Reminders{tasks: map[uint]reminder.Task{}}
}

func (r *Reminders) Upsert(_ context.Context, appointmentID uint, fireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[appointmentID] = reminder.Task{
		AppointmentID: appointmentID,
		FireAt:        fireAt.UTC(),
		Status:        reminder.StatusPending,
	}
	return nil
}

func (r *Reminders) EnsurePending(_ context.Context, appointmentID uint, fireAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[appointmentID]; ok {
		return false, nil
	}
	r.tasks[appointmentID] = reminder.Task{
		AppointmentID: appointmentID,
		FireAt:        fireAt.UTC(),
		Status:        reminder.StatusPending,
	}
	return true, nil
}

func (r *Reminders) Cancel(_ context.Context, appointmentID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[appointmentID]
	if !ok || t.Status != reminder.StatusPending {
		return false, nil
	}
	t.Status = reminder.StatusCancelled
	r.tasks[appointmentID] = t
	return true, nil
}

func (r *Reminders) Claim(_ context.Context, appointmentID uint, fireAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[appointmentID]
	if !ok || t.Status != reminder.StatusPending || !t.FireAt.Equal(fireAt) {
		return false, nil
	}
	t.Status = reminder.StatusSending
	r.tasks[appointmentID] = t
	return true, nil
}

func (r *Reminders) Finish(_ context.Context, appointmentID uint, fireAt time.Time, status reminder.Status, detail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[appointmentID]
	if !ok || t.Status != reminder.StatusSending || !t.FireAt.Equal(fireAt) {
		return nil
	}
	t.Status = status
	t.Detail = detail
	r.tasks[appointmentID] = t
	return nil
}

func (r *Reminders) ListPending(_ context.Context, before time.Time) ([]reminder.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []reminder.Task
	for _, t := range r.tasks {
		if t.Status == reminder.StatusPending && t.FireAt.Before(before) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

func (r *Reminders) Get(_ context.Context, appointmentID uint) (*reminder.Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[appointmentID]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

var _ reminder.Store = (*Reminders)(nil)
