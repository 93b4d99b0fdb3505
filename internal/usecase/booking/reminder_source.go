package booking

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
)

// ReminderSource feeds the reminder scheduler from appointment storage.
// It reads everything at call time, so a reminder reflects edits made
// after booking.
type ReminderSource struct {
	repo  domain.Repository
	clock *domain.TurnClock
	lead  time.Duration
}

func NewReminderSource(repo domain.Repository, clock *domain.TurnClock, lead time.Duration) *ReminderSource {
	return &ReminderSource{repo: repo, clock: clock, lead: lead}
}

func (s *ReminderSource) ResolveReminder(ctx context.Context, appointmentID uint) (*reminder.Details, error) {
	ap, err := s.repo.GetDetails(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ap.Services))
	for _, svc := range ap.Services {
		names = append(names, svc.Service.Name)
	}

	return &reminder.Details{
		AppointmentID: ap.ID,
		Status:        ap.Status,
		StartsAt:      s.clock.StartOf(ap.Date, ap.Turn),
		ClientName:    ap.Client.Name,
		ClientEmail:   ap.Client.Email,
		ClientPhone:   ap.Client.Phone,
		StaffName:     ap.Staff.Person.Name,
		LocationName:  ap.Location.Name,
		ServiceNames:  names,
	}, nil
}

// UpcomingReminders maps every pending or confirmed appointment that has
// not started yet to its reminder fire time.
func (s *ReminderSource) UpcomingReminders(ctx context.Context, from time.Time) (map[uint]time.Time, error) {
	apps, err := s.repo.ListActiveFrom(ctx, s.clock.Today(from))
	if err != nil {
		return nil, err
	}

	out := make(map[uint]time.Time, len(apps))
	for _, ap := range apps {
		start := s.clock.StartOf(ap.Date, ap.Turn)
		if !start.After(from) {
			continue
		}
		out[ap.ID] = start.Add(-s.lead)
	}
	return out, nil
}

var (
	_ reminder.Resolver = (*ReminderSource)(nil)
	_ reminder.Source   = (*ReminderSource)(nil)
)
