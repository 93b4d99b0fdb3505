package reminder

import (
	"context"
	"strings"
	"time"

	appointment "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

const Template = "appointment_reminder"

// fire runs on the timer goroutine.
func (s *Scheduler) fire(appointmentID uint, fireAt time.Time) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if cur, ok := s.timers[appointmentID]; ok && cur.fireAt.Equal(fireAt) {
		delete(s.timers, appointmentID)
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx := s.baseCtx
	log := s.log.With(logger.Fields{"appointmentId": appointmentID})

	claimed, err := s.store.Claim(ctx, appointmentID, fireAt)
	if err != nil {
		log.Error("reminder.claim.failed", logger.Fields{"error": err})
		return
	}
	if !claimed {
		// Cancelled, rescheduled or taken by another instance.
		return
	}

	status, detail := s.deliver(ctx, log, appointmentID)

	if err := s.store.Finish(ctx, appointmentID, fireAt, status, detail); err != nil {
		log.Error("reminder.finish.failed", logger.Fields{"error": err})
	}
	s.metrics.Reminder(outcome(status))
}

func outcome(status domain.Status) string {
	if status == domain.StatusCancelled {
		return "skipped"
	}
	return string(status)
}

// deliver resolves the appointment now, not at scheduling time, and sends
// one message per contact channel. It never touches the appointment.
func (s *Scheduler) deliver(ctx context.Context, log logger.Logger, appointmentID uint) (domain.Status, string) {
	d, err := s.resolver.ResolveReminder(ctx, appointmentID)
	if err != nil {
		log.Error("reminder.resolve.failed", logger.Fields{"error": err})
		return domain.StatusFailed, "resolve: " + err.Error()
	}

	if !isRemindable(d.Status) {
		log.Info("reminder.skipped", logger.Fields{"status": d.Status})
		return domain.StatusCancelled, "appointment " + d.Status
	}

	var targets []domain.Message
	vars := variables(d)
	if d.ClientEmail != "" {
		targets = append(targets, domain.Message{Channel: domain.ChannelEmail, Target: d.ClientEmail, Template: Template, Variables: vars})
	}
	if d.ClientPhone != "" {
		targets = append(targets, domain.Message{Channel: domain.ChannelSMS, Target: d.ClientPhone, Template: Template, Variables: vars})
	}
	if len(targets) == 0 {
		log.Warn("reminder.no_contact", nil)
		return domain.StatusFailed, "no contact"
	}

	var failures []string
	for _, msg := range targets {
		sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		res := s.notifier.Send(sendCtx, msg)
		cancel()

		if !res.Success {
			failures = append(failures, string(msg.Channel)+": "+res.Error)
			log.Error("notification_delivery_failed", logger.Fields{
				"channel": msg.Channel,
				"error":   res.Error,
			})
		}
	}

	if len(failures) > 0 {
		return domain.StatusFailed, strings.Join(failures, "; ")
	}
	log.Info("reminder.sent", logger.Fields{"channels": len(targets)})
	return domain.StatusSent, ""
}

func isRemindable(status string) bool {
	for _, s := range appointment.ActiveStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

func variables(d *domain.Details) map[string]string {
	return map[string]string{
		"clientName":   d.ClientName,
		"staffName":    d.StaffName,
		"locationName": d.LocationName,
		"services":     strings.Join(d.ServiceNames, ", "),
		"date":         d.StartsAt.Format("2006-01-02"),
		"time":         d.StartsAt.Format("15:04"),
	}
}
