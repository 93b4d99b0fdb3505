// Package notify holds the NotificationPort adapters.
package notify

import (
	"context"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

// LogNotifier only records the message. Used locally and when no provider
// is configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithModule("LogNotifier")}
}

func (n *LogNotifier) Send(_ context.Context, msg reminder.Message) reminder.Result {
	n.log.Info("notification.send", logger.Fields{
		"channel":  msg.Channel,
		"target":   msg.Target,
		"template": msg.Template,
	})
	return reminder.Result{Success: true}
}

var _ reminder.NotificationPort = (*LogNotifier)(nil)
