package reminder

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Task is the durable record of one appointment reminder.
type Task struct {
	AppointmentID uint
	FireAt        time.Time
	Status        Status
	Detail        string
}

// Store persists reminder tasks. Claim and Cancel are compare-and-swap
// operations on a pending task, so exactly one of them wins a race.
type Store interface {
	// Upsert (re)arms a task as pending at fireAt.
	Upsert(ctx context.Context, appointmentID uint, fireAt time.Time) error

	// EnsurePending creates a pending task only if none exists.
	EnsurePending(ctx context.Context, appointmentID uint, fireAt time.Time) (bool, error)

	Cancel(ctx context.Context, appointmentID uint) (bool, error)

	// Claim moves a pending task scheduled for fireAt to sending.
	Claim(ctx context.Context, appointmentID uint, fireAt time.Time) (bool, error)

	// Finish records the outcome of a claimed task.
	Finish(ctx context.Context, appointmentID uint, fireAt time.Time, status Status, detail string) error

	// ListPending returns pending tasks due before the given instant.
	ListPending(ctx context.Context, before time.Time) ([]Task, error)

	Get(ctx context.Context, appointmentID uint) (*Task, bool, error)
}

// ===============================
// Notification
// ===============================

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type Message struct {
	Channel   Channel           `json:"channel"`
	Target    string            `json:"target"`
	Template  string            `json:"template,omitempty"`
	Message   string            `json:"message,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NotificationPort delivers a message through an external provider. Retry
// policy, if any, lives behind this port.
type NotificationPort interface {
	Send(ctx context.Context, msg Message) Result
}

// ===============================
// Fire-time resolution
// ===============================

// Details is everything a reminder needs, read when the reminder fires.
type Details struct {
	AppointmentID uint
	Status        string
	StartsAt      time.Time
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	StaffName     string
	LocationName  string
	ServiceNames  []string
}

type Resolver interface {
	ResolveReminder(ctx context.Context, appointmentID uint) (*Details, error)
}

// Source lists the appointments whose reminders must exist, used to rebuild
// the task store after a restart.
type Source interface {
	UpcomingReminders(ctx context.Context, from time.Time) (map[uint]time.Time, error)
}
