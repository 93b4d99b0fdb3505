package appointment

import "github.com/BruksfildServices01/barbershop-booking/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusFinalized Status = "finalized"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the statuses whose slot stays reserved and whose
// reminder is still relevant.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// OpenStatuses may still be edited.
var OpenStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted}

func (s Status) IsTerminal() bool {
	return s == StatusFinalized || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusFinalized, StatusCancelled:
		return true
	}
	return false
}

// ===============================
// Transitions
// ===============================

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusFinalized, StatusCancelled},
	StatusCompleted: {StatusFinalized},
}

// Sources returns the statuses from which to is reachable.
func Sources(to Status) []Status {
	var out []Status
	for from, targets := range transitions {
		for _, t := range targets {
			if t == to {
				out = append(out, from)
			}
		}
	}
	return out
}

func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return httperr.ErrInvalidTransition()
	}
	return nil
}

func CanUpdate(current Status) error {
	if current.IsTerminal() {
		return httperr.ErrInvalidTransition()
	}
	return nil
}

// InitialStatus is the status of a freshly booked appointment.
func InitialStatus() Status {
	return StatusPending
}
