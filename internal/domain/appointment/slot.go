package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// SlotKey is one uniqueness key: a resource of a kind, on a day, at a turn.
type SlotKey struct {
	Kind       string
	ResourceID uint
	Date       time.Time
	Turn       int
}

func (s Slot) StaffKey() SlotKey {
	return SlotKey{Kind: models.SlotKindStaff, ResourceID: s.StaffID, Date: Day(s.Date), Turn: s.Turn}
}

func (s Slot) WorkstationKey() SlotKey {
	return SlotKey{Kind: models.SlotKindWorkstation, ResourceID: s.WorkstationID, Date: Day(s.Date), Turn: s.Turn}
}

type SlotRepository interface {
	// Insert writes all keys or none. A key already held surfaces as
	// SlotConflict.
	Insert(ctx context.Context, appointmentID uint, keys []SlotKey) error

	// Delete is idempotent.
	Delete(ctx context.Context, keys []SlotKey) error

	Exists(ctx context.Context, key SlotKey) (bool, error)

	// HeldTurns lists the turns held by a resource on a day.
	HeldTurns(ctx context.Context, kind string, resourceID uint, date time.Time) ([]int, error)
}
