package slots

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// Index answers whether a staff member or a workstation is free at a
// (date, turn), and holds both keys for an appointment. Uniqueness is
// enforced by the repository's storage; Index never checks-then-writes.
type Index struct {
	repo  domain.SlotRepository
	clock *domain.TurnClock
}

func NewIndex(repo domain.SlotRepository, clock *domain.TurnClock) *Index {
	return &Index{repo: repo, clock: clock}
}

// Reserve holds the staff and workstation keys of slot, or neither. A held
// key fails with SlotConflict.
func (ix *Index) Reserve(ctx context.Context, appointmentID uint, slot domain.Slot) error {
	return ix.repo.Insert(ctx, appointmentID, []domain.SlotKey{
		slot.StaffKey(),
		slot.WorkstationKey(),
	})
}

// Release is idempotent.
func (ix *Index) Release(ctx context.Context, slot domain.Slot) error {
	return ix.repo.Delete(ctx, []domain.SlotKey{
		slot.StaffKey(),
		slot.WorkstationKey(),
	})
}

// Move reserves the keys of to that differ from from, then releases the
// ones no longer used. A failed reserve leaves from untouched. Callers run
// it inside a transaction so the release commits with the reserve.
func (ix *Index) Move(ctx context.Context, appointmentID uint, from, to domain.Slot) error {
	var add, drop []domain.SlotKey

	if !from.SameStaffKey(to) {
		add = append(add, to.StaffKey())
		drop = append(drop, from.StaffKey())
	}
	if !from.SameWorkstationKey(to) {
		add = append(add, to.WorkstationKey())
		drop = append(drop, from.WorkstationKey())
	}
	if len(add) == 0 {
		return nil
	}

	if err := ix.repo.Insert(ctx, appointmentID, add); err != nil {
		return err
	}
	return ix.repo.Delete(ctx, drop)
}

func (ix *Index) IsStaffFree(ctx context.Context, staffID uint, date time.Time, turn int) (bool, error) {
	held, err := ix.repo.Exists(ctx, domain.SlotKey{
		Kind:       models.SlotKindStaff,
		ResourceID: staffID,
		Date:       domain.Day(date),
		Turn:       turn,
	})
	return !held, err
}

func (ix *Index) IsWorkstationFree(ctx context.Context, workstationID uint, date time.Time, turn int) (bool, error) {
	held, err := ix.repo.Exists(ctx, domain.SlotKey{
		Kind:       models.SlotKindWorkstation,
		ResourceID: workstationID,
		Date:       domain.Day(date),
		Turn:       turn,
	})
	return !held, err
}

// FreeTurn is a bookable turn and its wall-clock start.
type FreeTurn struct {
	Turn     int       `json:"turn"`
	StartsAt time.Time `json:"starts_at"`
}

// FreeTurns lists the turns of date held on neither axis. Turns that have
// already started relative to now are left out.
func (ix *Index) FreeTurns(
	ctx context.Context,
	staffID uint,
	workstationID uint,
	date time.Time,
	now time.Time,
) ([]FreeTurn, error) {

	day := domain.Day(date)

	staffHeld, err := ix.repo.HeldTurns(ctx, models.SlotKindStaff, staffID, day)
	if err != nil {
		return nil, err
	}
	wsHeld, err := ix.repo.HeldTurns(ctx, models.SlotKindWorkstation, workstationID, day)
	if err != nil {
		return nil, err
	}

	held := make(map[int]bool, len(staffHeld)+len(wsHeld))
	for _, t := range staffHeld {
		held[t] = true
	}
	for _, t := range wsHeld {
		held[t] = true
	}

	out := []FreeTurn{}
	for turn := 0; turn < ix.clock.TurnsPerDay(); turn++ {
		if held[turn] {
			continue
		}
		start := ix.clock.StartOf(day, turn)
		if start.Before(now) {
			continue
		}
		out = append(out, FreeTurn{Turn: turn, StartsAt: start})
	}
	return out, nil
}
