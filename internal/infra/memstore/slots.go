package memstore

import (
	"context"
	"sort"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
)

type Slots struct {
	s *Store
}

func (s *Store) Slots() *Slots {
	return &Slots{s: s}
}

func toSlotKey(k domain.SlotKey) slotKey {
	return slotKey{kind: k.Kind, resourceID: k.ResourceID, date: dateKey(k.Date), turn: k.Turn}
}

func (r *Slots) Insert(ctx context.Context, appointmentID uint, keys []domain.SlotKey) error {
	return r.s.with(ctx, func(st *state) error {
		seen := map[slotKey]bool{}
		for _, k := range keys {
			sk := toSlotKey(k)
			if _, held := st.slots[sk]; held || seen[sk] {
				return httperr.ErrSlotConflict()
			}
			seen[sk] = true
		}
		for sk := range seen {
			st.slots[sk] = appointmentID
		}
		return nil
	})
}

func (r *Slots) Delete(ctx context.Context, keys []domain.SlotKey) error {
	return r.s.with(ctx, func(st *state) error {
		for _, k := range keys {
			delete(st.slots, toSlotKey(k))
		}
		return nil
	})
}

func (r *Slots) Exists(ctx context.Context, key domain.SlotKey) (bool, error) {
	var held bool
	err := r.s.with(ctx, func(st *state) error {
		_, held = st.slots[toSlotKey(key)]
		return nil
	})
	return held, err
}

func (r *Slots) HeldTurns(ctx context.Context, kind string, resourceID uint, date time.Time) ([]int, error) {
	day := dateKey(date)
	var turns []int
	err := r.s.with(ctx, func(st *state) error {
		for k := range st.slots {
			if k.kind == kind && k.resourceID == resourceID && k.date == day {
				turns = append(turns, k.turn)
			}
		}
		return nil
	})
	sort.Ints(turns)
	return turns, err
}

var _ domain.SlotRepository = (*Slots)(nil)
