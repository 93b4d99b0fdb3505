package memstore

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type Resources struct {
	s *Store
}

func (s *Store) Resources() *Resources {
	return &Resources{s: s}
}

func (r *Resources) GetStaff(ctx context.Context, id uint) (*models.Staff, error) {
	var out *models.Staff
	err := r.s.with(ctx, func(st *state) error {
		m, ok := st.staff[id]
		if !ok {
			return httperr.ErrNotFound("staff")
		}
		m.Person = st.persons[m.PersonID]
		out = &m
		return nil
	})
	return out, err
}

func (r *Resources) GetStaffForUpdate(ctx context.Context, id uint) (*models.Staff, error) {
	return r.GetStaff(ctx, id)
}

func (r *Resources) SetStaffWorkstation(ctx context.Context, staffID uint, workstationID *uint) error {
	return r.s.with(ctx, func(st *state) error {
		m, ok := st.staff[staffID]
		if !ok {
			return httperr.ErrNotFound("staff")
		}
		if workstationID != nil {
			for id, other := range st.staff {
				if id != staffID && other.WorkstationID != nil && *other.WorkstationID == *workstationID {
					return httperr.ErrAlreadyOccupied()
				}
			}
			wsID := *workstationID
			workstationID = &wsID
		}
		m.WorkstationID = workstationID
		m.UpdatedAt = r.s.now()
		st.staff[staffID] = m
		return nil
	})
}

func (r *Resources) SetStaffActive(ctx context.Context, staffID uint, active bool) error {
	return r.s.with(ctx, func(st *state) error {
		m, ok := st.staff[staffID]
		if !ok {
			return httperr.ErrNotFound("staff")
		}
		m.Active = active
		m.UpdatedAt = r.s.now()
		st.staff[staffID] = m
		return nil
	})
}

func (r *Resources) GetWorkstation(ctx context.Context, id uint) (*models.Workstation, error) {
	var out *models.Workstation
	err := r.s.with(ctx, func(st *state) error {
		ws, ok := st.workstations[id]
		if !ok {
			return httperr.ErrNotFound("workstation")
		}
		out = &ws
		return nil
	})
	return out, err
}

func (r *Resources) GetWorkstationForUpdate(ctx context.Context, id uint) (*models.Workstation, error) {
	return r.GetWorkstation(ctx, id)
}

func (r *Resources) ListWorkstations(ctx context.Context, locationID uint) ([]models.Workstation, error) {
	var out []models.Workstation
	err := r.s.with(ctx, func(st *state) error {
		for _, ws := range st.workstations {
			if ws.LocationID == locationID {
				out = append(out, ws)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *Resources) CreateWorkstation(ctx context.Context, ws *models.Workstation) error {
	return r.s.with(ctx, func(st *state) error {
		for _, other := range st.workstations {
			if other.LocationID == ws.LocationID && other.Name == ws.Name {
				return httperr.ErrBusiness("workstation_name_taken")
			}
		}
		now := r.s.now()
		ws.ID = st.nextID()
		ws.CreatedAt = now
		ws.UpdatedAt = now
		st.workstations[ws.ID] = *ws
		return nil
	})
}

func (r *Resources) OccupyWorkstation(ctx context.Context, workstationID, staffID uint) (bool, error) {
	var ok bool
	err := r.s.with(ctx, func(st *state) error {
		ws, found := st.workstations[workstationID]
		if !found {
			return nil
		}
		if ws.StaffID != nil && *ws.StaffID != staffID {
			return nil
		}
		for id, other := range st.workstations {
			if id != workstationID && other.StaffID != nil && *other.StaffID == staffID {
				return nil
			}
		}
		id := staffID
		ws.StaffID = &id
		ws.UpdatedAt = r.s.now()
		st.workstations[workstationID] = ws
		ok = true
		return nil
	})
	return ok, err
}

func (r *Resources) VacateWorkstation(ctx context.Context, workstationID, staffID uint) error {
	return r.s.with(ctx, func(st *state) error {
		ws, ok := st.workstations[workstationID]
		if !ok || ws.StaffID == nil || *ws.StaffID != staffID {
			return nil
		}
		ws.StaffID = nil
		ws.UpdatedAt = r.s.now()
		st.workstations[workstationID] = ws
		return nil
	})
}

func (r *Resources) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	var out *models.Location
	err := r.s.with(ctx, func(st *state) error {
		l, ok := st.locations[id]
		if !ok {
			return httperr.ErrNotFound("location")
		}
		out = &l
		return nil
	})
	return out, err
}

var _ resource.Repository = (*Resources)(nil)
