package memstore

import (
	"context"
	"sort"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type auditLog struct {
	s *Store
}

// AuditWriter stores audit records alongside the rest of the state.
func (s *Store) AuditWriter() audit.Writer {
	return auditLog{s: s}
}

func (s *Store) AuditReader() audit.Reader {
	return auditLog{s: s}
}

func (w auditLog) Write(ctx context.Context, rec *models.AuditLog) error {
	s := w.s
	return s.with(ctx, func(st *state) error {
		rec.ID = st.nextID()
		rec.CreatedAt = s.now()
		st.audit = append(st.audit, *rec)
		return nil
	})
}

func (w auditLog) List(ctx context.Context, f audit.Filter) ([]models.AuditLog, int64, error) {
	f = f.Normalize()

	var matched []models.AuditLog
	err := w.s.with(ctx, func(st *state) error {
		for _, rec := range st.audit {
			if f.LocationID != nil && (rec.LocationID == nil || *rec.LocationID != *f.LocationID) {
				continue
			}
			if f.Action != "" && rec.Action != f.Action {
				continue
			}
			if f.Entity != "" && rec.Entity != f.Entity {
				continue
			}
			if f.From != nil && rec.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !rec.CreatedAt.Before(*f.To) {
				continue
			}
			matched = append(matched, rec)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}
