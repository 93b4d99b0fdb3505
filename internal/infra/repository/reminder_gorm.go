package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// ReminderGormStore keeps reminder tasks in the reminders table.
type ReminderGormStore struct {
	db *gorm.DB
}

func NewReminderGormStore(db *gorm.DB) *ReminderGormStore {
	return &ReminderGormStore{db: db}
}

func (s *ReminderGormStore) Upsert(ctx context.Context, appointmentID uint, fireAt time.Time) error {
	rec := models.Reminder{
		AppointmentID: appointmentID,
		FireAt:        fireAt.UTC(),
		Status:        string(reminder.StatusPending),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "appointment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fire_at", "status", "detail", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	return nil
}

func (s *ReminderGormStore) EnsurePending(ctx context.Context, appointmentID uint, fireAt time.Time) (bool, error) {
	rec := models.Reminder{
		AppointmentID: appointmentID,
		FireAt:        fireAt.UTC(),
		Status:        string(reminder.StatusPending),
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec)
	if res.Error != nil {
		return false, fmt.Errorf("ensure reminder: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *ReminderGormStore) Cancel(ctx context.Context, appointmentID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("appointment_id = ? AND status = ?", appointmentID, reminder.StatusPending).
		Update("status", string(reminder.StatusCancelled))
	if res.Error != nil {
		return false, fmt.Errorf("cancel reminder: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *ReminderGormStore) Claim(ctx context.Context, appointmentID uint, fireAt time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where(
			"appointment_id = ? AND status = ? AND fire_at = ?",
			appointmentID, reminder.StatusPending, fireAt.UTC(),
		).
		Updates(map[string]any{
			"status":   string(reminder.StatusSending),
			"attempts": gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return false, fmt.Errorf("claim reminder: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *ReminderGormStore) Finish(ctx context.Context, appointmentID uint, fireAt time.Time, status reminder.Status, detail string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where(
			"appointment_id = ? AND status = ? AND fire_at = ?",
			appointmentID, reminder.StatusSending, fireAt.UTC(),
		).
		Updates(map[string]any{
			"status": string(status),
			"detail": truncate(detail, 255),
		}).Error
	if err != nil {
		return fmt.Errorf("finish reminder: %w", err)
	}
	return nil
}

func (s *ReminderGormStore) ListPending(ctx context.Context, before time.Time) ([]reminder.Task, error) {
	var recs []models.Reminder
	if err := s.db.WithContext(ctx).
		Where("status = ? AND fire_at < ?", reminder.StatusPending, before.UTC()).
		Order("fire_at ASC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}

	out := make([]reminder.Task, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTask(rec))
	}
	return out, nil
}

func (s *ReminderGormStore) Get(ctx context.Context, appointmentID uint) (*reminder.Task, bool, error) {
	var rec models.Reminder
	err := s.db.WithContext(ctx).First(&rec, "appointment_id = ?", appointmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get reminder: %w", err)
	}
	t := toTask(rec)
	return &t, true, nil
}

func toTask(rec models.Reminder) reminder.Task {
	return reminder.Task{
		AppointmentID: rec.AppointmentID,
		FireAt:        rec.FireAt.UTC(),
		Status:        reminder.Status(rec.Status),
		Detail:        rec.Detail,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ reminder.Store = (*ReminderGormStore)(nil)
