package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/db"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration tests")
	}

	gdb, err := db.Open(dsn, false)
	require.NoError(t, err)

	var tables []string
	for _, m := range db.Models() {
		stmt := &gorm.Statement{DB: gdb}
		require.NoError(t, stmt.Parse(m))
		tables = append(tables, stmt.Schema.Table)
	}
	require.NoError(t, gdb.Exec("TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE").Error)

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

var day = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestSlotInsertIsAllOrNothing(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()
	repo := NewSlotGormRepository(gdb)
	tx := txmanager.NewGorm(gdb)

	slot := domain.Slot{StaffID: 1, WorkstationID: 2, Date: day, Turn: 3}
	require.NoError(t, repo.Insert(ctx, 10, []domain.SlotKey{slot.StaffKey(), slot.WorkstationKey()}))

	// Different staff, same workstation and turn.
	other := domain.Slot{StaffID: 5, WorkstationID: 2, Date: day, Turn: 3}
	err := tx.Do(ctx, func(ctx context.Context) error {
		return repo.Insert(ctx, 11, []domain.SlotKey{other.StaffKey(), other.WorkstationKey()})
	})
	assert.True(t, httperr.IsKind(err, httperr.KindSlotConflict), "got %v", err)

	held, err := repo.Exists(ctx, other.StaffKey())
	require.NoError(t, err)
	assert.False(t, held)

	turns, err := repo.HeldTurns(ctx, models.SlotKindWorkstation, 2, day)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, turns)

	require.NoError(t, repo.Delete(ctx, []domain.SlotKey{slot.StaffKey(), slot.WorkstationKey()}))
	require.NoError(t, repo.Delete(ctx, []domain.SlotKey{slot.StaffKey()}))

	held, err = repo.Exists(ctx, slot.WorkstationKey())
	require.NoError(t, err)
	assert.False(t, held)
}

func TestPaymentIsUniquePerAppointment(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()
	repo := NewPaymentGormRepository(gdb)

	first := &models.Payment{AppointmentID: 7, Reference: uuid.New(), Amount: 10, Method: "cash", Status: "pending"}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.Payment{AppointmentID: 7, Reference: uuid.New(), Amount: 20, Method: "card", Status: "pending"}
	err := repo.Create(ctx, second)
	assert.True(t, httperr.IsKind(err, httperr.KindPaymentAlreadyExists), "got %v", err)

	got, err := repo.GetByAppointment(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, httperr.IsBusiness(err, "payment_not_found"), "got %v", err)
}

func TestReminderClaimBeatsCancel(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()
	store := NewReminderGormStore(gdb)
	fireAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, 1, fireAt))

	claimed, err := store.Claim(ctx, 1, fireAt)
	require.NoError(t, err)
	assert.True(t, claimed)

	cancelled, err := store.Cancel(ctx, 1)
	require.NoError(t, err)
	assert.False(t, cancelled)

	require.NoError(t, store.Finish(ctx, 1, fireAt, reminder.StatusSent, ""))

	task, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, reminder.StatusSent, task.Status)

	created, err := store.EnsurePending(ctx, 1, fireAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestReminderStaleClaimLoses(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()
	store := NewReminderGormStore(gdb)
	fireAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, 2, fireAt))
	require.NoError(t, store.Upsert(ctx, 2, fireAt.Add(30*time.Minute)))

	claimed, err := store.Claim(ctx, 2, fireAt)
	require.NoError(t, err)
	assert.False(t, claimed)

	due, err := store.ListPending(ctx, fireAt.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.True(t, due[0].FireAt.Equal(fireAt.Add(30*time.Minute)))
}

func TestOccupyWorkstationIsExclusive(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()
	repo := NewResourceGormRepository(gdb)

	loc := models.Location{Name: "Centro"}
	require.NoError(t, gdb.Create(&loc).Error)
	p1 := models.Person{Name: "Carlos"}
	p2 := models.Person{Name: "Luis"}
	require.NoError(t, gdb.Create(&p1).Error)
	require.NoError(t, gdb.Create(&p2).Error)
	s1 := models.Staff{PersonID: p1.ID, LocationID: loc.ID, Active: true}
	s2 := models.Staff{PersonID: p2.ID, LocationID: loc.ID, Active: true}
	require.NoError(t, gdb.Create(&s1).Error)
	require.NoError(t, gdb.Create(&s2).Error)

	ws := &models.Workstation{LocationID: loc.ID, Name: "P1", Active: true}
	require.NoError(t, repo.CreateWorkstation(ctx, ws))

	dup := &models.Workstation{LocationID: loc.ID, Name: "P1", Active: true}
	err := repo.CreateWorkstation(ctx, dup)
	assert.True(t, httperr.IsBusiness(err, "workstation_name_taken"), "got %v", err)

	ok, err := repo.OccupyWorkstation(ctx, ws.ID, s1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.OccupyWorkstation(ctx, ws.ID, s2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.VacateWorkstation(ctx, ws.ID, s1.ID))

	ok, err = repo.OccupyWorkstation(ctx, ws.ID, s2.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInactiveResourcesStayInactive(t *testing.T) {
	gdb := testDB(t)
	ctx := context.Background()
	repo := NewResourceGormRepository(gdb)

	loc := models.Location{Name: "Centro"}
	require.NoError(t, gdb.Create(&loc).Error)
	p := models.Person{Name: "Carlos"}
	require.NoError(t, gdb.Create(&p).Error)

	s := models.Staff{PersonID: p.ID, LocationID: loc.ID}
	require.NoError(t, gdb.Create(&s).Error)
	ws := &models.Workstation{LocationID: loc.ID, Name: "P9"}
	require.NoError(t, repo.CreateWorkstation(ctx, ws))
	svc := models.Service{Name: "Tinte"}
	require.NoError(t, gdb.Create(&svc).Error)

	gotStaff, err := repo.GetStaff(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, gotStaff.Active)

	gotWS, err := repo.GetWorkstation(ctx, ws.ID)
	require.NoError(t, err)
	assert.False(t, gotWS.Active)

	var gotSvc models.Service
	require.NoError(t, gdb.First(&gotSvc, svc.ID).Error)
	assert.False(t, gotSvc.Active)
}
