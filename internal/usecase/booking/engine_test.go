package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/slots"
)

// ======================================================
// Fixture
// ======================================================

type registrarCall struct {
	op     string
	id     uint
	fireAt time.Time
}

type fakeRegistrar struct {
	mu    sync.Mutex
	calls []registrarCall
}

func (f *fakeRegistrar) add(c registrarCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeRegistrar) Schedule(_ context.Context, id uint, fireAt time.Time) error {
	return f.add(registrarCall{"schedule", id, fireAt})
}

func (f *fakeRegistrar) Cancel(_ context.Context, id uint) error {
	return f.add(registrarCall{"cancel", id, time.Time{}})
}

func (f *fakeRegistrar) Reschedule(_ context.Context, id uint, fireAt time.Time) error {
	return f.add(registrarCall{"reschedule", id, fireAt})
}

func (f *fakeRegistrar) last() registrarCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fixture struct {
	store     *memstore.Store
	engine    *Engine
	directory *resource.Directory
	reminders *fakeRegistrar
	metrics   *metrics.Metrics
	clock     *domain.TurnClock

	loc     models.Location
	w1, w2  models.Workstation
	s1, s2  models.Staff
	client  models.Person
	haircut models.Service
	beard   models.Service
}

var (
	june1 = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	now   = time.Date(2025, 5, 31, 8, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) *fixture {
	t.Helper()

	clock, err := domain.NewTurnClock("08:00", 40, 15, time.UTC)
	require.NoError(t, err)

	store := memstore.New()
	f := &fixture{store: store, reminders: &fakeRegistrar{}, metrics: metrics.New("test"), clock: clock}

	f.loc = store.AddLocation(models.Location{Name: "Centro"})
	f.w1 = store.AddWorkstation(models.Workstation{LocationID: f.loc.ID, Name: "P1", Active: true})
	f.w2 = store.AddWorkstation(models.Workstation{LocationID: f.loc.ID, Name: "P2", Active: true})

	p1 := store.AddPerson(models.Person{Name: "Carlos"})
	p2 := store.AddPerson(models.Person{Name: "Luis"})
	f.s1 = store.AddStaff(models.Staff{PersonID: p1.ID, LocationID: f.loc.ID, WorkstationID: &f.w1.ID, Active: true})
	f.s2 = store.AddStaff(models.Staff{PersonID: p2.ID, LocationID: f.loc.ID, Active: true})

	f.client = store.AddPerson(models.Person{Name: "Ana", Email: "ana@example.com", Phone: "+573001234567"})
	f.haircut = store.AddService(models.Service{Name: "Corte", Active: true})
	f.beard = store.AddService(models.Service{Name: "Barba", Active: true})

	f.engine = NewEngine(Deps{
		Tx:           store,
		Appointments: store.Appointments(),
		Catalog:      store.Appointments(),
		Resources:    store.Resources(),
		Slots:        slots.NewIndex(store.Slots(), clock),
		Reminders:    f.reminders,
		Clock:        clock,
		ReminderLead: 80 * time.Minute,
		Metrics:      f.metrics,
		Logger:       logger.Nop(),
		Now:          func() time.Time { return now },
	})
	f.directory = resource.NewDirectory(store.Resources(), store, nil, logger.Nop())
	return f
}

func (f *fixture) input(staff models.Staff, ws models.Workstation, turn int) CreateInput {
	return CreateInput{
		ClientID:      f.client.ID,
		StaffID:       staff.ID,
		ServiceIDs:    []uint{f.haircut.ID},
		LocationID:    f.loc.ID,
		WorkstationID: ws.ID,
		Date:          june1,
		Turn:          turn,
	}
}

func (f *fixture) assign(t *testing.T, staff models.Staff, ws models.Workstation) {
	t.Helper()
	_, err := f.directory.AssignWorkstation(context.Background(), staff.ID, ws.ID)
	require.NoError(t, err)
}

func isConflict(err error) bool {
	return httperr.IsKind(err, httperr.KindSlotConflict)
}

// ======================================================
// Create
// ======================================================

func TestBookingScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), first.Status)

	// S1 moves to W2: same staff, same turn, different workstation.
	f.assign(t, f.s1, f.w2)
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w2, 3))
	assert.True(t, isConflict(err), "got %v", err)

	_, err = f.engine.Create(ctx, f.input(f.s1, f.w2, 4))
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, first.ID, "")
	require.NoError(t, err)

	_, err = f.engine.Create(ctx, f.input(f.s1, f.w2, 3))
	require.NoError(t, err)
}

func TestWorkstationAxisConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	f.assign(t, f.s1, f.w2)
	f.assign(t, f.s2, f.w1)

	_, err = f.engine.Create(ctx, f.input(f.s2, f.w1, 3))
	assert.True(t, isConflict(err), "got %v", err)

	_, err = f.engine.Create(ctx, f.input(f.s2, f.w1, 5))
	require.NoError(t, err)
}

func TestConcurrentCreateHasOneWinner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	const n = 12
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.engine.Create(ctx, f.input(f.s1, f.w1, 7))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, isConflict(err), "got %v", err)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 2, f.store.SlotCount())
}

func TestCreateCountsOutcomeByKind(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.Error(t, err)
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w2, 4))
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Bookings.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Bookings.WithLabelValues("slot_conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Bookings.WithLabelValues("validation")))
}

func TestCreatePreconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inactive := f.store.AddService(models.Service{Name: "Tinte", Active: false})
	other := f.store.AddLocation(models.Location{Name: "Norte"})

	tests := []struct {
		name   string
		mutate func(in *CreateInput)
		code   string
	}{
		{"no services", func(in *CreateInput) { in.ServiceIDs = nil }, "services_required"},
		{"unknown service", func(in *CreateInput) { in.ServiceIDs = []uint{9999} }, "service_not_found"},
		{"inactive service", func(in *CreateInput) { in.ServiceIDs = []uint{inactive.ID} }, "service_inactive"},
		{"unknown client", func(in *CreateInput) { in.ClientID = 9999 }, "client_not_found"},
		{"turn too high", func(in *CreateInput) { in.Turn = 15 }, "invalid_turn"},
		{"negative turn", func(in *CreateInput) { in.Turn = -1 }, "invalid_turn"},
		{"past slot", func(in *CreateInput) { in.Date = now.AddDate(0, 0, -1) }, "slot_in_past"},
		{"staff not at workstation", func(in *CreateInput) { in.WorkstationID = f.w2.ID }, "staff_not_at_workstation"},
		{"staff at other location", func(in *CreateInput) { in.LocationID = other.ID }, "staff_other_location"},
		{"unknown location", func(in *CreateInput) { in.LocationID = 9999 }, "location_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input(f.s1, f.w1, 3)
			tt.mutate(&in)
			_, err := f.engine.Create(ctx, in)
			assert.True(t, httperr.IsBusiness(err, tt.code), "got %v", err)
		})
	}
	assert.Zero(t, f.store.SlotCount())
}

func TestCreateRejectsInactiveStaff(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.directory.DeactivateStaff(ctx, f.s1.ID)
	require.NoError(t, err)

	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	assert.True(t, httperr.IsBusiness(err, "staff_inactive"), "got %v", err)
}

func TestCreateSchedulesReminderAtLeadTime(t *testing.T) {
	f := setup(t)

	ap, err := f.engine.Create(context.Background(), f.input(f.s1, f.w1, 5))
	require.NoError(t, err)

	call := f.reminders.last()
	assert.Equal(t, "schedule", call.op)
	assert.Equal(t, ap.ID, call.id)
	// Turn 5 starts at 11:20; the reminder goes 80 minutes earlier.
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), call.fireAt)
}

func TestCreateKeepsServiceOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	in := f.input(f.s1, f.w1, 2)
	in.ServiceIDs = []uint{f.beard.ID, f.haircut.ID}
	ap, err := f.engine.Create(ctx, in)
	require.NoError(t, err)

	got, err := f.engine.Get(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.beard.ID, f.haircut.ID}, got.ServiceIDs())
	assert.Equal(t, "Barba", got.Services[0].Service.Name)
}

// ======================================================
// Cancel
// ======================================================

func TestCancelIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	first, err := f.engine.Cancel(ctx, ap.ID, "cliente enfermo")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), first.Status)
	assert.Equal(t, "cancel", f.reminders.last().op)

	calls := len(f.reminders.calls)
	second, err := f.engine.Cancel(ctx, ap.ID, "otra vez")
	require.NoError(t, err)
	assert.Equal(t, "cliente enfermo", second.CancellationReason)
	assert.Len(t, f.reminders.calls, calls)
	assert.Zero(t, f.store.SlotCount())
}

func TestCancelRejectedAfterCompletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	_, err = f.engine.Confirm(ctx, ap.ID)
	require.NoError(t, err)
	_, err = f.engine.Complete(ctx, ap.ID)
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, ap.ID, "")
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))
	assert.Equal(t, 2, f.store.SlotCount())
}

func TestCreateCancelCreateReusesSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	_, err = f.engine.Cancel(ctx, ap.ID, "")
	require.NoError(t, err)

	again, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	assert.NotEqual(t, ap.ID, again.ID)
}

func TestCancelUpcomingForStaff(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	b, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 4))
	require.NoError(t, err)
	done, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 5))
	require.NoError(t, err)
	_, err = f.engine.Confirm(ctx, done.ID)
	require.NoError(t, err)
	_, err = f.engine.Complete(ctx, done.ID)
	require.NoError(t, err)

	_, err = f.directory.DeactivateStaff(ctx, f.s1.ID)
	require.NoError(t, err)

	// Deactivation alone leaves the bookings in place.
	still, err := f.engine.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), still.Status)

	ids, err := f.engine.CancelUpcomingForStaff(ctx, f.s1.ID, june1, "peluquero inactivo")
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, ids)

	kept, err := f.engine.Get(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), kept.Status)
}

// ======================================================
// Lifecycle
// ======================================================

func TestLifecycleAndFinalizeRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	_, err = f.engine.Finalize(ctx, ap.ID, f.s1.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition), "pending cannot finalize")

	_, err = f.engine.Complete(ctx, ap.ID)
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition), "pending cannot complete")

	confirmed, err := f.engine.Confirm(ctx, ap.ID)
	require.NoError(t, err)
	assert.NotNil(t, confirmed.ConfirmedAt)

	_, err = f.engine.Finalize(ctx, ap.ID, f.s2.ID)
	assert.True(t, httperr.IsBusiness(err, "not_assigned_staff"))

	final, err := f.engine.Finalize(ctx, ap.ID, f.s1.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusFinalized), final.Status)

	_, err = f.engine.Cancel(ctx, ap.ID, "")
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))

	// Finalized appointments keep their slot.
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	assert.True(t, isConflict(err))
}

func TestConfirmRacingCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); _, errs[0] = f.engine.Confirm(ctx, ap.ID) }()
	go func() { defer wg.Done(); _, errs[1] = f.engine.Cancel(ctx, ap.ID, "") }()
	wg.Wait()

	got, err := f.engine.Get(ctx, ap.ID)
	require.NoError(t, err)
	switch {
	case errs[0] == nil && errs[1] == nil:
		// Confirm then cancel.
		assert.Equal(t, string(domain.StatusCancelled), got.Status)
	case errs[0] != nil:
		assert.True(t, httperr.IsKind(errs[0], httperr.KindInvalidTransition))
		assert.Equal(t, string(domain.StatusCancelled), got.Status)
	default:
		t.Fatalf("cancel failed: %v", errs[1])
	}
}

// ======================================================
// Update
// ======================================================

func TestUpdateMovesSlotAndReschedules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	turn := 6
	updated, err := f.engine.Update(ctx, ap.ID, UpdateInput{Turn: &turn})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Turn)

	call := f.reminders.last()
	assert.Equal(t, "reschedule", call.op)
	assert.Equal(t, f.clock.StartOf(june1, 6).Add(-80*time.Minute), call.fireAt)

	// Turn 3 is free again, turn 6 is held.
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 6))
	assert.True(t, isConflict(err))
}

func TestUpdateConflictChangesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 4))
	require.NoError(t, err)

	turn := 4
	notes := "cambio"
	_, err = f.engine.Update(ctx, ap.ID, UpdateInput{Turn: &turn, Notes: &notes})
	assert.True(t, isConflict(err))

	got, err := f.engine.Get(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Turn)
	assert.Empty(t, got.Notes)
	assert.Equal(t, 4, f.store.SlotCount())

	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	assert.True(t, isConflict(err), "old slot must stay reserved")
}

func TestUpdateReassignsStaff(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	f.assign(t, f.s2, f.w2)
	updated, err := f.engine.Update(ctx, ap.ID, UpdateInput{StaffID: &f.s2.ID, WorkstationID: &f.w2.ID})
	require.NoError(t, err)
	assert.Equal(t, f.s2.ID, updated.StaffID)

	calls := len(f.reminders.calls)
	assert.Equal(t, "schedule", f.reminders.calls[calls-1].op, "no reschedule when time is unchanged")

	_, err = f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
}

func TestUpdateTimeRechecksStaffAssignment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)
	other, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 5))
	require.NoError(t, err)

	require.NoError(t, f.directory.ReleaseWorkstation(ctx, f.w1.ID))

	turn := 8
	_, err = f.engine.Update(ctx, other.ID, UpdateInput{Turn: &turn})
	assert.True(t, httperr.IsBusiness(err, "staff_not_at_workstation"), "got %v", err)

	_, err = f.directory.DeactivateStaff(ctx, f.s1.ID)
	require.NoError(t, err)

	turn = 7
	_, err = f.engine.Update(ctx, ap.ID, UpdateInput{Turn: &turn})
	assert.True(t, httperr.IsBusiness(err, "staff_inactive"), "got %v", err)

	got, err := f.engine.Get(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Turn)
	assert.Equal(t, 4, f.store.SlotCount())

	// Edits that keep the slot are still allowed.
	notes := "llega tarde"
	updated, err := f.engine.Update(ctx, ap.ID, UpdateInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
}

func TestFinalizeRacingReassignment(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := setup(t)
		ctx := context.Background()

		ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
		require.NoError(t, err)
		_, err = f.engine.Confirm(ctx, ap.ID)
		require.NoError(t, err)
		f.assign(t, f.s2, f.w2)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.engine.Finalize(ctx, ap.ID, f.s1.ID)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.engine.Update(ctx, ap.ID, UpdateInput{StaffID: &f.s2.ID, WorkstationID: &f.w2.ID})
		}()
		wg.Wait()

		got, err := f.engine.Get(ctx, ap.ID)
		require.NoError(t, err)

		if errs[0] == nil {
			assert.Equal(t, string(domain.StatusFinalized), got.Status)
			assert.Equal(t, f.s1.ID, got.StaffID, "finalized by someone no longer assigned")
			assert.True(t, httperr.IsKind(errs[1], httperr.KindInvalidTransition), "got %v", errs[1])
		} else {
			assert.True(t, httperr.IsBusiness(errs[0], "not_assigned_staff"), "got %v", errs[0])
			require.NoError(t, errs[1])
			assert.Equal(t, f.s2.ID, got.StaffID)
			assert.Equal(t, string(domain.StatusConfirmed), got.Status)
		}
	}
}

func TestUpdateRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 3))
	require.NoError(t, err)

	_, err = f.engine.Update(ctx, ap.ID, UpdateInput{StaffID: &f.s2.ID})
	assert.True(t, httperr.IsBusiness(err, "staff_not_at_workstation"), "got %v", err)

	_, err = f.engine.Update(ctx, ap.ID, UpdateInput{ServiceIDs: []uint{}})
	assert.True(t, httperr.IsBusiness(err, "services_required"), "got %v", err)

	_, err = f.engine.Cancel(ctx, ap.ID, "")
	require.NoError(t, err)

	notes := "x"
	_, err = f.engine.Update(ctx, ap.ID, UpdateInput{Notes: &notes})
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))

	_, err = f.engine.Update(ctx, 9999, UpdateInput{Notes: &notes})
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
}

// ======================================================
// Invariant
// ======================================================

func TestNoDoubleBookingAcrossMixedOperations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.assign(t, f.s2, f.w2)

	pairs := []struct {
		staff models.Staff
		ws    models.Workstation
	}{{f.s1, f.w1}, {f.s2, f.w2}}

	var created []uint
	for round := 0; round < 3; round++ {
		for turn := 0; turn < 15; turn++ {
			for _, p := range pairs {
				ap, err := f.engine.Create(ctx, f.input(p.staff, p.ws, turn))
				if err == nil {
					created = append(created, ap.ID)
				}
			}
		}
		if round == 2 {
			break
		}
		// Cancel every other booking and fill the gaps again.
		for i, id := range created {
			if i%2 == 0 {
				_, err := f.engine.Cancel(ctx, id, "")
				require.NoError(t, err)
			}
		}
	}

	type key struct {
		res  uint
		turn int
	}
	staffSeen := map[key]uint{}
	wsSeen := map[key]uint{}
	for _, p := range pairs {
		apps, err := f.engine.ListForStaffDay(ctx, p.staff.ID, june1)
		require.NoError(t, err)
		for _, ap := range apps {
			if ap.Status == string(domain.StatusCancelled) {
				continue
			}
			sk := key{ap.StaffID, ap.Turn}
			wk := key{ap.WorkstationID, ap.Turn}
			assert.NotContains(t, staffSeen, sk)
			assert.NotContains(t, wsSeen, wk)
			staffSeen[sk] = ap.ID
			wsSeen[wk] = ap.ID
		}
	}
	assert.Len(t, staffSeen, 30)
}

// ======================================================
// Reminder source
// ======================================================

func TestReminderSourceResolvesAtCallTime(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	src := NewReminderSource(f.store.Appointments(), f.clock, 80*time.Minute)

	ap, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 5))
	require.NoError(t, err)

	turn := 6
	_, err = f.engine.Update(ctx, ap.ID, UpdateInput{Turn: &turn, ServiceIDs: []uint{f.haircut.ID, f.beard.ID}})
	require.NoError(t, err)

	d, err := src.ResolveReminder(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", d.ClientName)
	assert.Equal(t, "ana@example.com", d.ClientEmail)
	assert.Equal(t, "Carlos", d.StaffName)
	assert.Equal(t, "Centro", d.LocationName)
	assert.Equal(t, []string{"Corte", "Barba"}, d.ServiceNames)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), d.StartsAt)
}

func TestReminderSourceListsOnlyUpcomingActive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	src := NewReminderSource(f.store.Appointments(), f.clock, 80*time.Minute)

	keep, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 5))
	require.NoError(t, err)
	drop, err := f.engine.Create(ctx, f.input(f.s1, f.w1, 6))
	require.NoError(t, err)
	_, err = f.engine.Cancel(ctx, drop.ID, "")
	require.NoError(t, err)

	got, err := src.UpcomingReminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, map[uint]time.Time{
		keep.ID: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}, got)

	// Once the appointment has started there is nothing to remind.
	later, err := src.UpcomingReminders(ctx, time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, later)
}
