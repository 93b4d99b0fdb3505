package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/memstore"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memstore.Store
	linker  *Linker
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	m := metrics.New("test")
	return &fixture{
		store:   store,
		metrics: m,
		linker: NewLinker(
			store,
			store.Payments(),
			store.Appointments(),
			nil,
			m,
			logger.Nop(),
			func() time.Time { return now },
		),
	}
}

func (f *fixture) appointment(t *testing.T) *models.Appointment {
	t.Helper()
	ap := &models.Appointment{
		ClientID:      1,
		StaffID:       2,
		LocationID:    3,
		WorkstationID: 4,
		Date:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Turn:          3,
	}
	require.NoError(t, f.store.Appointments().Create(context.Background(), ap))
	return ap
}

func TestCreatePaymentLinksAppointment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ap := f.appointment(t)

	p, err := f.linker.CreatePayment(ctx, CreateInput{
		AppointmentID: ap.ID,
		Amount:        25000,
		Method:        "cash",
		Notes:         "  propina incluida ",
	})
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.NotEqual(t, uuid.Nil, p.Reference)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "propina incluida", p.Notes)
	assert.Nil(t, p.PaidAt)

	got, err := f.store.Appointments().GetByID(ctx, ap.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, p.ID, *got.PaymentID)

	byAp, err := f.linker.GetByAppointment(ctx, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byAp.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Payments.WithLabelValues("created")))
}

func TestCreatePaidPaymentStampsPaidAt(t *testing.T) {
	f := setup(t)
	ap := f.appointment(t)

	p, err := f.linker.CreatePayment(context.Background(), CreateInput{
		AppointmentID: ap.ID,
		Amount:        18000,
		Method:        "card",
		Status:        "paid",
	})
	require.NoError(t, err)
	require.NotNil(t, p.PaidAt)
	assert.True(t, p.PaidAt.Equal(now))
}

func TestSecondPaymentIsRejected(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ap := f.appointment(t)

	_, err := f.linker.CreatePayment(ctx, CreateInput{AppointmentID: ap.ID, Amount: 10, Method: "cash"})
	require.NoError(t, err)

	_, err = f.linker.CreatePayment(ctx, CreateInput{AppointmentID: ap.ID, Amount: 10, Method: "card"})
	assert.True(t, httperr.IsKind(err, httperr.KindPaymentAlreadyExists), "got %v", err)
}

func TestConcurrentPaymentsHaveOneWinner(t *testing.T) {
	f := setup(t)
	ap := f.appointment(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.linker.CreatePayment(context.Background(), CreateInput{
				AppointmentID: ap.ID,
				Amount:        float64(1000 + i),
				Method:        "transfer",
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, httperr.IsKind(err, httperr.KindPaymentAlreadyExists), "got %v", err)
	}
	assert.Equal(t, 1, ok)
}

func TestCreatePaymentPreconditions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ap := f.appointment(t)

	cancelled := f.appointment(t)
	changed, err := f.store.Appointments().TransitionStatus(
		ctx, cancelled.ID,
		[]appointment.Status{appointment.StatusPending},
		appointment.StatusCancelled, now, "",
	)
	require.NoError(t, err)
	require.True(t, changed)

	tests := []struct {
		name string
		in   CreateInput
		code string
	}{
		{"unknown appointment", CreateInput{AppointmentID: 999, Amount: 10, Method: "cash"}, "appointment_not_found"},
		{"zero amount", CreateInput{AppointmentID: ap.ID, Amount: 0, Method: "cash"}, "invalid_amount"},
		{"unknown method", CreateInput{AppointmentID: ap.ID, Amount: 10, Method: "crypto"}, "invalid_payment_method"},
		{"unknown status", CreateInput{AppointmentID: ap.ID, Amount: 10, Method: "cash", Status: "maybe"}, "invalid_payment_status"},
		{"cancelled appointment", CreateInput{AppointmentID: cancelled.ID, Amount: 10, Method: "cash"}, "invalid_transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.linker.CreatePayment(ctx, tt.in)
			assert.True(t, httperr.IsBusiness(err, tt.code), "got %v", err)
		})
	}

	_, err = f.linker.GetByAppointment(ctx, ap.ID)
	assert.True(t, httperr.IsBusiness(err, "payment_not_found"), "got %v", err)
}

func TestUpdatePayment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ap := f.appointment(t)

	p, err := f.linker.CreatePayment(ctx, CreateInput{AppointmentID: ap.ID, Amount: 10, Method: "cash"})
	require.NoError(t, err)

	amount := 12.5
	status := "paid"
	updated, err := f.linker.UpdatePayment(ctx, p.ID, UpdateInput{Amount: &amount, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, 12.5, updated.Amount)
	assert.Equal(t, "cash", updated.Method)
	assert.Equal(t, "paid", updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, p.Reference, updated.Reference)
	assert.Equal(t, ap.ID, updated.AppointmentID)

	got, err := f.linker.GetPayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Amount)

	bad := -1.0
	_, err = f.linker.UpdatePayment(ctx, p.ID, UpdateInput{Amount: &bad})
	assert.True(t, httperr.IsBusiness(err, "invalid_amount"), "got %v", err)

	_, err = f.linker.UpdatePayment(ctx, 999, UpdateInput{Amount: &amount})
	assert.True(t, httperr.IsBusiness(err, "payment_not_found"), "got %v", err)
}
