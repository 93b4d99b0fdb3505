package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

type Repository interface {
	// -------- Appointment (create / read) --------
	Create(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetByID(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// GetForUpdate locks the row when called inside a transaction.
	GetForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// GetDetails preloads client, staff person, location and services.
	GetDetails(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	// -------- Appointment (state change) --------
	Save(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// TransitionStatus is a compare-and-swap on the status column.
	TransitionStatus(
		ctx context.Context,
		id uint,
		from []Status,
		to Status,
		at time.Time,
		reason string,
	) (bool, error)

	// SetPayment links a payment only if none is linked yet.
	SetPayment(
		ctx context.Context,
		appointmentID uint,
		paymentID uint,
	) (bool, error)

	// -------- Listing --------
	ListForStaffDay(
		ctx context.Context,
		staffID uint,
		date time.Time,
	) ([]models.Appointment, error)

	ListActiveFrom(
		ctx context.Context,
		from time.Time,
	) ([]models.Appointment, error)

	ListActiveForStaffFrom(
		ctx context.Context,
		staffID uint,
		from time.Time,
	) ([]models.Appointment, error)
}

// Catalog resolves the reference data a booking points at.
type Catalog interface {
	GetPerson(ctx context.Context, id uint) (*models.Person, error)
	GetServices(ctx context.Context, ids []uint) ([]models.Service, error)
}
