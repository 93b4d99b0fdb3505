package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindSlotConflict         Kind = "slot_conflict"
	KindAlreadyOccupied      Kind = "already_occupied"
	KindNotFound             Kind = "not_found"
	KindInvalidTransition    Kind = "invalid_transition"
	KindPaymentAlreadyExists Kind = "payment_already_exists"
	KindValidation           Kind = "validation"
	KindForbidden            Kind = "forbidden"
)

// BusinessError is a user-correctable outcome. Anything else crossing a use
// case boundary is an infrastructure failure.
type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

// ErrBusiness is a validation failure identified by code.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func ErrSlotConflict() error {
	return BusinessError{Kind: KindSlotConflict, Code: "slot_conflict"}
}

func ErrAlreadyOccupied() error {
	return BusinessError{Kind: KindAlreadyOccupied, Code: "already_occupied"}
}

// ErrNotFound builds "<entity>_not_found".
func ErrNotFound(entity string) error {
	return BusinessError{Kind: KindNotFound, Code: entity + "_not_found"}
}

func ErrInvalidTransition() error {
	return BusinessError{Kind: KindInvalidTransition, Code: "invalid_transition"}
}

func ErrPaymentAlreadyExists() error {
	return BusinessError{Kind: KindPaymentAlreadyExists, Code: "payment_already_exists"}
}

func ErrForbidden(code string) error {
	return BusinessError{Kind: KindForbidden, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// KindOf returns "" for non-business errors.
func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether the storage rejected a write on a unique
// index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
