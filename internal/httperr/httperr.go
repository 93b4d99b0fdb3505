package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func StatusFor(kind Kind) int {
	switch kind {
	case KindSlotConflict, KindAlreadyOccupied, KindPaymentAlreadyExists:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes a business error with its mapped status, or a 500 with
// fallbackCode for anything else.
func FromError(c *gin.Context, err error, fallbackCode string) {
	var be BusinessError
	if errors.As(err, &be) {
		Write(c, StatusFor(be.Kind), be.Code, messages[be.Kind])
		return
	}
	Internal(c, fallbackCode, "Error interno.")
}

var messages = map[Kind]string{
	KindSlotConflict:         "El peluquero o el puesto ya está reservado en ese turno.",
	KindAlreadyOccupied:      "El puesto de trabajo ya está ocupado.",
	KindNotFound:             "Recurso no encontrado.",
	KindInvalidTransition:    "La cita no permite esta operación en su estado actual.",
	KindPaymentAlreadyExists: "La cita ya tiene un pago registrado.",
	KindValidation:           "Datos inválidos.",
	KindForbidden:            "Operación no permitida.",
}
