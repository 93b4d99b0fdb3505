package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/payment"
)

type PaymentHandler struct {
	linker *payment.Linker
}

func NewPaymentHandler(linker *payment.Linker) *PaymentHandler {
	return &PaymentHandler{linker: linker}
}

type CreatePaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required"`
	Status string  `json:"status"`
	Notes  string  `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount *float64 `json:"amount"`
	Method *string  `json:"method"`
	Status *string  `json:"status"`
	Notes  *string  `json:"notes"`
}

// Create answers POST /appointments/:id/payment.
func (h *PaymentHandler) Create(c *gin.Context) {
	appointmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.linker.CreatePayment(c.Request.Context(), payment.CreateInput{
		AppointmentID: appointmentID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        req.Status,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err, "create_payment_failed")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *PaymentHandler) GetByAppointment(c *gin.Context) {
	appointmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.linker.GetByAppointment(c.Request.Context(), appointmentID)
	if err != nil {
		httperr.FromError(c, err, "get_payment_failed")
		return
	}
	httpresp.OK(c, p)
}

func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.linker.GetPayment(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "get_payment_failed")
		return
	}
	httpresp.OK(c, p)
}

func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.linker.UpdatePayment(c.Request.Context(), id, payment.UpdateInput{
		Amount: req.Amount,
		Method: req.Method,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err, "update_payment_failed")
		return
	}
	httpresp.OK(c, p)
}
