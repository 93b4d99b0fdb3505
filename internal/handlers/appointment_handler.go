package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/dto"
	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	engine *booking.Engine
	now    func() time.Time
}

func NewAppointmentHandler(engine *booking.Engine, now func() time.Time) *AppointmentHandler {
	if now == nil {
		now = time.Now
	}
	return &AppointmentHandler{engine: engine, now: now}
}

func (h *AppointmentHandler) toDTO(ap *models.Appointment) dto.AppointmentDTO {
	return dto.FromAppointment(ap, h.engine.StartOf(ap))
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientID      uint   `json:"client_id" binding:"required"`
	StaffID       uint   `json:"staff_id" binding:"required"`
	LocationID    uint   `json:"location_id" binding:"required"`
	WorkstationID uint   `json:"workstation_id" binding:"required"`
	ServiceIDs    []uint `json:"service_ids" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Turn          *int   `json:"turn" binding:"required"`
	Notes         string `json:"notes"`
}

type UpdateAppointmentRequest struct {
	StaffID       *uint   `json:"staff_id"`
	LocationID    *uint   `json:"location_id"`
	WorkstationID *uint   `json:"workstation_id"`
	ServiceIDs    []uint  `json:"service_ids"`
	Date          *string `json:"date"`
	Turn          *int    `json:"turn"`
	Notes         *string `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type FinalizeAppointmentRequest struct {
	StaffID uint `json:"staff_id"`
}

type CancelUpcomingRequest struct {
	From   string `json:"from"`
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bind(c, &req) {
		return
	}

	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	ap, err := h.engine.Create(c.Request.Context(), booking.CreateInput{
		ClientID:      req.ClientID,
		StaffID:       req.StaffID,
		ServiceIDs:    req.ServiceIDs,
		LocationID:    req.LocationID,
		WorkstationID: req.WorkstationID,
		Date:          date,
		Turn:          *req.Turn,
		Notes:         req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err, "create_appointment_failed")
		return
	}

	c.JSON(http.StatusCreated, h.toDTO(ap))
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := h.engine.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "get_appointment_failed")
		return
	}

	httpresp.OK(c, h.toDTO(ap))
}

// ListForStaffDay answers GET /staff/:id/appointments?date=YYYY-MM-DD.
func (h *AppointmentHandler) ListForStaffDay(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}
	date, ok := parseDate(c, c.Query("date"))
	if !ok {
		return
	}

	apps, err := h.engine.ListForStaffDay(c.Request.Context(), staffID, date)
	if err != nil {
		httperr.FromError(c, err, "list_appointments_failed")
		return
	}

	out := make([]dto.AppointmentListDTO, 0, len(apps))
	for i := range apps {
		out = append(out, dto.ListItemFromAppointment(&apps[i], h.engine.StartOf(&apps[i])))
	}
	httpresp.List(c, out)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bind(c, &req) {
		return
	}

	in := booking.UpdateInput{
		StaffID:       req.StaffID,
		LocationID:    req.LocationID,
		WorkstationID: req.WorkstationID,
		ServiceIDs:    req.ServiceIDs,
		Turn:          req.Turn,
		Notes:         req.Notes,
	}
	if req.Date != nil {
		date, ok := parseDate(c, *req.Date)
		if !ok {
			return
		}
		in.Date = &date
	}

	ap, err := h.engine.Update(c.Request.Context(), id, in)
	if err != nil {
		httperr.FromError(c, err, "update_appointment_failed")
		return
	}

	httpresp.OK(c, h.toDTO(ap))
}

// ======================================================
// STATUS
// ======================================================

type statusChange func(ctx context.Context, id uint) (*models.Appointment, error)

func (h *AppointmentHandler) changeStatus(c *gin.Context, fallbackCode string, fn statusChange) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ap, err := fn(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, fallbackCode)
		return
	}

	httpresp.OK(c, h.toDTO(ap))
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.changeStatus(c, "confirm_appointment_failed", h.engine.Confirm)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.changeStatus(c, "complete_appointment_failed", h.engine.Complete)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req CancelAppointmentRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	h.changeStatus(c, "cancel_appointment_failed", func(ctx context.Context, id uint) (*models.Appointment, error) {
		return h.engine.Cancel(ctx, id, req.Reason)
	})
}

// Finalize acts as the caller's staff member; admins name one in the body.
func (h *AppointmentHandler) Finalize(c *gin.Context) {
	staffID, isStaff := middleware.StaffFrom(c)
	if !isStaff {
		var req FinalizeAppointmentRequest
		if !bind(c, &req) {
			return
		}
		staffID = req.StaffID
	}

	h.changeStatus(c, "finalize_appointment_failed", func(ctx context.Context, id uint) (*models.Appointment, error) {
		return h.engine.Finalize(ctx, id, staffID)
	})
}

// CancelUpcomingForStaff cancels the staff member's pending and confirmed
// appointments from the given day, today by default.
func (h *AppointmentHandler) CancelUpcomingForStaff(c *gin.Context) {
	staffID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CancelUpcomingRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	from := h.now()
	if req.From != "" {
		d, ok := parseDate(c, req.From)
		if !ok {
			return
		}
		from = d
	}

	ids, err := h.engine.CancelUpcomingForStaff(c.Request.Context(), staffID, from, req.Reason)
	if err != nil {
		httperr.FromError(c, err, "cancel_upcoming_failed")
		return
	}

	httpresp.OK(c, gin.H{"cancelled": ids})
}
