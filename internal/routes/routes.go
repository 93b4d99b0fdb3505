package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/handlers"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Appointments *handlers.AppointmentHandler
	Availability *handlers.AvailabilityHandler
	Resources    *handlers.ResourceHandler
	Payments     *handlers.PaymentHandler
	AuditLogs    *handlers.AuditLogsHandler
	Health       *handlers.HealthHandler
}

type Options struct {
	JWTSecret   string
	Logger      logger.Logger
	Metrics     *metrics.Metrics
	MetricsPath string
	RateLimiter *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, h Handlers, opts Options) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestID())
	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}
	r.Use(middleware.CORSMiddleware())
	if opts.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(opts.Metrics))
		r.GET(opts.MetricsPath, gin.WrapH(opts.Metrics.Handler()))
	}

	r.GET("/health", h.Health.Live)
	r.GET("/ready", h.Health.Ready)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(middleware.RateLimit(opts.RateLimiter))
	}
	api.Use(middleware.AuthMiddleware(opts.JWTSecret))

	admin := middleware.RequireRole(middleware.RoleAdmin)
	anyRole := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStaff)

	// ------------------------------
	// APPOINTMENTS
	// ------------------------------
	appointments := api.Group("/appointments", anyRole)
	{
		appointments.POST("", h.Appointments.Create)
		appointments.GET("/:id", h.Appointments.Get)
		appointments.PATCH("/:id", h.Appointments.Update)
		appointments.POST("/:id/confirm", h.Appointments.Confirm)
		appointments.POST("/:id/complete", h.Appointments.Complete)
		appointments.POST("/:id/finalize", h.Appointments.Finalize)
		appointments.POST("/:id/cancel", h.Appointments.Cancel)

		appointments.POST("/:id/payment", h.Payments.Create)
		appointments.GET("/:id/payment", h.Payments.GetByAppointment)
	}

	api.GET("/availability", anyRole, h.Availability.FreeTurns)

	// ------------------------------
	// PAYMENTS
	// ------------------------------
	api.GET("/payments/:id", anyRole, h.Payments.Get)
	api.PATCH("/payments/:id", anyRole, h.Payments.Update)

	// ------------------------------
	// STAFF
	// ------------------------------
	staff := api.Group("/staff")
	{
		staff.GET("/:id", anyRole, h.Resources.GetStaff)
		staff.GET("/:id/appointments", anyRole, h.Appointments.ListForStaffDay)
		staff.PUT("/:id/workstation", admin, h.Resources.AssignWorkstation)
		staff.POST("/:id/deactivate", admin, h.Resources.DeactivateStaff)
		staff.POST("/:id/activate", admin, h.Resources.ActivateStaff)
		staff.POST("/:id/cancel-upcoming", admin, h.Appointments.CancelUpcomingForStaff)
	}

	// ------------------------------
	// WORKSTATIONS & LOCATIONS
	// ------------------------------
	api.GET("/workstations/:id", anyRole, h.Resources.GetWorkstation)
	api.DELETE("/workstations/:id/staff", admin, h.Resources.ReleaseWorkstation)

	locations := api.Group("/locations")
	{
		locations.GET("/:id", anyRole, h.Resources.GetLocation)
		locations.GET("/:id/workstations", anyRole, h.Resources.ListWorkstations)
		locations.POST("/:id/workstations", admin, h.Resources.CreateWorkstation)
	}

	api.GET("/audit-logs", admin, h.AuditLogs.List)
}
