package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barbershop-booking/internal/audit"
	"github.com/BruksfildServices01/barbershop-booking/internal/config"
	dbpkg "github.com/BruksfildServices01/barbershop-booking/internal/db"
	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/appointment"
	reminderdomain "github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/handlers"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/notify"
	"github.com/BruksfildServices01/barbershop-booking/internal/infra/reminderredis"
	infraRepo "github.com/BruksfildServices01/barbershop-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
	"github.com/BruksfildServices01/barbershop-booking/internal/middleware"
	"github.com/BruksfildServices01/barbershop-booking/internal/routes"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
	"github.com/BruksfildServices01/barbershop-booking/internal/txmanager"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/booking"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/payment"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/slots"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.App.LogLevel)
	log.Info("app.starting", logger.Fields{"env": cfg.App.Env, "addr": cfg.Addr()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// INFRA
	// ======================================================
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	clock, err := domain.NewTurnClock(
		cfg.Turns.DayOpening,
		cfg.Turns.TurnMinutes,
		cfg.Turns.TurnsPerDay,
		timezone.Location(cfg.App.Timezone),
	)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New("barbershop")
	}

	tx := txmanager.NewGorm(db)
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	resourceRepo := infraRepo.NewResourceGormRepository(db)
	slotRepo := infraRepo.NewSlotGormRepository(db)
	paymentRepo := infraRepo.NewPaymentGormRepository(db)

	auditDispatcher := audit.NewDispatcher(audit.NewGormWriter(db), log)
	defer auditDispatcher.Close()

	checks := map[string]handlers.Pinger{"postgres": sqlDB.PingContext}

	reminderStore, closeStore, err := openReminderStore(ctx, cfg, db, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, closeNotifier, err := openNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// ======================================================
	// USE CASES
	// ======================================================
	source := booking.NewReminderSource(appointmentRepo, clock, cfg.ReminderLead())

	scheduler := reminder.NewScheduler(reminderStore, source, notifier, log, reminder.Options{
		Sweep:       cfg.ReminderSweep(),
		SendTimeout: cfg.NotifierTimeout(),
		Metrics:     m,
	})

	index := slots.NewIndex(slotRepo, clock)
	directory := resource.NewDirectory(resourceRepo, tx, auditDispatcher, log)

	engine := booking.NewEngine(booking.Deps{
		Tx:           tx,
		Appointments: appointmentRepo,
		Catalog:      appointmentRepo,
		Resources:    resourceRepo,
		Slots:        index,
		Reminders:    scheduler,
		Clock:        clock,
		ReminderLead: cfg.ReminderLead(),
		Audit:        auditDispatcher,
		Metrics:      m,
		Logger:       log,
	})

	linker := payment.NewLinker(tx, paymentRepo, appointmentRepo, auditDispatcher, m, log, nil)

	if err := scheduler.Start(ctx, source); err != nil {
		return fmt.Errorf("start reminder scheduler: %w", err)
	}
	defer scheduler.Stop()

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Handlers{
		Appointments: handlers.NewAppointmentHandler(engine, nil),
		Availability: handlers.NewAvailabilityHandler(index, directory, nil),
		Resources:    handlers.NewResourceHandler(directory),
		Payments:     handlers.NewPaymentHandler(linker),
		AuditLogs:    handlers.NewAuditLogsHandler(audit.NewGormReader(db)),
		Health:       handlers.NewHealthHandler(checks),
	}, routes.Options{
		JWTSecret:   cfg.JWTSecret,
		Logger:      log,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http.listening", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("app.shutdown", nil)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http.shutdown.failed", logger.Fields{"error": err})
	}

	log.Info("app.stopped", nil)
	return nil
}

// openReminderStore picks the durable reminder backend. The redis backend
// registers its own readiness check.
func openReminderStore(
	ctx context.Context,
	cfg *config.Config,
	db *gorm.DB,
	checks map[string]handlers.Pinger,
) (reminderdomain.Store, func(), error) {

	switch cfg.Reminder.Store {
	case config.ReminderStoreRedis:
		client, err := reminderredis.Open(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis: %w", err)
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return reminderredis.New(client, "barbershop"), func() { _ = client.Close() }, nil
	default:
		return infraRepo.NewReminderGormStore(db), func() {}, nil
	}
}

func openNotifier(cfg *config.Config, log logger.Logger) (reminderdomain.NotificationPort, func(), error) {
	switch cfg.Notifier.Kind {
	case config.NotifierHTTP:
		return notify.NewHTTPNotifier(cfg.Notifier.URL, cfg.NotifierTimeout(), log), func() {}, nil
	case config.NotifierAMQP:
		n, err := notify.NewAMQPNotifier(cfg.Notifier.AMQPURL, cfg.Notifier.AMQPQueue, log)
		if err != nil {
			return nil, nil, fmt.Errorf("open amqp: %w", err)
		}
		return n, closer(n, log), nil
	default:
		return notify.NewLogNotifier(log), func() {}, nil
	}
}

func closer(c io.Closer, log logger.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn("app.close.failed", logger.Fields{"error": err})
		}
	}
}
