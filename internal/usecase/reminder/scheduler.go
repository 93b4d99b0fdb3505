package reminder

import (
	"context"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barbershop-booking/internal/domain/reminder"
	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
	"github.com/BruksfildServices01/barbershop-booking/internal/metrics"
)

// timer is the part of *time.Timer the scheduler uses.
type timer interface {
	Stop() bool
}

type armed struct {
	fireAt time.Time
	timer  timer
}

type Options struct {
	// Sweep is how often the store is polled for pending tasks armed by
	// other instances or lost on restart.
	Sweep time.Duration

	// SendTimeout bounds a single NotificationPort call.
	SendTimeout time.Duration

	Metrics *metrics.Metrics
	Now     func() time.Time

	afterFunc func(d time.Duration, f func()) timer
}

// Scheduler fires one reminder per appointment. The store is the source of
// truth: a reminder is sent only by whoever moves its task from pending to
// sending, so a cancel that loses that race has no effect and a reminder
// is delivered at most once.
type Scheduler struct {
	store    domain.Store
	resolver domain.Resolver
	notifier domain.NotificationPort
	log      logger.Logger
	metrics  *metrics.Metrics

	sweep       time.Duration
	sendTimeout time.Duration
	now         func() time.Time
	afterFunc   func(d time.Duration, f func()) timer

	mu      sync.Mutex
	timers  map[uint]armed
	stopped bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
}

func NewScheduler(
	store domain.Store,
	resolver domain.Resolver,
	notifier domain.NotificationPort,
	log logger.Logger,
	opts Options,
) *Scheduler {

	if opts.Sweep <= 0 {
		opts.Sweep = time.Minute
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.afterFunc == nil {
		opts.afterFunc = func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		store:       store,
		resolver:    resolver,
		notifier:    notifier,
		log:         log.WithModule("ReminderScheduler"),
		metrics:     opts.Metrics,
		sweep:       opts.Sweep,
		sendTimeout: opts.SendTimeout,
		now:         opts.Now,
		afterFunc:   opts.afterFunc,
		timers:      map[uint]armed{},
		baseCtx:     ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// normalize drops sub-second precision so fire times survive a round trip
// through any store.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ======================================================
// Registration
// ======================================================

// Schedule stores a pending task for appointmentID and arms its timer. A
// fire time in the past fires right away.
func (s *Scheduler) Schedule(ctx context.Context, appointmentID uint, fireAt time.Time) error {
	fireAt = normalize(fireAt)

	if err := s.store.Upsert(ctx, appointmentID, fireAt); err != nil {
		return err
	}
	s.arm(appointmentID, fireAt)

	s.metrics.Reminder("scheduled")
	s.log.Debug("reminder.scheduled", logger.Fields{
		"appointmentId": appointmentID,
		"fireAt":        fireAt,
	})
	return nil
}

// Cancel is a no-op when there is no pending task.
func (s *Scheduler) Cancel(ctx context.Context, appointmentID uint) error {
	s.disarm(appointmentID)

	ok, err := s.store.Cancel(ctx, appointmentID)
	if err != nil {
		return err
	}
	if ok {
		s.metrics.Reminder("cancelled")
		s.log.Debug("reminder.cancelled", logger.Fields{"appointmentId": appointmentID})
	}
	return nil
}

func (s *Scheduler) Reschedule(ctx context.Context, appointmentID uint, fireAt time.Time) error {
	if err := s.Cancel(ctx, appointmentID); err != nil {
		return err
	}
	return s.Schedule(ctx, appointmentID, fireAt)
}

// ======================================================
// Timers
// ======================================================

func (s *Scheduler) arm(appointmentID uint, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if cur, ok := s.timers[appointmentID]; ok {
		if cur.fireAt.Equal(fireAt) {
			return
		}
		cur.timer.Stop()
	}

	delay := fireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timers[appointmentID] = armed{
		fireAt: fireAt,
		timer: s.afterFunc(delay, func() {
			s.fire(appointmentID, fireAt)
		}),
	}
}

func (s *Scheduler) disarm(appointmentID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.timers[appointmentID]; ok {
		cur.timer.Stop()
		delete(s.timers, appointmentID)
	}
}

// Armed reports how many timers are waiting.
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// ======================================================
// Lifecycle
// ======================================================

// Start rebuilds missing tasks from source, arms the pending ones and keeps
// sweeping the store until Stop. source may be nil.
func (s *Scheduler) Start(ctx context.Context, source domain.Source) error {
	if source != nil {
		upcoming, err := source.UpcomingReminders(ctx, s.now())
		if err != nil {
			return err
		}
		restored := 0
		for id, fireAt := range upcoming {
			created, err := s.store.EnsurePending(ctx, id, normalize(fireAt))
			if err != nil {
				return err
			}
			if created {
				restored++
			}
		}
		s.log.Info("reminder.recovery.done", logger.Fields{
			"upcoming": len(upcoming),
			"restored": restored,
		})
	}

	if err := s.sweepOnce(ctx); err != nil {
		return err
	}

	go s.loop()
	return nil
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.baseCtx.Done():
			return
		case <-ticker.C:
			if err := s.sweepOnce(s.baseCtx); err != nil && s.baseCtx.Err() == nil {
				s.log.Error("reminder.sweep.failed", logger.Fields{"error": err})
			}
		}
	}
}

// sweepOnce arms every pending task due before the next sweep.
func (s *Scheduler) sweepOnce(ctx context.Context) error {
	due, err := s.store.ListPending(ctx, s.now().Add(s.sweep))
	if err != nil {
		return err
	}
	for _, t := range due {
		s.arm(t.AppointmentID, normalize(t.FireAt))
	}
	return nil
}

// Stop disarms every timer and waits for in-flight sends. Tasks stay
// pending in the store for the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for id, cur := range s.timers {
		cur.timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// Done is closed when the sweep loop has exited. It never closes if Start
// was not called.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}
