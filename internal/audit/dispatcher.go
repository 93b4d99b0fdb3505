package audit

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/barbershop-booking/internal/logger"
)

type Event struct {
	LocationID *uint
	ActorID    *uint
	Action     string
	Entity     string
	EntityID   *uint
	Metadata   any
	RequestID  string
}

// Recorder is what use cases depend on.
type Recorder interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	writer Writer
	log    logger.Logger
	queue  chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(writer Writer, log logger.Logger) *Dispatcher {
	d := &Dispatcher{
		writer: writer,
		log:    log.WithModule("Audit"),
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.writer.Write(context.Background(), toRecord(ev)); err != nil {
			d.log.Error("audit.write.failed", logger.Fields{
				"action": ev.Action,
				"error":  err,
			})
		}
	}
}

// Dispatch never blocks; a full queue drops the event.
func (d *Dispatcher) Dispatch(ev Event) {
	defer func() {
		// Dispatch after Close.
		if recover() != nil {
			d.log.Warn("audit.dispatch.closed", logger.Fields{"action": ev.Action})
		}
	}()

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit.queue.full", logger.Fields{"action": ev.Action})
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

// Nop discards events.
type Nop struct{}

func (Nop) Dispatch(Event) {}
