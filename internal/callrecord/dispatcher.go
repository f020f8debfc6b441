package callrecord

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

const DefaultSinkTimeout = 10 * time.Second

// Sink persists or forwards a finished call.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec Record) error
}

// FailureObserver counts sink failures.
type FailureObserver interface {
	ObserveSinkFailure(sink string)
}

// Dispatcher delivers records to every sink in the background. A failing
// sink is logged and counted; it never reaches the caller.
type Dispatcher struct {
	sinks    []Sink
	timeout  time.Duration
	logger   *logging.Logger
	observer FailureObserver
	wg       sync.WaitGroup
}

func NewDispatcher(logger *logging.Logger, observer FailureObserver, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSinkTimeout
	}
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Dispatcher{sinks: active, timeout: timeout, logger: logger, observer: observer}
}

// Sinks lists the configured sink names.
func (d *Dispatcher) Sinks() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		out[i] = s.Name()
	}
	return out
}

// Dispatch returns immediately. Delivery runs detached from any request
// context and is bounded by the dispatcher timeout per sink.
func (d *Dispatcher) Dispatch(rec Record) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for _, s := range d.sinks {
			d.deliver(s, rec)
		}
	}()
}

func (d *Dispatcher) deliver(s Sink, rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("call record sink panicked", "sink", s.Name(), "call_sid", rec.CallSid, "panic", r)
			d.fail(s)
		}
	}()
	if err := s.Write(ctx, rec); err != nil {
		d.logger.Warn("call record sink failed", "sink", s.Name(), "call_sid", rec.CallSid, "error", err)
		d.fail(s)
		return
	}
	d.logger.Debug("call record delivered", "sink", s.Name(), "call_sid", rec.CallSid)
}

func (d *Dispatcher) fail(s Sink) {
	if d.observer != nil {
		d.observer.ObserveSinkFailure(s.Name())
	}
}

// Wait blocks until every dispatched record has been delivered.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// LogSink writes a one-line summary of each call to the logger.
type LogSink struct {
	Logger *logging.Logger
}

func (LogSink) Name() string { return "log" }

func (s LogSink) Write(_ context.Context, rec Record) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger.Info("call ended",
		"call_sid", rec.CallSid,
		"outcome", rec.Outcome,
		"salon", rec.Salon,
		"service", rec.Known.Service,
		"turns", len(rec.Turns),
		"duration_s", rec.Duration().Seconds(),
	)
	return nil
}
