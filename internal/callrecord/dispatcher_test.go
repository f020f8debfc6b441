package callrecord

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

type memorySink struct {
	name  string
	err   error
	delay time.Duration
	mu    sync.Mutex
	got   []Record
}

func (s *memorySink) Name() string { return s.name }

func (s *memorySink) Write(ctx context.Context, rec Record) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, rec)
	return nil
}

func (s *memorySink) records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.got...)
}

type panicSink struct{}

func (panicSink) Name() string { return "panic" }
func (panicSink) Write(context.Context, Record) error { panic("boom") }

type failureCounter struct {
	mu    sync.Mutex
	sinks []string
}

func (f *failureCounter) ObserveSinkFailure(sink string) {
	f.mu.Lock()
	f.sinks = append(f.sinks, sink)
	f.mu.Unlock()
}

func TestDispatcherDeliversToEverySink(t *testing.T) {
	a := &memorySink{name: "a"}
	b := &memorySink{name: "b"}
	d := NewDispatcher(logging.Discard(), nil, time.Second, a, nil, b)
	assert.Equal(t, []string{"a", "b"}, d.Sinks())

	d.Dispatch(Record{CallSid: "CA1", Outcome: OutcomeBooked})
	d.Dispatch(Record{CallSid: "CA2", Outcome: OutcomeAbandoned})
	d.Wait()

	assert.Len(t, a.records(), 2)
	assert.Len(t, b.records(), 2)
}

func TestDispatcherIsolatesFailures(t *testing.T) {
	failing := &memorySink{name: "s3", err: errors.New("access denied")}
	slow := &memorySink{name: "slow", delay: time.Second}
	ok := &memorySink{name: "ok"}
	counter := &failureCounter{}
	d := NewDispatcher(logging.Discard(), counter, 20*time.Millisecond, failing, panicSink{}, slow, ok)

	d.Dispatch(Record{CallSid: "CA3"})
	d.Wait()

	require.Len(t, ok.records(), 1)
	assert.Equal(t, "CA3", ok.records()[0].CallSid)
	assert.ElementsMatch(t, []string{"s3", "panic", "slow"}, counter.sinks)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Record{CallSid: "CA4"})
	d.Wait()
	assert.Nil(t, d.Sinks())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: logging.NewWithWriter("info", &buf)}
	start := time.Date(2024, time.November, 5, 14, 0, 0, 0, time.UTC)
	err := sink.Write(context.Background(), Record{
		CallSid:   "CA5",
		Outcome:   OutcomeBooked,
		Salon:     "Barbier du Plateau",
		Known:     extract.Context{Service: "coupe homme"},
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	})
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.Contains(out, `"call_sid":"CA5"`), out)
	assert.Contains(t, out, `"outcome":"booked"`)
	assert.Contains(t, out, `"duration_s":90`)
}

func TestRecordHelpers(t *testing.T) {
	start := time.Date(2024, time.November, 5, 14, 0, 0, 0, time.UTC)
	rec := Record{Outcome: OutcomeBooked, StartedAt: start, EndedAt: start.Add(time.Minute)}
	assert.True(t, rec.Booked())
	assert.Equal(t, time.Minute, rec.Duration())
	assert.Zero(t, Record{EndedAt: start}.Duration())
	assert.False(t, Record{Outcome: OutcomeError}.Booked())
}
