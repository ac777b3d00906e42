package logging

import (
	"context"
	"log"
	"os"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events out to the configured sinks. The simulation is
// frame-driven and publishes from a single goroutine, so delivery is
// synchronous: an event is either written to every sink before Publish
// returns or reported on the fallback logger.
type Router struct {
	cfg         Config
	sinks       []NamedSink
	clock       Clock
	fallback    *log.Logger
	minSeverity Severity
	fields      map[string]any

	eventsTotal  uint64
	droppedTotal uint64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) *Router {
	if clock == nil {
		clock = SystemClock{}
	}
	r := &Router{
		cfg:         cfg,
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, named)
	}
	return r
}

func (r *Router) Publish(_ context.Context, event Event) {
	if r == nil || event.Type == "" {
		return
	}
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneEvent(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	r.eventsTotal++
	for _, named := range r.sinks {
		if err := named.Sink.Write(event); err != nil {
			r.droppedTotal++
			r.fallback.Printf("sink %s failed: %v (event type=%s tick=%d)", named.Name, err, event.Type, event.Tick)
		}
	}
}

func (r *Router) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var firstErr error
	for _, named := range r.sinks {
		if err := named.Sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	if r == nil {
		return RouterStats{}
	}
	return RouterStats{EventsTotal: r.eventsTotal, DroppedTotal: r.droppedTotal}
}

func (r *Router) Sink(name string) Sink {
	if r == nil {
		return nil
	}
	for _, named := range r.sinks {
		if named.Name == name {
			return named.Sink
		}
	}
	return nil
}

// Ensure Router satisfies Publisher.
var _ Publisher = (*Router)(nil)
