package logging

import (
	"context"
	"errors"
	"testing"
	"time"
)

type captureSink struct {
	events []Event
	err    error
}

func (s *captureSink) Write(event Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func TestRouterFiltersBySeverity(t *testing.T) {
	sink := &captureSink{}
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityWarn
	router := NewRouter(ClockFunc(func() time.Time { return time.Unix(10, 0) }), cfg, []NamedSink{{Name: "capture", Sink: sink}})

	router.Publish(context.Background(), Event{Type: "test.info", Severity: SeverityInfo})
	router.Publish(context.Background(), Event{Type: "test.warn", Severity: SeverityWarn})

	if len(sink.events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(sink.events))
	}
	if sink.events[0].Type != "test.warn" {
		t.Fatalf("event type = %q, want %q", sink.events[0].Type, "test.warn")
	}
	if got := sink.events[0].Time; !got.Equal(time.Unix(10, 0)) {
		t.Fatalf("event time = %v, want clock time", got)
	}
}

func TestRouterStampsSharedFields(t *testing.T) {
	sink := &captureSink{}
	cfg := DefaultConfig()
	cfg.Fields = map[string]any{"match": "m-1"}
	router := NewRouter(nil, cfg, []NamedSink{{Name: "capture", Sink: sink}})

	router.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo})
	router.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo, Extra: map[string]any{"match": "override"}})

	if got := sink.events[0].Extra["match"]; got != "m-1" {
		t.Fatalf("Extra[match] = %v, want m-1", got)
	}
	if got := sink.events[1].Extra["match"]; got != "override" {
		t.Fatalf("Extra[match] = %v, want event value to win", got)
	}
}

func TestRouterCountsDrops(t *testing.T) {
	failing := &captureSink{err: errors.New("disk full")}
	router := NewRouter(nil, DefaultConfig(), []NamedSink{{Name: "failing", Sink: failing}})

	router.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo})

	stats := router.Stats()
	if stats.EventsTotal != 1 {
		t.Fatalf("EventsTotal = %d, want 1", stats.EventsTotal)
	}
	if stats.DroppedTotal != 1 {
		t.Fatalf("DroppedTotal = %d, want 1", stats.DroppedTotal)
	}
}
