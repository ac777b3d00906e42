package simulation

import (
	"context"

	"duelgrid/server/logging"
)

const (
	// EventStarted is emitted when the clock leaves the idle state.
	EventStarted logging.EventType = "simulation.started"
	// EventPaused is emitted when a running match is paused.
	EventPaused logging.EventType = "simulation.paused"
	// EventResumed is emitted when a paused match resumes.
	EventResumed logging.EventType = "simulation.resumed"
	// EventReset is emitted when the match is rewound to its initial state.
	EventReset logging.EventType = "simulation.reset"
	// EventFault is emitted when a step aborts the match.
	EventFault logging.EventType = "simulation.fault"
)

// LifecyclePayload describes a clock state transition.
type LifecyclePayload struct {
	Elapsed float64 `json:"elapsed"`
}

// FaultPayload carries the error that aborted the match.
type FaultPayload struct {
	Error string `json:"error"`
}

func lifecycle(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, payload LifecyclePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "world", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Started publishes a match start event.
func Started(ctx context.Context, pub logging.Publisher, tick uint64, payload LifecyclePayload, extra map[string]any) {
	lifecycle(ctx, pub, EventStarted, tick, payload, extra)
}

// Paused publishes a match pause event.
func Paused(ctx context.Context, pub logging.Publisher, tick uint64, payload LifecyclePayload, extra map[string]any) {
	lifecycle(ctx, pub, EventPaused, tick, payload, extra)
}

// Resumed publishes a match resume event.
func Resumed(ctx context.Context, pub logging.Publisher, tick uint64, payload LifecyclePayload, extra map[string]any) {
	lifecycle(ctx, pub, EventResumed, tick, payload, extra)
}

// Reset publishes a match reset event.
func Reset(ctx context.Context, pub logging.Publisher, tick uint64, payload LifecyclePayload, extra map[string]any) {
	lifecycle(ctx, pub, EventReset, tick, payload, extra)
}

// Fault publishes a simulation fault event.
func Fault(ctx context.Context, pub logging.Publisher, tick uint64, payload FaultPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventFault,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "world", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityError,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
