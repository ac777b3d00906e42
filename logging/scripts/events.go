package scripts

import (
	"context"

	"duelgrid/server/logging"
)

const (
	// EventCompileFailed is emitted when a script source fails to compile.
	EventCompileFailed logging.EventType = "scripts.compile_failed"
	// EventLoadRejected is emitted when a compiled script produces an
	// invalid ability set and the previous set is retained.
	EventLoadRejected logging.EventType = "scripts.load_rejected"
	// EventLoaded is emitted when a script's ability set is accepted.
	EventLoaded logging.EventType = "scripts.loaded"
	// EventCallbackFault is emitted when an ability callback raises an
	// error mid-match.
	EventCallbackFault logging.EventType = "scripts.callback_fault"
)

// CompileFailedPayload carries the compiler diagnostics.
type CompileFailedPayload struct {
	Script string `json:"script"`
	Error  string `json:"error"`
}

// LoadRejectedPayload explains why an ability set was thrown away.
type LoadRejectedPayload struct {
	Script  string `json:"script"`
	Ability string `json:"ability,omitempty"`
	Error   string `json:"error"`
}

// LoadedPayload summarizes an accepted ability set.
type LoadedPayload struct {
	Script    string   `json:"script"`
	Abilities []string `json:"abilities"`
}

// CallbackFaultPayload identifies the callback that failed during a match.
type CallbackFaultPayload struct {
	Script   string `json:"script"`
	Ability  string `json:"ability"`
	Callback string `json:"callback"`
	Error    string `json:"error"`
}

// CompileFailed publishes a script compilation failure.
func CompileFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CompileFailedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCompileFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryScripts,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// LoadRejected publishes an ability set rejection.
func LoadRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LoadRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventLoadRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryScripts,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Loaded publishes an accepted ability set.
func Loaded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LoadedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventLoaded,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryScripts,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// CallbackFault publishes a mid-match callback failure.
func CallbackFault(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CallbackFaultPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCallbackFault,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryScripts,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
