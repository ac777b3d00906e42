package combat

import (
	"context"

	"duelgrid/server/logging"
)

const (
	// EventCast is emitted when a fighter begins an ability cast.
	EventCast logging.EventType = "combat.cast"
	// EventDamage is emitted when an effect deals damage to a target.
	EventDamage logging.EventType = "combat.damage"
	// EventDamagePulse is emitted for each whole-second tick of damage over time.
	EventDamagePulse logging.EventType = "combat.damage_pulse"
	// EventKnockback is emitted when a knockback effect moves a target.
	EventKnockback logging.EventType = "combat.knockback"
	// EventHealthDepleted is emitted when a fighter's health reaches zero.
	EventHealthDepleted logging.EventType = "combat.health_depleted"
)

// CastPayload describes an ability cast at the moment it fires.
type CastPayload struct {
	Ability  string  `json:"ability"`
	Cooldown float64 `json:"cooldown"`
	Range    float64 `json:"range"`
	Distance float64 `json:"distance"`
}

// DamagePayload captures the amount dealt to a single target after mitigation.
type DamagePayload struct {
	Ability      string  `json:"ability,omitempty"`
	Kind         string  `json:"kind"`
	Raw          float64 `json:"raw"`
	Amount       float64 `json:"amount"`
	TargetHealth float64 `json:"targetHealth"`
}

// DamagePulsePayload captures one damage-over-time pulse.
type DamagePulsePayload struct {
	Kind         string  `json:"kind"`
	Amount       float64 `json:"amount"`
	Suppressed   bool    `json:"suppressed"`
	TargetHealth float64 `json:"targetHealth"`
}

// KnockbackPayload captures the velocity applied by a knockback effect.
type KnockbackPayload struct {
	Force  float64 `json:"force"`
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
}

// HealthDepletedPayload describes the blow that emptied a health pool.
type HealthDepletedPayload struct {
	Ability string `json:"ability,omitempty"`
	Source  string `json:"source"`
}

// Cast publishes a combat cast event.
func Cast(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload CastPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventCast,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDamage,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// DamagePulse publishes one damage-over-time pulse event.
func DamagePulse(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload DamagePulsePayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventDamagePulse,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// Knockback publishes a knockback event.
func Knockback(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload KnockbackPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventKnockback,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// HealthDepleted publishes a health depletion event.
func HealthDepleted(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload HealthDepletedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventHealthDepleted,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
