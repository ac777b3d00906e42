// Package world owns the simulation state for one 1v1 arena: the fighter
// pair, the live projectiles, and the fixed per-tick phase order that
// advances them.
package world

import (
	"context"
	"fmt"
	"math/rand"

	"duelgrid/server/internal/fighter"
	"duelgrid/server/logging"
	logcombat "duelgrid/server/logging/combat"
)

// Fighter slots. Callbacks and the public API address fighters by slot index
// rather than by pointer.
const (
	SlotA = 0
	SlotB = 1
)

// SimulationFault wraps an error raised by a scripted callback during a
// running tick. The engine does not recover from it; the frame loop halts.
type SimulationFault struct {
	Tick uint64
	Err  error
}

func (f *SimulationFault) Error() string {
	return fmt.Sprintf("simulation fault at tick %d: %v", f.Tick, f.Err)
}

func (f *SimulationFault) Unwrap() error { return f.Err }

// Telemetry counts notable per-battle occurrences. Counters reset with the
// world.
type Telemetry struct {
	Casts              uint64
	ProjectilesSpawned uint64
	ProjectileHits     uint64
	ProjectileExpiries uint64
	DamagePulses       uint64
	SuppressedPulses   uint64
}

// World is single-threaded: the clock steps it from one goroutine and nothing
// inside a tick blocks or escapes.
type World struct {
	cfg      Config
	fighters [2]*fighter.Fighter
	spawns   [2]spawnPoint

	projectiles []*Projectile
	nextProjID  uint64

	rng         *rand.Rand
	pub         logging.Publisher
	currentTick uint64
	depleted    [2]bool
	telemetry   Telemetry

	// castingSlot is the fighter whose on_cast is running, or -1. Spawned
	// projectiles record it as their owner.
	castingSlot int
}

type spawnPoint struct {
	x, y float64
}

// New builds an arena for the given pair. Fighter A spawns on the left
// quarter line, fighter B on the right, both on the horizontal midline.
func New(cfg Config, pub logging.Publisher, a, b *fighter.Fighter) *World {
	cfg = cfg.normalized()
	if pub == nil {
		pub = logging.NopPublisher()
	}
	w := &World{
		cfg:      cfg,
		fighters: [2]*fighter.Fighter{a, b},
		spawns: [2]spawnPoint{
			{x: cfg.Width * 0.25, y: cfg.Height / 2},
			{x: cfg.Width * 0.75, y: cfg.Height / 2},
		},
		rng:         NewDeterministicRNG(cfg.Seed, "world"),
		pub:         pub,
		castingSlot: -1,
	}
	w.placeFighters()
	return w
}

func (w *World) placeFighters() {
	for i, f := range w.fighters {
		f.ResetRuntime(w.spawns[i].x, w.spawns[i].y)
	}
	if a := w.fighters[SlotA]; a != nil {
		a.Facing = 1
	}
	if b := w.fighters[SlotB]; b != nil {
		b.Facing = -1
	}
}

// Reset restores battle-start state: fighter positions and health, no
// projectiles, tick zero. Ability sets survive.
func (w *World) Reset() {
	if w == nil {
		return
	}
	w.placeFighters()
	w.projectiles = nil
	w.currentTick = 0
	w.depleted = [2]bool{}
	w.telemetry = Telemetry{}
	w.castingSlot = -1
	w.rng = NewDeterministicRNG(w.cfg.Seed, "world")
}

// Tick returns the number of completed steps since the last reset.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.currentTick
}

// Config returns the normalized arena configuration.
func (w *World) Config() Config {
	if w == nil {
		return DefaultConfig()
	}
	return w.cfg
}

// Telemetry returns the counters accumulated since the last reset.
func (w *World) Telemetry() Telemetry {
	if w == nil {
		return Telemetry{}
	}
	return w.telemetry
}

// Rand returns a value in [min, max) from the world's seeded stream. Script
// sandboxes draw through this so battles replay identically per seed.
func (w *World) Rand(min, max float64) float64 {
	if w == nil {
		return min
	}
	return RandomRange(w.rng, min, max)
}

// Fighter returns the fighter in the given slot.
func (w *World) Fighter(index int) *fighter.Fighter {
	if w == nil || index < 0 || index >= len(w.fighters) {
		return nil
	}
	return w.fighters[index]
}

// Step advances the simulation by dt seconds in the fixed phase order:
// status decay, projectile update and collision, AI movement and casting,
// health floor. A scripted callback error aborts the step and surfaces as a
// *SimulationFault.
func (w *World) Step(ctx context.Context, dt float64) error {
	if w == nil || dt <= 0 {
		return nil
	}

	w.statusPhase(ctx, dt)
	if err := w.projectilePhase(ctx, dt); err != nil {
		return &SimulationFault{Tick: w.currentTick, Err: err}
	}
	if err := w.aiPhase(ctx, dt); err != nil {
		return &SimulationFault{Tick: w.currentTick, Err: err}
	}
	w.clampPhase(ctx)

	w.currentTick++
	return nil
}

func (w *World) statusPhase(ctx context.Context, dt float64) {
	for i, f := range w.fighters {
		pulses := f.AdvanceStatus(dt)
		for _, pulse := range pulses {
			w.telemetry.DamagePulses++
			if pulse.Suppressed {
				w.telemetry.SuppressedPulses++
			}
			logcombat.DamagePulse(ctx, w.pub, w.currentTick, w.fighterRef(i), logcombat.DamagePulsePayload{
				Kind:         string(pulse.Kind),
				Amount:       pulse.Amount,
				Suppressed:   pulse.Suppressed,
				TargetHealth: f.HP,
			}, nil)
		}
	}
}

func (w *World) clampPhase(ctx context.Context) {
	for i, f := range w.fighters {
		if f == nil {
			continue
		}
		if f.HP <= 0 && !w.depleted[i] {
			w.depleted[i] = true
			logcombat.HealthDepleted(ctx, w.pub, w.currentTick, w.fighterRef(i), logcombat.HealthDepletedPayload{
				Source: "combat",
			}, nil)
		}
		f.ClampHealth()
	}
}

func (w *World) fighterRef(index int) logging.EntityRef {
	f := w.Fighter(index)
	if f == nil {
		return logging.EntityRef{Kind: logging.EntityKindFighter}
	}
	return logging.EntityRef{ID: f.ID, Kind: logging.EntityKindFighter}
}
