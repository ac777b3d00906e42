// Package sim drives the world from the host's frame loop: one Advance per
// animation frame, with bounded delta time and explicit run state.
package sim

import (
	"context"
	"time"

	"duelgrid/server/internal/world"
	"duelgrid/server/logging"
	logsim "duelgrid/server/logging/simulation"
)

// MaxDelta bounds the per-frame delta in seconds so a frame hitch cannot
// blow up the integration error.
const MaxDelta = 0.033

// State is the clock's run state. Rendering reads the world snapshot in
// every state; only Running advances it.
type State int

const (
	// StateIdle is the pre-start state: the battle has not begun.
	StateIdle State = iota
	// StateRunning ticks the world once per frame.
	StateRunning
	// StatePaused renders without ticking; no state is discarded.
	StatePaused
	// StateFaulted is terminal for the battle: a scripted callback raised
	// mid-tick and only Reset leaves it.
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Clock owns the run state for one world. It is driven from a single
// goroutine, the same one that steps the world.
type Clock struct {
	world     *world.World
	pub       logging.Publisher
	state     State
	lastFrame time.Time
	elapsed   float64
}

func NewClock(w *world.World, pub logging.Publisher) *Clock {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Clock{world: w, pub: pub, state: StateIdle}
}

func (c *Clock) State() State {
	if c == nil {
		return StateIdle
	}
	return c.state
}

// Elapsed returns the simulated seconds since the last reset, after delta
// clamping.
func (c *Clock) Elapsed() float64 {
	if c == nil {
		return 0
	}
	return c.elapsed
}

// Start begins ticking from the idle state.
func (c *Clock) Start(ctx context.Context, now time.Time) {
	if c == nil || c.state != StateIdle {
		return
	}
	c.state = StateRunning
	c.lastFrame = now
	logsim.Started(ctx, c.pub, c.world.Tick(), logsim.LifecyclePayload{Elapsed: c.elapsed}, nil)
}

// Pause stops ticking without discarding anything.
func (c *Clock) Pause(ctx context.Context) {
	if c == nil || c.state != StateRunning {
		return
	}
	c.state = StatePaused
	logsim.Paused(ctx, c.pub, c.world.Tick(), logsim.LifecyclePayload{Elapsed: c.elapsed}, nil)
}

// Resume continues a paused battle. The frame clock restarts at now, so the
// paused interval contributes no delta.
func (c *Clock) Resume(ctx context.Context, now time.Time) {
	if c == nil || c.state != StatePaused {
		return
	}
	c.state = StateRunning
	c.lastFrame = now
	logsim.Resumed(ctx, c.pub, c.world.Tick(), logsim.LifecyclePayload{Elapsed: c.elapsed}, nil)
}

// Reset rewinds the battle to its initial state and returns the clock to
// idle. It is the only exit from the faulted state.
func (c *Clock) Reset(ctx context.Context) {
	if c == nil {
		return
	}
	c.world.Reset()
	c.state = StateIdle
	c.elapsed = 0
	logsim.Reset(ctx, c.pub, 0, logsim.LifecyclePayload{}, nil)
}

// Advance runs one frame. When running, it samples the wall-time delta,
// clamps it to MaxDelta, and steps the world; in every other state it only
// re-anchors the frame clock. A step error faults the clock and is returned
// to the host loop.
func (c *Clock) Advance(ctx context.Context, now time.Time) error {
	if c == nil {
		return nil
	}
	if c.state != StateRunning {
		c.lastFrame = now
		return nil
	}

	dt := now.Sub(c.lastFrame).Seconds()
	c.lastFrame = now
	if dt <= 0 {
		return nil
	}
	if dt > MaxDelta {
		dt = MaxDelta
	}

	if err := c.world.Step(ctx, dt); err != nil {
		c.state = StateFaulted
		logsim.Fault(ctx, c.pub, c.world.Tick(), logsim.FaultPayload{Error: err.Error()}, nil)
		return err
	}
	c.elapsed += dt
	return nil
}
