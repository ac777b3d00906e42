package world

import (
	"context"
	"math"

	logcombat "duelgrid/server/logging/combat"
	logscripts "duelgrid/server/logging/scripts"
)

const (
	// RangedThreshold splits melee from ranged: a fighter whose longest
	// ability range reaches it kites instead of closing in.
	RangedThreshold = 40.0
	// MeleeSeparation is the distance a melee fighter tries to hold.
	MeleeSeparation = 20.0
	// RangedSeparationRatio scales a ranged fighter's longest range into
	// its preferred standoff distance.
	RangedSeparationRatio = 0.8
	// CastGateFloor is the minimum reach every ability has when gating a
	// cast on distance, regardless of its nominal range.
	CastGateFloor = 20.0
	// CooldownFloor bounds how fast attack speed can recycle an ability.
	CooldownFloor = 0.1
	// VelocityDecayBase is the per-second retention factor for residual
	// (knockback) velocity.
	VelocityDecayBase = 0.2
)

// aiPhase runs movement and cast selection for each fighter against its
// opponent, A first then B. A frozen fighter burns its freeze timer and sits
// the tick out entirely.
func (w *World) aiPhase(ctx context.Context, dt float64) error {
	for i := range w.fighters {
		if err := w.actFighter(ctx, dt, i, 1-i); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) actFighter(ctx context.Context, dt float64, meIdx, opIdx int) error {
	me := w.fighters[meIdx]
	op := w.fighters[opIdx]
	if me == nil || op == nil {
		return nil
	}

	if me.FreezeTimer > 0 {
		me.FreezeTimer -= dt
		return nil
	}

	dx := op.X - me.X
	dy := op.Y - me.Y
	distance := math.Hypot(dx, dy)

	maxRange := me.MaxRange()
	ranged := maxRange >= RangedThreshold
	desired := MeleeSeparation
	if ranged {
		desired = RangedSeparationRatio * maxRange
	}

	// Kite away or close in; inside the comfort band the fighter holds
	// ground and only residual velocity moves it.
	if distance > 0 {
		ux := dx / distance
		uy := dy / distance
		if ranged && distance < desired {
			me.X -= ux * me.Base.MoveSpeed * dt
			me.Y -= uy * me.Base.MoveSpeed * dt
		} else if !ranged && distance > desired {
			me.X += ux * me.Base.MoveSpeed * dt
			me.Y += uy * me.Base.MoveSpeed * dt
		}
	}

	me.X += me.VelX * dt
	me.Y += me.VelY * dt
	decay := math.Pow(VelocityDecayBase, dt)
	me.VelX *= decay
	me.VelY *= decay

	me.X = clamp(me.X, 0, w.cfg.Width)
	me.Y = clamp(me.Y, 0, w.cfg.Height)

	if dx != 0 {
		me.Facing = signOf(dx)
	}

	// First eligible ability wins; at most one cast per fighter per tick.
	distance = math.Hypot(op.X-me.X, op.Y-me.Y)
	for _, def := range me.Abilities {
		if !me.CooldownReady(def.Name) {
			continue
		}
		if distance > math.Max(CastGateFloor, def.Range) {
			continue
		}
		cooldown := def.Cooldown
		if me.Base.AttackSpeed > 0 {
			cooldown = def.Cooldown / me.Base.AttackSpeed
		}
		if cooldown < CooldownFloor {
			cooldown = CooldownFloor
		}
		me.SetCooldown(def.Name, cooldown)

		logcombat.Cast(ctx, w.pub, w.currentTick, w.fighterRef(meIdx), w.fighterRef(opIdx), logcombat.CastPayload{
			Ability:  def.Name,
			Cooldown: cooldown,
			Range:    def.Range,
			Distance: distance,
		}, nil)
		w.telemetry.Casts++

		if def.OnCast != nil {
			w.castingSlot = meIdx
			err := def.OnCast(ctx, w, meIdx, opIdx)
			w.castingSlot = -1
			if err != nil {
				logscripts.CallbackFault(ctx, w.pub, w.currentTick, w.fighterRef(meIdx), logscripts.CallbackFaultPayload{
					Script:   me.Name,
					Ability:  def.Name,
					Callback: "on_cast",
					Error:    err.Error(),
				}, nil)
				return err
			}
		}
		break
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
