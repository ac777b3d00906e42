package world

import (
	"context"

	"duelgrid/server/internal/ability"
	"duelgrid/server/internal/effect"
	logcombat "duelgrid/server/logging/combat"
)

// ApplyEffects resolves the effects in list order from the caster slot onto
// the target slot. Each effect is independent; one effect skipping on an
// immunity never short-circuits the rest. The health floor is enforced at
// the end of the tick, not here.
func (w *World) ApplyEffects(ctx context.Context, effects []effect.Effect, caster, target int) {
	if w == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	from := w.Fighter(caster)
	to := w.Fighter(target)
	if to == nil {
		return
	}

	for _, eff := range effects {
		switch eff.Kind {
		case effect.KindDamage:
			if to.Immunities.Immune(eff.DamageKind) {
				continue
			}
			amount := effect.MitigatedAmount(eff.Amount, eff.DamageKind, to.Base.PhysicalResistance, to.Base.MagicalResistance)
			to.HP -= amount
			logcombat.Damage(ctx, w.pub, w.currentTick, w.fighterRef(caster), w.fighterRef(target), logcombat.DamagePayload{
				Kind:         string(eff.DamageKind),
				Raw:          eff.Amount,
				Amount:       amount,
				TargetHealth: to.HP,
			}, nil)

		case effect.KindDamageOverTime:
			// Immunity at application time blocks the record outright;
			// immunity during later pulses only suppresses those pulses.
			if to.Immunities.Immune(eff.DamageKind) {
				continue
			}
			to.AddDoT(eff.DPS, eff.DurationSeconds, eff.DamageKind)

		case effect.KindImmunity:
			to.Immunities.Grant(eff.DamageKind, eff.DurationSeconds)

		case effect.KindTimeFreeze:
			w.TimeFreeze(target, eff.DurationSeconds)

		case effect.KindKnockback:
			if from == nil {
				continue
			}
			dx := signOf(to.X - from.X)
			dy := signOf(to.Y - from.Y)
			to.VelX += dx * eff.Force / 2
			to.VelY += dy * eff.Force / 2
			logcombat.Knockback(ctx, w.pub, w.currentTick, w.fighterRef(caster), w.fighterRef(target), logcombat.KnockbackPayload{
				Force:  eff.Force,
				DeltaX: dx * eff.Force / 2,
				DeltaY: dy * eff.Force / 2,
			}, nil)
		}
	}
}

// TimeFreeze suspends the target's movement and casting, keeping the longer
// of the current and new timers. Freezes never stack additively.
func (w *World) TimeFreeze(target int, durationSeconds float64) {
	f := w.Fighter(target)
	if f == nil {
		return
	}
	if durationSeconds > f.FreezeTimer {
		f.FreezeTimer = durationSeconds
	}
}

// FighterInfo exposes the read-only view scripted callbacks see.
func (w *World) FighterInfo(index int) (ability.FighterInfo, bool) {
	f := w.Fighter(index)
	if f == nil {
		return ability.FighterInfo{}, false
	}
	return ability.FighterInfo{
		ID:   f.ID,
		Name: f.Name,
		X:    f.X,
		Y:    f.Y,
		HP:   f.HP,
	}, true
}

// signOf matches the per-axis knockback direction rule: the sign of the
// separation, with zero separation producing no push on that axis. Diagonal
// knockback is intentionally not normalized.
func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

var _ ability.World = (*World)(nil)
