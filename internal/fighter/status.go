package fighter

import "duelgrid/server/internal/effect"

// Pulse reports one whole-second DoT pulse resolved during status decay.
// Suppressed pulses counted down the record without dealing damage because
// the target was immune at that instant.
type Pulse struct {
	Amount     float64
	Kind       effect.DamageKind
	Suppressed bool
}

// pulseEpsilon absorbs float accumulation error when summing many small dt
// slices toward a whole-second pulse boundary (ten 0.3s steps sum to just
// under 3.0 in float64).
const pulseEpsilon = 1e-9

// AdvanceStatus applies one tick of status decay in the fixed order
// DoT → immunity → cooldown. DoT damage is batched into whole-second pulses
// via each record's accumulator, which keeps the total dealt independent of
// how dt is sliced. The freeze timer is owned by the movement phase and is
// not decayed here.
func (f *Fighter) AdvanceStatus(dt float64) []Pulse {
	if f == nil || dt <= 0 {
		return nil
	}

	var pulses []Pulse
	kept := f.DoTs[:0]
	for i := range f.DoTs {
		record := f.DoTs[i]
		record.Accumulator += dt
		for record.Accumulator >= 1-pulseEpsilon && record.Remaining > 0 {
			record.Accumulator -= 1
			pulse := Pulse{Amount: record.DPS, Kind: record.Kind}
			// Immunity is rechecked on every pulse: a record can sit on an
			// immune target and resume once the immunity lapses, with the
			// duration still counting down in between.
			if f.Immunities.Immune(record.Kind) {
				pulse.Suppressed = true
			} else {
				f.HP -= record.DPS
			}
			record.Remaining -= 1
			pulses = append(pulses, pulse)
		}
		if record.Remaining > 0 {
			kept = append(kept, record)
		}
	}
	f.DoTs = kept

	f.Immunities.Decay(dt)

	for name, remaining := range f.Cooldowns {
		remaining -= dt
		if remaining < 0 {
			remaining = 0
		}
		f.Cooldowns[name] = remaining
	}

	return pulses
}

// AddDoT appends a new standing damage record. Existing records on the same
// target are never merged.
func (f *Fighter) AddDoT(dps, durationSeconds float64, kind effect.DamageKind) {
	if f == nil {
		return
	}
	f.DoTs = append(f.DoTs, DoT{DPS: dps, Remaining: durationSeconds, Kind: kind})
}
