package effect

// Kind enumerates the closed set of effect variants an ability can carry.
// Resolution switches exhaustively over this set so an unknown kind can never
// silently no-op.
type Kind uint8

const (
	KindDamage Kind = iota
	KindDamageOverTime
	KindImmunity
	KindTimeFreeze
	KindKnockback
)

// DamageKind identifies the mitigation channel a damage payload targets.
type DamageKind string

const (
	DamagePhysical DamageKind = "physical"
	DamageMagical  DamageKind = "magical"
	DamageBoth     DamageKind = "both"
)

// ValidDamageKind reports whether the value names a known damage channel.
func ValidDamageKind(kind DamageKind) bool {
	switch kind {
	case DamagePhysical, DamageMagical, DamageBoth:
		return true
	default:
		return false
	}
}

// Effect is a tagged variant. Only the payload fields relevant to Kind are
// meaningful; constructors below are the supported way to build one.
type Effect struct {
	Kind            Kind
	DamageKind      DamageKind
	Amount          float64
	DPS             float64
	DurationSeconds float64
	Force           float64
}

// Damage builds an instant damage effect mitigated by the target's
// resistances.
func Damage(amount float64, kind DamageKind) Effect {
	return Effect{Kind: KindDamage, Amount: amount, DamageKind: kind}
}

// DamageOverTime builds a standing effect dealing dps once per whole elapsed
// second for the given duration.
func DamageOverTime(dps, durationSeconds float64, kind DamageKind) Effect {
	return Effect{Kind: KindDamageOverTime, DPS: dps, DurationSeconds: durationSeconds, DamageKind: kind}
}

// Immunity builds an effect granting the target immunity on one damage
// channel for the given duration.
func Immunity(kind DamageKind, durationSeconds float64) Effect {
	return Effect{Kind: KindImmunity, DamageKind: kind, DurationSeconds: durationSeconds}
}

// TimeFreeze builds an effect that suspends the target's movement and casting.
func TimeFreeze(durationSeconds float64) Effect {
	return Effect{Kind: KindTimeFreeze, DurationSeconds: durationSeconds}
}

// Knockback builds an effect adding force/2 per axis to the target's velocity
// away from the caster.
func Knockback(force float64) Effect {
	return Effect{Kind: KindKnockback, Force: force}
}
