package effect

// Mitigate reduces a raw damage amount by the matching resistance using the
// shared formula raw × 100 / (100 + resist). A zero resistance passes the raw
// amount through; the result is strictly decreasing in resist.
func Mitigate(raw, resist float64) float64 {
	if resist < 0 {
		resist = 0
	}
	return raw * 100 / (100 + resist)
}

// MitigatedAmount resolves a damage payload of the given kind against the
// target's physical and magical resistances. A "both" payload splits the raw
// amount in half and mitigates each half against its own channel, so the
// combined total is asymmetric whenever the resistances differ.
func MitigatedAmount(raw float64, kind DamageKind, physResist, magResist float64) float64 {
	switch kind {
	case DamagePhysical:
		return Mitigate(raw, physResist)
	case DamageMagical:
		return Mitigate(raw, magResist)
	case DamageBoth:
		half := raw / 2
		return Mitigate(half, physResist) + Mitigate(half, magResist)
	default:
		return 0
	}
}

// Channels tracks the remaining immunity time per damage channel. Timers may
// decay past zero; only positivity is ever checked.
type Channels struct {
	Physical float64
	Magical  float64
	Both     float64
}

// Immune reports whether the channels currently block the given damage kind.
// A "both" payload is blocked by the both channel or by holding both single
// channels simultaneously; a single-kind payload is blocked by its own channel
// or the both channel.
func (c Channels) Immune(kind DamageKind) bool {
	switch kind {
	case DamageBoth:
		return c.Both > 0 || (c.Physical > 0 && c.Magical > 0)
	case DamagePhysical:
		return c.Physical > 0 || c.Both > 0
	case DamageMagical:
		return c.Magical > 0 || c.Both > 0
	default:
		return false
	}
}

// Grant extends a channel to at least the given duration. Grants never stack
// additively; the longer of the current and new timers wins.
func (c *Channels) Grant(kind DamageKind, durationSeconds float64) {
	if c == nil {
		return
	}
	switch kind {
	case DamagePhysical:
		c.Physical = maxFloat(c.Physical, durationSeconds)
	case DamageMagical:
		c.Magical = maxFloat(c.Magical, durationSeconds)
	case DamageBoth:
		c.Both = maxFloat(c.Both, durationSeconds)
	}
}

// Decay advances every channel timer linearly by dt.
func (c *Channels) Decay(dt float64) {
	if c == nil {
		return
	}
	c.Physical -= dt
	c.Magical -= dt
	c.Both -= dt
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
