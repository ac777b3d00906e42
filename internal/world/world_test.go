package world

import (
	"context"
	"errors"
	"math"
	"testing"

	"duelgrid/server/internal/ability"
	"duelgrid/server/internal/effect"
	"duelgrid/server/internal/fighter"
)

func newTestWorld(t *testing.T, a, b *fighter.Fighter) *World {
	t.Helper()
	return New(Config{Seed: "test", Width: 800, Height: 600}, nil, a, b)
}

func stationary(name string, base fighter.BaseStats, abilities ...ability.Definition) *fighter.Fighter {
	base.MoveSpeed = 0
	if base.HP == 0 {
		base.HP = 100
	}
	if base.AttackSpeed == 0 {
		base.AttackSpeed = 1
	}
	return fighter.New(name, base, abilities)
}

func stepN(t *testing.T, w *World, n int, dt float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := w.Step(context.Background(), dt); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
}

func TestImmunityBlocksDamageUntilItLapses(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)

	w.ApplyEffects(context.Background(), []effect.Effect{effect.Immunity(effect.DamagePhysical, 1.5)}, SlotA, SlotB)

	stepN(t, w, 1, 0.1)
	w.ApplyEffects(context.Background(), []effect.Effect{effect.Damage(50, effect.DamagePhysical)}, SlotA, SlotB)
	if b.HP != 100 {
		t.Fatalf("hp after damage at t=0.1 = %v, want 100 (immune)", b.HP)
	}

	stepN(t, w, 15, 0.1)
	w.ApplyEffects(context.Background(), []effect.Effect{effect.Damage(50, effect.DamagePhysical)}, SlotA, SlotB)
	if b.HP != 50 {
		t.Fatalf("hp after damage at t=1.6 = %v, want 50 (immunity lapsed)", b.HP)
	}
}

func TestKnockbackSetsVelocityAndDecaysWithoutReachingZero(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)

	w.ApplyEffects(context.Background(), []effect.Effect{effect.Knockback(100)}, SlotA, SlotB)
	if b.VelX != 50 {
		t.Fatalf("VelX = %v, want force/2 along +x", b.VelX)
	}
	if b.VelY != 0 {
		t.Fatalf("VelY = %v, want 0 on the level axis", b.VelY)
	}

	prev := b.VelX
	for i := 0; i < 50; i++ {
		stepN(t, w, 1, 0.033)
		if b.VelX <= 0 {
			t.Fatalf("VelX = %v after %d ticks, want strictly positive", b.VelX, i+1)
		}
		if b.VelX >= prev {
			t.Fatalf("VelX = %v after %d ticks, want strictly decreasing from %v", b.VelX, i+1, prev)
		}
		prev = b.VelX
	}
}

func TestKnockbackStacksAdditivelyOnVelocity(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)

	w.ApplyEffects(context.Background(), []effect.Effect{effect.Knockback(100), effect.Knockback(60)}, SlotA, SlotB)
	if b.VelX != 80 {
		t.Fatalf("VelX = %v, want 50+30 additive stacking", b.VelX)
	}
}

func TestProjectileExpiresAsPureMiss(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)

	hits := 0
	w.SpawnProjectile(ability.ProjectileSpec{
		Speed:   1,
		MaxTime: 2.0,
		FromX:   0, FromY: 0,
		ToX: 0, ToY: 100,
		OnHit: func(_ context.Context, _ ability.World, _ int) error {
			hits++
			return nil
		},
	})

	stepN(t, w, 3, 0.5)
	if len(w.Projectiles()) != 1 {
		t.Fatalf("projectiles after 1.5s = %d, want still alive", len(w.Projectiles()))
	}

	stepN(t, w, 1, 0.5)
	if len(w.Projectiles()) != 0 {
		t.Fatalf("projectiles after 2.0s = %d, want expired and purged", len(w.Projectiles()))
	}
	if hits != 0 {
		t.Fatalf("hits = %d, want 0 (expiry is a pure miss)", hits)
	}
	if got := w.Telemetry().ProjectileExpiries; got != 1 {
		t.Fatalf("ProjectileExpiries = %d, want 1", got)
	}
}

func TestProjectileResolvesFirstHitOnly(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)

	var hit []int
	w.SpawnProjectile(ability.ProjectileSpec{
		Speed:   100,
		MaxTime: 10,
		FromX:   b.X - 60, FromY: b.Y,
		ToX: b.X, ToY: b.Y,
		OnHit: func(_ context.Context, _ ability.World, target int) error {
			hit = append(hit, target)
			return nil
		},
	})

	stepN(t, w, 10, 0.1)
	if len(hit) != 1 || hit[0] != SlotB {
		t.Fatalf("hits = %v, want a single hit on slot B", hit)
	}
	if len(w.Projectiles()) != 0 {
		t.Fatalf("projectiles after hit = %d, want purged", len(w.Projectiles()))
	}
}

func TestProjectileSpawnedAtCasterSkipsCasterUntilClear(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})

	var hits []int
	bolt := ability.Definition{
		Name:     "bolt",
		Type:     ability.TypeMagical,
		Cooldown: 100,
		Range:    500,
	}
	bolt.OnCast = func(ctx context.Context, w ability.World, caster, target int) error {
		from, _ := w.FighterInfo(caster)
		to, _ := w.FighterInfo(target)
		w.SpawnProjectile(ability.ProjectileSpec{
			Speed:   300,
			MaxTime: 5,
			FromX:   from.X, FromY: from.Y,
			ToX: to.X, ToY: to.Y,
			OnHit: func(ctx context.Context, w ability.World, target int) error {
				hits = append(hits, target)
				w.ApplyEffects(ctx, []effect.Effect{effect.Damage(10, effect.DamageMagical)}, SlotA, target)
				return nil
			},
		})
		return nil
	}
	a.Abilities = []ability.Definition{bolt}
	w := newTestWorld(t, a, b)

	// The projectile starts on the caster and needs a few ticks to leave
	// its hit radius; the caster must not be its first hit.
	stepN(t, w, 3, 0.033)
	if len(hits) != 0 {
		t.Fatalf("hits after spawn ticks = %v, want none while still over the caster", hits)
	}
	if a.HP != 100 {
		t.Fatalf("caster hp = %v, want untouched 100", a.HP)
	}

	stepN(t, w, 60, 0.033)
	if len(hits) != 1 || hits[0] != SlotB {
		t.Fatalf("hits = %v, want a single hit on slot B", hits)
	}
	if a.HP != 100 || b.HP != 90 {
		t.Fatalf("hp a/b = %v/%v, want 100/90", a.HP, b.HP)
	}
}

func TestEligibleCastDealsMitigatedDamageAndArmsCooldown(t *testing.T) {
	slash := ability.Definition{
		Name:     "slash",
		Type:     ability.TypePhysical,
		Cooldown: 1.2,
		Range:    20,
		Effects:  []effect.Effect{effect.Damage(14, effect.DamagePhysical)},
	}
	slash.OnCast = ability.ApplyEffectsCast(slash.Effects)

	a := stationary("a", fighter.BaseStats{AttackSpeed: 1}, slash)
	b := stationary("b", fighter.BaseStats{HP: 100, PhysicalResistance: 20})
	w := newTestWorld(t, a, b)
	b.X = a.X + 15
	b.Y = a.Y

	stepN(t, w, 1, 0.016)

	want := 100 - 14*100.0/120.0
	if math.Abs(b.HP-want) > 1e-9 {
		t.Fatalf("hp = %v, want %v", b.HP, want)
	}
	// Status decay ran before the cast this tick, so the timer still reads
	// its full armed value.
	if got := a.Cooldowns["slash"]; got != 1.2 {
		t.Fatalf("cooldown = %v, want 1.2", got)
	}
	if got := w.Telemetry().Casts; got != 1 {
		t.Fatalf("casts = %d, want 1", got)
	}
}

func TestAtMostOneCastPerFighterPerTick(t *testing.T) {
	casts := make([]string, 0, 2)
	record := func(name string) ability.CastFunc {
		return func(_ context.Context, _ ability.World, _, _ int) error {
			casts = append(casts, name)
			return nil
		}
	}
	first := ability.Definition{Name: "first", Type: ability.TypeStatus, Cooldown: 2, Range: 20, OnCast: record("first")}
	second := ability.Definition{Name: "second", Type: ability.TypeStatus, Cooldown: 2, Range: 20, OnCast: record("second")}

	a := stationary("a", fighter.BaseStats{}, first, second)
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)
	b.X = a.X + 10
	b.Y = a.Y

	stepN(t, w, 1, 0.016)
	if len(casts) != 1 || casts[0] != "first" {
		t.Fatalf("casts = %v, want only the first eligible ability", casts)
	}
}

func TestAttackSpeedScalesCooldownWithFloor(t *testing.T) {
	tests := []struct {
		name        string
		attackSpeed float64
		cooldown    float64
		want        float64
	}{
		{"unit attack speed", 1, 1.2, 1.2},
		{"double attack speed", 2, 1.2, 0.6},
		{"floor applies", 100, 1.2, CooldownFloor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := ability.Definition{Name: "jab", Type: ability.TypePhysical, Cooldown: tt.cooldown, Range: 20}
			def.OnCast = ability.ApplyEffectsCast(nil)
			a := stationary("a", fighter.BaseStats{AttackSpeed: tt.attackSpeed}, def)
			b := stationary("b", fighter.BaseStats{})
			w := newTestWorld(t, a, b)
			b.X = a.X + 10
			b.Y = a.Y

			stepN(t, w, 1, 0.016)
			if got := a.Cooldowns["jab"]; math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("cooldown = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrozenFighterSkipsMovementAndCasting(t *testing.T) {
	def := ability.Definition{Name: "jab", Type: ability.TypePhysical, Cooldown: 2, Range: 20}
	def.OnCast = ability.ApplyEffectsCast(nil)
	a := stationary("a", fighter.BaseStats{}, def)
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)
	b.X = a.X + 10
	b.Y = a.Y

	w.TimeFreeze(SlotA, 0.5)
	x, y := a.X, a.Y

	stepN(t, w, 1, 0.125)
	if a.X != x || a.Y != y {
		t.Fatalf("frozen fighter moved to (%v,%v)", a.X, a.Y)
	}
	if got := w.Telemetry().Casts; got != 0 {
		t.Fatalf("casts = %d, want 0 while frozen", got)
	}
	if a.FreezeTimer != 0.375 {
		t.Fatalf("FreezeTimer = %v, want decremented once by dt", a.FreezeTimer)
	}

	stepN(t, w, 3, 0.125)
	if a.FreezeTimer > 0 {
		t.Fatalf("FreezeTimer = %v, want expired", a.FreezeTimer)
	}
	stepN(t, w, 1, 0.125)
	if got := w.Telemetry().Casts; got != 1 {
		t.Fatalf("casts = %d, want 1 after thawing", got)
	}
}

func TestMeleeClosesInAndRangedKites(t *testing.T) {
	t.Run("melee closes in", func(t *testing.T) {
		def := ability.Definition{Name: "jab", Type: ability.TypePhysical, Cooldown: 2, Range: 20}
		def.OnCast = ability.ApplyEffectsCast(nil)
		a := fighter.New("a", fighter.BaseStats{HP: 100, MoveSpeed: 60, AttackSpeed: 1}, []ability.Definition{def})
		b := stationary("b", fighter.BaseStats{})
		w := newTestWorld(t, a, b)

		before := math.Hypot(b.X-a.X, b.Y-a.Y)
		stepN(t, w, 1, 0.1)
		after := math.Hypot(b.X-a.X, b.Y-a.Y)
		if after >= before {
			t.Fatalf("distance %v -> %v, want melee fighter to close in", before, after)
		}
	})

	t.Run("ranged kites away", func(t *testing.T) {
		def := ability.Definition{Name: "bolt", Type: ability.TypeMagical, Cooldown: 2, Range: 100}
		def.OnCast = ability.ApplyEffectsCast(nil)
		a := fighter.New("a", fighter.BaseStats{HP: 100, MoveSpeed: 60, AttackSpeed: 1}, []ability.Definition{def})
		b := stationary("b", fighter.BaseStats{})
		w := newTestWorld(t, a, b)
		b.X = a.X + 50
		b.Y = a.Y

		// Desired standoff is 0.8 x 100 = 80, so at 50 the caster retreats.
		stepN(t, w, 1, 0.1)
		if got := b.X - a.X; got <= 50 {
			t.Fatalf("separation = %v, want ranged fighter to kite away", got)
		}
	})
}

func TestArenaClampBoundsPosition(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)
	a.X = 1
	a.VelX = -500

	stepN(t, w, 1, 0.1)
	if a.X < 0 {
		t.Fatalf("X = %v, want clamped at arena edge", a.X)
	}
}

func TestHealthFloorClampsAtEndOfTick(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{HP: 10})
	w := newTestWorld(t, a, b)

	w.ApplyEffects(context.Background(), []effect.Effect{effect.Damage(50, effect.DamagePhysical)}, SlotA, SlotB)
	if b.HP >= 0 {
		t.Fatalf("hp = %v before clamp, want negative until the tick ends", b.HP)
	}
	stepN(t, w, 1, 0.016)
	if b.HP != 0 {
		t.Fatalf("hp = %v after tick, want clamped to 0", b.HP)
	}
}

func TestCallbackErrorSurfacesAsSimulationFault(t *testing.T) {
	boom := errors.New("boom")
	def := ability.Definition{
		Name: "explode", Type: ability.TypeStatus, Cooldown: 2, Range: 20,
		OnCast: func(_ context.Context, _ ability.World, _, _ int) error { return boom },
	}
	a := stationary("a", fighter.BaseStats{}, def)
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)
	b.X = a.X + 10
	b.Y = a.Y

	err := w.Step(context.Background(), 0.016)
	var fault *SimulationFault
	if !errors.As(err, &fault) {
		t.Fatalf("Step() error = %T(%v), want *SimulationFault", err, err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Step() error = %v, want wrapped callback error", err)
	}
}

func TestResetRestoresBattleStartState(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)
	startAX, startBX := a.X, b.X

	w.ApplyEffects(context.Background(), []effect.Effect{
		effect.Damage(30, effect.DamagePhysical),
		effect.DamageOverTime(2, 5, effect.DamageMagical),
		effect.Knockback(100),
	}, SlotA, SlotB)
	w.SpawnProjectile(ability.ProjectileSpec{Speed: 10, MaxTime: 10, ToX: 1})
	stepN(t, w, 3, 0.1)

	w.Reset()
	if a.X != startAX || b.X != startBX {
		t.Fatalf("positions after reset = %v/%v, want %v/%v", a.X, b.X, startAX, startBX)
	}
	if b.HP != 100 || len(b.DoTs) != 0 || b.VelX != 0 {
		t.Fatalf("runtime after reset = hp %v, dots %d, velX %v; want pristine", b.HP, len(b.DoTs), b.VelX)
	}
	if len(w.Projectiles()) != 0 || w.Tick() != 0 {
		t.Fatalf("world after reset = %d projectiles, tick %d; want empty, 0", len(w.Projectiles()), w.Tick())
	}
}

func TestDoTAppliedThroughWorldPulsesWholeSeconds(t *testing.T) {
	a := stationary("a", fighter.BaseStats{})
	b := stationary("b", fighter.BaseStats{})
	w := newTestWorld(t, a, b)

	// Ten 0.3s slices sum to just under 3.0 in float64; the final pulse
	// must still fire.
	w.ApplyEffects(context.Background(), []effect.Effect{effect.DamageOverTime(3, 3, effect.DamagePhysical)}, SlotA, SlotB)
	stepN(t, w, 10, 0.3)
	if b.HP != 91 {
		t.Fatalf("hp = %v after 3.0s of 3dps/3s, want 91", b.HP)
	}
	if got := w.Telemetry().DamagePulses; got != 3 {
		t.Fatalf("pulses = %d, want 3", got)
	}
	if len(b.DoTs) != 0 {
		t.Fatalf("DoTs = %d, want exhausted record removed", len(b.DoTs))
	}
}
