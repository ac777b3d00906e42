package world

import (
	"context"
	"fmt"
	"math"

	"duelgrid/server/internal/ability"
	logscripts "duelgrid/server/logging/scripts"
)

// HitRadius is the fixed collision radius between a projectile and a
// fighter, in pixels.
const HitRadius = 18.0

// Projectile is a moving hitbox owned by the world. Velocity is fixed at
// spawn; the projectile never re-aims. It resolves at most one hit and is
// purged at the end of the update pass once dead.
//
// Owner is the slot that was casting when the projectile spawned, or -1.
// Scripts spawn from the caster's own position, so the owner stays exempt
// from collision until the projectile has left its hit radius once; after
// that it can be hit like any other fighter.
type Projectile struct {
	ID      string
	X, Y    float64
	VelX    float64
	VelY    float64
	TTL     float64
	Shape   ability.Shape
	Tint    string
	OnHit   ability.HitFunc
	Owner   int
	Escaped bool
	Alive   bool
}

// SpawnProjectile registers a projectile from the given spec. The velocity
// is the unit vector from From to To scaled by Speed; a degenerate zero
// distance leaves the projectile stationary until it expires.
func (w *World) SpawnProjectile(spec ability.ProjectileSpec) {
	if w == nil {
		return
	}
	dx := spec.ToX - spec.FromX
	dy := spec.ToY - spec.FromY
	length := math.Hypot(dx, dy)
	var velX, velY float64
	if length > 0 {
		velX = dx / length * spec.Speed
		velY = dy / length * spec.Speed
	}
	w.nextProjID++
	w.projectiles = append(w.projectiles, &Projectile{
		ID:    fmt.Sprintf("projectile-%d", w.nextProjID),
		X:     spec.FromX,
		Y:     spec.FromY,
		VelX:  velX,
		VelY:  velY,
		TTL:   spec.MaxTime,
		Shape: spec.Shape,
		Tint:  spec.Tint,
		OnHit: spec.OnHit,
		Owner: w.castingSlot,
		Alive: true,
	})
	w.telemetry.ProjectilesSpawned++
}

// projectilePhase advances every live projectile, resolves first-hit
// collisions, and purges the dead. An on_hit error aborts the pass.
func (w *World) projectilePhase(ctx context.Context, dt float64) error {
	for _, p := range w.projectiles {
		if !p.Alive {
			continue
		}
		p.TTL -= dt
		if p.TTL <= 0 {
			// Expiry is a pure miss: no effect fires.
			p.Alive = false
			w.telemetry.ProjectileExpiries++
			continue
		}
		p.X += p.VelX * dt
		p.Y += p.VelY * dt

		// The latch flips once the projectile clears the caster; until
		// then the caster slot cannot be its own first hit.
		if !p.Escaped && p.Owner >= 0 {
			if owner := w.Fighter(p.Owner); owner == nil || math.Hypot(owner.X-p.X, owner.Y-p.Y) > HitRadius {
				p.Escaped = true
			}
		}

		for i, f := range w.fighters {
			if f == nil {
				continue
			}
			if i == p.Owner && !p.Escaped {
				continue
			}
			if math.Hypot(f.X-p.X, f.Y-p.Y) > HitRadius {
				continue
			}
			p.Alive = false
			w.telemetry.ProjectileHits++
			if p.OnHit != nil {
				if err := p.OnHit(ctx, w, i); err != nil {
					logscripts.CallbackFault(ctx, w.pub, w.currentTick, w.fighterRef(i), logscripts.CallbackFaultPayload{
						Script:   p.ID,
						Callback: "on_hit",
						Error:    err.Error(),
					}, nil)
					w.purgeProjectiles()
					return err
				}
			}
			break
		}
	}
	w.purgeProjectiles()
	return nil
}

func (w *World) purgeProjectiles() {
	kept := w.projectiles[:0]
	for _, p := range w.projectiles {
		if p.Alive {
			kept = append(kept, p)
		}
	}
	// Drop trailing pointers so purged projectiles can be collected.
	for i := len(kept); i < len(w.projectiles); i++ {
		w.projectiles[i] = nil
	}
	w.projectiles = kept
}

// Projectiles returns the live projectiles for rendering.
func (w *World) Projectiles() []*Projectile {
	if w == nil {
		return nil
	}
	out := make([]*Projectile, len(w.projectiles))
	copy(out, w.projectiles)
	return out
}
