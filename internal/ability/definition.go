package ability

import (
	"context"

	"duelgrid/server/internal/effect"
)

// Type classifies an ability for authoring purposes. The status type marks
// abilities that only grant or manipulate standing effects.
type Type string

const (
	TypePhysical Type = "physical"
	TypeMagical  Type = "magical"
	TypeBoth     Type = "both"
	TypeStatus   Type = "status"
)

// Defaults applied when an authored ability omits an optional field.
const (
	DefaultType     = TypeStatus
	DefaultCooldown = 2.0
	DefaultRange    = 20.0
)

// CastFunc runs when the owning fighter casts the ability. Fighters are
// addressed by their stable index in the world's pair so callbacks never hold
// live references. The context is the running tick's; errors abort the tick.
type CastFunc func(ctx context.Context, w World, caster, target int) error

// HitFunc runs when a projectile collides with a fighter.
type HitFunc func(ctx context.Context, w World, target int) error

// Definition is a validated, normalized ability record. Order matters inside
// a fighter's ability list: the first eligible entry wins each tick.
type Definition struct {
	Name     string
	Type     Type
	Cooldown float64
	Range    float64
	Effects  []effect.Effect
	OnCast   CastFunc
}

// ShapeKind names the projectile silhouettes the rendering collaborator knows
// how to draw.
type ShapeKind string

const (
	ShapeCircle ShapeKind = "circle"
	ShapeSquare ShapeKind = "square"
)

// Shape describes a projectile silhouette. Size is the radius for circles and
// the edge length for squares.
type Shape struct {
	Kind ShapeKind
	Size float64
}

// Circle builds a circular shape descriptor.
func Circle(radius float64) Shape { return Shape{Kind: ShapeCircle, Size: radius} }

// Square builds a square shape descriptor.
func Square(size float64) Shape { return Shape{Kind: ShapeSquare, Size: size} }

// ProjectileSpec carries everything the world needs to spawn a projectile.
// Velocity is fixed at spawn from the From→To direction; the projectile never
// re-aims.
type ProjectileSpec struct {
	Speed   float64
	MaxTime float64
	FromX   float64
	FromY   float64
	ToX     float64
	ToY     float64
	Shape   Shape
	Tint    string
	OnHit   HitFunc
}

// FighterInfo is the read-only fighter view exposed to scripted callbacks.
type FighterInfo struct {
	ID   string
	Name string
	X    float64
	Y    float64
	HP   float64
}

// World is the capability surface handed to ability callbacks. It is the
// callbacks' entire interaction surface with the engine.
type World interface {
	// ApplyEffects resolves the effects in list order from caster onto target.
	ApplyEffects(ctx context.Context, effects []effect.Effect, caster, target int)
	// SpawnProjectile registers a moving hitbox owned by the world.
	SpawnProjectile(spec ProjectileSpec)
	// TimeFreeze suspends the target's movement and casting, keeping the
	// longer of the current and new timers.
	TimeFreeze(target int, durationSeconds float64)
	// FighterInfo returns a snapshot of the fighter at the given index.
	FighterInfo(index int) (FighterInfo, bool)
}
