package fighter

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"duelgrid/server/internal/ability"
	"duelgrid/server/internal/effect"
)

// BaseStats holds the authored attribute block. It is immutable for the
// duration of a battle once the fighter is constructed.
type BaseStats struct {
	HP                 float64
	PhysicalStrength   float64
	PhysicalResistance float64
	MagicalPower       float64
	MagicalResistance  float64
	MoveSpeed          float64
	AttackSpeed        float64
	CanFly             bool
}

// DoT is a standing damage record owned by the target. Records stack
// independently; like records are never merged.
type DoT struct {
	DPS         float64
	Remaining   float64
	Accumulator float64
	Kind        effect.DamageKind
}

// Fighter owns one combatant's runtime state. All mutation happens through
// the world's tick phases; nothing here is safe for concurrent use.
type Fighter struct {
	ID   string
	Name string
	Base BaseStats

	HP     float64
	X, Y   float64
	VelX   float64
	VelY   float64
	Facing float64

	DoTs        []DoT
	Immunities  effect.Channels
	FreezeTimer float64
	Cooldowns   map[string]float64

	Abilities []ability.Definition
}

// NewInstanceID mints a battle-unique fighter id from the authored name.
func NewInstanceID(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	if slug == "" {
		slug = "fighter"
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString())
}

// New constructs a fighter at full health with all timers cleared.
func New(name string, base BaseStats, abilities []ability.Definition) *Fighter {
	return &Fighter{
		ID:        NewInstanceID(name),
		Name:      name,
		Base:      base,
		HP:        base.HP,
		Facing:    1,
		Cooldowns: make(map[string]float64),
		Abilities: abilities,
	}
}

// ResetRuntime restores the fighter to its battle-start state at the given
// position. Base stats and the ability list survive untouched.
func (f *Fighter) ResetRuntime(x, y float64) {
	if f == nil {
		return
	}
	f.HP = f.Base.HP
	f.X = x
	f.Y = y
	f.VelX = 0
	f.VelY = 0
	f.Facing = 1
	f.DoTs = nil
	f.Immunities = effect.Channels{}
	f.FreezeTimer = 0
	f.Cooldowns = make(map[string]float64)
}

// MaxRange returns the largest range across the fighter's abilities.
func (f *Fighter) MaxRange() float64 {
	max := 0.0
	for _, def := range f.Abilities {
		if def.Range > max {
			max = def.Range
		}
	}
	return max
}

// CooldownReady reports whether the named ability is off cooldown.
func (f *Fighter) CooldownReady(name string) bool {
	return f.Cooldowns[name] <= 0
}

// SetCooldown arms the named ability's cooldown timer.
func (f *Fighter) SetCooldown(name string, seconds float64) {
	if f.Cooldowns == nil {
		f.Cooldowns = make(map[string]float64)
	}
	f.Cooldowns[name] = seconds
}

// ClampHealth enforces the HP floor at the end of a tick. Health is never
// restored by clamping.
func (f *Fighter) ClampHealth() {
	if f.HP < 0 {
		f.HP = 0
	}
}
