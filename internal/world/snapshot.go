package world

import "duelgrid/server/internal/ability"

// FighterSnapshot is the render-facing view of one fighter.
type FighterSnapshot struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	Facing      float64            `json:"facing"`
	HP          float64            `json:"hp"`
	MaxHP       float64            `json:"maxHp"`
	Frozen      bool               `json:"frozen"`
	ActiveDoTs  int                `json:"activeDots"`
	Cooldowns   map[string]float64 `json:"cooldowns"`
}

// ProjectileSnapshot is the render-facing view of one live projectile.
type ProjectileSnapshot struct {
	ID    string        `json:"id"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	Shape ability.Shape `json:"shape"`
	Tint  string        `json:"tint"`
	TTL   float64       `json:"ttl"`
}

// Snapshot is the state the rendering collaborator consumes after each
// frame. It shares nothing with live simulation state.
type Snapshot struct {
	Tick        uint64               `json:"tick"`
	Fighters    [2]FighterSnapshot   `json:"fighters"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
}

func (w *World) Snapshot() Snapshot {
	if w == nil {
		return Snapshot{}
	}
	snap := Snapshot{Tick: w.currentTick}
	for i, f := range w.fighters {
		if f == nil {
			continue
		}
		cooldowns := make(map[string]float64, len(f.Cooldowns))
		for name, remaining := range f.Cooldowns {
			cooldowns[name] = remaining
		}
		snap.Fighters[i] = FighterSnapshot{
			ID:         f.ID,
			Name:       f.Name,
			X:          f.X,
			Y:          f.Y,
			Facing:     f.Facing,
			HP:         f.HP,
			MaxHP:      f.Base.HP,
			Frozen:     f.FreezeTimer > 0,
			ActiveDoTs: len(f.DoTs),
			Cooldowns:  cooldowns,
		}
	}
	if len(w.projectiles) > 0 {
		snap.Projectiles = make([]ProjectileSnapshot, 0, len(w.projectiles))
		for _, p := range w.projectiles {
			snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
				ID:    p.ID,
				X:     p.X,
				Y:     p.Y,
				Shape: p.Shape,
				Tint:  p.Tint,
				TTL:   p.TTL,
			})
		}
	}
	return snap
}
