package ability

import (
	"context"
	"fmt"

	"duelgrid/server/internal/effect"
)

// ValidType reports whether the value names a known ability type.
func ValidType(t Type) bool {
	switch t {
	case TypePhysical, TypeMagical, TypeBoth, TypeStatus:
		return true
	default:
		return false
	}
}

// Validate checks a definition against the authoring rules. It never mutates
// the definition and is idempotent, so it can run both on sandbox output and
// after normalization.
func Validate(def Definition) error {
	if !ValidType(def.Type) {
		return fmt.Errorf("ability %q: unknown type %q", def.Name, def.Type)
	}
	if !(def.Cooldown > 0) {
		return fmt.Errorf("ability %q: cooldown must be positive, got %v", def.Name, def.Cooldown)
	}
	if def.Range < 0 {
		return fmt.Errorf("ability %q: range must be non-negative, got %v", def.Name, def.Range)
	}
	return nil
}

// Normalize binds the default cast to a definition missing one and validates
// the result. Scalar defaults are not filled here: only the script factory
// can tell an absent field from an authored zero, so it substitutes the
// Default* constants before the record reaches this point.
func Normalize(def Definition) (Definition, error) {
	if def.OnCast == nil {
		def.OnCast = ApplyEffectsCast(def.Effects)
	}
	if err := Validate(def); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// ApplyEffectsCast is the default cast behavior: apply the ability's own
// effect list to the target immediately.
func ApplyEffectsCast(effects []effect.Effect) CastFunc {
	return func(ctx context.Context, w World, caster, target int) error {
		if w == nil {
			return nil
		}
		w.ApplyEffects(ctx, effects, caster, target)
		return nil
	}
}
