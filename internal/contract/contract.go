// Package contract defines the JSON build records exchanged with the editor
// and import/export collaborators. The engine consumes these records; it
// never renders the sprite or edits the stats itself.
package contract

import (
	"encoding/json"
	"fmt"
	"io"

	"duelgrid/server/internal/fighter"
)

// SpriteLength is the fixed sprite payload size: 16x16 cells, row-major,
// null meaning transparent.
const SpriteLength = 256

// CurrentVersion is the combined record version this engine reads and
// writes.
const CurrentVersion = 1

// Stats mirrors fighter.BaseStats on the wire.
type Stats struct {
	HP                 float64 `json:"hp" jsonschema:"title=Health pool,minimum=1"`
	PhysicalStrength   float64 `json:"physicalStrength" jsonschema:"minimum=0"`
	PhysicalResistance float64 `json:"physicalResistance" jsonschema:"minimum=0"`
	MagicalPower       float64 `json:"magicalPower" jsonschema:"minimum=0"`
	MagicalResistance  float64 `json:"magicalResistance" jsonschema:"minimum=0"`
	MoveSpeed          float64 `json:"moveSpeed" jsonschema:"minimum=0"`
	AttackSpeed        float64 `json:"attackSpeed" jsonschema:"title=Cooldown divisor,minimum=0.1"`
	CanFly             bool    `json:"canFly"`
}

// BaseStats converts the wire stats into the engine's immutable stat block.
func (s Stats) BaseStats() fighter.BaseStats {
	return fighter.BaseStats{
		HP:                 s.HP,
		PhysicalStrength:   s.PhysicalStrength,
		PhysicalResistance: s.PhysicalResistance,
		MagicalPower:       s.MagicalPower,
		MagicalResistance:  s.MagicalResistance,
		MoveSpeed:          s.MoveSpeed,
		AttackSpeed:        s.AttackSpeed,
		CanFly:             s.CanFly,
	}
}

// BuildRecord is one authored fighter: identity, pixel sprite, stat block,
// and the ability script source text.
type BuildRecord struct {
	Name      string    `json:"name" jsonschema:"title=Fighter name,minLength=1"`
	Sprite    []*string `json:"sprite" jsonschema:"title=16x16 row-major sprite,description=256 nullable color values; null cells are transparent"`
	Stats     Stats     `json:"stats"`
	Abilities string    `json:"abilities" jsonschema:"title=Ability script source"`
}

// CombinedBuildRecord pairs two builds for a battle.
type CombinedBuildRecord struct {
	FighterA BuildRecord `json:"fighterA"`
	FighterB BuildRecord `json:"fighterB"`
	Version  int         `json:"version" jsonschema:"minimum=1"`
}

// Validate checks the structural rules the editor is supposed to uphold. A
// nil sprite is accepted as fully transparent.
func (r BuildRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("build record: name is required")
	}
	if r.Sprite != nil && len(r.Sprite) != SpriteLength {
		return fmt.Errorf("build record %q: sprite has %d cells, want %d", r.Name, len(r.Sprite), SpriteLength)
	}
	if !(r.Stats.HP > 0) {
		return fmt.Errorf("build record %q: hp must be positive, got %v", r.Name, r.Stats.HP)
	}
	if !(r.Stats.AttackSpeed > 0) {
		return fmt.Errorf("build record %q: attackSpeed must be positive, got %v", r.Name, r.Stats.AttackSpeed)
	}
	if r.Stats.MoveSpeed < 0 {
		return fmt.Errorf("build record %q: moveSpeed must be non-negative, got %v", r.Name, r.Stats.MoveSpeed)
	}
	if r.Stats.PhysicalResistance < 0 || r.Stats.MagicalResistance < 0 {
		return fmt.Errorf("build record %q: resistances must be non-negative", r.Name)
	}
	if r.Abilities == "" {
		return fmt.Errorf("build record %q: ability script source is required", r.Name)
	}
	return nil
}

func (r CombinedBuildRecord) Validate() error {
	if r.Version != CurrentVersion {
		return fmt.Errorf("combined build record: unsupported version %d, want %d", r.Version, CurrentVersion)
	}
	if err := r.FighterA.Validate(); err != nil {
		return fmt.Errorf("fighterA: %w", err)
	}
	if err := r.FighterB.Validate(); err != nil {
		return fmt.Errorf("fighterB: %w", err)
	}
	return nil
}

// DecodeCombined parses and validates a combined build record. Unknown
// fields are rejected so editor typos surface at import time.
func DecodeCombined(reader io.Reader) (CombinedBuildRecord, error) {
	var record CombinedBuildRecord
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&record); err != nil {
		return CombinedBuildRecord{}, fmt.Errorf("decode combined build record: %w", err)
	}
	if err := record.Validate(); err != nil {
		return CombinedBuildRecord{}, err
	}
	return record, nil
}

// EncodeCombined writes a validated combined build record as indented JSON.
func EncodeCombined(writer io.Writer, record CombinedBuildRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(record); err != nil {
		return fmt.Errorf("encode combined build record: %w", err)
	}
	return nil
}
