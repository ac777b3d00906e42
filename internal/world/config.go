package world

import "strings"

const (
	DefaultSeed   = "duel"
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// Config describes one arena instance.
type Config struct {
	Seed   string  `json:"seed" yaml:"seed"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

func DefaultConfig() Config {
	return Config{
		Seed:   DefaultSeed,
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}
