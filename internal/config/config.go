// Package config loads the runner's service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"duelgrid/server/internal/world"
)

const (
	DefaultFrameRate      = 60
	DefaultMaxTicks       = 0
	DefaultScriptBudgetMS = 50
)

// Service is the top-level configuration for the headless battle runner.
type Service struct {
	// Arena configures the world instance.
	Arena world.Config `yaml:"arena"`
	// FrameRate is the simulated frames per second.
	FrameRate int `yaml:"frameRate"`
	// MaxTicks stops the runner after this many ticks; 0 runs until a
	// health pool empties. Combat itself has no terminal state, so this is
	// an operator convenience, not an engine rule.
	MaxTicks uint64 `yaml:"maxTicks"`
	// ScriptBudgetMS bounds each script invocation in milliseconds.
	ScriptBudgetMS int `yaml:"scriptBudgetMs"`
	// BuildPath points at the combined build record JSON.
	BuildPath string `yaml:"buildPath"`
}

func (s Service) normalized() Service {
	normalized := s
	normalized.Arena = normalized.Arena.Normalized()
	if normalized.FrameRate <= 0 {
		normalized.FrameRate = DefaultFrameRate
	}
	if normalized.ScriptBudgetMS <= 0 {
		normalized.ScriptBudgetMS = DefaultScriptBudgetMS
	}
	return normalized
}

func (s Service) Normalized() Service {
	return s.normalized()
}

// ScriptBudget returns the per-invocation budget as a duration.
func (s Service) ScriptBudget() time.Duration {
	return time.Duration(s.ScriptBudgetMS) * time.Millisecond
}

// FrameInterval returns the wall-time spacing between simulated frames.
func (s Service) FrameInterval() time.Duration {
	return time.Second / time.Duration(s.FrameRate)
}

func Default() Service {
	return Service{
		Arena:          world.DefaultConfig(),
		FrameRate:      DefaultFrameRate,
		MaxTicks:       DefaultMaxTicks,
		ScriptBudgetMS: DefaultScriptBudgetMS,
	}
}

// Load reads a YAML service configuration and fills defaults for anything
// omitted. An empty path returns the defaults outright.
func Load(path string) (Service, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Service{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var service Service
	if err := yaml.Unmarshal(raw, &service); err != nil {
		return Service{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return service.normalized(), nil
}
