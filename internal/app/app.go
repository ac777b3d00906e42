// Package app wires the headless battle runner: configuration, build
// import, script compilation, and the frame loop.
package app

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"duelgrid/server/internal/config"
	"duelgrid/server/internal/contract"
	"duelgrid/server/internal/fighter"
	"duelgrid/server/internal/script"
	"duelgrid/server/internal/sim"
	"duelgrid/server/internal/world"
	"duelgrid/server/logging"
	"duelgrid/server/logging/sinks"
)

// Report is the runner's final summary, printed as JSON on exit.
type Report struct {
	Outcome   string          `json:"outcome"`
	Ticks     uint64          `json:"ticks"`
	Elapsed   float64         `json:"elapsed"`
	Snapshot  world.Snapshot  `json:"snapshot"`
	Telemetry world.Telemetry `json:"telemetry"`
}

// Run executes one headless battle from the given CLI arguments and writes
// the report to stdout.
func Run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("duelsim", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to the YAML service configuration")
	buildPath := flags.String("build", "", "path to the combined build record JSON (overrides the config)")
	verbose := flags.Bool("verbose", false, "emit debug-severity events")
	if err := flags.Parse(args); err != nil {
		return err
	}

	service, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *buildPath != "" {
		service.BuildPath = *buildPath
	}
	if service.BuildPath == "" {
		return fmt.Errorf("no build record: set buildPath in the config or pass -build")
	}

	logCfg := logging.DefaultConfig()
	if *verbose {
		logCfg.MinimumSeverity = logging.SeverityDebug
	}
	logCfg.Fields = map[string]any{"seed": service.Arena.Seed}
	router := logging.NewRouter(logging.SystemClock{}, logCfg, []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsoleSink(os.Stderr)},
	})
	defer router.Close(ctx)

	report, err := runBattle(ctx, service, router)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func runBattle(ctx context.Context, service config.Service, pub logging.Publisher) (Report, error) {
	buildFile, err := os.Open(service.BuildPath)
	if err != nil {
		return Report{}, fmt.Errorf("open build record: %w", err)
	}
	defer buildFile.Close()
	combined, err := contract.DecodeCombined(buildFile)
	if err != nil {
		return Report{}, err
	}

	a := fighter.New(combined.FighterA.Name, combined.FighterA.Stats.BaseStats(), nil)
	b := fighter.New(combined.FighterB.Name, combined.FighterB.Stats.BaseStats(), nil)
	w := world.New(service.Arena, pub, a, b)

	// Scripts draw randomness from the world's seeded stream, so a given
	// seed and build pair replays identically.
	for _, slot := range []struct {
		f      *fighter.Fighter
		record contract.BuildRecord
	}{
		{a, combined.FighterA},
		{b, combined.FighterB},
	} {
		loader := script.NewLoader(pub, script.Options{
			Name:   slot.record.Name,
			Budget: service.ScriptBudget(),
			Rand:   w.Rand,
		})
		if err := loader.Reload(ctx, 0, slot.record.Abilities); err != nil {
			return Report{}, fmt.Errorf("load abilities for %s: %w", slot.record.Name, err)
		}
		slot.f.Abilities = loader.Abilities()
		defer loader.Close()
	}

	clock := sim.NewClock(w, pub)
	frame := service.FrameInterval()
	now := time.Unix(0, 0)
	clock.Start(ctx, now)

	report := Report{Outcome: "tick budget exhausted"}
	for {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		now = now.Add(frame)
		if err := clock.Advance(ctx, now); err != nil {
			return Report{}, err
		}
		if service.MaxTicks > 0 && w.Tick() >= service.MaxTicks {
			break
		}
		if name, done := healthDepleted(w); done {
			report.Outcome = fmt.Sprintf("%s health depleted", name)
			break
		}
	}

	report.Ticks = w.Tick()
	report.Elapsed = clock.Elapsed()
	report.Snapshot = w.Snapshot()
	report.Telemetry = w.Telemetry()
	return report, nil
}

// healthDepleted reports the first fighter whose pool emptied. The engine
// has no win rule; stopping here is the runner's convenience.
func healthDepleted(w *world.World) (string, bool) {
	for _, slot := range []int{world.SlotA, world.SlotB} {
		f := w.Fighter(slot)
		if f != nil && f.HP <= 0 {
			return f.Name, true
		}
	}
	return "", false
}
