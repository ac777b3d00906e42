package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"duelgrid/server/internal/config"
	"duelgrid/server/internal/contract"
	"duelgrid/server/logging"
)

func writeBuildFile(t *testing.T) string {
	t.Helper()
	combined := contract.CombinedBuildRecord{
		Version: contract.CurrentVersion,
		FighterA: contract.BuildRecord{
			Name:  "bruiser",
			Stats: contract.Stats{HP: 100, AttackSpeed: 1, MoveSpeed: 100, PhysicalStrength: 10},
			Abilities: `return { ability{
				name = "slash",
				type = "physical",
				cooldown = 0.5,
				range = 20,
				effects = { damage(30, "physical") },
			} }`,
		},
		FighterB: contract.BuildRecord{
			Name:      "dummy",
			Stats:     contract.Stats{HP: 50, AttackSpeed: 1, MoveSpeed: 0},
			Abilities: `return { ability{ name = "guard" } }`,
		},
	}

	path := filepath.Join(t.TempDir(), "duel.json")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create build file: %v", err)
	}
	defer file.Close()
	if err := contract.EncodeCombined(file, combined); err != nil {
		t.Fatalf("encode build file: %v", err)
	}
	return path
}

func TestRunBattleEndsWhenHealthDepletes(t *testing.T) {
	service := config.Default()
	service.BuildPath = writeBuildFile(t)
	service.MaxTicks = 5000

	report, err := runBattle(context.Background(), service, logging.NopPublisher())
	if err != nil {
		t.Fatalf("runBattle() error = %v", err)
	}
	if !strings.Contains(report.Outcome, "dummy") {
		t.Fatalf("Outcome = %q, want dummy's health pool to empty", report.Outcome)
	}
	if report.Ticks == 0 || report.Ticks >= 5000 {
		t.Fatalf("Ticks = %d, want the bruiser to close in and finish early", report.Ticks)
	}
	if report.Snapshot.Fighters[1].HP != 0 {
		t.Fatalf("dummy hp = %v, want 0", report.Snapshot.Fighters[1].HP)
	}
	if report.Telemetry.Casts == 0 {
		t.Fatal("Telemetry.Casts = 0, want at least one cast")
	}
}

func TestRunBattleRejectsBrokenScript(t *testing.T) {
	combined := contract.CombinedBuildRecord{
		Version:  contract.CurrentVersion,
		FighterA: contract.BuildRecord{Name: "a", Stats: contract.Stats{HP: 1, AttackSpeed: 1}, Abilities: `return {{{`},
		FighterB: contract.BuildRecord{Name: "b", Stats: contract.Stats{HP: 1, AttackSpeed: 1}, Abilities: `return { ability{ name = "x" } }`},
	}
	path := filepath.Join(t.TempDir(), "duel.json")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create build file: %v", err)
	}
	if err := contract.EncodeCombined(file, combined); err != nil {
		t.Fatalf("encode build file: %v", err)
	}
	file.Close()

	service := config.Default()
	service.BuildPath = path
	service.MaxTicks = 10

	if _, err := runBattle(context.Background(), service, logging.NopPublisher()); err == nil {
		t.Fatal("runBattle() error = nil, want script rejection")
	}
}

func TestRunBattleStopsAtTickBudget(t *testing.T) {
	// Two pacifists never end the fight; the tick budget does.
	combined := contract.CombinedBuildRecord{
		Version: contract.CurrentVersion,
		FighterA: contract.BuildRecord{
			Name:      "idler-a",
			Stats:     contract.Stats{HP: 10, AttackSpeed: 1},
			Abilities: `return { ability{ name = "wait", range = 0 } }`,
		},
		FighterB: contract.BuildRecord{
			Name:      "idler-b",
			Stats:     contract.Stats{HP: 10, AttackSpeed: 1},
			Abilities: `return { ability{ name = "wait", range = 0 } }`,
		},
	}
	path := filepath.Join(t.TempDir(), "duel.json")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create build file: %v", err)
	}
	if err := contract.EncodeCombined(file, combined); err != nil {
		t.Fatalf("encode build file: %v", err)
	}
	file.Close()

	service := config.Default()
	service.BuildPath = path
	service.MaxTicks = 50

	report, err := runBattle(context.Background(), service, logging.NopPublisher())
	if err != nil {
		t.Fatalf("runBattle() error = %v", err)
	}
	if report.Ticks != 50 {
		t.Fatalf("Ticks = %d, want the 50-tick budget to stop the run", report.Ticks)
	}
	if report.Outcome != "tick budget exhausted" {
		t.Fatalf("Outcome = %q", report.Outcome)
	}
}