package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hybridpetri/simcore/sim"
)

func TestLoadSettingsOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	body := `
durationSeconds: 120
dtMode: manual
dtManual: 0.05
conflictPolicy: random
rngSeed: 42
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.DtMode != sim.DtManual {
		t.Fatalf("expected dtMode manual, got %v", got.DtMode)
	}
	if got.DtManual != 0.05 {
		t.Fatalf("expected dtManual 0.05, got %v", got.DtManual)
	}
	if got.ConflictPolicy != sim.RandomPolicy {
		t.Fatalf("expected conflictPolicy random, got %v", got.ConflictPolicy)
	}
	if got.DurationSeconds == nil || *got.DurationSeconds != 120 {
		t.Fatalf("expected durationSeconds 120, got %v", got.DurationSeconds)
	}
	if got.RngSeed == nil || *got.RngSeed != 42 {
		t.Fatalf("expected rngSeed 42, got %v", got.RngSeed)
	}
	// fields absent from the file keep the sim.DefaultSettings() value.
	if got.TargetSteps != sim.DefaultSettings().TargetSteps {
		t.Fatalf("expected default targetSteps to survive, got %v", got.TargetSteps)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
