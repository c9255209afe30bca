package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPresets(t *testing.T) {
	content := `presets:
  quick:
    objective: sphere
    dimension: 5
    sigma: 0.3
    maxIter: 100
    seed: 7
  hard:
    objective: rosenbrock
    dimension: 20
    sigma: 0.1
    lambda: 16
    maxEvals: 50000
    verbDisp: 10
    checkpointEvery: 50
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	quick, err := cfg.Preset("quick")
	if err != nil {
		t.Fatalf("Preset failed: %v", err)
	}
	if quick.Objective != "sphere" || quick.Dimension != 5 || quick.Sigma != 0.3 {
		t.Errorf("quick preset = %+v", quick)
	}
	if quick.Seed != 7 {
		t.Errorf("Seed = %d, expected 7", quick.Seed)
	}

	hard, err := cfg.Preset("hard")
	if err != nil {
		t.Fatalf("Preset failed: %v", err)
	}
	if hard.Lambda != 16 || hard.MaxEvals != 50000 || hard.CheckpointEvery != 50 {
		t.Errorf("hard preset = %+v", hard)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("presets: [not a map"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestPresetUnknown(t *testing.T) {
	cfg := &Config{Presets: map[string]Run{}}
	if _, err := cfg.Preset("missing"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
}

func TestDefaultRunIsValid(t *testing.T) {
	if err := DefaultRun().Validate(); err != nil {
		t.Errorf("default run rejected: %v", err)
	}
}

func TestRunValidate(t *testing.T) {
	base := DefaultRun()

	tests := []struct {
		name   string
		mutate func(*Run)
	}{
		{"empty objective", func(r *Run) { r.Objective = "" }},
		{"zero dimension", func(r *Run) { r.Dimension = 0 }},
		{"negative sigma", func(r *Run) { r.Sigma = -1 }},
		{"negative lambda", func(r *Run) { r.Lambda = -2 }},
		{"negative maxIter", func(r *Run) { r.MaxIter = -1 }},
		{"negative maxEvals", func(r *Run) { r.MaxEvals = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
