package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/starfield/systems"
)

func TestDefaultsLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.StarCount <= 0 {
		t.Errorf("star_count = %d", cfg.Simulation.StarCount)
	}
	if cfg.Derived.DT32 != float32(cfg.Simulation.DT) {
		t.Errorf("DT32 = %v, want %v", cfg.Derived.DT32, cfg.Simulation.DT)
	}
	want := cfg.Simulation.MaxSpawnRange + cfg.Camera.SizeOffset
	if cfg.Derived.InitialCameraSize != want {
		t.Errorf("InitialCameraSize = %g, want %g", cfg.Derived.InitialCameraSize, want)
	}
	if len(cfg.Render.BandColors) == 0 {
		t.Error("expected default band colours")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	data := []byte("gravity:\n  constant: -2.5\ngrid:\n  subdivisions: 8\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gravity.Constant != -2.5 {
		t.Errorf("constant = %g, want -2.5", cfg.Gravity.Constant)
	}
	if cfg.Grid.Subdivisions != 8 {
		t.Errorf("subdivisions = %d, want 8", cfg.Grid.Subdivisions)
	}

	defaults, _ := Defaults()
	if cfg.Bodies.ContactRadius != defaults.Bodies.ContactRadius {
		t.Errorf("contact_radius not inherited from defaults")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantSent error
	}{
		{"zero subdivisions", "grid:\n  subdivisions: 0\n", systems.ErrInvalidParams},
		{"retention above one", "collision:\n  mass_retention: 2\n", systems.ErrInvalidParams},
		{"zero contact radius", "bodies:\n  contact_radius: 0\n", systems.ErrInvalidParams},
		{"zero dt", "simulation:\n  dt: 0\n", nil},
		{"inverted zoom", "camera:\n  zoom_min: 5\n  zoom_max: 1\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantSent != nil && !errors.Is(err, tt.wantSent) {
				t.Errorf("error %v does not wrap %v", err, tt.wantSent)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParamsMapping(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Gravity.MaxAbsConstant = 7
	cfg.Collision.MassSurvivalRatio = 2
	cfg.Simulation.Workers = 3

	p := cfg.Params()
	if p.MaxAbsGravitationalConstant != 7 || p.MassSurvivalRatio != 2 || p.Workers != 3 {
		t.Errorf("params not mapped: %+v", p)
	}
	if p.MassRange != cfg.Bodies.MassRange {
		t.Errorf("mass range = %v, want %v", p.MassRange, cfg.Bodies.MassRange)
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Gravity.RampRatePerSecond = -0.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Gravity.RampRatePerSecond != -0.25 {
		t.Errorf("ramp rate = %g after round trip", back.Gravity.RampRatePerSecond)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	t.Cleanup(func() { global = saved })

	defer func() {
		if recover() == nil {
			t.Error("Cfg should panic before Init")
		}
	}()
	Cfg()
}
