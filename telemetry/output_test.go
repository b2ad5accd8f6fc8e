package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/systems"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Methods on a nil manager are no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteCollisions([]CollisionRecord{{}}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" || om.Close() != nil {
		t.Error("nil manager should report nothing")
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int32(i * 100), Live: 50 - i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 100); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkRegimeChange, Tick: 200, Description: "flip"}); err != nil {
		t.Fatal(err)
	}
	col := systems.Collision{A: 1, B: 4, Survivor: 4, Casualty: 1, Outcome: systems.OutcomeAbsorbed, MassRatio: 2, Mass: 9}
	if err := om.WriteCollisions([]CollisionRecord{NewCollisionRecord(7, col)}); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	read := func(name string) []string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		return strings.Split(strings.TrimSpace(string(data)), "\n")
	}

	lines := read("telemetry.csv")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,live,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Contains(strings.Join(lines[1:], "\n"), "window_end") {
		t.Error("header repeated")
	}

	if lines := read("bookmarks.csv"); len(lines) != 2 || lines[1] != "regime_change,200,flip" {
		t.Errorf("bookmarks.csv = %q", lines)
	}
	if lines := read("collisions.csv"); len(lines) != 2 || !strings.HasPrefix(lines[1], "7,absorbed,1,4,4,") {
		t.Errorf("collisions.csv = %q", lines)
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
