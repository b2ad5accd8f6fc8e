package game

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/systems"
	"github.com/pthm-cable/starfield/telemetry"
)

// testConfig returns defaults shrunk to a small, busy field.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Simulation.StarCount = 80
	cfg.Simulation.MaxSpawnRange = 25
	cfg.Simulation.Workers = 1
	cfg.Gravity.Constant = 5
	cfg.Grid.Subdivisions = 8
	cfg.Telemetry.StatsWindow = 0.2
	return cfg
}

func newHeadlessGame(t *testing.T, cfg *config.Config, mutate func(o *Options)) *Game {
	t.Helper()
	opts := Options{
		Seed:           7,
		Headless:       true,
		StepsPerUpdate: 1,
		Config:         cfg,
	}
	if mutate != nil {
		mutate(&opts)
	}
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

// checkMirror asserts that ECS entities and lifetimes track live bodies.
func checkMirror(t *testing.T, g *Game) {
	t.Helper()
	u := g.Universe()
	if g.StarCount() != u.LiveCount() {
		t.Fatalf("tick %d: %d entities for %d live bodies", u.Tick(), g.StarCount(), u.LiveCount())
	}
	if g.lifetimeTracker.Count() != u.LiveCount() {
		t.Fatalf("tick %d: %d lifetimes for %d live bodies", u.Tick(), g.lifetimeTracker.Count(), u.LiveCount())
	}

	query := g.starFilter.Query()
	for query.Next() {
		pos, _, star, _ := query.Get()
		id := systems.BodyID(star.BodyID)
		if !u.IsAlive(id) {
			query.Close()
			t.Fatalf("entity mirrors dead body %d", id)
		}
		p := u.Position(id)
		if pos.X != float32(p.X) || pos.Y != float32(p.Y) {
			query.Close()
			t.Fatalf("body %d mirrored at (%v,%v), want %v", id, pos.X, pos.Y, p)
		}
	}
}

func TestHeadlessRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Gravity.Constant = 10
	g := newHeadlessGame(t, cfg, func(o *Options) { o.StepsPerUpdate = 5 })

	if got := g.Universe().LiveCount(); got != cfg.Simulation.StarCount {
		t.Fatalf("spawned %d stars, want %d", got, cfg.Simulation.StarCount)
	}
	checkMirror(t, g)

	for i := 0; i < 100; i++ {
		g.UpdateHeadless()
		checkMirror(t, g)
	}

	if g.Tick() != 500 {
		t.Errorf("tick = %d, want 500", g.Tick())
	}
	if g.Universe().LiveCount() >= cfg.Simulation.StarCount {
		t.Errorf("expected collisions in a dense field, live = %d", g.Universe().LiveCount())
	}
}

func TestStatsCallback(t *testing.T) {
	cfg := testConfig(t)
	var windows []telemetry.WindowStats
	g := newHeadlessGame(t, cfg, func(o *Options) {
		o.StatsCallback = func(s telemetry.WindowStats) { windows = append(windows, s) }
	})

	// 0.2s windows at dt 0.02 flush every 10 ticks
	for i := 0; i < 35; i++ {
		g.UpdateHeadless()
	}

	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	first := windows[0]
	if first.Spawns != cfg.Simulation.StarCount {
		t.Errorf("first window spawns = %d, want %d", first.Spawns, cfg.Simulation.StarCount)
	}
	for i, w := range windows {
		if w.WindowEndTick != int32(10*(i+1)) {
			t.Errorf("window %d ends at %d", i, w.WindowEndTick)
		}
	}

	// Every body that left was counted once
	var gone int
	for _, w := range windows {
		gone += 2*w.Annihilations + w.Absorptions + w.Despawns
	}
	last := windows[len(windows)-1]
	if gone != cfg.Simulation.StarCount-last.Live {
		t.Errorf("removed %d bodies by events, live dropped by %d", gone, cfg.Simulation.StarCount-last.Live)
	}
}

func TestOutputFiles(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()

	g, err := NewGameWithOptions(Options{Seed: 3, Headless: true, Config: cfg, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 25; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	for _, name := range []string{"config.yaml", "telemetry.csv", "perf.csv", "bookmarks.csv", "collisions.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("telemetry.csv is empty")
	}
}

func TestSnapshotRestoreContinues(t *testing.T) {
	for _, format := range []telemetry.Format{telemetry.FormatJSON, telemetry.FormatMsgpack} {
		t.Run(string(format), func(t *testing.T) {
			cfg := testConfig(t)
			dir := t.TempDir()

			orig := newHeadlessGame(t, cfg, func(o *Options) {
				o.SnapshotDir = dir
				o.SnapshotFormat = format
			})
			for i := 0; i < 15; i++ {
				orig.UpdateHeadless()
			}
			path, err := orig.SaveSnapshot()
			if err != nil {
				t.Fatalf("SaveSnapshot: %v", err)
			}
			if telemetry.FormatFromPath(path) != format {
				t.Errorf("snapshot %s does not use format %s", path, format)
			}

			restored := newHeadlessGame(t, cfg, func(o *Options) { o.RestorePath = path })
			if restored.Tick() != orig.Tick() {
				t.Fatalf("restored tick %d, want %d", restored.Tick(), orig.Tick())
			}
			checkMirror(t, restored)

			for i := 0; i < 20; i++ {
				orig.UpdateHeadless()
				restored.UpdateHeadless()
			}
			if !reflect.DeepEqual(orig.Universe().State(), restored.Universe().State()) {
				t.Error("restored run diverged from the original")
			}
		})
	}
}

func TestRestoreMissingSnapshot(t *testing.T) {
	_, err := NewGameWithOptions(Options{
		Headless:    true,
		Config:      testConfig(t),
		RestorePath: filepath.Join(t.TempDir(), "nope.json"),
	})
	if err == nil {
		t.Fatal("expected an error for a missing snapshot")
	}
}

func TestSaveSnapshotWithoutDir(t *testing.T) {
	g := newHeadlessGame(t, testConfig(t), nil)
	if _, err := g.SaveSnapshot(); err == nil {
		t.Error("expected an error without a snapshot directory")
	}
}

func TestResetField(t *testing.T) {
	cfg := testConfig(t)
	g := newHeadlessGame(t, cfg, nil)
	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}

	g.RequestReset()
	g.UpdateHeadless()

	if g.Tick() != 1 {
		t.Errorf("tick after reset = %d, want 1", g.Tick())
	}
	if g.spawned != cfg.Simulation.StarCount {
		t.Errorf("spawned = %d, want %d", g.spawned, cfg.Simulation.StarCount)
	}
	checkMirror(t, g)
}

func TestBadPalette(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.BandColors = []string{"#zzzzzz"}
	if _, err := NewGameWithOptions(Options{Headless: true, Config: cfg}); err == nil {
		t.Error("expected a palette error")
	}
}

func TestPickStar(t *testing.T) {
	g := newHeadlessGame(t, testConfig(t), nil)

	var target systems.BodyID = -1
	var at r2.Vec
	g.Universe().Each(func(id systems.BodyID, pos, _ r2.Vec, _ float64) {
		if target < 0 {
			target, at = id, pos
		}
	})

	id, ok := g.pickStar(float32(at.X), float32(at.Y), 0)
	if !ok || id != target {
		t.Errorf("pickStar at body %d = %d, %v", target, id, ok)
	}

	if _, ok := g.pickStar(1e6, 1e6, 1); ok {
		t.Error("picked a star in empty space")
	}
}

func TestSpawnField(t *testing.T) {
	p := systems.DefaultParams()
	p.ContactRadius = 0.5
	u, err := systems.NewUniverse(p)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	spec := FieldSpec{
		Count:    200,
		Radius:   40,
		Mass:     systems.Range{Min: 2, Max: 3},
		Speed:    systems.Range{Min: 0.5, Max: 1.5},
		Attempts: 50,
	}
	var calls int
	n, err := SpawnField(u, rand.New(rand.NewSource(1)), spec, func(systems.BodyID, float64) { calls++ })
	if err != nil || n != spec.Count || calls != spec.Count {
		t.Fatalf("SpawnField = %d, %v (%d callbacks)", n, err, calls)
	}

	u.Each(func(id systems.BodyID, pos, vel r2.Vec, mass float64) {
		if r2.Norm(pos) > spec.Radius+1e-9 {
			t.Errorf("body %d at %v outside the disk", id, pos)
		}
		if s := r2.Norm(vel); s < spec.Speed.Min-1e-9 || s > spec.Speed.Max+1e-9 {
			t.Errorf("body %d speed %g outside range", id, s)
		}
		if mass < spec.Mass.Min || mass > spec.Mass.Max {
			t.Errorf("body %d mass %g outside range", id, mass)
		}
	})
}

func TestSpawnFieldExhausted(t *testing.T) {
	u, err := systems.NewUniverse(systems.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	// A zero-radius disk puts every star on the origin
	spec := FieldSpec{Count: 5, Radius: 0, Mass: systems.Range{Min: 1, Max: 1}, Attempts: 3}
	n, err := SpawnField(u, rand.New(rand.NewSource(1)), spec, nil)
	if !errors.Is(err, ErrSpawnExhausted) {
		t.Fatalf("err = %v, want ErrSpawnExhausted", err)
	}
	if n != 1 || u.LiveCount() != 1 {
		t.Errorf("placed %d (live %d), want 1", n, u.LiveCount())
	}
}

func TestGlowIntensity(t *testing.T) {
	r := systems.Range{Min: 1, Max: 10}
	tests := []struct {
		mass float64
		want float32
	}{
		{5, 0.5},
		{10, 1},
		{30, 1},
	}
	for _, tt := range tests {
		if got := glowIntensity(tt.mass, r); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("glowIntensity(%v) = %v, want %v", tt.mass, got, tt.want)
		}
	}
	if got := glowIntensity(5, systems.Range{}); got != 0 {
		t.Errorf("zero range intensity = %v", got)
	}
}
