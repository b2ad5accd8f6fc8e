// Package game runs the star field: it owns the physics universe, mirrors
// bodies into an ECS world for presentation, and drives telemetry.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/starfield/camera"
	"github.com/pthm-cable/starfield/components"
	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/renderer"
	"github.com/pthm-cable/starfield/systems"
	"github.com/pthm-cable/starfield/telemetry"
	"github.com/pthm-cable/starfield/ui"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	SnapshotFormat telemetry.Format
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
	Workers        int    // overrides simulation.workers when > 0
	RestorePath    string // snapshot to resume from

	// Config to use; nil means config.Cfg().
	Config *config.Config

	// StatsCallback, if set, receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete game state.
type Game struct {
	cfg      *config.Config
	params   systems.Params
	universe *systems.Universe
	rng      *rand.Rand
	rngSeed  int64
	dt       float64

	// ECS mirror of live bodies
	world      *ecs.World
	starMapper *ecs.Map4[components.Position, components.Velocity, components.Star, components.Glow]
	starFilter *ecs.Filter4[components.Position, components.Velocity, components.Star, components.Glow]
	glowMap    *ecs.Map[components.Glow]
	entities   map[systems.BodyID]ecs.Entity
	removeBuf  []systems.BodyID

	// Rendering (graphical mode only)
	camera           *camera.Camera
	palette          *renderer.Palette
	starRenderer     *renderer.StarRenderer
	particleRenderer *renderer.ParticleRenderer
	gridOverlay      *renderer.GridOverlay
	background       *renderer.BackgroundRenderer
	flashes          []renderer.Flash

	// UI
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	starPanel *ui.StarPanel
	perfPanel *ui.PerfPanel
	overlays  *ui.OverlayRegistry

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	statsWindowSec   float64
	snapshotDir      string
	snapshotFormat   telemetry.Format
	sample           telemetry.FieldSample
	occupancy        []int
	collisionRecords []telemetry.CollisionRecord

	// State
	paused         bool
	headless       bool
	stepsPerUpdate int
	pendingReset   bool
	spawned        int
	hasSelection   bool
	selected       systems.BodyID

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game, spawning a fresh star field or
// restoring one from opts.RestorePath.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	params := cfg.Params()
	if opts.Workers > 0 {
		params.Workers = opts.Workers
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	format := opts.SnapshotFormat
	if format == "" {
		format = telemetry.FormatJSON
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:     cfg,
		params:  params,
		rngSeed: opts.Seed,
		rng:     rand.New(rand.NewSource(opts.Seed)),
		dt:      cfg.Simulation.DT,

		world: world,
		starMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Star,
			components.Glow,
		](world),
		starFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Star,
			components.Glow,
		](world),
		glowMap:  ecs.NewMap[components.Glow](world),
		entities: make(map[systems.BodyID]ecs.Entity),

		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		statsWindowSec:   statsWindow,
		snapshotDir:      opts.SnapshotDir,
		snapshotFormat:   format,

		headless:       opts.Headless,
		stepsPerUpdate: stepsPerUpdate,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}

	palette, err := renderer.NewPalette(cfg.Render.BandColors)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	g.palette = palette

	if opts.RestorePath != "" {
		if err := g.restoreFromSnapshot(opts.RestorePath); err != nil {
			return nil, err
		}
	} else {
		u, err := systems.NewUniverse(params)
		if err != nil {
			return nil, err
		}
		g.attachUniverse(u)
		g.spawnField()
	}
	g.syncECS()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.universe.Close()
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if !g.headless {
		g.initGraphics()
	}

	return g, nil
}

// attachUniverse installs u and resets per-run telemetry.
func (g *Game) attachUniverse(u *systems.Universe) {
	g.universe = u
	u.SetPhaseObserver(g.perfCollector)
	g.collector = telemetry.NewCollector(g.statsWindowSec, float32(g.dt))
	g.collector.Resume(u.Tick())
}

// initGraphics builds renderers and panels. Nothing here touches the GPU,
// so it is safe before the window exists.
func (g *Game) initGraphics() {
	cfg := g.cfg
	g.camera = camera.New(
		g.screenWidth, g.screenHeight,
		float32(cfg.Derived.InitialCameraSize),
		float32(cfg.Camera.ZoomMin), float32(cfg.Camera.ZoomMax),
	)
	g.starRenderer = renderer.NewStarRenderer(g.palette, float32(cfg.Render.GlowScale))
	g.particleRenderer = renderer.NewParticleRenderer()
	g.gridOverlay = renderer.NewGridOverlay()
	g.background = renderer.NewBackgroundRenderer(
		float32(cfg.Simulation.MaxSpawnRange), float32(cfg.Bodies.DespawnDistance),
		4, 5, 12,
	)

	g.hud = ui.NewHUD()
	g.overlays = ui.NewOverlayRegistry()
	g.overlays.SetEnabled(ui.OverlayGrid, cfg.Render.ShowGrid)
	g.controls = ui.NewControlsPanel(int32(g.screenWidth)-230, 10, 220)
	g.starPanel = ui.NewStarPanel(10, 140, 230)
	g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-480, 16)
}

// Update handles input and runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() {
	g.handleInput()

	if g.paused && !g.pendingReset {
		g.updateEffects(0)
		return
	}

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
	g.updateEffects(float32(g.dt) * float32(g.stepsPerUpdate))
}

// UpdateHeadless runs stepsPerUpdate ticks without input or effects.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.step()
	}
}

// step runs a single tick.
func (g *Game) step() {
	g.perfCollector.StartTick()

	if g.pendingReset {
		g.perfCollector.StartPhase(telemetry.PhaseSpawn)
		g.resetField()
	}

	// Physics phases are reported by the universe itself
	g.universe.Step(g.dt)

	g.perfCollector.StartPhase(telemetry.PhaseECSSync)
	g.applyTickEvents()
	g.syncECS()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// RequestReset schedules a fresh star field at the start of the next tick.
func (g *Game) RequestReset() {
	g.pendingReset = true
}

// resetField replaces the universe with a freshly spawned one.
func (g *Game) resetField() {
	g.pendingReset = false

	ramp := g.universe.Params().RampRatePerSecond
	g.universe.Close()

	params := g.params
	params.RampRatePerSecond = ramp
	u, err := systems.NewUniverse(params)
	if err != nil {
		// params were accepted once already
		panic(fmt.Sprintf("game: rebuilding universe: %v", err))
	}

	for id := range g.entities {
		g.removeBuf = append(g.removeBuf, id)
	}
	for _, id := range g.removeBuf {
		g.removeStar(id)
	}
	g.removeBuf = g.removeBuf[:0]
	g.lifetimeTracker = telemetry.NewLifetimeTracker()
	g.bookmarkDetector = telemetry.NewBookmarkDetector(g.cfg.Telemetry.BookmarkHistorySize, g.cfg.Bookmarks)
	g.flashes = g.flashes[:0]
	g.hasSelection = false
	g.spawned = 0

	g.attachUniverse(u)
	g.spawnField()
	g.syncECS()
	slog.Info("field reset", "live", u.LiveCount())
}

// Universe exposes the physics core.
func (g *Game) Universe() *systems.Universe {
	return g.universe
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.universe.Tick()
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.universe != nil {
		g.universe.Close()
	}
	if g.outputManager != nil {
		g.writeCollisions()
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
