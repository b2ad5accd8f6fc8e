// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/starfield/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Gravity    GravityConfig    `yaml:"gravity"`
	Bodies     BodiesConfig     `yaml:"bodies"`
	Collision  CollisionConfig  `yaml:"collision"`
	Grid       GridConfig       `yaml:"grid"`
	Camera     CameraConfig     `yaml:"camera"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds run-level parameters.
type SimulationConfig struct {
	StarCount     int     `yaml:"star_count"`
	MaxSpawnRange float64 `yaml:"max_spawn_range"` // Spawn disk radius around the origin
	DT            float64 `yaml:"dt"`
	SpawnAttempts int     `yaml:"spawn_attempts"` // Retries per star before the spawner gives up
	Workers       int     `yaml:"workers"`        // Force pass goroutines (<=1 = serial)
}

// GravityConfig holds the force law and its ramp.
type GravityConfig struct {
	Constant          float64 `yaml:"constant"`
	RampRatePerSecond float64 `yaml:"ramp_rate_per_second"`
	MaxAbsConstant    float64 `yaml:"max_abs_constant"` // 0 = unclamped
	DistanceStretch   float64 `yaml:"distance_stretch"`
	Softening         float64 `yaml:"softening"`
}

// BodiesConfig holds per-body ranges.
type BodiesConfig struct {
	ContactRadius     float64       `yaml:"contact_radius"`
	MassRange         systems.Range `yaml:"mass_range"`
	InitialSpeedRange systems.Range `yaml:"initial_speed_range"`
	DespawnDistance   float64       `yaml:"despawn_distance"` // 0 = never
}

// CollisionConfig holds contact resolution parameters.
type CollisionConfig struct {
	MassSurvivalRatio float64 `yaml:"mass_survival_ratio"` // Heavier/lighter below this annihilates both
	MassRetention     float64 `yaml:"mass_retention"`
}

// GridConfig holds spatial grid parameters.
type GridConfig struct {
	Subdivisions int  `yaml:"subdivisions"`
	ShrinkBounds bool `yaml:"shrink_bounds"`
}

// CameraConfig holds viewport controls for graphical mode.
type CameraConfig struct {
	ZoomMin         float64 `yaml:"zoom_min"`
	ZoomMax         float64 `yaml:"zoom_max"`
	ZoomSensitivity float64 `yaml:"zoom_sensitivity"`
	PanSpeed        float64 `yaml:"pan_speed"`
	SizeOffset      float64 `yaml:"size_offset"` // Added to max_spawn_range for the initial view size
}

// RenderConfig holds star drawing parameters.
type RenderConfig struct {
	BaseRadius  float64  `yaml:"base_radius"`
	RadiusScale float64  `yaml:"radius_scale"` // Extra radius per unit of normalised mass
	GlowScale   float64  `yaml:"glow_scale"`
	BandColors  []string `yaml:"band_colors"` // Hex colours from lightest to heaviest band
	ShowGrid    bool     `yaml:"show_grid"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	ExtinctionWave ExtinctionWaveConfig `yaml:"extinction_wave"`
	MergerBurst    MergerBurstConfig    `yaml:"merger_burst"`
	StableField    StableFieldConfig    `yaml:"stable_field"`
}

// ExtinctionWaveConfig holds live count crash detection parameters.
type ExtinctionWaveConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// MergerBurstConfig holds absorption spike detection parameters.
type MergerBurstConfig struct {
	Multiplier     float64 `yaml:"multiplier"`
	MinAbsorptions int     `yaml:"min_absorptions"`
}

// StableFieldConfig holds quiet-field detection parameters.
type StableFieldConfig struct {
	MinLive       int     `yaml:"min_live"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32              float32 // Simulation.DT as float32
	ScreenW32         float32 // Screen.Width as float32
	ScreenH32         float32 // Screen.Height as float32
	InitialCameraSize float64 // MaxSpawnRange + Camera.SizeOffset
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.InitialCameraSize = c.Simulation.MaxSpawnRange + c.Camera.SizeOffset
}

// Params maps the loaded configuration onto the physics construction record.
func (c *Config) Params() systems.Params {
	return systems.Params{
		GravitationalConstant:       c.Gravity.Constant,
		RampRatePerSecond:           c.Gravity.RampRatePerSecond,
		MaxAbsGravitationalConstant: c.Gravity.MaxAbsConstant,
		ContactRadius:               c.Bodies.ContactRadius,
		MassRange:                   c.Bodies.MassRange,
		InitialSpeedRange:           c.Bodies.InitialSpeedRange,
		DistanceStretch:             c.Gravity.DistanceStretch,
		Softening:                   c.Gravity.Softening,
		GridSubdivisions:            c.Grid.Subdivisions,
		DespawnDistance:             c.Bodies.DespawnDistance,
		MassSurvivalRatio:           c.Collision.MassSurvivalRatio,
		CollisionMassRetention:      c.Collision.MassRetention,
		ShrinkBounds:                c.Grid.ShrinkBounds,
		Workers:                     c.Simulation.Workers,
	}
}

// Validate checks the physics parameters and the run-level settings the
// physics core does not see.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("config: simulation.dt must be positive, got %g", c.Simulation.DT)
	}
	if c.Simulation.StarCount < 0 || c.Simulation.MaxSpawnRange < 0 {
		return fmt.Errorf("config: star_count and max_spawn_range must not be negative")
	}
	if c.Camera.ZoomMin > c.Camera.ZoomMax {
		return fmt.Errorf("config: camera.zoom_min %g exceeds zoom_max %g", c.Camera.ZoomMin, c.Camera.ZoomMax)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
