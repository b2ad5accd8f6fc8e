package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Live int `csv:"live"`

	// Events during window
	Spawns        int     `csv:"spawns"`
	Absorptions   int     `csv:"absorptions"`
	Annihilations int     `csv:"annihilations"`
	Despawns      int     `csv:"despawns"`
	MassAnnihil   float64 `csv:"mass_annihilated"`
	MassDespawned float64 `csv:"mass_despawned"`

	// Mass distribution (sampled at window end)
	MassMean float64 `csv:"mass_mean"`
	MassStd  float64 `csv:"mass_std"`
	MassP10  float64 `csv:"mass_p10"`
	MassP50  float64 `csv:"mass_p50"`
	MassP90  float64 `csv:"mass_p90"`
	MassMax  float64 `csv:"mass_max"`

	// Speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Totals
	KineticEnergy float64 `csv:"kinetic_energy"`
	TotalMass     float64 `csv:"total_mass"`
	MomentumX     float64 `csv:"momentum_x"`
	MomentumY     float64 `csv:"momentum_y"`
	G             float64 `csv:"g"`

	// Grid shape
	BoundsW       float64 `csv:"bounds_w"`
	BoundsH       float64 `csv:"bounds_h"`
	BoundsCX      float64 `csv:"bounds_cx"`
	BoundsCY      float64 `csv:"bounds_cy"`
	CellW         float64 `csv:"cell_w"`
	CellH         float64 `csv:"cell_h"`
	OccupiedCells int     `csv:"occupied_cells"`
	MaxOccupancy  int     `csv:"max_occupancy"`
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// ComputeDistribution returns population mean, std and empirical quantiles.
// An empty sample yields the zero Distribution.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var d Distribution
	d.Mean, d.Std = stat.PopMeanStdDev(sorted, nil)
	d.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	d.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	d.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	d.Max = floats.Max(sorted)
	return d
}

// CoefficientOfVariation returns std/mean of values, or 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("live", s.Live),
		slog.Int("spawns", s.Spawns),
		slog.Int("absorptions", s.Absorptions),
		slog.Int("annihilations", s.Annihilations),
		slog.Int("despawns", s.Despawns),
		slog.Float64("mass_annihilated", s.MassAnnihil),
		slog.Float64("mass_despawned", s.MassDespawned),
		slog.Float64("mass_mean", s.MassMean),
		slog.Float64("mass_std", s.MassStd),
		slog.Float64("mass_p50", s.MassP50),
		slog.Float64("mass_max", s.MassMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("total_mass", s.TotalMass),
		slog.Float64("g", s.G),
		slog.Float64("bounds_w", s.BoundsW),
		slog.Float64("bounds_h", s.BoundsH),
		slog.Float64("bounds_cx", s.BoundsCX),
		slog.Float64("bounds_cy", s.BoundsCY),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Int("max_occupancy", s.MaxOccupancy),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"live", s.Live,
		"spawns", s.Spawns,
		"absorptions", s.Absorptions,
		"annihilations", s.Annihilations,
		"despawns", s.Despawns,
		"mass_annihilated", s.MassAnnihil,
		"mass_despawned", s.MassDespawned,
		"mass_mean", s.MassMean,
		"mass_std", s.MassStd,
		"mass_p10", s.MassP10,
		"mass_p50", s.MassP50,
		"mass_p90", s.MassP90,
		"mass_max", s.MassMax,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"kinetic_energy", s.KineticEnergy,
		"total_mass", s.TotalMass,
		"momentum_x", s.MomentumX,
		"momentum_y", s.MomentumY,
		"g", s.G,
		"bounds_w", s.BoundsW,
		"bounds_h", s.BoundsH,
		"bounds_cx", s.BoundsCX,
		"bounds_cy", s.BoundsCY,
		"cell_w", s.CellW,
		"cell_h", s.CellH,
		"occupied_cells", s.OccupiedCells,
		"max_occupancy", s.MaxOccupancy,
	)
}
