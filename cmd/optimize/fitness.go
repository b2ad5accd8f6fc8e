package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/starfield/config"
	"github.com/pthm-cable/starfield/game"
	"github.com/pthm-cable/starfield/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params         *ParamVector
	maxTicks       int32
	seeds          []int64
	baseConfig     *config.Config
	targetSurvival float64
	statsWindow    float64

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastResult  seedResult // mean of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targetSurvival float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:         params,
		maxTicks:       maxTicks,
		seeds:          seeds,
		baseConfig:     baseCfg,
		targetSurvival: targetSurvival,
		statsWindow:    baseCfg.Telemetry.StatsWindow,
		bestFitness:    math.Inf(1),
	}
}

// BestWindows returns the window stats of the best seed of the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastSurvival returns the mean survivor fraction of the most recent evaluation.
func (fe *FitnessEvaluator) LastSurvival() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult.survival
}

// LastStability returns the mean stability score of the most recent evaluation.
func (fe *FitnessEvaluator) LastStability() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastResult.stability
}

// runResult holds the results from a single simulation run.
type runResult struct {
	spawned     int
	live        int
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness   float64
	survival  float64
	stability float64
	windows   []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			survival := 0.0
			if result.spawned > 0 {
				survival = float64(result.live) / float64(result.spawned)
			}
			stability := stabilityScore(result.windowStats)
			results[idx] = seedResult{
				fitness:   fe.computeFitness(survival, stability),
				survival:  survival,
				stability: stability,
				windows:   result.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var mean seedResult
	best := results[0]
	for _, r := range results {
		mean.fitness += r.fitness
		mean.survival += r.survival
		mean.stability += r.stability
		if r.fitness < best.fitness {
			best = r
		}
	}
	n := float64(len(results))
	mean.fitness /= n
	mean.survival /= n
	mean.stability /= n

	fe.mu.Lock()
	if mean.fitness < fe.bestFitness {
		fe.bestFitness = mean.fitness
		fe.bestWindows = best.windows
	}
	fe.lastResult = mean
	fe.mu.Unlock()

	return mean.fitness
}

// runSimulation executes a single headless simulation run of maxTicks.
// A field that empties early stops the run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Workers:        1, // seeds already run in parallel
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return result
	}
	defer g.Unload()

	result.spawned = g.Universe().LiveCount()
	for g.Tick() < fe.maxTicks && g.Universe().LiveCount() > 0 {
		g.UpdateHeadless()
	}
	result.live = g.Universe().LiveCount()
	return result
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Render.BandColors = append([]string(nil), fe.baseConfig.Render.BandColors...)
	return &cfg
}

// Fitness weights.
const (
	survivalWeight  = 1.0
	stabilityWeight = 0.1

	stabilityWarmupWindows = 2 // skip the initial collapse
)

// computeFitness calculates the scalar fitness (lower = better): squared
// distance from the target survivor fraction plus a small penalty for a
// field that is still collapsing at the end of the run.
func (fe *FitnessEvaluator) computeFitness(survival, stability float64) float64 {
	d := survival - fe.targetSurvival
	return survivalWeight*d*d + stabilityWeight*(1-stability)
}

// stabilityScore maps the coefficient of variation of live counts after
// warmup into [0, 1], 1 being a constant population.
func stabilityScore(windows []telemetry.WindowStats) float64 {
	if len(windows) <= stabilityWarmupWindows+1 {
		return 0
	}
	live := make([]float64, 0, len(windows)-stabilityWarmupWindows)
	for _, w := range windows[stabilityWarmupWindows:] {
		live = append(live, float64(w.Live))
	}
	mean, std := stat.PopMeanStdDev(live, nil)
	if mean == 0 {
		return 0
	}
	cv := std / mean
	return math.Exp(-cv * cv * 25)
}
