package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/starfield/systems"
	"github.com/pthm-cable/starfield/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	tick := g.universe.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	// Sample the field and bring lifetimes up to date
	g.occupancy = telemetry.SampleUniverse(g.universe, &g.sample, g.occupancy)
	for id := range g.entities {
		g.lifetimeTracker.UpdateSurvivalTime(id, tick, float32(g.dt))
	}

	stats := g.collector.Flush(tick, g.sample)
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		g.writeCollisions()
	}

	// Check for bookmarks
	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		// Write to CSV if output manager is enabled
		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// writeCollisions drains buffered collision rows to collisions.csv.
func (g *Game) writeCollisions() {
	if err := g.outputManager.WriteCollisions(g.collisionRecords); err != nil {
		slog.Error("failed to write collisions", "error", err)
	}
	g.collisionRecords = g.collisionRecords[:0]
}

// logDeath logs a body leaving the field.
func logDeath(id systems.BodyID, cause telemetry.DeathCause, s *telemetry.LifetimeStats) {
	slog.Info("star died",
		"id", id,
		"cause", string(cause),
		"survival_sec", s.SurvivalTimeSec,
		"spawn_mass", s.SpawnMass,
		"peak_mass", s.PeakMass,
		"absorptions", s.Absorptions,
	)
}

// SaveSnapshot writes the current state to the snapshot directory
// without a bookmark. It returns the file path.
func (g *Game) SaveSnapshot() (string, error) {
	if g.snapshotDir == "" {
		return "", fmt.Errorf("no snapshot directory configured")
	}
	return telemetry.SaveSnapshot(g.createSnapshot(nil), g.snapshotDir, g.snapshotFormat)
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.createSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir, g.snapshotFormat)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", snapshot.State.Tick)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		RNGSeed:   g.rngSeed,
		Params:    g.universe.Params(),
		State:     g.universe.State(),
		Lifetimes: telemetry.LifetimeRecords(g.lifetimeTracker),
		Bookmark:  bookmark,
	}
}

// restoreFromSnapshot replaces the universe with one loaded from path. The
// snapshot's physics parameters win over config; the worker count does not.
func (g *Game) restoreFromSnapshot(path string) error {
	snapshot, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}

	params := snapshot.Params
	params.Workers = g.params.Workers
	u, err := systems.RestoreUniverse(params, snapshot.State)
	if err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}

	g.params = params
	g.attachUniverse(u)
	telemetry.RestoreLifetimes(g.lifetimeTracker, snapshot.Lifetimes)
	g.spawned = u.BodyCount()

	slog.Info("snapshot restored",
		"path", path,
		"tick", u.Tick(),
		"live", u.LiveCount(),
		"g", u.G(),
	)
	return nil
}
