package ui

import (
	"fmt"

	"github.com/pthm-cable/starfield/telemetry"
)

// LifetimeLines returns label/value pairs for a star's lifetime stats.
func LifetimeLines(lt *telemetry.LifetimeStats) [][2]string {
	return [][2]string{
		{"Born", fmt.Sprintf("tick %d", lt.BirthTick)},
		{"Age", fmt.Sprintf("%.1fs", lt.SurvivalTimeSec)},
		{"Spawned", fmt.Sprintf("%.2f", lt.SpawnMass)},
		{"Peak", fmt.Sprintf("%.2f", lt.PeakMass)},
		{"Absorbed", fmt.Sprintf("%d", lt.Absorptions)},
	}
}
