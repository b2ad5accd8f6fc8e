package telemetry

import (
	"testing"

	"github.com/pthm-cable/starfield/systems"
)

func TestNewCollisionRecord(t *testing.T) {
	tests := []struct {
		name string
		c    systems.Collision
		want CollisionRecord
	}{
		{
			name: "absorbed",
			c: systems.Collision{
				A: 3, B: 9, Survivor: 9, Casualty: 3,
				Outcome: systems.OutcomeAbsorbed, MassRatio: 2.5, Distance: 0.4, Mass: 7,
				MassA: 2, MassB: 5,
			},
			want: CollisionRecord{Tick: 12, Outcome: "absorbed", A: 3, B: 9, Survivor: 9, MassRatio: 2.5, Distance: 0.4, Mass: 7},
		},
		{
			name: "annihilated",
			c: systems.Collision{
				A: 1, B: 2, Survivor: -1, Casualty: 2,
				Outcome: systems.OutcomeAnnihilated, MassRatio: 1.1, Distance: 0.9,
			},
			want: CollisionRecord{Tick: 12, Outcome: "annihilated", A: 1, B: 2, Survivor: -1, MassRatio: 1.1, Distance: 0.9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCollisionRecord(12, tt.c); got != tt.want {
				t.Errorf("NewCollisionRecord = %+v, want %+v", got, tt.want)
			}
		})
	}
}
