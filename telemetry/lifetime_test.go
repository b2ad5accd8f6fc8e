package telemetry

import "testing"

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(0, 10, 3)
	lt.Register(1, 12, 5)
	lt.Register(2, 12, 5)

	lt.RecordAbsorb(0, 8)
	lt.RecordAbsorb(0, 7) // mass can fall with retention < 1
	lt.RecordAbsorb(9, 100)

	s := lt.Get(0)
	if s.Absorptions != 2 || s.PeakMass != 8 || s.SpawnMass != 3 {
		t.Errorf("stats = %+v", s)
	}

	lt.UpdateSurvivalTime(0, 20, 0.5)
	if s.SurvivalTimeSec != 5 {
		t.Errorf("survival = %v, want 5", s.SurvivalTimeSec)
	}

	if id, hs := lt.Heaviest(); id != 0 || hs.PeakMass != 8 {
		t.Errorf("heaviest = %d", id)
	}

	if removed := lt.Remove(0); removed != s {
		t.Error("Remove should return the tracked stats")
	}
	if id, _ := lt.Heaviest(); id != 1 {
		t.Errorf("tie should go to lower id, got %d", id)
	}
	if lt.Count() != 2 {
		t.Errorf("count = %d", lt.Count())
	}

	empty := NewLifetimeTracker()
	if id, hs := empty.Heaviest(); id != -1 || hs != nil {
		t.Errorf("empty heaviest = %d %v", id, hs)
	}
}
