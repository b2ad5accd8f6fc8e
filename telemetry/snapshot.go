package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pthm-cable/starfield/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when a snapshot was written by an
// incompatible version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFromPath picks the encoding from a file extension. Anything other
// than .msgpack or .mp is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	default:
		return FormatJSON
	}
}

// Snapshot holds the complete simulation state for replay.
type Snapshot struct {
	Version int   `json:"version" msgpack:"version"`
	RNGSeed int64 `json:"rng_seed" msgpack:"rng_seed"`

	Params systems.Params `json:"params" msgpack:"params"`
	State  systems.State  `json:"state" msgpack:"state"`

	Lifetimes []LifetimeRecord `json:"lifetimes,omitempty" msgpack:"lifetimes,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty" msgpack:"bookmark,omitempty"`
}

// LifetimeRecord is the serialisable form of one body's LifetimeStats.
type LifetimeRecord struct {
	ID              systems.BodyID `json:"id" msgpack:"id"`
	BirthTick       int32          `json:"birth_tick" msgpack:"birth_tick"`
	SurvivalTimeSec float32        `json:"survival_time_sec" msgpack:"survival_time_sec"`
	SpawnMass       float64        `json:"spawn_mass" msgpack:"spawn_mass"`
	PeakMass        float64        `json:"peak_mass" msgpack:"peak_mass"`
	Absorptions     int            `json:"absorptions" msgpack:"absorptions"`
}

// LifetimeRecords flattens a tracker in id order.
func LifetimeRecords(lt *LifetimeTracker) []LifetimeRecord {
	records := make([]LifetimeRecord, 0, lt.Count())
	for id, s := range lt.All() {
		records = append(records, LifetimeRecord{
			ID:              id,
			BirthTick:       s.BirthTick,
			SurvivalTimeSec: s.SurvivalTimeSec,
			SpawnMass:       s.SpawnMass,
			PeakMass:        s.PeakMass,
			Absorptions:     s.Absorptions,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// RestoreLifetimes loads records into lt.
func RestoreLifetimes(lt *LifetimeTracker, records []LifetimeRecord) {
	for _, r := range records {
		lt.Restore(r.ID, LifetimeStats{
			BirthTick:       r.BirthTick,
			SurvivalTimeSec: r.SurvivalTimeSec,
			SpawnMass:       r.SpawnMass,
			PeakMass:        r.PeakMass,
			Absorptions:     r.Absorptions,
		})
	}
}

// SaveSnapshot writes a snapshot to disk in the given format.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.State.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.State.Tick, sanitized)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatMsgpack:
		name += ".msgpack"
		data, err = msgpack.Marshal(snapshot)
	default:
		name += ".json"
		data, err = json.MarshalIndent(snapshot, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk, decoding by file extension.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	switch FormatFromPath(path) {
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &snapshot)
	default:
		err = json.Unmarshal(data, &snapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}

	return &snapshot, nil
}
