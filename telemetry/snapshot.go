package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/survival/traits"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable simulation state at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Tick       int32   `json:"tick"`
	ElapsedSec float64 `json:"elapsed_sec"`
	Generation int     `json:"generation"`
	Paused     bool    `json:"paused"`

	Animals []AnimalState `json:"animals"`
	Plants  []PlantState  `json:"plants"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AnimalState holds one animal's observable state.
type AnimalState struct {
	ID       uint32        `json:"id"`
	ParentID uint32        `json:"parent_id,omitempty"`
	Lineage  string        `json:"lineage"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Heading  float64       `json:"heading"`
	Energy   float64       `json:"energy"`
	Age      int           `json:"age"`
	Cooldown int           `json:"repro_cooldown"`
	Alive    bool          `json:"alive"`
	Genome   traits.Genome `json:"genome"`
}

// PlantState holds one plant's observable state.
type PlantState struct {
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Energy     float64      `json:"energy"`
	GrowthRate float64      `json:"growth_rate"`
	Size       float64      `json:"size"`
	Color      traits.Color `json:"color"`
}

// Counts tallies animals by diet.
func (s *Snapshot) Counts() (herbivores, carnivores, omnivores int) {
	for _, a := range s.Animals {
		switch a.Genome.Diet {
		case traits.Herbivore:
			herbivores++
		case traits.Carnivore:
			carnivores++
		case traits.Omnivore:
			omnivores++
		}
	}
	return herbivores, carnivores, omnivores
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
