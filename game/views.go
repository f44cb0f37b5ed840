package game

import (
	"github.com/google/uuid"

	"github.com/pthm-cable/survival/telemetry"
	"github.com/pthm-cable/survival/traits"
)

// AnimalView is a read-only copy of one animal.
type AnimalView struct {
	ID        uint32
	ParentID  uint32
	Lineage   uuid.UUID
	X, Y      float64
	Direction float64
	Energy    float64
	Age       int
	Cooldown  int
	Alive     bool
	Genome    traits.Genome
}

// PlantView is a read-only copy of one plant.
type PlantView struct {
	X, Y       float64
	Energy     float64
	GrowthRate float64
	Size       float64
	Color      traits.Color
}

// Animals returns every animal in collection order.
func (g *Game) Animals() []AnimalView {
	var out []AnimalView
	query := g.animalFilter.Query()
	for query.Next() {
		pos, heading, vitals, genome, org := query.Get()
		out = append(out, AnimalView{
			ID:        org.ID,
			ParentID:  org.ParentID,
			Lineage:   org.Lineage,
			X:         pos.X,
			Y:         pos.Y,
			Direction: heading.Direction,
			Energy:    vitals.Energy,
			Age:       vitals.Age,
			Cooldown:  vitals.ReproCooldown,
			Alive:     vitals.Alive,
			Genome:    *genome,
		})
	}
	return out
}

// Animal looks up an animal by ID.
func (g *Game) Animal(id uint32) (AnimalView, bool) {
	for _, a := range g.Animals() {
		if a.ID == id {
			return a, true
		}
	}
	return AnimalView{}, false
}

// Plants returns every plant in collection order.
func (g *Game) Plants() []PlantView {
	var out []PlantView
	query := g.plantFilter.Query()
	for query.Next() {
		pos, flora := query.Get()
		out = append(out, PlantView{
			X:          pos.X,
			Y:          pos.Y,
			Energy:     flora.Energy,
			GrowthRate: flora.GrowthRate,
			Size:       flora.Size,
			Color:      flora.Color,
		})
	}
	return out
}

// TraitSummary returns the stats panel data. Trait means are invalid when no
// animals are alive.
func (g *Game) TraitSummary() telemetry.TraitSummary {
	var samples []telemetry.TraitSample
	query := g.animalFilter.Query()
	for query.Next() {
		_, _, _, genome, _ := query.Get()
		samples = append(samples, telemetry.TraitSample{Speed: genome.Speed, Size: genome.Size, Sense: genome.Sense})
	}

	summary := telemetry.TraitSummary{
		Generation:  g.generation,
		ElapsedSec:  g.Elapsed().Seconds(),
		DurationSec: g.cfg.World.DurationSec,
		Animals:     len(samples),
		Plants:      g.plantCount(),
	}
	summary.SpeedMean, summary.SizeMean, summary.SenseMean, summary.Valid = telemetry.SummarizeTraits(samples)
	return summary
}
