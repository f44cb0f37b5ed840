package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/systems"
	"github.com/pthm-cable/survival/traits"
)

// AnimalSpec places an animal with chosen traits. Zero Energy means the
// configured initial energy.
type AnimalSpec struct {
	X, Y      float64
	Direction float64
	Genome    traits.Genome
	Energy    float64
	Age       int
	Cooldown  int
}

// PlantSpec places a plant with chosen state.
type PlantSpec struct {
	X, Y       float64
	Energy     float64
	GrowthRate float64
	Size       float64
	Color      traits.Color
}

// birth is an offspring queued during the animal phase.
type birth struct {
	x, y      float64
	direction float64
	genome    traits.Genome
	parentID  uint32
	lineage   uuid.UUID
}

// spawnInitialPopulation creates the starting animals and plants.
func (g *Game) spawnInitialPopulation() {
	for i := 0; i < g.cfg.Population.InitialAnimals; i++ {
		x, y := g.randomPoint()
		genome := traits.RandomGenome(g.rng, &g.cfg.Genome)
		g.spawnAnimal(x, y, g.randomDirection(), genome, 0, g.newLineage())
	}
	for i := 0; i < g.cfg.Population.InitialPlants; i++ {
		x, y := g.randomPoint()
		g.spawnPlant(x, y, systems.RandomFlora(g.rng, &g.cfg.Plants))
	}
}

// spawnAnimal creates a newborn animal at full initial energy.
func (g *Game) spawnAnimal(x, y, direction float64, genome traits.Genome, parentID uint32, lineage uuid.UUID) ecs.Entity {
	x, y = g.bounds.Clamp(x, y)

	pos := components.Position{X: x, Y: y}
	heading := components.Heading{Direction: direction}
	vitals := components.Vitals{Energy: g.cfg.Animal.InitialEnergy, Alive: true}
	org := components.Organism{
		ID:         g.nextID,
		ParentID:   parentID,
		Lineage:    lineage,
		Generation: g.generation,
		BornTick:   g.tick,
	}
	g.nextID++

	return g.animalMapper.NewEntity(&pos, &heading, &vitals, &genome, &org)
}

// spawnPlant creates a plant entity.
func (g *Game) spawnPlant(x, y float64, flora components.Flora) ecs.Entity {
	x, y = g.bounds.Clamp(x, y)
	pos := components.Position{X: x, Y: y}
	return g.plantMapper.NewEntity(&pos, &flora)
}

// AddAnimal places an animal and returns its ID. Used to set up scenarios.
// A genome the sampler could never produce is rejected.
func (g *Game) AddAnimal(spec AnimalSpec) (uint32, error) {
	if err := spec.Genome.Validate(); err != nil {
		return 0, fmt.Errorf("adding animal: %w", err)
	}

	e := g.spawnAnimal(spec.X, spec.Y, spec.Direction, spec.Genome, 0, g.newLineage())
	_, _, vitals, _, org := g.animalMapper.Get(e)
	if spec.Energy != 0 {
		vitals.Energy = spec.Energy
	}
	vitals.Age = spec.Age
	vitals.ReproCooldown = spec.Cooldown
	return org.ID, nil
}

// AddPlant places a plant. Used to set up scenarios.
func (g *Game) AddPlant(spec PlantSpec) {
	g.spawnPlant(spec.X, spec.Y, components.Flora{
		Energy:     spec.Energy,
		GrowthRate: spec.GrowthRate,
		Size:       spec.Size,
		Color:      spec.Color,
	})
}

// cleanupDead removes animals marked dead during the animal phase.
func (g *Game) cleanupDead() {
	// First pass: collect dead entities (the world is locked while querying)
	g.dead = g.dead[:0]
	query := g.animalFilter.Query()
	for query.Next() {
		_, _, vitals, _, _ := query.Get()
		if !vitals.Alive {
			g.dead = append(g.dead, query.Entity())
			g.collector.RecordDeath(vitals.Cause)
		}
	}

	// Second pass: remove
	for _, e := range g.dead {
		g.world.RemoveEntity(e)
	}
}

// spawnOffspring adds the animals queued during the animal phase.
func (g *Game) spawnOffspring() {
	for _, b := range g.births {
		g.spawnAnimal(b.x, b.y, b.direction, b.genome, b.parentID, b.lineage)
		g.collector.RecordBirth()
	}
	g.births = g.births[:0]
}

// checkPopulationFloor reseeds the animals from the survivors when the
// population drops below the floor without dying out.
func (g *Game) checkPopulationFloor() {
	floor := g.cfg.Population.Floor
	if floor <= 0 {
		return
	}

	type survivor struct {
		genome  traits.Genome
		id      uint32
		lineage uuid.UUID
	}
	var survivors []survivor

	g.dead = g.dead[:0]
	query := g.animalFilter.Query()
	for query.Next() {
		_, _, _, genome, org := query.Get()
		survivors = append(survivors, survivor{genome: *genome, id: org.ID, lineage: org.Lineage})
		g.dead = append(g.dead, query.Entity())
	}

	if len(survivors) == 0 || len(survivors) >= floor {
		return
	}

	g.generation++
	for _, e := range g.dead {
		g.world.RemoveEntity(e)
	}

	for i := 0; i < g.cfg.Population.RecoverySize; i++ {
		parent := survivors[g.rng.Intn(len(survivors))]
		x, y := g.randomPoint()
		g.spawnAnimal(x, y, g.randomDirection(), parent.genome, parent.id, parent.lineage)
	}
	g.collector.RecordRecovery()

	slog.Info("population_recovery",
		"tick", g.tick,
		"survivors", len(survivors),
		"spawned", g.cfg.Population.RecoverySize,
		"generation", g.generation,
	)
}

// randomPoint returns a uniformly distributed point in the world.
func (g *Game) randomPoint() (float64, float64) {
	return g.rng.Float64() * g.cfg.World.Width, g.rng.Float64() * g.cfg.World.Height
}

func (g *Game) randomDirection() float64 {
	return traits.Uniform(g.rng, 0, 2*math.Pi)
}

// newLineage mints a lineage ID from the simulation RNG so seeded runs repeat.
func (g *Game) newLineage() uuid.UUID {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return uuid.Nil
	}
	return id
}
