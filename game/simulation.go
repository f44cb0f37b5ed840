package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/systems"
	"github.com/pthm-cable/survival/telemetry"
	"github.com/pthm-cable/survival/traits"
)

// Step advances the simulation by one tick. It does nothing while paused.
func (g *Game) Step() {
	if g.paused {
		return
	}

	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhasePlants)
	g.updatePlants()
	g.maybeSpawnPlant()

	g.perfCollector.StartPhase(telemetry.PhaseAnimals)
	g.updateAnimals()

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()
	g.spawnOffspring()

	g.perfCollector.StartPhase(telemetry.PhaseRecovery)
	g.checkPopulationFloor()

	g.perfCollector.StartPhase(telemetry.PhaseHistory)
	g.recordHistory()
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// updatePlants grows every plant and adds the buds produced this tick.
func (g *Game) updatePlants() {
	g.buds = g.buds[:0]
	query := g.plantFilter.Query()
	for query.Next() {
		pos, flora := query.Get()
		if systems.GrowFlora(flora, &g.cfg.Plants) {
			g.buds = append(g.buds, *pos)
		}
	}

	for _, parent := range g.buds {
		x, y := systems.Scatter(g.rng, parent.X, parent.Y, g.cfg.Plants.BudOffset, g.bounds)
		g.spawnPlant(x, y, systems.RandomFlora(g.rng, &g.cfg.Plants))
		g.collector.RecordBud()
	}
}

// maybeSpawnPlant adds one random plant with the configured chance.
func (g *Game) maybeSpawnPlant() {
	if g.rng.Float64() >= g.cfg.Plants.SpawnChance {
		return
	}
	x, y := g.randomPoint()
	g.spawnPlant(x, y, systems.RandomFlora(g.rng, &g.cfg.Plants))
	g.collector.RecordPlantSpawn()
}

// updateAnimals runs every animal present at the start of the phase, in
// collection order. Later animals see the moves, meals and deaths of earlier ones.
func (g *Game) updateAnimals() {
	g.order = g.order[:0]
	query := g.animalFilter.Query()
	for query.Next() {
		g.order = append(g.order, query.Entity())
	}

	for _, e := range g.order {
		g.updateAnimal(e)
	}
}

// updateAnimal runs one animal's tick: metabolism, heading, movement,
// feeding and reproduction.
func (g *Game) updateAnimal(e ecs.Entity) {
	pos, heading, vitals, genome, _ := g.animalMapper.Get(e)
	if !systems.Metabolize(vitals, genome.Size, &g.cfg.Animal) {
		return
	}

	systems.JitterHeading(heading, g.rng, &g.cfg.Animal)
	g.steer(e, pos, heading, genome)
	systems.Move(pos, heading.Direction, genome.Speed, g.bounds)
	vitals.Energy -= systems.MovementCost(genome.Speed, genome.Size, &g.cfg.Animal)

	g.feed(e)

	// Re-fetch after feeding removed entities
	pos, _, vitals, genome, org := g.animalMapper.Get(e)
	if !systems.ReadyToBreed(vitals, &g.cfg.Reproduction) {
		return
	}
	systems.Breed(vitals, &g.cfg.Reproduction)
	g.queueBirth(pos, genome, org)
}

// steer turns the animal toward the nearest food it can sense.
func (g *Game) steer(self ecs.Entity, pos *components.Position, heading *components.Heading, genome *traits.Genome) {
	search := systems.NewNearestSearch(pos.X, pos.Y, systems.SenseRadius(*genome, &g.cfg.Animal))

	if genome.Diet.EatsPlants() {
		query := g.plantFilter.Query()
		for query.Next() {
			p, _ := query.Get()
			search.Offer(p.X, p.Y)
		}
	}

	if genome.Diet.EatsAnimals() {
		query := g.animalFilter.Query()
		for query.Next() {
			if query.Entity() == self {
				continue
			}
			p, _, v, other, _ := query.Get()
			if !v.Alive || !systems.CanPrey(genome.Size, other.Size, &g.cfg.Animal) {
				continue
			}
			search.Offer(p.X, p.Y)
		}
	}

	if search.Found {
		systems.SteerToward(heading, pos.X, pos.Y, search.X, search.Y, g.cfg.Animal.SteerBlend)
	}
}

// feed lets the animal eat the first food in reach. Omnivores try plants first.
func (g *Game) feed(self ecs.Entity) {
	pos, _, vitals, genome, _ := g.animalMapper.Get(self)
	radius := systems.EatRadius(genome.Size, &g.cfg.Animal)

	if genome.Diet.EatsPlants() {
		if plant, ok := g.findPlant(pos.X, pos.Y, radius); ok {
			vitals.Energy += systems.PlantGain(genome.Diet, &g.cfg.Feeding)
			g.world.RemoveEntity(plant)
			g.collector.RecordPlantEaten()
			return
		}
	}

	if genome.Diet.EatsAnimals() {
		if prey, ok := g.findPrey(self, pos.X, pos.Y, radius, genome.Size); ok {
			_, _, victim, _, _ := g.animalMapper.Get(prey)
			vitals.Energy += systems.PreyGain(genome.Diet, victim.Energy, &g.cfg.Feeding)
			systems.Kill(victim, components.CauseEaten)
		}
	}
}

// findPlant returns the first plant strictly within radius.
func (g *Game) findPlant(x, y, radius float64) (ecs.Entity, bool) {
	query := g.plantFilter.Query()
	for query.Next() {
		p, _ := query.Get()
		if systems.Distance(x, y, p.X, p.Y) < radius {
			e := query.Entity()
			query.Close()
			return e, true
		}
	}
	return ecs.Entity{}, false
}

// findPrey returns the first other living animal strictly within radius that
// is small enough to eat.
func (g *Game) findPrey(self ecs.Entity, x, y, radius, size float64) (ecs.Entity, bool) {
	query := g.animalFilter.Query()
	for query.Next() {
		e := query.Entity()
		if e == self {
			continue
		}
		p, _, v, other, _ := query.Get()
		if !v.Alive || !systems.CanPrey(size, other.Size, &g.cfg.Animal) {
			continue
		}
		if systems.Distance(x, y, p.X, p.Y) < radius {
			query.Close()
			return e, true
		}
	}
	return ecs.Entity{}, false
}

// queueBirth records one offspring near the parent. It is added after the sweep.
func (g *Game) queueBirth(pos *components.Position, genome *traits.Genome, org *components.Organism) {
	x, y := systems.Scatter(g.rng, pos.X, pos.Y, g.cfg.Reproduction.SpawnOffset, g.bounds)
	child := genome.Mutate(g.rng, &g.cfg.Genome)

	lineage := org.Lineage
	if child.Diet != genome.Diet {
		lineage = g.newLineage()
	}

	g.births = append(g.births, birth{
		x:         x,
		y:         y,
		direction: g.randomDirection(),
		genome:    child,
		parentID:  org.ID,
		lineage:   lineage,
	})
}

// recordHistory appends the end-of-tick population sample.
func (g *Game) recordHistory() {
	sample := telemetry.Sample{
		Tick:       g.tick,
		TimeSec:    float64(g.tick) * g.cfg.Derived.DT,
		Plants:     g.plantCount(),
		Generation: g.generation,
	}

	query := g.animalFilter.Query()
	for query.Next() {
		_, _, _, genome, _ := query.Get()
		switch genome.Diet {
		case traits.Herbivore:
			sample.Herbivores++
		case traits.Carnivore:
			sample.Carnivores++
		case traits.Omnivore:
			sample.Omnivores++
		}
	}

	g.history.Append(sample)
	g.metrics.ObserveSample(sample)
}

func (g *Game) plantCount() int {
	n := 0
	query := g.plantFilter.Query()
	for query.Next() {
		n++
	}
	return n
}
