package game

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pthm-cable/survival/telemetry"
	"github.com/pthm-cable/survival/traits"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.samplePopulation())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		slog.Info("perf", "perf", perfStats)
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	g.metrics.ObserveWindow(stats, perfStats)

	if g.bookmarkDetector == nil {
		return
	}
	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// samplePopulation gathers the living population for a stats window.
func (g *Game) samplePopulation() telemetry.PopulationSample {
	pop := telemetry.PopulationSample{
		Generation: g.generation,
		Plants:     g.plantCount(),
	}
	lineages := make(map[uuid.UUID]struct{})

	query := g.animalFilter.Query()
	for query.Next() {
		_, _, vitals, genome, org := query.Get()
		if !vitals.Alive {
			continue
		}

		switch genome.Diet {
		case traits.Herbivore:
			pop.Herbivores++
		case traits.Carnivore:
			pop.Carnivores++
		case traits.Omnivore:
			pop.Omnivores++
		}
		pop.Energies = append(pop.Energies, vitals.Energy)
		pop.Traits = append(pop.Traits, telemetry.TraitSample{Speed: genome.Speed, Size: genome.Size, Sense: genome.Sense})
		lineages[org.Lineage] = struct{}{}
	}
	pop.ActiveLineages = len(lineages)

	return pop
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.createSnapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot returns the current observable state.
func (g *Game) Snapshot() *telemetry.Snapshot {
	return g.createSnapshot(nil)
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.seed,
		WorldWidth:  g.cfg.World.Width,
		WorldHeight: g.cfg.World.Height,
		Tick:        g.tick,
		ElapsedSec:  g.Elapsed().Seconds(),
		Generation:  g.generation,
		Paused:      g.paused,
		Animals:     []telemetry.AnimalState{},
		Plants:      []telemetry.PlantState{},
		Bookmark:    bookmark,
	}

	query := g.animalFilter.Query()
	for query.Next() {
		pos, heading, vitals, genome, org := query.Get()
		snapshot.Animals = append(snapshot.Animals, telemetry.AnimalState{
			ID:       org.ID,
			ParentID: org.ParentID,
			Lineage:  org.Lineage.String(),
			X:        pos.X,
			Y:        pos.Y,
			Heading:  heading.Direction,
			Energy:   vitals.Energy,
			Age:      vitals.Age,
			Cooldown: vitals.ReproCooldown,
			Alive:    vitals.Alive,
			Genome:   *genome,
		})
	}

	plants := g.plantFilter.Query()
	for plants.Next() {
		pos, flora := plants.Get()
		snapshot.Plants = append(snapshot.Plants, telemetry.PlantState{
			X:          pos.X,
			Y:          pos.Y,
			Energy:     flora.Energy,
			GrowthRate: flora.GrowthRate,
			Size:       flora.Size,
			Color:      flora.Color,
		})
	}

	return snapshot
}
