// Package components defines ECS components for the simulation.
package components

import (
	"github.com/google/uuid"

	"github.com/pthm-cable/survival/traits"
)

// DeathCause records why an animal stopped being alive.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarved
	CauseOldAge
	CauseEaten
)

// String returns the cause name used in logs and metrics labels.
func (c DeathCause) String() string {
	switch c {
	case CauseStarved:
		return "starved"
	case CauseOldAge:
		return "old_age"
	case CauseEaten:
		return "eaten"
	default:
		return "none"
	}
}

// Vitals tracks an animal's metabolic state.
// Alive only ever goes from true to false; dead animals are swept at the end of the tick.
type Vitals struct {
	Age           int     // ticks lived
	Energy        float64 // may go negative on the tick of death
	Alive         bool
	ReproCooldown int // ticks until breeding is allowed again
	Cause         DeathCause
}

// Organism bundles identity and lineage.
type Organism struct {
	ID         uint32
	ParentID   uint32    // 0 for founders
	Lineage    uuid.UUID // shared with descendants until a diet switch
	Generation int       // world generation at birth
	BornTick   int32
}

// Flora is a plant's state. Plants have no genome and no death except by being eaten.
type Flora struct {
	Energy     float64
	GrowthRate float64 // energy gained per tick
	Size       float64
	Color      traits.Color
}
