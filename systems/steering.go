package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/traits"
)

// JitterHeading applies the periodic random turn. When the timer has run out the direction
// is perturbed and the timer re-armed; otherwise the timer counts down.
func JitterHeading(h *components.Heading, rng *rand.Rand, cfg *config.AnimalConfig) {
	if h.ChangeTimer <= 0 {
		h.Direction += traits.Uniform(rng, -cfg.HeadingJitter, cfg.HeadingJitter)
		h.ChangeTimer = traits.IntBetween(rng, cfg.HeadingTimer.Min, cfg.HeadingTimer.Max)
		return
	}
	h.ChangeTimer--
}

// SenseRadius returns the detection radius for a genome.
func SenseRadius(g traits.Genome, cfg *config.AnimalConfig) float64 {
	return g.Sense * cfg.SenseScale
}

// NearestSearch tracks the closest point offered so far that lies strictly inside a radius.
// Ties keep the first point offered.
type NearestSearch struct {
	originX, originY float64
	best             float64

	X, Y  float64
	Found bool
}

// NewNearestSearch starts a search around (x, y).
func NewNearestSearch(x, y, radius float64) NearestSearch {
	return NearestSearch{originX: x, originY: y, best: radius}
}

// Offer considers a candidate and reports whether it became the current nearest.
func (s *NearestSearch) Offer(x, y float64) bool {
	d := Distance(s.originX, s.originY, x, y)
	if d >= s.best {
		return false
	}
	s.best = d
	s.X, s.Y = x, y
	s.Found = true
	return true
}

// SteerToward turns the heading a fraction of the way toward a target point.
func SteerToward(h *components.Heading, fromX, fromY, toX, toY, blend float64) {
	bearing := math.Atan2(toY-fromY, toX-fromX)
	h.Direction += NormalizeAngle(bearing-h.Direction) * blend
}
