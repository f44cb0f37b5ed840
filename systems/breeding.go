package systems

import (
	"math/rand"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/traits"
)

// ReadyToBreed reports whether an animal has the surplus and rest needed to reproduce.
func ReadyToBreed(v *components.Vitals, cfg *config.ReproductionConfig) bool {
	return v.Alive && v.Energy > cfg.Threshold && v.ReproCooldown <= 0
}

// Breed charges the parent: energy halves and the cooldown restarts.
func Breed(v *components.Vitals, cfg *config.ReproductionConfig) {
	v.Energy /= 2
	v.ReproCooldown = cfg.Cooldown
}

// Scatter returns a point offset from (x, y) by up to radius on each axis, clamped to the world.
func Scatter(rng *rand.Rand, x, y, radius float64, b Bounds) (float64, float64) {
	nx := x + traits.Uniform(rng, -radius, radius)
	ny := y + traits.Uniform(rng, -radius, radius)
	return b.Clamp(nx, ny)
}
