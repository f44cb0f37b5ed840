package systems

import (
	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/config"
)

// Metabolize ages a living animal by one tick, charges basal metabolism and decays the
// breeding cooldown. Returns false when the animal is dead, including when it dies here.
func Metabolize(v *components.Vitals, size float64, cfg *config.AnimalConfig) bool {
	if !v.Alive {
		return false
	}

	v.Age++
	v.Energy -= cfg.BaseMetabolism * size

	if v.ReproCooldown > 0 {
		v.ReproCooldown--
	}

	switch {
	case v.Energy <= 0:
		Kill(v, components.CauseStarved)
	case v.Age > cfg.MaxAge:
		Kill(v, components.CauseOldAge)
	}

	return v.Alive
}

// Kill marks an animal dead. A second call keeps the first cause.
func Kill(v *components.Vitals, cause components.DeathCause) {
	if !v.Alive {
		return
	}
	v.Alive = false
	v.Cause = cause
}

// MovementCost returns the energy charged for one tick of travel.
func MovementCost(speed, size float64, cfg *config.AnimalConfig) float64 {
	return cfg.MoveCost * speed * size
}
