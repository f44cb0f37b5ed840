package systems

import (
	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/traits"
)

// EatRadius is the contact distance inside which an animal can eat.
func EatRadius(size float64, cfg *config.AnimalConfig) float64 {
	return cfg.EatRadiusBase + size*cfg.EatRadiusPerSize
}

// CanPrey reports whether a hunter of the given size may target or eat an animal of preySize.
func CanPrey(hunterSize, preySize float64, cfg *config.AnimalConfig) bool {
	return preySize < hunterSize*cfg.PreySizeRatio
}

// PlantGain returns the energy a diet gains from one plant.
func PlantGain(d traits.Diet, cfg *config.FeedingConfig) float64 {
	switch d {
	case traits.Herbivore:
		return cfg.HerbivorePlantGain
	case traits.Omnivore:
		return cfg.OmnivorePlantGain
	default:
		return 0
	}
}

// PreyGain returns the energy a diet gains from eating an animal holding victimEnergy.
func PreyGain(d traits.Diet, victimEnergy float64, cfg *config.FeedingConfig) float64 {
	switch d {
	case traits.Carnivore:
		return cfg.CarnivorePreyFraction * victimEnergy
	case traits.Omnivore:
		return cfg.OmnivorePreyFraction * victimEnergy
	default:
		return 0
	}
}
