package systems

import (
	"math/rand"

	"github.com/pthm-cable/survival/components"
	"github.com/pthm-cable/survival/config"
	"github.com/pthm-cable/survival/traits"
)

// RandomFlora samples a fresh plant. Budded plants use this too; nothing is inherited.
func RandomFlora(rng *rand.Rand, cfg *config.PlantsConfig) components.Flora {
	return components.Flora{
		Energy:     traits.Uniform(rng, cfg.InitialEnergy.Min, cfg.InitialEnergy.Max),
		GrowthRate: traits.Uniform(rng, cfg.GrowthRate.Min, cfg.GrowthRate.Max),
		Size:       traits.Uniform(rng, cfg.Size.Min, cfg.Size.Max),
		Color: traits.Color{
			R: uint8(traits.IntBetween(rng, cfg.Red.Min, cfg.Red.Max)),
			G: uint8(traits.IntBetween(rng, cfg.Green.Min, cfg.Green.Max)),
			B: uint8(traits.IntBetween(rng, cfg.Blue.Min, cfg.Blue.Max)),
		},
	}
}

// GrowFlora adds one tick of growth. When energy passes the bud threshold it drops to the
// reset level and GrowFlora returns true; the caller places the bud.
func GrowFlora(f *components.Flora, cfg *config.PlantsConfig) bool {
	f.Energy += f.GrowthRate
	if f.Energy > cfg.BudThreshold {
		f.Energy = cfg.BudReset
		return true
	}
	return false
}
