package traits

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/survival/config"
)

// Genome is the immutable heritable description of an animal.
// Offspring receive a mutated copy; the parent's genome is never modified.
type Genome struct {
	Speed float64 `json:"speed"` // distance per tick
	Size  float64 `json:"size"`  // scales metabolism, move cost, eat radius and prey eligibility
	Sense float64 `json:"sense"` // detection radius in units of animal.sense_scale
	Diet  Diet    `json:"diet"`
	Color Color   `json:"color"`
}

// RandomGenome samples a founder genome.
// Draw order is speed, size, sense, diet, then the colour channels.
func RandomGenome(rng *rand.Rand, cfg *config.GenomeConfig) Genome {
	return Genome{
		Speed: Uniform(rng, cfg.Speed.Initial.Min, cfg.Speed.Initial.Max),
		Size:  Uniform(rng, cfg.Size.Initial.Min, cfg.Size.Initial.Max),
		Sense: Uniform(rng, cfg.Sense.Initial.Min, cfg.Sense.Initial.Max),
		Diet:  Diet(rng.Intn(NumDiets)),
		Color: Color{
			R: uint8(IntBetween(rng, cfg.Color.Min, cfg.Color.Max)),
			G: uint8(IntBetween(rng, cfg.Color.Min, cfg.Color.Max)),
			B: uint8(IntBetween(rng, cfg.Color.Min, cfg.Color.Max)),
		},
	}
}

// Mutate returns an offspring genome derived from g.
func (g Genome) Mutate(rng *rand.Rand, cfg *config.GenomeConfig) Genome {
	child := Genome{
		Speed: max(cfg.Speed.Floor, g.Speed+Uniform(rng, -cfg.Speed.Mutation, cfg.Speed.Mutation)),
		Size:  max(cfg.Size.Floor, g.Size+Uniform(rng, -cfg.Size.Mutation, cfg.Size.Mutation)),
		Sense: max(cfg.Sense.Floor, g.Sense+Uniform(rng, -cfg.Sense.Mutation, cfg.Sense.Mutation)),
		Diet:  g.Diet,
	}

	if rng.Float64() >= cfg.DietInheritance {
		child.Diet = Diet(rng.Intn(NumDiets))
	}

	d := cfg.ColorMutation
	child.Color = Color{
		R: clampChannel(int(g.Color.R) + IntBetween(rng, -d, d)),
		G: clampChannel(int(g.Color.G) + IntBetween(rng, -d, d)),
		B: clampChannel(int(g.Color.B) + IntBetween(rng, -d, d)),
	}

	return child
}

// Validate checks a genome injected from outside the sampler.
func (g Genome) Validate() error {
	if !g.Diet.Valid() {
		return fmt.Errorf("genome: unknown diet %d", uint8(g.Diet))
	}
	if g.Speed < 0 || g.Size <= 0 || g.Sense < 0 {
		return fmt.Errorf("genome: speed=%v size=%v sense=%v out of range", g.Speed, g.Size, g.Sense)
	}
	return nil
}

// Uniform draws from U(lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// IntBetween draws an integer uniformly from the inclusive range [lo, hi].
func IntBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
