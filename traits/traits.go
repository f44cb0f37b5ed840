// Package traits defines heritable animal characteristics: diet classes, colours and genomes.
package traits

import "fmt"

// Diet selects what an animal eats.
type Diet uint8

const (
	Herbivore Diet = iota // Eats plants
	Carnivore             // Eats smaller animals
	Omnivore              // Eats plants, falls back to smaller animals

	NumDiets = 3
)

// AllDiets lists every diet class in display order.
var AllDiets = [NumDiets]Diet{Herbivore, Carnivore, Omnivore}

// String returns the lowercase diet name.
func (d Diet) String() string {
	switch d {
	case Herbivore:
		return "herbivore"
	case Carnivore:
		return "carnivore"
	case Omnivore:
		return "omnivore"
	default:
		return fmt.Sprintf("diet(%d)", uint8(d))
	}
}

// Valid reports whether d is one of the known diet classes.
func (d Diet) Valid() bool {
	return d < NumDiets
}

// EatsPlants reports whether the diet feeds on plants.
func (d Diet) EatsPlants() bool {
	return d == Herbivore || d == Omnivore
}

// EatsAnimals reports whether the diet feeds on other animals.
func (d Diet) EatsAnimals() bool {
	return d == Carnivore || d == Omnivore
}

// MarshalText encodes the diet by name.
func (d Diet) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown diet %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a diet name.
func (d *Diet) UnmarshalText(text []byte) error {
	parsed, err := ParseDiet(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDiet converts a diet name to a Diet.
func ParseDiet(s string) (Diet, error) {
	for _, d := range AllDiets {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown diet %q", s)
}

// Color is an RGB colour.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Marker returns the indicator colour drawn on top of an animal of this diet.
func (d Diet) Marker() Color {
	switch d {
	case Herbivore:
		return Color{0, 128, 0} // Green
	case Carnivore:
		return Color{255, 0, 0} // Red
	case Omnivore:
		return Color{255, 255, 0} // Yellow
	default:
		return Color{150, 150, 150} // Gray
	}
}

// clampChannel limits v to a valid colour channel value.
func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
