package components

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Heading holds an animal's travel direction and the countdown to its next random turn.
type Heading struct {
	Direction   float64 // radians, unbounded
	ChangeTimer int     // ticks until the next random heading change
}
