package systems

import (
	"math"

	"github.com/pthm-cable/survival/components"
)

// Move displaces a position by speed along the heading and pins it to the world edges.
// There is no wrap-around or bounce.
func Move(pos *components.Position, direction, speed float64, b Bounds) {
	pos.X += math.Cos(direction) * speed
	pos.Y += math.Sin(direction) * speed
	pos.X, pos.Y = b.Clamp(pos.X, pos.Y)
}
