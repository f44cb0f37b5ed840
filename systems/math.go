package systems

import "math"

// Bounds is the world rectangle [0, W] x [0, H].
type Bounds struct {
	W, H float64
}

// Clamp pins a point inside the rectangle.
func (b Bounds) Clamp(x, y float64) (float64, float64) {
	return clampFloat(x, 0, b.W), clampFloat(y, 0, b.H)
}

// Contains reports whether a point lies inside the rectangle, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && x <= b.W && y >= 0 && y <= b.H
}

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// NormalizeAngle wraps an angle difference to (-Pi, Pi].
func NormalizeAngle(angle float64) float64 {
	const twoPi = 2 * math.Pi
	a := math.Mod(angle+math.Pi, twoPi)
	if a < 0 {
		a += twoPi
	}
	a -= math.Pi
	if a == -math.Pi {
		a = math.Pi
	}
	return a
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
