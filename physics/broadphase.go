package physics

import "math"

// boundTest is the broad phase: strict overlap of the half-extent boxes.
func boundTest(a, b *Body) bool {
	return math.Abs(a.Center.X-b.Center.X) < a.BoundingBox.X+b.BoundingBox.X &&
		math.Abs(a.Center.Y-b.Center.Y) < a.BoundingBox.Y+b.BoundingBox.Y
}
