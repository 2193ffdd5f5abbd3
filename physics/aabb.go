package physics

import "github.com/0x5844/rigid2d/vector"

// AABB is an axis-aligned box given by its corners.
type AABB struct {
	Min vector.Vector2D `json:"min"`
	Max vector.Vector2D `json:"max"`
}

func NewAABB(min, max vector.Vector2D) AABB {
	return AABB{Min: min, Max: max}
}

// aabbAround returns the box centered on center with the given half extents.
func aabbAround(center, halfExtents vector.Vector2D) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

func (aabb AABB) Contains(point vector.Vector2D) bool {
	return point.X >= aabb.Min.X && point.X <= aabb.Max.X &&
		point.Y >= aabb.Min.Y && point.Y <= aabb.Max.Y
}

func (aabb AABB) Width() float64 {
	return aabb.Max.X - aabb.Min.X
}

func (aabb AABB) Height() float64 {
	return aabb.Max.Y - aabb.Min.Y
}

func (aabb AABB) Expand(margin float64) AABB {
	return AABB{
		Min: vector.Vector2D{X: aabb.Min.X - margin, Y: aabb.Min.Y - margin},
		Max: vector.Vector2D{X: aabb.Max.X + margin, Y: aabb.Max.Y + margin},
	}
}

// Union returns the smallest box containing both boxes.
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: vector.Vector2D{X: min(aabb.Min.X, other.Min.X), Y: min(aabb.Min.Y, other.Min.Y)},
		Max: vector.Vector2D{X: max(aabb.Max.X, other.Max.X), Y: max(aabb.Max.Y, other.Max.Y)},
	}
}
