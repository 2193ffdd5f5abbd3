// Package vector provides the 2D vector value type shared by the simulator
// and its consumers.
package vector

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used by Equals.
const Epsilon = 1e-9

type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewVector2D(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v1 Vector2D) Add(v2 Vector2D) Vector2D {
	return Vector2D{X: v1.X + v2.X, Y: v1.Y + v2.Y}
}

func (v1 Vector2D) Sub(v2 Vector2D) Vector2D {
	return Vector2D{X: v1.X - v2.X, Y: v1.Y - v2.Y}
}

func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{X: v.X * factor, Y: v.Y * factor}
}

func (v Vector2D) Negate() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product.
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// Perp returns v rotated a quarter turn counter-clockwise.
func (v Vector2D) Perp() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

func (v Vector2D) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vector2D) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns the unit vector in the direction of v. The zero vector
// is returned unchanged.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Magnitude()
	if mag == 0 {
		mag = 1
	}
	invMag := 1.0 / mag
	return Vector2D{X: v.X * invMag, Y: v.Y * invMag}
}

func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Magnitude()
}

func (v Vector2D) DistanceSquared(other Vector2D) float64 {
	return v.Sub(other).MagnitudeSquared()
}

// Rotate rotates v by angle radians about center.
func (v Vector2D) Rotate(center Vector2D, angle float64) Vector2D {
	r := mgl64.Rotate2D(angle).Mul2x1(mgl64.Vec2{v.X - center.X, v.Y - center.Y})
	return Vector2D{X: r[0] + center.X, Y: r[1] + center.Y}
}

func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Equals reports whether v and other differ by less than Epsilon on both axes.
func (v Vector2D) Equals(other Vector2D) bool {
	return math.Abs(v.X-other.X) < Epsilon && math.Abs(v.Y-other.Y) < Epsilon
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}
