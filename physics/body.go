package physics

import (
	"math"

	"github.com/0x5844/rigid2d/vector"
)

// Body is a rigid circle or rectangle. Bodies are created by a World, which
// assigns the ID. Fields may be read freely between steps; geometry must be
// changed through Move and Rotate so the shape stays consistent with Center
// and Angle.
type Body struct {
	ID    int
	Shape Shape

	Center        vector.Vector2D
	AverageCenter vector.Vector2D
	Angle         float64
	AverageAngle  float64

	Velocity            vector.Vector2D
	AngularVelocity     float64
	Acceleration        vector.Vector2D
	AngularAcceleration float64

	// InverseMass is 0 for immovable bodies.
	InverseMass float64
	// InverseInertia is 0 for bodies that cannot rotate.
	InverseInertia float64

	Friction    float64
	Restitution float64
	// Permeability above 0 turns the body into a pass-through volume that
	// only damps the velocity of bodies touching it.
	Permeability float64

	// Pinned bodies never translate but may still rotate.
	Pinned bool
	Static bool

	// BoundingBox holds the half extents used by the broad phase.
	BoundingBox vector.Vector2D
	RestingTime float64

	// Payload belongs to the caller and is never read by the simulation.
	Payload any
}

func newBody(shape Shape, center vector.Vector2D, mass, friction, restitution float64, gravity vector.Vector2D) *Body {
	b := &Body{
		Shape:         shape,
		Center:        center,
		AverageCenter: center,
		Friction:      friction,
		Restitution:   restitution,
	}
	b.setMass(mass)
	if b.InverseMass != 0 {
		b.Acceleration = gravity
	}
	b.updateBoundingBox()
	return b
}

func (b *Body) setMass(mass float64) {
	if mass <= 0 {
		b.InverseMass = 0
		b.InverseInertia = 0
		b.Static = true
		return
	}
	b.InverseMass = 1 / mass
	b.Static = false
	b.InverseInertia = 0
	if inertia := b.Shape.MomentOfInertia(mass); inertia != 0 {
		b.InverseInertia = 1 / inertia
	}
}

// Mass returns the body's mass, or 0 for immovable bodies.
func (b *Body) Mass() float64 {
	if b.InverseMass == 0 {
		return 0
	}
	return 1 / b.InverseMass
}

// IsStatic reports whether the body is immovable.
func (b *Body) IsStatic() bool {
	return b.Static || b.InverseMass == 0
}

// canTranslate reports whether physics may change the body's position.
func (b *Body) canTranslate() bool {
	return !b.Pinned && b.InverseMass != 0
}

// Move translates the body unconditionally.
func (b *Body) Move(v vector.Vector2D) {
	b.Center = b.Center.Add(v)
	b.Shape.translate(v)
	b.updateBoundingBox()
}

// nudge is the translation used by integration, joints and position
// correction. Pinned bodies are translation-locked and immovable bodies have
// no inverse mass, so both ignore it; the other side of a contact moves by
// its own share only, and later resolution passes close the rest.
func (b *Body) nudge(v vector.Vector2D) {
	if !b.canTranslate() {
		return
	}
	b.Move(v)
}

// Rotate turns the body by angle radians about its center.
func (b *Body) Rotate(angle float64) {
	b.Angle += angle
	b.Shape.rotate(b.Center, angle)
	b.updateBoundingBox()
}

func (b *Body) updateBoundingBox() {
	b.BoundingBox = b.Shape.halfExtents(b.Center)
}

func (b *Body) AABB() AABB {
	return aabbAround(b.Center, b.BoundingBox)
}

// ContainsPoint reports whether point lies inside the body's shape.
func (b *Body) ContainsPoint(point vector.Vector2D) bool {
	return b.Shape.containsPoint(b.Center, point)
}

// Radius returns the circle radius, or 0 for rectangles.
func (b *Body) Radius() float64 {
	if c, ok := b.Shape.(*Circle); ok {
		return c.Radius
	}
	return 0
}

// Size returns the rectangle width and height, or the circle diameter on
// both axes.
func (b *Body) Size() (width, height float64) {
	switch s := b.Shape.(type) {
	case *Rectangle:
		return s.Width, s.Height
	case *Circle:
		return 2 * s.Radius, 2 * s.Radius
	}
	return 0, 0
}

func roundVector(v vector.Vector2D) vector.Vector2D {
	return vector.Vector2D{X: math.Round(v.X), Y: math.Round(v.Y)}
}
