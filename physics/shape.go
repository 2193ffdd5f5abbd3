package physics

import (
	"math"

	"github.com/0x5844/rigid2d/vector"
)

type ShapeType int

const (
	ShapeCircle ShapeType = iota
	ShapeRectangle
)

func (t ShapeType) String() string {
	switch t {
	case ShapeCircle:
		return "circle"
	case ShapeRectangle:
		return "rectangle"
	}
	return "unknown"
}

// Shape is the geometry carried by a Body. It is implemented only by
// *Circle and *Rectangle.
type Shape interface {
	Type() ShapeType
	MomentOfInertia(mass float64) float64
	halfExtents(center vector.Vector2D) vector.Vector2D
	containsPoint(center, point vector.Vector2D) bool
	translate(v vector.Vector2D)
	rotate(center vector.Vector2D, angle float64)
}

type Circle struct {
	Radius float64
}

func NewCircleShape(radius float64) *Circle {
	return &Circle{Radius: radius}
}

func (c *Circle) Type() ShapeType {
	return ShapeCircle
}

func (c *Circle) MomentOfInertia(mass float64) float64 {
	return mass * c.Radius * c.Radius / 12.0
}

func (c *Circle) halfExtents(vector.Vector2D) vector.Vector2D {
	return vector.Vector2D{X: c.Radius, Y: c.Radius}
}

func (c *Circle) containsPoint(center, point vector.Vector2D) bool {
	return center.DistanceSquared(point) <= c.Radius*c.Radius
}

func (c *Circle) translate(vector.Vector2D) {}

func (c *Circle) rotate(vector.Vector2D, float64) {}

// Rectangle keeps its corners in world space. Face i runs from Vertices[i]
// to Vertices[i+1] and FaceNormals[i] is its outward unit normal.
type Rectangle struct {
	Width, Height float64
	Vertices      [4]vector.Vector2D
	FaceNormals   [4]vector.Vector2D
}

// NewRectangleShape returns an axis-aligned rectangle centered on center.
func NewRectangleShape(center vector.Vector2D, width, height float64) *Rectangle {
	halfW, halfH := width*0.5, height*0.5
	r := &Rectangle{
		Width:  width,
		Height: height,
		Vertices: [4]vector.Vector2D{
			{X: center.X - halfW, Y: center.Y - halfH},
			{X: center.X + halfW, Y: center.Y - halfH},
			{X: center.X + halfW, Y: center.Y + halfH},
			{X: center.X - halfW, Y: center.Y + halfH},
		},
	}
	r.updateFaceNormals()
	return r
}

func (r *Rectangle) Type() ShapeType {
	return ShapeRectangle
}

func (r *Rectangle) MomentOfInertia(mass float64) float64 {
	return mass * (r.Width*r.Width + r.Height*r.Height) / 12.0
}

func (r *Rectangle) halfExtents(center vector.Vector2D) vector.Vector2D {
	var ext vector.Vector2D
	for _, v := range r.Vertices {
		ext.X = math.Max(ext.X, math.Abs(v.X-center.X))
		ext.Y = math.Max(ext.Y, math.Abs(v.Y-center.Y))
	}
	return ext
}

func (r *Rectangle) containsPoint(_, point vector.Vector2D) bool {
	for i, n := range r.FaceNormals {
		if point.Sub(r.Vertices[i]).Dot(n) > 0 {
			return false
		}
	}
	return true
}

func (r *Rectangle) translate(v vector.Vector2D) {
	for i := range r.Vertices {
		r.Vertices[i] = r.Vertices[i].Add(v)
	}
}

func (r *Rectangle) rotate(center vector.Vector2D, angle float64) {
	for i := range r.Vertices {
		r.Vertices[i] = r.Vertices[i].Rotate(center, angle)
	}
	r.updateFaceNormals()
}

func (r *Rectangle) updateFaceNormals() {
	for i := range r.FaceNormals {
		r.FaceNormals[i] = r.Vertices[(i+1)%4].Sub(r.Vertices[(i+2)%4]).Normalize()
	}
}
