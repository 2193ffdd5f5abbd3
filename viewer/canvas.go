package viewer

import (
	"math"

	"github.com/0x5844/rigid2d/engine"
	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/vector"
)

type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellStatic
	CellCircle
	CellRectangle
	CellPinned
	CellResting
	CellCollision
)

var glyphs = map[CellKind]rune{
	CellEmpty:     ' ',
	CellStatic:    '█',
	CellCircle:    'o',
	CellRectangle: '#',
	CellPinned:    '+',
	CellResting:   '.',
	CellCollision: '*',
}

func (k CellKind) Glyph() rune {
	return glyphs[k]
}

// Terminal cells are about twice as tall as they are wide.
const cellAspect = 2.0

// Projection maps world coordinates onto terminal cells with a uniform
// scale, keeping +Y pointing down the screen.
type Projection struct {
	Origin vector.Vector2D
	// Scale is cells per world unit horizontally; vertical is Scale/cellAspect.
	Scale float64
}

// Fit returns the projection that shows all of bounds, plus margin world
// units on each side, in a width x height cell area.
func Fit(bounds physics.AABB, width, height int, margin float64) Projection {
	bounds = bounds.Expand(margin)
	w, h := bounds.Width(), bounds.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	scale := math.Min(float64(width)/w, float64(height)*cellAspect/h)
	return Projection{Origin: bounds.Min, Scale: scale}
}

func (p Projection) ToCell(v vector.Vector2D) (int, int) {
	x := (v.X - p.Origin.X) * p.Scale
	y := (v.Y - p.Origin.Y) * p.Scale / cellAspect
	return int(math.Floor(x)), int(math.Floor(y))
}

// ToWorld returns the world point at the center of cell (x, y).
func (p Projection) ToWorld(x, y int) vector.Vector2D {
	return vector.Vector2D{
		X: p.Origin.X + (float64(x)+0.5)/p.Scale,
		Y: p.Origin.Y + (float64(y)+0.5)*cellAspect/p.Scale,
	}
}

type Canvas struct {
	Width, Height int
	cells         []CellKind
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{Width: width, Height: height, cells: make([]CellKind, max(width*height, 0))}
}

func (c *Canvas) At(x, y int) CellKind {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return CellEmpty
	}
	return c.cells[y*c.Width+x]
}

func (c *Canvas) set(x, y int, k CellKind) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	c.cells[y*c.Width+x] = k
}

// Count returns how many cells hold k.
func (c *Canvas) Count(k CellKind) int {
	n := 0
	for _, cell := range c.cells {
		if cell == k {
			n++
		}
	}
	return n
}

// Row renders line y as text.
func (c *Canvas) Row(y int) string {
	row := make([]rune, c.Width)
	for x := range row {
		row[x] = c.At(x, y).Glyph()
	}
	return string(row)
}

// Rasterize draws the bodies of s, then its collision points, through p.
// Bodies smaller than a cell still mark the cell holding their center.
func Rasterize(s engine.Snapshot, p Projection, width, height int) *Canvas {
	c := NewCanvas(width, height)
	for _, b := range s.Bodies {
		drawBody(c, p, b)
	}
	for _, col := range s.Collisions {
		x, y := p.ToCell(col.Point)
		c.set(x, y, CellCollision)
	}
	return c
}

func drawBody(c *Canvas, p Projection, b engine.BodyState) {
	kind := kindOf(b)
	half := vector.Vector2D{X: b.Radius, Y: b.Radius}
	if len(b.Vertices) > 0 {
		half = vector.Vector2D{}
		for _, v := range b.Vertices {
			d := v.Sub(b.Center)
			half.X = math.Max(half.X, math.Abs(d.X))
			half.Y = math.Max(half.Y, math.Abs(d.Y))
		}
	}
	x0, y0 := p.ToCell(b.Center.Sub(half))
	x1, y1 := p.ToCell(b.Center.Add(half))
	for y := max(y0, 0); y <= min(y1, c.Height-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.Width-1); x++ {
			if contains(b, p.ToWorld(x, y)) {
				c.set(x, y, kind)
			}
		}
	}
	cx, cy := p.ToCell(b.Center)
	c.set(cx, cy, kind)
}

func kindOf(b engine.BodyState) CellKind {
	switch {
	case b.Pinned:
		return CellPinned
	case b.Static:
		return CellStatic
	case b.Resting:
		return CellResting
	case b.Shape == physics.ShapeCircle.String():
		return CellCircle
	default:
		return CellRectangle
	}
}

func contains(b engine.BodyState, point vector.Vector2D) bool {
	if len(b.Vertices) == 0 {
		return point.DistanceSquared(b.Center) <= b.Radius*b.Radius
	}
	// Convex polygon: the point must sit on the same side of every edge.
	sign := 0.0
	for i, v := range b.Vertices {
		next := b.Vertices[(i+1)%len(b.Vertices)]
		cross := next.Sub(v).Cross(point.Sub(v))
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return true
}
