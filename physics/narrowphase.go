package physics

import (
	"math"

	"github.com/0x5844/rigid2d/vector"
)

// contact describes one penetration. End is Start moved Depth along Normal.
type contact struct {
	Depth  float64
	Normal vector.Vector2D
	Start  vector.Vector2D
	End    vector.Vector2D
}

func newContact(depth float64, normal, start vector.Vector2D) contact {
	return contact{
		Depth:  depth,
		Normal: normal,
		Start:  start,
		End:    start.Add(normal.Scale(depth)),
	}
}

func (c *contact) flip() {
	c.Normal = c.Normal.Negate()
	c.Start, c.End = c.End, c.Start
}

// testCollision is the narrow phase. Pairs of immovable bodies never
// collide.
func testCollision(a, b *Body) (contact, bool) {
	if a.InverseMass == 0 && b.InverseMass == 0 {
		return contact{}, false
	}
	switch sa := a.Shape.(type) {
	case *Circle:
		switch sb := b.Shape.(type) {
		case *Circle:
			return circleCircle(a.Center, sa.Radius, b.Center, sb.Radius)
		case *Rectangle:
			return rectangleCircle(sb, a.Center, sa.Radius)
		}
	case *Rectangle:
		switch sb := b.Shape.(type) {
		case *Circle:
			return rectangleCircle(sa, b.Center, sb.Radius)
		case *Rectangle:
			return rectangleRectangle(sa, sb)
		}
	}
	return contact{}, false
}

func circleCircle(c1 vector.Vector2D, r1 float64, c2 vector.Vector2D, r2 float64) (contact, bool) {
	from1to2 := c2.Sub(c1)
	radiusSum := r1 + r2
	dist := from1to2.Magnitude()
	if dist > radiusSum {
		return contact{}, false
	}
	if dist == 0 {
		// Coincident centers: push along -Y from the larger circle's rim.
		if r1 > r2 {
			return newContact(radiusSum, vector.Vector2D{X: 0, Y: -1}, c1.Add(vector.Vector2D{Y: r1})), true
		}
		return newContact(radiusSum, vector.Vector2D{X: 0, Y: -1}, c2.Add(vector.Vector2D{Y: r2})), true
	}
	onRim2 := from1to2.Negate().Normalize().Scale(r2)
	return newContact(radiusSum-dist, from1to2.Normalize(), c2.Add(onRim2)), true
}

// axisLeastPenetration finds, among the faces of rect, the one that other
// penetrates the least. It reports false as soon as a face has no vertex of
// other behind it, which means the faces separate the two rectangles.
func axisLeastPenetration(rect, other *Rectangle) (contact, bool) {
	bestDistance := math.Inf(1)
	bestIndex := -1
	var bestSupport vector.Vector2D

	for i, n := range rect.FaceNormals {
		dir := n.Negate()
		onEdge := rect.Vertices[i]

		supportDistance := math.Inf(-1)
		found := false
		var support vector.Vector2D
		for _, v := range other.Vertices {
			projection := v.Sub(onEdge).Dot(dir)
			if projection > 0 && projection > supportDistance {
				support = v
				supportDistance = projection
				found = true
			}
		}
		if !found {
			return contact{}, false
		}
		if supportDistance < bestDistance {
			bestDistance = supportDistance
			bestIndex = i
			bestSupport = support
		}
	}

	n := rect.FaceNormals[bestIndex]
	return newContact(bestDistance, n, bestSupport.Add(n.Scale(bestDistance))), true
}

func rectangleRectangle(a, b *Rectangle) (contact, bool) {
	ca, ok := axisLeastPenetration(a, b)
	if !ok {
		return contact{}, false
	}
	cb, ok := axisLeastPenetration(b, a)
	if !ok {
		return contact{}, false
	}
	if ca.Depth < cb.Depth {
		return newContact(ca.Depth, ca.Normal, ca.Start.Sub(ca.Normal.Scale(ca.Depth))), true
	}
	return newContact(cb.Depth, cb.Normal.Negate(), cb.Start), true
}

// rectangleCircle classifies the circle center against the rectangle faces:
// inside, facing a face, or in the corner region of one of the face's two
// vertices.
func rectangleCircle(rect *Rectangle, center vector.Vector2D, radius float64) (contact, bool) {
	inside := true
	bestDistance := math.Inf(-1)
	nearestEdge := 0

	for i, n := range rect.FaceNormals {
		projection := center.Sub(rect.Vertices[i]).Dot(n)
		if projection > 0 {
			bestDistance = projection
			nearestEdge = i
			inside = false
			break
		}
		if projection > bestDistance {
			bestDistance = projection
			nearestEdge = i
		}
	}

	n := rect.FaceNormals[nearestEdge]
	if inside {
		return newContact(radius-bestDistance, n, center.Sub(n.Scale(radius))), true
	}

	start := rect.Vertices[nearestEdge]
	end := rect.Vertices[(nearestEdge+1)%4]

	toCenter := center.Sub(start)
	edge := end.Sub(start)
	if toCenter.Dot(edge) < 0 {
		return cornerContact(center, toCenter, radius)
	}

	toCenter = center.Sub(end)
	if toCenter.Dot(edge.Negate()) < 0 {
		return cornerContact(center, toCenter, radius)
	}

	if bestDistance < radius {
		return newContact(radius-bestDistance, n, center.Sub(n.Scale(radius))), true
	}
	return contact{}, false
}

func cornerContact(center, fromCorner vector.Vector2D, radius float64) (contact, bool) {
	dist := fromCorner.Magnitude()
	if dist > radius {
		return contact{}, false
	}
	normal := fromCorner.Normalize()
	return newContact(radius-dist, normal, center.Add(normal.Scale(-radius))), true
}
