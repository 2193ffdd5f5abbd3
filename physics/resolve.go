package physics

import "github.com/0x5844/rigid2d/vector"

// Collision reports one contact handled during a step. Normal points from
// body A toward body B.
type Collision struct {
	A      int             `json:"a"`
	B      int             `json:"b"`
	Depth  float64         `json:"depth"`
	Normal vector.Vector2D `json:"normal"`
	Point  vector.Vector2D `json:"point"`
	// PassThrough marks contacts with a permeable body.
	PassThrough bool `json:"pass_through,omitempty"`
}

// passThrough damps the velocity of whichever body touches a permeable one.
// It reports false when neither body is permeable.
func passThrough(a, b *Body) bool {
	if a.Permeability <= 0 && b.Permeability <= 0 {
		return false
	}
	if a.Permeability > 0 {
		dampBy(b, a.Permeability)
	}
	if b.Permeability > 0 {
		dampBy(a, b.Permeability)
	}
	return true
}

// dampBy scales a body's motion by 1-permeability. A fully permeable body
// leaves it untouched rather than stopping it.
func dampBy(b *Body, permeability float64) {
	if permeability >= 1 {
		return
	}
	b.Velocity = b.Velocity.Scale(1 - permeability)
	b.AngularVelocity *= 1 - permeability
}

// resolve separates a and b and applies normal and friction impulses. The
// contact normal must point from a to b. It reports whether the contact
// was a real overlap.
func (w *World) resolve(a, b *Body, c contact) bool {
	imA, imB := a.InverseMass, b.InverseMass
	if imA == 0 && imB == 0 {
		return false
	}
	n := c.Normal
	total := imA + imB

	correction := n.Scale(c.Depth / total * positionCorrectionRate)
	if correction.IsZero() {
		return false
	}
	// A pinned side stays put and keeps only its rotational response.
	a.nudge(correction.Scale(-imA))
	b.nudge(correction.Scale(imB))

	// Heavier bodies move less, so the contact sits closer to their side.
	p := c.Start.Scale(imB / total).Add(c.End.Scale(imA / total))
	r1 := p.Sub(a.Center)
	r2 := p.Sub(b.Center)

	v1 := a.Velocity.Add(r1.Perp().Scale(a.AngularVelocity))
	v2 := b.Velocity.Add(r2.Perp().Scale(b.AngularVelocity))
	relative := v2.Sub(v1)

	velAlongNormal := relative.Dot(n)
	if velAlongNormal > 0 {
		return true
	}

	restitution := min(a.Restitution, b.Restitution)
	friction := min(a.Friction, b.Friction)

	r1CrossN := r1.Cross(n)
	r2CrossN := r2.Cross(n)
	jN := -(1 + restitution) * velAlongNormal /
		(total + r1CrossN*r1CrossN*a.InverseInertia + r2CrossN*r2CrossN*b.InverseInertia)
	applyImpulse(a, b, n, jN, r1CrossN, r2CrossN)

	tangent := relative.Sub(n.Scale(relative.Dot(n))).Normalize().Negate()
	r1CrossT := r1.Cross(tangent)
	r2CrossT := r2.Cross(tangent)
	jT := -(1 + restitution) * relative.Dot(tangent) * friction /
		(total + r1CrossT*r1CrossT*a.InverseInertia + r2CrossT*r2CrossT*b.InverseInertia)
	if jT > jN {
		jT = jN
	}
	applyImpulse(a, b, tangent, jT, r1CrossT, r2CrossT)

	for _, body := range []*Body{a, b} {
		if body.Static {
			continue
		}
		body.Velocity = body.Velocity.Scale(w.Damp)
		body.AngularVelocity *= w.AngularDamp
		if body.Pinned {
			body.Velocity = vector.Vector2D{}
		}
	}
	return true
}

// applyImpulse pushes a against dir and b along it.
func applyImpulse(a, b *Body, dir vector.Vector2D, j, r1Cross, r2Cross float64) {
	impulse := dir.Scale(j)
	if !a.Static {
		a.Velocity = a.Velocity.Sub(impulse.Scale(a.InverseMass))
		a.AngularVelocity -= r1Cross * j * a.InverseInertia
	}
	if !b.Static {
		b.Velocity = b.Velocity.Add(impulse.Scale(b.InverseMass))
		b.AngularVelocity += r2Cross * j * b.InverseInertia
	}
}
