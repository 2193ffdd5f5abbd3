package physics

import "math"

// Step advances the world by one frame of 1/fps seconds and returns the
// collisions handled during it. A non-positive fps leaves the world
// untouched.
//
// The order is fixed: integrate dynamic bodies, relax joints, run up to
// ResolutionPasses collision passes, then update resting times.
func (w *World) Step(fps float64) []Collision {
	if fps <= 0 || math.IsInf(fps, 0) || math.IsNaN(fps) {
		return nil
	}
	dt := 1 / fps
	w.integrate(dt)
	w.solveJoints(fps)
	collisions := w.resolveCollisions()
	w.updateStability(dt)
	return collisions
}

func (w *World) integrate(dt float64) {
	for _, b := range w.dynamic {
		b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))
		b.nudge(b.Velocity.Scale(dt))
		b.AngularVelocity += b.AngularAcceleration * dt
		if da := b.AngularVelocity * dt; da != 0 {
			b.Rotate(da)
		}
	}
}

// resolveCollisions tests every dynamic body against every enabled body,
// walking indices from high to low. A pass that resolves nothing ends the
// loop early.
func (w *World) resolveCollisions() []Collision {
	if len(w.dynamic) == 0 {
		return nil
	}
	enabled := w.EnabledBodies()
	var collisions []Collision

	for pass := 0; pass < ResolutionPasses; pass++ {
		resolved := 0
		for i := len(w.dynamic) - 1; i >= 0; i-- {
			a := enabled[i]
			for j := len(enabled) - 1; j > i; j-- {
				b := enabled[j]
				c, ok := detect(a, b)
				if !ok {
					continue
				}
				if passThrough(a, b) {
					collisions = append(collisions, newCollision(a, b, c, true))
					continue
				}
				if w.resolve(a, b, c) {
					resolved++
					collisions = append(collisions, newCollision(a, b, c, false))
				}
			}
		}
		if resolved == 0 {
			break
		}
	}
	return collisions
}

// detect runs the broad and narrow phases on a pair and orients the
// contact normal from a toward b.
func detect(a, b *Body) (contact, bool) {
	if !boundTest(a, b) {
		return contact{}, false
	}
	c, ok := testCollision(a, b)
	if !ok {
		return contact{}, false
	}
	if c.Normal.Dot(b.Center.Sub(a.Center)) < 0 {
		c.flip()
	}
	return c, true
}

func newCollision(a, b *Body, c contact, passThrough bool) Collision {
	return Collision{
		A:           a.ID,
		B:           b.ID,
		Depth:       c.Depth,
		Normal:      c.Normal,
		Point:       c.Start,
		PassThrough: passThrough,
	}
}

// updateStability resets the resting time of bodies that drifted from
// their recorded pose and accumulates it for the others. Immovable bodies
// are always considered settled.
func (w *World) updateStability(dt float64) {
	for _, b := range w.static {
		b.AverageCenter = b.Center
		b.AverageAngle = b.Angle
	}
	for _, b := range w.dynamic {
		if math.Abs(b.Center.X-b.AverageCenter.X) > restLinearTolerance ||
			math.Abs(b.Center.Y-b.AverageCenter.Y) > restLinearTolerance ||
			math.Abs(b.Angle-b.AverageAngle) >= restAngularTolerance {
			b.RestingTime = 0
			b.AverageCenter = b.Center
			b.AverageAngle = b.Angle
			continue
		}
		b.RestingTime += dt
	}
}

// AtRest reports whether every dynamic body has rested for at least
// threshold seconds. Pass DefaultRestThreshold for the usual one second.
func (w *World) AtRest(threshold float64) bool {
	for _, b := range w.dynamic {
		if b.RestingTime < threshold {
			return false
		}
	}
	return true
}
