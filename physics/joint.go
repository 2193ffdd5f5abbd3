package physics

import (
	"fmt"

	"github.com/0x5844/rigid2d/vector"
)

// Joint keeps two bodies near a target center distance.
type Joint struct {
	A, B     int
	Distance float64
	// Rigidity is the share of a compression corrected per step.
	Rigidity float64
	// Elasticity is the share of a stretch tolerated per step, from 0
	// (rigid) to 1 (free).
	Elasticity float64
}

// NewJoint links two bodies of the world at their current distance.
func (w *World) NewJoint(a, b *Body, rigidity, elasticity float64) (*Joint, error) {
	if a == nil || b == nil || a == b {
		return nil, ErrInvalidJoint
	}
	for _, body := range []*Body{a, b} {
		if registered, ok := w.index[body.ID]; !ok || registered != body {
			return nil, fmt.Errorf("joint body %d: %w", body.ID, ErrBodyNotFound)
		}
	}
	j := &Joint{
		A:          a.ID,
		B:          b.ID,
		Distance:   a.Center.Distance(b.Center),
		Rigidity:   rigidity,
		Elasticity: elasticity,
	}
	w.joints = append(w.joints, j)
	return j, nil
}

// RemoveJoint detaches j from the world. It reports whether j was found.
func (w *World) RemoveJoint(j *Joint) bool {
	for i, existing := range w.joints {
		if existing == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			return true
		}
	}
	return false
}

func (w *World) Joints() []*Joint {
	out := make([]*Joint, len(w.joints))
	copy(out, w.joints)
	return out
}

// other returns the endpoint opposite id.
func (j *Joint) other(id int) (int, bool) {
	switch id {
	case j.A:
		return j.B, true
	case j.B:
		return j.A, true
	}
	return 0, false
}

// solveJoints nudges every unpinned dynamic body toward the target distance
// of each of its joints. It is a single relaxation pass, not an iterative
// solve.
func (w *World) solveJoints(fps float64) {
	if len(w.joints) == 0 {
		return
	}
	for _, b := range w.dynamic {
		if b.Pinned {
			continue
		}
		for _, j := range w.joints {
			otherID, ok := j.other(b.ID)
			if !ok {
				continue
			}
			other := w.enabledBody(otherID)
			if other == nil {
				continue
			}
			vec := other.Center.Sub(b.Center)
			distance := vec.Magnitude()
			diff := distance - j.Distance
			if diff == 0 || distance == 0 {
				continue
			}
			factor := j.Rigidity
			if diff > 0 {
				factor = 1 - j.Elasticity
			}
			weight := 0.5
			if !other.canTranslate() {
				weight = 1
			}
			correction := vec.Scale(diff / distance * factor * weight)
			b.nudge(correction)
			b.Velocity = b.Velocity.Add(correction.Scale(fps))
		}
	}
}

// Strain returns the vector from A to B and how far the joint is from its
// target distance. It reports false while either end is missing or disabled.
func (j *Joint) Strain(w *World) (vector.Vector2D, float64, bool) {
	a, b := w.enabledBody(j.A), w.enabledBody(j.B)
	if a == nil || b == nil {
		return vector.Vector2D{}, 0, false
	}
	vec := b.Center.Sub(a.Center)
	return vec, vec.Magnitude() - j.Distance, true
}
