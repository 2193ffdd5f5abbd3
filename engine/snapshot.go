package engine

import (
	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/vector"
)

// Snapshot is an immutable copy of the world after one step. Listeners may
// keep it and read it from other goroutines.
type Snapshot struct {
	Step       int64               `json:"step"`
	Time       float64             `json:"time"`
	Bodies     []BodyState         `json:"bodies"`
	Collisions []physics.Collision `json:"collisions,omitempty"`
	Bounds     physics.AABB        `json:"bounds"`
	AtRest     bool                `json:"at_rest"`
}

type BodyState struct {
	ID       int               `json:"id"`
	Shape    string            `json:"shape"`
	Center   vector.Vector2D   `json:"center"`
	Angle    float64           `json:"angle"`
	Velocity vector.Vector2D   `json:"velocity"`
	Radius   float64           `json:"radius,omitempty"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
	Vertices []vector.Vector2D `json:"vertices,omitempty"`
	Static   bool              `json:"static,omitempty"`
	Pinned   bool              `json:"pinned,omitempty"`
	Resting  bool              `json:"resting,omitempty"`
	Tag      string            `json:"tag,omitempty"`
}

// Capture copies the enabled bodies of w. Bodies whose Payload is a string
// report it as their tag.
func Capture(w *physics.World, step int64, simTime, restThreshold float64, collisions []physics.Collision) Snapshot {
	enabled := w.EnabledBodies()
	snap := Snapshot{
		Step:       step,
		Time:       simTime,
		Bodies:     make([]BodyState, 0, len(enabled)),
		Collisions: append([]physics.Collision(nil), collisions...),
		AtRest:     w.AtRest(restThreshold),
	}
	if bounds, ok := w.Bounds(); ok {
		snap.Bounds = bounds
	}
	for _, b := range enabled {
		snap.Bodies = append(snap.Bodies, captureBody(b, restThreshold))
	}
	return snap
}

func captureBody(b *physics.Body, restThreshold float64) BodyState {
	st := BodyState{
		ID:       b.ID,
		Shape:    b.Shape.Type().String(),
		Center:   b.Center,
		Angle:    b.Angle,
		Velocity: b.Velocity,
		Static:   b.IsStatic(),
		Pinned:   b.Pinned,
		Resting:  !b.IsStatic() && b.RestingTime >= restThreshold,
	}
	switch s := b.Shape.(type) {
	case *physics.Circle:
		st.Radius = s.Radius
	case *physics.Rectangle:
		st.Width, st.Height = s.Width, s.Height
		st.Vertices = append([]vector.Vector2D(nil), s.Vertices[:]...)
	}
	if tag, ok := b.Payload.(string); ok {
		st.Tag = tag
	}
	return st
}

// Body returns the state of the body with the given id.
func (s Snapshot) Body(id int) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return BodyState{}, false
}
