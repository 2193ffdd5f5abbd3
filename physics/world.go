package physics

import (
	"fmt"
	"math"
	"slices"

	"github.com/0x5844/rigid2d/vector"
)

// World owns every body and joint of a simulation. Bodies live in exactly
// one of three ordered collections: dynamic bodies move and collide,
// static bodies only collide, disabled bodies are ignored. Collection order
// is part of the simulation's determinism.
//
// A World is not safe for concurrent use.
type World struct {
	Gravity     vector.Vector2D
	Damp        float64
	AngularDamp float64

	dynamic  []*Body
	static   []*Body
	disabled []*Body
	joints   []*Joint
	index    map[int]*Body
	nextID   int
}

// NewWorld returns an empty world using the default damping.
func NewWorld(gravity vector.Vector2D) *World {
	cfg := DefaultConfig()
	cfg.Gravity = gravity
	return newWorld(cfg)
}

func NewWorldWithConfig(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newWorld(cfg), nil
}

func newWorld(cfg Config) *World {
	return &World{
		Gravity:     cfg.Gravity,
		Damp:        cfg.Damp,
		AngularDamp: cfg.AngularDamp,
		index:       make(map[int]*Body),
	}
}

// NewCircle creates a circle and adds it to the world. A mass of 0 or less
// makes the body static, in which case center and radius are rounded to
// whole units.
func (w *World) NewCircle(center vector.Vector2D, radius, mass, friction, restitution float64) *Body {
	if mass <= 0 {
		center = roundVector(center)
		radius = math.Round(radius)
	}
	b := newBody(NewCircleShape(radius), center, mass, friction, restitution, w.Gravity)
	w.register(b)
	return b
}

// NewRectangle creates an axis-aligned rectangle and adds it to the world.
// Static rectangles have center and size rounded to whole units.
func (w *World) NewRectangle(center vector.Vector2D, width, height, mass, friction, restitution float64) *Body {
	if mass <= 0 {
		center = roundVector(center)
		width = math.Round(width)
		height = math.Round(height)
	}
	b := newBody(NewRectangleShape(center, width, height), center, mass, friction, restitution, w.Gravity)
	w.register(b)
	return b
}

func (w *World) register(b *Body) {
	w.nextID++
	b.ID = w.nextID
	w.insert(b)
}

func (w *World) insert(b *Body) {
	w.index[b.ID] = b
	if b.InverseMass == 0 {
		w.static = append(w.static, b)
	} else {
		w.dynamic = append(w.dynamic, b)
	}
}

// AddBody puts a previously removed body back into the world. Bodies
// without an ID receive a fresh one.
func (w *World) AddBody(b *Body) error {
	if b.ID == 0 {
		w.register(b)
		return nil
	}
	if _, ok := w.index[b.ID]; ok {
		return fmt.Errorf("add body %d: %w", b.ID, ErrBodyExists)
	}
	if b.ID > w.nextID {
		w.nextID = b.ID
	}
	w.insert(b)
	return nil
}

// RemoveBody deletes a body and every joint attached to it.
func (w *World) RemoveBody(id int) (*Body, error) {
	b, ok := w.index[id]
	if !ok {
		return nil, fmt.Errorf("remove body %d: %w", id, ErrBodyNotFound)
	}
	delete(w.index, id)
	w.dynamic = removeFrom(w.dynamic, b)
	w.static = removeFrom(w.static, b)
	w.disabled = removeFrom(w.disabled, b)
	w.joints = slices.DeleteFunc(w.joints, func(j *Joint) bool {
		return j.A == id || j.B == id
	})
	return b, nil
}

// EnableBody moves a disabled body back into the dynamic or static
// collection matching its current mass.
func (w *World) EnableBody(id int) error {
	b, ok := w.index[id]
	if !ok {
		return fmt.Errorf("enable body %d: %w", id, ErrBodyNotFound)
	}
	if !slices.Contains(w.disabled, b) {
		return nil
	}
	w.disabled = removeFrom(w.disabled, b)
	if b.InverseMass == 0 {
		w.static = append(w.static, b)
	} else {
		w.dynamic = append(w.dynamic, b)
	}
	return nil
}

// DisableBody excludes a body from simulation and collision. Its joints
// stay registered but are inert while it is disabled.
func (w *World) DisableBody(id int) error {
	b, ok := w.index[id]
	if !ok {
		return fmt.Errorf("disable body %d: %w", id, ErrBodyNotFound)
	}
	if slices.Contains(w.disabled, b) {
		return nil
	}
	w.dynamic = removeFrom(w.dynamic, b)
	w.static = removeFrom(w.static, b)
	w.disabled = append(w.disabled, b)
	return nil
}

// MoveBody translates a body regardless of its mass or pin.
func (w *World) MoveBody(id int, v vector.Vector2D) error {
	b, ok := w.index[id]
	if !ok {
		return fmt.Errorf("move body %d: %w", id, ErrBodyNotFound)
	}
	b.Move(v)
	return nil
}

func (w *World) RotateBody(id int, angle float64) error {
	b, ok := w.index[id]
	if !ok {
		return fmt.Errorf("rotate body %d: %w", id, ErrBodyNotFound)
	}
	b.Rotate(angle)
	return nil
}

// AllowPinnedRotation turns a static body into a pinned dynamic one with
// the given mass: it keeps its position but responds to contacts by
// rotating.
func (w *World) AllowPinnedRotation(id int, mass float64) error {
	b, ok := w.index[id]
	if !ok {
		return fmt.Errorf("pin body %d: %w", id, ErrBodyNotFound)
	}
	if mass <= 0 {
		return fmt.Errorf("pin body %d with mass %v: %w", id, mass, ErrInvalidMass)
	}
	if b.InverseMass != 0 {
		return fmt.Errorf("pin body %d: %w", id, ErrNotStatic)
	}
	b.setMass(mass)
	b.Pinned = true
	if slices.Contains(w.static, b) {
		w.static = removeFrom(w.static, b)
		w.dynamic = append(w.dynamic, b)
	}
	return nil
}

// Body returns the body with the given id in any collection.
func (w *World) Body(id int) (*Body, bool) {
	b, ok := w.index[id]
	return b, ok
}

// AllBodies returns dynamic, static and disabled bodies in that order.
func (w *World) AllBodies() []*Body {
	out := make([]*Body, 0, len(w.dynamic)+len(w.static)+len(w.disabled))
	out = append(out, w.dynamic...)
	out = append(out, w.static...)
	return append(out, w.disabled...)
}

// EnabledBodies returns dynamic then static bodies.
func (w *World) EnabledBodies() []*Body {
	out := make([]*Body, 0, len(w.dynamic)+len(w.static))
	out = append(out, w.dynamic...)
	return append(out, w.static...)
}

func (w *World) DynamicBodies() []*Body {
	return slices.Clone(w.dynamic)
}

func (w *World) StaticBodies() []*Body {
	return slices.Clone(w.static)
}

func (w *World) DisabledBodies() []*Body {
	return slices.Clone(w.disabled)
}

func (w *World) BodyCount() int {
	return len(w.index)
}

// Bounds returns the box enclosing every enabled body. It reports false for
// a world without enabled bodies.
func (w *World) Bounds() (AABB, bool) {
	enabled := w.EnabledBodies()
	if len(enabled) == 0 {
		return AABB{}, false
	}
	bounds := enabled[0].AABB()
	for _, b := range enabled[1:] {
		bounds = bounds.Union(b.AABB())
	}
	return bounds, true
}

// BodiesAt returns the enabled bodies whose shape contains point.
func (w *World) BodiesAt(point vector.Vector2D) []*Body {
	var out []*Body
	for _, b := range w.EnabledBodies() {
		if b.AABB().Contains(point) && b.ContainsPoint(point) {
			out = append(out, b)
		}
	}
	return out
}

// enabledBody looks a body up among the dynamic and static collections.
func (w *World) enabledBody(id int) *Body {
	b, ok := w.index[id]
	if !ok || slices.Contains(w.disabled, b) {
		return nil
	}
	return b
}

func removeFrom(bodies []*Body, b *Body) []*Body {
	if i := slices.Index(bodies, b); i >= 0 {
		return slices.Delete(bodies, i, i+1)
	}
	return bodies
}
