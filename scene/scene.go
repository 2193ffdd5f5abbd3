// Package scene describes simulations as data: JSON scene files and
// seeded procedural generators both produce a Scene, which Build turns
// into bodies and joints of a physics.World.
package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0x5844/rigid2d/physics"
	"github.com/0x5844/rigid2d/vector"
)

const (
	DefaultFriction    = 0.5
	DefaultRestitution = 0.2
)

var ErrInvalidScene = errors.New("invalid scene")

type Scene struct {
	Name string `json:"name,omitempty"`
	// Gravity overrides the command line gravity when set.
	Gravity     *vector.Vector2D `json:"gravity,omitempty"`
	Damp        float64          `json:"damp,omitempty"`
	AngularDamp float64          `json:"angular_damp,omitempty"`
	// Duration in seconds; 0 runs until interrupted.
	Duration float64       `json:"duration,omitempty"`
	Bodies   []BodyConfig  `json:"bodies"`
	Joints   []JointConfig `json:"joints,omitempty"`
}

type BodyConfig struct {
	// Type is "circle" or "rectangle" ("box" is accepted too).
	Type            string          `json:"type"`
	Mass            float64         `json:"mass"`
	Position        vector.Vector2D `json:"position"`
	Velocity        vector.Vector2D `json:"velocity"`
	AngularVelocity float64         `json:"angular_velocity,omitempty"`
	Angle           float64         `json:"angle,omitempty"`
	Shape           ShapeConfig     `json:"shape"`

	Friction     *float64 `json:"friction,omitempty"`
	Restitution  *float64 `json:"restitution,omitempty"`
	Permeability float64  `json:"permeability,omitempty"`

	// Pinned bodies keep their position but rotate under impacts; they
	// need a positive mass.
	Pinned   bool   `json:"pinned,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

type ShapeConfig struct {
	Radius float64 `json:"radius,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// JointConfig links two bodies by their index in Scene.Bodies.
type JointConfig struct {
	A          int      `json:"a"`
	B          int      `json:"b"`
	Rigidity   *float64 `json:"rigidity,omitempty"`
	Elasticity float64  `json:"elasticity,omitempty"`
}

func LoadSceneFromFile(filename string) (*Scene, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", filename, err)
	}
	return s, nil
}

// Load decodes and validates a JSON scene.
func Load(r io.Reader) (*Scene, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var s Scene
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func (s *Scene) Validate() error {
	for i, b := range s.Bodies {
		if err := b.validate(); err != nil {
			return fmt.Errorf("%w: body %d: %v", ErrInvalidScene, i, err)
		}
	}
	for i, j := range s.Joints {
		if j.A < 0 || j.A >= len(s.Bodies) || j.B < 0 || j.B >= len(s.Bodies) {
			return fmt.Errorf("%w: joint %d references a missing body", ErrInvalidScene, i)
		}
		if j.A == j.B {
			return fmt.Errorf("%w: joint %d links body %d to itself", ErrInvalidScene, i, j.A)
		}
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: negative duration %v", ErrInvalidScene, s.Duration)
	}
	return nil
}

func (cfg BodyConfig) validate() error {
	switch cfg.kind() {
	case "circle":
		if cfg.Shape.Radius <= 0 {
			return fmt.Errorf("circle radius %v must be positive", cfg.Shape.Radius)
		}
	case "rectangle":
		if cfg.Shape.Width <= 0 || cfg.Shape.Height <= 0 {
			return fmt.Errorf("rectangle size %vx%v must be positive", cfg.Shape.Width, cfg.Shape.Height)
		}
	default:
		return fmt.Errorf("unknown body type %q", cfg.Type)
	}
	if cfg.Pinned && cfg.Mass <= 0 {
		return errors.New("pinned bodies need a positive mass")
	}
	if cfg.Permeability < 0 || cfg.Permeability > 1 {
		return fmt.Errorf("permeability %v outside [0, 1]", cfg.Permeability)
	}
	return nil
}

func (cfg BodyConfig) kind() string {
	switch t := strings.ToLower(cfg.Type); t {
	case "box", "rect":
		return "rectangle"
	default:
		return t
	}
}

// WorldConfig merges the scene's physics settings over base.
func (s *Scene) WorldConfig(base physics.Config) physics.Config {
	cfg := base
	if s.Gravity != nil {
		cfg.Gravity = *s.Gravity
	}
	if s.Damp > 0 {
		cfg.Damp = s.Damp
	}
	if s.AngularDamp > 0 {
		cfg.AngularDamp = s.AngularDamp
	}
	return cfg
}

// Build adds the scene's bodies and joints to w and returns the bodies in
// scene order.
func (s *Scene) Build(w *physics.World) ([]*physics.Body, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	bodies := make([]*physics.Body, len(s.Bodies))
	for i, cfg := range s.Bodies {
		b, err := cfg.build(w)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies[i] = b
	}
	for i, jc := range s.Joints {
		rigidity := valueOr(jc.Rigidity, physics.DefaultRigidity)
		if _, err := w.NewJoint(bodies[jc.A], bodies[jc.B], rigidity, jc.Elasticity); err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
	}
	for i, cfg := range s.Bodies {
		if cfg.Disabled {
			if err := w.DisableBody(bodies[i].ID); err != nil {
				return nil, fmt.Errorf("body %d: %w", i, err)
			}
		}
	}
	return bodies, nil
}

func (cfg BodyConfig) build(w *physics.World) (*physics.Body, error) {
	friction := valueOr(cfg.Friction, DefaultFriction)
	restitution := valueOr(cfg.Restitution, DefaultRestitution)

	// Pinned bodies start static and are then given their mass.
	mass := cfg.Mass
	if cfg.Pinned {
		mass = 0
	}

	var b *physics.Body
	if cfg.kind() == "circle" {
		b = w.NewCircle(cfg.Position, cfg.Shape.Radius, mass, friction, restitution)
	} else {
		b = w.NewRectangle(cfg.Position, cfg.Shape.Width, cfg.Shape.Height, mass, friction, restitution)
	}
	if cfg.Pinned {
		if err := w.AllowPinnedRotation(b.ID, cfg.Mass); err != nil {
			return nil, err
		}
	}
	if cfg.Angle != 0 {
		b.Rotate(cfg.Angle)
	}
	if !b.IsStatic() {
		if !b.Pinned {
			b.Velocity = cfg.Velocity
		}
		b.AngularVelocity = cfg.AngularVelocity
	}
	b.Permeability = cfg.Permeability
	if cfg.Tag != "" {
		b.Payload = cfg.Tag
	}
	return b, nil
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
