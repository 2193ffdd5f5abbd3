package scene

import (
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/0x5844/rigid2d/vector"
)

// Generated scenes use screen coordinates: the floor sits at y = GroundY
// and gravity pulls toward +Y.
const (
	GroundY     = 300.0
	groundWidth = 600.0
	wallSize    = 20.0
)

type generator func(rng *rand.Rand, count int) *Scene

var generators = map[string]generator{
	"default":   generateDefault,
	"pyramid":   generatePyramid,
	"rain":      generateRain,
	"container": generateContainer,
	"pendulum":  generatePendulum,
	"mixed":     generateMixed,
	"stack":     generateStack,
}

// Kinds lists the generator names accepted by Generate.
func Kinds() []string {
	kinds := make([]string, 0, len(generators))
	for k := range generators {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Generate builds a procedural scene with roughly count dynamic bodies.
// The same kind, count and seed always yield the same scene.
func Generate(kind string, count int, seed int64) (*Scene, error) {
	gen, ok := generators[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scene type %q", ErrInvalidScene, kind)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: body count %d must be at least 1", ErrInvalidScene, count)
	}
	s := gen(rand.New(rand.NewSource(seed)), count)
	s.Name = kind
	return s, nil
}

func ptr(v float64) *float64 { return &v }

func circle(x, y, radius, mass float64) BodyConfig {
	return BodyConfig{
		Type:     "circle",
		Mass:     mass,
		Position: vector.NewVector2D(x, y),
		Shape:    ShapeConfig{Radius: radius},
	}
}

func rectangle(x, y, width, height, mass float64) BodyConfig {
	return BodyConfig{
		Type:     "rectangle",
		Mass:     mass,
		Position: vector.NewVector2D(x, y),
		Shape:    ShapeConfig{Width: width, Height: height},
	}
}

func ground() BodyConfig {
	g := rectangle(0, GroundY+wallSize/2, groundWidth, wallSize, 0)
	g.Tag = "ground"
	return g
}

// randomBody returns a circle with probability circleShare, else a
// rectangle, sized between lo and hi. Mass follows the area.
func randomBody(rng *rand.Rand, x, y, lo, hi, circleShare float64) BodyConfig {
	if rng.Float64() < circleShare {
		r := lo/2 + rng.Float64()*(hi-lo)/2
		return circle(x, y, r, r*r*math.Pi/100)
	}
	w := lo + rng.Float64()*(hi-lo)
	h := lo + rng.Float64()*(hi-lo)
	return rectangle(x, y, w, h, w*h/100)
}

func generateDefault(rng *rand.Rand, count int) *Scene {
	s := &Scene{Bodies: []BodyConfig{ground()}}
	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * 450
		y := GroundY - 100 - rng.Float64()*300
		s.Bodies = append(s.Bodies, randomBody(rng, x, y, 10, 30, 0.6))
	}
	return s
}

func generatePyramid(_ *rand.Rand, count int) *Scene {
	s := &Scene{Bodies: []BodyConfig{ground()}}
	const size = 20.0

	levels := int(math.Sqrt(float64(2*count))) + 1
	placed := 0
	for row := 0; row < levels && placed < count; row++ {
		width := levels - row
		y := GroundY - size/2 - float64(row)*size
		for i := 0; i < width && placed < count; i++ {
			x := (float64(i) - float64(width-1)/2) * size
			s.Bodies = append(s.Bodies, rectangle(x, y, size*0.9, size*0.9, 1))
			placed++
		}
	}
	return s
}

func generateRain(rng *rand.Rand, count int) *Scene {
	s := &Scene{Bodies: []BodyConfig{
		ground(),
		rectangle(-groundWidth/2, GroundY-150, wallSize, 300, 0),
		rectangle(groundWidth/2, GroundY-150, wallSize, 300, 0),
	}}
	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * (groundWidth - 60)
		y := -rng.Float64() * 600
		b := randomBody(rng, x, y, 6, 20, 0.7)
		b.Velocity = vector.NewVector2D(0, rng.Float64()*50)
		s.Bodies = append(s.Bodies, b)
	}
	return s
}

func generateContainer(rng *rand.Rand, count int) *Scene {
	const width, height = 300.0, 240.0
	s := &Scene{Bodies: []BodyConfig{
		ground(),
		rectangle(-width/2, GroundY-height/2, wallSize, height, 0),
		rectangle(width/2, GroundY-height/2, wallSize, height, 0),
	}}
	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * (width - 60)
		y := GroundY - 40 - rng.Float64()*(height+200)
		b := randomBody(rng, x, y, 8, 20, 0.6)
		b.Restitution = ptr(0.1)
		s.Bodies = append(s.Bodies, b)
	}
	return s
}

// generatePendulum hangs count bobs from pinned anchors, each released at
// a random angle.
func generatePendulum(rng *rand.Rand, count int) *Scene {
	const spacing, length = 40.0, 120.0
	s := &Scene{}
	for i := 0; i < count; i++ {
		x := (float64(i) - float64(count-1)/2) * spacing
		anchor := rectangle(x, 0, 10, 10, 1)
		anchor.Pinned = true
		anchor.Tag = "anchor"

		angle := (rng.Float64() - 0.5) * math.Pi / 3
		bob := circle(x+length*math.Sin(angle), length*math.Cos(angle), 12, 2)
		bob.Restitution = ptr(0.9)

		s.Bodies = append(s.Bodies, anchor, bob)
		s.Joints = append(s.Joints, JointConfig{A: 2 * i, B: 2*i + 1})
	}
	return s
}

func generateMixed(rng *rand.Rand, count int) *Scene {
	s := &Scene{Bodies: []BodyConfig{
		rectangle(-200, GroundY, 150, wallSize, 0),
		rectangle(200, GroundY, 150, wallSize, 0),
	}}
	for i := 0; i < 5; i++ {
		x := (rng.Float64() - 0.5) * 400
		y := GroundY - 60 - float64(i)*50
		p := rectangle(x, y, rng.Float64()*80+60, 8, 0)
		p.Angle = (rng.Float64() - 0.5) * 0.4
		s.Bodies = append(s.Bodies, p)
	}

	water := rectangle(0, GroundY-40, 200, 80, 0)
	water.Permeability = 0.9
	water.Tag = "water"
	s.Bodies = append(s.Bodies, water)

	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * 500
		y := GroundY - 350 - rng.Float64()*300

		var b BodyConfig
		switch rng.Intn(3) {
		case 0:
			b = randomBody(rng, x, y, 8, 24, 1)
			b.Restitution = ptr(rng.Float64()*0.5 + 0.5)
			b.Friction = ptr(rng.Float64()*0.5 + 0.2)
		case 1:
			b = randomBody(rng, x, y, 10, 30, 0)
			b.Restitution = ptr(rng.Float64()*0.5 + 0.3)
			b.Friction = ptr(rng.Float64()*0.6 + 0.3)
		default:
			w, h := rng.Float64()*40+10, rng.Float64()*20+5
			b = rectangle(x, y, w, h, w*h/100)
			b.Restitution = ptr(rng.Float64()*0.4 + 0.4)
			b.Friction = ptr(rng.Float64()*0.5 + 0.4)
		}
		s.Bodies = append(s.Bodies, b)
	}
	return s
}

// generateStack piles boxes into a single tower with a small gap between
// layers.
func generateStack(rng *rand.Rand, count int) *Scene {
	const width, height, gap = 40.0, 20.0, 1.0
	s := &Scene{Bodies: []BodyConfig{ground()}}
	for i := 0; i < count; i++ {
		x := (rng.Float64() - 0.5) * 2
		y := GroundY - height/2 - gap - float64(i)*(height+gap)
		b := rectangle(x, y, width, height, 2)
		b.Friction = ptr(0.8)
		b.Restitution = ptr(0)
		s.Bodies = append(s.Bodies, b)
	}
	return s
}
