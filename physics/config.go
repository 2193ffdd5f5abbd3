package physics

import (
	"fmt"
	"math"

	"github.com/0x5844/rigid2d/vector"
)

const (
	// ResolutionPasses bounds the collision passes run by a single Step.
	ResolutionPasses = 9
	// DefaultRestThreshold is the resting time, in seconds, AtRest waits for.
	DefaultRestThreshold = 1.0

	DefaultRigidity   = 1.0
	DefaultElasticity = 0.0

	positionCorrectionRate = 0.8
	restLinearTolerance    = 1.0
	restAngularTolerance   = 0.1
)

// DefaultGravity points down the screen; +Y grows downward.
var DefaultGravity = vector.Vector2D{X: 0, Y: 100}

type Config struct {
	Gravity vector.Vector2D `json:"gravity"`
	// Damp and AngularDamp scale velocities of bodies after every contact
	// impulse. Both must be in (0, 1].
	Damp        float64 `json:"damp"`
	AngularDamp float64 `json:"angular_damp"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:     DefaultGravity,
		Damp:        0.98,
		AngularDamp: 0.98,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Gravity.X) || math.IsNaN(c.Gravity.Y) ||
		math.IsInf(c.Gravity.X, 0) || math.IsInf(c.Gravity.Y, 0) {
		return fmt.Errorf("%w: gravity %v is not finite", ErrInvalidConfig, c.Gravity)
	}
	if c.Damp <= 0 || c.Damp > 1 {
		return fmt.Errorf("%w: damp %v outside (0, 1]", ErrInvalidConfig, c.Damp)
	}
	if c.AngularDamp <= 0 || c.AngularDamp > 1 {
		return fmt.Errorf("%w: angular damp %v outside (0, 1]", ErrInvalidConfig, c.AngularDamp)
	}
	return nil
}
