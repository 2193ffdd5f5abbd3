package physics

import "errors"

var (
	ErrBodyNotFound  = errors.New("body not found")
	ErrBodyExists    = errors.New("body already in world")
	ErrInvalidMass   = errors.New("mass must be positive")
	ErrNotStatic     = errors.New("body is not static")
	ErrInvalidJoint  = errors.New("joint must connect two distinct bodies")
	ErrInvalidConfig = errors.New("invalid world configuration")
)
