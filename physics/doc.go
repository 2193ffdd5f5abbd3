// Package physics is a deterministic fixed-step 2D rigid-body simulator for
// circles and rectangles.
//
// A World integrates its dynamic bodies under gravity, relaxes distance
// joints, then resolves contacts with impulses over a bounded number of
// passes. Each Step returns the collisions it handled so callers can react
// to them; the package never calls back into caller code.
package physics
