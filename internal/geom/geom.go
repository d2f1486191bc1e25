// Package geom holds positions, the grid distance rule used for movement,
// and area-of-effect shapes. All coordinates are in feet.
package geom

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotPlanar is returned for displacements with a vertical component,
	// which the grid distance rule does not cover.
	ErrNotPlanar = errors.New("displacement must lie on the ground plane")
	// ErrFractionalDistance is returned when a displacement does not land
	// on a whole number of feet.
	ErrFractionalDistance = errors.New("distance is not a whole number of feet")
)

// Point is a position or displacement in feet.
type Point struct {
	X, Y, Z float64
}

// Origin is the zero point.
var Origin = Point{}

// Pt is shorthand for a point on the ground plane.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k, Z: p.Z * k}
}

func (p Point) String() string {
	if p.Z == 0 {
		return fmt.Sprintf("(%g, %g)", p.X, p.Y)
	}
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// GridDistance returns the movement cost of delta in whole feet.
//
// Diagonal steps cost the same as straight ones: c = min(|dx|, |dy|)
// diagonal feet, plus whatever is left over on each axis. The rule only
// holds on a flat plane, so a non-zero Z is rejected.
func GridDistance(delta Point) (int, error) {
	if delta.Z != 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotPlanar, delta)
	}
	ax, ay := math.Abs(delta.X), math.Abs(delta.Y)
	c := math.Min(ax, ay)
	a := ax - c
	b := ay - c
	d := a + b + c
	if d != math.Trunc(d) {
		return 0, fmt.Errorf("%w: %g", ErrFractionalDistance, d)
	}
	return int(d), nil
}

// Directions returns the eight planar neighbours at step feet, starting
// north and going clockwise.
func Directions(step float64) []Point {
	return []Point{
		Pt(0, step),
		Pt(step, step),
		Pt(step, 0),
		Pt(step, -step),
		Pt(0, -step),
		Pt(-step, -step),
		Pt(-step, 0),
		Pt(-step, step),
	}
}

// Snap rounds every axis of p to the nearest multiple of square.
func Snap(p Point, square float64) Point {
	return Point{
		X: math.Round(p.X/square) * square,
		Y: math.Round(p.Y/square) * square,
		Z: math.Round(p.Z/square) * square,
	}
}
