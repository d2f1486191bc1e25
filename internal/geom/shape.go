package geom

import (
	"errors"
	"math"

	"github.com/udisondev/xander/internal/cause"
)

// ErrDegenerateShape is returned when a shape's sides do not span space.
var ErrDegenerateShape = errors.New("shape sides are linearly dependent")

// Shape is a region of space.
type Shape interface {
	Contains(p Point) bool
}

// Parallelepiped is the region origin + a*s0 + b*s1 + c*s2 for a, b, c in
// [0, 1].
type Parallelepiped struct {
	origin Point
	sides  [3]Point
	inv    [3][3]float64
}

// NewParallelepiped builds the shape spanned by sides from origin.
func NewParallelepiped(origin Point, sides [3]Point) (*Parallelepiped, error) {
	m := [3][3]float64{
		{sides[0].X, sides[1].X, sides[2].X},
		{sides[0].Y, sides[1].Y, sides[2].Y},
		{sides[0].Z, sides[1].Z, sides[2].Z},
	}
	inv, ok := invert(m)
	if !ok {
		return nil, ErrDegenerateShape
	}
	return &Parallelepiped{origin: origin, sides: sides, inv: inv}, nil
}

// Cube is an axis-aligned cube with the given edge, extending along the
// positive axes from origin.
func Cube(origin Point, edge float64) (*Parallelepiped, error) {
	return NewParallelepiped(origin, [3]Point{{X: edge}, {Y: edge}, {Z: edge}})
}

// Contains maps p into side coordinates and checks each lies in [0, 1].
func (s *Parallelepiped) Contains(p Point) bool {
	d := p.Sub(s.origin)
	v := [3]float64{d.X, d.Y, d.Z}
	for row := range 3 {
		k := s.inv[row][0]*v[0] + s.inv[row][1]*v[1] + s.inv[row][2]*v[2]
		if k < 0 || k > 1 {
			return false
		}
	}
	return true
}

const epsilon = 1e-12

// invert returns the inverse of m via the adjugate.
func invert(m [3][3]float64) ([3][3]float64, bool) {
	c00 := m[1][1]*m[2][2] - m[1][2]*m[2][1]
	c01 := m[1][2]*m[2][0] - m[1][0]*m[2][2]
	c02 := m[1][0]*m[2][1] - m[1][1]*m[2][0]

	det := m[0][0]*c00 + m[0][1]*c01 + m[0][2]*c02
	if math.Abs(det) < epsilon {
		return [3][3]float64{}, false
	}
	f := 1 / det

	return [3][3]float64{
		{c00 * f, (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * f, (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * f},
		{c01 * f, (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * f, (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * f},
		{c02 * f, (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * f, (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * f},
	}, true
}

// AreaEffect is a shape placed in an arena for as long as its cause lives.
type AreaEffect struct {
	Name     string
	Shape    Shape
	Lifespan cause.Lifespan
}

// Contains reports whether the effect is active and covers p.
func (a *AreaEffect) Contains(p Point) bool {
	return a.Lifespan.Alive() && a.Shape.Contains(p)
}
