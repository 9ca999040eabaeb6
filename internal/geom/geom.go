// Package geom implements the small vector/matrix algebra the path
// builder, DCEL and render loop share: a 2-D point/vector and the 3x3
// affine matrix PDF's CTM uses. It stands in for the teacher's
// seehuhn.de/go/geom sibling module, which is not a fetchable dependency
// from this workspace (see DESIGN.md); the surface is shaped after that
// module's observed call sites (vec.Vec2, matrix.Matrix, CTM.Mul).
package geom

import "math"

// Vec2 is a 2-D point or vector.
type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vec2) Length() float64 { return math.Hypot(a.X, a.Y) }

// Normalize returns a unit vector in the direction of a, or the zero
// vector if a is (nearly) zero-length.
func (a Vec2) Normalize() Vec2 {
	l := a.Length()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Normal returns the left-hand normal of a (rotate +90 degrees), used by
// the stroke-to-fill outline builder.
func (a Vec2) Normal() Vec2 { return Vec2{-a.Y, a.X} }

func (a Vec2) Equal(b Vec2, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// Matrix is PDF's affine transform convention: [[a,b,0],[c,d,0],[e,f,1]],
// applied to a row vector [x y 1] on the right: x' = a*x + c*y + e,
// y' = b*x + d*y + f.
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix{A: 1, D: 1}

// Apply transforms a point by m.
func (m Matrix) Apply(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVector transforms a direction vector by m, ignoring translation.
func (m Matrix) ApplyVector(p Vec2) Vec2 {
	return Vec2{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// Mul returns the matrix product m*n, i.e. the transform that applies m
// first and then n — PDF's "cm" operator post-multiplies the CTM this
// way: CTM_new = m * CTM_old.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
		E: m.E*n.A + m.F*n.C + n.E,
		F: m.E*n.B + m.F*n.D + n.F,
	}
}

// Translate returns a pure translation matrix.
func Translate(x, y float64) Matrix { return Matrix{A: 1, D: 1, E: x, F: y} }

// Scale returns a pure scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }
