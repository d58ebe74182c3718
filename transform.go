package gvr

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/gvr/gpucore"
)

// Transform represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Transform struct {
	A, B, C float32
	D, E, F float32
}

// Identity returns the identity transformation matrix.
func Identity() Transform {
	return Transform{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float32) Transform {
	return Transform{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling matrix.
func Scale(x, y float32) Transform {
	return Transform{A: x, E: y}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float32) Transform {
	sin, cos := math32.Sincos(angle)
	return Transform{
		A: cos, B: -sin,
		D: sin, E: cos,
	}
}

// Multiply multiplies two matrices (m * other). The result applies
// other first, then m.
func (m Transform) Multiply(other Transform) Transform {
	return Transform{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply transforms a point.
func (m Transform) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Inverse returns the inverse matrix.
// ok is false, and the identity is returned, if m is singular.
func (m Transform) Inverse() (inv Transform, ok bool) {
	det := m.A*m.E - m.B*m.D
	if math32.Abs(det) < 1e-10 {
		return Identity(), false
	}
	invDet := 1 / det
	return Transform{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}, true
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Transform) IsIdentity() bool {
	return m == Identity()
}

// To3D returns the matrix as a column-major 4x4, the layout of the
// per-primitive transform array.
func (m Transform) To3D() gpucore.Xform {
	return gpucore.Xform{
		m.A, m.D, 0, 0,
		m.B, m.E, 0, 0,
		0, 0, 1, 0,
		m.C, m.F, 0, 1,
	}
}

// columns returns the matrix as a column-major 3x2: the layout of paint
// and scissor transforms.
func (m Transform) columns() [6]float32 {
	return [6]float32{m.A, m.D, m.B, m.E, m.C, m.F}
}
