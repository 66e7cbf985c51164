package geom

import "math"

// Matrix is a 2D affine transform stored as
//
//	| m0 m2 m4 |
//	| m1 m3 m5 |
//
// m0..m3 are the linear part and m4, m5 the translation.
type Matrix struct {
	M0, M1, M2, M3, M4, M5 float32
}

var Identity = Matrix{M0: 1, M3: 1}

func Translation(x, y float32) Matrix {
	return Matrix{M0: 1, M3: 1, M4: x, M5: y}
}

// TRS builds a matrix that scales, then rotates (degrees), then translates.
func TRS(position Vector2, rotation float32, scale Vector2) Matrix {
	rad := float64(Radians(rotation))
	ca := float32(math.Cos(rad))
	sa := float32(math.Sin(rad))
	return Matrix{
		M0: ca * scale.X,
		M1: sa * scale.X,
		M2: -sa * scale.Y,
		M3: ca * scale.Y,
		M4: position.X,
		M5: position.Y,
	}
}

// Multiply returns m * r, applying r first.
func (m Matrix) Multiply(r Matrix) Matrix {
	return Matrix{
		M0: m.M0*r.M0 + m.M2*r.M1,
		M1: m.M1*r.M0 + m.M3*r.M1,
		M2: m.M0*r.M2 + m.M2*r.M3,
		M3: m.M1*r.M2 + m.M3*r.M3,
		M4: m.M0*r.M4 + m.M2*r.M5 + m.M4,
		M5: m.M1*r.M4 + m.M3*r.M5 + m.M5,
	}
}

func (m Matrix) Transform(p Vector2) Vector2 {
	return Vector2{
		X: m.M0*p.X + m.M2*p.Y + m.M4,
		Y: m.M1*p.X + m.M3*p.Y + m.M5,
	}
}

func (m Matrix) IsIdentity() bool {
	return m == Identity
}

func (m Matrix) Position() Vector2 {
	return Vector2{X: m.M4, Y: m.M5}
}
