package lod

import "github.com/echolmy/vtkmesh/pkg/mesh"

// quadric is a symmetric 4x4 error matrix stored as its upper triangle:
//
//	[q0 q1 q2 q3]
//	[q1 q4 q5 q6]
//	[q2 q5 q7 q8]
//	[q3 q6 q8 q9]
//
// Accumulated per vertex from the planes of its adjacent faces, it measures
// the squared distance of a candidate position to those planes. Stored in
// f64: the products of plane coefficients underflow f32 quickly.
type quadric [10]float64

// planeQuadric builds the quadric of the plane ax + by + cz + d = 0.
func planeQuadric(a, b, c, d float64) quadric {
	return quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

func (q *quadric) add(o quadric) {
	for i := range q {
		q[i] += o[i]
	}
}

// errorAt evaluates the quadratic form v^T Q v at position v.
func (q quadric) errorAt(v mesh.Vec3) float64 {
	x, y, z := float64(v[0]), float64(v[1]), float64(v[2])
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

// optimalPosition solves grad(v^T Q v) = 0 by Cramer's rule. A determinant
// below 1e-12 means the planes around the edge are near-coplanar and no
// unique minimum exists; the caller falls back to endpoint candidates.
func (q quadric) optimalPosition() (mesh.Vec3, bool) {
	a11, a12, a13 := q[0], q[1], q[2]
	a22, a23, a33 := q[4], q[5], q[7]
	b1, b2, b3 := -q[3], -q[6], -q[8]

	det := a11*(a22*a33-a23*a23) - a12*(a12*a33-a23*a13) + a13*(a12*a23-a22*a13)
	if det > -1e-12 && det < 1e-12 {
		return mesh.Vec3{}, false
	}

	x := (b1*(a22*a33-a23*a23) - a12*(b2*a33-a23*b3) + a13*(b2*a23-a22*b3)) / det
	y := (a11*(b2*a33-a23*b3) - b1*(a12*a33-a23*a13) + a13*(a12*b3-b2*a13)) / det
	z := (a11*(a22*b3-b2*a23) - a12*(a12*b3-b2*a13) + b1*(a12*a23-a22*a13)) / det
	return mesh.Vec3{float32(x), float32(y), float32(z)}, true
}
