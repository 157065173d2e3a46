package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/utils"
)

// NewZeroOrientation returns the identity quaternion, which signifies no rotation.
func NewZeroOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// Norm returns the norm of the quaternion, i.e. the sqrt of the squares of the imaginary parts.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// Normalize returns q scaled to unit length. A zero quaternion carries no rotation and is returned as the identity.
func Normalize(q quat.Number) quat.Number {
	length := quat.Abs(q)
	if length == 0 {
		return NewZeroOrientation()
	}
	return quat.Scale(1/length, q)
}

// Dot returns the four dimensional dot product of two quaternions.
func Dot(q1, q2 quat.Number) float64 {
	return q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
}

// SameHemisphere returns q, flipped if needed so that it lies in the same 4D hemisphere as ref.
// Both quaternions represent the same orientation; this only keeps sequences of rotations continuous.
func SameHemisphere(ref, q quat.Number) quat.Number {
	if Dot(ref, q) < 0 {
		return Flip(q)
	}
	return q
}

// OrientationBetween returns the rotation taking o1 to o2 in the frame of o1, i.e. o1⁻¹·o2.
func OrientationBetween(o1, o2 quat.Number) quat.Number {
	return quat.Mul(quat.Conj(o1), o2)
}

// ShortestArcAngle returns the rotation angle of q in radians, in [0, π]. q and -q give the same angle.
func ShortestArcAngle(q quat.Number) float64 {
	return math.Abs(QuatToR4AA(Normalize(q)).Theta)
}

// RotateVector rotates v by the unit quaternion q, i.e. q·v·q⁻¹.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// QuaternionAlmostEqual is an equality test for two quaternions. q and -q compare equal since they
// represent the same orientation.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	b = SameHemisphere(a, b)
	return utils.Float64AlmostEqual(a.Real, b.Real, tol) &&
		utils.Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, tol) &&
		utils.Float64AlmostEqual(a.Kmag, b.Kmag, tol)
}
