package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.)}
	aa45x = &R4AA{th, 1., 0., 0.}
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero, test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, QuatToR4AA(zero), test.ShouldResemble, R4AA{0, 1, 0, 0})
	test.That(t, QuatToEulerAngles(zero), test.ShouldResemble, &EulerAngles{})
	test.That(t, ShortestArcAngle(zero), test.ShouldAlmostEqual, 0)
}

func TestRepresentationsAgree(t *testing.T) {
	fromAA := aa45x.ToQuat()
	test.That(t, QuaternionAlmostEqual(fromAA, q45x, 1e-12), test.ShouldBeTrue)
	test.That(t, QuaternionAlmostEqual(ea45x.Quaternion(), q45x, 1e-12), test.ShouldBeTrue)

	aa := QuatToR4AA(q45x)
	test.That(t, aa.Theta, test.ShouldAlmostEqual, aa45x.Theta)
	test.That(t, aa.RX, test.ShouldAlmostEqual, aa45x.RX)
	test.That(t, aa.RY, test.ShouldAlmostEqual, aa45x.RY)
	test.That(t, aa.RZ, test.ShouldAlmostEqual, aa45x.RZ)

	ea := QuatToEulerAngles(q45x)
	test.That(t, ea.Roll, test.ShouldAlmostEqual, ea45x.Roll)
	test.That(t, ea.Pitch, test.ShouldAlmostEqual, ea45x.Pitch)
	test.That(t, ea.Yaw, test.ShouldAlmostEqual, ea45x.Yaw)
}

func TestRotateVector(t *testing.T) {
	yaw90 := NewR4AAFromAxis(r3.Vector{Z: 1}, math.Pi/2).ToQuat()
	v := RotateVector(yaw90, r3.Vector{X: 1})
	test.That(t, v.X, test.ShouldAlmostEqual, 0)
	test.That(t, v.Y, test.ShouldAlmostEqual, 1)
	test.That(t, v.Z, test.ShouldAlmostEqual, 0)

	// q and -q rotate identically
	v = RotateVector(Flip(yaw90), r3.Vector{X: 1})
	test.That(t, v.Y, test.ShouldAlmostEqual, 1)

	v = RotateVector(q45x, r3.Vector{Y: 2})
	test.That(t, v.X, test.ShouldAlmostEqual, 0)
	test.That(t, v.Y, test.ShouldAlmostEqual, math.Sqrt2)
	test.That(t, v.Z, test.ShouldAlmostEqual, math.Sqrt2)
	test.That(t, v.Norm(), test.ShouldAlmostEqual, 2)
}

func TestNormalizeAndFlip(t *testing.T) {
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, NewZeroOrientation())

	q := Normalize(quat.Number{Real: 2, Imag: 0, Jmag: 0, Kmag: 2})
	test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1)
	test.That(t, q.Real, test.ShouldAlmostEqual, math.Sqrt2/2)

	flipped := Flip(q)
	test.That(t, flipped.Real, test.ShouldAlmostEqual, -q.Real)
	test.That(t, QuaternionAlmostEqual(q, flipped, 1e-12), test.ShouldBeTrue)
	test.That(t, SameHemisphere(q, flipped), test.ShouldResemble, q)
	test.That(t, Dot(q, flipped), test.ShouldAlmostEqual, -1)
	test.That(t, Norm(q), test.ShouldAlmostEqual, math.Sqrt2/2)
}

func TestShortestArcAngle(t *testing.T) {
	test.That(t, ShortestArcAngle(q45x), test.ShouldAlmostEqual, th)
	test.That(t, ShortestArcAngle(Flip(q45x)), test.ShouldAlmostEqual, th)

	// 270 degrees one way is 90 the other
	q270 := NewR4AAFromAxis(r3.Vector{Y: 1}, 3*math.Pi/2).ToQuat()
	test.That(t, ShortestArcAngle(q270), test.ShouldAlmostEqual, math.Pi/2)

	// slightly non-unit input must not produce NaN
	test.That(t, math.IsNaN(ShortestArcAngle(quat.Number{Real: 1 + 1e-12})), test.ShouldBeFalse)

	between := OrientationBetween(q45x, quat.Mul(q45x, q45x))
	test.That(t, QuaternionAlmostEqual(between, q45x, 1e-12), test.ShouldBeTrue)
}

func TestAxisAngle(t *testing.T) {
	yaw90 := QuatToR4AA(NewR4AAFromAxis(r3.Vector{Z: 2}, math.Pi/2).ToQuat())
	test.That(t, yaw90.Theta, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, yaw90.RZ, test.ShouldAlmostEqual, 1)

	// the far hemisphere reports a negative angle
	flipped := QuatToR4AA(Flip(q45x))
	test.That(t, flipped.Theta, test.ShouldAlmostEqual, -th)
	test.That(t, math.Abs(flipped.Theta), test.ShouldAlmostEqual, ShortestArcAngle(q45x))

	unnormalized := NewR4AAFromAxis(r3.Vector{X: 3, Y: 4}, 1)
	q := unnormalized.ToQuat()
	test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1)
	test.That(t, unnormalized.RX, test.ShouldAlmostEqual, 0.6)
	test.That(t, unnormalized.RY, test.ShouldAlmostEqual, 0.8)

	zeroAxis := &R4AA{Theta: 1}
	test.That(t, func() { zeroAxis.Normalize() }, test.ShouldPanic)
}
