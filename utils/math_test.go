package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversions(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, DegToRad(-90), test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, RadToDeg(math.Pi/4), test.ShouldAlmostEqual, 45)
	test.That(t, RadToDeg(DegToRad(123.4)), test.ShouldAlmostEqual, 123.4)
}

func TestWrapDegrees(t *testing.T) {
	for _, tc := range []struct {
		in, out float64
	}{
		{0, 0},
		{90, 90},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{540, 180},
		{-721, -1},
	} {
		test.That(t, WrapDegrees(tc.in), test.ShouldAlmostEqual, tc.out)
	}
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(5, -1, 1), test.ShouldEqual, 1.0)
	test.That(t, Clamp(-5, -1, 1), test.ShouldEqual, -1.0)
	test.That(t, Clamp(0.5, -1, 1), test.ShouldEqual, 0.5)
	test.That(t, Float64AlmostEqual(1, 1+1e-9, 1e-6), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1, 1.1, 1e-6), test.ShouldBeFalse)
}
