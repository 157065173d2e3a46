// Package utils contains small helpers shared by the armik packages.
package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// WrapDegrees maps an angle in degrees into (-180, 180]. Both -180 and 180 map to 180.
func WrapDegrees(deg float64) float64 {
	wrapped := math.Mod(deg, 360)
	switch {
	case wrapped > 180:
		wrapped -= 360
	case wrapped <= -180:
		wrapped += 360
	}
	return wrapped
}

// Clamp returns v limited to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
