package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/utils"
)

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D Euclidean space.
// The Tait–Bryan angle formalism is used, with rotations around three distinct axes in the z-y′-x″ sequence.
// Roll is about x, Pitch is about y, Yaw is about z.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAnglesFromDegrees creates EulerAngles from angles given in degrees.
func NewEulerAnglesFromDegrees(roll, pitch, yaw float64) *EulerAngles {
	return &EulerAngles{Roll: utils.DegToRad(roll), Pitch: utils.DegToRad(pitch), Yaw: utils.DegToRad(yaw)}
}

// Degrees returns roll, pitch and yaw in degrees, each wrapped into (-180, 180].
func (ea *EulerAngles) Degrees() (roll, pitch, yaw float64) {
	return utils.WrapDegrees(utils.RadToDeg(ea.Roll)),
		utils.WrapDegrees(utils.RadToDeg(ea.Pitch)),
		utils.WrapDegrees(utils.RadToDeg(ea.Yaw))
}

// Quaternion returns orientation in quaternion representation.
// reference: https://en.wikipedia.org/wiki/Conversion_between_quaternions_and_Euler_angles#Source_code
func (ea *EulerAngles) Quaternion() quat.Number {
	cy := math.Cos(ea.Yaw * 0.5)
	sy := math.Sin(ea.Yaw * 0.5)
	cp := math.Cos(ea.Pitch * 0.5)
	sp := math.Sin(ea.Pitch * 0.5)
	cr := math.Cos(ea.Roll * 0.5)
	sr := math.Sin(ea.Roll * 0.5)

	q := quat.Number{}
	q.Real = cr*cp*cy + sr*sp*sy
	q.Imag = sr*cp*cy - cr*sp*sy
	q.Jmag = cr*sp*cy + sr*cp*sy
	q.Kmag = cr*cp*sy - sr*sp*cy

	return q
}

// QuatToEulerAngles converts a rotation unit quaternion to euler angles.
// See the following wikipedia page for the formulas used here:
// https://en.wikipedia.org/wiki/Conversion_between_quaternions_and_Euler_angles#Quaternion_to_Euler_angles_conversion
// Euler angles are terrible, don't use them.
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	w := q.Real
	x := q.Imag
	y := q.Jmag
	z := q.Kmag

	angles := EulerAngles{}

	angles.Roll = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	// gimbal lock lives at |sinp| == 1; clamp so accumulated error cannot leave asin's domain
	sinp := 2 * (w*y - x*z)
	switch {
	case sinp >= 1:
		angles.Pitch = math.Pi / 2
	case sinp <= -1:
		angles.Pitch = -math.Pi / 2
	default:
		angles.Pitch = math.Asin(sinp)
	}

	angles.Yaw = math.Atan2(2*(w*z+y*x), 1-2*(y*y+z*z))
	return &angles
}
