package cli

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/spatialmath"
)

func formatEuler(q quat.Number) string {
	roll, pitch, yaw := spatialmath.QuatToEulerAngles(q).Degrees()
	return fmt.Sprintf("%.2f, %.2f, %.2f", roll, pitch, yaw)
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("X:%.4f, Y:%.4f, Z:%.4f", v.X, v.Y, v.Z)
}

func formatRate(rate float64) string {
	if math.IsInf(rate, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.6g", rate)
}
