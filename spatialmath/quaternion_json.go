package spatialmath

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// QuaternionConfig is the serialized form of a rotation quaternion.
type QuaternionConfig struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewQuaternionConfig converts a quaternion to its serialized form.
func NewQuaternionConfig(q quat.Number) *QuaternionConfig {
	return &QuaternionConfig{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// Quaternion returns the normalized rotation.
func (cfg *QuaternionConfig) Quaternion() quat.Number {
	return Normalize(quat.Number{Real: cfg.W, Imag: cfg.X, Jmag: cfg.Y, Kmag: cfg.Z})
}

// Validate rejects the zero quaternion, which is not a rotation.
func (cfg *QuaternionConfig) Validate() error {
	if cfg.W == 0 && cfg.X == 0 && cfg.Y == 0 && cfg.Z == 0 {
		return errors.New("quaternion must not be all zeros")
	}
	return nil
}
