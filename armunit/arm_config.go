package armunit

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/spatialmath"
)

// Robot bone lengths in meters.
const (
	UpperArmLength = 0.21985
	LowerArmLength = 0.21469
)

const (
	upperArm = 0
	lowerArm = 1
)

// ArmRotations are the joint rotations of one arm. Upper is relative to the shoulder and Lower is
// relative to the upper arm's direction, both in the chain frame.
type ArmRotations struct {
	Upper quat.Number
	Lower quat.Number
}

// SkeletonLocal returns the rotations as a skeleton expects them: the lower arm rotation conjugated
// into the upper arm's local frame, upper⁻¹·lower·upper.
func (r ArmRotations) SkeletonLocal() ArmRotations {
	local := quat.Mul(quat.Mul(quat.Conj(r.Upper), r.Lower), r.Upper)
	return ArmRotations{Upper: r.Upper, Lower: spatialmath.Normalize(local)}
}

// ArmConfig describes one arm.
type ArmConfig struct {
	UpperArmLength float64 `json:"upper_arm_length"`
	LowerArmLength float64 `json:"lower_arm_length"`
	// ShoulderRotation turns BoneDirection into the direction of the arm at rest.
	ShoulderRotation spatialmath.QuaternionConfig `json:"shoulder_rotation"`
	BoneDirection    r3.Vector                    `json:"bone_direction"`
	// UpperArmPosition is the shoulder joint, relative to the robot origin.
	UpperArmPosition r3.Vector `json:"upper_arm_position"`
	// Pose selects the preset initial rotations; InitialUpper and InitialLower override it.
	Pose         Pose                          `json:"pose,omitempty"`
	InitialUpper *spatialmath.QuaternionConfig `json:"initial_upper_rotation,omitempty"`
	InitialLower *spatialmath.QuaternionConfig `json:"initial_lower_rotation,omitempty"`
	UpperLimit   kinematics.Constraint         `json:"upper_arm_limit"`
	LowerLimit   kinematics.Constraint         `json:"lower_arm_limit"`
}

// Copy returns a deep copy of cfg.
func (cfg *ArmConfig) Copy() *ArmConfig {
	c := *cfg
	if cfg.InitialUpper != nil {
		upper := *cfg.InitialUpper
		c.InitialUpper = &upper
	}
	if cfg.InitialLower != nil {
		lower := *cfg.InitialLower
		c.InitialLower = &lower
	}
	return &c
}

// armLimit keeps roll and pitch free and holds yaw nearly fixed so the elbow only bends in the
// arm's plane.
func armLimit() kinematics.Constraint {
	return kinematics.Constraint{
		RollMin: -180, RollMax: 180,
		PitchMin: -180, PitchMax: 180,
		YawMin: -0.1, YawMax: 0.1,
	}
}

// DefaultArmConfig returns a new config of the robot's arm on the given side in the hand-holding
// pose. Each call returns a fresh value.
func DefaultArmConfig(side Side) *ArmConfig {
	cfg := &ArmConfig{
		UpperArmLength: UpperArmLength,
		LowerArmLength: LowerArmLength,
		Pose:           PoseHandHolding,
		UpperLimit:     armLimit(),
		LowerLimit:     armLimit(),
	}
	switch side {
	case SideLeft:
		cfg.ShoulderRotation = spatialmath.QuaternionConfig{W: 0.9975039, X: -0.07061425}
		cfg.BoneDirection = r3.Vector{Y: 1}
		cfg.UpperArmPosition = r3.Vector{Y: 0.1, Z: 1.2}
	default:
		cfg.ShoulderRotation = spatialmath.QuaternionConfig{W: 0.9975039, X: 0.0706143}
		cfg.BoneDirection = r3.Vector{Y: -1}
		cfg.UpperArmPosition = r3.Vector{Y: -0.1, Z: 1.2}
	}
	return cfg
}

// DefaultArmConfigs returns default configs for both arms.
func DefaultArmConfigs() map[Side]*ArmConfig {
	return map[Side]*ArmConfig{
		SideRight: DefaultArmConfig(SideRight),
		SideLeft:  DefaultArmConfig(SideLeft),
	}
}

// PresetRotations returns the initial rotations of a pose for one side.
func PresetRotations(side Side, pose Pose) ArmRotations {
	mirror := 1.
	if side == SideLeft {
		mirror = -1
	}
	switch pose {
	case PoseCatering:
		return ArmRotations{
			Upper: quat.Number{Real: 0.8735355, Imag: mirror * 0.4547339, Jmag: -0.1540279, Kmag: mirror * 0.08018184},
			Lower: quat.Number{Real: 0.7660447, Kmag: mirror * 0.6427881},
		}
	default:
		return ArmRotations{
			Upper: quat.Number{Real: 0.8191520, Imag: mirror * 0.5735764},
			Lower: spatialmath.NewZeroOrientation(),
		}
	}
}

// Validate returns every problem with the config.
func (cfg *ArmConfig) Validate(path string) error {
	var errs error
	if !(cfg.UpperArmLength > 0) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("upper_arm_length must be positive, got %v", cfg.UpperArmLength)))
	}
	if !(cfg.LowerArmLength > 0) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("lower_arm_length must be positive, got %v", cfg.LowerArmLength)))
	}
	if cfg.BoneDirection.Norm() == 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "bone_direction"))
	}
	if err := cfg.ShoulderRotation.Validate(); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path+".shoulder_rotation", err))
	}
	if _, err := ParsePose(string(cfg.Pose)); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, err))
	}
	for name, q := range map[string]*spatialmath.QuaternionConfig{
		"initial_upper_rotation": cfg.InitialUpper,
		"initial_lower_rotation": cfg.InitialLower,
	} {
		if q == nil {
			continue
		}
		if err := q.Validate(); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, name), err))
		}
	}
	errs = multierr.Append(errs, cfg.UpperLimit.Validate(path+".upper_arm_limit"))
	errs = multierr.Append(errs, cfg.LowerLimit.Validate(path+".lower_arm_limit"))
	return errs
}

// InitialRotations returns the explicit initial rotations if set, otherwise the pose preset.
func (cfg *ArmConfig) InitialRotations(side Side) ArmRotations {
	pose, err := ParsePose(string(cfg.Pose))
	if err != nil {
		pose = PoseHandHolding
	}
	rotations := PresetRotations(side, pose)
	if cfg.InitialUpper != nil {
		rotations.Upper = cfg.InitialUpper.Quaternion()
	}
	if cfg.InitialLower != nil {
		rotations.Lower = cfg.InitialLower.Quaternion()
	}
	return rotations
}

// ReferenceDirection is the bone direction turned by the shoulder rotation.
func (cfg *ArmConfig) ReferenceDirection() r3.Vector {
	return spatialmath.RotateVector(cfg.ShoulderRotation.Quaternion(), cfg.BoneDirection.Normalize()).Normalize()
}

// ChainConfig describes the arm as a two link chain based at the shoulder.
func (cfg *ArmConfig) ChainConfig(side Side) *kinematics.ChainConfig {
	rotations := cfg.InitialRotations(side)
	ref := cfg.ReferenceDirection()
	upperLimit := cfg.UpperLimit
	lowerLimit := cfg.LowerLimit
	return &kinematics.ChainConfig{
		Name:               string(side) + "_arm",
		BasePosition:       cfg.UpperArmPosition,
		ReferenceDirection: &ref,
		Links: []kinematics.LinkConfig{
			upperArm: {
				Length:     cfg.UpperArmLength,
				Constraint: &upperLimit,
				Rotation:   spatialmath.NewQuaternionConfig(rotations.Upper),
			},
			lowerArm: {
				Length:     cfg.LowerArmLength,
				Constraint: &lowerLimit,
				Rotation:   spatialmath.NewQuaternionConfig(rotations.Lower),
			},
		},
	}
}
