// Package kinematics models a serial chain of rotational joints and moves its end effector toward
// a goal position with a constrained, step-wise inverse kinematics solver.
package kinematics

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/spatialmath"
	"github.com/masiro/armik/utils"
)

// DefaultLinkLength is the length given to every link of a new chain.
const DefaultLinkLength = 1.0

// MoveType selects how the solver turns a joint toward its step target.
type MoveType int

const (
	// MoveTypeAuto alternates by index: even joints move Horizontal, odd joints Vertical.
	// This is tuned for two link arms.
	MoveTypeAuto MoveType = iota
	// MoveTypeHorizontal attenuates the rotation when the joint is already aligned with the step.
	MoveTypeHorizontal
	// MoveTypeVertical applies the full rotation and bends toward the base when folding inward.
	MoveTypeVertical
)

func (t MoveType) String() string {
	switch t {
	case MoveTypeAuto:
		return "auto"
	case MoveTypeHorizontal:
		return "horizontal"
	case MoveTypeVertical:
		return "vertical"
	}
	return fmt.Sprintf("MoveType(%d)", int(t))
}

// ParseMoveType converts "auto", "horizontal" or "vertical" to a MoveType. The empty string is auto.
func ParseMoveType(s string) (MoveType, error) {
	switch s {
	case "", "auto":
		return MoveTypeAuto, nil
	case "horizontal":
		return MoveTypeHorizontal, nil
	case "vertical":
		return MoveTypeVertical, nil
	}
	return MoveTypeAuto, fmt.Errorf("unknown move type %q", s)
}

// Constraint bounds the roll, pitch and yaw of a joint rotation, in degrees.
type Constraint struct {
	RollMin  float64 `json:"roll_min"`
	RollMax  float64 `json:"roll_max"`
	PitchMin float64 `json:"pitch_min"`
	PitchMax float64 `json:"pitch_max"`
	YawMin   float64 `json:"yaw_min"`
	YawMax   float64 `json:"yaw_max"`
}

// DefaultConstraint leaves roll and yaw free and limits pitch to the range Euler angles can express.
func DefaultConstraint() Constraint {
	return Constraint{RollMin: -180, RollMax: 180, PitchMin: -90, PitchMax: 90, YawMin: -180, YawMax: 180}
}

// Contains reports whether the angles, in degrees, are within the constraint widened by tol.
func (c Constraint) Contains(roll, pitch, yaw, tol float64) bool {
	return roll >= c.RollMin-tol && roll <= c.RollMax+tol &&
		pitch >= c.PitchMin-tol && pitch <= c.PitchMax+tol &&
		yaw >= c.YawMin-tol && yaw <= c.YawMax+tol
}

// Clamp limits each angle, in degrees, to its range.
func (c Constraint) Clamp(roll, pitch, yaw float64) (float64, float64, float64) {
	return utils.Clamp(roll, c.RollMin, c.RollMax),
		utils.Clamp(pitch, c.PitchMin, c.PitchMax),
		utils.Clamp(yaw, c.YawMin, c.YawMax)
}

// Link is a rigid segment of the chain.
type Link struct {
	Length float64
}

// Joint is the rotation at the proximal end of a link, relative to the direction of the previous link.
type Joint struct {
	Rotation   quat.Number
	Constraint Constraint
	MoveType   MoveType
}

// Chain is an ordered list of links and joints anchored at a base position. Index 0 is attached to
// the base and the end of the last link is the end effector. Positions are derived from the joint
// rotations on every query.
type Chain struct {
	base      r3.Vector
	reference r3.Vector
	links     []Link
	joints    []Joint
}

// NewChain returns a chain of n unit length links based at the origin, pointing along +X, with
// identity rotations and default constraints. It panics if n < 1.
func NewChain(n int) *Chain {
	if n < 1 {
		panic(fmt.Sprintf("a chain needs at least one link, got %d", n))
	}
	c := &Chain{
		reference: r3.Vector{X: 1},
		links:     make([]Link, n),
		joints:    make([]Joint, n),
	}
	for i := range c.links {
		c.links[i] = Link{Length: DefaultLinkLength}
		c.joints[i] = Joint{Rotation: spatialmath.NewZeroOrientation(), Constraint: DefaultConstraint()}
	}
	return c
}

func (c *Chain) checkIndex(i int) {
	if i < 0 || i >= len(c.joints) {
		panic(utils.NewIndexOutOfRangeError("joint", i, len(c.joints)))
	}
}

// NumJoints returns the number of joints, which is also the number of links.
func (c *Chain) NumJoints() int {
	return len(c.joints)
}

// SetLinkLength sets the length of link i.
func (c *Chain) SetLinkLength(i int, length float64) {
	c.checkIndex(i)
	c.links[i].Length = length
}

// LinkLength returns the length of link i.
func (c *Chain) LinkLength(i int) float64 {
	c.checkIndex(i)
	return c.links[i].Length
}

// SetJointRotation sets the rotation of joint i. The rotation is normalized.
func (c *Chain) SetJointRotation(i int, q quat.Number) {
	c.checkIndex(i)
	c.joints[i].Rotation = spatialmath.Normalize(q)
}

// JointRotation returns the rotation of joint i.
func (c *Chain) JointRotation(i int) quat.Number {
	c.checkIndex(i)
	return c.joints[i].Rotation
}

// SetJointConstraint sets the roll, pitch and yaw limits of joint i, in degrees.
func (c *Chain) SetJointConstraint(i int, rollMin, rollMax, pitchMin, pitchMax, yawMin, yawMax float64) {
	c.checkIndex(i)
	c.joints[i].Constraint = Constraint{
		RollMin: rollMin, RollMax: rollMax,
		PitchMin: pitchMin, PitchMax: pitchMax,
		YawMin: yawMin, YawMax: yawMax,
	}
}

// JointConstraint returns the limits of joint i.
func (c *Chain) JointConstraint(i int) Constraint {
	c.checkIndex(i)
	return c.joints[i].Constraint
}

// SetJointMoveType sets how the solver moves joint i.
func (c *Chain) SetJointMoveType(i int, t MoveType) {
	c.checkIndex(i)
	c.joints[i].MoveType = t
}

// JointMoveType returns the move type configured for joint i.
func (c *Chain) JointMoveType(i int) MoveType {
	c.checkIndex(i)
	return c.joints[i].MoveType
}

// SetBasePosition moves the anchor of the chain.
func (c *Chain) SetBasePosition(p r3.Vector) {
	c.base = p
}

// BasePosition returns the anchor of the chain.
func (c *Chain) BasePosition() r3.Vector {
	return c.base
}

// SetReferenceDirection sets the direction of the chain when every rotation is identity. The
// vector is normalized; a zero vector panics.
func (c *Chain) SetReferenceDirection(v r3.Vector) {
	if v.Norm() == 0 {
		panic("reference direction cannot be the zero vector")
	}
	c.reference = v.Normalize()
}

// ReferenceDirection returns the unit direction of the chain at rest.
func (c *Chain) ReferenceDirection() r3.Vector {
	return c.reference
}

// JointRotations returns a copy of every joint rotation, in order.
func (c *Chain) JointRotations() []quat.Number {
	rotations := make([]quat.Number, len(c.joints))
	for i, j := range c.joints {
		rotations[i] = j.Rotation
	}
	return rotations
}

// SetJointRotations restores rotations captured by JointRotations. It panics if the count differs.
func (c *Chain) SetJointRotations(rotations []quat.Number) {
	if len(rotations) != len(c.joints) {
		panic(fmt.Sprintf("expected %d rotations, got %d", len(c.joints), len(rotations)))
	}
	for i, q := range rotations {
		c.SetJointRotation(i, q)
	}
}

// TotalLength returns the sum of the link lengths, i.e. the radius of the reachable sphere.
func (c *Chain) TotalLength() float64 {
	total := 0.
	for _, l := range c.links {
		total += l.Length
	}
	return total
}

// AverageLinkLength returns the mean link length.
func (c *Chain) AverageLinkLength() float64 {
	return c.TotalLength() / float64(len(c.links))
}

// JointPositions returns the n+1 points of the chain: the base, each joint in between and the end
// effector. Each link direction is the previous one rotated by that joint's rotation.
func (c *Chain) JointPositions() []r3.Vector {
	positions := make([]r3.Vector, 0, len(c.links)+1)
	positions = append(positions, c.base)
	dir := c.reference
	current := c.base
	for i, l := range c.links {
		dir = spatialmath.RotateVector(c.joints[i].Rotation, dir)
		current = current.Add(dir.Mul(l.Length))
		positions = append(positions, current)
	}
	return positions
}

// EndEffectorPosition returns the position at the distal end of the last link.
func (c *Chain) EndEffectorPosition() r3.Vector {
	positions := c.JointPositions()
	return positions[len(positions)-1]
}

// Clone returns a deep copy of the chain.
func (c *Chain) Clone() *Chain {
	clone := &Chain{
		base:      c.base,
		reference: c.reference,
		links:     make([]Link, len(c.links)),
		joints:    make([]Joint, len(c.joints)),
	}
	copy(clone.links, c.links)
	copy(clone.joints, c.joints)
	return clone
}

// JointEulerDegrees returns roll, pitch and yaw of joint i in degrees, each in (-180, 180].
func (c *Chain) JointEulerDegrees(i int) (roll, pitch, yaw float64) {
	c.checkIndex(i)
	return spatialmath.QuatToEulerAngles(c.joints[i].Rotation).Degrees()
}

func isFinite(v r3.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}
