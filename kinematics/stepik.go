package kinematics

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/logging"
	"github.com/masiro/armik/spatialmath"
	"github.com/masiro/armik/utils"
)

const (
	// DefaultLinkMoveRate is the fraction of the average link length covered by one outer step.
	DefaultLinkMoveRate = 0.1
	// DefaultMoveCalculateRate is the fraction of an outer step below which no movement is attempted.
	DefaultMoveCalculateRate = 0.01
	// DefaultSingularBase scales the average link length into the singular point limit, in length per degree.
	DefaultSingularBase = 1e-4
	// DefaultMaxOuterIterations bounds the number of outer steps of one Solve call.
	DefaultMaxOuterIterations = 10
	// DefaultMaxInnerIterations bounds the refinement iterations of one outer step.
	DefaultMaxInnerIterations = 50

	innerStepSize    = 0.5
	insideStepFactor = 10.
	zeroDivideLimit  = 1e-10
)

// fallbackAxis is used when the joint-to-end and step vectors are parallel.
var fallbackAxis = r3.Vector{X: 1, Y: 1, Z: 1}.Normalize()

// Status describes the outcome of a Solve call.
type Status int

const (
	// StatusAtGoal means the end effector was already within the minimum calculate length.
	StatusAtGoal Status = iota
	// StatusAdvanced means every outer step was accepted.
	StatusAdvanced
	// StatusSingular means an outer step moved the joints a lot for too little linear progress. That
	// step was rolled back and the call stopped early; earlier steps are kept.
	StatusSingular
)

func (s Status) String() string {
	switch s {
	case StatusAtGoal:
		return "at_goal"
	case StatusAdvanced:
		return "advanced"
	case StatusSingular:
		return "singular"
	}
	return "unknown"
}

// Option configures a StepIK.
type Option func(*StepIK)

// WithLinkMoveRate overrides DefaultLinkMoveRate.
func WithLinkMoveRate(rate float64) Option {
	return func(ik *StepIK) { ik.linkMoveRate = rate }
}

// WithMoveCalculateRate overrides DefaultMoveCalculateRate.
func WithMoveCalculateRate(rate float64) Option {
	return func(ik *StepIK) { ik.moveCalculateRate = rate }
}

// WithSingularBase overrides DefaultSingularBase.
func WithSingularBase(base float64) Option {
	return func(ik *StepIK) { ik.singularBase = base }
}

// WithMaxIterations overrides the outer and inner iteration bounds. Values below one are ignored.
func WithMaxIterations(outer, inner int) Option {
	return func(ik *StepIK) {
		if outer > 0 {
			ik.maxOuter = outer
		}
		if inner > 0 {
			ik.maxInner = inner
		}
	}
}

// StepIK moves the end effector of a chain toward a goal in bounded increments. Each outer step
// advances an intermediate goal by at most maxMoveLength and nudges every joint in turn until the
// end effector reaches it. Joint limits are enforced after every nudge, and a step whose linear
// progress per degree of rotation falls below the singular point limit is undone.
//
// A StepIK and its chain belong to one caller; Solve is not safe for concurrent use.
type StepIK struct {
	chain  *Chain
	logger logging.Logger
	goal   r3.Vector

	linkMoveRate      float64
	moveCalculateRate float64
	singularBase      float64
	maxOuter          int
	maxInner          int

	maxMoveLength      float64
	minCalculateLength float64
	singularPointLimit float64
	moveTypes          []MoveType

	diagnostics Diagnostics
}

// NewStepIK creates a solver for the chain. Step lengths and the singular point limit are derived
// from the chain's average link length here, so changing link lengths later requires a new solver.
// The goal starts at the current end effector position.
func NewStepIK(chain *Chain, logger logging.Logger, opts ...Option) *StepIK {
	ik := &StepIK{
		chain:             chain,
		logger:            logger,
		linkMoveRate:      DefaultLinkMoveRate,
		moveCalculateRate: DefaultMoveCalculateRate,
		singularBase:      DefaultSingularBase,
		maxOuter:          DefaultMaxOuterIterations,
		maxInner:          DefaultMaxInnerIterations,
	}
	for _, opt := range opts {
		opt(ik)
	}

	avg := chain.AverageLinkLength()
	ik.maxMoveLength = avg * ik.linkMoveRate
	ik.minCalculateLength = ik.maxMoveLength * ik.moveCalculateRate
	ik.singularPointLimit = ik.singularBase * avg

	ik.moveTypes = make([]MoveType, chain.NumJoints())
	for i := range ik.moveTypes {
		ik.moveTypes[i] = resolveMoveType(chain.JointMoveType(i), i)
	}
	ik.goal = chain.EndEffectorPosition()
	return ik
}

func resolveMoveType(t MoveType, index int) MoveType {
	if t != MoveTypeAuto {
		return t
	}
	if index%2 == 0 {
		return MoveTypeHorizontal
	}
	return MoveTypeVertical
}

// Chain returns the chain being solved.
func (ik *StepIK) Chain() *Chain {
	return ik.chain
}

// MoveType returns the resolved move type of joint i; it is never MoveTypeAuto.
func (ik *StepIK) MoveType(i int) MoveType {
	ik.chain.checkIndex(i)
	return ik.moveTypes[i]
}

// MaxMoveLength is the largest distance covered by one outer step.
func (ik *StepIK) MaxMoveLength() float64 {
	return ik.maxMoveLength
}

// MinCalculateLength is the distance to the goal below which Solve does nothing.
func (ik *StepIK) MinCalculateLength() float64 {
	return ik.minCalculateLength
}

// SingularPointLimit is the minimum accepted progress, in length per degree of joint rotation.
func (ik *StepIK) SingularPointLimit() float64 {
	return ik.singularPointLimit
}

// SetGoal sets the target of the end effector. A point farther from the base than the chain can
// reach is projected onto the reach sphere. Non-finite points are ignored.
func (ik *StepIK) SetGoal(p r3.Vector) {
	if !isFinite(p) {
		ik.logger.Warnw("ignoring non-finite goal", "goal", p)
		return
	}
	base := ik.chain.BasePosition()
	fromBase := p.Sub(base)
	reach := ik.chain.TotalLength()
	if fromBase.Norm() > reach {
		ik.goal = base.Add(fromBase.Normalize().Mul(reach))
		return
	}
	ik.goal = p
}

// Goal returns the goal after clamping.
func (ik *StepIK) Goal() r3.Vector {
	return ik.goal
}

// DistanceToGoal returns the distance between the end effector and the goal.
func (ik *StepIK) DistanceToGoal() float64 {
	return ik.goal.Sub(ik.chain.EndEffectorPosition()).Norm()
}

// Diagnostics returns the record of the most recent Solve call.
func (ik *StepIK) Diagnostics() Diagnostics {
	return ik.diagnostics.clone()
}

// Solve moves the joints toward the goal. It is bounded by the outer and inner iteration limits and
// never fails; the returned status tells whether the call stopped early at a singular pose. Callers
// warm start by calling Solve again every cycle.
func (ik *StepIK) Solve() Status {
	end := ik.chain.EndEffectorPosition()
	toGoal := ik.goal.Sub(end)
	dist := toGoal.Norm()

	ik.diagnostics = Diagnostics{InitialDistance: dist}
	if dist < ik.minCalculateLength {
		ik.diagnostics.Status = StatusAtGoal
		ik.diagnostics.FinalDistance = dist
		return StatusAtGoal
	}

	outerCount := int(math.Min(math.Ceil(dist/ik.maxMoveLength), float64(ik.maxOuter)))
	direction := toGoal.Mul(1 / dist)
	innerGoal := end
	status := StatusAdvanced

	for i := 0; i < outerCount; i++ {
		stepLength := ik.maxMoveLength
		if i == outerCount-1 {
			// the last step takes the remainder so the steps add up to the goal
			stepLength = dist - ik.maxMoveLength*float64(i)
		}
		innerGoal = innerGoal.Add(direction.Mul(stepLength))

		before := ik.chain.JointRotations()
		step := ik.solveInner(innerGoal)
		step.RotatedAngleNorm = ik.rotatedAngleNorm(before)
		step.Rate = stepRate(step.RotatedDistance, step.RotatedAngleNorm)

		if step.Rate < ik.singularPointLimit {
			ik.restore(before)
			step.RolledBack = true
			ik.diagnostics.Steps = append(ik.diagnostics.Steps, step)
			status = StatusSingular
			break
		}
		ik.diagnostics.Steps = append(ik.diagnostics.Steps, step)
		ik.diagnostics.OuterSteps++
	}

	ik.diagnostics.Status = status
	ik.diagnostics.FinalDistance = ik.DistanceToGoal()
	ik.logger.Debugw("step ik solve",
		"status", status.String(),
		"initial_distance", ik.diagnostics.InitialDistance,
		"final_distance", ik.diagnostics.FinalDistance,
		"outer_steps", ik.diagnostics.OuterSteps,
	)
	return status
}

// solveInner refines the joints until the end effector is within minCalculateLength of innerGoal or
// the iteration bound is hit. Rotated distance is the drop in step vector length over the loop.
func (ik *StepIK) solveInner(innerGoal r3.Vector) StepDiagnostics {
	var step StepDiagnostics
	base := ik.chain.BasePosition()
	var first, last float64
	for k := 0; k < ik.maxInner; k++ {
		end := ik.chain.EndEffectorPosition()
		inside := innerGoal.Sub(base).Norm2() < end.Sub(base).Norm2()

		remaining := innerGoal.Sub(end)
		stepVector := remaining.Mul(innerStepSize)
		last = stepVector.Norm()
		if k == 0 {
			first = last
		}
		step.InnerStepNorms = append(step.InnerStepNorms, last)
		if remaining.Norm() < ik.minCalculateLength {
			break
		}

		ik.moveJoints(stepVector, innerGoal, inside)
		step.InnerIterations++
	}
	step.RotatedDistance = first - last
	return step
}

// moveJoints nudges every joint, proximal first, toward the step vector.
func (ik *StepIK) moveJoints(stepVector, innerGoal r3.Vector, inside bool) {
	base := ik.chain.BasePosition()
	n := ik.chain.NumJoints()
	for j := 0; j < n; j++ {
		positions := ik.chain.JointPositions()
		end := positions[n]
		if j > 1 {
			// distal joints react to what the proximal ones already did this iteration
			stepVector = innerGoal.Sub(end).Mul(innerStepSize)
		}
		stepNorm := stepVector.Norm()
		jointToEnd := end.Sub(positions[j])

		if ik.moveTypes[j] == MoveTypeVertical && inside {
			baseToEnd := base.Sub(end)
			stepVector = stepVector.Normalize().Add(baseToEnd.Normalize()).Mul(stepNorm * insideStepFactor)
		}

		angle := math.Atan2(stepVector.Norm(), jointToEnd.Norm())
		if ik.moveTypes[j] == MoveTypeHorizontal {
			cos := stepVector.Normalize().Dot(jointToEnd.Normalize())
			angle *= 1 - math.Abs(cos)
		}

		axis := jointToEnd.Cross(stepVector)
		if axis.Norm() < zeroDivideLimit {
			axis = fallbackAxis
		}
		nudge := spatialmath.NewR4AAFromAxis(axis, angle).ToQuat()
		rotation := spatialmath.Normalize(quat.Mul(nudge, ik.chain.JointRotation(j)))
		ik.chain.SetJointRotation(j, constrainRotation(rotation, ik.chain.JointConstraint(j)))
	}
}

// constrainRotation returns q unchanged when its roll, pitch and yaw are within c. Otherwise the
// out of range angles are clamped and q is corrected to exactly the clamped triple, in the same
// hemisphere as q.
func constrainRotation(q quat.Number, c Constraint) quat.Number {
	roll, pitch, yaw := spatialmath.QuatToEulerAngles(q).Degrees()
	cRoll, cPitch, cYaw := c.Clamp(roll, pitch, yaw)
	if cRoll == roll && cPitch == pitch && cYaw == yaw {
		return q
	}
	// q·(q⁻¹·target) collapses to target
	target := spatialmath.NewEulerAnglesFromDegrees(cRoll, cPitch, cYaw).Quaternion()
	return spatialmath.SameHemisphere(q, target)
}

// rotatedAngleNorm sums, in degrees, how far every joint turned since the snapshot.
func (ik *StepIK) rotatedAngleNorm(before []quat.Number) float64 {
	total := 0.
	for j, q := range before {
		delta := spatialmath.OrientationBetween(q, ik.chain.JointRotation(j))
		total += utils.RadToDeg(spatialmath.ShortestArcAngle(delta))
	}
	return total
}

// restore puts back a snapshot taken with JointRotations without renormalizing it.
func (ik *StepIK) restore(rotations []quat.Number) {
	for i, q := range rotations {
		ik.chain.joints[i].Rotation = q
	}
}

// stepRate is the linear progress per degree of rotation. No rotation at all is never singular.
func stepRate(rotatedDistance, rotatedAngleNorm float64) float64 {
	if rotatedAngleNorm == 0 {
		return math.Inf(1)
	}
	return rotatedDistance / rotatedAngleNorm
}
