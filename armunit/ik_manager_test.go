package armunit

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/logging"
	"github.com/masiro/armik/spatialmath"
)

// mirrored goals for the right arm; negate y for the left arm.
var reachableGoals = []r3.Vector{
	{X: 0.25, Y: -0.2, Z: 1.0},
	{X: 0.2, Y: -0.15, Z: 1.1},
	{X: 0.15, Y: 0.1, Z: 0.9},
	{X: 0.2, Y: -0.1, Z: 0.9},
}

func mirror(side Side, v r3.Vector) r3.Vector {
	if side == SideLeft {
		v.Y = -v.Y
	}
	return v
}

func newTestManager(t *testing.T, side Side, pose Pose) *IKManager {
	t.Helper()
	arms := DefaultArmConfigs()
	for _, cfg := range arms {
		cfg.Pose = pose
	}
	m, err := NewIKManager(side, arms, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return m
}

func TestNewIKManagerErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := NewIKManager("up", DefaultArmConfigs(), logger)
	test.That(t, err, test.ShouldNotBeNil)

	arms := DefaultArmConfigs()
	delete(arms, SideLeft)
	_, err = NewIKManager(SideRight, arms, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing left arm config")

	arms = DefaultArmConfigs()
	arms[SideLeft].LowerArmLength = 0
	_, err = NewIKManager(SideRight, arms, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "left_arm")
}

func TestIKManagerConvergesBothSides(t *testing.T) {
	for _, side := range Sides {
		for _, pose := range []Pose{PoseHandHolding, PoseCatering} {
			for _, goal := range reachableGoals {
				goal := mirror(side, goal)
				m := newTestManager(t, side, pose)
				minCalc := m.Solver().MinCalculateLength()

				prev := goal.Sub(m.HandPosition()).Norm()
				var rotations ArmRotations
				for i := 0; i < 10; i++ {
					rotations, _ = m.Solve(goal)
					dist := goal.Sub(m.HandPosition()).Norm()
					test.That(t, dist, test.ShouldBeLessThanOrEqualTo, prev+1e-12)
					prev = dist
				}
				test.That(t, prev, test.ShouldBeLessThan, minCalc)
				test.That(t, rotations, test.ShouldResemble, m.Rotations())

				for i := 0; i < 2; i++ {
					roll, pitch, yaw := m.Solver().Chain().JointEulerDegrees(i)
					c := m.Solver().Chain().JointConstraint(i)
					test.That(t, c.Contains(roll, pitch, yaw, 1e-9), test.ShouldBeTrue)
				}
			}
		}
	}
}

func TestIKManagerAtGoal(t *testing.T) {
	m := newTestManager(t, SideRight, PoseHandHolding)
	before := m.Rotations()
	rotations, status := m.Solve(m.HandPosition())
	test.That(t, status, test.ShouldEqual, kinematics.StatusAtGoal)
	test.That(t, rotations, test.ShouldResemble, before)
}

func TestIKManagerSetSide(t *testing.T) {
	m := newTestManager(t, SideRight, PoseHandHolding)
	test.That(t, m.Side(), test.ShouldEqual, SideRight)
	test.That(t, m.UpperArmPosition(), test.ShouldResemble, r3.Vector{Y: -0.1, Z: 1.2})
	right := m.HandPosition()

	m.Solve(reachableGoals[0])
	test.That(t, m.SetSide(SideRight), test.ShouldBeNil)
	// same side keeps the solved pose
	test.That(t, m.HandPosition(), test.ShouldNotResemble, right)

	test.That(t, m.SetSide(SideLeft), test.ShouldBeNil)
	test.That(t, m.Side(), test.ShouldEqual, SideLeft)
	test.That(t, m.UpperArmPosition(), test.ShouldResemble, r3.Vector{Y: 0.1, Z: 1.2})
	left := m.HandPosition()
	test.That(t, left.X, test.ShouldAlmostEqual, right.X, 1e-6)
	test.That(t, left.Y, test.ShouldAlmostEqual, -right.Y, 1e-6)
	test.That(t, left.Z, test.ShouldAlmostEqual, right.Z, 1e-6)

	test.That(t, m.SetSide("up"), test.ShouldNotBeNil)
	test.That(t, m.Side(), test.ShouldEqual, SideLeft)
}

func TestIKManagerKeepsOwnConfig(t *testing.T) {
	arms := DefaultArmConfigs()
	upper := spatialmath.NewR4AAFromAxis(r3.Vector{X: 1}, 1).ToQuat()
	arms[SideRight].InitialUpper = spatialmath.NewQuaternionConfig(upper)
	m, err := NewIKManager(SideRight, arms, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// later edits by the caller do not reach the manager
	arms[SideRight].InitialUpper.W = 0
	arms[SideRight].InitialUpper.X = 1
	arms[SideRight].UpperArmLength = 1

	test.That(t, m.SetSide(SideLeft), test.ShouldBeNil)
	test.That(t, m.SetSide(SideRight), test.ShouldBeNil)
	test.That(t, spatialmath.QuaternionAlmostEqual(m.Rotations().Upper, upper, 1e-9), test.ShouldBeTrue)
	test.That(t, m.Solver().Chain().LinkLength(0), test.ShouldEqual, UpperArmLength)
}

func TestArmConfigCopy(t *testing.T) {
	cfg := DefaultArmConfig(SideLeft)
	cfg.InitialLower = &spatialmath.QuaternionConfig{W: 1}
	c := cfg.Copy()
	test.That(t, c, test.ShouldResemble, cfg)
	c.InitialLower.W = 0.5
	test.That(t, cfg.InitialLower.W, test.ShouldEqual, 1.)
	test.That(t, c.InitialUpper, test.ShouldBeNil)
}

func TestIKManagerInitializeRotations(t *testing.T) {
	m := newTestManager(t, SideRight, PoseHandHolding)
	catering := PresetRotations(SideRight, PoseCatering)
	m.InitializeRotations(catering.Upper, catering.Lower)

	rotations := m.Rotations()
	test.That(t, spatialmath.QuaternionAlmostEqual(rotations.Upper, catering.Upper, 1e-6), test.ShouldBeTrue)
	test.That(t, spatialmath.QuaternionAlmostEqual(rotations.Lower, catering.Lower, 1e-6), test.ShouldBeTrue)

	hand := m.HandPosition()
	test.That(t, hand.X, test.ShouldAlmostEqual, 0.174089, 1e-5)
	test.That(t, hand.Y, test.ShouldAlmostEqual, -0.151853, 1e-5)
	test.That(t, hand.Z, test.ShouldAlmostEqual, 0.835853, 1e-5)
	test.That(t, m.Solver().Goal(), test.ShouldResemble, hand)
}

func TestSolveBoth(t *testing.T) {
	managers := map[Side]*IKManager{
		SideRight: newTestManager(t, SideRight, PoseHandHolding),
		SideLeft:  newTestManager(t, SideLeft, PoseHandHolding),
	}
	goals := map[Side]r3.Vector{
		SideRight: reachableGoals[3],
		SideLeft:  mirror(SideLeft, reachableGoals[3]),
	}
	var results map[Side]SolveResult
	var err error
	for i := 0; i < 10; i++ {
		results, err = SolveBoth(context.Background(), managers, goals)
		test.That(t, err, test.ShouldBeNil)
	}
	test.That(t, results, test.ShouldHaveLength, 2)
	for side, res := range results {
		test.That(t, res.Hand.Sub(goals[side]).Norm(), test.ShouldBeLessThan, managers[side].Solver().MinCalculateLength())
		test.That(t, res.Rotations, test.ShouldResemble, managers[side].Rotations())
	}
	test.That(t, results[SideLeft].Hand.Y, test.ShouldAlmostEqual, -results[SideRight].Hand.Y, 1e-4)

	delete(managers, SideLeft)
	results, err = SolveBoth(context.Background(), managers, goals)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no ik manager for left arm")
	test.That(t, results, test.ShouldContainKey, SideRight)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = SolveBoth(ctx, managers, goals)
	test.That(t, err, test.ShouldNotBeNil)
}
