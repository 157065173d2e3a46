package armunit

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/logging"
)

// IKManager drives the arm on the hand-holding side. The other arm is left to the caller.
type IKManager struct {
	mu      sync.Mutex
	side    Side
	arms    map[Side]*ArmConfig
	logger  logging.Logger
	options []kinematics.Option

	chain  *kinematics.Chain
	solver *kinematics.StepIK
}

// NewIKManager validates the arm configs and builds the solver for the given side. Both sides
// must be configured so that SetSide can switch between them.
func NewIKManager(
	side Side,
	arms map[Side]*ArmConfig,
	logger logging.Logger,
	opts ...kinematics.Option,
) (*IKManager, error) {
	if _, err := ParseSide(string(side)); err != nil {
		return nil, err
	}
	copied := make(map[Side]*ArmConfig, len(Sides))
	for _, s := range Sides {
		cfg, ok := arms[s]
		if !ok || cfg == nil {
			return nil, errors.Errorf("missing %s arm config", s)
		}
		if err := cfg.Validate(string(s) + "_arm"); err != nil {
			return nil, err
		}
		copied[s] = cfg.Copy()
	}
	m := &IKManager{
		arms:    copied,
		logger:  logger,
		options: opts,
	}
	if err := m.setSide(side); err != nil {
		return nil, err
	}
	return m, nil
}

// SetSide moves the solver to the other arm. The chain is rebuilt from that arm's config, starting
// in its preset pose.
func (m *IKManager) SetSide(side Side) error {
	if _, err := ParseSide(string(side)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if side == m.side {
		return nil
	}
	return m.setSide(side)
}

func (m *IKManager) setSide(side Side) error {
	chain, err := kinematics.NewChainFromConfig(m.arms[side].ChainConfig(side))
	if err != nil {
		return errors.Wrapf(err, "cannot build %s arm", side)
	}
	m.side = side
	m.chain = chain
	m.solver = kinematics.NewStepIK(chain, m.logger.Sublogger(string(side)), m.options...)
	m.logger.Debugw("hand holding side set", "side", side, "hand", chain.EndEffectorPosition())
	return nil
}

// Side returns the hand-holding side.
func (m *IKManager) Side() Side {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.side
}

// InitializeRotations warm starts the chain from the rotations currently shown by the skeleton.
// The goal is reset to the resulting hand position.
func (m *IKManager) InitializeRotations(upper, lower quat.Number) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chain.SetJointRotation(upperArm, upper)
	m.chain.SetJointRotation(lowerArm, lower)
	m.solver.SetGoal(m.chain.EndEffectorPosition())
}

// Solve moves the hand toward goal, given relative to the robot origin, and returns the new
// rotations. Call it once per control cycle.
func (m *IKManager) Solve(goal r3.Vector) (ArmRotations, kinematics.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.solver.SetGoal(goal)
	status := m.solver.Solve()
	return m.rotations(), status
}

// Rotations returns the current joint rotations.
func (m *IKManager) Rotations() ArmRotations {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rotations()
}

func (m *IKManager) rotations() ArmRotations {
	return ArmRotations{
		Upper: m.chain.JointRotation(upperArm),
		Lower: m.chain.JointRotation(lowerArm),
	}
}

// HandPosition returns the hand position relative to the robot origin.
func (m *IKManager) HandPosition() r3.Vector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain.EndEffectorPosition()
}

// UpperArmPosition returns the shoulder joint of the active arm.
func (m *IKManager) UpperArmPosition() r3.Vector {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain.BasePosition()
}

// Diagnostics returns the record of the last Solve.
func (m *IKManager) Diagnostics() kinematics.Diagnostics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.solver.Diagnostics()
}

// Solver returns the underlying solver. It must not be used concurrently with the manager.
func (m *IKManager) Solver() *kinematics.StepIK {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.solver
}
