// Package config defines the armik configuration file: log level, solver tuning and the two arms.
package config

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/masiro/armik/armunit"
	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/logging"
	"github.com/masiro/armik/utils"
)

// Config is the top level configuration of armik.
type Config struct {
	ConfigFilePath string `json:"-"`

	LogLevel        string `json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	HandHoldingSide string `json:"hand_holding_side,omitempty" jsonschema:"enum=right,enum=left"`

	// Solver holds StepIK tuning attributes; see SolverConfig.
	Solver utils.AttributeMap `json:"solver,omitempty"`
	// Arms overrides the robot's default arms, keyed by side.
	Arms map[armunit.Side]*armunit.ArmConfig `json:"arms,omitempty"`

	solver *SolverConfig
}

// SolverConfig tunes the step solver. Zero values keep the defaults.
type SolverConfig struct {
	LinkMoveRate       float64 `json:"link_move_rate,omitempty"`
	MoveCalculateRate  float64 `json:"move_calculate_rate,omitempty"`
	SingularBase       float64 `json:"singular_base,omitempty"`
	MaxOuterIterations int     `json:"max_outer_iterations,omitempty"`
	MaxInnerIterations int     `json:"max_inner_iterations,omitempty"`
}

// Validate ensures all parts of the solver config are valid.
func (cfg *SolverConfig) Validate(path string) error {
	var errs error
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"link_move_rate", cfg.LinkMoveRate},
		{"move_calculate_rate", cfg.MoveCalculateRate},
		{"singular_base", cfg.SingularBase},
		{"max_outer_iterations", float64(cfg.MaxOuterIterations)},
		{"max_inner_iterations", float64(cfg.MaxInnerIterations)},
	} {
		if f.value < 0 {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
				errors.Errorf("%s must not be negative, got %v", f.name, f.value)))
		}
	}
	return errs
}

// Options turns the config into solver options.
func (cfg *SolverConfig) Options() []kinematics.Option {
	var opts []kinematics.Option
	if cfg.LinkMoveRate > 0 {
		opts = append(opts, kinematics.WithLinkMoveRate(cfg.LinkMoveRate))
	}
	if cfg.MoveCalculateRate > 0 {
		opts = append(opts, kinematics.WithMoveCalculateRate(cfg.MoveCalculateRate))
	}
	if cfg.SingularBase > 0 {
		opts = append(opts, kinematics.WithSingularBase(cfg.SingularBase))
	}
	if cfg.MaxOuterIterations > 0 || cfg.MaxInnerIterations > 0 {
		opts = append(opts, kinematics.WithMaxIterations(cfg.MaxOuterIterations, cfg.MaxInnerIterations))
	}
	return opts
}

// DecodeSolverAttributes converts free-form attributes to a SolverConfig. Unknown attributes are an
// error.
func DecodeSolverAttributes(attributes utils.AttributeMap) (*SolverConfig, error) {
	conf := &SolverConfig{}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   conf,
		Metadata: &md,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode solver attributes")
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return nil, errors.Errorf("unknown solver attributes %q", md.Unused)
	}
	return conf, nil
}

// Ensure fills in defaults and validates the config, collecting every problem found.
func (c *Config) Ensure() error {
	var errs error
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError("log_level", err))
		}
	}
	if c.HandHoldingSide == "" {
		c.HandHoldingSide = string(armunit.SideRight)
	}
	if _, err := armunit.ParseSide(c.HandHoldingSide); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError("hand_holding_side", err))
	}

	solver, err := DecodeSolverAttributes(c.Solver)
	if err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError("solver", err))
	} else {
		errs = multierr.Append(errs, solver.Validate("solver"))
		c.solver = solver
	}

	for side := range c.Arms {
		if _, err := armunit.ParseSide(string(side)); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError("arms", err))
		}
	}
	if c.Arms == nil {
		c.Arms = map[armunit.Side]*armunit.ArmConfig{}
	}
	for _, side := range armunit.Sides {
		arm, ok := c.Arms[side]
		if !ok || arm == nil {
			c.Arms[side] = armunit.DefaultArmConfig(side)
			continue
		}
		errs = multierr.Append(errs, arm.Validate(fmt.Sprintf("arms.%s", side)))
	}
	return errs
}

// Side returns the configured hand-holding side. Only valid after Ensure.
func (c *Config) Side() armunit.Side {
	return armunit.Side(c.HandHoldingSide)
}

// Level returns the configured log level, INFO when unset.
func (c *Config) Level() logging.Level {
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return logging.INFO
	}
	return level
}

// SolverOptions returns the solver options. Only valid after Ensure.
func (c *Config) SolverOptions() []kinematics.Option {
	if c.solver == nil {
		return nil
	}
	return c.solver.Options()
}

// NewIKManager builds a manager for the hand-holding side.
func (c *Config) NewIKManager(logger logging.Logger) (*armunit.IKManager, error) {
	return armunit.NewIKManager(c.Side(), c.Arms, logger, c.SolverOptions()...)
}

// NewIKManagers builds one manager per arm, for solving both arms at once.
func (c *Config) NewIKManagers(logger logging.Logger) (map[armunit.Side]*armunit.IKManager, error) {
	managers := make(map[armunit.Side]*armunit.IKManager, len(armunit.Sides))
	for _, side := range armunit.Sides {
		m, err := armunit.NewIKManager(side, c.Arms, logger.Sublogger(string(side)), c.SolverOptions()...)
		if err != nil {
			return nil, err
		}
		managers[side] = m
	}
	return managers, nil
}
