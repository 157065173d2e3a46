package kinematics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/masiro/armik/spatialmath"
)

// ErrNoChainInformation is returned when a chain file is empty.
var ErrNoChainInformation = errors.New("no chain information")

// ChainConfig is the JSON description of a chain.
type ChainConfig struct {
	Name               string       `json:"name,omitempty"`
	BasePosition       r3.Vector    `json:"base_position"`
	ReferenceDirection *r3.Vector   `json:"reference_direction,omitempty"`
	Links              []LinkConfig `json:"links"`
}

// LinkConfig describes one link and the joint at its proximal end. Omitted fields take the chain
// defaults.
type LinkConfig struct {
	Length     float64                       `json:"length"`
	Constraint *Constraint                   `json:"constraint,omitempty"`
	MoveType   string                        `json:"move_type,omitempty"`
	Rotation   *spatialmath.QuaternionConfig `json:"rotation,omitempty"`
}

// Validate returns every problem with the config; path prefixes the field names.
func (cfg *ChainConfig) Validate(path string) error {
	var errs error
	if len(cfg.Links) == 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "links"))
	}
	if cfg.ReferenceDirection != nil && cfg.ReferenceDirection.Norm() == 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.New("reference_direction must not be the zero vector")))
	}
	if !isFinite(cfg.BasePosition) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, errors.New("base_position must be finite")))
	}
	for i := range cfg.Links {
		errs = multierr.Append(errs, cfg.Links[i].Validate(fmt.Sprintf("%s.links.%d", path, i)))
	}
	return errs
}

// Validate checks a single link.
func (cfg *LinkConfig) Validate(path string) error {
	var errs error
	if !(cfg.Length > 0) || math.IsInf(cfg.Length, 0) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("length must be a positive number, got %v", cfg.Length)))
	}
	if cfg.Constraint != nil {
		errs = multierr.Append(errs, cfg.Constraint.Validate(path+".constraint"))
	}
	if _, err := ParseMoveType(cfg.MoveType); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, err))
	}
	if cfg.Rotation != nil {
		if err := cfg.Rotation.Validate(); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(path+".rotation", err))
		}
	}
	return errs
}

// Validate checks that every minimum is at most its maximum.
func (c *Constraint) Validate(path string) error {
	var errs error
	for _, r := range []struct {
		name     string
		min, max float64
	}{
		{"roll", c.RollMin, c.RollMax},
		{"pitch", c.PitchMin, c.PitchMax},
		{"yaw", c.YawMin, c.YawMax},
	} {
		if r.min > r.max {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
				errors.Errorf("%s_min %v is greater than %s_max %v", r.name, r.min, r.name, r.max)))
		}
	}
	return errs
}

// NewChainFromConfig validates the config and builds the chain it describes.
func NewChainFromConfig(cfg *ChainConfig) (*Chain, error) {
	if err := cfg.Validate("chain"); err != nil {
		return nil, err
	}
	chain := NewChain(len(cfg.Links))
	chain.SetBasePosition(cfg.BasePosition)
	if cfg.ReferenceDirection != nil {
		chain.SetReferenceDirection(*cfg.ReferenceDirection)
	}
	for i, link := range cfg.Links {
		chain.SetLinkLength(i, link.Length)
		if link.Constraint != nil {
			chain.joints[i].Constraint = *link.Constraint
		}
		// already validated
		moveType, _ := ParseMoveType(link.MoveType)
		chain.SetJointMoveType(i, moveType)
		if link.Rotation != nil {
			chain.SetJointRotation(i, link.Rotation.Quaternion())
		}
	}
	return chain, nil
}

// Config returns the config describing the chain in its current pose.
func (c *Chain) Config(name string) *ChainConfig {
	ref := c.reference
	cfg := &ChainConfig{Name: name, BasePosition: c.base, ReferenceDirection: &ref}
	for i, l := range c.links {
		constraint := c.joints[i].Constraint
		cfg.Links = append(cfg.Links, LinkConfig{
			Length:     l.Length,
			Constraint: &constraint,
			MoveType:   c.joints[i].MoveType.String(),
			Rotation:   spatialmath.NewQuaternionConfig(c.joints[i].Rotation),
		})
	}
	return cfg
}

// UnmarshalChainJSON parses and validates a chain description.
func UnmarshalChainJSON(jsonData []byte) (*Chain, error) {
	if len(jsonData) == 0 {
		return nil, ErrNoChainInformation
	}
	cfg := &ChainConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return NewChainFromConfig(cfg)
}

// ParseChainJSONFile reads a chain description from disk.
func ParseChainJSONFile(filename string) (*Chain, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalChainJSON(jsonData)
}
