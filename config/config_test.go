package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/masiro/armik/armunit"
	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/logging"
	"github.com/masiro/armik/utils"
)

func TestReadFile(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg, err := Read("testdata/armik.json", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "testdata/armik.json")
	test.That(t, cfg.Level(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.Side(), test.ShouldEqual, armunit.SideLeft)

	left := cfg.Arms[armunit.SideLeft]
	test.That(t, left.Pose, test.ShouldEqual, armunit.PoseCatering)
	test.That(t, left.UpperArmPosition, test.ShouldResemble, r3.Vector{Y: 0.1, Z: 1.2})
	// the missing arm gets the default
	test.That(t, cfg.Arms[armunit.SideRight], test.ShouldResemble, armunit.DefaultArmConfig(armunit.SideRight))

	test.That(t, cfg.SolverOptions(), test.ShouldHaveLength, 2)
	m, err := cfg.NewIKManager(logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Side(), test.ShouldEqual, armunit.SideLeft)
	avg := (armunit.UpperArmLength + armunit.LowerArmLength) / 2
	test.That(t, m.Solver().MaxMoveLength(), test.ShouldAlmostEqual, avg*0.2)
}

func TestReadFileExpandsEnv(t *testing.T) {
	t.Setenv("ARMIK_TEST_SHOULDER_Y", "0.15")
	cfg, err := Read("testdata/armik.json", logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Arms[armunit.SideLeft].UpperArmPosition.Y, test.ShouldEqual, 0.15)
}

func TestReadErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := Read("testdata/missing.json", logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read config file")

	_, err = FromReader("", strings.NewReader(`{"log_level": 3}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode Config from json")

	_, err = FromReader("", strings.NewReader(`{"hand_side": "left"}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "hand_side")
}

func TestEnsureCollectsErrors(t *testing.T) {
	cfg := &Config{
		LogLevel:        "loud",
		HandHoldingSide: "middle",
		Solver:          utils.AttributeMap{"link_move_rate": -1.0},
		Arms: map[armunit.Side]*armunit.ArmConfig{
			"up":             armunit.DefaultArmConfig(armunit.SideRight),
			armunit.SideLeft: {UpperArmLength: 1},
		},
	}
	err := cfg.Ensure()
	test.That(t, err, test.ShouldNotBeNil)
	for _, want := range []string{
		`unknown log level: "loud"`,
		`unknown arm side "middle"`,
		"link_move_rate must not be negative",
		`unknown arm side "up"`,
		"arms.left",
	} {
		test.That(t, err.Error(), test.ShouldContainSubstring, want)
	}
}

func TestEnsureDefaults(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Side(), test.ShouldEqual, armunit.SideRight)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)
	test.That(t, cfg.SolverOptions(), test.ShouldBeEmpty)
	test.That(t, cfg.Arms, test.ShouldHaveLength, 2)

	managers, err := cfg.NewIKManagers(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, managers[armunit.SideRight].Side(), test.ShouldEqual, armunit.SideRight)
	test.That(t, managers[armunit.SideLeft].Side(), test.ShouldEqual, armunit.SideLeft)
}

func TestDecodeSolverAttributes(t *testing.T) {
	conf, err := DecodeSolverAttributes(utils.AttributeMap{
		"link_move_rate":       0.05,
		"singular_base":        1e-3,
		"max_inner_iterations": 80.0,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &SolverConfig{
		LinkMoveRate:       0.05,
		SingularBase:       1e-3,
		MaxInnerIterations: 80,
	})
	test.That(t, conf.Validate("solver"), test.ShouldBeNil)

	chain := kinematics.NewChain(2)
	ik := kinematics.NewStepIK(chain, logging.NewTestLogger(t), conf.Options()...)
	test.That(t, ik.MaxMoveLength(), test.ShouldAlmostEqual, 0.05)
	test.That(t, ik.SingularPointLimit(), test.ShouldAlmostEqual, 1e-3)

	_, err = DecodeSolverAttributes(utils.AttributeMap{"link_rate": 0.1, "bogus": true})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown solver attributes ["bogus" "link_rate"]`)

	_, err = DecodeSolverAttributes(utils.AttributeMap{"link_move_rate": "fast"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to decode solver attributes")
}

func TestSchema(t *testing.T) {
	schema := Schema()
	test.That(t, schema.Title, test.ShouldEqual, "armik config")
	data, err := json.Marshal(schema)
	test.That(t, err, test.ShouldBeNil)
	for _, want := range []string{`"hand_holding_side"`, `"log_level"`, `"arms"`, `"solver"`, `"lower_arm_limit"`} {
		test.That(t, string(data), test.ShouldContainSubstring, want)
	}
	test.That(t, string(data), test.ShouldNotContainSubstring, "ConfigFilePath")
}
