// Package cli contains all the logic for the armik command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/masiro/armik/config"
	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/logging"
)

const (
	// Flags.
	generalFlagConfig  = "config"
	generalFlagDebug   = "debug"
	generalFlagSide    = "side"
	generalFlagLogFile = "log-file"

	ikFlagChain      = "chain"
	ikFlagGoal       = "goal"
	ikFlagIterations = "iterations"
	ikFlagBoth       = "both"
	ikFlagGoalOther  = "other-goal"
	traceFlagPlot    = "plot"

	defaultIterations = 10
)

// NewApp returns the armik app writing to the given writers.
func NewApp(out, errOut io.Writer) *cli.App {
	chainFlag := &cli.PathFlag{
		Name:      ikFlagChain,
		TakesFile: true,
		Usage:     "solve the chain described in `FILE` instead of the configured arm",
	}
	goalFlag := &cli.Float64SliceFlag{
		Name:     ikFlagGoal,
		Required: true,
		Usage:    "goal position as x,y,z",
	}
	iterationsFlag := &cli.IntFlag{
		Name:  ikFlagIterations,
		Value: defaultIterations,
		Usage: "number of solve calls",
	}

	return &cli.App{
		Name:      "armik",
		Usage:     "inverse kinematics for the robot's two link arms",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:      generalFlagConfig,
				Aliases:   []string{"c"},
				TakesFile: true,
				Usage:     "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  generalFlagDebug,
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  generalFlagSide,
				Usage: "hand holding side, right or left",
			},
			&cli.PathFlag{
				Name:      generalFlagLogFile,
				TakesFile: true,
				Usage:     "also write logs to `FILE`, rotated by size",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "fk",
				Usage:  "print the joint positions of the current pose",
				Flags:  []cli.Flag{chainFlag},
				Action: FKAction,
			},
			{
				Name:  "solve",
				Usage: "move the hand toward a goal",
				Flags: []cli.Flag{
					chainFlag, goalFlag, iterationsFlag,
					&cli.BoolFlag{
						Name:  ikFlagBoth,
						Usage: "solve both arms in parallel",
					},
					&cli.Float64SliceFlag{
						Name:  ikFlagGoalOther,
						Usage: "goal of the other arm as x,y,z when solving both; defaults to the mirrored goal",
					},
				},
				Action: SolveAction,
			},
			{
				Name:  "trace",
				Usage: "print every outer step of each solve call",
				Flags: []cli.Flag{
					chainFlag, goalFlag, iterationsFlag,
					&cli.PathFlag{
						Name:      traceFlagPlot,
						TakesFile: true,
						Usage:     "save a plot of the distance to the goal to `FILE`",
					},
				},
				Action: TraceAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: SchemaAction,
			},
		},
	}
}

// armikContext bundles what every command needs. Close it when the command is done.
type armikContext struct {
	c       *cli.Context
	cfg     *config.Config
	logger  logging.Logger
	logFile *logging.FileAppender
}

func newArmikContext(c *cli.Context) (*armikContext, error) {
	level := logging.WARN
	if c.Bool(generalFlagDebug) {
		level = logging.DEBUG
	}
	logger := logging.NewWriterLogger("armik", level, c.App.ErrWriter)
	ac := &armikContext{c: c, logger: logger}
	if path := c.Path(generalFlagLogFile); path != "" {
		ac.logFile = logging.NewFileAppender(path)
		logger.AddAppender(ac.logFile)
	}

	ac.cfg = config.Default()
	if path := c.Path(generalFlagConfig); path != "" {
		cfg, err := config.Read(path, logger)
		if err != nil {
			return nil, multierr.Combine(err, ac.Close())
		}
		ac.cfg = cfg
		if !c.Bool(generalFlagDebug) {
			logger.SetLevel(cfg.Level())
		}
	}
	if side := c.String(generalFlagSide); side != "" {
		ac.cfg.HandHoldingSide = side
		if err := ac.cfg.Ensure(); err != nil {
			return nil, multierr.Combine(err, ac.Close())
		}
	}
	return ac, nil
}

// Close flushes the logger and closes the log file, if any.
func (ac *armikContext) Close() error {
	err := ac.logger.Sync()
	if ac.logFile != nil {
		err = multierr.Combine(err, ac.logFile.Close())
	}
	return err
}

// solver returns the solver of the chain file if given, otherwise of the hand-holding arm.
func (ac *armikContext) solver() (*kinematics.StepIK, string, error) {
	if path := ac.c.Path(ikFlagChain); path != "" {
		chain, err := kinematics.ParseChainJSONFile(path)
		if err != nil {
			return nil, "", err
		}
		return kinematics.NewStepIK(chain, ac.logger, ac.cfg.SolverOptions()...), path, nil
	}
	m, err := ac.cfg.NewIKManager(ac.logger)
	if err != nil {
		return nil, "", err
	}
	return m.Solver(), fmt.Sprintf("%s arm", m.Side()), nil
}

func parseVector(c *cli.Context, name string) (r3.Vector, error) {
	v := c.Float64Slice(name)
	if len(v) != 3 {
		return r3.Vector{}, errors.Errorf("--%s needs 3 values x,y,z, got %d", name, len(v))
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}
