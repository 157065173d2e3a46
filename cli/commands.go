package cli

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/masiro/armik/armunit"
	"github.com/masiro/armik/config"
	"github.com/masiro/armik/kinematics"
)

// FKAction prints the joints of the chain in its current pose.
func FKAction(c *cli.Context) error {
	ac, err := newArmikContext(c)
	if err != nil {
		return err
	}
	defer func() {
		goutils.UncheckedError(ac.Close())
	}()
	ik, name, err := ac.solver()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", name)
	printf(c.App.Writer, "%s", jointTable(ik.Chain()))
	return nil
}

// SolveAction runs the solver toward a goal and prints the distance after every call.
func SolveAction(c *cli.Context) error {
	ac, err := newArmikContext(c)
	if err != nil {
		return err
	}
	defer func() {
		goutils.UncheckedError(ac.Close())
	}()
	goal, err := parseVector(c, ikFlagGoal)
	if err != nil {
		return err
	}
	if c.Bool(ikFlagBoth) {
		return solveBoth(ac, goal)
	}
	ik, name, err := ac.solver()
	if err != nil {
		return err
	}
	ik.SetGoal(goal)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Call", "Status", "Outer Steps", "Inner Iterations", "Distance"})
	for i := 0; i < c.Int(ikFlagIterations); i++ {
		status := ik.Solve()
		diag := ik.Diagnostics()
		t.AppendRow(table.Row{
			i + 1,
			status,
			diag.OuterSteps,
			diag.TotalInnerIterations(),
			fmt.Sprintf("%.6f", diag.FinalDistance),
		})
		if status == kinematics.StatusAtGoal {
			break
		}
	}
	printf(c.App.Writer, "%s goal %s", name, formatVector(ik.Goal()))
	printf(c.App.Writer, "%s", t.Render())
	printf(c.App.Writer, "%s", jointTable(ik.Chain()))
	return nil
}

func solveBoth(ac *armikContext, goal r3.Vector) error {
	c := ac.c
	managers, err := ac.cfg.NewIKManagers(ac.logger)
	if err != nil {
		return err
	}
	other := r3.Vector{X: goal.X, Y: -goal.Y, Z: goal.Z}
	if c.IsSet(ikFlagGoalOther) {
		if other, err = parseVector(c, ikFlagGoalOther); err != nil {
			return err
		}
	}
	side := ac.cfg.Side()
	goals := map[armunit.Side]r3.Vector{side: goal, side.Opposite(): other}

	var results map[armunit.Side]armunit.SolveResult
	for i := 0; i < c.Int(ikFlagIterations); i++ {
		if results, err = armunit.SolveBoth(c.Context, managers, goals); err != nil {
			return err
		}
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Side", "Status", "Hand", "Distance", "Upper (r, p, y)", "Lower (r, p, y)"})
	for _, s := range armunit.Sides {
		res := results[s]
		local := res.Rotations.SkeletonLocal()
		t.AppendRow(table.Row{
			s,
			res.Status,
			formatVector(res.Hand),
			fmt.Sprintf("%.6f", res.Hand.Sub(goals[s]).Norm()),
			formatEuler(local.Upper),
			formatEuler(local.Lower),
		})
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// SchemaAction prints the JSON schema of the config file.
func SchemaAction(c *cli.Context) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", data)
	return nil
}

func jointTable(chain *kinematics.Chain) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Position", "Length", "Move Type", "Rotation (r, p, y)", "Limits"})
	positions := chain.JointPositions()
	for i := 0; i < chain.NumJoints(); i++ {
		c := chain.JointConstraint(i)
		t.AppendRow(table.Row{
			i,
			formatVector(positions[i]),
			chain.LinkLength(i),
			chain.JointMoveType(i),
			formatEuler(chain.JointRotation(i)),
			fmt.Sprintf("R:[%g, %g] P:[%g, %g] Y:[%g, %g]",
				c.RollMin, c.RollMax, c.PitchMin, c.PitchMax, c.YawMin, c.YawMax),
		})
	}
	t.AppendFooter(table.Row{"end", formatVector(positions[len(positions)-1]), chain.TotalLength()})
	return t.Render()
}
