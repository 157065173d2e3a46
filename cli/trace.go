package cli

import (
	"fmt"
	"math"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/masiro/armik/kinematics"
)

const rateHistogramBins = 8

// TraceAction solves toward a goal and prints the diagnostics of every outer step.
func TraceAction(c *cli.Context) error {
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
	ik, name, err := ac.solver()
	if err != nil {
		return err
	}
	ik.SetGoal(goal)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Call", "Step", "Rotated Distance", "Angle Norm", "Rate", "Inner", "Rolled Back"})
	distances := []float64{ik.DistanceToGoal()}
	var rates []float64
	for i := 0; i < c.Int(ikFlagIterations); i++ {
		status := ik.Solve()
		diag := ik.Diagnostics()
		for j, step := range diag.Steps {
			t.AppendRow(table.Row{
				i + 1,
				j + 1,
				fmt.Sprintf("%.6g", step.RotatedDistance),
				fmt.Sprintf("%.6g", step.RotatedAngleNorm),
				formatRate(step.Rate),
				step.InnerIterations,
				step.RolledBack,
			})
			if !math.IsInf(step.Rate, 0) {
				rates = append(rates, step.Rate)
			}
		}
		distances = append(distances, diag.FinalDistance)
		t.AppendSeparator()
		if status == kinematics.StatusAtGoal {
			break
		}
	}
	printf(c.App.Writer, "%s goal %s", name, formatVector(ik.Goal()))
	printf(c.App.Writer, "%s", t.Render())

	if len(rates) > 0 {
		printf(c.App.Writer, "rate per degree of joint rotation (singular limit %.6g)", ik.SingularPointLimit())
		hist := histogram.Hist(rateHistogramBins, rates)
		if err := histogram.Fprint(c.App.Writer, hist, histogram.Linear(40)); err != nil {
			return err
		}
		summary, err := summarizeRates(rates)
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", summary)
	}

	if path := c.Path(traceFlagPlot); path != "" {
		if err := saveDistancePlot(path, distances, ik.MinCalculateLength()); err != nil {
			return err
		}
		printf(c.App.Writer, "saved %s", path)
	}
	return nil
}

func summarizeRates(rates []float64) (string, error) {
	lowest, err := stats.Min(rates)
	if err != nil {
		return "", err
	}
	median, err := stats.Median(rates)
	if err != nil {
		return "", err
	}
	mean, err := stats.Mean(rates)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rate min %.6g median %.6g mean %.6g over %d steps", lowest, median, mean, len(rates)), nil
}

// saveDistancePlot draws the distance to the goal after each solve call, with the convergence
// threshold as a horizontal line.
func saveDistancePlot(path string, distances []float64, threshold float64) error {
	p := plot.New()
	p.Title.Text = "distance to goal"
	p.X.Label.Text = "solve call"
	p.Y.Label.Text = "distance"

	pts := make(plotter.XYs, len(distances))
	limit := make(plotter.XYs, len(distances))
	for i, d := range distances {
		pts[i].X = float64(i)
		pts[i].Y = d
		limit[i].X = float64(i)
		limit[i].Y = threshold
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "cannot plot distances")
	}
	thresholdLine, err := plotter.NewLine(limit)
	if err != nil {
		return errors.Wrap(err, "cannot plot threshold")
	}
	thresholdLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(plotter.NewGrid(), line, points, thresholdLine)
	p.Legend.Add("distance", line, points)
	p.Legend.Add("threshold", thresholdLine)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
