package armunit

import (
	"context"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/masiro/armik/kinematics"
	"github.com/masiro/armik/utils"
)

// SolveResult is the outcome of one arm's solve.
type SolveResult struct {
	Rotations ArmRotations
	Status    kinematics.Status
	Hand      r3.Vector
}

// SolveBoth solves each manager toward its goal in parallel. Managers must not share chains.
// A side present in goals but missing from managers is an error; the other sides are still solved.
func SolveBoth(
	ctx context.Context,
	managers map[Side]*IKManager,
	goals map[Side]r3.Vector,
) (map[Side]SolveResult, error) {
	var (
		errs      error
		resultsMu sync.Mutex
		fs        []utils.SimpleFunc
	)
	results := make(map[Side]SolveResult, len(goals))
	for _, side := range Sides {
		goal, ok := goals[side]
		if !ok {
			continue
		}
		m, ok := managers[side]
		if !ok || m == nil {
			errs = multierr.Append(errs, errors.Errorf("no ik manager for %s arm", side))
			continue
		}
		side := side
		fs = append(fs, func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return errors.Wrapf(err, "%s arm not solved", side)
			}
			rotations, status := m.Solve(goal)
			hand := m.HandPosition()
			resultsMu.Lock()
			defer resultsMu.Unlock()
			results[side] = SolveResult{Rotations: rotations, Status: status, Hand: hand}
			return nil
		})
	}
	if _, err := utils.RunInParallel(ctx, fs); err != nil {
		errs = multierr.Append(errs, err)
	}
	return results, errs
}
