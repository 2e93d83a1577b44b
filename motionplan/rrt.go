package motionplan

import (
	"context"
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/arcbotics/motionplan/statespace"
)

// RRT is the Rapidly-exploring Random Tree planner: a single tree grown from
// the start states by steering toward random samples, with goal-biased
// sampling. Probabilistically complete, not optimal.
type RRT[S statespace.State[S]] struct {
	*planner[S]

	maxDistance float64
	goalBias    float64

	arena *nodeArena[S]
	nn    neighborIndex[S]
}

// NewRRT creates an RRT planner. maxDistance is the steering step and must be
// positive; goalBias is the probability of sampling the goal region instead
// of the whole space and must be in [0, 1].
func NewRRT[S statespace.State[S]](maxDistance, goalBias float64, logger golog.Logger) (*RRT[S], error) {
	//nolint:gosec
	return NewRRTWithSeed[S](maxDistance, goalBias, rand.New(rand.NewSource(1)), logger)
}

// NewRRTWithSeed creates an RRT planner with a user-specified random source,
// for reproducible runs.
func NewRRTWithSeed[S statespace.State[S]](
	maxDistance, goalBias float64,
	seed *rand.Rand,
	logger golog.Logger,
) (*RRT[S], error) {
	if err := validateSteering(maxDistance, goalBias); err != nil {
		return nil, err
	}
	return &RRT[S]{
		planner:     newPlanner[S](seed, logger),
		maxDistance: maxDistance,
		goalBias:    goalBias,
	}, nil
}

// Setup binds the planner to a problem, clearing any prior tree. The goal
// must be sampleable so the planner can bias its sampling toward it.
func (mp *RRT[S]) Setup(pd *ProblemDefinition[S], checker StateValidityChecker[S]) error {
	if err := mp.bind(pd, checker); err != nil {
		return err
	}
	if mp.goalSampleable == nil {
		return errors.New("rrt requires a goal that implements GoalSampleableRegion")
	}
	mp.arena = newNodeArena[S]()
	mp.nn = newNeighborIndex[S](mp.space)
	for _, start := range pd.StartStates() {
		idx := mp.arena.addRoot(start)
		mp.nn.insert(mp.arena.state(idx), idx)
	}
	return nil
}

// Solve grows the tree until a node satisfies the goal, the timeout elapses,
// or the iteration budget runs out.
func (mp *RRT[S]) Solve(ctx context.Context, timeout time.Duration) (*Path[S], error) {
	if mp.arena == nil || !mp.isSetUp() {
		return nil, ErrNotSetUp
	}
	if path := startSatisfiesGoal(mp.planner); path != nil {
		return path, nil
	}

	resolution := mp.opts.resolutionFor(mp.maxDistance)
	logIteration := int(float64(mp.opts.PlanIter) * defaultLoggingInterval)
	startTime := mp.opts.clock.Now()

	for i := 1; i <= mp.opts.PlanIter; i++ {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if mp.opts.clock.Since(startTime) > timeout {
			return nil, ErrGoalUnreachable
		}

		target, err := mp.sampleTarget(mp.goalBias)
		if errors.Is(err, errSkipIteration) {
			continue
		} else if err != nil {
			return nil, err
		}

		nearIdx, dist := mp.nn.nearest(target)
		near := mp.arena.state(nearIdx)
		xNew := steer(mp.space, near, target, dist, mp.maxDistance)

		if !mp.checkMotion(near, xNew, resolution) {
			continue
		}

		idx := mp.arena.add(xNew, nearIdx, mp.arena.cost(nearIdx)+mp.space.Distance(near, xNew))
		mp.nn.insert(xNew, idx)

		if mp.goal.IsSatisfied(xNew) {
			mp.logger.Debugf("RRT solution found with %d nodes", mp.arena.len())
			return newPath(mp.arena.extractPath(idx)), nil
		}

		if logIteration > 0 && i%logIteration == 0 {
			mp.logger.Debugf("RRT progress: %d%%\ttree size: %d", 100*i/mp.opts.PlanIter, mp.arena.len())
		}
	}
	return nil, ErrGoalUnreachable
}

// steer returns the target itself when it is within maxDistance of near, and
// otherwise the state maxDistance along the geodesic from near to target.
func steer[S statespace.State[S]](
	space statespace.StateSpace[S],
	near, target S,
	dist, maxDistance float64,
) S {
	if dist <= maxDistance {
		return target
	}
	return space.Interpolate(near, target, maxDistance/dist)
}

// startSatisfiesGoal returns a single-state path when a declared start is
// already inside the goal region.
func startSatisfiesGoal[S statespace.State[S]](mp *planner[S]) *Path[S] {
	for _, start := range mp.pd.StartStates() {
		if mp.goal.IsSatisfied(start) {
			return newPath([]S{start})
		}
	}
	return nil
}

// validateSteering checks the parameters shared by the RRT family.
func validateSteering(maxDistance, goalBias float64) error {
	if maxDistance <= 0 {
		return errors.Errorf("steering step must be positive, got %f", maxDistance)
	}
	if goalBias < 0 || goalBias > 1 {
		return errors.Errorf("goal bias must be in [0, 1], got %f", goalBias)
	}
	return nil
}
