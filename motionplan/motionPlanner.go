// Package motionplan is a sampling-based motion planning library. Planners
// search a state space for a collision-free path from a start configuration
// to a goal region, with geometry, validity and goal conditions supplied
// through the statespace, StateValidityChecker and Goal abstractions.
package motionplan

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/arcbotics/motionplan/statespace"
)

// Planner is the contract every planning algorithm exposes. Construction is
// pure and attaches no problem; Setup binds the planner to a problem and
// validity checker, clearing any prior search state; Solve runs until a
// solution is found or the timeout elapses.
type Planner[S statespace.State[S]] interface {
	// Setup binds the planner to a problem. Every start state must be
	// in-bounds and valid; otherwise Setup fails with ErrInvalidStart.
	Setup(pd *ProblemDefinition[S], checker StateValidityChecker[S]) error

	// Solve attempts to find a path. It is interruptible through ctx and
	// returns ErrGoalUnreachable when the timeout or iteration budget is
	// exhausted. No partial results are returned on error.
	Solve(ctx context.Context, timeout time.Duration) (*Path[S], error)
}

// planner carries the state shared by the RRT-family planners and PRM: the
// bound problem, capability-checked goal views, and sampling plumbing.
type planner[S statespace.State[S]] struct {
	logger   golog.Logger
	randseed *rand.Rand
	opts     *plannerOptions

	pd      *ProblemDefinition[S]
	space   statespace.StateSpace[S]
	checker StateValidityChecker[S]
	goal    Goal[S]
	// non-nil when the goal supports the corresponding capability
	goalRegion     GoalRegion[S]
	goalSampleable GoalSampleableRegion[S]

	// consecutive sampler failures, reset on success
	samplingFailures int
}

func newPlanner[S statespace.State[S]](seed *rand.Rand, logger golog.Logger) *planner[S] {
	return &planner[S]{
		logger:   logger,
		randseed: seed,
		opts:     newBasicPlannerOptions(),
	}
}

// bind stores the problem and resolves the goal's capabilities once, keeping
// type assertions out of the solve loop.
func (mp *planner[S]) bind(pd *ProblemDefinition[S], checker StateValidityChecker[S]) error {
	if pd == nil {
		return ErrNotSetUp
	}
	if checker == nil {
		checker = AllStatesValid[S]()
	}
	mp.pd = pd
	mp.space = pd.Space()
	mp.checker = checker
	mp.goal = pd.Goal()
	mp.goalRegion, _ = mp.goal.(GoalRegion[S])
	mp.goalSampleable, _ = mp.goal.(GoalSampleableRegion[S])
	mp.samplingFailures = 0
	return mp.validateStarts()
}

// validateStarts confirms every start state is in-bounds and valid.
func (mp *planner[S]) validateStarts() error {
	for i, start := range mp.pd.StartStates() {
		if !mp.space.SatisfiesBounds(start) {
			return NewInvalidStartError(errors.Errorf("start state %d is out of bounds", i))
		}
		if !mp.checker.IsValid(start) {
			return NewInvalidStartError(errors.Errorf("start state %d failed the validity check", i))
		}
	}
	return nil
}

func (mp *planner[S]) isSetUp() bool {
	return mp.pd != nil
}

// sampleTarget draws the next exploration target: the goal region with
// probability goalBias when the goal is sampleable, the whole space
// otherwise. Transient sampler failures are skipped and logged; a run of
// opts.SamplingAttempts consecutive failures escalates to ErrStateSampling.
func (mp *planner[S]) sampleTarget(goalBias float64) (S, error) {
	var zero S
	var s S
	var err error
	if mp.goalSampleable != nil && mp.randseed.Float64() < goalBias {
		s, err = mp.goalSampleable.SampleGoal(mp.randseed)
	} else {
		s, err = mp.space.SampleUniform(mp.randseed)
	}
	if err != nil {
		mp.samplingFailures++
		if mp.samplingFailures >= mp.opts.SamplingAttempts {
			return zero, NewStateSamplingError(mp.samplingFailures, err)
		}
		mp.logger.Debugw("sampler failed, skipping iteration", "error", err)
		return zero, errSkipIteration
	}
	mp.samplingFailures = 0
	return s, nil
}

// checkMotion reports whether the motion between two states is collision-free
// by checking interior states at the given resolution, plus the endpoint.
// The starting state is assumed already valid.
func (mp *planner[S]) checkMotion(from, to S, resolution float64) bool {
	if resolution <= 0 {
		resolution = mp.space.LongestValidSegmentLength()
	}
	dist := mp.space.Distance(from, to)
	steps := int(math.Ceil(dist / resolution))
	if steps <= 1 {
		return mp.checker.IsValid(to)
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if !mp.checker.IsValid(mp.space.Interpolate(from, to, t)) {
			return false
		}
	}
	return true
}

// checkContext reports a cancellation error if ctx is done.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
