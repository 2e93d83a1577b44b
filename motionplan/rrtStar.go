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

// RRTStar is the asymptotically optimal variant of RRT. New nodes choose the
// cheapest collision-free parent among their neighborhood, and the
// neighborhood is rewired through the new node whenever that shortens its
// members' paths. The best goal-satisfying node is tracked rather than
// returned immediately, so solution cost only decreases with time.
type RRTStar[S statespace.State[S]] struct {
	*planner[S]

	maxDistance float64
	goalBias    float64

	// SearchRadius fixes the near-neighbor radius for the choose-parent
	// and rewire steps. Zero derives gamma*(log n / n)^(1/d), capped at
	// the steering step. May be set before Setup.
	SearchRadius float64

	// Gamma scales the derived neighborhood radius. Zero derives a
	// default from the steering step. May be set before Setup.
	Gamma float64

	arena     *nodeArena[S]
	nn        neighborIndex[S]
	goalNodes []int
	bestCost  float64
}

// NewRRTStar creates an RRT* planner. maxDistance is the steering step and
// goalBias the probability of sampling the goal region.
func NewRRTStar[S statespace.State[S]](maxDistance, goalBias float64, logger golog.Logger) (*RRTStar[S], error) {
	//nolint:gosec
	return NewRRTStarWithSeed[S](maxDistance, goalBias, rand.New(rand.NewSource(1)), logger)
}

// NewRRTStarWithSeed creates an RRT* planner with a user-specified random
// source, for reproducible runs.
func NewRRTStarWithSeed[S statespace.State[S]](
	maxDistance, goalBias float64,
	seed *rand.Rand,
	logger golog.Logger,
) (*RRTStar[S], error) {
	if err := validateSteering(maxDistance, goalBias); err != nil {
		return nil, err
	}
	return &RRTStar[S]{
		planner:     newPlanner[S](seed, logger),
		maxDistance: maxDistance,
		goalBias:    goalBias,
		Gamma:       maxDistance * defaultGammaMultiple,
	}, nil
}

// Setup binds the planner to a problem, clearing any prior tree. The goal
// must be sampleable for goal-biased sampling, which also provides the
// distance lower bound used for early termination.
func (mp *RRTStar[S]) Setup(pd *ProblemDefinition[S], checker StateValidityChecker[S]) error {
	if err := mp.bind(pd, checker); err != nil {
		return err
	}
	if mp.goalSampleable == nil {
		return errors.New("rrt-star requires a goal that implements GoalSampleableRegion")
	}
	mp.arena = newNodeArena[S]()
	mp.nn = newNeighborIndex[S](mp.space)
	for _, start := range pd.StartStates() {
		idx := mp.arena.addRoot(start)
		mp.nn.insert(mp.arena.state(idx), idx)
	}
	mp.goalNodes = nil
	mp.bestCost = math.Inf(1)
	return nil
}

// Solve grows and rewires the tree for the whole budget, returning the
// cheapest path to the goal seen. It returns early only when the best cost
// is within a small multiple of the straight-line lower bound.
func (mp *RRTStar[S]) Solve(ctx context.Context, timeout time.Duration) (*Path[S], error) {
	if mp.arena == nil || !mp.isSetUp() {
		return nil, ErrNotSetUp
	}
	if path := startSatisfiesGoal(mp.planner); path != nil {
		return path, nil
	}

	resolution := mp.opts.resolutionFor(mp.maxDistance)
	logIteration := int(float64(mp.opts.PlanIter) * defaultLoggingInterval)
	startTime := mp.opts.clock.Now()
	optimalCost := mp.costLowerBound()

	for i := 1; i <= mp.opts.PlanIter; i++ {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if mp.opts.clock.Since(startTime) > timeout {
			break
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

		neighbors := mp.nn.withinRadius(xNew, mp.neighborhoodRadius())

		// choose parent: cheapest collision-free connection into the tree
		parent := nearIdx
		minCost := mp.arena.cost(nearIdx) + mp.space.Distance(near, xNew)
		for _, nbrIdx := range neighbors {
			if nbrIdx == nearIdx {
				continue
			}
			nbr := mp.arena.state(nbrIdx)
			cost := mp.arena.cost(nbrIdx) + mp.space.Distance(nbr, xNew)
			if cost < minCost && mp.checkMotion(nbr, xNew, resolution) {
				minCost = cost
				parent = nbrIdx
			}
		}
		idx := mp.arena.add(xNew, parent, minCost)
		mp.nn.insert(xNew, idx)

		// rewire: shortcut any neighbor whose path improves through xNew
		for _, nbrIdx := range neighbors {
			if nbrIdx == parent {
				continue
			}
			nbr := mp.arena.state(nbrIdx)
			cost := minCost + mp.space.Distance(xNew, nbr)
			if cost < mp.arena.cost(nbrIdx) && mp.checkMotion(xNew, nbr, resolution) {
				mp.arena.reparent(nbrIdx, idx, cost)
			}
		}

		if mp.goal.IsSatisfied(xNew) {
			mp.goalNodes = append(mp.goalNodes, idx)
		}
		if best, cost := mp.bestGoalNode(); best != rootParent {
			if cost < mp.bestCost {
				mp.logger.Debugf("RRT* improved solution cost: %.4f (%d nodes)", cost, mp.arena.len())
			}
			mp.bestCost = cost
			if cost <= optimalCost*defaultOptimalityMultiple {
				return newPath(mp.arena.extractPath(best)), nil
			}
		}

		if logIteration > 0 && i%logIteration == 0 {
			mp.logger.Debugf("RRT* progress: %d%%\tbest cost: %.4f\ttree size: %d",
				100*i/mp.opts.PlanIter, mp.bestCost, mp.arena.len())
		}
	}

	if best, _ := mp.bestGoalNode(); best != rootParent {
		return newPath(mp.arena.extractPath(best)), nil
	}
	return nil, ErrGoalUnreachable
}

// neighborhoodRadius is the near-neighbor radius for this iteration, shrinking
// as the tree grows so rewiring work stays bounded.
func (mp *RRTStar[S]) neighborhoodRadius() float64 {
	if mp.SearchRadius > 0 {
		return mp.SearchRadius
	}
	n := float64(mp.arena.len())
	if n < 2 {
		return mp.maxDistance
	}
	gamma := mp.Gamma
	if gamma <= 0 {
		gamma = mp.maxDistance * defaultGammaMultiple
	}
	d := float64(mp.space.Dimension())
	r := gamma * math.Pow(math.Log(n)/n, 1/d)
	return math.Min(r, mp.maxDistance)
}

// bestGoalNode returns the cheapest goal-satisfying node, or rootParent when
// none has been found. Rewiring can cheapen previously recorded goal nodes,
// so costs are re-read every call.
func (mp *RRTStar[S]) bestGoalNode() (int, float64) {
	best := rootParent
	bestCost := math.Inf(1)
	for _, idx := range mp.goalNodes {
		if cost := mp.arena.cost(idx); cost < bestCost {
			bestCost = cost
			best = idx
		}
	}
	return best, bestCost
}

// costLowerBound is the straight-line distance from the nearest start to the
// goal region, an unbeatable cost for any solution.
func (mp *RRTStar[S]) costLowerBound() float64 {
	bound := math.Inf(1)
	for _, start := range mp.pd.StartStates() {
		if d := mp.goalRegion.DistanceToGoal(start); d < bound {
			bound = d
		}
	}
	return bound
}
