package motionplan

import (
	"context"
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/arcbotics/motionplan/statespace"
)

// extendResult is the outcome of one steered extension of a tree.
type extendResult int

const (
	// trapped: the steered motion collided, no node was added.
	trapped extendResult = iota
	// advanced: a node was added short of the target.
	advanced
	// reached: a node was added at the target, within state equality.
	reached
)

// rrtTree pairs a node arena with its neighbor index. RRT-Connect grows two
// of these, one rooted at the start states and one at a sampled goal.
type rrtTree[S statespace.State[S]] struct {
	arena *nodeArena[S]
	nn    neighborIndex[S]
}

func newRRTTree[S statespace.State[S]](space statespace.StateSpace[S]) *rrtTree[S] {
	return &rrtTree[S]{arena: newNodeArena[S](), nn: newNeighborIndex[S](space)}
}

func (t *rrtTree[S]) addRoot(state S) {
	idx := t.arena.addRoot(state)
	t.nn.insert(t.arena.state(idx), idx)
}

// RRTConnect is the bidirectional RRT planner: trees grown from the start and
// from a sampled goal state are greedily connected to each other, swapping
// roles every iteration to balance growth. Usually much faster than RRT in
// open spaces.
type RRTConnect[S statespace.State[S]] struct {
	*planner[S]

	maxDistance float64
	// goalBias is retained for API symmetry with RRT and is advisory: the
	// search does not read it. The goal tree is always rooted at a state
	// sampled from the goal region.
	goalBias float64

	startTree *rrtTree[S]
	goalTree  *rrtTree[S]
}

// NewRRTConnect creates an RRT-Connect planner. maxDistance is the steering
// step; goalBias is accepted for API symmetry with RRT.
func NewRRTConnect[S statespace.State[S]](maxDistance, goalBias float64, logger golog.Logger) (*RRTConnect[S], error) {
	//nolint:gosec
	return NewRRTConnectWithSeed[S](maxDistance, goalBias, rand.New(rand.NewSource(1)), logger)
}

// NewRRTConnectWithSeed creates an RRT-Connect planner with a user-specified
// random source, for reproducible runs.
func NewRRTConnectWithSeed[S statespace.State[S]](
	maxDistance, goalBias float64,
	seed *rand.Rand,
	logger golog.Logger,
) (*RRTConnect[S], error) {
	if err := validateSteering(maxDistance, goalBias); err != nil {
		return nil, err
	}
	return &RRTConnect[S]{
		planner:     newPlanner[S](seed, logger),
		maxDistance: maxDistance,
		goalBias:    goalBias,
	}, nil
}

// Setup binds the planner to a problem, clearing both trees. The start tree
// is rooted at the problem's start states and the goal tree at a state drawn
// from the goal region, so the goal must be sampleable.
func (mp *RRTConnect[S]) Setup(pd *ProblemDefinition[S], checker StateValidityChecker[S]) error {
	if err := mp.bind(pd, checker); err != nil {
		return err
	}
	if mp.goalSampleable == nil {
		return errors.New("rrt-connect requires a goal that implements GoalSampleableRegion")
	}

	mp.startTree = newRRTTree[S](mp.space)
	for _, start := range pd.StartStates() {
		mp.startTree.addRoot(start)
	}

	mp.goalTree = newRRTTree[S](mp.space)
	root, err := mp.sampleGoalRoot()
	if err != nil {
		return err
	}
	mp.goalTree.addRoot(root)
	return nil
}

// sampleGoalRoot draws a goal-region state to root the goal tree, retrying
// past samples that fail the goal test or the validity check.
func (mp *RRTConnect[S]) sampleGoalRoot() (S, error) {
	var zero S
	var lastErr error
	for i := 0; i < mp.opts.SamplingAttempts; i++ {
		s, err := mp.goalSampleable.SampleGoal(mp.randseed)
		if err != nil {
			lastErr = err
			continue
		}
		if mp.goal.IsSatisfied(s) && mp.checker.IsValid(s) {
			return s, nil
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no valid goal state found")
	}
	return zero, NewStateSamplingError(mp.opts.SamplingAttempts, lastErr)
}

// Solve alternates growing the two trees toward random samples and greedily
// connecting the other tree to each new node, until the trees meet or the
// budget runs out.
func (mp *RRTConnect[S]) Solve(ctx context.Context, timeout time.Duration) (*Path[S], error) {
	if mp.startTree == nil || !mp.isSetUp() {
		return nil, ErrNotSetUp
	}
	if path := startSatisfiesGoal(mp.planner); path != nil {
		return path, nil
	}

	resolution := mp.opts.resolutionFor(mp.maxDistance)
	logIteration := int(float64(mp.opts.PlanIter) * defaultLoggingInterval)
	startTime := mp.opts.clock.Now()

	treeA, treeB := mp.startTree, mp.goalTree
	for i := 1; i <= mp.opts.PlanIter; i++ {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if mp.opts.clock.Since(startTime) > timeout {
			return nil, ErrGoalUnreachable
		}

		target, err := mp.sampleTarget(0)
		if errors.Is(err, errSkipIteration) {
			continue
		} else if err != nil {
			return nil, err
		}

		result, aIdx := mp.extend(treeA, target, resolution)
		if result != trapped {
			xNew := treeA.arena.state(aIdx)

			// the start tree can reach the goal on its own
			if treeA == mp.startTree && mp.goal.IsSatisfied(xNew) {
				mp.logger.Debugf("RRT-Connect start tree reached the goal directly")
				return newPath(treeA.arena.extractPath(aIdx)), nil
			}

			if connectResult, bIdx := mp.connect(treeB, xNew, resolution); connectResult == reached {
				if path := mp.mergePaths(treeA, aIdx, treeB, bIdx); path != nil {
					mp.logger.Debugf("RRT-Connect solution found with %d total nodes",
						mp.startTree.arena.len()+mp.goalTree.arena.len())
					return path, nil
				}
			}
		}

		treeA, treeB = treeB, treeA

		if logIteration > 0 && i%logIteration == 0 {
			mp.logger.Debugf("RRT-Connect progress: %d%%\ttree sizes: %d/%d",
				100*i/mp.opts.PlanIter, mp.startTree.arena.len(), mp.goalTree.arena.len())
		}
	}
	return nil, ErrGoalUnreachable
}

// extend grows a tree one steered, collision-checked step toward the target.
func (mp *RRTConnect[S]) extend(tree *rrtTree[S], target S, resolution float64) (extendResult, int) {
	nearIdx, dist := tree.nn.nearest(target)
	near := tree.arena.state(nearIdx)
	xNew := steer(mp.space, near, target, dist, mp.maxDistance)

	if !mp.checkMotion(near, xNew, resolution) {
		return trapped, rootParent
	}

	idx := tree.arena.add(xNew, nearIdx, tree.arena.cost(nearIdx)+mp.space.Distance(near, xNew))
	tree.nn.insert(xNew, idx)

	if mp.space.EqualStates(xNew, target) {
		return reached, idx
	}
	return advanced, idx
}

// connect repeatedly extends a tree toward the target until it reaches it or
// collides. Each advance moves a full steering step closer, so the walk is
// bounded by the initial separation.
func (mp *RRTConnect[S]) connect(tree *rrtTree[S], target S, resolution float64) (extendResult, int) {
	nearIdx, dist := tree.nn.nearest(target)
	maxSteps := int(dist/mp.maxDistance) + 2
	result, idx := advanced, nearIdx
	for step := 0; step < maxSteps && result == advanced; step++ {
		result, idx = mp.extend(tree, target, resolution)
	}
	return result, idx
}

// mergePaths joins the two trees' walks at the meeting point into a single
// start-to-goal path, verifying the goal tree's root still satisfies the
// goal. Returns nil when it does not, and the search continues.
func (mp *RRTConnect[S]) mergePaths(treeA *rrtTree[S], aIdx int, treeB *rrtTree[S], bIdx int) *Path[S] {
	startTree, startIdx := treeA, aIdx
	goalTree, goalIdx := treeB, bIdx
	if treeA != mp.startTree {
		startTree, startIdx = treeB, bIdx
		goalTree, goalIdx = treeA, aIdx
	}

	states := startTree.arena.extractPath(startIdx)

	// the goal tree's walk is root-first; reverse it and drop the
	// duplicated meeting state
	goalStates := goalTree.arena.extractPath(goalIdx)
	for i, j := 0, len(goalStates)-1; i < j; i, j = i+1, j-1 {
		goalStates[i], goalStates[j] = goalStates[j], goalStates[i]
	}
	if len(goalStates) > 0 && mp.space.EqualStates(states[len(states)-1], goalStates[0]) {
		goalStates = goalStates[1:]
	}
	states = append(states, goalStates...)

	if !mp.goal.IsSatisfied(states[len(states)-1]) {
		return nil
	}
	return newPath(states)
}
