package motionplan

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/arcbotics/motionplan/statespace"
)

// PRM is the Probabilistic Roadmap planner. A build phase samples valid
// milestones and connects nearby pairs with collision-checked edges into an
// undirected graph; queries insert the start and goal as temporary nodes and
// run a shortest-path search. The roadmap persists across queries, so PRM
// amortizes its construction cost over many start/goal pairs in the same
// scene.
type PRM[S statespace.State[S]] struct {
	*planner[S]

	numSamples       int
	connectionRadius float64

	roadmap    *simple.WeightedUndirectedGraph
	milestones []S
	nn         neighborIndex[S]
}

// NewPRM creates a PRM planner. numSamples states are drawn per build phase;
// milestones within connectionRadius of each other are candidate edges.
func NewPRM[S statespace.State[S]](numSamples int, connectionRadius float64, logger golog.Logger) (*PRM[S], error) {
	//nolint:gosec
	return NewPRMWithSeed[S](numSamples, connectionRadius, rand.New(rand.NewSource(1)), logger)
}

// NewPRMWithSeed creates a PRM planner with a user-specified random source,
// for reproducible runs.
func NewPRMWithSeed[S statespace.State[S]](
	numSamples int,
	connectionRadius float64,
	seed *rand.Rand,
	logger golog.Logger,
) (*PRM[S], error) {
	if numSamples < 1 {
		return nil, errors.Errorf("sample count must be positive, got %d", numSamples)
	}
	if connectionRadius <= 0 {
		return nil, errors.Errorf("connection radius must be positive, got %f", connectionRadius)
	}
	return &PRM[S]{
		planner:          newPlanner[S](seed, logger),
		numSamples:       numSamples,
		connectionRadius: connectionRadius,
	}, nil
}

// Setup binds the planner to a problem. The roadmap is preserved when the
// problem's space is the one it was built over, enabling multi-query use;
// call Clear when the scene's obstacles change.
func (mp *PRM[S]) Setup(pd *ProblemDefinition[S], checker StateValidityChecker[S]) error {
	prior := mp.space
	if err := mp.bind(pd, checker); err != nil {
		return err
	}
	if mp.roadmap == nil || prior != mp.space {
		mp.Clear()
	}
	return nil
}

// Clear discards the roadmap. The next Solve or ConstructRoadmap rebuilds it.
func (mp *PRM[S]) Clear() {
	mp.roadmap = simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	mp.milestones = nil
	if mp.space != nil {
		mp.nn = newNeighborIndex[S](mp.space)
	}
}

// RoadmapSize returns the number of milestones currently in the roadmap.
func (mp *PRM[S]) RoadmapSize() int {
	return len(mp.milestones)
}

// ConstructRoadmap runs one build phase: numSamples uniform samples, of which
// the valid ones become milestones, each connected to the milestones within
// the connection radius by collision-checked weighted edges. Repeated calls
// extend the existing roadmap.
func (mp *PRM[S]) ConstructRoadmap(ctx context.Context) error {
	if !mp.isSetUp() {
		return ErrNotSetUp
	}
	for i := 0; i < mp.numSamples; i++ {
		if err := checkContext(ctx); err != nil {
			return err
		}
		sample, err := mp.sampleTarget(0)
		if errors.Is(err, errSkipIteration) {
			continue
		} else if err != nil {
			return err
		}
		if !mp.checker.IsValid(sample) {
			continue
		}
		mp.addMilestone(sample)
	}
	mp.logger.Debugf("PRM roadmap constructed with %d milestones", len(mp.milestones))
	return nil
}

// addMilestone inserts a valid state into the roadmap and connects it to its
// in-radius neighbors.
func (mp *PRM[S]) addMilestone(sample S) int64 {
	id := int64(len(mp.milestones))
	mp.roadmap.AddNode(simple.Node(id))
	resolution := mp.opts.resolutionFor(mp.connectionRadius)
	for _, nbr := range mp.nn.withinRadius(sample, mp.connectionRadius) {
		nbrState := mp.milestones[nbr]
		if mp.checkMotion(sample, nbrState, resolution) {
			w := mp.space.Distance(sample, nbrState)
			mp.roadmap.SetWeightedEdge(mp.roadmap.NewWeightedEdge(simple.Node(id), simple.Node(int64(nbr)), w))
		}
	}
	mp.milestones = append(mp.milestones, sample)
	mp.nn.insert(sample, int(id))
	return id
}

// Solve answers one query against the roadmap, building it first if it is
// empty. The start and a goal state are inserted as temporary nodes,
// connected to their in-radius neighbors, and joined by A* when the goal
// provides a distance heuristic, Dijkstra otherwise.
func (mp *PRM[S]) Solve(ctx context.Context, timeout time.Duration) (*Path[S], error) {
	if !mp.isSetUp() {
		return nil, ErrNotSetUp
	}
	startTime := mp.opts.clock.Now()

	if path := startSatisfiesGoal(mp.planner); path != nil {
		return path, nil
	}

	if len(mp.milestones) == 0 {
		if err := mp.ConstructRoadmap(ctx); err != nil {
			return nil, err
		}
	}
	if mp.opts.clock.Since(startTime) > timeout {
		return nil, ErrGoalUnreachable
	}

	goalState, err := mp.queryGoalState()
	if err != nil {
		return nil, err
	}

	var best *Path[S]
	bestCost := math.Inf(1)
	for _, start := range mp.pd.StartStates() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		if mp.opts.clock.Since(startTime) > timeout {
			break
		}
		if states, cost, ok := mp.query(start, goalState); ok && cost < bestCost {
			best = newPath(states)
			bestCost = cost
		}
	}
	if best == nil {
		return nil, ErrGoalUnreachable
	}
	return best, nil
}

// queryGoalState picks the terminal state for a query: a sample from the goal
// region when the goal is sampleable, or the first goal-satisfying milestone
// otherwise.
func (mp *PRM[S]) queryGoalState() (S, error) {
	var zero S
	if mp.goalSampleable != nil {
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
		if lastErr != nil {
			return zero, NewStateSamplingError(mp.opts.SamplingAttempts, lastErr)
		}
	}
	for _, m := range mp.milestones {
		if mp.goal.IsSatisfied(m) {
			return m, nil
		}
	}
	return zero, ErrGoalUnreachable
}

// query connects temporary start and goal nodes to the roadmap and runs the
// shortest-path search between them. The temporary nodes are removed before
// returning.
func (mp *PRM[S]) query(start, goal S) ([]S, float64, bool) {
	startID := int64(len(mp.milestones))
	goalID := startID + 1
	temp := map[int64]S{startID: start, goalID: goal}

	mp.roadmap.AddNode(simple.Node(startID))
	mp.roadmap.AddNode(simple.Node(goalID))
	defer func() {
		mp.roadmap.RemoveNode(startID)
		mp.roadmap.RemoveNode(goalID)
	}()

	connected := false
	resolution := mp.opts.resolutionFor(mp.connectionRadius)
	for id, s := range temp {
		for _, nbr := range mp.nn.withinRadius(s, mp.connectionRadius) {
			nbrState := mp.milestones[nbr]
			if mp.checkMotion(s, nbrState, resolution) {
				w := mp.space.Distance(s, nbrState)
				mp.roadmap.SetWeightedEdge(mp.roadmap.NewWeightedEdge(simple.Node(id), simple.Node(int64(nbr)), w))
				connected = true
			}
		}
	}
	// degenerate but valid: the start can see the goal directly
	if mp.space.Distance(start, goal) <= mp.connectionRadius && mp.checkMotion(start, goal, resolution) {
		w := mp.space.Distance(start, goal)
		mp.roadmap.SetWeightedEdge(mp.roadmap.NewWeightedEdge(simple.Node(startID), simple.Node(goalID), w))
		connected = true
	}
	if !connected {
		return nil, 0, false
	}

	nodes, cost := mp.shortestPath(startID, goalID, temp)
	if nodes == nil {
		return nil, 0, false
	}

	states := make([]S, 0, len(nodes))
	for _, n := range nodes {
		if s, ok := temp[n.ID()]; ok {
			states = append(states, s.Copy())
			continue
		}
		states = append(states, mp.milestones[n.ID()].Copy())
	}
	return states, cost, true
}

// shortestPath runs A* with the goal region's distance as an admissible
// heuristic when available, Dijkstra otherwise.
func (mp *PRM[S]) shortestPath(startID, goalID int64, temp map[int64]S) ([]graph.Node, float64) {
	stateOf := func(n graph.Node) S {
		if s, ok := temp[n.ID()]; ok {
			return s
		}
		return mp.milestones[n.ID()]
	}

	if mp.goalRegion != nil {
		heuristic := func(x, y graph.Node) float64 {
			return mp.goalRegion.DistanceToGoal(stateOf(x))
		}
		shortest, _ := path.AStar(simple.Node(startID), simple.Node(goalID), mp.roadmap, heuristic)
		nodes, cost := shortest.To(goalID)
		if math.IsInf(cost, 1) {
			return nil, 0
		}
		return nodes, cost
	}

	shortest := path.DijkstraFrom(simple.Node(startID), mp.roadmap)
	nodes, cost := shortest.To(goalID)
	if math.IsInf(cost, 1) {
		return nil, 0
	}
	return nodes, cost
}
