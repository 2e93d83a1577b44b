package motionplan

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/arcbotics/motionplan/statespace"
)

// Goal is the termination condition for a planner: the minimum capability any
// goal must provide.
type Goal[S statespace.State[S]] interface {
	// IsSatisfied reports whether a state is an acceptable terminal
	// configuration.
	IsSatisfied(s S) bool
}

// GoalRegion is a Goal with a measurable distance. DistanceToGoal is zero
// exactly when IsSatisfied holds, up to epsilon, and is usable as an
// admissible search heuristic.
type GoalRegion[S statespace.State[S]] interface {
	Goal[S]

	// DistanceToGoal returns the distance from a state to the goal region,
	// zero if the state is inside it.
	DistanceToGoal(s S) float64
}

// GoalSampleableRegion is a GoalRegion that can produce states from within
// itself. Planners that bias their sampling toward the goal require this
// capability.
type GoalSampleableRegion[S statespace.State[S]] interface {
	GoalRegion[S]

	// SampleGoal draws a state from the goal region. It may fail if the
	// region is empty or degenerate.
	SampleGoal(rng *rand.Rand) (S, error)
}

// StateGoal is the ball of a given radius around a target state, under the
// owning space's metric. It satisfies GoalSampleableRegion for any space.
type StateGoal[S statespace.State[S]] struct {
	space     statespace.StateSpace[S]
	target    S
	threshold float64
}

// NewStateGoal creates a goal region of all states within threshold of target.
// A zero threshold means the target state alone: only states at distance
// exactly zero from it satisfy the goal.
func NewStateGoal[S statespace.State[S]](
	space statespace.StateSpace[S],
	target S,
	threshold float64,
) (*StateGoal[S], error) {
	if threshold < 0 {
		return nil, errors.Errorf("goal threshold must be non-negative, got %f", threshold)
	}
	if !space.SatisfiesBounds(target) {
		return nil, errors.New("goal target state is out of bounds")
	}
	return &StateGoal[S]{space: space, target: target.Copy(), threshold: threshold}, nil
}

// Target returns a copy of the goal's center state.
func (g *StateGoal[S]) Target() S {
	return g.target.Copy()
}

// IsSatisfied reports whether the state lies within the goal ball.
func (g *StateGoal[S]) IsSatisfied(s S) bool {
	return g.DistanceToGoal(s) <= 0
}

// DistanceToGoal returns how far outside the goal ball the state is.
func (g *StateGoal[S]) DistanceToGoal(s S) float64 {
	dist := g.space.Distance(s, g.target) - g.threshold
	if dist < 0 {
		return 0
	}
	return dist
}

// SampleGoal draws a state from the goal ball by interpolating a random
// fraction of the threshold from the target toward a uniform sample, keeping
// the result in bounds.
func (g *StateGoal[S]) SampleGoal(rng *rand.Rand) (S, error) {
	if g.threshold == 0 {
		return g.target.Copy(), nil
	}
	toward, err := g.space.SampleUniform(rng)
	if err != nil {
		var zero S
		return zero, err
	}
	dist := g.space.Distance(g.target, toward)
	if dist == 0 {
		return g.target.Copy(), nil
	}
	reach := g.threshold * rng.Float64()
	if reach > dist {
		reach = dist
	}
	s := g.space.Interpolate(g.target, toward, reach/dist)
	return g.space.EnforceBounds(s), nil
}
