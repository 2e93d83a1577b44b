package motionplan

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/arcbotics/motionplan/statespace"
)

// dimensionChecked is implemented by spaces that can verify a state belongs
// to their dimension, such as RealVectorStateSpace.
type dimensionChecked[S statespace.State[S]] interface {
	Check(s S) error
}

// ProblemDefinition bundles everything that defines a planning problem: the
// space to search, one or more start states, and the goal condition. The
// space and goal are shared by reference; start states are copied.
type ProblemDefinition[S statespace.State[S]] struct {
	space       statespace.StateSpace[S]
	startStates []S
	goal        Goal[S]
}

// NewProblemDefinition validates and bundles a planning problem. At least one
// start state is required, every start must match the space's dimension and
// satisfy its bounds, and the goal must be non-nil.
func NewProblemDefinition[S statespace.State[S]](
	space statespace.StateSpace[S],
	startStates []S,
	goal Goal[S],
) (*ProblemDefinition[S], error) {
	if space == nil {
		return nil, errors.New("problem definition requires a state space")
	}
	if goal == nil {
		return nil, errors.New("problem definition requires a goal")
	}
	if len(startStates) == 0 {
		return nil, errors.New("problem definition requires at least one start state")
	}

	var err error
	checked, canCheck := any(space).(dimensionChecked[S])
	for i, start := range startStates {
		if canCheck {
			if checkErr := checked.Check(start); checkErr != nil {
				err = multierr.Append(err, errors.Wrapf(checkErr, "start state %d", i))
				continue
			}
		}
		if !space.SatisfiesBounds(start) {
			err = multierr.Append(err, errors.Errorf("start state %d is out of bounds", i))
		}
	}
	if err != nil {
		return nil, err
	}

	starts := make([]S, len(startStates))
	for i, s := range startStates {
		starts[i] = s.Copy()
	}
	return &ProblemDefinition[S]{space: space, startStates: starts, goal: goal}, nil
}

// Space returns the space the problem is defined over.
func (pd *ProblemDefinition[S]) Space() statespace.StateSpace[S] {
	return pd.space
}

// StartStates returns copies of the problem's start states, in order.
func (pd *ProblemDefinition[S]) StartStates() []S {
	starts := make([]S, len(pd.startStates))
	for i, s := range pd.startStates {
		starts[i] = s.Copy()
	}
	return starts
}

// Goal returns the problem's goal condition.
func (pd *ProblemDefinition[S]) Goal() Goal[S] {
	return pd.goal
}
