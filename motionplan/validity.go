package motionplan

import "github.com/arcbotics/motionplan/statespace"

// StateValidityChecker decides whether a configuration is admissible, most
// commonly by collision checking. Checkers are called from planner hot loops
// many thousands of times per solve; implementations must be side-effect-free
// and must not retain references to their arguments.
type StateValidityChecker[S statespace.State[S]] interface {
	IsValid(s S) bool
}

// StateValidityCheckerFunc adapts a plain function to a StateValidityChecker.
type StateValidityCheckerFunc[S statespace.State[S]] func(s S) bool

// IsValid calls the wrapped function.
func (f StateValidityCheckerFunc[S]) IsValid(s S) bool {
	return f(s)
}

// AllStatesValid accepts every state. Useful for obstacle-free scenes.
func AllStatesValid[S statespace.State[S]]() StateValidityChecker[S] {
	return StateValidityCheckerFunc[S](func(S) bool { return true })
}
