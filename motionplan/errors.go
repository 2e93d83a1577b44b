package motionplan

import "github.com/pkg/errors"

var (
	// ErrNotSetUp is returned by Solve when Setup was never called.
	ErrNotSetUp = errors.New("planner setup was not called before solve")

	// ErrInvalidStart is returned by Setup when a start state is out of
	// bounds or fails the validity check.
	ErrInvalidStart = errors.New("start state is invalid")

	// ErrStateSampling is returned when the goal or space sampler fails
	// persistently.
	ErrStateSampling = errors.New("state sampling failed")

	// ErrGoalUnreachable is returned when the timeout or iteration budget
	// is exhausted without a valid path.
	ErrGoalUnreachable = errors.New("no valid path found within timeout")
)

// errSkipIteration marks a transient sampler failure. Solve loops treat it
// as a skipped iteration, never surfacing it to the caller.
var errSkipIteration = errors.New("skip iteration")

// NewInvalidStartError annotates ErrInvalidStart with the underlying
// per-state failures.
func NewInvalidStartError(cause error) error {
	return errors.Wrap(ErrInvalidStart, cause.Error())
}

// NewStateSamplingError annotates ErrStateSampling with the number of
// consecutive sampler failures that forced escalation.
func NewStateSamplingError(attempts int, cause error) error {
	return errors.Wrapf(ErrStateSampling, "%d consecutive failures, last: %s", attempts, cause.Error())
}
