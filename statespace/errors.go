package statespace

import "github.com/pkg/errors"

var (
	// ErrInvalidBounds is returned when a space is constructed with a lower
	// bound at or above its upper bound, or with missing/non-finite bounds.
	ErrInvalidBounds = errors.New("invalid bounds")

	// ErrDimensionMismatch is returned when a state and a space disagree on
	// dimension.
	ErrDimensionMismatch = errors.New("state dimension does not match space dimension")

	// ErrStateSampling is returned when a sampler cannot produce a state.
	ErrStateSampling = errors.New("unable to sample state")
)

// NewInvalidBoundsError annotates ErrInvalidBounds with the offending bound.
func NewInvalidBoundsError(lower, upper float64) error {
	return errors.Wrapf(ErrInvalidBounds, "lower bound %f must be less than upper bound %f", lower, upper)
}

// NewBoundsLengthError annotates ErrInvalidBounds with a dimension/bounds
// count disagreement.
func NewBoundsLengthError(dimension, found int) error {
	return errors.Wrapf(ErrInvalidBounds, "space of dimension %d requires %d bounds, got %d", dimension, dimension, found)
}

// NewDimensionMismatchError annotates ErrDimensionMismatch with the two
// dimensions that disagree.
func NewDimensionMismatchError(expected, found int) error {
	return errors.Wrapf(ErrDimensionMismatch, "expected dimension %d, got %d", expected, found)
}
