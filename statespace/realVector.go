package statespace

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Fraction of the maximum extent below which a motion may be assumed valid.
const defaultLongestValidSegmentFraction = 0.05

// Limit describes the closed interval of allowed values for one axis.
type Limit struct {
	Min float64
	Max float64
}

// RealVectorStateSpace is an N-dimensional Euclidean space bounded by a
// hyper-rectangle. Distance is the L2 norm and interpolation is
// component-wise linear.
type RealVectorStateSpace struct {
	dimension int
	limits    []Limit

	longestValidSegmentFraction float64
}

// NewRealVectorStateSpace creates a bounded Euclidean space of the given
// dimension. One finite limit per axis is required; uniform sampling from an
// unbounded axis is not possible, so missing or non-finite bounds fail
// construction with ErrInvalidBounds.
func NewRealVectorStateSpace(dimension int, limits []Limit) (*RealVectorStateSpace, error) {
	if dimension < 1 {
		return nil, NewDimensionMismatchError(1, dimension)
	}
	if len(limits) != dimension {
		return nil, NewBoundsLengthError(dimension, len(limits))
	}
	for _, l := range limits {
		if !isFinite(l.Min) || !isFinite(l.Max) || l.Min >= l.Max {
			return nil, NewInvalidBoundsError(l.Min, l.Max)
		}
	}
	bounds := make([]Limit, dimension)
	copy(bounds, limits)
	return &RealVectorStateSpace{
		dimension:                   dimension,
		limits:                      bounds,
		longestValidSegmentFraction: defaultLongestValidSegmentFraction,
	}, nil
}

// Dimension returns the number of axes in the space.
func (space *RealVectorStateSpace) Dimension() int {
	return space.dimension
}

// Limits returns a copy of the per-axis bounds.
func (space *RealVectorStateSpace) Limits() []Limit {
	limits := make([]Limit, len(space.limits))
	copy(limits, space.limits)
	return limits
}

// Check verifies that a state belongs to this space's dimension.
func (space *RealVectorStateSpace) Check(s *RealVectorState) error {
	if len(s.Values) != space.dimension {
		return NewDimensionMismatchError(space.dimension, len(s.Values))
	}
	return nil
}

// Distance returns the Euclidean distance between two states.
func (space *RealVectorStateSpace) Distance(a, b *RealVectorState) float64 {
	diff := make([]float64, space.dimension)
	for i := range diff {
		diff[i] = a.Values[i] - b.Values[i]
	}
	// 2 is the L value returning a standard L2 Normalization
	return floats.Norm(diff, 2)
}

// Interpolate returns the state a fraction t along the straight line from one
// state to another. t outside [0, 1] is clamped.
func (space *RealVectorStateSpace) Interpolate(from, to *RealVectorState, t float64) *RealVectorState {
	t = clamp01(t)
	values := make([]float64, space.dimension)
	for i := range values {
		values[i] = from.Values[i] + (to.Values[i]-from.Values[i])*t
	}
	return &RealVectorState{Values: values}
}

// SampleUniform draws a state uniformly at random from within the bounds.
func (space *RealVectorStateSpace) SampleUniform(rng *rand.Rand) (*RealVectorState, error) {
	values := make([]float64, space.dimension)
	for i, l := range space.limits {
		values[i] = l.Min + rng.Float64()*(l.Max-l.Min)
	}
	return &RealVectorState{Values: values}, nil
}

// EnforceBounds clamps each component of the state to its axis limits.
func (space *RealVectorStateSpace) EnforceBounds(s *RealVectorState) *RealVectorState {
	values := make([]float64, space.dimension)
	for i, l := range space.limits {
		values[i] = math.Min(math.Max(s.Values[i], l.Min), l.Max)
	}
	return &RealVectorState{Values: values}
}

// SatisfiesBounds reports whether every component is within its axis limits,
// tolerating floating-point error on the boundary.
func (space *RealVectorStateSpace) SatisfiesBounds(s *RealVectorState) bool {
	if len(s.Values) != space.dimension {
		return false
	}
	for i, l := range space.limits {
		if s.Values[i]-defaultEpsilon > l.Max || s.Values[i]+defaultEpsilon < l.Min {
			return false
		}
	}
	return true
}

// EqualStates reports whether two states coincide to within epsilon.
func (space *RealVectorStateSpace) EqualStates(a, b *RealVectorState) bool {
	return space.Distance(a, b) < defaultEpsilon
}

// MaximumExtent returns the diagonal of the space's bounding box.
func (space *RealVectorStateSpace) MaximumExtent() float64 {
	diag := make([]float64, space.dimension)
	for i, l := range space.limits {
		diag[i] = l.Max - l.Min
	}
	return floats.Norm(diag, 2)
}

// LongestValidSegmentLength is the motion-validation resolution heuristic,
// a configurable fraction of the space's maximum extent.
func (space *RealVectorStateSpace) LongestValidSegmentLength() float64 {
	return space.MaximumExtent() * space.longestValidSegmentFraction
}

// SetLongestValidSegmentFraction overrides the fraction of the maximum extent
// used for motion validation. Non-positive values are ignored; values above 1
// are clamped.
func (space *RealVectorStateSpace) SetLongestValidSegmentFraction(fraction float64) {
	if fraction > 0 {
		space.longestValidSegmentFraction = math.Min(fraction, 1)
	}
}

func clamp01(t float64) float64 {
	return math.Min(math.Max(t, 0), 1)
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
