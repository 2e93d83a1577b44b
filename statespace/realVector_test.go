package statespace

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func unitSquare(t *testing.T) *RealVectorStateSpace {
	t.Helper()
	space, err := NewRealVectorStateSpace(2, []Limit{{Min: 0, Max: 10}, {Min: 0, Max: 10}})
	test.That(t, err, test.ShouldBeNil)
	return space
}

func TestRealVectorConstruction(t *testing.T) {
	space := unitSquare(t)
	test.That(t, space.Dimension(), test.ShouldEqual, 2)

	_, err := NewRealVectorStateSpace(2, []Limit{{Min: 1, Max: 1}, {Min: 0, Max: 10}})
	test.That(t, errors.Is(err, ErrInvalidBounds), test.ShouldBeTrue)

	_, err = NewRealVectorStateSpace(2, []Limit{{Min: 5, Max: 1}, {Min: 0, Max: 10}})
	test.That(t, errors.Is(err, ErrInvalidBounds), test.ShouldBeTrue)

	_, err = NewRealVectorStateSpace(3, []Limit{{Min: 0, Max: 1}})
	test.That(t, errors.Is(err, ErrInvalidBounds), test.ShouldBeTrue)

	// uniform sampling from an unbounded axis is impossible
	_, err = NewRealVectorStateSpace(1, []Limit{{Min: 0, Max: math.Inf(1)}})
	test.That(t, errors.Is(err, ErrInvalidBounds), test.ShouldBeTrue)

	_, err = NewRealVectorStateSpace(2, nil)
	test.That(t, errors.Is(err, ErrInvalidBounds), test.ShouldBeTrue)
}

func TestRealVectorDistance(t *testing.T) {
	space := unitSquare(t)
	a := NewRealVectorState([]float64{1, 2})
	b := NewRealVectorState([]float64{4, 6})

	test.That(t, space.Distance(a, b), test.ShouldAlmostEqual, 5.0, 1e-12)
	test.That(t, space.Distance(b, a), test.ShouldAlmostEqual, space.Distance(a, b), 1e-12)
	test.That(t, space.Distance(a, a), test.ShouldEqual, 0.0)
}

func TestRealVectorInterpolate(t *testing.T) {
	space := unitSquare(t)
	a := NewRealVectorState([]float64{1, 1})
	b := NewRealVectorState([]float64{9, 5})

	test.That(t, space.EqualStates(space.Interpolate(a, b, 0), a), test.ShouldBeTrue)
	test.That(t, space.EqualStates(space.Interpolate(a, b, 1), b), test.ShouldBeTrue)

	mid := space.Interpolate(a, b, 0.5)
	test.That(t, mid.Values[0], test.ShouldAlmostEqual, 5.0, 1e-12)
	test.That(t, mid.Values[1], test.ShouldAlmostEqual, 3.0, 1e-12)

	// out-of-range t clamps rather than extrapolating
	test.That(t, space.EqualStates(space.Interpolate(a, b, -2), a), test.ShouldBeTrue)
	test.That(t, space.EqualStates(space.Interpolate(a, b, 7), b), test.ShouldBeTrue)
}

func TestRealVectorBounds(t *testing.T) {
	space := unitSquare(t)
	out := NewRealVectorState([]float64{-3, 15})

	test.That(t, space.SatisfiesBounds(out), test.ShouldBeFalse)
	clamped := space.EnforceBounds(out)
	test.That(t, clamped.Values, test.ShouldResemble, []float64{0, 10})
	test.That(t, space.SatisfiesBounds(clamped), test.ShouldBeTrue)

	// projection is idempotent
	test.That(t, space.EnforceBounds(clamped).Values, test.ShouldResemble, clamped.Values)
}

func TestRealVectorSampleUniform(t *testing.T) {
	space := unitSquare(t)
	//nolint:gosec
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		s, err := space.SampleUniform(rng)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, space.SatisfiesBounds(s), test.ShouldBeTrue)
		// a fresh sample is already in bounds, so enforcement is a no-op
		test.That(t, space.EnforceBounds(s).Values, test.ShouldResemble, s.Values)
	}
}

func TestRealVectorDimensionCheck(t *testing.T) {
	space := unitSquare(t)
	test.That(t, space.Check(NewRealVectorState([]float64{1, 2})), test.ShouldBeNil)
	err := space.Check(NewRealVectorState([]float64{1, 2, 3}))
	test.That(t, errors.Is(err, ErrDimensionMismatch), test.ShouldBeTrue)
}

func TestRealVectorExtent(t *testing.T) {
	space := unitSquare(t)
	test.That(t, space.MaximumExtent(), test.ShouldAlmostEqual, math.Sqrt(200), 1e-12)
	test.That(t, space.LongestValidSegmentLength(), test.ShouldAlmostEqual, math.Sqrt(200)*0.05, 1e-12)

	space.SetLongestValidSegmentFraction(0.01)
	test.That(t, space.LongestValidSegmentLength(), test.ShouldAlmostEqual, math.Sqrt(200)*0.01, 1e-12)
}
