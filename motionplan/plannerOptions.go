package motionplan

import "github.com/benbjohnson/clock"

// default values for planning options.
const (
	// Number of planner iterations before giving up.
	defaultPlanIter = 100000

	// Consecutive sampler failures tolerated before escalating.
	defaultSamplingAttempts = 10

	// Steering-step divisor used to derive the validity-check resolution
	// when none is configured.
	defaultResolutionDivisor = 10

	// Multiple of the steering step used as the default RRT* gamma.
	defaultGammaMultiple = 10.0

	// If a solution costs less than this multiple of the straight-line
	// lower bound, stop refining and return it.
	defaultOptimalityMultiple = 1.05

	// Fraction of the iteration budget between progress log lines.
	defaultLoggingInterval = 0.1
)

// plannerOptions are tuning knobs shared by all planners. Each field has a
// reasonable default, set by newBasicPlannerOptions; of the fields, only a
// zero Resolution is replaced by a derived value.
type plannerOptions struct {
	// Max number of iterations to run per Solve before giving up.
	PlanIter int `json:"plan_iter"`

	// Distance between validity checks along a candidate motion. Zero
	// derives maxDistance / 10.
	Resolution float64 `json:"resolution"`

	// Consecutive goal-sampler failures tolerated before Solve fails with
	// a sampling error. Transient failures below this are iteration skips.
	SamplingAttempts int `json:"sampling_attempts"`

	clock clock.Clock
}

// newBasicPlannerOptions specifies a set of basic options for the planner.
func newBasicPlannerOptions() *plannerOptions {
	return &plannerOptions{
		PlanIter:         defaultPlanIter,
		SamplingAttempts: defaultSamplingAttempts,
		clock:            clock.New(),
	}
}

// resolutionFor derives the validity-check step for a given steering step.
func (opt *plannerOptions) resolutionFor(maxDistance float64) float64 {
	if opt.Resolution > 0 {
		return opt.Resolution
	}
	return maxDistance / defaultResolutionDivisor
}
