package motionplan

import "github.com/arcbotics/motionplan/statespace"

// Path is an ordered sequence of states from a start to a goal. Adjacent
// states are connected by motions the owning planner verified collision-free
// at its validity resolution.
type Path[S statespace.State[S]] struct {
	states []S
}

func newPath[S statespace.State[S]](states []S) *Path[S] {
	return &Path[S]{states: states}
}

// Len returns the number of states in the path, always at least 1.
func (p *Path[S]) Len() int {
	return len(p.states)
}

// State returns the i-th state of the path.
func (p *Path[S]) State(i int) S {
	return p.states[i]
}

// States returns a copy of the path's state sequence.
func (p *Path[S]) States() []S {
	states := make([]S, len(p.states))
	for i, s := range p.states {
		states[i] = s.Copy()
	}
	return states
}

// Cost returns the sum of distances between adjacent states under the given
// space's metric.
func (p *Path[S]) Cost(space statespace.StateSpace[S]) float64 {
	cost := 0.
	for i := 1; i < len(p.states); i++ {
		cost += space.Distance(p.states[i-1], p.states[i])
	}
	return cost
}
