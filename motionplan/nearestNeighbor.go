package motionplan

import (
	"math"
	"runtime"

	"go.viam.com/utils"

	"github.com/arcbotics/motionplan/statespace"
)

// Past this many stored states, nearest-neighbor scans are parallelized.
const neighborsBeforeParallelization = 1000

// neighborIndex answers nearest-neighbor queries over the states a planner
// has accumulated, keyed by arena (or milestone) index. Implementations trade
// generality for speed: the linear scan works for any space, the kd-tree
// variant only for real-vector spaces.
type neighborIndex[S statespace.State[S]] interface {
	insert(s S, idx int)
	// nearest returns the stored index closest to the query and its
	// distance. Ties go to the smaller index. The second return is
	// math.Inf(1) when the index is empty.
	nearest(s S) (int, float64)
	// withinRadius returns all stored indices within r of the query, in
	// insertion order.
	withinRadius(s S, r float64) []int
}

// newNeighborIndex picks the best available index for a space: kd-tree for
// real-vector spaces, linear scan otherwise.
func newNeighborIndex[S statespace.State[S]](space statespace.StateSpace[S]) neighborIndex[S] {
	if _, ok := any(space).(*statespace.RealVectorStateSpace); ok {
		if idx, ok := any(newKDTreeIndex()).(neighborIndex[S]); ok {
			return idx
		}
	}
	return &linearIndex[S]{space: space}
}

type neighborEntry[S statespace.State[S]] struct {
	state S
	idx   int
}

type neighbor struct {
	dist float64
	idx  int
}

// linearIndex is the always-correct fallback: a flat scan under the space's
// metric, chunked across goroutines once the store grows large.
type linearIndex[S statespace.State[S]] struct {
	space   statespace.StateSpace[S]
	entries []neighborEntry[S]
}

func (li *linearIndex[S]) insert(s S, idx int) {
	li.entries = append(li.entries, neighborEntry[S]{state: s, idx: idx})
}

func (li *linearIndex[S]) nearest(s S) (int, float64) {
	if len(li.entries) > neighborsBeforeParallelization {
		return li.parallelNearest(s)
	}
	return li.scanNearest(s, 0, len(li.entries))
}

func (li *linearIndex[S]) scanNearest(s S, lo, hi int) (int, float64) {
	best := rootParent
	bestDist := math.Inf(1)
	for i := lo; i < hi; i++ {
		if dist := li.space.Distance(li.entries[i].state, s); dist < bestDist {
			bestDist = dist
			best = li.entries[i].idx
		}
	}
	return best, bestDist
}

func (li *linearIndex[S]) parallelNearest(s S) (int, float64) {
	nCPU := runtime.NumCPU()
	chunk := (len(li.entries) + nCPU - 1) / nCPU
	results := make(chan neighbor, nCPU)
	workers := 0
	for lo := 0; lo < len(li.entries); lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > len(li.entries) {
			hi = len(li.entries)
		}
		workers++
		utils.PanicCapturingGo(func() {
			idx, dist := li.scanNearest(s, lo, hi)
			results <- neighbor{dist: dist, idx: idx}
		})
	}
	best := rootParent
	bestDist := math.Inf(1)
	for i := 0; i < workers; i++ {
		nn := <-results
		// strict less keeps ties on the smaller index, scan order is by index
		if nn.dist < bestDist || (nn.dist == bestDist && nn.idx < best) {
			bestDist = nn.dist
			best = nn.idx
		}
	}
	return best, bestDist
}

func (li *linearIndex[S]) withinRadius(s S, r float64) []int {
	var found []int
	for _, e := range li.entries {
		if li.space.Distance(e.state, s) <= r {
			found = append(found, e.idx)
		}
	}
	return found
}
