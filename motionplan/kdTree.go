package motionplan

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/arcbotics/motionplan/statespace"
)

// kdTreeIndex answers nearest-neighbor queries for real-vector states with a
// kd-tree, keeping planner complexity near O(n log n) where the linear scan
// would degrade RRT* noticeably.
type kdTreeIndex struct {
	tree  *kdtree.Tree
	count int
}

func newKDTreeIndex() *kdTreeIndex {
	return &kdTreeIndex{tree: kdtree.New(kdPoints{}, false)}
}

func (ki *kdTreeIndex) insert(s *statespace.RealVectorState, idx int) {
	ki.tree.Insert(kdPoint{vec: s.Values, idx: idx}, false)
	ki.count++
}

func (ki *kdTreeIndex) nearest(s *statespace.RealVectorState) (int, float64) {
	if ki.count == 0 {
		return rootParent, math.Inf(1)
	}
	q := kdPoint{vec: s.Values, idx: rootParent}
	got, dist := ki.tree.Nearest(q)
	if got == nil {
		return rootParent, math.Inf(1)
	}
	// collect every point at the nearest distance so ties go to the smaller index
	best := got.(kdPoint).idx
	keeper := kdtree.NewDistKeeper(dist)
	ki.tree.NearestSet(keeper, q)
	for _, cd := range keeper.Heap {
		if cd.Comparable != nil && cd.Comparable.(kdPoint).idx < best {
			best = cd.Comparable.(kdPoint).idx
		}
	}
	return best, math.Sqrt(dist)
}

func (ki *kdTreeIndex) withinRadius(s *statespace.RealVectorState, r float64) []int {
	if ki.count == 0 {
		return nil
	}
	keeper := kdtree.NewDistKeeper(r * r)
	ki.tree.NearestSet(keeper, kdPoint{vec: s.Values, idx: rootParent})
	var found []int
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		found = append(found, cd.Comparable.(kdPoint).idx)
	}
	sort.Ints(found)
	return found
}

// kdPoint adapts one stored state to the kdtree Comparable contract. Distance
// is squared Euclidean, per the package convention.
type kdPoint struct {
	vec []float64
	idx int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	return p.vec[d] - q.vec[d]
}

func (p kdPoint) Dims() int {
	return len(p.vec)
}

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	var sum float64
	for i, v := range p.vec {
		d := v - q.vec[i]
		sum += d * d
	}
	return sum
}

// kdPoints adapts a state set to the kdtree build contract.
type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable { return p[i] }

func (p kdPoints) Len() int { return len(p) }

func (p kdPoints) Pivot(d kdtree.Dim) int {
	return kdPlane{Dim: d, kdPoints: p}.Pivot()
}

func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// kdPlane sorts a point set along one dimension for pivot selection.
type kdPlane struct {
	kdtree.Dim
	kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return p.kdPoints[i].vec[p.Dim] < p.kdPoints[j].vec[p.Dim]
}

func (p kdPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.kdPoints = p.kdPoints[start:end]
	return p
}

func (p kdPlane) Swap(i, j int) {
	p.kdPoints[i], p.kdPoints[j] = p.kdPoints[j], p.kdPoints[i]
}
