package motionplan

import "github.com/arcbotics/motionplan/statespace"

// rootParent marks arena roots, which have no parent.
const rootParent = -1

// node is one vertex of a search tree: a state, the arena index of its
// parent, and the accumulated cost from its root.
type node[S statespace.State[S]] struct {
	state  S
	parent int
	cost   float64
}

// nodeArena is an append-only store of tree nodes. Edges exist only as parent
// indices: nodes are appended pointing at an earlier parent, and rewiring only
// ever adopts a strictly cheaper route, so walks to a root always terminate.
// Multiple roots are allowed; each extra start state becomes another root of
// the same arena.
type nodeArena[S statespace.State[S]] struct {
	nodes []node[S]
	// children is maintained alongside the parent links so cost updates
	// can be propagated without scanning the whole arena.
	children [][]int
}

func newNodeArena[S statespace.State[S]]() *nodeArena[S] {
	return &nodeArena[S]{}
}

func (a *nodeArena[S]) len() int {
	return len(a.nodes)
}

func (a *nodeArena[S]) state(i int) S {
	return a.nodes[i].state
}

func (a *nodeArena[S]) cost(i int) float64 {
	return a.nodes[i].cost
}

// addRoot appends a parentless node with zero cost and returns its index.
func (a *nodeArena[S]) addRoot(state S) int {
	return a.add(state, rootParent, 0)
}

// add appends a node and returns its index.
func (a *nodeArena[S]) add(state S, parent int, cost float64) int {
	idx := len(a.nodes)
	a.nodes = append(a.nodes, node[S]{state: state, parent: parent, cost: cost})
	a.children = append(a.children, nil)
	if parent != rootParent {
		a.children[parent] = append(a.children[parent], idx)
	}
	return idx
}

// reparent moves a node under a new parent with a new cost and propagates the
// cost change to every descendant with an explicit work queue, keeping stack
// depth constant regardless of tree shape.
func (a *nodeArena[S]) reparent(idx, newParent int, newCost float64) {
	oldParent := a.nodes[idx].parent
	if oldParent != rootParent {
		siblings := a.children[oldParent]
		for i, child := range siblings {
			if child == idx {
				a.children[oldParent] = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	delta := newCost - a.nodes[idx].cost
	a.nodes[idx].parent = newParent
	a.nodes[idx].cost = newCost
	a.children[newParent] = append(a.children[newParent], idx)

	queue := append([]int(nil), a.children[idx]...)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		a.nodes[i].cost += delta
		queue = append(queue, a.children[i]...)
	}
}

// extractPath walks parent links from a node back to its root and returns the
// states in root-first order.
func (a *nodeArena[S]) extractPath(idx int) []S {
	states := make([]S, 0)
	for i := idx; i != rootParent; i = a.nodes[i].parent {
		states = append(states, a.nodes[i].state.Copy())
	}
	// reverse the slice
	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}
	return states
}
