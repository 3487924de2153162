package searcher

import (
	"tichu/game"
)

// NodeID identifies an information set in the search tree. Nodes are held in
// an arena slice and addressed by index; edges carry the action and the
// child's arena index, so there are no parent or child pointers to cycle.
type NodeID uint64

// Edge links a node to the information set one action away.
type Edge struct {
	Action game.Action
	Child  int32
}

// Node carries the UCB statistics of one information set. Reward is a
// four-vector: backup credits every seat, and selection reads the component
// of the seat acting on the edge.
type Node struct {
	ID           NodeID
	Visits       int
	Availability int
	Reward       [4]float64
	Edges        []Edge
}

// EdgeTo finds the edge labelled with action, or nil.
func (n *Node) EdgeTo(action game.Action) *Edge {
	for i := range n.Edges {
		if n.Edges[i].Action == action {
			return &n.Edges[i]
		}
	}
	return nil
}

// Tree is a node arena owned by a single worker goroutine. Workers never
// share a Tree; their root statistics are reduced after the batch.
type Tree struct {
	arena []Node
	index map[NodeID]int32
}

func NewTree() *Tree {
	return &Tree{index: make(map[NodeID]int32)}
}

func (t *Tree) Size() int { return len(t.arena) }

// Node returns the arena entry at idx.
func (t *Tree) Node(idx int32) *Node { return &t.arena[idx] }

// Lookup finds the arena index of id, or -1.
func (t *Tree) Lookup(id NodeID) int32 {
	if idx, ok := t.index[id]; ok {
		return idx
	}
	return -1
}

// Ensure finds or appends the node for id and returns its arena index.
func (t *Tree) Ensure(id NodeID) int32 {
	if idx, ok := t.index[id]; ok {
		return idx
	}
	idx := int32(len(t.arena))
	t.arena = append(t.arena, Node{ID: id})
	t.index[id] = idx
	return idx
}

// Link records an edge from parent to the node for childID, creating the
// child if needed. Returns the child's index.
func (t *Tree) Link(parent int32, action game.Action, childID NodeID) int32 {
	child := t.Ensure(childID)
	n := t.Node(parent)
	if e := n.EdgeTo(action); e == nil {
		n.Edges = append(n.Edges, Edge{Action: action, Child: child})
	}
	return child
}
