package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tichu/game"
)

func TestTree(t *testing.T) {
	tree := NewTree()
	require.Equal(t, 0, tree.Size())

	root := tree.Ensure(NodeID(1))
	require.Equal(t, 1, tree.Size())
	require.Equal(t, root, tree.Ensure(NodeID(1)), "ensuring an existing id returns its index")
	require.Equal(t, root, tree.Lookup(NodeID(1)))
	require.Equal(t, int32(-1), tree.Lookup(NodeID(99)), "unknown ids miss")

	pass := game.PassAction{Pos: 0}
	otherPass := game.PassAction{Pos: 1}

	child := tree.Link(root, pass, NodeID(2))
	require.Equal(t, 2, tree.Size())
	require.NotEqual(t, root, child)

	t.Run("linking is idempotent per action", func(t *testing.T) {
		again := tree.Link(root, pass, NodeID(2))
		require.Equal(t, child, again)
		require.Len(t, tree.Node(root).Edges, 1)
	})

	t.Run("edges are found by action value", func(t *testing.T) {
		e := tree.Node(root).EdgeTo(pass)
		require.NotNil(t, e)
		require.Equal(t, child, e.Child)
		require.Nil(t, tree.Node(root).EdgeTo(otherPass))
	})

	t.Run("transpositions share a node", func(t *testing.T) {
		other := tree.Link(root, otherPass, NodeID(2))
		require.Equal(t, child, other, "equal ids map to the same arena slot")
		require.Len(t, tree.Node(root).Edges, 2)
	})
}

func TestNodeStatistics(t *testing.T) {
	tree := NewTree()
	idx := tree.Ensure(NodeID(7))

	n := tree.Node(idx)
	n.Visits++
	n.Availability += 2
	n.Reward[0] += 1.5

	m := tree.Node(idx)
	require.Equal(t, 1, m.Visits, "arena entries are addressed in place")
	require.Equal(t, 2, m.Availability)
	require.Equal(t, 1.5, m.Reward[0])
}
