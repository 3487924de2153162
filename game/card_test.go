package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestDeal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 20; i++ {
		first8, last6 := Deal(rng)

		var all CardSet
		count := 0
		for p := 0; p < 4; p++ {
			require.Equal(t, 8, first8[p].Count(), "every seat gets eight cards up front")
			require.Equal(t, 6, last6[p].Count(), "every seat gets six cards held back")
			require.True(t, first8[p].Disjoint(last6[p]), "a seat's piles should not overlap")
			require.True(t, all.Disjoint(first8[p].Union(last6[p])), "no card is dealt twice")
			all = all.Union(first8[p]).Union(last6[p])
			count += first8[p].Count() + last6[p].Count()
		}
		require.Equal(t, FullDeck, all, "the deal should cover the whole deck")
		require.Equal(t, DeckSize, count)
	}
}

func TestCardPoints(t *testing.T) {
	t.Run("individual card values", func(t *testing.T) {
		require.Equal(t, 5, MakeCard(5, Jade).Points())
		require.Equal(t, 10, MakeCard(RankTen, Sword).Points())
		require.Equal(t, 10, MakeCard(RankKing, Star).Points())
		require.Equal(t, 25, Dragon.Points())
		require.Equal(t, -25, Phoenix.Points())
		require.Equal(t, 0, Dog.Points())
		require.Equal(t, 0, Mahjong.Points())
		require.Equal(t, 0, MakeCard(RankAce, Pagoda).Points())
	})

	t.Run("the full deck is worth 100", func(t *testing.T) {
		require.Equal(t, 100, FullDeck.Points())
	})
}

func TestCardIdentity(t *testing.T) {
	for r := RankTwo; r <= RankAce; r++ {
		for _, suit := range []Suit{Jade, Sword, Pagoda, Star} {
			c := MakeCard(r, suit)
			require.Equal(t, r, c.Rank())
			require.Equal(t, suit, c.Suit())
			require.False(t, c.Special())
		}
	}
	require.Equal(t, RankDog, Dog.Rank())
	require.Equal(t, RankMahjong, Mahjong.Rank())
	require.Equal(t, RankDragon, Dragon.Rank())
	require.Equal(t, RankPhoenix, Phoenix.Rank())
}

func TestCardSet(t *testing.T) {
	s := NewCardSet(MakeCard(5, Jade), MakeCard(5, Sword), Dragon)

	require.Equal(t, 3, s.Count())
	require.True(t, s.HasRank(Rank(5)), "rank lookup should see the fives")
	require.True(t, s.HasRank(RankDragon))
	require.False(t, s.HasRank(RankKing))

	without := s.Without(NewCardSet(Dragon))
	require.Equal(t, 2, without.Count())
	require.True(t, without.SubsetOf(s))
	require.False(t, s.SubsetOf(without))
}
