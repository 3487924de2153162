package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// playing builds a mid-round state with the given hands.
func playing(current int, hands [4]CardSet) *RoundState {
	return &RoundState{
		Phase:   PhasePlaying,
		Current: current,
		Hands:   hands,
		Wish:    NoRank,
	}
}

func TestAnnouncePhases(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := NewRoundDealt(rng)
	require.Equal(t, PhaseGrandTichu, s.Phase)

	t.Run("decisions run seat by seat", func(t *testing.T) {
		_, err := s.Apply(GrandTichuAction{Pos: 2, Announce: false})
		require.Error(t, err, "seat 2 cannot decide before seat 0")
		require.True(t, errors.Is(err, ErrIllegalAction))
	})

	for p := 0; p < 4; p++ {
		var err error
		s, err = s.Apply(GrandTichuAction{Pos: p, Announce: p == 1})
		require.NoError(t, err)
	}
	require.Equal(t, PhaseDeal6, s.Phase)
	require.True(t, s.GrandTichu.Has(1))

	s, err := s.DealLast6()
	require.NoError(t, err)
	require.Equal(t, PhaseTichu, s.Phase)
	for p := 0; p < 4; p++ {
		require.Equal(t, HandSize, s.Hands[p].Count(), "full hands after the second deal")
	}

	t.Run("grand tichu blocks a small tichu", func(t *testing.T) {
		s2, err := s.Apply(TichuAction{Pos: 0, Announce: false})
		require.NoError(t, err)
		_, err = s2.Apply(TichuAction{Pos: 1, Announce: true})
		require.Error(t, err, "seat 1 already announced grand tichu")
	})

	for p := 0; p < 4; p++ {
		s, err = s.Apply(TichuAction{Pos: p, Announce: false})
		require.NoError(t, err)
	}
	require.Equal(t, PhaseTrading, s.Phase)
}

func TestTrading(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	s := NewRoundDealt(rng)
	var err error
	for p := 0; p < 4; p++ {
		s, err = s.Apply(GrandTichuAction{Pos: p, Announce: false})
		require.NoError(t, err)
	}
	s, err = s.DealLast6()
	require.NoError(t, err)
	for p := 0; p < 4; p++ {
		s, err = s.Apply(TichuAction{Pos: p, Announce: false})
		require.NoError(t, err)
	}

	var gives [4][3]Card
	for p := 0; p < 4; p++ {
		cards := s.Hands[p].Cards()
		gives[p] = [3]Card{cards[0], cards[1], cards[2]}
		s, err = s.Apply(TradeAction{Pos: p, Give: gives[p]})
		require.NoError(t, err)
	}

	require.Equal(t, PhasePlaying, s.Phase)
	require.True(t, s.Hands[s.Current].Has(Mahjong), "the Mahjong holder opens play")

	var all CardSet
	for p := 0; p < 4; p++ {
		require.Equal(t, HandSize, s.Hands[p].Count(), "hand sizes survive the trade")
		require.True(t, all.Disjoint(s.Hands[p]))
		all = all.Union(s.Hands[p])
	}
	require.Equal(t, FullDeck, all, "no card is lost in the trade")

	for p := 0; p < 4; p++ {
		require.True(t, s.Hands[(p+3)%4].Has(gives[p][0]), "first card goes right")
		require.True(t, s.Hands[(p+2)%4].Has(gives[p][1]), "second card goes to the partner")
		require.True(t, s.Hands[(p+1)%4].Has(gives[p][2]), "third card goes left")
	}

	t.Run("trades validate ownership and distinctness", func(t *testing.T) {
		fresh := NewRoundDealt(rand.New(rand.NewSource(6)))
		var err error
		for p := 0; p < 4; p++ {
			fresh, err = fresh.Apply(GrandTichuAction{Pos: p, Announce: false})
			require.NoError(t, err)
		}
		fresh, err = fresh.DealLast6()
		require.NoError(t, err)
		for p := 0; p < 4; p++ {
			fresh, err = fresh.Apply(TichuAction{Pos: p, Announce: false})
			require.NoError(t, err)
		}
		own := fresh.Hands[0].Cards()
		foreign := fresh.Hands[1].Cards()[0]

		_, err = fresh.Apply(TradeAction{Pos: 0, Give: [3]Card{own[0], own[0], own[1]}})
		require.Error(t, err, "duplicated cards in a trade")
		_, err = fresh.Apply(TradeAction{Pos: 0, Give: [3]Card{own[0], own[1], foreign}})
		require.Error(t, err, "cannot trade a card one does not hold")
	})
}

func TestDogPassesTheLead(t *testing.T) {
	s := playing(0, [4]CardSet{
		NewCardSet(Dog, MakeCard(3, Jade)),
		NewCardSet(MakeCard(4, Jade)),
		NewCardSet(MakeCard(5, Jade)),
		NewCardSet(MakeCard(6, Jade)),
	})

	dog := mustParse(t, Dog)
	next, err := s.Apply(PlayAction{Pos: 0, Comb: dog})
	require.NoError(t, err)

	require.True(t, next.Trick.Empty(), "the Dog never joins a trick")
	require.Equal(t, 2, next.Current, "the lead crosses the table to the partner")
	require.False(t, next.Hands[0].Has(Dog))

	t.Run("the Dog cannot answer a live trick", func(t *testing.T) {
		s2 := playing(0, s.Hands)
		s2.Trick = Trick{}.With(3, mustParse(t, MakeCard(9, Jade)))
		_, err := s2.Apply(PlayAction{Pos: 0, Comb: dog})
		require.Error(t, err)
	})
}

func TestWishFlow(t *testing.T) {
	s := playing(0, [4]CardSet{
		NewCardSet(MakeCard(7, Jade), MakeCard(9, Jade)),
		NewCardSet(MakeCard(4, Jade)),
		NewCardSet(MakeCard(5, Jade)),
		NewCardSet(MakeCard(RankTen, Sword)),
	})
	s.Trick = Trick{}.With(3, mustParse(t, MakeCard(3, Sword)))
	s.Wish = Rank(7)
	s.Wished = true

	t.Run("a satisfiable wish forbids passing and non-fulfilling plays", func(t *testing.T) {
		acts := s.PossibleActions()
		for _, a := range acts {
			if a.Player() != 0 {
				continue
			}
			_, isPass := a.(PassAction)
			require.False(t, isPass, "passing is forbidden while the wish is satisfiable")
			if play, ok := a.(PlayAction); ok {
				require.True(t, play.Comb.ContainsRank(7), "only fulfilling plays are offered")
			}
		}

		_, err := s.Apply(PassAction{Pos: 0})
		require.Error(t, err)
		_, err = s.Apply(PlayAction{Pos: 0, Comb: mustParse(t, MakeCard(9, Jade))})
		require.Error(t, err, "the nine dodges the wish")
	})

	t.Run("fulfilling the wish clears it", func(t *testing.T) {
		next, err := s.Apply(PlayAction{Pos: 0, Comb: mustParse(t, MakeCard(7, Jade))})
		require.NoError(t, err)
		require.Equal(t, NoRank, next.Wish)
	})

	t.Run("an unsatisfiable wish leaves play free", func(t *testing.T) {
		s2 := playing(0, s.Hands)
		s2.Trick = s.Trick
		s2.Wish = RankKing
		s2.Wished = true

		next, err := s2.Apply(PassAction{Pos: 0})
		require.NoError(t, err)
		require.Equal(t, RankKing, next.Wish, "the wish stays open for the next seat")
	})
}

func TestMahjongTriggersTheWish(t *testing.T) {
	s := playing(0, [4]CardSet{
		NewCardSet(Mahjong, MakeCard(9, Jade)),
		NewCardSet(MakeCard(4, Jade)),
		NewCardSet(MakeCard(5, Jade)),
		NewCardSet(MakeCard(6, Jade)),
	})

	next, err := s.Apply(PlayAction{Pos: 0, Comb: mustParse(t, Mahjong)})
	require.NoError(t, err)
	require.True(t, next.WishPending)
	require.Equal(t, 0, next.WishPlayer)

	t.Run("only wish actions are available", func(t *testing.T) {
		acts := next.PossibleActions()
		require.Len(t, acts, 14, "no wish plus the thirteen suited ranks")
		for _, a := range acts {
			require.IsType(t, WishAction{}, a)
		}
		_, err := next.Apply(PlayAction{Pos: 1, Comb: mustParse(t, MakeCard(4, Jade))})
		require.Error(t, err, "play halts until the wish is named")
	})

	t.Run("naming and declining", func(t *testing.T) {
		named, err := next.Apply(WishAction{Pos: 0, Rank: RankKing})
		require.NoError(t, err)
		require.Equal(t, RankKing, named.Wish)
		require.True(t, named.Wished)

		declined, err := next.Apply(WishAction{Pos: 0, Rank: NoRank})
		require.NoError(t, err)
		require.Equal(t, NoRank, declined.Wish)
		require.True(t, declined.Wished, "declining still spends the wish")

		_, err = next.Apply(WishAction{Pos: 1, Rank: RankKing})
		require.Error(t, err, "only the Mahjong player wishes")
		_, err = next.Apply(WishAction{Pos: 0, Rank: RankDragon})
		require.Error(t, err, "special ranks cannot be wished")
	})
}

func TestTrickResolution(t *testing.T) {
	s := playing(2, [4]CardSet{
		NewCardSet(MakeCard(3, Jade)),
		NewCardSet(MakeCard(RankKing, Sword), MakeCard(4, Jade)),
		NewCardSet(MakeCard(5, Jade)),
		NewCardSet(MakeCard(6, Jade)),
	})
	lead := mustParse(t, MakeCard(RankTen, Jade))
	s.Trick = Trick{}.With(1, lead)

	var err error
	for _, p := range []int{2, 3, 0} {
		s, err = s.Apply(PassAction{Pos: p})
		require.NoError(t, err)
	}

	require.True(t, s.Trick.Empty(), "three passes resolve the trick")
	require.Equal(t, 1, s.Current, "the winner leads next")
	require.Equal(t, 10, s.Captured[1].Points(), "the ten is captured by the winner")
}

func TestDragonTrick(t *testing.T) {
	s := playing(1, [4]CardSet{
		NewCardSet(MakeCard(3, Jade)),
		NewCardSet(MakeCard(4, Jade)),
		NewCardSet(MakeCard(5, Jade)),
		NewCardSet(MakeCard(6, Jade)),
	})
	s.Trick = Trick{}.With(0, mustParse(t, Dragon))

	var err error
	for _, p := range []int{1, 2, 3} {
		s, err = s.Apply(PassAction{Pos: p})
		require.NoError(t, err)
	}
	require.True(t, s.DragonPending, "a won Dragon trick awaits its give-away")

	t.Run("the trick must go to an opponent", func(t *testing.T) {
		acts := s.PossibleActions()
		require.Len(t, acts, 2)
		for _, a := range acts {
			d := a.(DragonAction)
			require.Equal(t, 0, d.Pos)
			require.False(t, SameTeam(d.Pos, d.To))
		}
		_, err := s.Apply(DragonAction{Pos: 0, To: 2})
		require.Error(t, err, "the partner cannot receive the Dragon trick")
	})

	next, err := s.Apply(DragonAction{Pos: 0, To: 3})
	require.NoError(t, err)
	require.False(t, next.DragonPending)
	require.Equal(t, 25, next.Captured[3].Points(), "the opponent holds the Dragon points")
	require.Equal(t, 0, next.Current, "the winner still leads the next trick")
}

func TestOutOfTurnBomb(t *testing.T) {
	square := NewCardSet(
		MakeCard(9, Jade), MakeCard(9, Sword), MakeCard(9, Pagoda), MakeCard(9, Star))
	s := playing(1, [4]CardSet{
		NewCardSet(MakeCard(3, Jade)),
		NewCardSet(MakeCard(4, Jade)),
		square.With(MakeCard(2, Jade)),
		NewCardSet(MakeCard(6, Jade)),
	})
	s.Trick = Trick{}.With(0, mustParse(t, MakeCard(RankAce, Jade)))
	bomb := mustParse(t, square.Cards()...)

	t.Run("the interrupt is enumerated for the off-turn seat", func(t *testing.T) {
		found := false
		for _, a := range s.PossibleActions() {
			if play, ok := a.(PlayAction); ok && play.Pos == 2 && play.Comb.IsBomb() {
				found = true
			}
		}
		require.True(t, found)
	})

	next, err := s.Apply(PlayAction{Pos: 2, Comb: bomb})
	require.NoError(t, err)
	require.Equal(t, bomb, *next.Trick.Leader())
	require.Equal(t, 3, next.Current, "play continues after the bomber")

	t.Run("no interrupt on an empty trick", func(t *testing.T) {
		s2 := playing(1, s.Hands)
		_, err := s2.Apply(PlayAction{Pos: 2, Comb: bomb})
		require.Error(t, err)
	})

	t.Run("a plain play out of turn is rejected", func(t *testing.T) {
		_, err := s.Apply(PlayAction{Pos: 3, Comb: mustParse(t, MakeCard(6, Jade))})
		require.Error(t, err)
	})
}

func TestScores(t *testing.T) {
	t.Run("double win", func(t *testing.T) {
		s := &RoundState{Phase: PhaseRoundOver, Wish: NoRank, Ranking: []int{0, 2}}
		pts, err := s.Scores()
		require.NoError(t, err)
		require.Equal(t, [4]int{200, -200, 200, -200}, pts)
	})

	t.Run("card points, leftovers and a kept tichu", func(t *testing.T) {
		s := &RoundState{
			Phase:   PhaseRoundOver,
			Wish:    NoRank,
			Ranking: []int{1, 0, 2},
			Tichu:   PlayerMask(0).With(1),
		}
		s.Captured[1] = NewCardSet(MakeCard(5, Jade))  // 5
		s.Captured[3] = NewCardSet(Dragon)             // 25, goes to the winner
		s.Hands[3] = NewCardSet(MakeCard(RankKing, Jade)) // 10, goes across

		pts, err := s.Scores()
		require.NoError(t, err)
		// Seat 1: 100 tichu + 5 captured + 25 from the loser's pile = 130.
		// Seat 0: 10 from the loser's hand. Mirrored per team.
		require.Equal(t, [4]int{10, 130, 10, 130}, pts)
	})

	t.Run("failed announcements cost their seat", func(t *testing.T) {
		s := &RoundState{
			Phase:      PhaseRoundOver,
			Wish:       NoRank,
			Ranking:    []int{0, 1, 2},
			GrandTichu: PlayerMask(0).With(3),
			Tichu:      PlayerMask(0).With(1),
		}
		pts, err := s.Scores()
		require.NoError(t, err)
		require.Equal(t, pts[1], pts[3])
		require.Equal(t, -300, pts[1], "a failed tichu and a failed grand tichu on one team")
	})

	t.Run("scoring a live round is a logic error", func(t *testing.T) {
		_, err := NewRound().Scores()
		require.True(t, errors.Is(err, ErrLogic))
	})
}

// TestRandomRoundInvariants plays whole rounds with uniformly random legal
// actions and checks the conservation laws of the scoring.
func TestRandomRoundInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for round := 0; round < 25; round++ {
		s := NewRoundDealt(rng)
		var err error
		for !s.IsTerminal() {
			if s.Phase == PhaseDeal6 {
				s, err = s.DealLast6()
				require.NoError(t, err)
				continue
			}
			acts := s.PossibleActions()
			require.NotEmpty(t, acts, "a live round always offers an action (phase %v)", s.Phase)

			// Announcements would shift the total; keep them out so the
			// 100 point card budget stays checkable.
			kept := acts[:0]
			for _, a := range acts {
				switch v := a.(type) {
				case GrandTichuAction:
					if v.Announce {
						continue
					}
				case TichuAction:
					if v.Announce {
						continue
					}
				case PlayAction:
					if v.WithTichu {
						continue
					}
				}
				kept = append(kept, a)
			}

			s, err = s.Apply(kept[rng.Intn(len(kept))])
			require.NoError(t, err)
		}

		require.GreaterOrEqual(t, len(s.Ranking), 2)
		pts, err := s.Scores()
		require.NoError(t, err)
		require.Equal(t, pts[0], pts[2], "team scores are mirrored")
		require.Equal(t, pts[1], pts[3], "team scores are mirrored")
		if s.DoubleWin() {
			require.Equal(t, 0, pts[0]+pts[1], "a double win moves a flat 200 between the teams")
		} else {
			require.Equal(t, 100, pts[0]+pts[1], "the card points always add up to the deck's 100")
		}
	}
}

func TestHashes(t *testing.T) {
	base := playing(0, [4]CardSet{
		NewCardSet(MakeCard(3, Jade), MakeCard(4, Jade)),
		NewCardSet(MakeCard(5, Jade), MakeCard(6, Jade)),
		NewCardSet(MakeCard(7, Jade), MakeCard(8, Jade)),
		NewCardSet(MakeCard(9, Jade)),
	})

	// Swap one card between the two hidden hands; sizes stay put.
	swapped := base.WithHands([4]CardSet{
		base.Hands[0],
		NewCardSet(MakeCard(7, Jade), MakeCard(6, Jade)),
		NewCardSet(MakeCard(5, Jade), MakeCard(8, Jade)),
		base.Hands[3],
	})

	require.NotEqual(t, base.Hash(), swapped.Hash(), "the full hash sees hidden hands")
	require.Equal(t, base.InfosetHash(0), swapped.InfosetHash(0),
		"seat 0 cannot tell the two states apart")
	require.NotEqual(t, base.InfosetHash(0), base.InfosetHash(1),
		"different observers have different information sets")

	other := base.WithHands([4]CardSet{
		NewCardSet(MakeCard(3, Jade), MakeCard(RankKing, Jade)),
		base.Hands[1], base.Hands[2], base.Hands[3],
	})
	require.NotEqual(t, base.InfosetHash(0), other.InfosetHash(0),
		"the observer's own hand is part of the information set")
}
