package agent

import (
	"sort"

	"tichu/game"
)

// The side decisions of a round are pulled out of the search agent into
// small strategy objects so they can be swapped independently of the
// trick-play search.

type WishStrategy interface {
	Wish(v game.View) game.Rank
}

type TradeStrategy interface {
	Trade(v game.View) [3]game.Card
}

type TichuStrategy interface {
	Announce(v game.View) bool
}

type GrandTichuStrategy interface {
	AnnounceGrand(v game.View) bool
}

type DragonStrategy interface {
	GiveTo(v game.View) int
}

// BombStrategy answers an out-of-turn bomb offer. The engine sends these
// as a view whose legal actions are a declining pass followed by the
// playable bombs.
type BombStrategy interface {
	// Bomb picks one of the offered bomb plays, or nil to hold back.
	Bomb(v game.View, bombs []game.Action) game.Action
}

// LowCardWish wishes for the lowest wishable rank missing from the
// wisher's own hand, pressuring the other seats without constraining the
// wisher's future tricks.
type LowCardWish struct{}

func (LowCardWish) Wish(v game.View) game.Rank {
	for r := game.RankTwo; r <= game.RankAce; r++ {
		if !v.Hand.HasRank(r) {
			return r
		}
	}
	return game.NoRank
}

// NoWish never wishes.
type NoWish struct{}

func (NoWish) Wish(v game.View) game.Rank { return game.NoRank }

// ClassicTrade gives the two lowest cards to the opponents and the
// highest non-special card to the partner.
type ClassicTrade struct{}

func (ClassicTrade) Trade(v game.View) [3]game.Card {
	cards := v.Hand.Cards()
	sort.Slice(cards, func(i, j int) bool { return cards[i].Rank() < cards[j].Rank() })

	toPartner := cards[len(cards)-1]
	for i := len(cards) - 1; i >= 0; i-- {
		if cards[i].Rank() <= game.RankAce {
			toPartner = cards[i]
			break
		}
	}
	var low []game.Card
	for _, c := range cards {
		if c != toPartner {
			low = append(low, c)
		}
	}
	return [3]game.Card{low[0], toPartner, low[1]}
}

// NeverTichu never announces.
type NeverTichu struct{}

func (NeverTichu) Announce(v game.View) bool { return false }

// HighCardGrandTichu announces a grand tichu when the first eight cards
// already hold the Dragon plus an Ace or the Phoenix.
type HighCardGrandTichu struct{}

func (HighCardGrandTichu) AnnounceGrand(v game.View) bool {
	if !v.Hand.Has(game.Dragon) {
		return false
	}
	return v.Hand.Has(game.Phoenix) || v.Hand.HasRank(game.RankAce)
}

// NeverGrandTichu never announces.
type NeverGrandTichu struct{}

func (NeverGrandTichu) AnnounceGrand(v game.View) bool { return false }

// PointTrickBomb throws the cheapest offered bomb when an opponent holds
// a trick worth at least Threshold points, or any trick at all while that
// opponent has a tichu or grand tichu running.
type PointTrickBomb struct {
	Threshold int
}

func (b PointTrickBomb) Bomb(v game.View, bombs []game.Action) game.Action {
	if v.Trick.Empty() {
		return nil
	}
	holder := v.Trick.LeaderPos()
	if game.SameTeam(v.Player, holder) {
		return nil
	}
	announced := v.Tichu.Has(holder) || v.GrandTichu.Has(holder)
	if v.Trick.Points() < b.Threshold && !announced {
		return nil
	}
	best := bombs[0]
	for _, a := range bombs[1:] {
		play, ok := a.(game.PlayAction)
		if !ok {
			continue
		}
		if game.Beats(best.(game.PlayAction).Comb, play.Comb) {
			best = a
		}
	}
	return best
}

// NeverBomb holds every bomb for the holder's own turn.
type NeverBomb struct{}

func (NeverBomb) Bomb(v game.View, bombs []game.Action) game.Action { return nil }

// BiggerHandDragon gives the dragon trick to the opponent holding more
// cards, the one less likely to finish soon.
type BiggerHandDragon struct{}

func (BiggerHandDragon) GiveTo(v game.View) int {
	left := (v.Player + 1) % 4
	right := (v.Player + 3) % 4
	if v.HandSizes[right] > v.HandSizes[left] {
		return right
	}
	return left
}
