package game

import "fmt"

// Action is one player decision. Every concrete action is a comparable value
// so the search tree can key edges by action.
type Action interface {
	// Player is the seat making the decision.
	Player() int
	fmt.Stringer
	isAction()
}

// PassAction declines to contest the current trick.
type PassAction struct {
	Pos int
}

// PlayAction puts a combination on the trick. WithTichu announces a Tichu
// together with the play; only legal while the hand is still untouched.
// A bomb PlayAction may carry a Pos different from the acting player of the
// state: the out-of-turn interrupt.
type PlayAction struct {
	Pos       int
	Comb      Combination
	WithTichu bool
}

// TichuAction answers the Tichu decision before trading.
type TichuAction struct {
	Pos      int
	Announce bool
}

// GrandTichuAction answers the grand Tichu decision after the first eight
// cards.
type GrandTichuAction struct {
	Pos      int
	Announce bool
}

// WishAction names the rank wished by the Mahjong player, or NoRank for no
// wish.
type WishAction struct {
	Pos  int
	Rank Rank
}

// DragonAction gives a Dragon-won trick to one of the two opponents.
type DragonAction struct {
	Pos int
	To  int
}

// TradeAction passes three cards: Give[0] to the right-hand neighbour,
// Give[1] to the partner, Give[2] to the left-hand neighbour.
type TradeAction struct {
	Pos  int
	Give [3]Card
}

func (a PassAction) Player() int       { return a.Pos }
func (a PlayAction) Player() int       { return a.Pos }
func (a TichuAction) Player() int      { return a.Pos }
func (a GrandTichuAction) Player() int { return a.Pos }
func (a WishAction) Player() int       { return a.Pos }
func (a DragonAction) Player() int     { return a.Pos }
func (a TradeAction) Player() int      { return a.Pos }

func (PassAction) isAction()       {}
func (PlayAction) isAction()       {}
func (TichuAction) isAction()      {}
func (GrandTichuAction) isAction() {}
func (WishAction) isAction()       {}
func (DragonAction) isAction()     {}
func (TradeAction) isAction()      {}

func (a PassAction) String() string { return fmt.Sprintf("Pass(%d)", a.Pos) }

func (a PlayAction) String() string {
	if a.WithTichu {
		return fmt.Sprintf("Play(%d, %v, tichu)", a.Pos, a.Comb)
	}
	return fmt.Sprintf("Play(%d, %v)", a.Pos, a.Comb)
}

func (a TichuAction) String() string {
	return fmt.Sprintf("Tichu(%d, %t)", a.Pos, a.Announce)
}

func (a GrandTichuAction) String() string {
	return fmt.Sprintf("GrandTichu(%d, %t)", a.Pos, a.Announce)
}

func (a WishAction) String() string {
	if a.Rank == NoRank {
		return fmt.Sprintf("Wish(%d, none)", a.Pos)
	}
	return fmt.Sprintf("Wish(%d, %v)", a.Pos, a.Rank)
}

func (a DragonAction) String() string {
	return fmt.Sprintf("GiveDragonTo(%d->%d)", a.Pos, a.To)
}

func (a TradeAction) String() string {
	return fmt.Sprintf("Trade(%d, %v/%v/%v)", a.Pos, a.Give[0], a.Give[1], a.Give[2])
}

// Teammate of a seat.
func Teammate(pos int) int { return (pos + 2) % 4 }

// SameTeam reports whether two seats are partners. Seats 0/2 face seats 1/3.
func SameTeam(a, b int) bool { return a%2 == b%2 }
