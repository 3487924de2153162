package agent

import (
	"fmt"

	"golang.org/x/exp/rand"

	"tichu/game"
	"tichu/searcher"
)

// Agent decides on one of the legal actions offered by a view.
type Agent interface {
	Name() string
	Act(v game.View) (game.Action, error)
}

// StateActor is implemented by agents that want the authoritative round
// state instead of a view. Search agents need it so the determinizer can
// resample the hidden hands; the engine upgrades to this interface when
// available.
type StateActor interface {
	ActState(s *game.RoundState, observer int) (game.Action, error)
}

// RandomAgent plays uniformly at random among the legal actions.
type RandomAgent struct {
	name string
	rng  *rand.Rand
}

func NewRandomAgent(name string, seed uint64) *RandomAgent {
	return &RandomAgent{name: name, rng: rand.New(rand.NewSource(seed))}
}

func (a *RandomAgent) Name() string { return a.name }

func (a *RandomAgent) Act(v game.View) (game.Action, error) {
	if len(v.Legal) == 0 {
		return nil, fmt.Errorf("agent %s: no legal action for seat %d", a.name, v.Player)
	}
	return v.Legal[a.rng.Intn(len(v.Legal))], nil
}

// SearchAgent plays tricks with tree search and delegates the side
// decisions (announcements, trading, wishes, the dragon trick) to
// injected strategies.
type SearchAgent struct {
	name       string
	search     *searcher.ISMCTS
	wish       WishStrategy
	trade      TradeStrategy
	tichu      TichuStrategy
	grandTichu GrandTichuStrategy
	dragon     DragonStrategy
	bomb       BombStrategy
}

type AgentOption func(a *SearchAgent)

func WithWishStrategy(s WishStrategy) AgentOption {
	return func(a *SearchAgent) {
		if s != nil {
			a.wish = s
		}
	}
}

func WithTradeStrategy(s TradeStrategy) AgentOption {
	return func(a *SearchAgent) {
		if s != nil {
			a.trade = s
		}
	}
}

func WithTichuStrategy(s TichuStrategy) AgentOption {
	return func(a *SearchAgent) {
		if s != nil {
			a.tichu = s
		}
	}
}

func WithGrandTichuStrategy(s GrandTichuStrategy) AgentOption {
	return func(a *SearchAgent) {
		if s != nil {
			a.grandTichu = s
		}
	}
}

func WithDragonStrategy(s DragonStrategy) AgentOption {
	return func(a *SearchAgent) {
		if s != nil {
			a.dragon = s
		}
	}
}

func WithBombStrategy(s BombStrategy) AgentOption {
	return func(a *SearchAgent) {
		if s != nil {
			a.bomb = s
		}
	}
}

func NewSearchAgent(name string, search *searcher.ISMCTS, options ...AgentOption) *SearchAgent {
	a := &SearchAgent{
		name:       name,
		search:     search,
		wish:       LowCardWish{},
		trade:      ClassicTrade{},
		tichu:      NeverTichu{},
		grandTichu: HighCardGrandTichu{},
		dragon:     BiggerHandDragon{},
		bomb:       PointTrickBomb{Threshold: 10},
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *SearchAgent) Name() string { return a.name }

// Act answers from the view alone. Bomb interrupt offers go to the bomb
// strategy; without the authoritative state there is nothing to
// determinize, so any other trick play falls back to the first legal
// action. The engine calls ActState for the turn move instead.
func (a *SearchAgent) Act(v game.View) (game.Action, error) {
	if act, ok := a.delegate(v); ok {
		return act, nil
	}
	if len(v.Legal) == 0 {
		return nil, fmt.Errorf("agent %s: no legal action for seat %d", a.name, v.Player)
	}
	if bombs, ok := bombOffer(v.Legal); ok {
		if act := a.bomb.Bomb(v, bombs); act != nil {
			return act, nil
		}
	}
	return v.Legal[0], nil
}

// bombOffer recognizes the interrupt shape the engine sends to off-turn
// seats: a declining pass followed only by bomb plays.
func bombOffer(legal []game.Action) ([]game.Action, bool) {
	if len(legal) < 2 {
		return nil, false
	}
	if _, ok := legal[0].(game.PassAction); !ok {
		return nil, false
	}
	for _, act := range legal[1:] {
		play, ok := act.(game.PlayAction)
		if !ok || !play.Comb.IsBomb() {
			return nil, false
		}
	}
	return legal[1:], true
}

func (a *SearchAgent) ActState(s *game.RoundState, observer int) (game.Action, error) {
	v := game.Encode(s, observer)
	if act, ok := a.delegate(v); ok {
		return act, nil
	}
	act, _, err := a.search.Search(s, observer)
	return act, err
}

// delegate resolves the decision through a strategy when the pending
// decision is not trick play.
func (a *SearchAgent) delegate(v game.View) (game.Action, bool) {
	if len(v.Legal) == 0 {
		return nil, false
	}
	switch v.Legal[0].(type) {
	case game.GrandTichuAction:
		return game.GrandTichuAction{Pos: v.Player, Announce: a.grandTichu.AnnounceGrand(v)}, true
	case game.TichuAction:
		announce := a.tichu.Announce(v) && !v.GrandTichu.Has(v.Player)
		return game.TichuAction{Pos: v.Player, Announce: announce}, true
	case game.TradeAction:
		return game.TradeAction{Pos: v.Player, Give: a.trade.Trade(v)}, true
	case game.WishAction:
		return game.WishAction{Pos: v.Player, Rank: a.wish.Wish(v)}, true
	case game.DragonAction:
		return game.DragonAction{Pos: v.Player, To: a.dragon.GiveTo(v)}, true
	}
	return nil, false
}
