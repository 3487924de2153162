package game

import (
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/exp/rand"
)

// Phase is the lifecycle stage of a round.
type Phase uint8

const (
	PhaseDeal8 Phase = iota
	PhaseGrandTichu
	PhaseDeal6
	PhaseTichu
	PhaseTrading
	PhasePlaying
	PhaseRoundOver
)

var phaseNames = [...]string{
	"deal8", "grand-tichu", "deal6", "tichu", "trading", "playing", "round-over",
}

func (p Phase) String() string { return phaseNames[p] }

// PlayerMask is a set of seats 0-3.
type PlayerMask uint8

func (m PlayerMask) Has(pos int) bool        { return m&(1<<pos) != 0 }
func (m PlayerMask) With(pos int) PlayerMask { return m | 1<<pos }
func (m PlayerMask) Count() int {
	n := 0
	for p := 0; p < 4; p++ {
		if m.Has(p) {
			n++
		}
	}
	return n
}

// StateHash is a 64-bit digest of a state or an information set.
type StateHash uint64

// RoundState is an immutable snapshot of a round. It is advanced only by
// Apply, which validates the action and returns a fresh snapshot; a rejected
// action returns an error and leaves the receiver untouched. Snapshots share
// no mutable data, so they may be read concurrently from any number of
// search branches.
type RoundState struct {
	Phase   Phase
	Current int

	Hands    [4]CardSet
	Captured [4]CardSet
	Trick    Trick

	Wish        Rank
	Wished      bool
	WishPending bool
	WishPlayer  int

	DragonPending bool

	Ranking    []int
	Tichu      PlayerMask
	GrandTichu PlayerMask

	LastAction Action

	decided       PlayerMask
	traded        PlayerMask
	pendingTrades [4][3]Card
	last6         [4]CardSet
}

// NewRound is the state before any card is dealt.
func NewRound() *RoundState {
	return &RoundState{Phase: PhaseDeal8, Wish: NoRank}
}

// NewRoundDealt deals the first eight cards and returns the state at the
// grand tichu decision.
func NewRoundDealt(rng *rand.Rand) *RoundState {
	s, err := NewRound().DealFirst8(rng)
	if err != nil {
		panic(err)
	}
	return s
}

// DealFirst8 deals eight cards to each seat. The remaining six per seat are
// fixed now and handed out when the grand tichu decisions are in.
func (s *RoundState) DealFirst8(rng *rand.Rand) (*RoundState, error) {
	if s.Phase != PhaseDeal8 {
		return s, logicErrorf("deal8 in phase %v", s.Phase)
	}
	n := s.clone()
	n.Hands, n.last6 = Deal(rng)
	n.Phase = PhaseGrandTichu
	n.Current = 0
	return n, nil
}

func (s *RoundState) clone() *RoundState {
	n := *s
	n.Ranking = append([]int(nil), s.Ranking...)
	return &n
}

// WithHands replaces all four hands, keeping everything else. Used by
// determinization; the caller must keep hand sizes and the card universe
// consistent.
func (s *RoundState) WithHands(hands [4]CardSet) *RoundState {
	n := s.clone()
	n.Hands = hands
	return n
}

// UnseenCards are the cards hidden from observer: everyone else's hands.
func (s *RoundState) UnseenCards(observer int) CardSet {
	var u CardSet
	for p := 0; p < 4; p++ {
		if p != observer {
			u = u.Union(s.Hands[p])
		}
	}
	return u
}

func (s *RoundState) IsTerminal() bool { return s.Phase == PhaseRoundOver }

// DoubleWin reports whether the first two finishers are partners.
func (s *RoundState) DoubleWin() bool {
	return len(s.Ranking) >= 2 && SameTeam(s.Ranking[0], s.Ranking[1])
}

func (s *RoundState) hasCards(pos int) bool { return !s.Hands[pos].Empty() }

func (s *RoundState) playersWithCards() int {
	n := 0
	for p := 0; p < 4; p++ {
		if s.hasCards(p) {
			n++
		}
	}
	return n
}

// nextActive is the next seat with cards strictly after from, in rotation.
func (s *RoundState) nextActive(from int) int {
	for i := 1; i <= 4; i++ {
		p := (from + i) % 4
		if s.hasCards(p) {
			return p
		}
	}
	return from
}

func (s *RoundState) tichuAllowed(pos int) bool {
	return s.Hands[pos].Count() == HandSize &&
		!s.Tichu.Has(pos) && !s.GrandTichu.Has(pos)
}

// mandatoryPlays computes the legal combinations for the acting player with
// the wish rule folded in: when the wish can be fulfilled, only fulfilling
// plays remain and passing is forbidden.
func (s *RoundState) mandatoryPlays() (combs []Combination, canPass bool) {
	leader := s.Trick.Leader()
	combs, fulfils := LegalPlays(s.Hands[s.Current], leader, s.Wish)
	if fulfils {
		kept := combs[:0]
		for _, c := range combs {
			if c.ContainsRank(s.Wish) {
				kept = append(kept, c)
			}
		}
		return kept, false
	}
	return combs, leader != nil
}

// PossibleActions enumerates every action legal in this state, including
// out-of-turn bomb interrupts by other seats during play.
func (s *RoundState) PossibleActions() []Action {
	switch s.Phase {
	case PhaseGrandTichu:
		return []Action{
			GrandTichuAction{Pos: s.Current, Announce: true},
			GrandTichuAction{Pos: s.Current, Announce: false},
		}
	case PhaseTichu:
		acts := []Action{TichuAction{Pos: s.Current, Announce: false}}
		if !s.GrandTichu.Has(s.Current) {
			acts = append(acts, TichuAction{Pos: s.Current, Announce: true})
		}
		return acts
	case PhaseTrading:
		return s.tradeActions()
	case PhasePlaying:
		return s.playActions()
	}
	return nil
}

func (s *RoundState) tradeActions() []Action {
	cards := s.Hands[s.Current].Cards()
	var acts []Action
	for _, right := range cards {
		for _, partner := range cards {
			if partner == right {
				continue
			}
			for _, left := range cards {
				if left == right || left == partner {
					continue
				}
				acts = append(acts, TradeAction{Pos: s.Current, Give: [3]Card{right, partner, left}})
			}
		}
	}
	return acts
}

func (s *RoundState) playActions() []Action {
	if s.DragonPending {
		winner := s.Trick.LeaderPos()
		return []Action{
			DragonAction{Pos: winner, To: (winner + 1) % 4},
			DragonAction{Pos: winner, To: (winner + 3) % 4},
		}
	}
	if s.WishPending {
		acts := make([]Action, 0, 14)
		acts = append(acts, WishAction{Pos: s.WishPlayer, Rank: NoRank})
		for r := RankTwo; r <= RankAce; r++ {
			acts = append(acts, WishAction{Pos: s.WishPlayer, Rank: r})
		}
		return acts
	}

	combs, canPass := s.mandatoryPlays()
	acts := make([]Action, 0, len(combs)+1)
	if canPass {
		acts = append(acts, PassAction{Pos: s.Current})
	}
	tichuOK := s.tichuAllowed(s.Current)
	for _, c := range combs {
		acts = append(acts, PlayAction{Pos: s.Current, Comb: c})
		if tichuOK {
			acts = append(acts, PlayAction{Pos: s.Current, Comb: c, WithTichu: true})
		}
	}

	// The out-of-turn interrupt: any other seat holding a bomb that beats
	// the live trick may throw it now.
	if leader := s.Trick.Leader(); leader != nil {
		for p := 0; p < 4; p++ {
			if p == s.Current || !s.hasCards(p) {
				continue
			}
			for _, b := range Bombs(s.Hands[p], leader) {
				acts = append(acts, PlayAction{Pos: p, Comb: b})
			}
		}
	}
	return acts
}

// Apply validates the action against the current phase and legality rules,
// returning the successor state. On failure the receiver is returned
// unchanged alongside the error: transitions are atomic.
func (s *RoundState) Apply(action Action) (*RoundState, error) {
	switch a := action.(type) {
	case GrandTichuAction:
		return s.applyGrandTichu(a)
	case TichuAction:
		return s.applyTichu(a)
	case TradeAction:
		return s.applyTrade(a)
	case PlayAction:
		return s.applyPlay(a)
	case PassAction:
		return s.applyPass(a)
	case WishAction:
		return s.applyWish(a)
	case DragonAction:
		return s.applyDragon(a)
	}
	return s, illegal(action.Player(), action, "unknown action type")
}

func (s *RoundState) applyGrandTichu(a GrandTichuAction) (*RoundState, error) {
	if s.Phase != PhaseGrandTichu {
		return s, illegal(a.Pos, a, "not in the grand tichu phase")
	}
	if a.Pos != s.Current {
		return s, illegal(a.Pos, a, "not this seat's decision")
	}
	n := s.clone()
	n.decided = n.decided.With(a.Pos)
	if a.Announce {
		n.GrandTichu = n.GrandTichu.With(a.Pos)
	}
	n.LastAction = a
	if n.decided == 0b1111 {
		n.Phase = PhaseDeal6
	} else {
		n.Current = a.Pos + 1
	}
	return n, nil
}

// DealLast6 hands out the six cards per seat held back during the grand
// tichu decision and opens the tichu phase.
func (s *RoundState) DealLast6() (*RoundState, error) {
	if s.Phase != PhaseDeal6 {
		return s, logicErrorf("deal6 in phase %v", s.Phase)
	}
	n := s.clone()
	for p := 0; p < 4; p++ {
		n.Hands[p] = n.Hands[p].Union(n.last6[p])
		n.last6[p] = 0
	}
	n.Phase = PhaseTichu
	n.decided = 0
	n.Current = 0
	return n, nil
}

func (s *RoundState) applyTichu(a TichuAction) (*RoundState, error) {
	if s.Phase != PhaseTichu {
		return s, illegal(a.Pos, a, "not in the tichu phase")
	}
	if a.Pos != s.Current {
		return s, illegal(a.Pos, a, "not this seat's decision")
	}
	if a.Announce && s.GrandTichu.Has(a.Pos) {
		return s, illegal(a.Pos, a, "already announced grand tichu")
	}
	n := s.clone()
	n.decided = n.decided.With(a.Pos)
	if a.Announce {
		n.Tichu = n.Tichu.With(a.Pos)
	}
	n.LastAction = a
	if n.decided == 0b1111 {
		n.Phase = PhaseTrading
		n.decided = 0
		n.Current = 0
	} else {
		n.Current = a.Pos + 1
	}
	return n, nil
}

func (s *RoundState) applyTrade(a TradeAction) (*RoundState, error) {
	if s.Phase != PhaseTrading {
		return s, illegal(a.Pos, a, "not in the trading phase")
	}
	if s.traded.Has(a.Pos) {
		return s, illegal(a.Pos, a, "already traded")
	}
	give := NewCardSet(a.Give[0], a.Give[1], a.Give[2])
	if give.Count() != 3 {
		return s, illegal(a.Pos, a, "must trade three distinct cards")
	}
	if !give.SubsetOf(s.Hands[a.Pos]) {
		return s, illegal(a.Pos, a, "cards not owned")
	}

	n := s.clone()
	n.traded = n.traded.With(a.Pos)
	n.pendingTrades[a.Pos] = a.Give
	n.LastAction = a
	if n.traded == 0b1111 {
		n.executeTrades()
	} else {
		for p := 0; p < 4; p++ {
			if !n.traded.Has(p) {
				n.Current = p
				break
			}
		}
	}
	return n, nil
}

// executeTrades moves all twelve cards at once and opens play with the
// Mahjong holder.
func (n *RoundState) executeTrades() {
	for from := 0; from < 4; from++ {
		give := n.pendingTrades[from]
		recipients := [3]int{(from + 3) % 4, (from + 2) % 4, (from + 1) % 4}
		for i, card := range give {
			n.Hands[from] = n.Hands[from].Without(NewCardSet(card))
			n.Hands[recipients[i]] = n.Hands[recipients[i]].With(card)
		}
	}
	n.Phase = PhasePlaying
	for p := 0; p < 4; p++ {
		if n.Hands[p].Has(Mahjong) {
			n.Current = p
			break
		}
	}
}

func (s *RoundState) applyPlay(a PlayAction) (*RoundState, error) {
	if s.Phase != PhasePlaying {
		return s, illegal(a.Pos, a, "not in the playing phase")
	}
	if s.DragonPending {
		return s, illegal(a.Pos, a, "dragon trick must be given away first")
	}
	if s.WishPending {
		return s, illegal(a.Pos, a, "wish must be named first")
	}
	if !a.Comb.Cards.SubsetOf(s.Hands[a.Pos]) {
		return s, illegal(a.Pos, a, "cards not owned")
	}

	leader := s.Trick.Leader()
	if a.Pos != s.Current {
		// Out of turn is only ever a bomb onto a live trick.
		if !a.Comb.IsBomb() {
			return s, illegal(a.Pos, a, "not this seat's turn")
		}
		if leader == nil {
			return s, illegal(a.Pos, a, "bomb interrupt needs a live trick")
		}
		if !containsComb(Bombs(s.Hands[a.Pos], leader), a.Comb) {
			return s, illegal(a.Pos, a, "bomb does not beat the trick")
		}
		if a.WithTichu {
			return s, illegal(a.Pos, a, "cannot announce tichu out of turn")
		}
	} else {
		combs, _ := s.mandatoryPlays()
		if !containsComb(combs, a.Comb) {
			if s.Wish.Wishable() {
				return s, illegal(a.Pos, a, "play is not legal here (check shape, height and wish)")
			}
			return s, illegal(a.Pos, a, "play does not beat the trick or is malformed")
		}
	}
	if a.WithTichu && !s.tichuAllowed(a.Pos) {
		return s, illegal(a.Pos, a, "tichu may only ride on the first play of a full hand")
	}

	n := s.clone()
	n.LastAction = a
	n.Hands[a.Pos] = n.Hands[a.Pos].Without(a.Comb.Cards)
	if a.WithTichu {
		n.Tichu = n.Tichu.With(a.Pos)
	}

	if a.Comb.Kind == Single && a.Comb.Cards.Has(Dog) {
		// The Dog skips trick contention: the lead moves across the table
		// and the card itself is worth nothing to anyone.
		n.finishIfDone(a.Pos)
		if n.Phase == PhaseRoundOver {
			return n, nil
		}
		n.Current = n.nextActive(a.Pos + 1)
		return n, nil
	}

	n.Trick = n.Trick.With(a.Pos, a.Comb)
	if n.Wish.Wishable() && a.Comb.ContainsRank(n.Wish) {
		n.Wish = NoRank
	}
	if a.Comb.Cards.Has(Mahjong) && !n.Wished {
		n.WishPending = true
		n.WishPlayer = a.Pos
	}
	n.finishIfDone(a.Pos)
	if n.Phase == PhaseRoundOver {
		return n, nil
	}
	n.Current = n.nextActive(a.Pos)
	return n, nil
}

func containsComb(combs []Combination, c Combination) bool {
	for _, x := range combs {
		if x == c {
			return true
		}
	}
	return false
}

// finishIfDone appends a freshly emptied hand to the ranking and ends the
// round on a double win or when a single seat is left holding cards. Any
// live trick is credited to its leader at that point; a pending Dragon
// decision is overridden, the cards stay with the leader.
func (n *RoundState) finishIfDone(pos int) {
	if n.Hands[pos].Empty() {
		n.Ranking = append(n.Ranking, pos)
	}
	if n.DoubleWin() || len(n.Ranking) >= 3 {
		if !n.Trick.Empty() {
			n.Captured[n.Trick.LeaderPos()] = n.Captured[n.Trick.LeaderPos()].Union(n.Trick.Cards())
			n.Trick = Trick{}
		}
		n.WishPending = false
		n.DragonPending = false
		n.Phase = PhaseRoundOver
	}
}

func (s *RoundState) applyPass(a PassAction) (*RoundState, error) {
	if s.Phase != PhasePlaying {
		return s, illegal(a.Pos, a, "not in the playing phase")
	}
	if s.DragonPending || s.WishPending {
		return s, illegal(a.Pos, a, "a decision is pending")
	}
	if a.Pos != s.Current {
		return s, illegal(a.Pos, a, "not this seat's turn")
	}
	if s.Trick.Empty() {
		return s, illegal(a.Pos, a, "cannot pass on an empty trick")
	}
	if _, canPass := s.mandatoryPlays(); !canPass {
		return s, illegal(a.Pos, a, "the wish must be fulfilled")
	}

	n := s.clone()
	n.LastAction = a
	n.Trick = n.Trick.WithPass()

	winner := n.Trick.LeaderPos()
	required := n.playersWithCards()
	if n.hasCards(winner) {
		required--
	}
	if n.Trick.Passes() >= required {
		n.resolveTrick(winner)
	} else {
		n.Current = n.nextActive(a.Pos)
	}
	return n, nil
}

// resolveTrick hands the trick to its winner, or parks it behind the Dragon
// decision.
func (n *RoundState) resolveTrick(winner int) {
	if n.Trick.DragonLed() {
		n.DragonPending = true
		n.Current = winner
		return
	}
	n.Captured[winner] = n.Captured[winner].Union(n.Trick.Cards())
	n.Trick = Trick{}
	if n.hasCards(winner) {
		n.Current = winner
	} else {
		n.Current = n.nextActive(winner)
	}
}

func (s *RoundState) applyWish(a WishAction) (*RoundState, error) {
	if s.Phase != PhasePlaying || !s.WishPending {
		return s, illegal(a.Pos, a, "no wish is due")
	}
	if a.Pos != s.WishPlayer {
		return s, illegal(a.Pos, a, "only the Mahjong player wishes")
	}
	if a.Rank != NoRank && !a.Rank.Wishable() {
		return s, illegal(a.Pos, a, "wish must name a suited rank")
	}
	n := s.clone()
	n.LastAction = a
	n.Wish = a.Rank
	n.Wished = true
	n.WishPending = false
	return n, nil
}

func (s *RoundState) applyDragon(a DragonAction) (*RoundState, error) {
	if s.Phase != PhasePlaying || !s.DragonPending {
		return s, illegal(a.Pos, a, "no dragon trick to give away")
	}
	winner := s.Trick.LeaderPos()
	if a.Pos != winner {
		return s, illegal(a.Pos, a, "only the trick winner gives the dragon")
	}
	if SameTeam(a.Pos, a.To) {
		return s, illegal(a.Pos, a, "the dragon trick goes to an opponent")
	}
	n := s.clone()
	n.LastAction = a
	n.Captured[a.To] = n.Captured[a.To].Union(n.Trick.Cards())
	n.Trick = Trick{}
	n.DragonPending = false
	if n.hasCards(winner) {
		n.Current = winner
	} else {
		n.Current = n.nextActive(winner)
	}
	return n, nil
}

// Scores settles the finished round: captured card points, the last seat's
// leftovers, and the tichu bonuses, mirrored onto both members of each team.
// Calling it on a live round is an engine defect.
func (s *RoundState) Scores() ([4]int, error) {
	var pts [4]int
	if !s.IsTerminal() {
		return pts, logicErrorf("scoring a live round (phase %v)", s.Phase)
	}
	if len(s.Ranking) < 2 || len(s.Ranking) > 4 {
		return pts, logicErrorf("ranking has %d entries", len(s.Ranking))
	}

	first := s.Ranking[0]
	for p := 0; p < 4; p++ {
		if s.GrandTichu.Has(p) {
			if p == first {
				pts[p] += 200
			} else {
				pts[p] -= 200
			}
		}
		if s.Tichu.Has(p) {
			if p == first {
				pts[p] += 100
			} else {
				pts[p] -= 100
			}
		}
	}

	ranking := append([]int(nil), s.Ranking...)
	for p := 0; p < 4; p++ {
		seen := false
		for _, r := range ranking {
			if r == p {
				seen = true
				break
			}
		}
		if !seen {
			ranking = append(ranking, p)
		}
	}

	if s.DoubleWin() {
		pts[ranking[0]] += 100
		pts[ranking[1]] += 100
		pts[ranking[2]] -= 100
		pts[ranking[3]] -= 100
	} else {
		for i := 0; i < 3; i++ {
			p := ranking[i]
			pts[p] += s.Captured[p].Points()
		}
		last := ranking[3]
		pts[ranking[0]] += s.Captured[last].Points()
		// The loser's leftover hand goes to the opposing team.
		pts[(last+1)%4] += s.Hands[last].Points()
	}

	t02 := pts[0] + pts[2]
	t13 := pts[1] + pts[3]
	pts[0], pts[2] = t02, t02
	pts[1], pts[3] = t13, t13
	return pts, nil
}

// Hash digests the full state, hidden hands included.
func (s *RoundState) Hash() StateHash {
	return s.digest(func(h *fnvWriter) {
		for p := 0; p < 4; p++ {
			h.write(uint64(s.Hands[p]))
		}
	})
}

// InfosetHash digests the state as seen by observer: their own hand, the
// public state, and only the sizes of the other hands. States inside one
// information set share a hash.
func (s *RoundState) InfosetHash(observer int) StateHash {
	return s.digest(func(h *fnvWriter) {
		h.write(uint64(observer))
		h.write(uint64(s.Hands[observer]))
		for p := 0; p < 4; p++ {
			h.write(uint64(s.Hands[p].Count()))
		}
	})
}

type fnvWriter struct{ inner interface{ Write([]byte) (int, error) } }

func (h *fnvWriter) write(v uint64) {
	binary.Write(h.inner, binary.LittleEndian, v)
}

func (s *RoundState) digest(hands func(*fnvWriter)) StateHash {
	hasher := fnv.New64a()
	h := &fnvWriter{inner: hasher}

	h.write(uint64(s.Phase))
	h.write(uint64(s.Current))
	h.write(uint64(int64(s.Wish)))
	h.write(boolBit(s.Wished)<<2 | boolBit(s.WishPending)<<1 | boolBit(s.DragonPending))
	h.write(uint64(s.Tichu))
	h.write(uint64(s.GrandTichu))
	h.write(uint64(s.decided))
	h.write(uint64(s.traded))
	for _, r := range s.Ranking {
		h.write(uint64(r + 1))
	}
	for p := 0; p < 4; p++ {
		h.write(uint64(s.Captured[p]))
	}
	for _, play := range s.Trick.Plays() {
		h.write(uint64(play.Pos))
		h.write(uint64(play.Comb.Cards))
		h.write(uint64(int64(play.Comb.height)))
	}
	h.write(uint64(s.Trick.Passes()))
	hands(h)
	return StateHash(hasher.Sum64())
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
