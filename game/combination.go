package game

import (
	"fmt"
	"sort"
)

// CombinationKind tags the shape of a play.
type CombinationKind uint8

const (
	Single CombinationKind = iota
	Pair
	Trio
	Straight
	PairSteps
	FullHouse
	SquareBomb
	StraightBomb
)

var kindNames = [...]string{
	"Single", "Pair", "Trio", "Straight", "PairSteps", "FullHouse",
	"SquareBomb", "StraightBomb",
}

func (k CombinationKind) String() string { return kindNames[k] }

// Bomb reports whether the kind may be played out of turn and beats any
// non-bomb combination.
func (k CombinationKind) Bomb() bool { return k == SquareBomb || k == StraightBomb }

// Combination is a classified, playable group of cards. It is a comparable
// value and is used directly as a map key in the search tree.
//
// The comparison height is kept in half steps (two units per rank) so that a
// Phoenix single can sit between two genuine ranks: a Phoenix claiming rank R
// has height 2R-1, beating a genuine R-1 but losing to a genuine R.
type Combination struct {
	Kind      CombinationKind
	Cards     CardSet
	height    int16
	length    uint8
	phoenixAs Rank
}

// Length is the number of cards; for PairSteps it is twice the pair count.
func (c Combination) Length() int { return int(c.length) }

// Height is the scaled comparison height within the (kind, length) class.
func (c Combination) Height() int { return int(c.height) }

// Rank is the highest constituent rank, with the Phoenix counting as the
// rank it substitutes.
func (c Combination) Rank() Rank { return Rank((c.height + 1) / 2) }

// PhoenixAs is the rank the Phoenix substitutes, or NoRank.
func (c Combination) PhoenixAs() Rank { return c.phoenixAs }

func (c Combination) IsBomb() bool { return c.Kind.Bomb() }

// ContainsRank reports whether the combination fulfils a wish for r.
// The Phoenix never fulfils a wish, whatever it substitutes.
func (c Combination) ContainsRank(r Rank) bool { return c.Cards.Without(NewCardSet(Phoenix)).HasRank(r) }

func (c Combination) Points() int { return c.Cards.Points() }

func (c Combination) String() string {
	if c.phoenixAs != NoRank {
		return fmt.Sprintf("%v%v(Phx=%v)", c.Kind, c.Cards, c.phoenixAs)
	}
	return fmt.Sprintf("%v%v", c.Kind, c.Cards)
}

// heightOf is the scaled height of a genuine rank.
func heightOf(r Rank) int16 { return int16(r) * 2 }

// NewSingle classifies one card. A Phoenix single initially claims the
// lowest rank (just above Mahjong); the claim is raised when it is played
// onto another single.
func NewSingle(card Card) Combination {
	c := Combination{Kind: Single, Cards: NewCardSet(card), length: 1, phoenixAs: NoRank}
	if card == Phoenix {
		c.phoenixAs = RankTwo
		c.height = heightOf(RankTwo) - 1
	} else {
		c.height = heightOf(card.Rank())
	}
	return c
}

// WithPhoenixClaim returns a copy of a Phoenix single claiming the given
// rank. It is a no-op for anything that is not a Phoenix single.
func (c Combination) WithPhoenixClaim(r Rank) Combination {
	if c.Kind != Single || !c.Cards.Has(Phoenix) {
		return c
	}
	c.phoenixAs = r
	c.height = heightOf(r) - 1
	return c
}

// ParseCombination classifies a card set into exactly one combination kind,
// or returns a MalformedCombinationError. When the set contains the Phoenix
// its substitution is inferred: the joined rank for pairs, trios and full
// houses, and for straights the unique gap (or the top extension, falling
// back to the bottom at the Ace).
func ParseCombination(cards CardSet) (Combination, error) {
	n := cards.Count()
	if n == 0 {
		return Combination{}, malformed(cards, "empty set")
	}
	if n == 1 {
		return NewSingle(cards.Cards()[0]), nil
	}

	// Dog and Dragon never join a multi-card shape.
	if cards.Has(Dog) || cards.Has(Dragon) {
		return Combination{}, malformed(cards, "Dog and Dragon only play alone")
	}

	if c, ok := parseSameRank(cards, n); ok {
		return c, nil
	}
	if n%2 == 0 && !cards.Has(Mahjong) {
		if c, ok := parsePairSteps(cards, n); ok {
			return c, nil
		}
	}
	if n == 5 {
		if c, ok := parseFullHouse(cards); ok {
			return c, nil
		}
	}
	if n >= 5 {
		if c, ok := parseStraight(cards, n); ok {
			return c, nil
		}
	}
	return Combination{}, malformed(cards, "no known shape")
}

// parseSameRank handles pairs, trios and square bombs, Phoenix allowed for
// the first two.
func parseSameRank(cards CardSet, n int) (Combination, bool) {
	if n > 4 || cards.Has(Mahjong) {
		return Combination{}, false
	}
	phoenix := cards.Has(Phoenix)
	suited := cards.Without(NewCardSet(Phoenix))
	rank := NoRank
	for _, c := range suited.Cards() {
		if rank == NoRank {
			rank = c.Rank()
		} else if c.Rank() != rank {
			return Combination{}, false
		}
	}

	comb := Combination{Cards: cards, height: heightOf(rank), length: uint8(n), phoenixAs: NoRank}
	if phoenix {
		comb.phoenixAs = rank
	}
	switch n {
	case 2:
		comb.Kind = Pair
	case 3:
		comb.Kind = Trio
	case 4:
		if phoenix {
			// Phoenix never completes a bomb.
			return Combination{}, false
		}
		comb.Kind = SquareBomb
	default:
		return Combination{}, false
	}
	return comb, true
}

func parseFullHouse(cards CardSet) (Combination, bool) {
	phoenix := cards.Has(Phoenix)
	if cards.Has(Mahjong) {
		return Combination{}, false
	}
	groups := cards.Without(NewCardSet(Phoenix)).byRank()

	var ranks []Rank
	for r := RankTwo; r <= RankAce; r++ {
		if len(groups[r]) > 0 {
			ranks = append(ranks, r)
		}
	}
	if len(ranks) != 2 {
		return Combination{}, false
	}
	a, b := len(groups[ranks[0]]), len(groups[ranks[1]])

	trioRank, phoenixAs := NoRank, NoRank
	switch {
	case !phoenix && a == 3 && b == 2:
		trioRank = ranks[0]
	case !phoenix && a == 2 && b == 3:
		trioRank = ranks[1]
	case phoenix && a == 3 && b == 1:
		trioRank, phoenixAs = ranks[0], ranks[1]
	case phoenix && a == 1 && b == 3:
		trioRank, phoenixAs = ranks[1], ranks[0]
	case phoenix && a == 2 && b == 2:
		// Phoenix joins the higher pair as the trio.
		trioRank, phoenixAs = ranks[1], ranks[1]
	default:
		return Combination{}, false
	}
	return Combination{
		Kind: FullHouse, Cards: cards,
		height: heightOf(trioRank), length: 5, phoenixAs: phoenixAs,
	}, true
}

func parsePairSteps(cards CardSet, n int) (Combination, bool) {
	phoenix := cards.Has(Phoenix)
	groups := cards.Without(NewCardSet(Phoenix)).byRank()

	var ranks []Rank
	phoenixAs := NoRank
	for r := RankTwo; r <= RankAce; r++ {
		switch len(groups[r]) {
		case 0:
		case 2:
			ranks = append(ranks, r)
		case 1:
			if !phoenix || phoenixAs != NoRank {
				return Combination{}, false
			}
			phoenixAs = r
			ranks = append(ranks, r)
		default:
			return Combination{}, false
		}
	}
	if phoenix && phoenixAs == NoRank {
		return Combination{}, false
	}
	if len(ranks) < 2 || len(ranks) != n/2 {
		return Combination{}, false
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return Combination{}, false
		}
	}
	return Combination{
		Kind: PairSteps, Cards: cards,
		height: heightOf(ranks[len(ranks)-1]), length: uint8(n), phoenixAs: phoenixAs,
	}, true
}

func parseStraight(cards CardSet, n int) (Combination, bool) {
	phoenix := cards.Has(Phoenix)
	suited := cards.Without(NewCardSet(Phoenix))

	ranks := make([]Rank, 0, n)
	suit := Suit(255)
	oneSuit := true
	for _, c := range suited.Cards() {
		ranks = append(ranks, c.Rank())
		if suit == 255 {
			suit = c.Suit()
		} else if c.Suit() != suit {
			oneSuit = false
		}
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return Combination{}, false
		}
	}

	gaps := 0
	gapRank := NoRank
	for i := 1; i < len(ranks); i++ {
		switch ranks[i] - ranks[i-1] {
		case 1:
		case 2:
			gaps++
			gapRank = ranks[i] - 1
		default:
			return Combination{}, false
		}
	}

	top := ranks[len(ranks)-1]
	phoenixAs := NoRank
	switch {
	case !phoenix && gaps == 0:
	case phoenix && gaps == 1:
		phoenixAs = gapRank
	case phoenix && gaps == 0 && top < RankAce:
		phoenixAs = top + 1
		top = phoenixAs
	case phoenix && gaps == 0 && ranks[0] > RankTwo:
		// Top is an Ace; the Phoenix extends at the bottom instead.
		phoenixAs = ranks[0] - 1
	default:
		return Combination{}, false
	}

	kind := Straight
	if !phoenix && oneSuit && !cards.Has(Mahjong) {
		kind = StraightBomb
	}
	return Combination{
		Kind: kind, Cards: cards,
		height: heightOf(top), length: uint8(n), phoenixAs: phoenixAs,
	}, true
}

// Beats reports whether a wins over b when played onto it. Bombs beat every
// non-bomb; a StraightBomb beats any SquareBomb; among StraightBombs a longer
// one wins, then the higher. Otherwise the kinds and lengths must match and
// a must be strictly higher. A Dog single never beats and is never beaten
// through this relation: it forgoes contention entirely.
func Beats(a, b Combination) bool {
	if a.Kind == Single && a.Cards.Has(Dog) {
		return false
	}
	if a.IsBomb() {
		switch {
		case !b.IsBomb():
			return true
		case a.Kind == StraightBomb && b.Kind == SquareBomb:
			return true
		case a.Kind == SquareBomb && b.Kind == StraightBomb:
			return false
		case a.Kind == StraightBomb && a.length != b.length:
			return a.length > b.length
		default:
			return a.height > b.height
		}
	}
	if b.IsBomb() {
		return false
	}
	if a.Kind != b.Kind || a.length != b.length {
		return false
	}
	if b.Kind == Single && b.Cards.Has(Dragon) {
		return false
	}
	return a.height > b.height
}
