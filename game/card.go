package game

import (
	"fmt"
	"math/bits"
	"strconv"

	"golang.org/x/exp/rand"
)

// Rank is the height of a card in trick contention. The four special cards
// occupy the slots around the suited ranks: Dog below everything, Mahjong
// below Two, Dragon above Ace. Phoenix has no fixed slot; as a single it
// claims a rank at play time.
type Rank int8

const (
	NoRank      Rank = -1
	RankDog     Rank = 0
	RankMahjong Rank = 1
	RankTwo     Rank = 2
	RankTen     Rank = 10
	RankJack    Rank = 11
	RankQueen   Rank = 12
	RankKing    Rank = 13
	RankAce     Rank = 14
	RankDragon  Rank = 15
	RankPhoenix Rank = 16
)

// Wishable reports whether the rank may be named in a Mahjong wish.
// Only the suited ranks Two through Ace qualify.
func (r Rank) Wishable() bool {
	return r >= RankTwo && r <= RankAce
}

func (r Rank) String() string {
	switch {
	case r == RankDog:
		return "Dog"
	case r == RankMahjong:
		return "Mah"
	case r == RankDragon:
		return "Dragon"
	case r == RankPhoenix:
		return "Phoenix"
	case r == RankJack:
		return "J"
	case r == RankQueen:
		return "Q"
	case r == RankKing:
		return "K"
	case r == RankAce:
		return "A"
	case r >= RankTwo && r <= RankTen:
		return strconv.Itoa(int(r))
	}
	return "?"
}

// Suit of a suited card. The special cards carry SuitSpecial.
type Suit uint8

const (
	Jade Suit = iota
	Sword
	Pagoda
	Star
	SuitSpecial
)

var suitNames = [...]string{"Jade", "Sword", "Pagoda", "Star", "Special"}
var suitShort = [...]string{"j", "s", "p", "t", ""}

func (s Suit) String() string { return suitNames[s] }

// Card identifies one of the 56 cards in the deck. Suited cards occupy
// 0-51 (suit*13 + rank-2), the specials 52-55.
type Card uint8

const (
	Dog     Card = 52
	Mahjong Card = 53
	Phoenix Card = 54
	Dragon  Card = 55

	DeckSize = 56
	HandSize = 14
)

// MakeCard builds a suited card. Rank must be in [Two, Ace].
func MakeCard(rank Rank, suit Suit) Card {
	if !rank.Wishable() || suit >= SuitSpecial {
		panic(fmt.Sprintf("no such card: rank %v suit %v", rank, suit))
	}
	return Card(uint8(suit)*13 + uint8(rank) - 2)
}

func (c Card) Rank() Rank {
	switch c {
	case Dog:
		return RankDog
	case Mahjong:
		return RankMahjong
	case Phoenix:
		return RankPhoenix
	case Dragon:
		return RankDragon
	}
	return Rank(c%13 + 2)
}

func (c Card) Suit() Suit {
	if c >= Dog {
		return SuitSpecial
	}
	return Suit(c / 13)
}

func (c Card) Special() bool { return c >= Dog }

// Points is the card's scoring value when captured in a trick.
func (c Card) Points() int {
	switch c.Rank() {
	case 5:
		return 5
	case RankTen, RankKing:
		return 10
	case RankDragon:
		return 25
	case RankPhoenix:
		return -25
	}
	return 0
}

func (c Card) String() string {
	if c.Special() {
		return c.Rank().String()
	}
	return c.Rank().String() + suitShort[c.Suit()]
}

// CardSet is a bitset over the 56 cards. The zero value is the empty set.
type CardSet uint64

// FullDeck contains all 56 cards.
const FullDeck CardSet = 1<<DeckSize - 1

func NewCardSet(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s |= 1 << c
	}
	return s
}

func (s CardSet) Has(c Card) bool             { return s&(1<<c) != 0 }
func (s CardSet) With(c Card) CardSet         { return s | 1<<c }
func (s CardSet) Without(o CardSet) CardSet   { return s &^ o }
func (s CardSet) Union(o CardSet) CardSet     { return s | o }
func (s CardSet) Intersect(o CardSet) CardSet { return s & o }
func (s CardSet) SubsetOf(o CardSet) bool     { return s&^o == 0 }
func (s CardSet) Disjoint(o CardSet) bool     { return s&o == 0 }
func (s CardSet) Empty() bool                 { return s == 0 }
func (s CardSet) Count() int                  { return bits.OnesCount64(uint64(s)) }

// Cards lists the members in deck order.
func (s CardSet) Cards() []Card {
	out := make([]Card, 0, s.Count())
	for s != 0 {
		c := Card(bits.TrailingZeros64(uint64(s)))
		out = append(out, c)
		s &= s - 1
	}
	return out
}

// Points sums the scoring value of every member.
func (s CardSet) Points() int {
	pts := 0
	for s != 0 {
		c := Card(bits.TrailingZeros64(uint64(s)))
		pts += c.Points()
		s &= s - 1
	}
	return pts
}

// HasRank reports whether any member has the given rank.
func (s CardSet) HasRank(r Rank) bool {
	if r.Wishable() {
		return s&rankMask(r) != 0
	}
	switch r {
	case RankDog:
		return s.Has(Dog)
	case RankMahjong:
		return s.Has(Mahjong)
	case RankDragon:
		return s.Has(Dragon)
	case RankPhoenix:
		return s.Has(Phoenix)
	}
	return false
}

// byRank groups the suited members per rank; index by Rank directly.
func (s CardSet) byRank() [RankAce + 1][]Card {
	var groups [RankAce + 1][]Card
	for _, c := range s.Cards() {
		if r := c.Rank(); r.Wishable() {
			groups[r] = append(groups[r], c)
		}
	}
	return groups
}

// rankMask covers the four suited cards of a rank.
func rankMask(r Rank) CardSet {
	i := CardSet(r) - 2
	return 1<<i | 1<<(i+13) | 1<<(i+26) | 1<<(i+39)
}

func (s CardSet) String() string {
	str := "{"
	for i, c := range s.Cards() {
		if i > 0 {
			str += " "
		}
		str += c.String()
	}
	return str + "}"
}

// Deal shuffles the full deck into four hands of 14, split into the pile of
// eight dealt before the grand tichu decision and the six dealt after.
// The eight piles are pairwise disjoint and cover the whole deck.
func Deal(rng *rand.Rand) (first8, last6 [4]CardSet) {
	deck := make([]Card, DeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	for p := 0; p < 4; p++ {
		for i := 0; i < 8; i++ {
			first8[p] = first8[p].With(deck[p*HandSize+i])
		}
		for i := 8; i < HandSize; i++ {
			last6[p] = last6[p].With(deck[p*HandSize+i])
		}
	}
	return first8, last6
}
