package game

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"strings"
)

// Partition is a decomposition of a card set into disjoint combinations.
// It is immutable; Merge and Evolve return new values. Two partitions are
// equal iff their combination sets are equal, ignoring order.
type Partition struct {
	combs []Combination
	hash  uint64
}

// NewPartition builds a partition from the given combinations. The caller
// guarantees they are pairwise disjoint.
func NewPartition(combs ...Combination) Partition {
	sorted := append([]Combination(nil), combs...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Cards != b.Cards {
			return a.Cards < b.Cards
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.height < b.height
	})

	hasher := fnv.New64a()
	for _, c := range sorted {
		binary.Write(hasher, binary.LittleEndian, uint64(c.Cards))
		binary.Write(hasher, binary.LittleEndian, int64(c.Kind))
		binary.Write(hasher, binary.LittleEndian, int64(c.height))
		binary.Write(hasher, binary.LittleEndian, int64(c.phoenixAs))
	}
	return Partition{combs: sorted, hash: hasher.Sum64()}
}

// SinglesPartition is the trivial partition of a card set.
func SinglesPartition(cards CardSet) Partition {
	combs := make([]Combination, 0, cards.Count())
	for _, c := range cards.Cards() {
		combs = append(combs, NewSingle(c))
	}
	return NewPartition(combs...)
}

// Combinations returns the members; the caller must not mutate the slice.
func (p Partition) Combinations() []Combination { return p.combs }

func (p Partition) Size() int { return len(p.combs) }

// Cards is the union of all member combinations.
func (p Partition) Cards() CardSet {
	var s CardSet
	for _, c := range p.combs {
		s = s.Union(c.Cards)
	}
	return s
}

// Hash is a structural 64-bit hash, order independent by construction.
func (p Partition) Hash() uint64 { return p.hash }

func (p Partition) Equal(o Partition) bool {
	if p.hash != o.hash || len(p.combs) != len(o.combs) {
		return false
	}
	for i := range p.combs {
		if p.combs[i] != o.combs[i] {
			return false
		}
	}
	return true
}

// Merge removes the given members and inserts the combination they merged
// into.
func (p Partition) Merge(removed []Combination, merged Combination) Partition {
	out := make([]Combination, 0, len(p.combs))
next:
	for _, c := range p.combs {
		for _, r := range removed {
			if c == r {
				continue next
			}
		}
		out = append(out, c)
	}
	return NewPartition(append(out, merged)...)
}

func (p Partition) String() string {
	var b strings.Builder
	b.WriteString("Partition[")
	for i, c := range p.combs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(c.String())
	}
	b.WriteString("]")
	return b.String()
}

// Evolve returns every partition reachable by merging one compatible pair of
// members, plus the straight merges from FindAllStraights. A partition at a
// fixpoint yields an empty result. Dog and Dragon never merge.
func (p Partition) Evolve() []Partition {
	var out []Partition
	add := func(removed []Combination, cards CardSet) {
		if merged, err := ParseCombination(cards); err == nil {
			out = append(out, p.Merge(removed, merged))
		}
	}

	for i, a := range p.combs {
		for j, b := range p.combs {
			if i == j || blocksMerge(a) || blocksMerge(b) {
				continue
			}
			pair := []Combination{a, b}
			union := a.Cards.Union(b.Cards)

			switch {
			// Single grows an equal-rank group: Pair, Trio, SquareBomb.
			// Two singles merge in one orientation only.
			case a.Kind == Single && b.Kind <= Trio && sameGroupRank(a, b) &&
				(b.Kind != Single || i < j):
				add(pair, union)

			// Single extends a straight by one consecutive rank.
			case a.Kind == Single && (b.Kind == Straight || b.Kind == StraightBomb):
				add(pair, union)

			case a.Kind == Pair && b.Kind == Pair && i < j:
				diff := a.Rank() - b.Rank()
				if diff >= -1 && diff <= 1 {
					// Equal ranks make a SquareBomb, adjacent a PairStep.
					add(pair, union)
				}

			case a.Kind == Pair && b.Kind == Trio && a.Rank() != b.Rank():
				add(pair, union)

			case a.Kind == Pair && b.Kind == PairSteps:
				add(pair, union)
			}
		}
	}
	return append(out, p.FindAllStraights()...)
}

// blocksMerge: Dog and Dragon only ever play alone, and a Phoenix single has
// no fixed rank to merge on.
func blocksMerge(c Combination) bool {
	return c.Cards.Has(Dog) || c.Cards.Has(Dragon) ||
		(c.Kind == Single && c.Cards.Has(Phoenix))
}

func sameGroupRank(a, b Combination) bool {
	return a.Rank() == b.Rank() && !a.Cards.Has(Mahjong) && !b.Cards.Has(Mahjong)
}

// FindAllStraights scans the Single members sorted by rank and emits one
// merged partition per run of at least five consecutive ranks, including
// every sub-run, never using two singles of the same rank in one straight.
func (p Partition) FindAllStraights() []Partition {
	// One single per rank; a duplicated rank keeps the first and leaves the
	// second for a different partition path.
	byRank := map[Rank][]Combination{}
	for _, c := range p.combs {
		if c.Kind == Single && !blocksMerge(c) {
			r := c.Rank()
			byRank[r] = append(byRank[r], c)
		}
	}

	var out []Partition
	for start := RankMahjong; start <= RankAce-4; start++ {
		for end := start + 4; end <= RankAce; end++ {
			run := make([]Combination, 0, end-start+1)
			var cards CardSet
			ok := true
			for r := start; r <= end && ok; r++ {
				if len(byRank[r]) == 0 {
					ok = false
					break
				}
				run = append(run, byRank[r][0])
				cards = cards.Union(byRank[r][0].Cards)
			}
			if !ok {
				continue
			}
			if merged, err := ParseCombination(cards); err == nil && (merged.Kind == Straight || merged.Kind == StraightBomb) {
				out = append(out, p.Merge(run, merged))
			}
		}
	}
	return out
}

// EnumeratePartitions expands the all-Singles partition of cards to the full
// set of reachable partitions via a worklist fixpoint, deduplicating by
// structural hash. Worst case exponential in hand size; intended for
// heuristic evaluation of modest hands, not legality checking.
func EnumeratePartitions(cards CardSet) []Partition {
	root := SinglesPartition(cards)
	seen := map[uint64]Partition{root.Hash(): root}
	worklist := []Partition{root}

	for len(worklist) > 0 {
		p := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, q := range p.Evolve() {
			if _, ok := seen[q.Hash()]; !ok {
				seen[q.Hash()] = q
				worklist = append(worklist, q)
			}
		}
	}

	out := make([]Partition, 0, len(seen))
	for _, p := range seen {
		out = append(out, p)
	}
	return out
}
