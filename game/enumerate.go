package game

// LegalPlays returns every combination formable from hand that may be played
// on the current trick leader. A nil leader means the trick is empty and any
// shape is a legal first play. The flag reports whether some returned play
// contains a genuine card of the wished rank, so the state machine can
// enforce wish fulfilment.
func LegalPlays(hand CardSet, leader *Combination, wish Rank) ([]Combination, bool) {
	var cands []Combination
	if leader == nil {
		cands = append(cands, singlesFrom(hand, nil)...)
		cands = append(cands, sameRankFrom(hand, 2)...)
		cands = append(cands, sameRankFrom(hand, 3)...)
		for length := 4; length <= hand.Count(); length += 2 {
			cands = append(cands, pairStepsFrom(hand, length)...)
		}
		cands = append(cands, fullHousesFrom(hand)...)
		for length := 5; length <= hand.Count(); length++ {
			cands = append(cands, straightsFrom(hand, length)...)
		}
		cands = append(cands, squareBombsFrom(hand)...)
	} else {
		switch leader.Kind {
		case Single:
			cands = singlesFrom(hand, leader)
		case Pair:
			cands = sameRankFrom(hand, 2)
		case Trio:
			cands = sameRankFrom(hand, 3)
		case Straight:
			cands = straightsFrom(hand, leader.Length())
		case PairSteps:
			cands = pairStepsFrom(hand, leader.Length())
		case FullHouse:
			cands = fullHousesFrom(hand)
		case SquareBomb, StraightBomb:
			// Only bombs contest a bomb; appended below.
		}
		cands = append(cands, Bombs(hand, leader)...)

		filtered := cands[:0]
		for _, c := range cands {
			if Beats(c, *leader) {
				filtered = append(filtered, c)
			}
		}
		// Straight bombs show up both as same-kind candidates and as bombs.
		cands = dedup(filtered)
	}

	fulfils := false
	if wish.Wishable() {
		for _, c := range cands {
			if c.ContainsRank(wish) {
				fulfils = true
				break
			}
		}
	}
	return cands, fulfils
}

// Bombs lists the bombs in hand that beat the leader (every bomb when the
// leader is nil). Kept separate from LegalPlays so the state machine can
// offer the out-of-turn interrupt to non-acting players.
func Bombs(hand CardSet, leader *Combination) []Combination {
	bombs := squareBombsFrom(hand)
	for length := 5; length <= hand.Count(); length++ {
		for _, c := range straightsFrom(hand, length) {
			if c.Kind == StraightBomb {
				bombs = append(bombs, c)
			}
		}
	}
	if leader == nil {
		return bombs
	}
	out := bombs[:0]
	for _, b := range bombs {
		if Beats(b, *leader) {
			out = append(out, b)
		}
	}
	return out
}

// singlesFrom yields one single per card. When beating another single the
// Phoenix claims one rank above the leader, never above the Dragon.
func singlesFrom(hand CardSet, leader *Combination) []Combination {
	out := make([]Combination, 0, hand.Count())
	for _, c := range hand.Cards() {
		s := NewSingle(c)
		if c == Phoenix && leader != nil {
			if leader.Cards.Has(Dragon) {
				continue
			}
			s = s.WithPhoenixClaim(leader.Rank() + 1)
		}
		out = append(out, s)
	}
	return out
}

// sameRankFrom yields every pair (n=2) or trio (n=3), including Phoenix
// substitutions.
func sameRankFrom(hand CardSet, n int) []Combination {
	groups := hand.byRank()
	phoenix := hand.Has(Phoenix)
	var out []Combination
	for r := RankTwo; r <= RankAce; r++ {
		for _, sub := range subsetsOf(groups[r], n) {
			if c, err := ParseCombination(NewCardSet(sub...)); err == nil {
				out = append(out, c)
			}
		}
		if phoenix {
			for _, sub := range subsetsOf(groups[r], n-1) {
				if c, err := ParseCombination(NewCardSet(sub...).With(Phoenix)); err == nil {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func squareBombsFrom(hand CardSet) []Combination {
	groups := hand.byRank()
	var out []Combination
	for r := RankTwo; r <= RankAce; r++ {
		if len(groups[r]) == 4 {
			if c, err := ParseCombination(NewCardSet(groups[r]...)); err == nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func fullHousesFrom(hand CardSet) []Combination {
	trios := sameRankFrom(hand, 3)
	pairs := sameRankFrom(hand, 2)
	var out []Combination
	for _, t := range trios {
		for _, p := range pairs {
			if !t.Cards.Disjoint(p.Cards) || t.Rank() == p.Rank() {
				continue
			}
			if c, err := ParseCombination(t.Cards.Union(p.Cards)); err == nil {
				out = append(out, c)
			}
		}
	}
	return dedup(out)
}

// pairStepsFrom yields every run of length/2 consecutive pairs.
func pairStepsFrom(hand CardSet, length int) []Combination {
	if length < 4 || length%2 != 0 {
		return nil
	}
	steps := length / 2
	groups := hand.byRank()
	phoenix := hand.Has(Phoenix)

	var out []Combination
	var build func(r Rank, end Rank, acc CardSet, phxUsed bool)
	build = func(r Rank, end Rank, acc CardSet, phxUsed bool) {
		if r > end {
			if c, err := ParseCombination(acc); err == nil && c.Kind == PairSteps {
				out = append(out, c)
			}
			return
		}
		for _, sub := range subsetsOf(groups[r], 2) {
			build(r+1, end, acc.Union(NewCardSet(sub...)), phxUsed)
		}
		if phoenix && !phxUsed {
			for _, sub := range subsetsOf(groups[r], 1) {
				build(r+1, end, acc.Union(NewCardSet(sub...)).With(Phoenix), true)
			}
		}
	}
	for start := RankTwo; start+Rank(steps)-1 <= RankAce; start++ {
		build(start, start+Rank(steps)-1, 0, false)
	}
	return dedup(out)
}

// straightsFrom yields every straight (and straight bomb) of exactly the
// given length. The Phoenix may take at most one rank in the window: an
// interior gap or the top, or the bottom when the window tops out at the
// Ace. Those are the placements the classifier infers, so generation and
// classification agree.
func straightsFrom(hand CardSet, length int) []Combination {
	if length < 5 {
		return nil
	}
	var perRank [RankAce + 1][]Card
	if hand.Has(Mahjong) {
		perRank[RankMahjong] = []Card{Mahjong}
	}
	groups := hand.byRank()
	for r := RankTwo; r <= RankAce; r++ {
		perRank[r] = groups[r]
	}
	phoenix := hand.Has(Phoenix)

	var out []Combination
	var build func(r, top Rank, acc CardSet, phxUsed bool)
	build = func(r, top Rank, acc CardSet, phxUsed bool) {
		if r > top {
			if c, err := ParseCombination(acc); err == nil &&
				(c.Kind == Straight || c.Kind == StraightBomb) && c.Rank() == top {
				out = append(out, c)
			}
			return
		}
		for _, card := range perRank[r] {
			build(r+1, top, acc.With(card), phxUsed)
		}
		if phoenix && !phxUsed && r > RankMahjong {
			bottom := top - Rank(length) + 1
			if r > bottom || top == RankAce {
				build(r+1, top, acc.With(Phoenix), true)
			}
		}
	}
	for top := RankMahjong + Rank(length) - 1; top <= RankAce; top++ {
		build(top-Rank(length)+1, top, 0, false)
	}
	return dedup(out)
}

// subsetsOf returns all n-element subsets. n of 0 yields one empty subset.
func subsetsOf(cards []Card, n int) [][]Card {
	if n < 0 || n > len(cards) {
		return nil
	}
	if n == 0 {
		return [][]Card{nil}
	}
	var out [][]Card
	var build func(start int, acc []Card)
	build = func(start int, acc []Card) {
		if len(acc) == n {
			out = append(out, append([]Card(nil), acc...))
			return
		}
		for i := start; i <= len(cards)-(n-len(acc)); i++ {
			build(i+1, append(acc, cards[i]))
		}
	}
	build(0, nil)
	return out
}

func dedup(combs []Combination) []Combination {
	seen := make(map[Combination]struct{}, len(combs))
	out := combs[:0]
	for _, c := range combs {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
