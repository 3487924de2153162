package game

// Play is one committed combination within a trick.
type Play struct {
	Pos  int
	Comb Combination
}

// Trick is the ordered sequence of combinations since the last trick reset.
// The zero value is an empty trick. Tricks are immutable: With returns a new
// value with its own backing array so snapshots can be shared across search
// branches.
type Trick struct {
	plays  []Play
	passes int
}

func (t Trick) Empty() bool { return len(t.plays) == 0 }

func (t Trick) Size() int { return len(t.plays) }

func (t Trick) Plays() []Play { return t.plays }

// Leader is the currently winning combination, or nil for an empty trick.
func (t Trick) Leader() *Combination {
	if len(t.plays) == 0 {
		return nil
	}
	return &t.plays[len(t.plays)-1].Comb
}

// LeaderPos is the seat holding the trick. Only valid on a non-empty trick.
func (t Trick) LeaderPos() int { return t.plays[len(t.plays)-1].Pos }

// Passes counts consecutive passes since the leading play.
func (t Trick) Passes() int { return t.passes }

// Points is the captured value of all cards in the trick.
func (t Trick) Points() int { return t.Cards().Points() }

// Cards is the union of all played cards.
func (t Trick) Cards() CardSet {
	var s CardSet
	for _, p := range t.plays {
		s = s.Union(p.Comb.Cards)
	}
	return s
}

// DragonLed reports whether the winning combination is the Dragon single.
func (t Trick) DragonLed() bool {
	l := t.Leader()
	return l != nil && l.Cards.Has(Dragon)
}

// With appends a play and resets the pass counter.
func (t Trick) With(pos int, comb Combination) Trick {
	plays := make([]Play, len(t.plays)+1)
	copy(plays, t.plays)
	plays[len(t.plays)] = Play{Pos: pos, Comb: comb}
	return Trick{plays: plays}
}

// WithPass counts one more consecutive pass.
func (t Trick) WithPass() Trick {
	return Trick{plays: t.plays, passes: t.passes + 1}
}
