package game

import "fmt"

// View is the slice of a RoundState observable by one seat: their own hand,
// the public trick state, scores and announcements, and the actions they may
// take right now. Opponent hands never appear, only their sizes.
type View struct {
	Player         int
	Phase          Phase
	Hand           CardSet
	Trick          Trick
	Wish           Rank
	HandSizes      [4]int
	CapturedPoints [4]int
	Tichu          PlayerMask
	GrandTichu     PlayerMask
	Ranking        []int
	Legal          []Action
}

// Encode projects the state onto what pos may see. Legal holds only actions
// attributable to pos; it is empty when pos has nothing to decide (including
// having no bomb to interrupt with).
func Encode(s *RoundState, pos int) View {
	v := View{
		Player:     pos,
		Phase:      s.Phase,
		Hand:       s.Hands[pos],
		Trick:      s.Trick,
		Wish:       s.Wish,
		Tichu:      s.Tichu,
		GrandTichu: s.GrandTichu,
		Ranking:    append([]int(nil), s.Ranking...),
	}
	for p := 0; p < 4; p++ {
		v.HandSizes[p] = s.Hands[p].Count()
		v.CapturedPoints[p] = s.Captured[p].Points()
	}
	for _, a := range s.PossibleActions() {
		if a.Player() == pos {
			v.Legal = append(v.Legal, a)
		}
	}
	return v
}

// Decode maps a chosen index back to the action it stands for.
func Decode(v View, index int) (Action, error) {
	if index < 0 || index >= len(v.Legal) {
		return nil, fmt.Errorf("action index %d out of range [0,%d)", index, len(v.Legal))
	}
	return v.Legal[index], nil
}
