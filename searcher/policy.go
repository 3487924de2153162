package searcher

import (
	"math"

	"golang.org/x/exp/rand"

	"tichu/game"
)

// The engine is generic over five policies plus the node identity function.
// Each has exactly one default; swapping them is how search strength is
// experimented with.

// Determinizer samples a fully observable state consistent with what
// observer knows. The observer's own hand is never touched.
type Determinizer interface {
	Determinize(s *game.RoundState, observer int, rng *rand.Rand) *game.RoundState
}

// TreePolicy picks the next action while descending through a fully
// expanded node. legal lists the actions compatible with the current
// determinization; every one of them has an edge.
type TreePolicy interface {
	Select(t *Tree, n *Node, legal []game.Action, rng *rand.Rand) game.Action
}

// RolloutPolicy advances a determinized state to a terminal one.
type RolloutPolicy interface {
	Rollout(s *game.RoundState, rng *rand.Rand) (*game.RoundState, int, error)
}

// Evaluator folds a terminal state into a per-seat reward vector.
type Evaluator interface {
	Evaluate(s *game.RoundState) ([4]float64, error)
}

// ActionStat is the root-level statistic of one action after the worker
// trees have been reduced.
type ActionStat struct {
	Action game.Action
	Visits int
	Reward [4]float64
}

// BestActionPolicy picks the move to play from the reduced root statistics.
type BestActionPolicy interface {
	Best(stats []ActionStat, observer int, rng *rand.Rand) game.Action
}

// NodeIDFunc maps a state to the identity of observer's information set.
type NodeIDFunc func(s *game.RoundState, observer int) NodeID

// InfosetID is the default node identity: the state's information-set hash.
func InfosetID(s *game.RoundState, observer int) NodeID {
	return NodeID(s.InfosetHash(observer))
}

// UniformDeterminizer deals the unseen cards uniformly at random across the
// other seats, preserving hand sizes.
type UniformDeterminizer struct{}

func (UniformDeterminizer) Determinize(s *game.RoundState, observer int, rng *rand.Rand) *game.RoundState {
	unseen := s.UnseenCards(observer).Cards()
	rng.Shuffle(len(unseen), func(i, j int) { unseen[i], unseen[j] = unseen[j], unseen[i] })

	var hands [4]game.CardSet
	hands[observer] = s.Hands[observer]
	next := 0
	for p := 0; p < 4; p++ {
		if p == observer {
			continue
		}
		for i := 0; i < s.Hands[p].Count(); i++ {
			hands[p] = hands[p].With(unseen[next])
			next++
		}
	}
	return s.WithHands(hands)
}

// UCB1Policy selects the edge maximizing r/n + c*sqrt(ln(m)/n), where m is
// the child's availability count, read from the perspective of the seat
// acting on the edge. Unvisited children score infinity; ties break
// uniformly at random.
type UCB1Policy struct {
	C float64
}

const DefaultExploration = 0.7

func (p UCB1Policy) Select(t *Tree, n *Node, legal []game.Action, rng *rand.Rand) game.Action {
	c := p.C
	if c == 0 {
		c = DefaultExploration
	}

	best := math.Inf(-1)
	var ties []game.Action
	for _, a := range legal {
		e := n.EdgeTo(a)
		if e == nil {
			continue
		}
		child := t.Node(e.Child)
		v := ucb1(child, a.Player(), c)
		switch {
		case v > best:
			best = v
			ties = ties[:0]
			ties = append(ties, a)
		case v == best:
			ties = append(ties, a)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	return ties[rng.Intn(len(ties))]
}

func ucb1(n *Node, player int, c float64) float64 {
	if n.Visits == 0 || n.Availability == 0 {
		return math.Inf(1)
	}
	exploit := n.Reward[player] / float64(n.Visits)
	explore := c * math.Sqrt(math.Log(float64(n.Availability))/float64(n.Visits))
	return exploit + explore
}

// RandomRollout plays uniformly random legal actions to the end of the
// round.
type RandomRollout struct{}

func (RandomRollout) Rollout(s *game.RoundState, rng *rand.Rand) (*game.RoundState, int, error) {
	depth := 0
	for !s.IsTerminal() {
		if s.Phase == game.PhaseDeal6 {
			next, err := s.DealLast6()
			if err != nil {
				return s, depth, err
			}
			s = next
			continue
		}
		acts := s.PossibleActions()
		if len(acts) == 0 {
			return s, depth, game.ErrLogic
		}
		next, err := s.Apply(acts[rng.Intn(len(acts))])
		if err != nil {
			return s, depth, err
		}
		s = next
		depth++
	}
	return s, depth, nil
}

// RankingEvaluator rewards the team that scored the round higher with +1
// and the other with -1, 0 on a tie. This is the default.
type RankingEvaluator struct{}

func (RankingEvaluator) Evaluate(s *game.RoundState) ([4]float64, error) {
	pts, err := s.Scores()
	if err != nil {
		return [4]float64{}, err
	}
	var r [4]float64
	switch {
	case pts[0] > pts[1]:
		r = [4]float64{1, -1, 1, -1}
	case pts[0] < pts[1]:
		r = [4]float64{-1, 1, -1, 1}
	}
	return r, nil
}

// PointDiffEvaluator rewards the normalized team point differential,
// keeping the margin of victory in the signal.
type PointDiffEvaluator struct{}

func (PointDiffEvaluator) Evaluate(s *game.RoundState) ([4]float64, error) {
	pts, err := s.Scores()
	if err != nil {
		return [4]float64{}, err
	}
	d := float64(pts[0]-pts[1]) / 400
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return [4]float64{d, -d, d, -d}, nil
}

// MostVisited picks the most explored root action; ties break at random.
type MostVisited struct{}

func (MostVisited) Best(stats []ActionStat, observer int, rng *rand.Rand) game.Action {
	best := -1
	var ties []game.Action
	for _, st := range stats {
		switch {
		case st.Visits > best:
			best = st.Visits
			ties = ties[:0]
			ties = append(ties, st.Action)
		case st.Visits == best:
			ties = append(ties, st.Action)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	return ties[rng.Intn(len(ties))]
}

// MaxReward picks the root action with the highest mean reward for the
// observer.
type MaxReward struct{}

func (MaxReward) Best(stats []ActionStat, observer int, rng *rand.Rand) game.Action {
	best := math.Inf(-1)
	var ties []game.Action
	for _, st := range stats {
		if st.Visits == 0 {
			continue
		}
		v := st.Reward[observer] / float64(st.Visits)
		switch {
		case v > best:
			best = v
			ties = ties[:0]
			ties = append(ties, st.Action)
		case v == best:
			ties = append(ties, st.Action)
		}
	}
	if len(ties) == 0 {
		return nil
	}
	return ties[rng.Intn(len(ties))]
}
