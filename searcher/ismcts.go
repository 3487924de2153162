package searcher

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"tichu/game"
)

type Option func(m *ISMCTS)

// ISMCTS runs information set Monte Carlo tree search from the point of
// view of a single observer seat. Each worker goroutine owns a private
// tree and RNG; the root statistics are reduced once the iteration budget
// is spent, so no locks guard the hot path.
type ISMCTS struct {
	goroutines   int
	iterations   int
	duration     time.Duration
	determinizer Determinizer
	treePolicy   TreePolicy
	rollout      RolloutPolicy
	evaluator    Evaluator
	bestAction   BestActionPolicy
	nodeID       NodeIDFunc
	metrics      MetricsCollector
	seed         uint64
}

func WithGoroutines(n int) Option {
	return func(m *ISMCTS) {
		if n > 0 {
			m.goroutines = n
		}
	}
}

func WithIterations(n int) Option {
	return func(m *ISMCTS) {
		if n > 0 {
			m.iterations = n
		}
	}
}

func WithDuration(d time.Duration) Option {
	return func(m *ISMCTS) {
		if d > 0 {
			m.duration = d
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *ISMCTS) {
		if c > 0 {
			m.treePolicy = UCB1Policy{C: c}
		}
	}
}

func WithDeterminizer(d Determinizer) Option {
	return func(m *ISMCTS) {
		if d != nil {
			m.determinizer = d
		}
	}
}

func WithTreePolicy(p TreePolicy) Option {
	return func(m *ISMCTS) {
		if p != nil {
			m.treePolicy = p
		}
	}
}

func WithRolloutPolicy(p RolloutPolicy) Option {
	return func(m *ISMCTS) {
		if p != nil {
			m.rollout = p
		}
	}
}

func WithEvaluator(e Evaluator) Option {
	return func(m *ISMCTS) {
		if e != nil {
			m.evaluator = e
		}
	}
}

func WithBestAction(p BestActionPolicy) Option {
	return func(m *ISMCTS) {
		if p != nil {
			m.bestAction = p
		}
	}
}

func WithNodeID(f NodeIDFunc) Option {
	return func(m *ISMCTS) {
		if f != nil {
			m.nodeID = f
		}
	}
}

func WithMetrics() Option {
	return func(m *ISMCTS) {
		m.metrics = NewMetricsCollector()
	}
}

func WithSeed(seed uint64) Option {
	return func(m *ISMCTS) {
		m.seed = seed
	}
}

func NewISMCTS(options ...Option) *ISMCTS {
	m := &ISMCTS{ // Default values
		goroutines:   1,
		determinizer: UniformDeterminizer{},
		treePolicy:   UCB1Policy{C: DefaultExploration},
		rollout:      RandomRollout{},
		evaluator:    RankingEvaluator{},
		bestAction:   MostVisited{},
		nodeID:       InfosetID,
		metrics:      NewNoMetricsCollector(),
		seed:         uint64(time.Now().UnixNano()),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 && m.duration <= 0 {
		panic("must specify search iterations or duration")
	}
	return m
}

// Search picks an action for observer from state. Only actions observer
// itself may take are candidates; the trees still branch over every seat's
// actions, including out-of-turn bombs.
func (m *ISMCTS) Search(state *game.RoundState, observer int) (game.Action, SearchMetric, error) {
	m.metrics.Start(m.goroutines)

	candidates := observerActions(state, observer)
	if len(candidates) == 0 {
		return nil, m.metrics.Complete(), fmt.Errorf("seat %d has no action in phase %v", observer, state.Phase)
	}
	if len(candidates) == 1 {
		m.metrics.SetShortCircuit()
		m.metrics.AddNodes(1)
		return candidates[0], m.metrics.Complete(), nil
	}

	trees := make([]*Tree, m.goroutines)
	errs := make([]error, m.goroutines)
	var wg sync.WaitGroup
	for w := 0; w < m.goroutines; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(m.seed + uint64(w)))
			trees[w], errs[w] = m.run(state, observer, rng)
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, m.metrics.Complete(), err
		}
	}

	stats := m.reduce(trees, state, observer)
	rng := rand.New(rand.NewSource(m.seed))
	best := m.bestAction.Best(stats, observer, rng)
	if best == nil {
		return nil, m.metrics.Complete(), errors.New("search produced no root statistics")
	}

	metric := m.metrics.Complete()
	log.Debug().
		Int("observer", observer).
		Int("iterations", metric.Iterations).
		Int("nodes", metric.Nodes).
		Dur("duration", metric.Duration).
		Stringer("action", best).
		Msg("search complete")
	return best, metric, nil
}

// run drives one worker's iteration loop over its private tree.
func (m *ISMCTS) run(state *game.RoundState, observer int, rng *rand.Rand) (*Tree, error) {
	tree := NewTree()
	deadline := time.Time{}
	if m.duration > 0 {
		deadline = time.Now().Add(m.duration)
	}
	budget := m.iterations / m.goroutines
	if m.iterations > 0 && budget == 0 {
		budget = 1
	}

	for i := 0; ; i++ {
		if m.iterations > 0 && i >= budget {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		if err := m.iterate(tree, state, observer, rng); err != nil {
			return nil, err
		}
		m.metrics.AddIteration()
	}
	m.metrics.AddNodes(tree.Size())
	return tree, nil
}

// iterate runs one determinize/select/expand/rollout/backpropagate cycle.
func (m *ISMCTS) iterate(tree *Tree, state *game.RoundState, observer int, rng *rand.Rand) error {
	d := m.determinizer.Determinize(state, observer, rng)

	path := []int32{tree.Ensure(m.nodeID(d, observer))}

	for !d.IsTerminal() {
		if d.Phase == game.PhaseDeal6 {
			next, err := d.DealLast6()
			if err != nil {
				return err
			}
			d = next
			continue
		}
		legal := d.PossibleActions()
		if len(legal) == 0 {
			return game.ErrLogic
		}

		cur := path[len(path)-1]
		untried := untriedActions(tree.Node(cur), legal)
		if len(untried) > 0 {
			// Expand one untried action, then hand off to the rollout.
			a := untried[rng.Intn(len(untried))]
			next, err := d.Apply(a)
			if err != nil {
				return err
			}
			child := tree.Link(cur, a, m.nodeID(next, observer))
			tree.Node(child).Availability++
			path = append(path, child)
			d = next
			break
		}

		// Every legal action was available for selection here.
		for _, a := range legal {
			if e := tree.Node(cur).EdgeTo(a); e != nil {
				tree.Node(e.Child).Availability++
			}
		}
		a := m.treePolicy.Select(tree, tree.Node(cur), legal, rng)
		if a == nil {
			return game.ErrLogic
		}
		next, err := d.Apply(a)
		if err != nil {
			return err
		}
		e := tree.Node(cur).EdgeTo(a)
		path = append(path, e.Child)
		d = next
	}

	if !d.IsTerminal() {
		final, _, err := m.rollout.Rollout(d, rng)
		if err != nil {
			return err
		}
		d = final
		m.metrics.AddFullPlayout()
	}

	reward, err := m.evaluator.Evaluate(d)
	if err != nil {
		return err
	}
	for _, idx := range path {
		n := tree.Node(idx)
		n.Visits++
		for p := range reward {
			n.Reward[p] += reward[p]
		}
	}
	return nil
}

// reduce folds every worker's root edges into per-action statistics,
// keeping only actions the observer itself may take.
func (m *ISMCTS) reduce(trees []*Tree, state *game.RoundState, observer int) []ActionStat {
	merged := make(map[game.Action]*ActionStat)
	var order []game.Action

	for _, tree := range trees {
		if tree == nil {
			continue
		}
		root := tree.Lookup(m.nodeID(state, observer))
		if root < 0 {
			continue
		}
		for _, e := range tree.Node(root).Edges {
			if e.Action.Player() != observer {
				continue
			}
			st, ok := merged[e.Action]
			if !ok {
				st = &ActionStat{Action: e.Action}
				merged[e.Action] = st
				order = append(order, e.Action)
			}
			child := tree.Node(e.Child)
			st.Visits += child.Visits
			for p := range child.Reward {
				st.Reward[p] += child.Reward[p]
			}
		}
	}

	stats := make([]ActionStat, 0, len(order))
	for _, a := range order {
		stats = append(stats, *merged[a])
	}
	return stats
}

func untriedActions(n *Node, legal []game.Action) []game.Action {
	var untried []game.Action
	for _, a := range legal {
		if n.EdgeTo(a) == nil {
			untried = append(untried, a)
		}
	}
	return untried
}

func observerActions(state *game.RoundState, observer int) []game.Action {
	var acts []game.Action
	for _, a := range state.PossibleActions() {
		if a.Player() == observer {
			acts = append(acts, a)
		}
	}
	return acts
}
