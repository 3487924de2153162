package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"tichu/agent"
	"tichu/game"
)

func randomAgents(seed uint64) [4]agent.Agent {
	var agents [4]agent.Agent
	for p := 0; p < 4; p++ {
		agents[p] = agent.NewRandomAgent(fmt.Sprintf("rnd-%d", p), seed+uint64(p))
	}
	return agents
}

func TestLocalEngineRun(t *testing.T) {
	eng := NewLocalEngine(randomAgents(1), Config{Target: 200, Seed: 1})

	result, err := eng.Run()
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Rounds, 1)
	require.Contains(t, []int{0, 1}, result.Winner, "a short game between random agents picks a winner")
	require.Greater(t, result.Totals[result.Winner], result.Totals[1-result.Winner],
		"the winner holds the strictly higher total")
}

func TestLocalEngineDefaults(t *testing.T) {
	eng := NewLocalEngine(randomAgents(2), Config{})
	require.Equal(t, DefaultTarget, eng.cfg.Target)
	require.Equal(t, ModeRaise, eng.cfg.Mode)
	require.Equal(t, DefaultRetries, eng.cfg.Retries)
}

func TestPlayRoundScores(t *testing.T) {
	eng := NewLocalEngine(randomAgents(3), Config{Seed: 3})

	for i := 0; i < 5; i++ {
		scores, err := eng.playRound()
		require.NoError(t, err)
		sum := scores[0] + scores[1]
		// Card points total 100 (or 0 on a double win); every announcement
		// shifts the total by a multiple of 100.
		require.Zero(t, sum%100, "round totals move in steps of 100 around the card points")
		require.GreaterOrEqual(t, sum, -900)
		require.LessOrEqual(t, sum, 1000)
	}
}

func TestForfeitScores(t *testing.T) {
	eng := NewLocalEngine(randomAgents(4), Config{Mode: ModeForfeit})

	require.Equal(t, [2]int{-forfeitScore, forfeitScore}, eng.forfeitScores(0))
	require.Equal(t, [2]int{forfeitScore, -forfeitScore}, eng.forfeitScores(1))
	require.Equal(t, [2]int{-forfeitScore, forfeitScore}, eng.forfeitScores(2))
	require.Equal(t, [2]int{forfeitScore, -forfeitScore}, eng.forfeitScores(3))
}

// stubbornAgent answers everything with a pass, which is illegal outside
// trick play.
type stubbornAgent struct{}

func (stubbornAgent) Name() string { return "stubborn" }

func (stubbornAgent) Act(v game.View) (game.Action, error) {
	return game.PassAction{Pos: v.Player}, nil
}

func TestIllegalMoveHandling(t *testing.T) {
	t.Run("forfeit mode charges the offending team immediately", func(t *testing.T) {
		agents := [4]agent.Agent{
			stubbornAgent{},
			agent.NewRandomAgent("rnd-1", 5),
			agent.NewRandomAgent("rnd-2", 6),
			agent.NewRandomAgent("rnd-3", 7),
		}
		eng := NewLocalEngine(agents, Config{Mode: ModeForfeit, Seed: 5})

		scores, err := eng.playRound()
		require.NoError(t, err)
		require.Equal(t, [2]int{-forfeitScore, forfeitScore}, scores,
			"seat 0 refuses its grand tichu decision and forfeits for its team")
	})

	t.Run("raise mode retries before giving up", func(t *testing.T) {
		attempts := 0
		counting := countingAgent{calls: &attempts}
		agents := [4]agent.Agent{
			counting,
			agent.NewRandomAgent("rnd-1", 8),
			agent.NewRandomAgent("rnd-2", 9),
			agent.NewRandomAgent("rnd-3", 10),
		}
		eng := NewLocalEngine(agents, Config{Mode: ModeRaise, Retries: 2, Seed: 8})

		scores, err := eng.playRound()
		require.NoError(t, err)
		require.Equal(t, [2]int{-forfeitScore, forfeitScore}, scores)
		require.Equal(t, 3, attempts, "one attempt plus the configured retries")
	})
}

// countingAgent misbehaves like stubbornAgent but counts how often it is
// asked.
type countingAgent struct{ calls *int }

func (countingAgent) Name() string { return "counting" }

func (a countingAgent) Act(v game.View) (game.Action, error) {
	*a.calls++
	return game.PassAction{Pos: v.Player}, nil
}
