package experiments

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"tichu/agent"
	"tichu/engine"
	"tichu/experiments/metrics"
	"tichu/searcher"
)

const (
	NumGames   = 30 // Per matchup
	TimeBudget = 50 * time.Millisecond
)

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Goroutines: 1, Duration: TimeBudget},
	{ID: 2, Goroutines: 2, Duration: TimeBudget},
	{ID: 3, Goroutines: 4, Duration: TimeBudget},
	{ID: 4, Goroutines: 8, Duration: TimeBudget},
	{ID: 5, Goroutines: 16, Duration: TimeBudget},
}

// RunParallelization pits each parallel config against the sequential
// baseline with the same time budget, so any win-rate edge comes from the
// extra workers.
func RunParallelization(seed uint64) error {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: TimeBudget}
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return runExperiment("parallelization", append([]metrics.AgentConfig{baseline}, parallelConfigs...), matchUps, seed)
}

func runExperiment(name string, configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig, seed uint64) error {
	log.Info().Msgf("starting %s experiment...", name)

	count := 0
	gameRecords := []metrics.GameRecord{}
	for mi, matchup := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between team0=%+v and team1=%+v...",
			mi+1, len(matchUps), matchup[0], matchup[1])

		for i := 0; i < NumGames; i++ {
			count++
			record, err := runGame(count, matchup[0], matchup[1], seed+uint64(count))
			if err != nil {
				return err
			}
			gameRecords = append(gameRecords, record)
			log.Info().Msgf("completed matchup %d game %d of %d with winner: team %d",
				mi+1, i+1, NumGames, record.Winner)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to store game records: %w", err)
	}
	log.Info().Msg("stored experiment records")
	return nil
}

// runGame plays one game with team 0 seats using config1 and team 1 seats
// using config2.
func runGame(id int, config1, config2 metrics.AgentConfig, seed uint64) (metrics.GameRecord, error) {
	var agents [4]agent.Agent
	for seat := 0; seat < 4; seat++ {
		config := config1
		if seat%2 == 1 {
			config = config2
		}
		name := fmt.Sprintf("search-%d-cfg%d", seat, config.ID)
		agents[seat] = agent.NewSearchAgent(name, createISMCTS(config, seed+uint64(seat)))
	}

	eng := engine.NewLocalEngine(agents, engine.Config{Seed: seed})
	start := time.Now()
	result, err := eng.Run()
	if err != nil {
		return metrics.GameRecord{}, err
	}

	return metrics.GameRecord{
		ID:       id,
		Team0:    config1.ID,
		Team1:    config2.ID,
		Winner:   result.Winner,
		Total0:   result.Totals[0],
		Total1:   result.Totals[1],
		Rounds:   result.Rounds,
		Duration: time.Since(start),
	}, nil
}

func createISMCTS(config metrics.AgentConfig, seed uint64) *searcher.ISMCTS {
	options := []searcher.Option{
		searcher.WithGoroutines(config.Goroutines),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	}
	if config.Iterations > 0 {
		options = append(options, searcher.WithIterations(config.Iterations))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	return searcher.NewISMCTS(options...)
}
