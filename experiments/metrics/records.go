package metrics

import "time"

// AgentConfig identifies one search configuration under test.
type AgentConfig struct {
	ID         int
	Goroutines int
	Iterations int
	Duration   time.Duration
}

// GameRecord is one finished game of a matchup.
type GameRecord struct {
	ID       int
	Team0    int // AgentConfig.ID
	Team1    int // AgentConfig.ID
	Winner   int // Team index, -1 for a draw
	Total0   int
	Total1   int
	Rounds   int
	Duration time.Duration
}
