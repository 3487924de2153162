package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tichu/agent"
	"tichu/engine"
	"tichu/searcher"
)

// selfplayConfig carries every knob of a self-play game. Values come from
// flags, an optional config file, and TICHU_* environment variables, in
// that order of precedence.
type selfplayConfig struct {
	Games      int           `mapstructure:"games"`
	Target     int           `mapstructure:"target"`
	Iterations int           `mapstructure:"iterations"`
	Goroutines int           `mapstructure:"goroutines"`
	Duration   time.Duration `mapstructure:"duration"`
	Seed       uint64        `mapstructure:"seed"`
	Mode       string        `mapstructure:"mode"`
	Random     []int         `mapstructure:"random"`
}

func newSelfplayCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "selfplay",
		Short: "Play full games between in-process agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			v.SetEnvPrefix("tichu")
			v.AutomaticEnv()
			if configFile != "" {
				v.SetConfigFile(configFile)
				if err := v.ReadInConfig(); err != nil {
					return err
				}
			}
			var cfg selfplayConfig
			if err := v.Unmarshal(&cfg); err != nil {
				return err
			}
			return runSelfplay(cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "config file")
	cmd.Flags().Int("games", 1, "number of games to play")
	cmd.Flags().Int("target", engine.DefaultTarget, "points needed to win a game")
	cmd.Flags().Int("iterations", 1000, "search iterations per move")
	cmd.Flags().Int("goroutines", 4, "parallel search workers per move")
	cmd.Flags().Duration("duration", 0, "search time per move (overrides iterations)")
	cmd.Flags().Uint64("seed", uint64(time.Now().UnixNano()), "master random seed")
	cmd.Flags().String("mode", string(engine.ModeRaise), "illegal move handling (raise|forfeit)")
	cmd.Flags().IntSlice("random", nil, "seats (0-3) played by the random agent")
	return cmd
}

func runSelfplay(cfg selfplayConfig) error {
	if cfg.Mode != string(engine.ModeRaise) && cfg.Mode != string(engine.ModeForfeit) {
		return fmt.Errorf("unknown illegal move mode %q", cfg.Mode)
	}

	random := make(map[int]bool, len(cfg.Random))
	for _, seat := range cfg.Random {
		if seat < 0 || seat > 3 {
			return fmt.Errorf("random seat %d out of range [0,3]", seat)
		}
		random[seat] = true
	}

	var wins [2]int
	for g := 0; g < cfg.Games; g++ {
		seed := cfg.Seed + uint64(g)*1000

		var agents [4]agent.Agent
		for seat := 0; seat < 4; seat++ {
			if random[seat] {
				agents[seat] = agent.NewRandomAgent(fmt.Sprintf("random-%d", seat), seed+uint64(seat))
				continue
			}
			options := []searcher.Option{
				searcher.WithGoroutines(cfg.Goroutines),
				searcher.WithSeed(seed + uint64(seat)),
			}
			if cfg.Duration > 0 {
				options = append(options, searcher.WithDuration(cfg.Duration))
			} else {
				options = append(options, searcher.WithIterations(cfg.Iterations))
			}
			agents[seat] = agent.NewSearchAgent(fmt.Sprintf("search-%d", seat), searcher.NewISMCTS(options...))
		}

		eng := engine.NewLocalEngine(agents, engine.Config{
			Target: cfg.Target,
			Mode:   engine.IllegalMode(cfg.Mode),
			Seed:   seed,
		})
		result, err := eng.Run()
		if err != nil {
			return err
		}
		if result.Winner >= 0 {
			wins[result.Winner]++
		}
		fmt.Printf("game %d: winner team %d, totals %v after %d rounds\n",
			g+1, result.Winner, result.Totals, result.Rounds)
	}

	if cfg.Games > 1 {
		fmt.Printf("team 0 won %d, team 1 won %d of %d games\n", wins[0], wins[1], cfg.Games)
	}
	return nil
}
