package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"tichu/agent"
	"tichu/game"
)

// IllegalMode selects how the engine reacts to an agent returning an
// illegal action.
type IllegalMode string

const (
	// ModeRaise re-requests the move a bounded number of times, then
	// treats the round as forfeited.
	ModeRaise IllegalMode = "raise"
	// ModeForfeit ends the round immediately, scored against the
	// offending team.
	ModeForfeit IllegalMode = "forfeit"
)

const (
	DefaultTarget  = 1000
	DefaultRetries = 3

	forfeitScore = 200

	// Hard caps against runaway games. A round never needs anywhere near
	// this many steps; hitting a cap means an engine defect.
	maxRounds = 500
	maxSteps  = 10000
)

type Config struct {
	Target  int
	Mode    IllegalMode
	Retries int
	Seed    uint64
}

// Result summarizes a finished game. Winner is the team index, or -1 when
// the round cap was reached with the totals tied.
type Result struct {
	GameID uuid.UUID
	Winner int
	Totals [2]int
	Rounds int
}

// LocalEngine drives four in-process agents through rounds until one team
// reaches the target score.
type LocalEngine struct {
	id     uuid.UUID
	agents [4]agent.Agent
	cfg    Config
	rng    *rand.Rand
}

func NewLocalEngine(agents [4]agent.Agent, cfg Config) *LocalEngine {
	if cfg.Target <= 0 {
		cfg.Target = DefaultTarget
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeRaise
	}
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	return &LocalEngine{
		id:     uuid.New(),
		agents: agents,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Run plays rounds until a team wins. When both teams cross the target in
// the same round the higher total wins; an exact tie forces another round.
func (e *LocalEngine) Run() (Result, error) {
	result := Result{GameID: e.id, Winner: -1}

	for result.Rounds < maxRounds {
		scores, err := e.playRound()
		if err != nil {
			return result, err
		}
		result.Rounds++
		result.Totals[0] += scores[0]
		result.Totals[1] += scores[1]

		log.Info().
			Stringer("game", e.id).
			Int("round", result.Rounds).
			Ints("scores", scores[:]).
			Ints("totals", result.Totals[:]).
			Msg("round complete")

		if result.Totals[0] < e.cfg.Target && result.Totals[1] < e.cfg.Target {
			continue
		}
		if result.Totals[0] == result.Totals[1] {
			continue
		}
		if result.Totals[0] > result.Totals[1] {
			result.Winner = 0
		} else {
			result.Winner = 1
		}
		break
	}

	log.Info().
		Stringer("game", e.id).
		Int("winner", result.Winner).
		Ints("totals", result.Totals[:]).
		Int("rounds", result.Rounds).
		Msg("game complete")
	return result, nil
}

// playRound runs one round from deal to scoring, returning the two team
// scores.
func (e *LocalEngine) playRound() ([2]int, error) {
	s, err := game.NewRound().DealFirst8(e.rng)
	if err != nil {
		return [2]int{}, err
	}

	for step := 0; !s.IsTerminal(); step++ {
		if step >= maxSteps {
			return [2]int{}, fmt.Errorf("round exceeded %d steps: %w", maxSteps, game.ErrLogic)
		}
		if s.Phase == game.PhaseDeal6 {
			s, err = s.DealLast6()
			if err != nil {
				return [2]int{}, err
			}
			continue
		}

		acts := s.PossibleActions()
		if len(acts) == 0 {
			return [2]int{}, fmt.Errorf("no action possible in phase %v: %w", s.Phase, game.ErrLogic)
		}
		primary := acts[0].Player()

		// Seats other than the acting one may interrupt with a bomb.
		if next, bombed, err := e.pollBombs(s, acts, primary); err != nil {
			return [2]int{}, err
		} else if bombed {
			s = next
			continue
		}

		next, offender, err := e.requestMove(s, primary)
		if err != nil {
			return [2]int{}, err
		}
		if offender {
			return e.forfeitScores(primary), nil
		}
		s = next
	}

	pts, err := s.Scores()
	if err != nil {
		return [2]int{}, err
	}
	return [2]int{pts[0], pts[1]}, nil
}

// pollBombs offers each seat holding a usable bomb the chance to throw it
// out of turn. Declining is expressed by answering with a pass.
func (e *LocalEngine) pollBombs(s *game.RoundState, acts []game.Action, primary int) (*game.RoundState, bool, error) {
	for p := 0; p < 4; p++ {
		if p == primary {
			continue
		}
		var bombs []game.Action
		for _, a := range acts {
			if a.Player() == p {
				bombs = append(bombs, a)
			}
		}
		if len(bombs) == 0 {
			continue
		}

		v := game.Encode(s, p)
		v.Legal = append([]game.Action{game.PassAction{Pos: p}}, bombs...)
		act, err := e.agents[p].Act(v)
		if err != nil {
			return nil, false, fmt.Errorf("agent %s: %w", e.agents[p].Name(), err)
		}
		if _, pass := act.(game.PassAction); pass {
			continue
		}
		next, err := s.Apply(act)
		if err != nil {
			// A bad interrupt is dropped rather than punished; the seat
			// simply loses its chance this step.
			log.Warn().
				Stringer("game", e.id).
				Str("agent", e.agents[p].Name()).
				Stringer("action", act).
				Err(err).
				Msg("discarding illegal bomb interrupt")
			continue
		}
		return next, true, nil
	}
	return nil, false, nil
}

// requestMove asks the acting seat for its move, applying the configured
// illegal-move handling. offender reports that the seat forfeited.
func (e *LocalEngine) requestMove(s *game.RoundState, pos int) (next *game.RoundState, offender bool, err error) {
	attempts := 1
	if e.cfg.Mode == ModeRaise {
		attempts += e.cfg.Retries
	}

	for i := 0; i < attempts; i++ {
		act, err := e.act(s, pos)
		if err != nil {
			return nil, false, fmt.Errorf("agent %s: %w", e.agents[pos].Name(), err)
		}
		next, err := s.Apply(act)
		if err == nil {
			return next, false, nil
		}
		log.Warn().
			Stringer("game", e.id).
			Str("agent", e.agents[pos].Name()).
			Stringer("action", act).
			Err(err).
			Msg("illegal action")
	}
	return nil, true, nil
}

// act upgrades to the state-based interface when the agent supports it.
func (e *LocalEngine) act(s *game.RoundState, pos int) (game.Action, error) {
	if sa, ok := e.agents[pos].(agent.StateActor); ok {
		return sa.ActState(s, pos)
	}
	return e.agents[pos].Act(game.Encode(s, pos))
}

func (e *LocalEngine) forfeitScores(offender int) [2]int {
	var scores [2]int
	scores[offender%2] = -forfeitScore
	scores[1-offender%2] = forfeitScore
	return scores
}
