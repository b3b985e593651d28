// Package bot holds the game being played against the engine and asks a
// search strategy for the engine's moves.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mlchess/config"
	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/parallel"
	"github.com/domino14/mlchess/selective"
	"github.com/domino14/mlchess/tree"
)

var ErrIllegalMove = errors.New("illegal move")

type Engine struct {
	start   game.Position
	pos     game.Position
	history []game.Move
	params  eval.Params
	ev      eval.Evaluator

	// the selective solver keeps its tree between engine moves as long as
	// its options do not change
	solver     *selective.Solver
	solverOpts StrategyConfig
}

func NewEngine(pos game.Position, params eval.Params) *Engine {
	return &Engine{start: pos, pos: pos, params: params, ev: eval.New(params)}
}

// NewEngineFromConfig loads evaluation constants and the start position
// named by cfg.
func NewEngineFromConfig(cfg *config.Config) (*Engine, error) {
	params, err := eval.LoadParams(cfg.GetString(config.ConfigEvalParamsPath))
	if err != nil {
		return nil, err
	}
	pos := game.StartPosition()
	if fen := cfg.GetString(config.ConfigStartFEN); fen != "" {
		pos, err = game.FromFEN(fen)
		if err != nil {
			return nil, err
		}
	}
	return NewEngine(pos, params), nil
}

// NewGame starts over at pos.
func (e *Engine) NewGame(pos game.Position) {
	e.start = pos
	e.pos = pos
	e.history = nil
	if e.solver != nil {
		e.solver.Reset(pos)
	}
}

func (e *Engine) CurrentPosition() game.Position {
	return e.pos
}

// StartPosition is where the current game began.
func (e *Engine) StartPosition() game.Position {
	return e.start
}

func (e *Engine) Outcome() game.Outcome {
	return e.pos.Outcome()
}

func (e *Engine) History() []game.Move {
	return append([]game.Move(nil), e.history...)
}

func (e *Engine) Params() eval.Params {
	return e.params
}

func (e *Engine) Evaluator() eval.Evaluator {
	return e.ev
}

// SubmitUserMove plays a move given as text. On failure the game is left
// as it was.
func (e *Engine) SubmitUserMove(text string) error {
	m, err := game.ParseMove(e.pos, text)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalMove, err)
	}
	e.play(m)
	if e.solver != nil {
		e.solver.Reset(e.pos)
	}
	return nil
}

func (e *Engine) play(m game.Move) {
	e.pos = e.pos.Apply(m)
	e.history = append(e.history, m)
}

// Strategy returns the strategy described by sc.
func (e *Engine) Strategy(sc StrategyConfig) (Strategy, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if sc.Strategy == ParallelStrategy {
		return parallelStrategy{searcher: parallel.NewSearcher(e.ev, sc.SearchDepth, sc.WorkerBudget)}, nil
	}
	if e.solver == nil || e.solverOpts != sc {
		e.solver = selective.NewSolver(e.ev, sc.selectiveOptions(e.params))
		e.solverOpts = sc
	}
	return selectiveStrategy{solver: e.solver}, nil
}

// RequestEngineMove asks the configured strategy for a move and plays it.
// If the side to move has no legal moves the decision is returned with
// Found unset and the game is unchanged.
func (e *Engine) RequestEngineMove(ctx context.Context, sc StrategyConfig) (Decision, error) {
	strategy, err := e.Strategy(sc)
	if err != nil {
		return Decision{}, err
	}
	start := time.Now()
	d, err := strategy.BestMove(ctx, e.pos)
	if err != nil {
		return Decision{}, err
	}
	d.Elapsed = time.Since(start)
	if !d.Found {
		log.Info().Str("outcome", d.Outcome.String()).Msg("no-legal-moves")
		return d, nil
	}
	before := e.pos
	e.play(d.Move)
	ev := log.Debug().Str("strategy", d.Strategy).Str("move", game.SAN(before, d.Move)).
		Int("value", d.Value).Int("nodes", d.Nodes).Dur("elapsed", d.Elapsed)
	if d.ForcedMate {
		ev = ev.Str("mate-line", game.Line(before, d.Line))
	}
	ev.Msg("engine-move")
	return d, nil
}

// SelectiveTree returns the selective search tree, or nil if that strategy
// was never used.
func (e *Engine) SelectiveTree() *tree.Tree {
	if e.solver == nil {
		return nil
	}
	return e.solver.Tree()
}

// Analyze scores every legal move with the parallel search without
// playing any of them.
func (e *Engine) Analyze(ctx context.Context, sc StrategyConfig) ([]parallel.Candidate, error) {
	sc.Strategy = ParallelStrategy
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return parallel.NewSearcher(e.ev, sc.SearchDepth, sc.WorkerBudget).Analyze(ctx, e.pos)
}
