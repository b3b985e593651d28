package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/domino14/mlchess/config"
	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/parallel"
	"github.com/domino14/mlchess/selective"
)

const (
	SelectiveStrategy = "selective"
	ParallelStrategy  = "parallel"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// StrategyConfig selects a strategy and holds the knobs for both.
type StrategyConfig struct {
	Strategy       string
	TickCount      int
	MateBudgetBase int
	MateBudgetStep int
	BreadthWidth   int
	MaxTreeNodes   int
	SearchDepth    int
	WorkerBudget   int
}

func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfigFromConfig(config.DefaultConfig())
}

func StrategyConfigFromConfig(cfg *config.Config) StrategyConfig {
	return StrategyConfig{
		Strategy:       cfg.GetString(config.ConfigStrategy),
		TickCount:      cfg.GetInt(config.ConfigTickCount),
		MateBudgetBase: cfg.GetInt(config.ConfigMateBudgetBase),
		MateBudgetStep: cfg.GetInt(config.ConfigMateBudgetStep),
		BreadthWidth:   cfg.GetInt(config.ConfigBreadthWidth),
		MaxTreeNodes:   cfg.GetInt(config.ConfigMaxTreeNodes),
		SearchDepth:    cfg.GetInt(config.ConfigSearchDepth),
		WorkerBudget:   cfg.GetInt(config.ConfigWorkerBudget),
	}
}

func (sc StrategyConfig) Validate() error {
	switch sc.Strategy {
	case SelectiveStrategy:
		if sc.TickCount < 0 || sc.BreadthWidth < 0 {
			return fmt.Errorf("tick count and breadth width cannot be negative")
		}
	case ParallelStrategy:
		if sc.SearchDepth < 1 {
			return fmt.Errorf("search depth must be at least 1, got %d", sc.SearchDepth)
		}
		if sc.WorkerBudget < 1 {
			return fmt.Errorf("worker budget must be at least 1, got %d", sc.WorkerBudget)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, sc.Strategy)
	}
	return nil
}

func (sc StrategyConfig) selectiveOptions(params eval.Params) selective.Options {
	return selective.Options{
		TickCount:    sc.TickCount,
		BreadthWidth: sc.BreadthWidth,
		MateBudget:   selective.LinearMateBudget(sc.MateBudgetBase, sc.MateBudgetStep),
		MaxNodes:     sc.MaxTreeNodes,
		MateScore:    params.MateScore,
	}
}

// Decision is what a strategy chose and how it got there. Found is false
// when the position has no legal moves.
type Decision struct {
	Move       game.Move
	Found      bool
	Outcome    game.Outcome
	Value      int
	ForcedMate bool
	Line       []game.Move
	Nodes      int
	Elapsed    time.Duration
	Strategy   string
}

// Strategy picks a move for a position.
type Strategy interface {
	Name() string
	BestMove(ctx context.Context, pos game.Position) (Decision, error)
}

type selectiveStrategy struct {
	solver *selective.Solver
}

func (s selectiveStrategy) Name() string {
	return SelectiveStrategy
}

func (s selectiveStrategy) BestMove(ctx context.Context, pos game.Position) (Decision, error) {
	res, err := s.solver.BestMove(ctx, pos)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Move:       res.Move,
		Found:      res.Found,
		Outcome:    res.Outcome,
		Value:      res.Value,
		ForcedMate: res.ForcedMate,
		Line:       res.Line,
		Nodes:      res.Nodes,
		Strategy:   SelectiveStrategy,
	}, nil
}

type parallelStrategy struct {
	searcher *parallel.Searcher
}

func (s parallelStrategy) Name() string {
	return ParallelStrategy
}

func (s parallelStrategy) BestMove(ctx context.Context, pos game.Position) (Decision, error) {
	res, err := s.searcher.BestMove(ctx, pos)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{
		Move:       res.Move,
		Found:      res.Found,
		Outcome:    res.Outcome,
		Value:      res.Value,
		ForcedMate: res.ForcedMate,
		Strategy:   ParallelStrategy,
	}
	if res.Found {
		d.Line = []game.Move{res.Move}
	}
	for _, c := range res.Candidates {
		d.Nodes += len(c.Leaves)
	}
	return d, nil
}
