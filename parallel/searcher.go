// Package parallel scores each first move with a narrow, depth-bounded
// search and picks the move whose leaves average best. The first moves are
// searched concurrently on a bounded pool of workers.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
)

var (
	ErrAllWorkersFailed = errors.New("every candidate move failed")
	ErrWorkerPanic      = errors.New("worker panicked")
)

// Candidate is the outcome of searching one first move.
type Candidate struct {
	Move game.Move
	// Mate is set when Move checkmates at once.
	Mate bool
	// Leaves are the static scores reached under Move, signed toward White.
	Leaves []int
	Mean   float64
	// Err is set when the search under Move failed; the candidate is then
	// ignored when choosing.
	Err error
}

type Result struct {
	Move       game.Move
	Found      bool
	Outcome    game.Outcome
	Value      int
	ForcedMate bool
	Candidates []Candidate
}

type Searcher struct {
	Depth   int
	Workers int
	ev      eval.Evaluator
}

func NewSearcher(ev eval.Evaluator, depth, workers int) *Searcher {
	return &Searcher{Depth: depth, Workers: workers, ev: ev}
}

// BestMove picks a move for pos. A move that mates at once is returned
// without searching the rest.
func (s *Searcher) BestMove(ctx context.Context, pos game.Position) (Result, error) {
	outcome := pos.Outcome()
	if outcome == game.Checkmate || outcome == game.Stalemate {
		return Result{Outcome: outcome}, nil
	}
	for _, m := range pos.LegalMoves() {
		next := pos.Apply(m)
		if next.IsCheckmate() {
			log.Debug().Str("move", m.String()).Msg("mate-in-one")
			return Result{
				Move: m, Found: true, Outcome: outcome, ForcedMate: true,
				Value: s.ev.Evaluate(next),
			}, nil
		}
	}

	cands, err := s.Analyze(ctx, pos)
	if err != nil {
		return Result{}, err
	}
	// a cancelled search never picks a move
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	ok := lo.Filter(cands, func(c Candidate, _ int) bool {
		return c.Err == nil
	})
	white := pos.Turn() == game.White
	best := ok[0]
	for _, c := range ok[1:] {
		if (white && c.Mean > best.Mean) || (!white && c.Mean < best.Mean) {
			best = c
		}
	}
	log.Debug().Str("move", best.Move.String()).Float64("mean", best.Mean).
		Int("candidates", len(ok)).Int("failed", len(cands)-len(ok)).Msg("parallel-decision")
	return Result{
		Move:       best.Move,
		Found:      true,
		Outcome:    outcome,
		Value:      int(math.Round(best.Mean)),
		Candidates: cands,
	}, nil
}

// Analyze searches every legal move of pos and returns the candidates in
// legal-move order. It fails only if no candidate succeeded.
func (s *Searcher) Analyze(ctx context.Context, pos game.Position) ([]Candidate, error) {
	moves := pos.LegalMoves()
	cands := make([]Candidate, len(moves))
	origin := pos.Turn()

	g := errgroup.Group{}
	g.SetLimit(max(1, s.Workers))
	for i, m := range moves {
		g.Go(func() error {
			// each worker writes only its own slot
			cands[i] = s.searchMove(ctx, pos, m, origin)
			return nil
		})
	}
	// workers never return errors; failures live in the candidates
	_ = g.Wait()

	var errs []error
	for _, c := range cands {
		if c.Err != nil {
			errs = append(errs, c.Err)
		}
	}
	if len(moves) > 0 && len(errs) == len(moves) {
		if err := ctx.Err(); err != nil {
			return cands, err
		}
		return cands, fmt.Errorf("%w: %w", ErrAllWorkersFailed, errors.Join(errs...))
	}
	return cands, nil
}

func (s *Searcher) searchMove(ctx context.Context, pos game.Position, m game.Move,
	origin game.Color) (c Candidate) {

	c.Move = m
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("move", m.String()).Interface("panic", r).Msg("worker-panic")
			c = Candidate{Move: m, Err: fmt.Errorf("%w: %s: %v", ErrWorkerPanic, m, r)}
		}
	}()
	next := pos.Apply(m)
	score := s.ev.Evaluate(next)
	if next.IsCheckmate() {
		c.Mate = true
		c.Leaves = []int{score}
	} else if s.Depth <= 1 {
		c.Leaves = []int{score}
	} else if err := s.search(ctx, next, score, s.Depth-1, origin, &c.Leaves); err != nil {
		c.Err = err
		return c
	}
	c.Mean = stat.Mean(lo.Map(c.Leaves, func(v int, _ int) float64 {
		return float64(v)
	}), nil)
	log.Debug().Str("move", m.String()).Int("leaves", len(c.Leaves)).
		Float64("mean", c.Mean).Msg("candidate")
	return c
}

type scored struct {
	pos   game.Position
	score int
}

// search appends leaf scores under pos to acc. Only the ceil(depth/2) best
// replies for the side to move are followed, judged by their static score
// as seen from origin.
func (s *Searcher) search(ctx context.Context, pos game.Position, score, depth int,
	origin game.Color, acc *[]int) error {

	if err := ctx.Err(); err != nil {
		return err
	}
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		*acc = append(*acc, score)
		return nil
	}
	children := lo.Map(moves, func(m game.Move, _ int) scored {
		p := pos.Apply(m)
		return scored{pos: p, score: s.ev.Evaluate(p)}
	})
	sign := origin.Sign()
	if pos.Turn() != origin {
		// the opponent tries the replies worst for origin first
		slices.SortStableFunc(children, func(a, b scored) int {
			return sign*a.score - sign*b.score
		})
	} else {
		slices.SortStableFunc(children, func(a, b scored) int {
			return sign*b.score - sign*a.score
		})
	}
	keep := min(len(children), (depth+1)/2)
	for _, ch := range children[:keep] {
		if depth == 1 {
			*acc = append(*acc, ch.score)
			continue
		}
		if err := s.search(ctx, ch.pos, ch.score, depth-1, origin, acc); err != nil {
			return err
		}
	}
	return nil
}
