// Package selective grows one search tree per move decision in ticks. Each
// tick looks for a forced mate among the checking first moves, widens the
// shallowest leaves and extends captures, then the tree is backed up with
// plain minimax and the best first move is kept as the next root.
package selective

import (
	"context"
	"errors"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/mate"
	"github.com/domino14/mlchess/tree"
)

type Options struct {
	TickCount    int
	BreadthWidth int
	// MateBudget gives the forced-mate budget for a tick index.
	MateBudget func(tick int) int
	// MaxNodes caps the tree. Zero sizes it from physical memory.
	MaxNodes int
	// MateScore is reported as the value of a proven mate.
	MateScore int
}

func LinearMateBudget(base, step int) func(int) int {
	return func(tick int) int {
		return base + step*tick
	}
}

func DefaultOptions() Options {
	return Options{
		TickCount:    3,
		BreadthWidth: 20,
		MateBudget:   LinearMateBudget(1, 1),
		MateScore:    eval.DefaultParams().MateScore,
	}
}

// Result describes one decision. Found is false when the root has no legal
// moves; Outcome then says why.
type Result struct {
	Move       game.Move
	Found      bool
	Outcome    game.Outcome
	Value      int
	ForcedMate bool
	Line       []game.Move
	Nodes      int
}

type Solver struct {
	opts     Options
	ev       eval.Evaluator
	tree     *tree.Tree
	maxNodes int
	full     bool
}

func NewSolver(ev eval.Evaluator, opts Options) *Solver {
	if opts.MateBudget == nil {
		opts.MateBudget = LinearMateBudget(1, 1)
	}
	if opts.MateScore == 0 {
		opts.MateScore = eval.DefaultParams().MateScore
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = tree.DefaultMaxNodes(0.25)
	}
	return &Solver{opts: opts, ev: ev, maxNodes: maxNodes}
}

func (s *Solver) Options() Options {
	return s.opts
}

// Reset discards the tree and starts over at pos.
func (s *Solver) Reset(pos game.Position) {
	s.tree = tree.New(pos, s.ev, s.maxNodes)
	s.full = false
}

// Tree returns the current tree, or nil before the first decision.
func (s *Solver) Tree() *tree.Tree {
	return s.tree
}

// BestMove decides a move for pos. The tree kept from the previous decision
// is reused when its root is pos; otherwise it is replaced.
func (s *Solver) BestMove(ctx context.Context, pos game.Position) (Result, error) {
	if s.tree == nil || s.tree.Node(s.tree.Root()).Pos.FEN() != pos.FEN() {
		s.Reset(pos)
	}
	s.full = false
	outcome := pos.Outcome()
	if outcome == game.Checkmate || outcome == game.Stalemate {
		log.Debug().Str("outcome", outcome.String()).Msg("no-move")
		return Result{Outcome: outcome}, nil
	}
	if err := s.expandRoot(); err != nil {
		return Result{}, err
	}

	for i := 0; i < s.opts.TickCount; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if res, ok := s.matePass(i); ok {
			res.Outcome = outcome
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		s.breadthPass(i)
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		s.tacticalPass(i)
	}

	t := s.tree
	values := t.Backup()
	best := t.BestChild(t.Root(), values)
	res := Result{
		Move:    t.Node(best).Move,
		Found:   true,
		Outcome: outcome,
		Value:   values[best],
		Line:    t.PrincipalLine(values),
		Nodes:   t.Len(),
	}
	log.Debug().Str("move", res.Move.String()).Int("value", res.Value).
		Int("nodes", res.Nodes).Msg("selective-decision")
	t.Promote(best)
	return res, nil
}

func (s *Solver) expandRoot() error {
	err := s.tree.Expand(s.tree.Root())
	if errors.Is(err, tree.ErrTreeFull) {
		// the kept subtree is too big; start fresh
		log.Warn().Err(err).Msg("tree-full-at-root")
		s.Reset(s.tree.Node(s.tree.Root()).Pos)
		err = s.tree.Expand(s.tree.Root())
	}
	return err
}

func (s *Solver) matePass(tick int) (Result, bool) {
	t := s.tree
	budget := s.opts.MateBudget(tick)
	for _, c := range t.Node(t.Root()).Children() {
		n := t.Node(c)
		if !n.Pos.InCheck() {
			continue
		}
		if !n.Pos.IsCheckmate() && !mate.Prove(t, c, budget) {
			continue
		}
		n = t.Node(c)
		line := append([]game.Move{n.Move}, mate.Line(t, c, budget)...)
		res := Result{
			Move:       n.Move,
			Found:      true,
			Value:      t.Node(t.Root()).Pos.Turn().Sign() * s.opts.MateScore,
			ForcedMate: true,
			Line:       line,
			Nodes:      t.Len(),
		}
		log.Debug().Int("tick", tick).Int("budget", budget).
			Str("move", n.Move.String()).Msg("forced-mate")
		t.Promote(c)
		return res, true
	}
	return Result{}, false
}

// expandable is true for every leaf not yet expanded, drawn and terminal
// leaves included. Expanding a terminal leaf marks it with no children.
func (s *Solver) expandable(id tree.NodeID) bool {
	return !s.tree.Node(id).Expanded()
}

func (s *Solver) expand(id tree.NodeID) bool {
	if s.full {
		return false
	}
	if err := s.tree.Expand(id); err != nil {
		s.full = true
		log.Warn().Err(err).Int("nodes", s.tree.Len()).Msg("tree-full")
		return false
	}
	return true
}

// breadthPass widens the shallowest leaves.
func (s *Solver) breadthPass(tick int) {
	t := s.tree
	leaves := lo.Filter(t.Leaves(), func(id tree.NodeID, _ int) bool {
		return s.expandable(id)
	})
	depth := make(map[tree.NodeID]int, len(leaves))
	for _, id := range leaves {
		depth[id] = t.Depth(id)
	}
	slices.SortStableFunc(leaves, func(a, b tree.NodeID) int {
		return depth[a] - depth[b]
	})
	n := max(0, min(len(leaves), s.opts.BreadthWidth))
	log.Debug().Int("tick", tick).Int("leaves", len(leaves)).Int("expanding", n).Msg("breadth-pass")
	for _, id := range leaves[:n] {
		if !s.expand(id) {
			return
		}
	}
}

// tacticalPass extends every leaf reached by a capture.
func (s *Solver) tacticalPass(tick int) {
	t := s.tree
	leaves := lo.Filter(t.Leaves(), func(id tree.NodeID, _ int) bool {
		return t.Node(id).Tactical && s.expandable(id)
	})
	log.Debug().Int("tick", tick).Int("tactical", len(leaves)).Msg("tactical-pass")
	for _, id := range leaves {
		if !s.expand(id) {
			return
		}
	}
}
