package selective_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/selective"
	"github.com/domino14/mlchess/testhelpers"
	"github.com/domino14/mlchess/tree"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func solver(ticks int) *selective.Solver {
	opts := selective.DefaultOptions()
	opts.TickCount = ticks
	opts.MaxNodes = 1 << 20
	return selective.NewSolver(eval.NewDefault(), opts)
}

func isLegal(pos game.Position, m game.Move) bool {
	for _, lm := range pos.LegalMoves() {
		if lm == m {
			return true
		}
	}
	return false
}

func TestOpeningMove(t *testing.T) {
	is := is.New(t)
	pos := game.StartPosition()
	for ticks := 0; ticks <= 2; ticks++ {
		res, err := solver(ticks).BestMove(context.Background(), pos)
		is.NoErr(err)
		is.True(res.Found)
		is.True(!res.ForcedMate)
		is.True(isLegal(pos, res.Move))
		is.True(!pos.Apply(res.Move).InCheck()) // black is not checked on move one
		is.True(len(res.Line) >= 1)
		is.Equal(res.Line[0], res.Move)
	}
}

func TestBlackMovesToo(t *testing.T) {
	is := is.New(t)
	pos := game.StartPosition()
	pos = pos.Apply(testhelpers.MustMove(pos, "e2e4"))
	res, err := solver(1).BestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(isLegal(pos, res.Move))
}

func TestMateInOne(t *testing.T) {
	is := is.New(t)
	pos := testhelpers.MustPosition(testhelpers.MateInOneFEN)
	res, err := solver(1).BestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(res.ForcedMate)
	is.Equal(res.Move.String(), "a1a8")
	is.Equal(res.Value, 1200)
	is.True(pos.Apply(res.Move).IsCheckmate())
}

func TestMateInTwo(t *testing.T) {
	is := is.New(t)
	pos := testhelpers.MustPosition(testhelpers.MateInTwoFEN)
	res, err := solver(1).BestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(res.ForcedMate)
	is.Equal(res.Move.String(), "b1b7")
	is.Equal(len(res.Line), 3)
	for _, m := range res.Line {
		pos = pos.Apply(m)
	}
	is.True(pos.IsCheckmate())
}

func TestMateBudgetGrowsPerTick(t *testing.T) {
	is := is.New(t)
	pos := testhelpers.MustPosition(testhelpers.MateInThreeFEN)

	// tick 0 proves with budget 1, which only covers mate in two
	res, err := solver(1).BestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(res.Found)
	is.True(!res.ForcedMate)

	res, err = solver(2).BestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(res.ForcedMate)
	is.Equal(res.Move.String(), "d2a2")
	is.Equal(res.Value, 1200)
	is.Equal(len(res.Line)%2, 1)
	is.True(len(res.Line) <= 5)
	for _, m := range res.Line {
		pos = pos.Apply(m)
	}
	is.True(pos.IsCheckmate())
}

func TestTerminalRoot(t *testing.T) {
	is := is.New(t)
	res, err := solver(1).BestMove(context.Background(), testhelpers.MustPosition(testhelpers.FoolsMateFEN))
	is.NoErr(err)
	is.True(!res.Found)
	is.Equal(res.Outcome, game.Checkmate)

	res, err = solver(1).BestMove(context.Background(), testhelpers.MustPosition(testhelpers.StalemateFEN))
	is.NoErr(err)
	is.True(!res.Found)
	is.Equal(res.Outcome, game.Stalemate)
}

func TestTreeIsPromoted(t *testing.T) {
	is := is.New(t)
	s := solver(1)
	pos := game.StartPosition()
	res, err := s.BestMove(context.Background(), pos)
	is.NoErr(err)
	next := pos.Apply(res.Move)
	tr := s.Tree()
	root := tr.Node(tr.Root())
	is.Equal(root.Parent(), tree.NoNode)
	is.Equal(root.Pos.FEN(), next.FEN())
	kept := tr.Len()
	is.True(kept > 1) // the chosen child was expanded in the breadth pass

	// deciding again from the promoted root keeps the subtree
	res, err = s.BestMove(context.Background(), next)
	is.NoErr(err)
	is.True(isLegal(next, res.Move))

	s.Reset(pos)
	is.Equal(s.Tree().Len(), 1)
}

func TestSmallTree(t *testing.T) {
	is := is.New(t)
	opts := selective.DefaultOptions()
	opts.MaxNodes = 100
	s := selective.NewSolver(eval.NewDefault(), opts)
	pos := testhelpers.MustPosition(testhelpers.TacticalFEN)
	res, err := s.BestMove(context.Background(), pos)
	is.NoErr(err)
	is.True(res.Found)
	is.True(isLegal(pos, res.Move))
	is.True(res.Nodes <= 100)
}

func TestCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := solver(2).BestMove(ctx, game.StartPosition())
	is.True(errors.Is(err, context.Canceled))
}
