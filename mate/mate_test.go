package mate_test

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/mate"
	"github.com/domino14/mlchess/testhelpers"
	"github.com/domino14/mlchess/tree"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// afterCheck builds a tree rooted at the position after the given
// checking move.
func afterCheck(fen, move string, maxNodes int) (*tree.Tree, game.Position) {
	pos := testhelpers.MustPosition(fen)
	next := pos.Apply(testhelpers.MustMove(pos, move))
	return tree.New(next, eval.NewDefault(), maxNodes), next
}

// forced replays every defence with the rules alone.
func forced(pos game.Position, budget int) bool {
	if budget <= 0 {
		return false
	}
	for _, d := range pos.LegalMoves() {
		dp := pos.Apply(d)
		ok := false
		for _, f := range dp.LegalMoves() {
			fp := dp.Apply(f)
			if fp.IsCheckmate() || (fp.InCheck() && forced(fp, budget-1)) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func TestMateInTwo(t *testing.T) {
	is := is.New(t)
	tr, _ := afterCheck(testhelpers.MateInTwoFEN, "b1b7", 0)
	is.True(!mate.Prove(tr, tr.Root(), 0))
	is.True(mate.Prove(tr, tr.Root(), 1))
	is.True(mate.Prove(tr, tr.Root(), 2))
}

func TestNotAMate(t *testing.T) {
	is := is.New(t)
	// the king escapes to g6 after Ra7+
	tr, _ := afterCheck(testhelpers.MateInTwoFEN, "a6a7", 0)
	is.True(!mate.Prove(tr, tr.Root(), 1))
}

func TestAlreadyMated(t *testing.T) {
	is := is.New(t)
	tr := tree.New(testhelpers.MustPosition(testhelpers.FoolsMateFEN), eval.NewDefault(), 0)
	is.True(!mate.Prove(tr, tr.Root(), 0))
	is.True(mate.Prove(tr, tr.Root(), 1))
	is.Equal(len(mate.Line(tr, tr.Root(), 1)), 0)
}

func TestProofIsSound(t *testing.T) {
	is := is.New(t)
	pos := testhelpers.MustPosition(testhelpers.MateInTwoFEN)
	for _, m := range pos.LegalMoves() {
		next := pos.Apply(m)
		if !next.InCheck() {
			continue
		}
		tr := tree.New(next, eval.NewDefault(), 0)
		is.Equal(mate.Prove(tr, tr.Root(), 1), forced(next, 1)) // proof agrees with replay
	}
	next := pos.Apply(testhelpers.MustMove(pos, "b1b7"))
	is.True(forced(next, 2))
}

func TestLineEndsInMate(t *testing.T) {
	is := is.New(t)
	tr, next := afterCheck(testhelpers.MateInTwoFEN, "b1b7", 0)
	line := mate.Line(tr, tr.Root(), 1)
	is.Equal(len(line), 2)
	for _, m := range line {
		next = next.Apply(m)
	}
	is.True(next.IsCheckmate())
	is.Equal(line[1].String(), "a6a8")
}

func TestTreeFullIsNoProof(t *testing.T) {
	is := is.New(t)
	tr, _ := afterCheck(testhelpers.MateInTwoFEN, "b1b7", 3)
	is.True(!mate.Prove(tr, tr.Root(), 1))
}
