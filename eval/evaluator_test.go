package eval_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestStartPositionIsEven(t *testing.T) {
	ev := eval.NewDefault()
	assert.Equal(t, 0, ev.Evaluate(game.StartPosition()))
}

func TestHandComputedScores(t *testing.T) {
	ev := eval.NewDefault()
	type testcase struct {
		fen   string
		score int
	}
	for _, tc := range []testcase{
		// kings only; both kings are 3 from the center
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", 0},
		// queen d4 is central, rook a8 sits in a corner
		{"r3k3/8/8/8/3Q4/8/8/4K3 w - - 0 1", 900 - 500 + 4},
		// white to move and in check from a1
		{"4k3/8/8/8/8/8/8/r3K3 w - - 0 1", -500 + 4 - 150},
	} {
		pos := testhelpers.MustPosition(tc.fen)
		assert.Equal(t, tc.score, ev.Evaluate(pos), tc.fen)
	}
}

func TestMateScores(t *testing.T) {
	ev := eval.NewDefault()
	mated := testhelpers.MustPosition(testhelpers.FoolsMateFEN)
	assert.Equal(t, -1200, ev.Evaluate(mated))

	pos := testhelpers.MustPosition(testhelpers.MateInOneFEN)
	after := pos.Apply(testhelpers.MustMove(pos, "Ra8#"))
	assert.Equal(t, 1200, ev.Evaluate(after))
	assert.True(t, ev.Params().IsMateScore(ev.Evaluate(after)))
}

func TestNonMateScoresAreClamped(t *testing.T) {
	ev := eval.NewDefault()
	pos := testhelpers.MustPosition("4k3/8/8/8/8/8/8/QQQQK3 b - - 0 1")
	assert.Equal(t, 1199, ev.Evaluate(pos))
	assert.Equal(t, -1199, ev.Evaluate(pos.Mirror()))
}

func TestDeterministic(t *testing.T) {
	ev := eval.NewDefault()
	pos := testhelpers.MustPosition(testhelpers.TacticalFEN)
	first := ev.Evaluate(pos)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ev.Evaluate(pos))
	}
}

func randomPosition(plies int) game.Position {
	pos := game.StartPosition()
	for i := 0; i < plies; i++ {
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			break
		}
		pos = pos.Apply(moves[frand.Intn(len(moves))])
	}
	return pos
}

func TestMirrorNegatesScore(t *testing.T) {
	ev := eval.NewDefault()
	for i := 0; i < 200; i++ {
		pos := randomPosition(frand.Intn(60))
		assert.Equal(t, -ev.Evaluate(pos), ev.Evaluate(pos.Mirror()), pos.FEN())
	}
}

func TestBreakdownSumsToScore(t *testing.T) {
	ev := eval.NewDefault()
	pos := testhelpers.MustPosition(testhelpers.TacticalFEN)
	total := 0
	for _, v := range ev.Breakdown(pos) {
		total += v
	}
	assert.Equal(t, ev.Evaluate(pos), total)
	assert.Len(t, ev.Breakdown(pos), 4)
}

func TestLoadParams(t *testing.T) {
	p, err := eval.LoadParams("")
	require.NoError(t, err)
	assert.Equal(t, eval.DefaultParams(), p)

	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("check_penalty: 50\nqueen: 950\n"), 0o644))
	p, err = eval.LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 50, p.CheckPenalty)
	assert.Equal(t, 950, p.QueenValue)
	assert.Equal(t, 500, p.RookValue)

	ev := eval.New(p)
	pos := testhelpers.MustPosition("4k3/8/8/8/8/8/8/r3K3 w - - 0 1")
	assert.Equal(t, -500+4-50, ev.Evaluate(pos))
}

func TestLoadParamsErrors(t *testing.T) {
	_, err := eval.LoadParams(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pawn: -3\n"), 0o644))
	_, err = eval.LoadParams(path)
	assert.ErrorIs(t, err, eval.ErrBadParams)

	require.NoError(t, os.WriteFile(path, []byte("pawn: [1, 2"), 0o644))
	_, err = eval.LoadParams(path)
	assert.ErrorIs(t, err, eval.ErrBadParams)
}

func TestValidate(t *testing.T) {
	p := eval.DefaultParams()
	assert.NoError(t, p.Validate())
	p.MateScore = 100
	assert.ErrorIs(t, p.Validate(), eval.ErrBadParams)
}
