package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/mlchess/bot"
	"github.com/domino14/mlchess/config"
	"github.com/domino14/mlchess/testhelpers"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigTickCount, 1)
	cfg.Set(config.ConfigMaxTreeNodes, 1<<20)
	cfg.Set(config.ConfigSearchDepth, 2)
	out := &bytes.Buffer{}
	sc, err := newController(cfg, out)
	if err != nil {
		t.Fatal(err)
	}
	return sc, out
}

func TestUserMoveGetsReply(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	ctx := context.Background()
	is.NoErr(sc.Execute(ctx, "move e2e4"))
	is.Equal(len(sc.engine.History()), 2)
	is.True(strings.Contains(out.String(), "Engine plays"))

	is.NoErr(sc.Execute(ctx, "Nf3"))
	is.Equal(len(sc.engine.History()), 4)

	out.Reset()
	is.NoErr(sc.Execute(ctx, "history"))
	is.True(strings.HasPrefix(out.String(), "1. e4 "))
}

func TestBadInput(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	ctx := context.Background()
	err := sc.Execute(ctx, "move e2e5")
	is.True(errors.Is(err, bot.ErrIllegalMove))
	is.Equal(len(sc.engine.History()), 0)
	is.True(sc.Execute(ctx, "frobnicate") != nil)
	is.True(sc.Execute(ctx, `move "e2e4`) != nil)
	is.NoErr(sc.Execute(ctx, ""))
}

func TestSet(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	is.NoErr(sc.Execute(context.Background(), "set tick-count 2"))
	is.Equal(sc.strategy.TickCount, 2)
	is.NoErr(sc.Execute(context.Background(), "set strategy parallel"))
	is.Equal(sc.strategy.Strategy, bot.ParallelStrategy)
	is.NoErr(sc.Execute(context.Background(), "set autoplay false"))
	is.True(!sc.autoplay)
	is.True(errors.Is(sc.Execute(context.Background(), "set strategy random"), bot.ErrUnknownStrategy))
	is.True(sc.Execute(context.Background(), "set tick-count many") != nil)
	is.True(sc.Execute(context.Background(), "set colour red") != nil)
}

func TestEngineMatesAsWhite(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	ctx := context.Background()
	is.NoErr(sc.Execute(ctx, "set engine-color white"))
	is.NoErr(sc.Execute(ctx, "new "+testhelpers.MateInOneFEN))
	is.True(strings.Contains(out.String(), "Forced mate: Ra8#"))
	is.True(strings.Contains(out.String(), "Checkmate. white wins."))
	is.True(sc.Execute(ctx, "move h7h6") != nil) // game over
}

func TestAnalyzeAndTree(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	ctx := context.Background()
	is.True(sc.Execute(ctx, "tree") != nil)
	is.NoErr(sc.Execute(ctx, "analyze"))
	is.True(strings.Contains(out.String(), "Distribution of move means"))
	is.Equal(len(sc.engine.History()), 0)

	is.NoErr(sc.Execute(ctx, "go selective"))
	out.Reset()
	is.NoErr(sc.Execute(ctx, "tree"))
	is.True(strings.Contains(out.String(), "nodes"))
}

func TestHelpAndExit(t *testing.T) {
	is := is.New(t)
	sc, out := testController(t)
	ctx := context.Background()
	is.NoErr(sc.Execute(ctx, "help"))
	is.True(strings.Contains(out.String(), "Commands:"))
	is.NoErr(sc.Execute(ctx, "help set"))
	is.True(strings.Contains(out.String(), "breadth-width"))
	is.True(errors.Is(sc.Execute(ctx, "exit"), errQuit))
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	c := NewShellCompleter()
	got, n := c.Do([]rune("se"), 2)
	is.Equal(n, 2)
	is.Equal(got, [][]rune{[]rune("t ")})

	got, _ = c.Do([]rune("set strategy p"), 14)
	is.Equal(got, [][]rune{[]rune("arallel ")})
}
