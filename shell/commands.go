package shell

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/mlchess/bot"
	"github.com/domino14/mlchess/config"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/parallel"
	"github.com/domino14/mlchess/tree"
)

func (sc *ShellController) newGame(ctx context.Context, args []string) error {
	pos := game.StartPosition()
	if len(args) > 0 {
		var err error
		pos, err = game.FromFEN(strings.Join(args, " "))
		if err != nil {
			return err
		}
	}
	sc.engine.NewGame(pos)
	sc.show()
	return sc.maybeEngineMove(ctx)
}

func (sc *ShellController) userMove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("move needs a move, e.g. move e2e4")
	}
	if sc.gameOver() {
		return errors.New("the game is over; use new to start again")
	}
	if err := sc.engine.SubmitUserMove(strings.Join(args, " ")); err != nil {
		return err
	}
	sc.show()
	return sc.maybeEngineMove(ctx)
}

// maybeEngineMove replies for the engine when it is its turn.
func (sc *ShellController) maybeEngineMove(ctx context.Context) error {
	if !sc.autoplay || sc.gameOver() || sc.engine.CurrentPosition().Turn() != sc.engineColor {
		return nil
	}
	return sc.engineMove(ctx, nil)
}

func (sc *ShellController) engineMove(ctx context.Context, args []string) error {
	strategy := sc.strategy
	if len(args) > 0 {
		strategy.Strategy = args[0]
	}
	before := sc.engine.CurrentPosition()
	d, err := sc.engine.RequestEngineMove(ctx, strategy)
	if err != nil {
		return err
	}
	if !d.Found {
		sc.announce()
		return nil
	}
	msg := fmt.Sprintf("Engine plays %s (%s, value %d, %d nodes, %s)",
		game.SAN(before, d.Move), d.Strategy, d.Value, d.Nodes, d.Elapsed.Round(time.Millisecond))
	if d.ForcedMate {
		msg += "\nForced mate: " + game.Line(before, d.Line)
	}
	sc.showMessage(msg)
	sc.show()
	return nil
}

func (sc *ShellController) gameOver() bool {
	o := sc.engine.Outcome()
	return o == game.Checkmate || o == game.Stalemate || o == game.Draw
}

func (sc *ShellController) announce() {
	pos := sc.engine.CurrentPosition()
	switch sc.engine.Outcome() {
	case game.Checkmate:
		sc.showMessage(fmt.Sprintf("Checkmate. %s wins.", pos.Turn().Opponent()))
	case game.Stalemate:
		sc.showMessage("Stalemate. The game is drawn.")
	case game.Draw:
		sc.showMessage("A draw can be claimed. The game is drawn.")
	}
}

func (sc *ShellController) show() {
	pos := sc.engine.CurrentPosition()
	sc.showMessage(game.Diagram(pos))
	sc.showMessage("FEN: " + pos.FEN())
	status := pos.Turn().String() + " to move"
	if pos.InCheck() {
		status += ", in check"
	}
	sc.showMessage(status)
	sc.announce()
}

func (sc *ShellController) set(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set <option> <value>")
	}
	key, val := args[0], args[1]
	switch key {
	case config.ConfigStrategy:
		if val != bot.SelectiveStrategy && val != bot.ParallelStrategy {
			return fmt.Errorf("%w: %q", bot.ErrUnknownStrategy, val)
		}
		sc.strategy.Strategy = val
	case config.ConfigEngineColor:
		c, err := game.ParseColor(val)
		if err != nil {
			return err
		}
		sc.engineColor = c
	case config.ConfigAutoplay:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		sc.autoplay = b
	default:
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s needs a number: %w", key, err)
		}
		fields := map[string]*int{
			config.ConfigTickCount:      &sc.strategy.TickCount,
			config.ConfigBreadthWidth:   &sc.strategy.BreadthWidth,
			config.ConfigMateBudgetBase: &sc.strategy.MateBudgetBase,
			config.ConfigMateBudgetStep: &sc.strategy.MateBudgetStep,
			config.ConfigMaxTreeNodes:   &sc.strategy.MaxTreeNodes,
			config.ConfigSearchDepth:    &sc.strategy.SearchDepth,
			config.ConfigWorkerBudget:   &sc.strategy.WorkerBudget,
		}
		f, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown option %q", key)
		}
		*f = n
	}
	sc.cfg.Set(key, val)
	sc.showMessage(key + " set to " + val)
	return nil
}

func (sc *ShellController) analyze(ctx context.Context) error {
	pos := sc.engine.CurrentPosition()
	cands, err := sc.engine.Analyze(ctx, sc.strategy)
	if err != nil {
		return err
	}
	// best for the side to move first
	sign := float64(pos.Turn().Sign())
	order := slices.Clone(cands)
	slices.SortStableFunc(order, func(a, b parallel.Candidate) int {
		switch {
		case a.Err != nil && b.Err == nil:
			return 1
		case a.Err == nil && b.Err != nil:
			return -1
		case sign*a.Mean > sign*b.Mean:
			return -1
		case sign*a.Mean < sign*b.Mean:
			return 1
		}
		return 0
	})
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %10s %7s\n", "Move", "Mean", "Leaves")
	var means []float64
	for _, c := range order {
		if c.Err != nil {
			fmt.Fprintf(&b, "%-8s %10s %7s  %v\n", game.SAN(pos, c.Move), "-", "-", c.Err)
			continue
		}
		means = append(means, c.Mean)
		fmt.Fprintf(&b, "%-8s %10.1f %7d\n", game.SAN(pos, c.Move), c.Mean, len(c.Leaves))
	}
	sc.showMessage(b.String())
	if len(means) > 1 {
		sc.showMessage("Distribution of move means:")
		hist := histogram.Hist(min(10, len(means)), means)
		if err := histogram.Fprint(sc.out, hist, histogram.Linear(40)); err != nil {
			return err
		}
	}
	return nil
}

func (sc *ShellController) showTree() error {
	tr := sc.engine.SelectiveTree()
	if tr == nil {
		return errors.New("the selective search has not run yet")
	}
	values := tr.Backup()
	root := tr.Node(tr.Root())
	pos := root.Pos
	sc.showMessage(fmt.Sprintf("%d nodes, root %s, %d children", tr.Len(), pos.FEN(), len(root.Children())))
	children := slices.Clone(root.Children())
	sign := pos.Turn().Sign()
	slices.SortStableFunc(children, func(a, b tree.NodeID) int {
		return sign*values[b] - sign*values[a]
	})
	for i, c := range children {
		if i == 10 {
			break
		}
		n := tr.Node(c)
		sc.showMessage(fmt.Sprintf("%-8s static %6d backed-up %6d subtree-leaves %d",
			game.SAN(pos, n.Move), n.StaticScore, values[c], countLeaves(tr, c)))
	}
	return nil
}

func (sc *ShellController) history() {
	moves := sc.engine.History()
	if len(moves) == 0 {
		sc.showMessage("No moves yet.")
		return
	}
	pos := sc.engine.StartPosition()
	var b strings.Builder
	for i, m := range moves {
		if pos.Turn() == game.White {
			fmt.Fprintf(&b, "%d. ", pos.FullMoveNumber())
		} else if i == 0 {
			fmt.Fprintf(&b, "%d... ", pos.FullMoveNumber())
		}
		b.WriteString(game.SAN(pos, m))
		b.WriteString(" ")
		pos = pos.Apply(m)
	}
	sc.showMessage(strings.TrimSpace(b.String()))
}

func countLeaves(tr *tree.Tree, id tree.NodeID) int {
	n := 0
	stack := []tree.NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ch := tr.Node(cur).Children()
		if len(ch) == 0 {
			n++
		}
		stack = append(stack, ch...)
	}
	return n
}
