package selective

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/testhelpers"
	"github.com/domino14/mlchess/tree"
)

func rootedSolver(is *is.I, fen string, width int) *Solver {
	opts := DefaultOptions()
	opts.BreadthWidth = width
	opts.MaxNodes = 1 << 20
	s := NewSolver(eval.NewDefault(), opts)
	s.Reset(testhelpers.MustPosition(fen))
	is.NoErr(s.expandRoot())
	return s
}

// expandedFirstPly lists the root children that have been expanded, in
// tree order.
func expandedFirstPly(s *Solver) []string {
	t := s.tree
	var out []string
	for _, c := range t.Node(t.Root()).Children() {
		if t.Node(c).Expanded() {
			out = append(out, t.Node(c).Move.String())
		}
	}
	return out
}

// sameMoves compares got with want as sets.
func sameMoves(got []string, want ...string) bool {
	set := make(map[string]bool, len(want))
	for _, m := range want {
		set[m] = true
	}
	if len(got) != len(set) {
		return false
	}
	for _, m := range got {
		if !set[m] {
			return false
		}
	}
	return true
}

func TestTacticalPassIgnoresWidth(t *testing.T) {
	is := is.New(t)
	s := rootedSolver(is, testhelpers.TacticalFEN, 0)
	s.breadthPass(0)
	is.Equal(len(expandedFirstPly(s)), 0)

	s.tacticalPass(0)
	is.True(sameMoves(expandedFirstPly(s), "f3e5", "c4f7"))
}

func TestBreadthPassTakesFirstLeaves(t *testing.T) {
	is := is.New(t)
	s := rootedSolver(is, testhelpers.TacticalFEN, 1)
	tr := s.tree
	first := tr.Node(tr.Node(tr.Root()).Children()[0]).Move.String()

	s.breadthPass(0)
	is.Equal(expandedFirstPly(s), []string{first})

	s.tacticalPass(0)
	is.True(sameMoves(expandedFirstPly(s), first, "f3e5", "c4f7"))
}

func TestBreadthPassIsShallowFirst(t *testing.T) {
	is := is.New(t)
	s := rootedSolver(is, testhelpers.TacticalFEN, 1)
	s.breadthPass(0)
	s.tacticalPass(0)

	tr := s.tree
	children := tr.Node(tr.Root()).Children()
	remaining := 0
	for _, c := range children {
		if !tr.Node(c).Expanded() {
			remaining++
		}
	}
	is.True(remaining > 0)

	// exactly enough width for the rest of the first ply
	s.opts.BreadthWidth = remaining
	s.breadthPass(1)
	for _, c := range children {
		is.True(tr.Node(c).Expanded())
		for _, gc := range tr.Node(c).Children() {
			is.Equal(tr.Depth(gc), 2)
			is.True(!tr.Node(gc).Expanded())
		}
	}
}

func TestDrawnLeavesAreExpanded(t *testing.T) {
	is := is.New(t)
	s := rootedSolver(is, testhelpers.FiftyMoveFEN, 1)
	tr := s.tree
	first := tr.Node(tr.Root()).Children()[0]
	is.Equal(tr.Node(first).Pos.Outcome(), game.Draw)

	s.breadthPass(0)
	is.True(tr.Node(first).Expanded())
	is.True(len(tr.Node(first).Children()) > 0)
}

func TestTerminalLeafTakesASlot(t *testing.T) {
	is := is.New(t)
	s := rootedSolver(is, testhelpers.MateInOneFEN, 1)
	tr := s.tree
	mated := tr.Child(tr.Root(), testhelpers.MustMove(tr.Node(tr.Root()).Pos, "a1a8"))
	is.True(mated != tree.NoNode)

	// put the mated leaf first in depth order by expanding everything else
	for _, c := range tr.Node(tr.Root()).Children() {
		if c != mated {
			is.NoErr(tr.Expand(c))
		}
	}
	s.breadthPass(0)
	is.True(tr.Node(mated).Expanded())
	is.Equal(len(tr.Node(mated).Children()), 0)
}
