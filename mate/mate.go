// Package mate proves forced checkmates along checking lines. It works on a
// search tree so that every node it expands stays available to the caller.
package mate

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/tree"
)

// Prove reports whether the side to move at id, which should be in check,
// is mated by force within budget attacking moves. Every defence must meet
// an attacking reply that either mates or checks and is itself proven with
// one less move. A budget of zero or less proves nothing. Running out of
// tree space counts as no proof.
func Prove(t *tree.Tree, id tree.NodeID, budget int) bool {
	if budget <= 0 {
		return false
	}
	if !expand(t, id) {
		return false
	}
	defences := append([]tree.NodeID(nil), t.Node(id).Children()...)
	for _, d := range defences {
		if refutes(t, d, budget) {
			return false
		}
	}
	return true
}

// refutes is true when no attacking reply to defence d keeps the mate.
func refutes(t *tree.Tree, d tree.NodeID, budget int) bool {
	return mating(t, d, budget) == tree.NoNode
}

// mating returns the first attacking reply to d that mates or keeps a
// proven mating attack going.
func mating(t *tree.Tree, d tree.NodeID, budget int) tree.NodeID {
	if !expand(t, d) {
		return tree.NoNode
	}
	replies := append([]tree.NodeID(nil), t.Node(d).Children()...)
	for _, f := range replies {
		pos := t.Node(f).Pos
		if !pos.InCheck() {
			continue
		}
		if pos.IsCheckmate() || Prove(t, f, budget-1) {
			return f
		}
	}
	return tree.NoNode
}

func expand(t *tree.Tree, id tree.NodeID) bool {
	err := t.Expand(id)
	if err == nil {
		return true
	}
	if errors.Is(err, tree.ErrTreeFull) {
		log.Debug().Err(err).Msg("mate-proof-tree-full")
	} else {
		log.Err(err).Msg("mate-proof-expand")
	}
	return false
}

// Line walks a proof from id: the first defence, then the attacking reply
// that keeps the mate, until the defender is mated. It returns nil if id is
// not proven within budget.
func Line(t *tree.Tree, id tree.NodeID, budget int) []game.Move {
	if !Prove(t, id, budget) {
		return nil
	}
	var line []game.Move
	for ; budget > 0; budget-- {
		ch := t.Node(id).Children()
		if len(ch) == 0 {
			break
		}
		d := ch[0]
		f := mating(t, d, budget)
		line = append(line, t.Node(d).Move, t.Node(f).Move)
		id = f
	}
	return line
}
