// Package tree is an arena of search nodes addressed by index. Nodes hold
// their parent's index and the indices of their children; promoting a child
// to be the new root compacts the arena to what is reachable from it.
package tree

import (
	"errors"
	"fmt"
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
)

var ErrTreeFull = errors.New("search tree is full")

type NodeID int32

const NoNode NodeID = -1

// approximate bytes per node including its position and child slice
const nodeSize = 320

type Node struct {
	Pos game.Position
	// Move produced Pos from the parent position. NoMove for a root built
	// from scratch.
	Move        game.Move
	StaticScore int
	// Tactical is set when Move captured material.
	Tactical bool

	parent   NodeID
	children []NodeID
	expanded bool
}

func (n *Node) Parent() NodeID {
	return n.parent
}

func (n *Node) Children() []NodeID {
	return n.children
}

func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// Expanded is true once every legal move of the node has a child. A
// terminal node is expanded and still a leaf.
func (n *Node) Expanded() bool {
	return n.expanded
}

type Tree struct {
	nodes    []Node
	root     NodeID
	ev       eval.Evaluator
	maxNodes int
}

// New starts a tree at pos. maxNodes <= 0 means no cap.
func New(pos game.Position, ev eval.Evaluator, maxNodes int) *Tree {
	t := &Tree{ev: ev, maxNodes: maxNodes}
	t.root = t.add(pos, game.NoMove, NoNode)
	return t
}

// DefaultMaxNodes sizes the arena to a fraction of physical memory.
func DefaultMaxNodes(fractionOfMemory float64) int {
	totalMem := memory.TotalMemory()
	n := fractionOfMemory * float64(totalMem) / nodeSize
	if n < 1<<16 {
		n = 1 << 16
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	log.Debug().Uint64("total-system-memory-bytes", totalMem).
		Int("max-nodes", int(n)).Msg("tree-size")
	return int(n)
}

func (t *Tree) add(pos game.Position, m game.Move, parent NodeID) NodeID {
	t.nodes = append(t.nodes, Node{
		Pos:         pos,
		Move:        m,
		StaticScore: t.ev.Evaluate(pos),
		Tactical:    pos.Captured(),
		parent:      parent,
	})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) Root() NodeID {
	return t.root
}

func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) MaxNodes() int {
	return t.maxNodes
}

func (t *Tree) Evaluator() eval.Evaluator {
	return t.ev
}

// Expand gives id one child per legal move. Children that already exist are
// kept. Expansion is all or nothing: if the new children would not fit
// under the node cap, nothing is added and ErrTreeFull is returned.
func (t *Tree) Expand(id NodeID) error {
	if t.nodes[id].expanded {
		return nil
	}
	pos := t.nodes[id].Pos
	have := make(map[game.Move]bool, len(t.nodes[id].children))
	for _, c := range t.nodes[id].children {
		have[t.nodes[c].Move] = true
	}
	var missing []game.Move
	for _, m := range pos.LegalMoves() {
		if !have[m] {
			missing = append(missing, m)
		}
	}
	if t.maxNodes > 0 && len(t.nodes)+len(missing) > t.maxNodes {
		return fmt.Errorf("%w: %d nodes, %d more needed", ErrTreeFull, len(t.nodes), len(missing))
	}
	for _, m := range missing {
		c := t.add(pos.Apply(m), m, id)
		// t.nodes may have been reallocated by add
		t.nodes[id].children = append(t.nodes[id].children, c)
	}
	t.nodes[id].expanded = true
	return nil
}

// Child returns the child of id reached by m, or NoNode.
func (t *Tree) Child(id NodeID, m game.Move) NodeID {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].Move == m {
			return c
		}
	}
	return NoNode
}

// Depth is the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		d++
	}
	return d
}

// Leaves lists the childless nodes in depth-first order, children visited
// in the order they were added.
func (t *Tree) Leaves() []NodeID {
	var leaves []NodeID
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ch := t.nodes[id].children
		if len(ch) == 0 {
			leaves = append(leaves, id)
			continue
		}
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}
	return leaves
}

// Backup computes minimax values for the whole tree. A leaf is worth its
// static score. An internal node takes the max over its children when
// White is to move and the min when Black is. The result is indexed by
// NodeID.
func (t *Tree) Backup() []int {
	values := make([]int, len(t.nodes))
	type frame struct {
		id      NodeID
		visited bool
	}
	stack := []frame{{id: t.root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[f.id]
		if len(n.children) == 0 {
			values[f.id] = n.StaticScore
			continue
		}
		if !f.visited {
			stack = append(stack, frame{id: f.id, visited: true})
			for _, c := range n.children {
				stack = append(stack, frame{id: c})
			}
			continue
		}
		values[f.id] = values[t.BestChild(f.id, values)]
	}
	return values
}

// Promote makes id the root and drops every node not in its subtree. Node
// IDs are reassigned; the new root's ID is returned.
func (t *Tree) Promote(id NodeID) NodeID {
	remap := make(map[NodeID]NodeID)
	var kept []Node
	queue := []NodeID{id}
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]
		remap[old] = NodeID(len(kept))
		kept = append(kept, t.nodes[old])
		queue = append(queue, t.nodes[old].children...)
	}
	for i := range kept {
		n := &kept[i]
		if i == 0 {
			n.parent = NoNode
		} else {
			n.parent = remap[n.parent]
		}
		children := make([]NodeID, len(n.children))
		for j, c := range n.children {
			children[j] = remap[c]
		}
		n.children = children
	}
	log.Debug().Int("before", len(t.nodes)).Int("after", len(kept)).Msg("tree-promote")
	t.nodes = kept
	t.root = 0
	return t.root
}

// PrincipalLine follows the best backed-up child from the root.
func (t *Tree) PrincipalLine(values []int) []game.Move {
	var line []game.Move
	for id := t.root; !t.nodes[id].IsLeaf(); {
		id = t.BestChild(id, values)
		line = append(line, t.nodes[id].Move)
	}
	return line
}

// BestChild returns the child of id with the best value for the side to
// move at id, first child winning ties. It returns NoNode for a leaf.
func (t *Tree) BestChild(id NodeID, values []int) NodeID {
	n := &t.nodes[id]
	if len(n.children) == 0 {
		return NoNode
	}
	white := n.Pos.Turn() == game.White
	best := n.children[0]
	for _, c := range n.children[1:] {
		if (white && values[c] > values[best]) || (!white && values[c] < values[best]) {
			best = c
		}
	}
	return best
}
