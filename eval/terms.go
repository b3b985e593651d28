package eval

import (
	"math"

	"github.com/domino14/mlchess/game"
)

// Term is one additive piece of the static evaluation, signed toward White.
type Term interface {
	Score(pos game.Position) int
	Name() string
}

// centerDistance folds the board onto one quarter so that the a/h files and
// 1st/8th ranks are 3 away from the center and the d/e files and 4th/5th
// ranks are 0 away, then takes the truncated Euclidean norm.
var centerDistance = func() [64]int {
	var d [64]int
	fold := func(x int) int {
		return 3 - min(x, 7-x)
	}
	for sq := 0; sq < 64; sq++ {
		df := fold(sq % 8)
		dr := fold(sq / 8)
		d[sq] = int(math.Sqrt(float64(df*df + dr*dr)))
	}
	return d
}()

func CenterDistance(sq game.Square) int {
	return centerDistance[sq]
}

type MaterialTerm struct {
	values [game.King + 1]int
}

func NewMaterialTerm(p Params) MaterialTerm {
	var mt MaterialTerm
	mt.values[game.Pawn] = p.PawnValue
	mt.values[game.Knight] = p.KnightValue
	mt.values[game.Bishop] = p.BishopValue
	mt.values[game.Rook] = p.RookValue
	mt.values[game.Queen] = p.QueenValue
	return mt
}

func (mt MaterialTerm) Score(pos game.Position) int {
	score := 0
	pos.Pieces(func(sq game.Square, pc game.Piece) {
		score += pc.Color.Sign() * mt.values[pc.Type]
	})
	return score
}

func (mt MaterialTerm) Name() string {
	return "material"
}

// CentralizationTerm rewards White for central pieces and Black for pieces
// on the rim, so each side wants its own pieces central and the opponent's
// pushed out. Kings are left to KingTerm.
type CentralizationTerm struct {
	weight int
}

func (ct CentralizationTerm) Score(pos game.Position) int {
	score := 0
	pos.Pieces(func(sq game.Square, pc game.Piece) {
		if pc.Type == game.King {
			return
		}
		score -= pc.Color.Sign() * ct.weight * centerDistance[sq]
	})
	return score
}

func (ct CentralizationTerm) Name() string {
	return "centralization"
}

// KingTerm has the opposite sign to CentralizationTerm: a king away from
// the center is worth a little to its owner.
type KingTerm struct {
	weight int
}

func (kt KingTerm) Score(pos game.Position) int {
	score := 0
	pos.Pieces(func(sq game.Square, pc game.Piece) {
		if pc.Type != game.King {
			return
		}
		score += pc.Color.Sign() * kt.weight * centerDistance[sq]
	})
	return score
}

func (kt KingTerm) Name() string {
	return "king"
}

type CheckTerm struct {
	penalty int
}

func (ct CheckTerm) Score(pos game.Position) int {
	if !pos.InCheck() {
		return 0
	}
	return -pos.Turn().Sign() * ct.penalty
}

func (ct CheckTerm) Name() string {
	return "check"
}
