// Package eval scores chess positions statically. Scores are integers signed
// toward White: positive favors White, negative favors Black.
package eval

import (
	"github.com/samber/lo"

	"github.com/domino14/mlchess/game"
)

// Evaluator is a static position evaluator. Implementations must be safe to
// call from several goroutines at once.
type Evaluator interface {
	Evaluate(pos game.Position) int
}

// Static sums a list of terms. Checkmate overrides all terms, and every
// other score is clamped so that a mate always outranks it.
type Static struct {
	params Params
	terms  []Term
}

func New(params Params) *Static {
	return &Static{
		params: params,
		terms: []Term{
			NewMaterialTerm(params),
			CentralizationTerm{weight: params.CentralizationWeight},
			KingTerm{weight: params.KingWeight},
			CheckTerm{penalty: params.CheckPenalty},
		},
	}
}

// NewDefault returns an evaluator with DefaultParams.
func NewDefault() *Static {
	return New(DefaultParams())
}

func (s *Static) Params() Params {
	return s.params
}

func (s *Static) Terms() []Term {
	return s.terms
}

func (s *Static) Evaluate(pos game.Position) int {
	if pos.IsCheckmate() {
		// the side to move has lost
		return -pos.Turn().Sign() * s.params.MateScore
	}
	score := lo.SumBy(s.terms, func(t Term) int {
		return t.Score(pos)
	})
	limit := s.params.MateScore - 1
	return max(-limit, min(limit, score))
}

// Breakdown returns each term's contribution to pos, keyed by term name.
// Checkmate positions are not special-cased.
func (s *Static) Breakdown(pos game.Position) map[string]int {
	return lo.SliceToMap(s.terms, func(t Term) (string, int) {
		return t.Name(), t.Score(pos)
	})
}

// IsMateScore reports whether v is a checkmate score under p.
func (p Params) IsMateScore(v int) bool {
	return v >= p.MateScore || v <= -p.MateScore
}
