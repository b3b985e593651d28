package eval

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrBadParams = errors.New("bad evaluation parameters")

// Params holds every constant the evaluator uses. It is passed by value so
// an evaluator never sees later changes made by the caller.
type Params struct {
	PawnValue   int `yaml:"pawn"`
	KnightValue int `yaml:"knight"`
	BishopValue int `yaml:"bishop"`
	RookValue   int `yaml:"rook"`
	QueenValue  int `yaml:"queen"`

	// MateScore is returned for checkmate. Every other score is kept
	// strictly inside (-MateScore, MateScore).
	MateScore    int `yaml:"mate_score"`
	CheckPenalty int `yaml:"check_penalty"`

	CentralizationWeight int `yaml:"centralization_weight"`
	KingWeight           int `yaml:"king_weight"`
}

func DefaultParams() Params {
	return Params{
		PawnValue:            100,
		KnightValue:          280,
		BishopValue:          320,
		RookValue:            500,
		QueenValue:           900,
		MateScore:            1200,
		CheckPenalty:         150,
		CentralizationWeight: 1,
		KingWeight:           1,
	}
}

func (p Params) Validate() error {
	for name, v := range map[string]int{
		"pawn": p.PawnValue, "knight": p.KnightValue, "bishop": p.BishopValue,
		"rook": p.RookValue, "queen": p.QueenValue,
	} {
		if v <= 0 {
			return fmt.Errorf("%w: %s value must be positive, got %d", ErrBadParams, name, v)
		}
	}
	if p.CheckPenalty < 0 || p.CentralizationWeight < 0 || p.KingWeight < 0 {
		return fmt.Errorf("%w: penalties and weights cannot be negative", ErrBadParams)
	}
	if p.MateScore <= p.CheckPenalty {
		return fmt.Errorf("%w: mate score %d must exceed check penalty %d",
			ErrBadParams, p.MateScore, p.CheckPenalty)
	}
	return nil
}

// LoadParams reads a YAML file. Keys missing from the file keep their
// default values.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}
	bts, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(bts, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return p, p.Validate()
}
