package game

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	dragon "github.com/dylhunn/dragontoothmg"
	"github.com/notnil/chess"
)

var (
	ErrUnparsableMove = errors.New("unparsable move")
	ErrIllegalMove    = errors.New("illegal move")
)

var uciRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ParseMove accepts long algebraic (e2e4, e7e8q) or standard algebraic
// (e4, Nxf7+, O-O) text and returns the matching legal move.
func ParseMove(pos Position, text string) (Move, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoMove, fmt.Errorf("%w: empty", ErrUnparsableMove)
	}
	if uciRe.MatchString(strings.ToLower(text)) {
		return parseUCI(pos, strings.ToLower(text))
	}
	uci, err := sanToUCI(pos, text)
	if err != nil {
		return NoMove, err
	}
	return parseUCI(pos, uci)
}

func parseUCI(pos Position, text string) (Move, error) {
	dm, err := dragon.ParseMove(text)
	if err != nil {
		return NoMove, fmt.Errorf("%w: %v", ErrUnparsableMove, err)
	}
	want := Move(dm)
	for _, m := range pos.LegalMoves() {
		if m.From() == want.From() && m.To() == want.To() && m.Promotion() == want.Promotion() {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
}

func notnilPosition(pos Position) (*chess.Position, error) {
	opt, err := chess.FEN(pos.FEN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFEN, err)
	}
	return chess.NewGame(opt).Position(), nil
}

func sanToUCI(pos Position, text string) (string, error) {
	np, err := notnilPosition(pos)
	if err != nil {
		return "", err
	}
	mv, err := chess.AlgebraicNotation{}.Decode(np, text)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnparsableMove, text, err)
	}
	return chess.UCINotation{}.Encode(np, mv), nil
}

// SAN renders m in standard algebraic notation. It falls back to long
// algebraic if the conversion fails.
func SAN(pos Position, m Move) string {
	np, err := notnilPosition(pos)
	if err != nil {
		return m.String()
	}
	mv, err := chess.UCINotation{}.Decode(np, m.String())
	if err != nil {
		return m.String()
	}
	return chess.AlgebraicNotation{}.Encode(np, mv)
}

// Line renders a sequence of moves starting at pos in SAN.
func Line(pos Position, moves []Move) string {
	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		parts = append(parts, SAN(pos, m))
		pos = pos.Apply(m)
	}
	return strings.Join(parts, " ")
}

// Diagram returns a text drawing of the board from White's side.
func Diagram(pos Position) string {
	np, err := notnilPosition(pos)
	if err != nil {
		return pos.FEN()
	}
	return np.Board().Draw()
}
