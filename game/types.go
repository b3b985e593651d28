// Package game wraps the chess rules libraries behind an immutable Position
// value. Everything about legality, move generation, check, mate and draw
// detection lives here; the search packages only ever ask questions of a
// Position and apply moves to get new ones.
package game

import (
	"fmt"

	dragon "github.com/dylhunn/dragontoothmg"
)

// Color is the side to move. White is the maximizing side: scores are
// always signed positive toward White.
type Color int8

const (
	White Color = 1
	Black Color = -1
)

func (c Color) Opponent() Color {
	return -c
}

// Sign returns +1 for White and -1 for Black.
func (c Color) Sign() int {
	return int(c)
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w", "White", "WHITE":
		return White, nil
	case "black", "b", "Black", "BLACK":
		return Black, nil
	}
	return White, fmt.Errorf("%v is not a color", s)
}

type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = [...]string{"", "p", "n", "b", "r", "q", "k"}

func (pt PieceType) String() string {
	if int(pt) < len(pieceLetters) {
		return pieceLetters[pt]
	}
	return "?"
}

type Piece struct {
	Type  PieceType
	Color Color
}

// Square indexes the board from a1 (0) to h8 (63), rank-major.
type Square uint8

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (s Square) File() int {
	return int(s) % 8
}

func (s Square) Rank() int {
	return int(s) / 8
}

func (s Square) String() string {
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// Outcome describes whether the game can continue from a position.
type Outcome int

const (
	Ongoing Outcome = iota
	Checkmate
	Stalemate
	// Draw means a draw can be claimed (fifty-move rule or threefold
	// repetition). Play may still continue.
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Draw:
		return "draw"
	}
	return "ongoing"
}

// Move is a legal move in a specific position. Two moves generated from
// the same position are the same move iff they compare equal.
type Move dragon.Move

const NoMove Move = 0

func (m Move) From() Square {
	return Square(dragon.Move(m).From())
}

func (m Move) To() Square {
	return Square(dragon.Move(m).To())
}

func (m Move) Promotion() PieceType {
	return fromDragonPiece(dragon.Move(m).Promote())
}

// String returns the move in long algebraic (UCI) form, e.g. e2e4, e7e8q.
func (m Move) String() string {
	if m == NoMove {
		return "(none)"
	}
	return dragon.Move(m).String()
}

func fromDragonPiece(p dragon.Piece) PieceType {
	switch p {
	case dragon.Pawn:
		return Pawn
	case dragon.Knight:
		return Knight
	case dragon.Bishop:
		return Bishop
	case dragon.Rook:
		return Rook
	case dragon.Queen:
		return Queen
	case dragon.King:
		return King
	}
	return NoPieceType
}
