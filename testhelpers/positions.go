// Package testhelpers holds positions shared by the package tests.
package testhelpers

import "github.com/domino14/mlchess/game"

const (
	StartFEN = game.StartFEN

	// White to move; Ra8 mates.
	MateInOneFEN = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"

	// White to move; Rb7+ forces Kg8/Kh8 and Ra8 mates.
	MateInTwoFEN = "8/7k/R7/8/8/8/8/1R4K1 w - - 0 1"

	// White to move; only Ra2+ mates in three with checks, nothing in two.
	MateInThreeFEN = "8/8/k7/8/8/8/3R4/2R4K w - - 0 1"

	// White to move; every reply reaches the fifty-move limit.
	FiftyMoveFEN = "4k3/8/8/8/8/8/8/R3K3 w - - 99 80"

	// White has been mated (fool's mate).
	FoolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"

	// Black to move and has no legal move.
	StalemateFEN = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"

	// White to move; Bxf7+ and Nxe5 are both captures.
	TacticalFEN = "r1bqk1nr/pppp1ppp/2n5/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"

	// Black to move with the en passant capture exf3 available.
	EnPassantFEN = "4k3/8/8/8/4pP2/8/8/4K3 b - f3 0 1"

	// White pawn on e7 can promote.
	PromotionFEN = "8/4P3/8/8/8/8/k7/4K3 w - - 0 1"
)

// MustPosition parses a FEN and panics on failure.
func MustPosition(fen string) game.Position {
	pos, err := game.FromFEN(fen)
	if err != nil {
		panic(err)
	}
	return pos
}

// MustMove parses move text in pos and panics on failure.
func MustMove(pos game.Position, text string) game.Move {
	m, err := game.ParseMove(pos, text)
	if err != nil {
		panic(err)
	}
	return m
}
