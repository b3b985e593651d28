package game

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	dragon "github.com/dylhunn/dragontoothmg"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrBadFEN = errors.New("bad fen")

// keyChain is the list of position keys since the last irreversible move,
// newest first. Chains are shared between positions and never modified.
type keyChain struct {
	key  uint64
	prev *keyChain
}

// Position is an immutable game state. The zero value is not useful; use
// StartPosition or FromFEN. Copying a Position is cheap and the copy is
// fully independent, so positions can be handed to other goroutines.
type Position struct {
	board   dragon.Board
	last    Move
	capture bool
	keys    *keyChain
}

func StartPosition() Position {
	p, err := FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// FromFEN parses a position. Fields after the castling field are optional.
func FromFEN(fen string) (pos Position, err error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 || len(fields) > 6 {
		return Position{}, fmt.Errorf("%w: expected 2 to 6 fields, got %d", ErrBadFEN, len(fields))
	}
	if strings.Count(fields[0], "/") != 7 {
		return Position{}, fmt.Errorf("%w: expected 8 ranks in %q", ErrBadFEN, fields[0])
	}
	if fields[1] != "w" && fields[1] != "b" {
		return Position{}, fmt.Errorf("%w: bad side to move %q", ErrBadFEN, fields[1])
	}
	if strings.Count(fields[0], "K") != 1 || strings.Count(fields[0], "k") != 1 {
		return Position{}, fmt.Errorf("%w: each side needs exactly one king", ErrBadFEN)
	}
	defaults := []string{"", "", "-", "-", "0", "1"}
	for len(fields) < 6 {
		fields = append(fields, defaults[len(fields)])
	}
	defer func() {
		// the parser indexes without bounds checks
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBadFEN, r)
		}
	}()
	b := dragon.ParseFen(strings.Join(fields, " "))
	pos = Position{board: b}
	pos.keys = &keyChain{key: b.Hash()}
	return pos, nil
}

func (p Position) FEN() string {
	b := p.board
	return b.ToFen()
}

func (p Position) String() string {
	return p.FEN()
}

// Key is a hash of the placement, side to move, castling and en passant
// state. Equal positions have equal keys.
func (p Position) Key() uint64 {
	b := p.board
	return b.Hash()
}

func (p Position) Turn() Color {
	if p.board.Wtomove {
		return White
	}
	return Black
}

// LastMove is the move that produced this position, or NoMove for a root
// built from a FEN.
func (p Position) LastMove() Move {
	return p.last
}

// Captured reports whether the move that produced this position captured
// material. En passant counts.
func (p Position) Captured() bool {
	return p.capture
}

func (p Position) HalfMoveClock() int {
	return int(p.board.Halfmoveclock)
}

func (p Position) FullMoveNumber() int {
	return int(p.board.Fullmoveno)
}

func (p Position) LegalMoves() []Move {
	b := p.board
	dms := b.GenerateLegalMoves()
	moves := make([]Move, len(dms))
	for i, m := range dms {
		moves[i] = Move(m)
	}
	return moves
}

// Apply returns the position after m. m must be legal in p.
func (p Position) Apply(m Move) Position {
	b := p.board
	capture := isCapture(&b, m)
	b.Apply(dragon.Move(m))
	next := Position{board: b, last: m, capture: capture}
	key := b.Hash()
	if b.Halfmoveclock == 0 {
		next.keys = &keyChain{key: key}
	} else {
		next.keys = &keyChain{key: key, prev: p.keys}
	}
	return next
}

func (p Position) InCheck() bool {
	b := p.board
	return b.OurKingInCheck()
}

func (p Position) IsCheckmate() bool {
	return p.InCheck() && !p.hasLegalMove()
}

func (p Position) IsStalemate() bool {
	return !p.InCheck() && !p.hasLegalMove()
}

// CanClaimDraw reports a fifty-move or threefold-repetition claim.
func (p Position) CanClaimDraw() bool {
	if p.board.Halfmoveclock >= 100 {
		return true
	}
	return p.Repetitions() >= 3
}

// Repetitions counts how many times this position occurred since the last
// irreversible move, including now.
func (p Position) Repetitions() int {
	if p.keys == nil {
		return 1
	}
	n := 0
	for k := p.keys; k != nil; k = k.prev {
		if k.key == p.keys.key {
			n++
		}
	}
	return n
}

// Outcome generates moves once and classifies the position.
func (p Position) Outcome() Outcome {
	if !p.hasLegalMove() {
		if p.InCheck() {
			return Checkmate
		}
		return Stalemate
	}
	if p.CanClaimDraw() {
		return Draw
	}
	return Ongoing
}

func (p Position) hasLegalMove() bool {
	b := p.board
	return len(b.GenerateLegalMoves()) > 0
}

func (p Position) PieceAt(sq Square) (Piece, bool) {
	mask := uint64(1) << sq
	for _, side := range []struct {
		bb    *dragon.Bitboards
		color Color
	}{{&p.board.White, White}, {&p.board.Black, Black}} {
		if side.bb.All&mask == 0 {
			continue
		}
		for _, pt := range []PieceType{Pawn, Knight, Bishop, Rook, Queen, King} {
			if pieceBitboard(side.bb, pt)&mask != 0 {
				return Piece{Type: pt, Color: side.color}, true
			}
		}
	}
	return Piece{}, false
}

// Pieces calls fn for every piece on the board, white pieces first, then
// by piece type and square.
func (p Position) Pieces(fn func(sq Square, pc Piece)) {
	sides := []struct {
		bb    dragon.Bitboards
		color Color
	}{{p.board.White, White}, {p.board.Black, Black}}
	for _, side := range sides {
		for _, pt := range []PieceType{Pawn, Knight, Bishop, Rook, Queen, King} {
			bb := pieceBitboard(&side.bb, pt)
			for bb != 0 {
				sq := Square(bits.TrailingZeros64(bb))
				bb &= bb - 1
				fn(sq, Piece{Type: pt, Color: side.color})
			}
		}
	}
}

// Mirror flips the board vertically and swaps colors. History is not kept.
func (p Position) Mirror() Position {
	fields := strings.Fields(p.FEN())
	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		fields[2] = swapCase(fields[2])
		// keep the conventional KQkq ordering
		var sb strings.Builder
		for _, c := range "KQkq" {
			if strings.ContainsRune(fields[2], c) {
				sb.WriteRune(c)
			}
		}
		fields[2] = sb.String()
	}
	if fields[3] != "-" && len(fields[3]) == 2 {
		fields[3] = string([]byte{fields[3][0], '1' + ('8' - fields[3][1])})
	}
	m, err := FromFEN(strings.Join(fields, " "))
	if err != nil {
		panic(err)
	}
	return m
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, s)
}

func pieceBitboard(bb *dragon.Bitboards, pt PieceType) uint64 {
	switch pt {
	case Pawn:
		return bb.Pawns
	case Knight:
		return bb.Knights
	case Bishop:
		return bb.Bishops
	case Rook:
		return bb.Rooks
	case Queen:
		return bb.Queens
	case King:
		return bb.Kings
	}
	return 0
}

// isCapture must be called before m is applied to b.
func isCapture(b *dragon.Board, m Move) bool {
	own, opp := &b.White, &b.Black
	if !b.Wtomove {
		own, opp = opp, own
	}
	if opp.All&(uint64(1)<<m.To()) != 0 {
		return true
	}
	// a pawn that changes file without landing on a piece took en passant
	return own.Pawns&(uint64(1)<<m.From()) != 0 && m.From().File() != m.To().File()
}
