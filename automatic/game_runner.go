// Package automatic plays the engine against itself, for benchmarking move
// times and for collecting games.
package automatic

import (
	"context"
	"fmt"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mlchess/bot"
	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
)

// GameRecord is one finished (or abandoned) self-play game.
type GameRecord struct {
	ID      int
	Start   game.Position
	Moves   []game.Move
	Outcome game.Outcome
	// Winner is only meaningful when Outcome is Checkmate.
	Winner game.Color
	// RandomPlies moves at the start were chosen at random, not searched.
	RandomPlies int
	MoveTimes   []time.Duration
}

// Result is the PGN result token.
func (g *GameRecord) Result() string {
	switch g.Outcome {
	case game.Checkmate:
		if g.Winner == game.White {
			return "1-0"
		}
		return "0-1"
	case game.Stalemate, game.Draw:
		return "1/2-1/2"
	}
	return "*"
}

// PGN renders the game with standard algebraic moves.
func (g *GameRecord) PGN() (string, error) {
	opts := []func(*chess.Game){}
	if g.Start.FEN() != game.StartPosition().FEN() {
		fen, err := chess.FEN(g.Start.FEN())
		if err != nil {
			return "", err
		}
		opts = append(opts, fen)
	}
	cg := chess.NewGame(opts...)
	cg.AddTagPair("Event", "mlchess self-play")
	cg.AddTagPair("Round", fmt.Sprint(g.ID))
	cg.AddTagPair("Result", g.Result())
	for _, m := range g.Moves {
		mv, err := chess.UCINotation{}.Decode(cg.Position(), m.String())
		if err != nil {
			return "", err
		}
		if err := cg.Move(mv); err != nil {
			return "", err
		}
	}
	return cg.String(), nil
}

// GameRunner plays games between two strategy configurations.
type GameRunner struct {
	white, black bot.StrategyConfig
	params       eval.Params
	randomPlies  int
	maxPlies     int
	logchan      chan string
}

func NewGameRunner(white, black bot.StrategyConfig, params eval.Params,
	randomPlies, maxPlies int, logchan chan string) *GameRunner {

	return &GameRunner{
		white: white, black: black, params: params,
		randomPlies: randomPlies, maxPlies: maxPlies, logchan: logchan,
	}
}

// PlayGame plays from start until mate, stalemate, a claimable draw, or
// the ply cap. The seed picks the random opening plies.
func (r *GameRunner) PlayGame(ctx context.Context, id int, start game.Position, seed [32]byte) (*GameRecord, error) {
	engine := bot.NewEngine(start, r.params)
	rng := seededRNG(seed)
	rec := &GameRecord{ID: id, Start: start}

	for ply := 0; r.maxPlies <= 0 || ply < r.maxPlies; ply++ {
		pos := engine.CurrentPosition()
		if o := pos.Outcome(); o != game.Ongoing {
			rec.Outcome = o
			break
		}
		if ply < r.randomPlies {
			moves := pos.LegalMoves()
			m := moves[rng.Intn(len(moves))]
			if err := engine.SubmitUserMove(m.String()); err != nil {
				return nil, err
			}
			rec.RandomPlies++
			continue
		}
		sc := r.white
		if pos.Turn() == game.Black {
			sc = r.black
		}
		d, err := engine.RequestEngineMove(ctx, sc)
		if err != nil {
			return nil, err
		}
		rec.MoveTimes = append(rec.MoveTimes, d.Elapsed)
		if r.logchan != nil {
			r.logchan <- fmt.Sprintf("%d,%d,%s,%s,%s,%d,%d,%d\n", id, ply+1, pos.Turn(),
				d.Strategy, game.SAN(pos, d.Move), d.Value, d.Nodes, d.Elapsed.Microseconds())
		}
	}
	rec.Moves = engine.History()
	if rec.Outcome == game.Ongoing {
		// the cap may have been reached on a finished position
		rec.Outcome = engine.Outcome()
	}
	if rec.Outcome == game.Checkmate {
		rec.Winner = engine.CurrentPosition().Turn().Opponent()
	}
	log.Debug().Int("game", id).Int("plies", len(rec.Moves)).
		Str("result", rec.Result()).Msg("game-over")
	return rec, nil
}
