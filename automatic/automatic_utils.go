package automatic

// Engine-vs-engine games, played concurrently.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/mlchess/game"
	"github.com/domino14/mlchess/stats"
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

var (
	CVCCounter *expvar.Int
	// IsPlaying publishes playing; only playing decides who may start.
	IsPlaying *expvar.Int
	playing   atomic.Bool
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Summary aggregates a batch of self-play games.
type Summary struct {
	Games       int
	WhiteWins   int
	BlackWins   int
	Draws       int
	Unfinished  int
	SearchMoves int
	MeanMove    time.Duration
	StdDevMove  time.Duration
	// WhiteScore is White's points per finished game (1, 1/2 or 0).
	WhiteScore stats.Interval
}

func (s Summary) String() string {
	return fmt.Sprintf("%d games: +%d white, +%d black, =%d, %d unfinished; "+
		"%d searched moves, mean %v (sd %v)",
		s.Games, s.WhiteWins, s.BlackWins, s.Draws, s.Unfinished,
		s.SearchMoves, s.MeanMove, s.StdDevMove) +
		fmt.Sprintf("; white score %.3f (%.0f%%: %.3f to %.3f)",
			s.WhiteScore.Mean, s.WhiteScore.Confidence, s.WhiteScore.Low, s.WhiteScore.High)
}

const scoreConfidence = 95

func Summarize(records []*GameRecord) Summary {
	s := Summary{Games: len(records)}
	var times, points []float64
	for _, r := range records {
		switch r.Result() {
		case "1-0":
			s.WhiteWins++
			points = append(points, 1)
		case "0-1":
			s.BlackWins++
			points = append(points, 0)
		case "1/2-1/2":
			s.Draws++
			points = append(points, 0.5)
		default:
			s.Unfinished++
		}
		for _, t := range r.MoveTimes {
			times = append(times, float64(t))
		}
	}
	s.WhiteScore = stats.MeanInterval(points, scoreConfidence)
	s.SearchMoves = len(times)
	if len(times) > 0 {
		mean, std := stat.MeanStdDev(times, nil)
		s.MeanMove = time.Duration(mean)
		if len(times) > 1 {
			s.StdDevMove = time.Duration(std)
		}
	}
	return s
}

// PlayGames plays one game per seed, up to threads at a time, and writes
// every game as PGN to pgnOut (if not nil) in seed order.
func PlayGames(ctx context.Context, r *GameRunner, start game.Position, seeds [][32]byte,
	threads int, pgnOut io.Writer) ([]*GameRecord, error) {

	if !playing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}
	IsPlaying.Set(1)
	defer func() {
		IsPlaying.Set(0)
		playing.Store(false)
	}()
	CVCCounter.Set(0)
	log.Debug().Msgf("Starting %v games, %v threads", len(seeds), threads)

	records := make([]*GameRecord, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, threads))
	for i, seed := range seeds {
		g.Go(func() error {
			rec, err := r.PlayGame(gctx, i+1, start, seed)
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			records[i] = rec
			CVCCounter.Add(1)
			n := CVCCounter.Value()
			if n%10 == 0 {
				log.Info().Int64("finished", n).Msg("self-play-progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info().Msg("All games finished.")

	if pgnOut != nil {
		for _, rec := range records {
			pgn, err := rec.PGN()
			if err != nil {
				return records, err
			}
			if _, err := io.WriteString(pgnOut, strings.TrimSpace(pgn)+"\n\n"); err != nil {
				return records, err
			}
		}
	}
	return records, nil
}
