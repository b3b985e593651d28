package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mlchess/automatic"
	"github.com/domino14/mlchess/bot"
	"github.com/domino14/mlchess/config"
	"github.com/domino14/mlchess/eval"
	"github.com/domino14/mlchess/game"
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if cfg.GetBool(config.ConfigDebug) {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Info().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("self-play-failed")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	params, err := eval.LoadParams(cfg.GetString(config.ConfigEvalParamsPath))
	if err != nil {
		return err
	}
	start := game.StartPosition()
	if fen := cfg.GetString(config.ConfigStartFEN); fen != "" {
		if start, err = game.FromFEN(fen); err != nil {
			return err
		}
	}

	var seeds [][32]byte
	if path := cfg.GetString(config.ConfigSeedFile); path != "" {
		if seeds, err = automatic.LoadSeeds(path); err != nil {
			return err
		}
	} else {
		seeds = automatic.GenerateSeeds(cfg.GetInt(config.ConfigGames))
	}

	// both sides use the configured strategy
	sc := bot.StrategyConfigFromConfig(cfg)
	if err := sc.Validate(); err != nil {
		return err
	}
	runner := automatic.NewGameRunner(sc, sc, params,
		cfg.GetInt(config.ConfigRandomPlies), cfg.GetInt(config.ConfigMaxPlies), nil)

	var pgnOut io.Writer
	if path := cfg.GetString(config.ConfigPGNPath); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		pgnOut = f
	}

	begin := time.Now()
	records, err := automatic.PlayGames(ctx, runner, start, seeds,
		cfg.GetInt(config.ConfigConcurrency), pgnOut)
	if err != nil {
		return err
	}
	summary := automatic.Summarize(records)
	log.Info().Str("summary", summary.String()).Dur("wall", time.Since(begin)).Msg("self-play-done")
	fmt.Println(summary)
	return nil
}
