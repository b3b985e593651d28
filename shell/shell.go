package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/mlchess/bot"
	"github.com/domino14/mlchess/config"
	"github.com/domino14/mlchess/game"
)

var errQuit = errors.New("quit")

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	cfg         *config.Config
	engine      *bot.Engine
	strategy    bot.StrategyConfig
	engineColor game.Color
	autoplay    bool
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc, err := newController(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mmlchess>\033[0m ",
		HistoryFile:     "/tmp/mlchess_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stdout()
	return sc, nil
}

func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	engine, err := bot.NewEngineFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	color, err := game.ParseColor(cfg.GetString(config.ConfigEngineColor))
	if err != nil {
		return nil, err
	}
	return &ShellController{
		out:         out,
		cfg:         cfg,
		engine:      engine,
		strategy:    bot.StrategyConfigFromConfig(cfg),
		engineColor: color,
		autoplay:    cfg.GetBool(config.ConfigAutoplay),
	}, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Execute runs one command line.
func (sc *ShellController) Execute(ctx context.Context, line string) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "exit", "quit":
		return errQuit
	case "help":
		if len(args) == 0 {
			usage(sc.out)
		} else {
			usageTopic(sc.out, args[0])
		}
		return nil
	case "new":
		return sc.newGame(ctx, args)
	case "move", "m":
		return sc.userMove(ctx, args)
	case "go":
		return sc.engineMove(ctx, args)
	case "set":
		return sc.set(args)
	case "show":
		sc.show()
		return nil
	case "analyze":
		return sc.analyze(ctx)
	case "tree":
		return sc.showTree()
	case "history":
		sc.history()
		return nil
	}
	// a bare move is accepted too
	if _, perr := game.ParseMove(sc.engine.CurrentPosition(), line); perr == nil {
		return sc.userMove(ctx, []string{line})
	}
	log.Debug().Msgf("you said: %v", strconv.Quote(line))
	return fmt.Errorf("unknown command %q; try help", cmd)
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()
	sc.show()
	if err := sc.maybeEngineMove(ctx); err != nil {
		sc.showError(err)
	}
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		err = sc.Execute(ctx, line)
		if errors.Is(err, errQuit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
