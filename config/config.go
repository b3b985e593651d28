package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug          = "debug"
	ConfigCPUProfile     = "cpu-profile"
	ConfigTickCount      = "tick-count"
	ConfigMateBudgetBase = "mate-budget-base"
	ConfigMateBudgetStep = "mate-budget-step"
	ConfigBreadthWidth   = "breadth-width"
	ConfigSearchDepth    = "search-depth"
	ConfigWorkerBudget   = "worker-budget"
	ConfigStrategy       = "strategy"
	ConfigMaxTreeNodes   = "max-tree-nodes"
	ConfigEvalParamsPath = "eval-params-path"
	ConfigStartFEN       = "start-fen"
	ConfigEngineColor    = "engine-color"
	ConfigAutoplay       = "autoplay"

	// self-play
	ConfigGames       = "games"
	ConfigConcurrency = "concurrency"
	ConfigRandomPlies = "random-plies"
	ConfigMaxPlies    = "max-plies"
	ConfigPGNPath     = "pgn-path"
	ConfigSeedFile    = "seed-file"
)

type Config struct {
	*viper.Viper
	args []string
}

// DefaultConfig returns a config holding only the defaults.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigTickCount, 3)
	c.SetDefault(ConfigMateBudgetBase, 1)
	c.SetDefault(ConfigMateBudgetStep, 1)
	c.SetDefault(ConfigBreadthWidth, 20)
	c.SetDefault(ConfigSearchDepth, 4)
	c.SetDefault(ConfigWorkerBudget, 1)
	c.SetDefault(ConfigStrategy, "selective")
	c.SetDefault(ConfigMaxTreeNodes, 0)
	c.SetDefault(ConfigEvalParamsPath, "")
	c.SetDefault(ConfigStartFEN, "")
	c.SetDefault(ConfigEngineColor, "black")
	c.SetDefault(ConfigAutoplay, true)
	c.SetDefault(ConfigGames, 10)
	c.SetDefault(ConfigConcurrency, 1)
	c.SetDefault(ConfigRandomPlies, 2)
	c.SetDefault(ConfigMaxPlies, 300)
	c.SetDefault(ConfigPGNPath, "")
	c.SetDefault(ConfigSeedFile, "")
}

// Load reads defaults, then MLCHESS_ environment variables, then command
// line flags, each overriding the previous.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()
	c.SetEnvPrefix("mlchess")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("mlchess", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.Int(ConfigTickCount, 3, "ticks of selective search per move")
	fs.Int(ConfigMateBudgetBase, 1, "forced-mate budget on the first tick")
	fs.Int(ConfigMateBudgetStep, 1, "forced-mate budget added per tick")
	fs.Int(ConfigBreadthWidth, 20, "leaves widened per breadth pass")
	fs.Int(ConfigSearchDepth, 4, "depth of the parallel search")
	fs.Int(ConfigWorkerBudget, 1, "concurrent workers for the parallel search")
	fs.String(ConfigStrategy, "selective", "search strategy: selective or parallel")
	fs.Int(ConfigMaxTreeNodes, 0, "node cap for the selective tree; 0 sizes it from memory")
	fs.String(ConfigEvalParamsPath, "", "YAML file with evaluation constants")
	fs.String(ConfigStartFEN, "", "starting position; empty for the standard start")
	fs.String(ConfigEngineColor, "black", "side the engine plays in the shell")
	fs.Bool(ConfigAutoplay, true, "engine replies automatically after a user move")
	fs.Int(ConfigGames, 10, "self-play games to run")
	fs.Int(ConfigConcurrency, 1, "self-play games to run at once")
	fs.Int(ConfigRandomPlies, 2, "random opening plies in self-play")
	fs.Int(ConfigMaxPlies, 300, "ply cap for a self-play game")
	fs.String(ConfigPGNPath, "", "write self-play games to this PGN file")
	fs.String(ConfigSeedFile, "", "self-play opening seeds, one per game")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	// only flags given on the command line override the environment
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err == nil {
			err = c.BindPFlag(f.Name, f)
		}
	})
	return err
}

// Args returns the command-line arguments left after the flags.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings returns all settings for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
