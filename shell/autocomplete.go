package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/mlchess/config"
)

// ShellCompleter completes command names and the arguments of a few
// commands.
type ShellCompleter struct{}

func NewShellCompleter() *ShellCompleter {
	return &ShellCompleter{}
}

var commandNames = []string{
	"new", "move", "go", "set", "show", "analyze", "tree", "history", "help", "exit",
}

var commandArgs = map[string][]string{
	"go": {"selective", "parallel"},
	"set": {
		config.ConfigStrategy, config.ConfigEngineColor, config.ConfigAutoplay,
		config.ConfigTickCount, config.ConfigBreadthWidth, config.ConfigMateBudgetBase,
		config.ConfigMateBudgetStep, config.ConfigMaxTreeNodes, config.ConfigSearchDepth,
		config.ConfigWorkerBudget,
	},
	"help": {"set", "go", "analyze"},
}

var optionValues = map[string][]string{
	config.ConfigStrategy:    {"selective", "parallel"},
	config.ConfigEngineColor: {"white", "black"},
	config.ConfigAutoplay:    {"true", "false"},
}

// Do implements readline.AutoCompleter.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !endsWithSpace):
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	default:
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		// position of the argument being completed
		argIdx := len(fields) - 1
		if !endsWithSpace {
			argIdx--
		}
		switch {
		case argIdx == 0:
			completions = commandArgs[fields[0]]
		case argIdx == 1 && fields[0] == "set":
			completions = optionValues[fields[1]]
		}
	}

	var out [][]rune
	for _, cand := range completions {
		if strings.HasPrefix(cand, prefix) {
			out = append(out, []rune(cand[len(prefix):]+" "))
		}
	}
	return out, len([]rune(prefix))
}
